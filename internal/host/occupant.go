package host

import "custombudget/internal/property"

// BuildingOccupant is a placed building with its exemplar properties.
type BuildingOccupant struct {
	Type       uint32
	Properties property.Map
}

func (b *BuildingOccupant) OccupantType() uint32 { return OccupantTypeBuilding }

func (b *BuildingOccupant) BuildingType() uint32 { return b.Type }

func (b *BuildingOccupant) Property(id uint32) (property.Value, bool) {
	return b.Properties.Property(id)
}

// OtherOccupant is any non-building occupant.
type OtherOccupant struct {
	Type uint32
}

func (o OtherOccupant) OccupantType() uint32 { return o.Type }
