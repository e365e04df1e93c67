package population

// Counts is a plain CityStats value, used by scenarios and tests.
type Counts struct {
	Residential int32
	ByTier      [3]int32
}

func (c *Counts) ResidentialPopulation() int32 {
	return c.Residential
}

func (c *Counts) WealthPopulation(tier WealthTier) int32 {
	if !validTier(tier) {
		return 0
	}
	return c.ByTier[tier]
}

// Cities is a Region backed by a slice.
type Cities []RegionalCity

func (c Cities) Cities() []RegionalCity {
	return c
}

// Static is a fixed Snapshot.
type Static struct {
	CityResidential   int64
	City              [3]int64
	RegionResidential int64
	Region            [3]int64
}

func (s Static) CityResidentialPopulation() int64 { return s.CityResidential }

func (s Static) CityPopulation(tier WealthTier) int64 {
	if !validTier(tier) {
		return 0
	}
	return s.City[tier]
}

func (s Static) RegionResidentialPopulation() int64 { return s.RegionResidential }

func (s Static) RegionPopulation(tier WealthTier) int64 {
	if !validTier(tier) {
		return 0
	}
	return s.Region[tier]
}
