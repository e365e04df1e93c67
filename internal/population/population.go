// Package population supplies the population signals the variable cost
// algorithms scale with.
package population

import (
	"errors"
	"fmt"
)

// WealthTier is one of the three residential wealth groups.
type WealthTier int

const (
	Low WealthTier = iota
	Medium
	High
)

// Tiers lists every wealth tier in ascending order.
var Tiers = [...]WealthTier{Low, Medium, High}

// DemandID returns the host's residential demand id for the tier.
func (t WealthTier) DemandID() uint32 {
	switch t {
	case Low:
		return 0x1010
	case Medium:
		return 0x1020
	case High:
		return 0x1030
	default:
		return 0
	}
}

func (t WealthTier) String() string {
	switch t {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("WealthTier(%d)", int(t))
	}
}

// Snapshot is the read-only population surface the algorithms consume.
type Snapshot interface {
	CityResidentialPopulation() int64
	CityPopulation(tier WealthTier) int64
	RegionResidentialPopulation() int64
	RegionPopulation(tier WealthTier) int64
}

// CityStats is the live population of the active city as reported by the
// host's residential and demand simulators.
type CityStats interface {
	ResidentialPopulation() int32
	WealthPopulation(tier WealthTier) int32
}

// RegionalCity is one city tile of the region.
type RegionalCity struct {
	X           int32
	Z           int32
	Established bool
	Population  int64
	ByTier      [3]int64
}

// Region lists the cities of the region the active city belongs to.
type Region interface {
	Cities() []RegionalCity
}

var ErrNotInitialized = errors.New("population provider not initialized")

// Provider caches the regional totals for one city session and forwards city
// queries to the live simulators.
type Provider struct {
	city        CityStats
	regionTotal int64
	regionTier  [3]int64
	initialized bool
}

var _ Snapshot = (*Provider)(nil)

// NewProvider returns an uninitialized provider. Queries return zero until Init.
func NewProvider() *Provider {
	return &Provider{}
}

// Init captures the city simulators and sums the population of every other
// established city in the region. The city at (x, z) is the active one and is
// excluded. Calling Init again before Shutdown is a no-op.
func (p *Provider) Init(city CityStats, region Region, x, z int32) error {
	if p.initialized {
		return nil
	}
	if city == nil {
		return fmt.Errorf("init population provider: %w", ErrNotInitialized)
	}
	p.initialized = true
	p.city = city
	p.regionTotal = 0
	p.regionTier = [3]int64{}

	if region == nil {
		return nil
	}
	for _, c := range region.Cities() {
		if c.X == x && c.Z == z {
			continue
		}
		if !c.Established {
			continue
		}
		p.regionTotal += c.Population
		for i := range p.regionTier {
			p.regionTier[i] += c.ByTier[i]
		}
	}
	return nil
}

// Shutdown drops the city references and the regional snapshot.
func (p *Provider) Shutdown() {
	p.city = nil
	p.regionTotal = 0
	p.regionTier = [3]int64{}
	p.initialized = false
}

func (p *Provider) CityResidentialPopulation() int64 {
	if p.city == nil {
		return 0
	}
	return int64(p.city.ResidentialPopulation())
}

func (p *Provider) CityPopulation(tier WealthTier) int64 {
	if p.city == nil || !validTier(tier) {
		return 0
	}
	return int64(p.city.WealthPopulation(tier))
}

func (p *Provider) RegionResidentialPopulation() int64 {
	return p.regionTotal
}

func (p *Provider) RegionPopulation(tier WealthTier) int64 {
	if !validTier(tier) {
		return 0
	}
	return p.regionTier[tier]
}

func validTier(t WealthTier) bool {
	return t >= Low && t <= High
}
