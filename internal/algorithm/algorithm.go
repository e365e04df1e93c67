// Package algorithm implements the cost algorithms a custom budget line item
// can use to turn its fixed per-building cash flow into a total.
//
// Algorithm is a closed sum type selected by Kind. Adding a variant means
// adding a Kind, its constructor, and a case in Calculate, the codec and the
// tuning registry.
package algorithm

import (
	"fmt"

	"custombudget/internal/population"
)

// Kind is the persisted discriminant of an algorithm, also used as the
// selector id in a building's algorithm table.
type Kind uint32

const (
	Fixed Kind = iota
	ResidentialTotalPopulation
	ResidentialWealthGroupPopulation
	Tourism
)

func (k Kind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case ResidentialTotalPopulation:
		return "residential_total_population"
	case ResidentialWealthGroupPopulation:
		return "residential_wealth_group_population"
	case Tourism:
		return "tourism"
	default:
		return fmt.Sprintf("Kind(%d)", uint32(k))
	}
}

// IsValid reports whether k is a known algorithm kind.
func (k Kind) IsValid() bool {
	return k <= Tourism
}

// Algorithm is one cost algorithm with its tuning parameters. The zero value
// is the Fixed algorithm. Values are comparable.
type Algorithm struct {
	kind Kind
	// factors holds the single population or tourism factor in [0], or the
	// per-tier factors indexed by population.WealthTier.
	factors     [3]float32
	geopolitics int64
}

// NewFixed returns the identity algorithm.
func NewFixed() Algorithm {
	return Algorithm{kind: Fixed}
}

// NewResidentialTotalPopulation scales the city's total residential population.
func NewResidentialTotalPopulation(factor float32) Algorithm {
	return Algorithm{kind: ResidentialTotalPopulation, factors: [3]float32{factor}}
}

// NewResidentialWealthGroupPopulation scales each wealth tier's population
// by its own factor.
func NewResidentialWealthGroupPopulation(low, medium, high float32) Algorithm {
	return Algorithm{kind: ResidentialWealthGroupPopulation, factors: [3]float32{low, medium, high}}
}

// NewTourism combines city and regional populations. geopolitics is a divisor
// and must not be zero.
func NewTourism(tourismFactor float32, geopolitics int64) (Algorithm, error) {
	if geopolitics == 0 {
		return Algorithm{}, fmt.Errorf("tourism geopolitics factor must not be zero")
	}
	return Algorithm{kind: Tourism, factors: [3]float32{tourismFactor}, geopolitics: geopolitics}, nil
}

func (a Algorithm) Kind() Kind { return a.kind }

// IsFixed reports whether the algorithm leaves the total unchanged.
func (a Algorithm) IsFixed() bool { return a.kind == Fixed }

// PopulationFactor is the ResidentialTotalPopulation factor.
func (a Algorithm) PopulationFactor() float32 { return a.factors[0] }

// WealthFactor is the ResidentialWealthGroupPopulation factor of tier.
func (a Algorithm) WealthFactor(tier population.WealthTier) float32 {
	if tier < population.Low || tier > population.High {
		return 0
	}
	return a.factors[tier]
}

// TourismFactor is the national and international tourism factor.
func (a Algorithm) TourismFactor() float32 { return a.factors[0] }

// Geopolitics is the Tourism divisor.
func (a Algorithm) Geopolitics() int64 { return a.geopolitics }

// Calculate adjusts baseTotal, the per-building cash flow times the building
// count, using the current population. Each variable term is truncated toward
// zero on its own before it is added.
func (a Algorithm) Calculate(baseTotal int64, pop population.Snapshot) int64 {
	if pop == nil {
		return baseTotal
	}

	switch a.kind {
	case ResidentialTotalPopulation:
		return baseTotal + scale(pop.CityResidentialPopulation(), a.factors[0])

	case ResidentialWealthGroupPopulation:
		total := baseTotal
		for _, tier := range population.Tiers {
			total += scale(pop.CityPopulation(tier), a.factors[tier])
		}
		return total

	case Tourism:
		if a.geopolitics == 0 {
			return baseTotal
		}
		var sum int64
		for _, tier := range population.Tiers {
			sum += pop.CityPopulation(tier)
		}
		for _, tier := range population.Tiers {
			sum += scale(pop.RegionPopulation(tier), a.factors[0])
		}
		return baseTotal + sum/a.geopolitics

	default:
		return baseTotal
	}
}

func (a Algorithm) String() string {
	switch a.kind {
	case ResidentialTotalPopulation:
		return fmt.Sprintf("%v(factor=%g)", a.kind, a.factors[0])
	case ResidentialWealthGroupPopulation:
		return fmt.Sprintf("%v(low=%g, medium=%g, high=%g)", a.kind, a.factors[0], a.factors[1], a.factors[2])
	case Tourism:
		return fmt.Sprintf("%v(factor=%g, geopolitics=%d)", a.kind, a.factors[0], a.geopolitics)
	default:
		return a.kind.String()
	}
}

func scale(value int64, factor float32) int64 {
	return int64(float64(value) * float64(factor))
}
