package algorithm

import (
	"errors"
	"fmt"

	"custombudget/internal/core"
	"custombudget/internal/property"
)

// tuning describes where a variable algorithm reads its parameters: one
// Sint64Array per cash flow direction, grouped per line item with the line id
// as the first field of each group.
type tuning struct {
	expenseProperty uint32
	incomeProperty  uint32
	arity           int
	build           func(group []int64) (Algorithm, error)
}

var tunings = map[Kind]tuning{
	ResidentialTotalPopulation: {
		expenseProperty: core.PropertyTotalPopulationExpenseTuning,
		incomeProperty:  core.PropertyTotalPopulationIncomeTuning,
		arity:           3,
		build: func(g []int64) (Algorithm, error) {
			factor, err := rational(g[1], g[2])
			if err != nil {
				return Algorithm{}, err
			}
			return NewResidentialTotalPopulation(factor), nil
		},
	},
	ResidentialWealthGroupPopulation: {
		expenseProperty: core.PropertyWealthGroupExpenseTuning,
		incomeProperty:  core.PropertyWealthGroupIncomeTuning,
		arity:           7,
		build: func(g []int64) (Algorithm, error) {
			var factors [3]float32
			for i := range factors {
				f, err := rational(g[1+2*i], g[2+2*i])
				if err != nil {
					return Algorithm{}, err
				}
				factors[i] = f
			}
			return NewResidentialWealthGroupPopulation(factors[0], factors[1], factors[2]), nil
		},
	},
	Tourism: {
		expenseProperty: core.PropertyTourismExpenseTuning,
		incomeProperty:  core.PropertyTourismIncomeTuning,
		arity:           4,
		build: func(g []int64) (Algorithm, error) {
			factor, err := rational(g[1], g[2])
			if err != nil {
				return Algorithm{}, err
			}
			return NewTourism(factor, g[3])
		},
	},
}

// TuningProperty returns the tuning property id kind reads for the given cash
// flow direction. ok is false for kinds without tuning parameters.
func TuningProperty(kind Kind, isIncome bool) (id uint32, ok bool) {
	t, ok := tunings[kind]
	if !ok {
		return 0, false
	}
	if isIncome {
		return t.incomeProperty, true
	}
	return t.expenseProperty, true
}

// Select returns the algorithm kind a building declares for lineID in its
// algorithm table. A building without a usable table, or without an entry
// for the line, uses Fixed.
func Select(h property.Holder, lineID uint32) (Kind, error) {
	groups, err := property.Uint32Groups(h, core.PropertyLineItemAlgorithm, 2)
	if err != nil {
		return Fixed, nil
	}
	for _, g := range groups {
		if g[0] != lineID {
			continue
		}
		kind := Kind(g[1])
		if !kind.IsValid() {
			return Fixed, fmt.Errorf("%w: %w: line 0x%08x selects kind %d",
				core.ErrAlgorithmConstruction, core.ErrUnknownAlgorithm, lineID, g[1])
		}
		return kind, nil
	}
	return Fixed, nil
}

// FromProperties builds a kind algorithm for lineID using the tuning
// parameters declared on the building. Every failure wraps
// core.ErrAlgorithmConstruction.
func FromProperties(h property.Holder, kind Kind, lineID uint32, isIncome bool) (Algorithm, error) {
	if kind == Fixed {
		return NewFixed(), nil
	}
	t, ok := tunings[kind]
	if !ok {
		return Algorithm{}, fmt.Errorf("%w: %w: kind %d", core.ErrAlgorithmConstruction, core.ErrUnknownAlgorithm, uint32(kind))
	}

	propertyID := t.expenseProperty
	if isIncome {
		propertyID = t.incomeProperty
	}

	groups, err := property.Sint64Groups(h, propertyID, t.arity)
	if err != nil {
		return Algorithm{}, constructionError(kind, propertyID, lineID, err)
	}
	for _, g := range groups {
		if g[0] != int64(lineID) {
			continue
		}
		a, err := t.build(g)
		if err != nil {
			return Algorithm{}, constructionError(kind, propertyID, lineID, err)
		}
		return a, nil
	}
	return Algorithm{}, constructionError(kind, propertyID, lineID, errors.New("no tuning entry for line"))
}

// ForLine selects and builds the algorithm a building declares for lineID.
func ForLine(h property.Holder, lineID uint32, isIncome bool) (Algorithm, error) {
	kind, err := Select(h, lineID)
	if err != nil {
		return Algorithm{}, err
	}
	return FromProperties(h, kind, lineID, isIncome)
}

func rational(num, den int64) (float32, error) {
	r := core.Rational{Num: num, Den: den}
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return r.Float32(), nil
}

func constructionError(kind Kind, propertyID, lineID uint32, err error) error {
	return fmt.Errorf("%w: %v tuning property 0x%08x, line 0x%08x: %w",
		core.ErrAlgorithmConstruction, kind, propertyID, lineID, err)
}
