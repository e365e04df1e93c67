// Package transaction holds the per (department, line) budget state shared by
// every building contributing to a custom line item.
package transaction

import (
	"fmt"

	"custombudget/internal/algorithm"
	"custombudget/internal/core"
	"custombudget/internal/population"
	"custombudget/internal/property"
	"custombudget/internal/segment"
)

// Version is the payload version written ahead of every line item.
const Version uint32 = 1

// LineItem is the cost model of one custom line item. Its algorithm and
// per-building amount are set at creation and never change.
type LineItem struct {
	alg         algorithm.Algorithm
	perBuilding int64
	isIncome    bool
}

func New(alg algorithm.Algorithm, perBuilding int64, isIncome bool) LineItem {
	return LineItem{alg: alg, perBuilding: perBuilding, isIncome: isIncome}
}

// FromDeclaration builds the line item for d, reading the cost algorithm
// tuning from the building that declared it.
func FromDeclaration(h property.Holder, d core.Declaration) (LineItem, error) {
	alg, err := algorithm.ForLine(h, d.LineID, d.IsIncome())
	if err != nil {
		return LineItem{}, err
	}
	return New(alg, d.FixedCost, d.IsIncome()), nil
}

// Total returns the line item's value for buildingCount contributing
// buildings. No buildings means no value.
func (l LineItem) Total(buildingCount int64, pop population.Snapshot) int64 {
	if buildingCount <= 0 {
		return 0
	}
	return l.alg.Calculate(l.perBuilding*buildingCount, pop)
}

func (l LineItem) Algorithm() algorithm.Algorithm { return l.alg }

func (l LineItem) PerBuilding() int64 { return l.perBuilding }

func (l LineItem) IsIncome() bool { return l.isIncome }

// IsFixed reports whether the total only depends on the building count.
func (l LineItem) IsFixed() bool { return l.alg.IsFixed() }

func (l LineItem) Kind() core.ItemKind {
	if l.isIncome {
		return core.Income
	}
	return core.Expense
}

// Encode writes the versioned payload: per-building amount, income flag,
// algorithm tag and algorithm parameters.
func (l LineItem) Encode(w *segment.Writer) {
	w.Uint32(Version)
	w.Int64(l.perBuilding)
	w.Bool(l.isIncome)
	l.alg.Encode(w)
}

// Decode reads a payload written by Encode.
func Decode(r *segment.Reader) (LineItem, error) {
	version := r.Uint32()
	if err := r.Err(); err != nil {
		return LineItem{}, err
	}
	if version != Version {
		return LineItem{}, fmt.Errorf("line item: %w: got %d, want %d", core.ErrVersionMismatch, version, Version)
	}

	perBuilding := r.Int64()
	isIncome := r.Bool()
	if err := r.Err(); err != nil {
		return LineItem{}, err
	}

	alg, err := algorithm.Decode(r)
	if err != nil {
		return LineItem{}, fmt.Errorf("line item: %w", err)
	}
	return New(alg, perBuilding, isIncome), nil
}
