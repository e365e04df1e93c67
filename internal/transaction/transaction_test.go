package transaction

import (
	"bytes"
	"errors"
	"testing"

	"custombudget/internal/algorithm"
	"custombudget/internal/core"
	"custombudget/internal/population"
	"custombudget/internal/property"
	"custombudget/internal/segment"
)

func TestTotal(t *testing.T) {
	pop := population.Static{CityResidential: 1000}

	tests := []struct {
		name  string
		item  LineItem
		count int64
		want  int64
	}{
		{"fixed", New(algorithm.NewFixed(), 150, false), 3, 450},
		{"no buildings", New(algorithm.NewResidentialTotalPopulation(1), 150, false), 0, 0},
		{"negative count", New(algorithm.NewFixed(), 150, false), -2, 0},
		{"variable", New(algorithm.NewResidentialTotalPopulation(0.5), 100, true), 2, 700},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Total(tt.count, pop); got != tt.want {
				t.Errorf("Total(%d) = %d, want %d", tt.count, got, tt.want)
			}
		})
	}
}

func TestFromDeclaration(t *testing.T) {
	const line = 0x44
	decl := core.Declaration{Kind: core.Income, DepartmentID: 1, LineID: line, FixedCost: 75}

	t.Run("fixed by default", func(t *testing.T) {
		item, err := FromDeclaration(property.Map{}, decl)
		if err != nil {
			t.Fatalf("FromDeclaration() error = %v", err)
		}
		if !item.IsFixed() || !item.IsIncome() || item.PerBuilding() != 75 {
			t.Errorf("FromDeclaration() = %+v", item)
		}
		if item.Kind() != core.Income {
			t.Errorf("Kind() = %v, want income", item.Kind())
		}
	})

	t.Run("reads income tuning", func(t *testing.T) {
		props := property.Map{
			core.PropertyLineItemAlgorithm:           property.Uint32s(line, uint32(algorithm.ResidentialTotalPopulation)),
			core.PropertyTotalPopulationIncomeTuning: property.Sint64s(line, 1, 4),
		}
		item, err := FromDeclaration(props, decl)
		if err != nil {
			t.Fatalf("FromDeclaration() error = %v", err)
		}
		if want := algorithm.NewResidentialTotalPopulation(0.25); item.Algorithm() != want {
			t.Errorf("Algorithm() = %v, want %v", item.Algorithm(), want)
		}
	})

	t.Run("construction failure", func(t *testing.T) {
		props := property.Map{
			core.PropertyLineItemAlgorithm:           property.Uint32s(line, uint32(algorithm.ResidentialTotalPopulation)),
			core.PropertyTotalPopulationIncomeTuning: property.Sint64s(line, 1, 0),
		}
		if _, err := FromDeclaration(props, decl); !errors.Is(err, core.ErrAlgorithmConstruction) {
			t.Errorf("FromDeclaration() error = %v, want ErrAlgorithmConstruction", err)
		}
	})
}

func TestCodecRoundTrip(t *testing.T) {
	tourism, err := algorithm.NewTourism(0.5, 4)
	if err != nil {
		t.Fatal(err)
	}

	items := []LineItem{
		New(algorithm.NewFixed(), -20, false),
		New(algorithm.NewResidentialWealthGroupPopulation(0.1, 0, 2), 300, true),
		New(tourism, 0, true),
	}

	for _, want := range items {
		var buf bytes.Buffer
		w := segment.NewWriter(&buf)
		want.Encode(w)
		if err := w.Err(); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}

		got, err := Decode(segment.NewReader(&buf))
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if got != want {
			t.Errorf("Decode() = %+v, want %+v", got, want)
		}
	}
}

func TestDecodeVersionMismatch(t *testing.T) {
	var buf bytes.Buffer
	w := segment.NewWriter(&buf)
	w.Uint32(Version + 1)
	w.Int64(10)
	w.Bool(false)
	w.Uint32(uint32(algorithm.Fixed))

	if _, err := Decode(segment.NewReader(&buf)); !errors.Is(err, core.ErrVersionMismatch) {
		t.Errorf("Decode() error = %v, want ErrVersionMismatch", err)
	}
}
