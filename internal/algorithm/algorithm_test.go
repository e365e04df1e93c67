package algorithm

import (
	"bytes"
	"errors"
	"testing"

	"custombudget/internal/core"
	"custombudget/internal/population"
	"custombudget/internal/property"
	"custombudget/internal/segment"
)

func mustTourism(t *testing.T, factor float32, geopolitics int64) Algorithm {
	t.Helper()
	a, err := NewTourism(factor, geopolitics)
	if err != nil {
		t.Fatalf("NewTourism() error = %v", err)
	}
	return a
}

func TestCalculate(t *testing.T) {
	pop := population.Static{
		CityResidential: 6000,
		City:            [3]int64{1000, 2000, 3000},
		Region:          [3]int64{500, 500, 500},
	}

	tests := []struct {
		name string
		alg  Algorithm
		base int64
		want int64
	}{
		{"fixed", NewFixed(), 250, 250},
		{"total population", NewResidentialTotalPopulation(0.5), 100, 3100},
		{"total population negative factor", NewResidentialTotalPopulation(-0.5), 0, -3000},
		{"wealth groups", NewResidentialWealthGroupPopulation(0.1, 0.2, 0.3), 0, 1400},
		{"tourism", mustTourism(t, 0.5, 2), 0, 3375},
		{"tourism with base", mustTourism(t, 0.5, 2), 25, 3400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.alg.Calculate(tt.base, pop); got != tt.want {
				t.Errorf("Calculate(%d) = %d, want %d", tt.base, got, tt.want)
			}
		})
	}
}

func TestCalculateTruncatesEachTerm(t *testing.T) {
	pop := population.Static{City: [3]int64{3, 3, 3}}
	alg := NewResidentialWealthGroupPopulation(0.5, 0.5, 0.5)

	// 1.5 + 1.5 + 1.5 would round to 4 if summed before truncation.
	if got := alg.Calculate(0, pop); got != 3 {
		t.Errorf("Calculate() = %d, want 3", got)
	}
}

func TestCalculateWithoutPopulation(t *testing.T) {
	alg := NewResidentialTotalPopulation(2)
	if got := alg.Calculate(40, nil); got != 40 {
		t.Errorf("Calculate(40, nil) = %d, want 40", got)
	}
}

func TestNewTourismRejectsZeroGeopolitics(t *testing.T) {
	if _, err := NewTourism(0.5, 0); err == nil {
		t.Fatal("NewTourism(0.5, 0) expected error")
	}
}

func TestKind(t *testing.T) {
	if !Tourism.IsValid() || Kind(4).IsValid() {
		t.Error("IsValid() mismatch")
	}
	if Tourism.String() != "tourism" {
		t.Errorf("String() = %q", Tourism.String())
	}
	if Kind(9).String() != "Kind(9)" {
		t.Errorf("String() = %q", Kind(9).String())
	}
}

func TestCodecRoundTrip(t *testing.T) {
	algs := []Algorithm{
		NewFixed(),
		NewResidentialTotalPopulation(0.25),
		NewResidentialWealthGroupPopulation(0.1, 0.2, 0.3),
		mustTourism(t, 0.75, -3),
	}

	for _, want := range algs {
		t.Run(want.Kind().String(), func(t *testing.T) {
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
				t.Errorf("Decode() = %v, want %v", got, want)
			}
			if buf.Len() != 0 {
				t.Errorf("%d unread bytes", buf.Len())
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Run("unknown tag", func(t *testing.T) {
		var buf bytes.Buffer
		segment.NewWriter(&buf).Uint32(42)
		_, err := Decode(segment.NewReader(&buf))
		if !errors.Is(err, core.ErrUnknownAlgorithm) {
			t.Errorf("Decode() error = %v, want ErrUnknownAlgorithm", err)
		}
	})

	t.Run("zero geopolitics", func(t *testing.T) {
		var buf bytes.Buffer
		w := segment.NewWriter(&buf)
		w.Uint32(uint32(Tourism))
		w.Float32(0.5)
		w.Int64(0)
		if _, err := Decode(segment.NewReader(&buf)); err == nil {
			t.Error("Decode() expected error")
		}
	})

	t.Run("truncated payload", func(t *testing.T) {
		var buf bytes.Buffer
		w := segment.NewWriter(&buf)
		w.Uint32(uint32(ResidentialWealthGroupPopulation))
		w.Float32(0.1)
		if _, err := Decode(segment.NewReader(&buf)); err == nil {
			t.Error("Decode() expected error")
		}
	})
}

func TestSelect(t *testing.T) {
	const line = 0x10

	tests := []struct {
		name    string
		props   property.Map
		want    Kind
		wantErr bool
	}{
		{"no table", property.Map{}, Fixed, false},
		{"malformed table", property.Map{core.PropertyLineItemAlgorithm: property.Uint32s(line)}, Fixed, false},
		{"wrong type", property.Map{core.PropertyLineItemAlgorithm: property.Sint64s(line, 1)}, Fixed, false},
		{"other line", property.Map{core.PropertyLineItemAlgorithm: property.Uint32s(0x11, 3)}, Fixed, false},
		{"selected", property.Map{core.PropertyLineItemAlgorithm: property.Uint32s(0x11, 1, line, 3)}, Tourism, false},
		{"unknown kind", property.Map{core.PropertyLineItemAlgorithm: property.Uint32s(line, 7)}, Fixed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.props, line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Select() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, core.ErrUnknownAlgorithm) {
				t.Errorf("Select() error = %v, want ErrUnknownAlgorithm", err)
			}
			if got != tt.want {
				t.Errorf("Select() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromProperties(t *testing.T) {
	const line = 0x20

	props := property.Map{
		core.PropertyTotalPopulationExpenseTuning: property.Sint64s(0x99, 1, 1, line, 1, 4),
		core.PropertyTotalPopulationIncomeTuning:  property.Sint64s(line, 3, 4),
		core.PropertyWealthGroupExpenseTuning:     property.Sint64s(line, 1, 10, 2, 10, 3, 10),
		core.PropertyTourismExpenseTuning:         property.Sint64s(line, 1, 2, 2),
	}

	tests := []struct {
		name     string
		kind     Kind
		isIncome bool
		want     Algorithm
	}{
		{"fixed", Fixed, false, NewFixed()},
		{"total population expense", ResidentialTotalPopulation, false, NewResidentialTotalPopulation(0.25)},
		{"total population income", ResidentialTotalPopulation, true, NewResidentialTotalPopulation(0.75)},
		{"wealth groups", ResidentialWealthGroupPopulation, false, NewResidentialWealthGroupPopulation(0.1, 0.2, 0.3)},
		{"tourism", Tourism, false, mustTourism(t, 0.5, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromProperties(props, tt.kind, line, tt.isIncome)
			if err != nil {
				t.Fatalf("FromProperties() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FromProperties() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromPropertiesErrors(t *testing.T) {
	const line = 0x20

	tests := []struct {
		name  string
		kind  Kind
		props property.Map
	}{
		{"missing tuning", ResidentialTotalPopulation, property.Map{}},
		{"no entry for line", ResidentialTotalPopulation, property.Map{
			core.PropertyTotalPopulationExpenseTuning: property.Sint64s(0x21, 1, 2),
		}},
		{"ragged tuning", ResidentialTotalPopulation, property.Map{
			core.PropertyTotalPopulationExpenseTuning: property.Sint64s(line, 1, 2, 3),
		}},
		{"zero denominator", ResidentialTotalPopulation, property.Map{
			core.PropertyTotalPopulationExpenseTuning: property.Sint64s(line, 1, 0),
		}},
		{"denominator too large", ResidentialWealthGroupPopulation, property.Map{
			core.PropertyWealthGroupExpenseTuning: property.Sint64s(line, 1, 2, 1, 1<<31, 1, 2),
		}},
		{"zero geopolitics", Tourism, property.Map{
			core.PropertyTourismExpenseTuning: property.Sint64s(line, 1, 2, 0),
		}},
		{"unknown kind", Kind(12), property.Map{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromProperties(tt.props, tt.kind, line, false)
			if !errors.Is(err, core.ErrAlgorithmConstruction) {
				t.Errorf("FromProperties() error = %v, want ErrAlgorithmConstruction", err)
			}
		})
	}
}

func TestForLine(t *testing.T) {
	const line = 0x30
	props := property.Map{
		core.PropertyLineItemAlgorithm:           property.Uint32s(line, uint32(ResidentialTotalPopulation)),
		core.PropertyTotalPopulationIncomeTuning: property.Sint64s(line, 1, 2),
	}

	got, err := ForLine(props, line, true)
	if err != nil {
		t.Fatalf("ForLine() error = %v", err)
	}
	if want := NewResidentialTotalPopulation(0.5); got != want {
		t.Errorf("ForLine() = %v, want %v", got, want)
	}

	got, err = ForLine(props, 0x31, true)
	if err != nil || !got.IsFixed() {
		t.Errorf("ForLine(unselected) = %v, %v, want fixed", got, err)
	}
}

func TestTuningProperty(t *testing.T) {
	if id, ok := TuningProperty(Tourism, true); !ok || id != core.PropertyTourismIncomeTuning {
		t.Errorf("TuningProperty(Tourism, income) = 0x%08x, %v", id, ok)
	}
	if _, ok := TuningProperty(Fixed, false); ok {
		t.Error("TuningProperty(Fixed) should report no tuning")
	}
}
