package scenario

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"custombudget/internal/core"
	"custombudget/internal/property"
)

func TestLoad(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "utilities.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.Name != "utilities" || len(s.Region) != 3 || len(s.Buildings) != 2 || len(s.Steps) != 7 {
		t.Fatalf("scenario = %+v", s)
	}

	counts := s.City.Population.Counts()
	if counts.Residential != 1000 || counts.ByTier != [3]int32{500, 300, 200} {
		t.Errorf("counts = %+v", counts)
	}

	cities := s.Cities()
	if !cities[1].Established || cities[1].ByTier != [3]int64{200, 200, 200} || cities[2].Established {
		t.Errorf("cities = %+v", cities)
	}

	school := s.Buildings["school"]
	if school.Type != 0x12340001 {
		t.Errorf("school type = %v", school.Type)
	}
	m, err := school.Map()
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	purpose, err := property.GetUint32s(m, core.PropertyBudgetItemPurpose)
	if err != nil || len(purpose) != 1 || purpose[0] != core.PurposeExpense {
		t.Errorf("purpose = %v, %v", purpose, err)
	}
	groups, err := property.GetUint32s(m, core.PropertyDepartmentBudgetGroup)
	if err != nil || groups[1] != core.BudgetGroupUtilities {
		t.Errorf("budget group = %v, %v", groups, err)
	}
	tuning, err := property.GetSint64s(m, core.PropertyTotalPopulationExpenseTuning)
	if err != nil || len(tuning) != 3 || tuning[0] != 0x0102 || tuning[2] != 10 {
		t.Errorf("tuning = %v, %v", tuning, err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestStepKind(t *testing.T) {
	tests := []struct {
		name string
		step Step
		want StepKind
	}{
		{"insert", Step{Insert: "a"}, StepInsert},
		{"remove", Step{Remove: "a", Count: 3}, StepRemove},
		{"months", Step{Months: 2}, StepMonths},
		{"population", Step{Population: &Population{}}, StepPopulation},
		{"save", Step{Save: true}, StepSave},
		{"reload", Step{Reload: true}, StepReload},
		{"empty", Step{}, ""},
		{"two actions", Step{Insert: "a", Save: true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.step.Kind(); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}

	if (Step{}).Repeat() != 1 || (Step{Count: 4}).Repeat() != 4 {
		t.Error("Repeat() should default to 1")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown building",
			yaml: "steps:\n  - {insert: ghost}\n",
			want: `unknown building "ghost"`,
		},
		{
			name: "step without action",
			yaml: "steps:\n  - {count: 2}\n",
			want: "step 1: exactly one action must be set",
		},
		{
			name: "property with two arrays",
			yaml: "buildings:\n  a:\n    properties:\n      - {id: 1, uint32: [1], sint64: [2]}\n",
			want: `building "a"`,
		},
		{
			name: "duplicate property",
			yaml: "buildings:\n  a:\n    properties:\n      - {id: 1, uint32: [1]}\n      - {id: 0x1, uint32: [2]}\n",
			want: "declared twice",
		},
		{
			name: "negative count",
			yaml: "buildings:\n  a: {}\nsteps:\n  - {insert: a, count: -1}\n",
			want: "negative count",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalidScenario) {
				t.Fatalf("Parse() error = %v, want ErrInvalidScenario", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestParse_BadID(t *testing.T) {
	_, err := Parse([]byte("buildings:\n  a:\n    type: not-an-id\n"))
	if err == nil || !strings.Contains(err.Error(), `invalid id "not-an-id"`) {
		t.Fatalf("Parse() error = %v", err)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{"42", 42, false},
		{"0xFE005706", 0xFE005706, false},
		{"Expense", ID(core.PurposeExpense), false},
		{"public_safety", ID(core.BudgetGroupPublicSafety), false},
		{"0x1FFFFFFFF", 0, true},
		{"-1", 0, true},
		{"nope", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseID() = %v, want %v", got, tt.want)
			}
		})
	}
}
