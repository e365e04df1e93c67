// Package scenario reads simulation scripts: the city and its region, the
// building exemplars the city can place, and the steps to play.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"custombudget/internal/population"
	"custombudget/internal/property"
)

var ErrInvalidScenario = errors.New("invalid scenario")

type Scenario struct {
	Name      string              `yaml:"name"`
	City      City                `yaml:"city"`
	Region    []RegionalCity      `yaml:"region"`
	Buildings map[string]Building `yaml:"buildings"`
	Steps     []Step              `yaml:"steps"`
}

// City is the active city. Its position identifies it inside Region.
type City struct {
	X          int32      `yaml:"x"`
	Z          int32      `yaml:"z"`
	Population Population `yaml:"population"`
}

type Population struct {
	Residential int32 `yaml:"residential"`
	Low         int32 `yaml:"low"`
	Medium      int32 `yaml:"medium"`
	High        int32 `yaml:"high"`
}

// Counts converts p to the city statistics the population provider reads.
func (p Population) Counts() *population.Counts {
	return &population.Counts{
		Residential: p.Residential,
		ByTier:      [3]int32{p.Low, p.Medium, p.High},
	}
}

type RegionalCity struct {
	X           int32 `yaml:"x"`
	Z           int32 `yaml:"z"`
	Established bool  `yaml:"established"`
	Population  int64 `yaml:"population"`
	Low         int64 `yaml:"low"`
	Medium      int64 `yaml:"medium"`
	High        int64 `yaml:"high"`
}

// Cities converts the region list for the population provider.
func (s *Scenario) Cities() population.Cities {
	out := make(population.Cities, len(s.Region))
	for i, c := range s.Region {
		out[i] = population.RegionalCity{
			X:           c.X,
			Z:           c.Z,
			Established: c.Established,
			Population:  c.Population,
			ByTier:      [3]int64{c.Low, c.Medium, c.High},
		}
	}
	return out
}

// Building is an exemplar: a building type and its property record.
type Building struct {
	Type       ID         `yaml:"type"`
	Properties []Property `yaml:"properties"`
}

// Property holds exactly one typed array.
type Property struct {
	ID      ID        `yaml:"id"`
	Uint32  []ID      `yaml:"uint32"`
	Sint64  []int64   `yaml:"sint64"`
	Float32 []float32 `yaml:"float32"`
}

func (p Property) Value() (property.Value, error) {
	set := 0
	var v property.Value
	if p.Uint32 != nil {
		set++
		values := make([]uint32, len(p.Uint32))
		for i, id := range p.Uint32 {
			values[i] = uint32(id)
		}
		v = property.Uint32s(values...)
	}
	if p.Sint64 != nil {
		set++
		v = property.Sint64s(p.Sint64...)
	}
	if p.Float32 != nil {
		set++
		v = property.Float32s(p.Float32...)
	}
	if set != 1 {
		return property.Value{}, fmt.Errorf("property %v: exactly one of uint32, sint64 or float32 must be set", p.ID)
	}
	return v, nil
}

// Map builds the property record of the exemplar.
func (b Building) Map() (property.Map, error) {
	m := make(property.Map, len(b.Properties))
	for _, p := range b.Properties {
		if _, dup := m[uint32(p.ID)]; dup {
			return nil, fmt.Errorf("property %v declared twice", p.ID)
		}
		v, err := p.Value()
		if err != nil {
			return nil, err
		}
		m[uint32(p.ID)] = v
	}
	return m, nil
}

type StepKind string

const (
	StepInsert     StepKind = "insert"
	StepRemove     StepKind = "remove"
	StepMonths     StepKind = "months"
	StepPopulation StepKind = "population"
	StepSave       StepKind = "save"
	StepReload     StepKind = "reload"
)

// Step is one action. Exactly one of its action fields is set. Count applies
// to insert and remove and defaults to 1.
type Step struct {
	Insert     string      `yaml:"insert"`
	Remove     string      `yaml:"remove"`
	Count      int         `yaml:"count"`
	Months     int         `yaml:"months"`
	Population *Population `yaml:"population"`
	Save       bool        `yaml:"save"`
	Reload     bool        `yaml:"reload"`
}

// Kind returns the action of the step, or "" when none or several are set.
func (s Step) Kind() StepKind {
	var kinds []StepKind
	if s.Insert != "" {
		kinds = append(kinds, StepInsert)
	}
	if s.Remove != "" {
		kinds = append(kinds, StepRemove)
	}
	if s.Months != 0 {
		kinds = append(kinds, StepMonths)
	}
	if s.Population != nil {
		kinds = append(kinds, StepPopulation)
	}
	if s.Save {
		kinds = append(kinds, StepSave)
	}
	if s.Reload {
		kinds = append(kinds, StepReload)
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Repeat returns how many buildings an insert or remove step places.
func (s Step) Repeat() int {
	if s.Count == 0 {
		return 1
	}
	return s.Count
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate reports every problem found, wrapped in ErrInvalidScenario.
func (s *Scenario) Validate() error {
	var problems []string

	names := make([]string, 0, len(s.Buildings))
	for name := range s.Buildings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := s.Buildings[name].Map(); err != nil {
			problems = append(problems, fmt.Sprintf("building %q: %v", name, err))
		}
	}

	for i, step := range s.Steps {
		switch step.Kind() {
		case "":
			problems = append(problems, fmt.Sprintf("step %d: exactly one action must be set", i+1))
		case StepInsert, StepRemove:
			name := step.Insert + step.Remove
			if _, ok := s.Buildings[name]; !ok {
				problems = append(problems, fmt.Sprintf("step %d: unknown building %q", i+1, name))
			}
			if step.Count < 0 {
				problems = append(problems, fmt.Sprintf("step %d: negative count %d", i+1, step.Count))
			}
		case StepMonths:
			if step.Months < 0 {
				problems = append(problems, fmt.Sprintf("step %d: negative months %d", i+1, step.Months))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n- %s", ErrInvalidScenario, strings.Join(problems, "\n- "))
	}
	return nil
}
