// Package scenario models a named macroeconomic scenario as a time-indexed
// mapping of variable name to a monthly vector of values, plus the
// probability weight assigned to that scenario within a Scenarios
// collection.
//
// Scenario series are built once (at load, outside the core) and read
// concurrently thereafter by every segment pipeline that fans out over
// them; nothing here mutates a Scenario after construction.
package scenario

import (
	"fmt"

	"github.com/jiangshenghai57/zmodel/zerr"
)

// MonthIndex is an integer count of months since a fixed epoch. Using
// integer month ordinals instead of calendar dates removes a whole class
// of floating point and calendar-edge bugs from "index by date" lookups,
// per the engine's date-arithmetic design note.
type MonthIndex int

// Series is an ordered vector of values for one macro variable, indexed by
// MonthIndex starting at the scenario's first month.
type Series []float64

// Scenario is an immutable named macro scenario: a set of variable series
// sharing a common start month, plus a probability weight.
type Scenario struct {
	Name       string
	Weight     float64
	StartMonth MonthIndex
	variables  map[string]Series
}

// New builds a Scenario from a variable-name -> series map. The caller
// supplies startMonth, the MonthIndex corresponding to index 0 of every
// series (all series within one Scenario share the same start and length
// convention).
func New(name string, weight float64, startMonth MonthIndex, variables map[string]Series) *Scenario {
	cp := make(map[string]Series, len(variables))
	for k, v := range variables {
		vv := make(Series, len(v))
		copy(vv, v)
		cp[k] = vv
	}
	return &Scenario{Name: name, Weight: weight, StartMonth: startMonth, variables: cp}
}

// At returns the value of the named variable at the given month index, or
// a ScenarioLookupMiss error if the variable is unknown or the index falls
// outside the series.
func (s *Scenario) At(variable string, month MonthIndex) (float64, error) {
	series, ok := s.variables[variable]
	if !ok {
		return 0, zerr.New(zerr.ScenarioLookupMiss, s.Name, variable,
			fmt.Errorf("variable %q not present in scenario %q", variable, s.Name))
	}
	idx := int(month - s.StartMonth)
	if idx < 0 || idx >= len(series) {
		return 0, zerr.New(zerr.ScenarioLookupMiss, s.Name, variable,
			fmt.Errorf("month %d outside series range [%d,%d)", month, s.StartMonth, int(s.StartMonth)+len(series)))
	}
	return series[idx], nil
}

// Window returns the contiguous slice of the named variable covering
// [from, from+n), erroring if any requested month is out of range.
func (s *Scenario) Window(variable string, from MonthIndex, n int) (Series, error) {
	out := make(Series, n)
	for i := 0; i < n; i++ {
		v, err := s.At(variable, from+MonthIndex(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Scenarios is a named collection of Scenario, whose weights must sum to 1
// (within 1e-6) across the collection.
type Scenarios struct {
	byName map[string]*Scenario
	order  []string
}

// NewScenarios validates the weight-sum invariant and returns a Scenarios
// collection, or InvalidConfig if weights don't sum to 1.
func NewScenarios(scenarios []*Scenario) (*Scenarios, error) {
	sum := 0.0
	byName := make(map[string]*Scenario, len(scenarios))
	order := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		sum += s.Weight
		byName[s.Name] = s
		order = append(order, s.Name)
	}
	if len(scenarios) > 0 {
		if d := sum - 1.0; d > 1e-6 || d < -1e-6 {
			return nil, zerr.New(zerr.InvalidConfig, "scenarios", "weight",
				fmt.Errorf("scenario weights sum to %v, want 1 (±1e-6)", sum))
		}
	}
	return &Scenarios{byName: byName, order: order}, nil
}

// Names returns scenario names in insertion order.
func (s *Scenarios) Names() []string { return append([]string(nil), s.order...) }

// Get looks up a scenario by name.
func (s *Scenarios) Get(name string) (*Scenario, bool) {
	sc, ok := s.byName[name]
	return sc, ok
}

// Len returns the number of scenarios in the collection.
func (s *Scenarios) Len() int { return len(s.order) }
