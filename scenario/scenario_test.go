package scenario

import "testing"

func TestScenarioAt(t *testing.T) {
	s := New("base", 0.5, 600, map[string]Series{
		"HPI": {100, 101, 102},
	})

	v, err := s.At("HPI", 601)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 101 {
		t.Errorf("got %v, want 101", v)
	}
}

func TestScenarioAt_MissingVariable(t *testing.T) {
	s := New("base", 0.5, 600, map[string]Series{"HPI": {1, 2}})
	if _, err := s.At("GDP", 600); err == nil {
		t.Fatal("expected ScenarioLookupMiss error")
	}
}

func TestScenarioAt_OutOfRange(t *testing.T) {
	s := New("base", 0.5, 600, map[string]Series{"HPI": {1, 2}})
	if _, err := s.At("HPI", 700); err == nil {
		t.Fatal("expected ScenarioLookupMiss error")
	}
}

func TestScenarioWindow(t *testing.T) {
	s := New("base", 1.0, 0, map[string]Series{"HPI": {1, 2, 3, 4, 5}})
	w, err := s.Window("HPI", 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Series{2, 3, 4}
	for i := range want {
		if w[i] != want[i] {
			t.Errorf("index %d: got %v want %v", i, w[i], want[i])
		}
	}
}

func TestNewScenarios_WeightsSumToOne(t *testing.T) {
	s1 := New("downside", 0.6, 0, map[string]Series{"Z": {1}})
	s2 := New("upside", 0.4, 0, map[string]Series{"Z": {-1}})

	scens, err := NewScenarios([]*Scenario{s1, s2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scens.Len() != 2 {
		t.Errorf("got %d scenarios, want 2", scens.Len())
	}
}

func TestNewScenarios_WeightsMustSumToOne(t *testing.T) {
	s1 := New("downside", 0.6, 0, map[string]Series{"Z": {1}})
	s2 := New("upside", 0.5, 0, map[string]Series{"Z": {-1}})

	if _, err := NewScenarios([]*Scenario{s1, s2}); err == nil {
		t.Fatal("expected weight-sum validation error")
	}
}
