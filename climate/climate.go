// Package climate computes the optional climate-risk expected-LGD
// adjustment: a per-account, per-date value/probability anchor set,
// linearly interpolated between anchors, with an expected value and
// variance derived via the moment-generating-style calculation
// E = Σ value·probability, Var = Σ value²·probability − E².
//
// A missing key or scenario is explicitly not an error (ClimateKeyMiss):
// callers get a zero adjustment and proceed.
package climate

import "sort"

// Anchor is one supplied (date, value[], probability[]) observation for a
// given key, where values/probabilities describe a discrete distribution
// of possible LGD adjustments at that date.
type Anchor struct {
	Month        int
	Values       []float64
	Probabilities []float64
}

// ValueAdjustment is the result of evaluating an anchor (or an
// interpolated point between anchors): its expected value and variance.
type ValueAdjustment struct {
	Expected float64
	Variance float64
}

func evaluate(values, probabilities []float64) ValueAdjustment {
	e := 0.0
	for i, v := range values {
		e += v * probabilities[i]
	}
	m2 := 0.0
	for i, v := range values {
		m2 += v * v * probabilities[i]
	}
	return ValueAdjustment{Expected: e, Variance: m2 - e*e}
}

// Scenario holds all anchors for one (scenario, key) pair, sorted by
// month, and answers interpolated lookups.
type Scenario struct {
	anchors []Anchor
}

// NewScenario sorts the supplied anchors by month.
func NewScenario(anchors []Anchor) *Scenario {
	cp := append([]Anchor(nil), anchors...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Month < cp[j].Month })
	return &Scenario{anchors: cp}
}

// At returns the expected/variance adjustment at the given month,
// linearly interpolating value/probability between the two bracketing
// anchors (and renormalising probability to sum to 1 afterward, since
// independent linear interpolation of each probability component can
// drift the total away from 1). A month outside the anchor range clamps
// to the nearest anchor.
func (s *Scenario) At(month int) ValueAdjustment {
	if len(s.anchors) == 0 {
		return ValueAdjustment{}
	}
	if len(s.anchors) == 1 || month <= s.anchors[0].Month {
		return evaluate(s.anchors[0].Values, s.anchors[0].Probabilities)
	}
	last := s.anchors[len(s.anchors)-1]
	if month >= last.Month {
		return evaluate(last.Values, last.Probabilities)
	}

	lo, hi := s.anchors[0], s.anchors[0]
	for i := 1; i < len(s.anchors); i++ {
		if s.anchors[i].Month >= month {
			lo, hi = s.anchors[i-1], s.anchors[i]
			break
		}
	}
	frac := float64(month-lo.Month) / float64(hi.Month-lo.Month)

	n := len(lo.Values)
	values := make([]float64, n)
	probabilities := make([]float64, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		values[i] = lo.Values[i] + frac*(hi.Values[i]-lo.Values[i])
		probabilities[i] = lo.Probabilities[i] + frac*(hi.Probabilities[i]-lo.Probabilities[i])
		sum += probabilities[i]
	}
	if sum > 0 {
		for i := range probabilities {
			probabilities[i] /= sum
		}
	}
	return evaluate(values, probabilities)
}

// Scenarios maps scenario name -> key -> Scenario. Lookup of either an
// unknown scenario or an unknown key returns (zero ValueAdjustment, false)
// rather than an error, per the ClimateKeyMiss policy.
type Scenarios map[string]map[string]*Scenario

// Lookup returns the expected/variance adjustment for (scenarioName, key)
// at the given month, or a zero adjustment and false if either is absent.
func (s Scenarios) Lookup(scenarioName, key string, month int) (ValueAdjustment, bool) {
	byKey, ok := s[scenarioName]
	if !ok {
		return ValueAdjustment{}, false
	}
	sc, ok := byKey[key]
	if !ok {
		return ValueAdjustment{}, false
	}
	return sc.At(month), true
}
