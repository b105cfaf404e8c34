// Package eir builds the monthly effective-interest-rate vector for an
// account, for either a fixed-rate or floating-rate contract (C5).
package eir

import (
	"fmt"
	"math"

	"github.com/jiangshenghai57/zmodel/assumptions"
	"github.com/jiangshenghai57/zmodel/scenario"
	"github.com/jiangshenghai57/zmodel/zerr"
)

// Build returns the monthly EIR vector of length remainingLife.
//
// FIXED:  eir_t = (1 + fixed_rate/freq_c)^(freq_c/12) - 1, constant.
// FLOAT:  eir_t = ((1+spread/freq_c)^(freq_c/12)-1) + ((1+base_rate_t)^(1/12)-1)
//
// where base_rate_t is read from the scenario variable named by the EIR
// assumption's BaseRate at the account's month-end index.
func Build(
	interestRateType assumptions.InterestRateType,
	interestRateFreq int,
	fixedRate, spread float64,
	eirAssumption assumptions.EIRAssumption,
	sc *scenario.Scenario,
	startMonth scenario.MonthIndex,
	remainingLife int,
) ([]float64, error) {
	freqC := float64(interestRateFreq)
	out := make([]float64, remainingLife)

	switch interestRateType {
	case assumptions.Fixed:
		rate := math.Pow(1+fixedRate/freqC, freqC/12) - 1
		for t := range out {
			out[t] = rate
		}
		return out, nil

	case assumptions.Float:
		spreadLeg := math.Pow(1+spread/freqC, freqC/12) - 1
		for t := 0; t < remainingLife; t++ {
			baseRate, err := sc.At(eirAssumption.BaseRate, startMonth+scenario.MonthIndex(t))
			if err != nil {
				return nil, err
			}
			baseLeg := math.Pow(1+baseRate, 1.0/12) - 1
			out[t] = spreadLeg + baseLeg
		}
		return out, nil

	default:
		return nil, zerr.New(zerr.InvalidConfig, "", "interest_rate_type", fmt.Errorf("unknown interest_rate_type %q", interestRateType))
	}
}

// DiscountFactors returns df0_t = 1/prod_{k<=t}(1+eir_k) (discount back to
// reporting date) and df_t = prod_{k<=t}(1+eir_k)/(1+eir_0) (horizon
// relative to period 0), both of length len(eirVec).
func DiscountFactors(eirVec []float64) (df0, df []float64) {
	n := len(eirVec)
	df0 = make([]float64, n)
	df = make([]float64, n)
	cum := 1.0
	for t := 0; t < n; t++ {
		cum *= 1 + eirVec[t]
		df0[t] = 1 / cum
		df[t] = cum / (1 + eirVec[0])
	}
	return df0, df
}
