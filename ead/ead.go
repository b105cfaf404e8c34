// Package ead computes the exposure-at-default vector for an account
// under the CONSTANT, AMORTISING, BULLET or CCF models (C6). Money
// values are rounded to the cent via shopspring/decimal so that
// per-period balances don't drift under repeated float64 rounding across
// a multi-decade horizon.
package ead

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/jiangshenghai57/zmodel/assumptions"
	"github.com/jiangshenghai57/zmodel/zerr"
)

// Input bundles the account-level fields the EAD models need beyond the
// segment's EADAssumption.
type Input struct {
	OutstandingBalance   float64
	Limit                float64
	CurrentArrears       float64
	ContractualPayment   float64
	ContractualFreq      int // payments per year: 1,2,4,12
	RemainingLife        int
	EIR                  []float64 // length RemainingLife, from the eir package
	MonthsUntilHolidayEnd int       // 0 if no payment holiday
}

func roundToCent(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Compute dispatches to the model named by assumption.Type.
func Compute(assumption assumptions.EADAssumption, in Input) ([]float64, error) {
	switch assumption.Type {
	case assumptions.EADConstant:
		return constantEAD(assumption, in), nil
	case assumptions.EADBullet:
		return bulletEAD(assumption, in), nil
	case assumptions.EADAmortising:
		return amortisingEAD(assumption, in), nil
	case assumptions.EADCCF:
		return ccfEAD(assumption, in)
	default:
		return nil, zerr.New(zerr.InvalidConfig, "", "ead.type", fmt.Errorf("unknown EAD type %q", assumption.Type))
	}
}

func constantEAD(assumption assumptions.EADAssumption, in Input) []float64 {
	out := make([]float64, in.RemainingLife)
	v := roundToCent(in.OutstandingBalance * assumption.ExposureAtDefault)
	for t := range out {
		out[t] = v
	}
	return out
}

func ccfEAD(assumption assumptions.EADAssumption, in Input) ([]float64, error) {
	out := make([]float64, in.RemainingLife)
	var v float64
	switch assumption.CCFMethod {
	case assumptions.CCFM1:
		v = in.OutstandingBalance * assumption.CCF
	case assumptions.CCFM2:
		v = in.Limit * assumption.CCF
	case assumptions.CCFM3:
		v = in.OutstandingBalance + (in.Limit-in.OutstandingBalance)*assumption.CCF
	default:
		return nil, zerr.New(zerr.InvalidConfig, "", "ead.ccf_method", fmt.Errorf("unknown CCF method %q", assumption.CCFMethod))
	}
	v = roundToCent(v)
	for t := range out {
		out[t] = v
	}
	return out, nil
}

// eirAdjAndDiscount builds the shared eir_adj / discount-factor vectors
// used by both BULLET and AMORTISING: eir_adj_t inflates the period rate
// by fees and deflates it by prepayment, and df_t is the cumulative
// discount factor back to period 0 under eir_adj.
func eirAdjAndDiscount(assumption assumptions.EADAssumption, eirVec []float64) (eirAdj, df []float64) {
	n := len(eirVec)
	eirAdj = make([]float64, n)
	df = make([]float64, n)
	cum := 1.0
	for t := 0; t < n; t++ {
		eirAdj[t] = (1+eirVec[t])*(1+assumption.FeesPct/12)/(1+assumption.PrepaymentPct/12) - 1
		cum *= 1 + eirAdj[t]
		df[t] = 1 / cum
	}
	return eirAdj, df
}

func bulletEAD(assumption assumptions.EADAssumption, in Input) []float64 {
	n := in.RemainingLife
	_, df := eirAdjAndDiscount(assumption, in.EIR)

	out := make([]float64, n)
	cfDf := 0.0
	for t := 0; t < n; t++ {
		cf := assumption.FeesFixed
		cfDf += cf * df[t]
		balance := in.OutstandingBalance/df[t] + cfDf/df[t]
		if balance < 0 {
			balance = 0
		}
		value := balance*(1+assumption.DefaultPenaltyPct) + assumption.DefaultPenaltyAmt
		if value < 0 {
			value = 0
		}
		out[t] = roundToCent(value)
	}
	return out
}

func amortisingEAD(assumption assumptions.EADAssumption, in Input) []float64 {
	n := in.RemainingLife
	_, df := eirAdjAndDiscount(assumption, in.EIR)

	paymentsPerYear := in.ContractualFreq
	if paymentsPerYear <= 0 {
		paymentsPerYear = 12
	}
	periodStep := 12 / paymentsPerYear
	if periodStep <= 0 {
		periodStep = 1
	}

	remainingAllowance := 3*in.ContractualPayment - in.CurrentArrears
	if remainingAllowance < 0 {
		remainingAllowance = 0
	}

	out := make([]float64, n)
	cfDf := 0.0
	for t := 0; t < n; t++ {
		isPmtPeriod := (n-t)%periodStep == 0 && t >= in.MonthsUntilHolidayEnd
		cf := -assumption.FeesFixed
		if isPmtPeriod {
			cf += in.ContractualPayment
		}
		cfDf += cf * df[t]

		balance := in.OutstandingBalance/df[t] - cfDf/df[t]
		if balance < 0 {
			balance = 0
		}

		arrears := clamp(cfDf/df[t], 0, remainingAllowance)

		value := (balance+arrears)*(1+assumption.DefaultPenaltyPct) + assumption.DefaultPenaltyAmt
		if value < 0 {
			value = 0
		}
		out[t] = roundToCent(value)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
