// Package lgd computes the loss-given-default vector for an account
// under the SECURED, UNSECURED, CONSTANT, INDEXED or CONSTANT-GROWTH
// models (C7), with an optional climate-risk expected-adjustment applied
// to the secured-style models before flooring.
package lgd

import (
	"fmt"
	"math"

	"github.com/jiangshenghai57/zmodel/assumptions"
	"github.com/jiangshenghai57/zmodel/scenario"
	"github.com/jiangshenghai57/zmodel/zerr"
)

// Input bundles account/scenario context the LGD models need beyond the
// segment's LGDAssumption.
type Input struct {
	EAD            []float64 // from the ead package, length RemainingLife
	EIR            []float64 // from the eir package, length RemainingLife
	CollateralValue float64
	RemainingLife  int
	Scenario       *scenario.Scenario
	StartMonth     scenario.MonthIndex

	// ClimateAdjustment, if non-nil, is added to the secured-style
	// loss-given-possession before flooring, one value per horizon.
	ClimateAdjustment []float64
}

// Compute dispatches to the model named by assumption.Type.
func Compute(assumption assumptions.LGDAssumption, in Input) ([]float64, error) {
	switch assumption.Type {
	case assumptions.LGDConstant:
		return constantLGD(assumption, in), nil
	case assumptions.LGDUnsecured:
		return unsecuredLGD(assumption, in), nil
	case assumptions.LGDIndexed:
		return indexedLGD(assumption, in)
	case assumptions.LGDSecured:
		return securedLGD(assumption, in, indexRatioFlat)
	case assumptions.LGDConstantGrowth:
		return securedLGD(assumption, in, indexRatioGrowth)
	default:
		return nil, zerr.New(zerr.InvalidConfig, "", "lgd.type", fmt.Errorf("unknown LGD type %q", assumption.Type))
	}
}

func constantLGD(assumption assumptions.LGDAssumption, in Input) []float64 {
	out := make([]float64, in.RemainingLife)
	for t := range out {
		out[t] = assumption.LossGivenDefault
	}
	return out
}

func unsecuredLGD(assumption assumptions.LGDAssumption, in Input) []float64 {
	v := assumption.ProbabilityOfCure*assumption.LossGivenCure + (1-assumption.ProbabilityOfCure)*assumption.LossGivenWriteOff
	out := make([]float64, in.RemainingLife)
	for t := range out {
		out[t] = v
	}
	return out
}

func indexedLGD(assumption assumptions.LGDAssumption, in Input) ([]float64, error) {
	baseIndex, err := in.Scenario.At(assumption.Index, in.StartMonth)
	if err != nil {
		return nil, err
	}
	out := make([]float64, in.RemainingLife)
	for t := 0; t < in.RemainingLife; t++ {
		indexT, err := in.Scenario.At(assumption.Index, in.StartMonth+scenario.MonthIndex(t))
		if err != nil {
			return nil, err
		}
		out[t] = assumption.LossGivenDefault * indexT / baseIndex
	}
	return out, nil
}

// indexRatio computes the collateral appreciation ratio ci_t applied at
// horizon t given the account's time-to-sale offset.
type indexRatio func(assumption assumptions.LGDAssumption, sc *scenario.Scenario, startMonth scenario.MonthIndex, t int) (float64, error)

func indexRatioFlat(assumption assumptions.LGDAssumption, sc *scenario.Scenario, startMonth scenario.MonthIndex, t int) (float64, error) {
	base, err := sc.At(assumption.Index, startMonth)
	if err != nil {
		return 0, err
	}
	atTTS, err := sc.At(assumption.Index, startMonth+scenario.MonthIndex(t+assumption.TimeToSale))
	if err != nil {
		return 0, err
	}
	return atTTS / base, nil
}

func indexRatioGrowth(assumption assumptions.LGDAssumption, _ *scenario.Scenario, _ scenario.MonthIndex, t int) (float64, error) {
	return math.Pow(1+assumption.GrowthRate, float64(t+assumption.TimeToSale)/12), nil
}

func securedLGD(assumption assumptions.LGDAssumption, in Input, ratio indexRatio) ([]float64, error) {
	out := make([]float64, in.RemainingLife)
	for t := 0; t < in.RemainingLife; t++ {
		ci, err := ratio(assumption, in.Scenario, in.StartMonth, t)
		if err != nil {
			return nil, err
		}
		dfTTS := math.Pow(1+in.EIR[t], -float64(assumption.TimeToSale))
		eadT := in.EAD[t]

		lgp := 0.0
		if eadT != 0 {
			lgp = (eadT - in.CollateralValue*ci*(1-assumption.ForcedSaleDiscount)*(1-assumption.SaleCost)*dfTTS) / eadT
		}
		if in.ClimateAdjustment != nil && t < len(in.ClimateAdjustment) {
			lgp += in.ClimateAdjustment[t]
		}
		if lgp < assumption.Floor {
			lgp = assumption.Floor
		}
		out[t] = assumption.ProbabilityOfCure*assumption.LossGivenCure + (1-assumption.ProbabilityOfCure)*lgp
	}
	return out, nil
}
