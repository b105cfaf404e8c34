// Package assumptions holds the immutable per-segment parameter records
// (PD/EAD/LGD/EIR assumptions plus the shared StageMap) that parameterise
// every pipeline component. Assumptions are built once at load and read
// concurrently by every scenario worker thereafter.
package assumptions

import (
	"fmt"

	"github.com/jiangshenghai57/zmodel/zerr"
)

// PDMethod selects the TTC->PiT transform used by the transition package.
type PDMethod string

const (
	Method1ZShift        PDMethod = "METHOD-1"
	Method2DefaultBarrier PDMethod = "METHOD-2"
)

// PDAssumption parameterises the matrix regulariser and Z-shift transform.
type PDAssumption struct {
	ZIndex          string // scenario variable name driving the credit cycle
	Rho             float64
	Calibrated      bool
	CureState       int
	Frequency       int // 1, 4 or 12
	TimeInWatchlist int // >=1
	TTCMatrix       [][]float64
	Method          PDMethod
	DefaultState    int // index of the default rating within TTCMatrix
}

func (a PDAssumption) Validate() error {
	if a.Rho < 0 || a.Rho >= 1 {
		return zerr.New(zerr.InvalidConfig, "", "pd.rho", fmt.Errorf("rho=%v must be in [0,1)", a.Rho))
	}
	if a.Frequency != 1 && a.Frequency != 4 && a.Frequency != 12 {
		return zerr.New(zerr.InvalidConfig, "", "pd.frequency", fmt.Errorf("frequency=%v must be 1, 4 or 12", a.Frequency))
	}
	if a.TimeInWatchlist < 1 {
		return zerr.New(zerr.InvalidConfig, "", "pd.time_in_watchlist", fmt.Errorf("time_in_watchlist=%v must be >=1", a.TimeInWatchlist))
	}
	if a.Method != Method1ZShift && a.Method != Method2DefaultBarrier {
		return zerr.New(zerr.InvalidConfig, "", "pd.method", fmt.Errorf("unknown method %q", a.Method))
	}
	return nil
}

// EADType enumerates exposure-at-default model families.
type EADType string

const (
	EADConstant    EADType = "CONSTANT"
	EADAmortising  EADType = "AMORTISING"
	EADBullet      EADType = "BULLET"
	EADCCF         EADType = "CCF"
)

// CCFMethod enumerates the three credit-conversion-factor variants.
type CCFMethod string

const (
	CCFM1 CCFMethod = "M1"
	CCFM2 CCFMethod = "M2"
	CCFM3 CCFMethod = "M3"
)

// EADAssumption parameterises the exposure-at-default model.
type EADAssumption struct {
	Type              EADType
	ExposureAtDefault float64 // multiplier for CONSTANT
	CCFMethod         CCFMethod
	CCF               float64
	FeesFixed         float64
	FeesPct           float64
	PrepaymentPct     float64
	DefaultPenaltyPct float64
	DefaultPenaltyAmt float64
}

func (a EADAssumption) Validate() error {
	switch a.Type {
	case EADConstant, EADAmortising, EADBullet, EADCCF:
	default:
		return zerr.New(zerr.InvalidConfig, "", "ead.type", fmt.Errorf("unknown EAD type %q", a.Type))
	}
	if a.Type == EADCCF {
		switch a.CCFMethod {
		case CCFM1, CCFM2, CCFM3:
		default:
			return zerr.New(zerr.InvalidConfig, "", "ead.ccf_method", fmt.Errorf("unknown CCF method %q", a.CCFMethod))
		}
	}
	return nil
}

// LGDType enumerates loss-given-default model families.
type LGDType string

const (
	LGDSecured        LGDType = "SECURED"
	LGDUnsecured      LGDType = "UNSECURED"
	LGDConstant       LGDType = "CONSTANT"
	LGDIndexed        LGDType = "INDEXED"
	LGDConstantGrowth LGDType = "CONSTANT-GROWTH"
)

// LGDAssumption parameterises the loss-given-default model.
type LGDAssumption struct {
	Type               LGDType
	LossGivenDefault   float64
	GrowthRate         float64
	Index              string // scenario variable name
	ProbabilityOfCure  float64
	LossGivenCure      float64
	ForcedSaleDiscount float64
	SaleCost           float64
	TimeToSale         int
	LossGivenWriteOff  float64
	Floor              float64
}

func (a LGDAssumption) Validate() error {
	switch a.Type {
	case LGDSecured, LGDUnsecured, LGDConstant, LGDIndexed, LGDConstantGrowth:
	default:
		return zerr.New(zerr.InvalidConfig, "", "lgd.type", fmt.Errorf("unknown LGD type %q", a.Type))
	}
	for _, p := range []float64{a.ProbabilityOfCure, a.LossGivenCure, a.LossGivenWriteOff, a.Floor} {
		if p < 0 || p > 1 {
			return zerr.New(zerr.InvalidConfig, "", "lgd.probability", fmt.Errorf("probability/ratio field %v out of [0,1]", p))
		}
	}
	if (a.Type == LGDSecured || a.Type == LGDConstantGrowth) && a.TimeToSale < 1 {
		return zerr.New(zerr.InvalidConfig, "", "lgd.time_to_sale", fmt.Errorf("time_to_sale=%v must be >=1", a.TimeToSale))
	}
	return nil
}

// InterestRateType distinguishes fixed from floating-rate accounts.
type InterestRateType string

const (
	Fixed InterestRateType = "FIXED"
	Float InterestRateType = "FLOAT"
)

// EIRAssumption parameterises the effective-interest-rate builder.
type EIRAssumption struct {
	BaseRate string // scenario variable name used by FLOAT accounts
}

// StageMap partitions, per origination rating, the current-rating universe
// into four disjoint buckets (S1, S2, S3, WO). The union across all four
// buckets for a given origination rating must equal the full rating
// universe excluding the explicit WO state (WO is reached structurally,
// via the augmented transition matrix column, not via this map).
type StageMap map[int][4][]int

// StageIndices returns the four stage-bucket column index lists for the
// given origination rating.
func (m StageMap) StageIndices(originationRating int) ([4][]int, error) {
	buckets, ok := m[originationRating]
	if !ok {
		return [4][]int{}, zerr.New(zerr.InvalidConfig, fmt.Sprint(originationRating), "stage_map",
			fmt.Errorf("no stage map entry for origination rating %d", originationRating))
	}
	return buckets, nil
}

// SegmentAssumptions is the immutable per-segment record combining every
// assumption family plus the shared stage map.
type SegmentAssumptions struct {
	ID        int
	Name      string
	PD        PDAssumption
	EAD       EADAssumption
	LGD       LGDAssumption
	EIR       EIRAssumption
	StageMap  StageMap
}

func (s SegmentAssumptions) Validate() error {
	if err := s.PD.Validate(); err != nil {
		return annotate(err, s.ID)
	}
	if err := s.EAD.Validate(); err != nil {
		return annotate(err, s.ID)
	}
	if err := s.LGD.Validate(); err != nil {
		return annotate(err, s.ID)
	}
	return nil
}

func annotate(err error, segmentID int) error {
	if ee, ok := err.(*zerr.EngineError); ok {
		ee.Identifier = fmt.Sprintf("segment=%d", segmentID)
		return ee
	}
	return err
}
