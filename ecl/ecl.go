// Package ecl composes the per-account, per-horizon ECL result rows from
// the PD, EAD, LGD, EIR and stage-probability curves (C10).
package ecl

import (
	"time"

	"github.com/jiangshenghai57/zmodel/pd"
	"github.com/jiangshenghai57/zmodel/stage"
)

// ResultRow is one (contract_id, T, forecast_reporting_date) record.
type ResultRow struct {
	ContractID            string
	T                      int
	ForecastReportingDate time.Time
	Scenario               string
	AccountType            string
	SegmentID              int

	PD          float64
	TwelveMonthPD float64
	LifetimePD  float64
	EAD         float64
	LGD         float64
	DF          float64
	PS1, PS2, PS3, PWO float64

	MarginalCR float64
	Stage1, Stage2, Stage3 float64
	CR         float64
	Exposure   float64
	WriteOff   float64
	ECL        float64
}

// Curves bundles the per-horizon inputs the composer combines.
type Curves struct {
	PD    pd.Curve
	EAD   []float64
	LGD   []float64
	EIR   []float64
	Stage stage.Probabilities
}

// Compose produces one ResultRow per horizon t in [0, len(curves.EAD)):
//
//	df0_t = 1/prod_{k<=t}(1+eir_k)
//	df_t  = prod_{k<=t}(1+eir_k)/(1+eir_0)
//	mcr_t = pd_t * ead_t * lgd_t * df0_t
//	stage3_t = ead_t*lgd_t
//	stage2_t0 = sum_{k>=t} mcr_k;  stage2_t = stage2_t0*df_t
//	stage1_t0 = stage2_t0 - shift12(stage2_t0); stage1_t = stage1_t0*df_t
//	exposure_t = ead_t*(p1+p2+p3)
//	ecl_t = p1*stage1_t + p2*stage2_t + p3*stage3_t
//	cr_t = ecl_t/exposure_t (0 when exposure=0)
//	writeoff_t = ead_t*pWO
func Compose(contractID string, segmentID int, accountType string, scenarioName string, reportingDate time.Time, curves Curves) []ResultRow {
	n := len(curves.EAD)

	df0 := make([]float64, n)
	df := make([]float64, n)
	cum := 1.0
	for t := 0; t < n; t++ {
		cum *= 1 + curves.EIR[t]
		df0[t] = 1 / cum
		df[t] = cum / (1 + curves.EIR[0])
	}

	mcr := make([]float64, n)
	for t := 0; t < n; t++ {
		mcr[t] = curves.PD.Marginal[t] * curves.EAD[t] * curves.LGD[t] * df0[t]
	}

	stage2T0 := make([]float64, n)
	running := 0.0
	for t := n - 1; t >= 0; t-- {
		running += mcr[t]
		stage2T0[t] = running
	}

	rows := make([]ResultRow, n)
	for t := 0; t < n; t++ {
		stage3 := curves.EAD[t] * curves.LGD[t]
		stage2 := stage2T0[t] * df[t]

		stage1T0 := stage2T0[t]
		if t+12 < n {
			stage1T0 -= stage2T0[t+12]
		}
		stage1 := stage1T0 * df[t]

		p := curves.Stage[t]
		exposure := curves.EAD[t] * (p[0] + p[1] + p[2])
		eclT := p[0]*stage1 + p[1]*stage2 + p[2]*stage3

		cr := 0.0
		if exposure != 0 {
			cr = eclT / exposure
		}

		rows[t] = ResultRow{
			ContractID:            contractID,
			T:                      t,
			ForecastReportingDate: addMonths(reportingDate, t),
			Scenario:               scenarioName,
			AccountType:            accountType,
			SegmentID:              segmentID,

			PD:            curves.PD.Marginal[t],
			TwelveMonthPD: curves.PD.TwelveMonth[t],
			LifetimePD:    curves.PD.Lifetime[t],
			EAD:           curves.EAD[t],
			LGD:           curves.LGD[t],
			DF:            df0[t],
			PS1:           p[0],
			PS2:           p[1],
			PS3:           p[2],
			PWO:           p[3],

			MarginalCR: mcr[t],
			Stage1:     stage1,
			Stage2:     stage2,
			Stage3:     stage3,
			CR:         cr,
			Exposure:   exposure,
			WriteOff:   curves.EAD[t] * p[3],
			ECL:        eclT,
		}
	}
	return rows
}

func addMonths(t time.Time, months int) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months+1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}
