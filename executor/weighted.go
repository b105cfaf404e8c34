package executor

import (
	"time"

	"github.com/jiangshenghai57/zmodel/ecl"
	"github.com/jiangshenghai57/zmodel/scenario"
	"github.com/jiangshenghai57/zmodel/zerr"
)

// weightedComposite combines every scenario's row for a given
// (contract_id, T, forecast_reporting_date) into one composite row,
// tagged Scenario="weighted", with row_weighted = sum_s w_s * row_s
// applied to every numeric field. Non-numeric fields (contract id,
// segment, account type, reporting date) are carried through unchanged
// since they're identical across scenarios for the same key.
func weightedComposite(rows []ecl.ResultRow, scenarios *scenario.Scenarios) ([]ecl.ResultRow, error) {
	type key struct {
		contractID string
		t          int
		date       time.Time
	}
	weights := make(map[string]float64, scenarios.Len())
	for _, name := range scenarios.Names() {
		sc, ok := scenarios.Get(name)
		if !ok {
			continue
		}
		weights[name] = sc.Weight
	}

	order := []key{}
	acc := map[key]*ecl.ResultRow{}

	for _, r := range rows {
		w, ok := weights[r.Scenario]
		if !ok {
			return nil, zerr.New(zerr.ScenarioLookupMiss, r.ContractID, r.Scenario, nil)
		}
		k := key{r.ContractID, r.T, r.ForecastReportingDate}
		out, seen := acc[k]
		if !seen {
			out = &ecl.ResultRow{
				ContractID:            r.ContractID,
				T:                      r.T,
				ForecastReportingDate: r.ForecastReportingDate,
				Scenario:               "weighted",
				AccountType:            r.AccountType,
				SegmentID:              r.SegmentID,
			}
			acc[k] = out
			order = append(order, k)
		}

		out.PD += w * r.PD
		out.TwelveMonthPD += w * r.TwelveMonthPD
		out.LifetimePD += w * r.LifetimePD
		out.EAD += w * r.EAD
		out.LGD += w * r.LGD
		out.DF += w * r.DF
		out.PS1 += w * r.PS1
		out.PS2 += w * r.PS2
		out.PS3 += w * r.PS3
		out.PWO += w * r.PWO
		out.MarginalCR += w * r.MarginalCR
		out.Stage1 += w * r.Stage1
		out.Stage2 += w * r.Stage2
		out.Stage3 += w * r.Stage3
		out.CR += w * r.CR
		out.Exposure += w * r.Exposure
		out.WriteOff += w * r.WriteOff
		out.ECL += w * r.ECL
	}

	out := make([]ecl.ResultRow, 0, len(order))
	for _, k := range order {
		out = append(out, *acc[k])
	}
	return out, nil
}
