// Package results aggregates emitted ECL rows into summary and parameter
// reports (C12).
package results

import (
	"time"

	"github.com/jiangshenghai57/zmodel/ecl"
)

// GroupField names one field of GroupKey a caller can request via the by
// parameter of Summarise/Parameters.
type GroupField string

const (
	ByAccountType           GroupField = "account_type"
	BySegmentID             GroupField = "segment_id"
	ByForecastReportingDate GroupField = "forecast_reporting_date"
	ByScenario              GroupField = "scenario"
)

// DefaultGroupBy is {account_type, segment_id, forecast_reporting_date,
// scenario}, used by Summarise/Parameters when by is empty.
var DefaultGroupBy = []GroupField{ByAccountType, BySegmentID, ByForecastReportingDate, ByScenario}

// GroupKey is the aggregation key built from the requested group-by
// fields; fields not requested are left at their zero value, so two rows
// that differ only in an unrequested field collapse into the same key.
type GroupKey struct {
	AccountType           string
	SegmentID             int
	ForecastReportingDate time.Time
	Scenario              string
}

// StageSummary is one stage's (S1/S2/S3/WO) aggregated figures.
type StageSummary struct {
	N        float64
	Exposure float64
	ECL      float64
}

// SummaryRow is one aggregated (GroupKey) record across all four stages.
type SummaryRow struct {
	Key    GroupKey
	Stages [4]StageSummary // index 0..3 = S1,S2,S3,WO
}

// CR returns the coverage ratio for stage s, 0 when exposure is 0.
func (s StageSummary) CR() float64 {
	if s.Exposure == 0 {
		return 0
	}
	return s.ECL / s.Exposure
}

func resolveGroupBy(by []GroupField) []GroupField {
	if len(by) == 0 {
		return DefaultGroupBy
	}
	return by
}

func keyOf(r ecl.ResultRow, by []GroupField) GroupKey {
	var k GroupKey
	for _, f := range by {
		switch f {
		case ByAccountType:
			k.AccountType = r.AccountType
		case BySegmentID:
			k.SegmentID = r.SegmentID
		case ByForecastReportingDate:
			k.ForecastReportingDate = r.ForecastReportingDate
		case ByScenario:
			k.Scenario = r.Scenario
		}
	}
	return k
}

// Summarise rolls up rows by the requested group-by fields (default
// {account_type, segment_id, forecast_reporting_date, scenario} when by
// is empty), per account row t: n_s = sum(pi_t[s]),
// exposure_s = sum(ead*pi_t[s]), ecl_s = sum(stage_s*pi_t[s])
// (WO uses exposure itself).
func Summarise(rows []ecl.ResultRow, by ...GroupField) []SummaryRow {
	by = resolveGroupBy(by)
	idx := map[GroupKey]*SummaryRow{}
	order := []GroupKey{}

	for _, r := range rows {
		k := keyOf(r, by)
		sr, ok := idx[k]
		if !ok {
			sr = &SummaryRow{Key: k}
			idx[k] = sr
			order = append(order, k)
		}

		woExposure := r.EAD * r.PWO
		sr.Stages[0].N += r.PS1
		sr.Stages[0].Exposure += r.EAD * r.PS1
		sr.Stages[0].ECL += r.Stage1 * r.PS1

		sr.Stages[1].N += r.PS2
		sr.Stages[1].Exposure += r.EAD * r.PS2
		sr.Stages[1].ECL += r.Stage2 * r.PS2

		sr.Stages[2].N += r.PS3
		sr.Stages[2].Exposure += r.EAD * r.PS3
		sr.Stages[2].ECL += r.Stage3 * r.PS3

		sr.Stages[3].N += r.PWO
		sr.Stages[3].Exposure += woExposure
		sr.Stages[3].ECL += woExposure
	}

	out := make([]SummaryRow, 0, len(order))
	for _, k := range order {
		out = append(out, *idx[k])
	}
	return out
}

// ParameterRow holds exposure-weighted 12mPD/LGD aggregates for one
// GroupKey.
type ParameterRow struct {
	Key           GroupKey
	Exposure      float64
	TwelveMonthPD float64 // exposure-weighted
	LGD           float64 // exposure-weighted
}

// Parameters aggregates exposure-weighted 12mPD and LGD by the requested
// group-by fields (default as in Summarise): N = p1+p2+p3;
// exposure = ead*N; then epd = sum(exposure*12mPD)/sum(exposure),
// elgd = sum(exposure*lgd)/sum(exposure).
func Parameters(rows []ecl.ResultRow, by ...GroupField) []ParameterRow {
	by = resolveGroupBy(by)
	type acc struct {
		exposure float64
		epd      float64
		elgd     float64
	}
	idx := map[GroupKey]*acc{}
	order := []GroupKey{}

	for _, r := range rows {
		k := keyOf(r, by)
		a, ok := idx[k]
		if !ok {
			a = &acc{}
			idx[k] = a
			order = append(order, k)
		}
		n := r.PS1 + r.PS2 + r.PS3
		exposure := r.EAD * n
		a.exposure += exposure
		a.epd += exposure * r.TwelveMonthPD
		a.elgd += exposure * r.LGD
	}

	out := make([]ParameterRow, 0, len(order))
	for _, k := range order {
		a := idx[k]
		row := ParameterRow{Key: k, Exposure: a.exposure}
		if a.exposure != 0 {
			row.TwelveMonthPD = a.epd / a.exposure
			row.LGD = a.elgd / a.exposure
		}
		out = append(out, row)
	}
	return out
}

// ReportingDateSlice returns the rows where T=0 and account_type=Actual,
// the as-of-today cross-section of the book.
func ReportingDateSlice(rows []ecl.ResultRow) []ecl.ResultRow {
	out := make([]ecl.ResultRow, 0)
	for _, r := range rows {
		if r.T == 0 && r.AccountType == "Actual" {
			out = append(out, r)
		}
	}
	return out
}
