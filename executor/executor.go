// Package executor fans a segment/account book out across every
// scenario, composes the weighted-scenario composite, and supports the
// dynamic and business-plan forecast modes (C11).
//
// Concurrency uses a buffered channel of size poolSize as a semaphore:
// one goroutine per unit of work acquires/releases a slot, and a mutex
// guards the shared result accumulator.
package executor

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"log/slog"

	"github.com/jiangshenghai57/zmodel/account"
	"github.com/jiangshenghai57/zmodel/assumptions"
	"github.com/jiangshenghai57/zmodel/climate"
	"github.com/jiangshenghai57/zmodel/ead"
	"github.com/jiangshenghai57/zmodel/ecl"
	"github.com/jiangshenghai57/zmodel/eir"
	"github.com/jiangshenghai57/zmodel/lgd"
	"github.com/jiangshenghai57/zmodel/logger"
	"github.com/jiangshenghai57/zmodel/pd"
	"github.com/jiangshenghai57/zmodel/scenario"
	"github.com/jiangshenghai57/zmodel/stage"
	"github.com/jiangshenghai57/zmodel/transition"
	"github.com/jiangshenghai57/zmodel/zerr"
)

// Method selects the concurrency strategy used within each scenario;
// scenarios themselves are always processed one after another. map runs
// one account at a time (a pool of size 1), thread_map runs one goroutine
// per account bounded by a pool of runtime.NumCPU() slots, and
// process_map splits the scenario's account book into runtime.NumCPU()
// chunks, each processed by its own goroutine against the same pool. Go
// has no process-fork analogue to process_map, so no separate processes
// are used.
type Method string

const (
	Map        Method = "map"
	ThreadMap  Method = "thread_map"
	ProcessMap Method = "process_map"
)

// ForecastType selects the reporting-date stepping mode.
type ForecastType string

const (
	Static       ForecastType = "static"
	BusinessPlan ForecastType = "business_plan"
	Dynamic      ForecastType = "dynamic"
)

// DynamicRange parameterises the dynamic forecast mode's start/stop/step
// reporting-date offsets, in months.
type DynamicRange struct {
	Start, Stop, Step int
}

// Run composes the full result set for accounts against scenarios using
// the given segment assumptions, climate-risk scenarios (may be nil), and
// forecast mode. It returns the detailed per-scenario rows plus the
// weighted composite rows appended (tagged Scenario="weighted"). log may
// be nil, in which case the run proceeds unlogged; otherwise every
// log line for this invocation carries a run_id correlating it back to
// this call.
func Run(
	ctx context.Context,
	log *logger.Logger,
	accounts []account.Account,
	segments map[int]assumptions.SegmentAssumptions,
	scenarios *scenario.Scenarios,
	climateScenarios climate.Scenarios,
	method Method,
	forecastType ForecastType,
	dynRange DynamicRange,
	syntheticBook []account.Account,
) ([]ecl.ResultRow, error) {
	runID := uuid.New().String()
	if log != nil {
		log.Info("executor run starting",
			slog.String("run_id", runID),
			slog.String("method", string(method)),
			slog.String("forecast_type", string(forecastType)),
			slog.Int("accounts", len(accounts)),
			slog.Int("segments", len(segments)),
		)
	}

	switch forecastType {
	case BusinessPlan:
		accounts = append(append([]account.Account(nil), accounts...), syntheticBook...)
	case Dynamic:
		offsets := make([]account.Account, 0, len(accounts)*((dynRange.Stop-dynRange.Start)/stepOrOne(dynRange.Step)+1))
		for m := dynRange.Start; m <= dynRange.Stop; m += stepOrOne(dynRange.Step) {
			for _, a := range accounts {
				offsets = append(offsets, a.WithReportingOffset(m))
			}
		}
		accounts = offsets
	case Static:
		// no account-set transformation
	default:
		return nil, zerr.New(zerr.InvalidConfig, "", "forecast_type", fmt.Errorf("unknown forecast_type %q", forecastType))
	}

	fail := func(err error) ([]ecl.ResultRow, error) {
		if log != nil {
			log.Error("executor run failed", slog.String("run_id", runID), slog.Any("error", err))
		}
		return nil, err
	}

	pipelines := make(map[int]*segmentPipeline, len(segments))
	for id, sa := range segments {
		p, err := buildSegmentPipeline(sa)
		if err != nil {
			return fail(err)
		}
		pipelines[id] = p
	}

	var all []ecl.ResultRow
	var mu sync.Mutex

	for _, scenarioName := range scenarios.Names() {
		sc, _ := scenarios.Get(scenarioName)

		rows, err := runScenario(ctx, sc, accounts, segments, pipelines, climateScenarios, method)
		if err != nil {
			return fail(err)
		}
		mu.Lock()
		all = append(all, rows...)
		mu.Unlock()
	}

	weighted, err := weightedComposite(all, scenarios)
	if err != nil {
		return fail(err)
	}
	all = append(all, weighted...)

	if log != nil {
		log.Info("executor run finished",
			slog.String("run_id", runID),
			slog.Int("rows", len(all)),
		)
	}
	return all, nil
}

func stepOrOne(step int) int {
	if step <= 0 {
		return 1
	}
	return step
}

// runScenario computes every account's ECL curve against one scenario,
// using a bounded worker pool sized per method.
func runScenario(
	ctx context.Context,
	sc *scenario.Scenario,
	accounts []account.Account,
	segments map[int]assumptions.SegmentAssumptions,
	pipelines map[int]*segmentPipeline,
	climateScenarios climate.Scenarios,
	method Method,
) ([]ecl.ResultRow, error) {
	poolSize := 1
	switch method {
	case ThreadMap, ProcessMap:
		poolSize = runtime.NumCPU()
	}

	workerPool := make(chan struct{}, poolSize)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var rows []ecl.ResultRow
	var firstErr error

	emit := func(a account.Account) {
		defer wg.Done()
		workerPool <- struct{}{}
		defer func() { <-workerPool }()

		select {
		case <-ctx.Done():
			mu.Lock()
			if firstErr == nil {
				firstErr = zerr.New(zerr.Cancelled, a.ContractID, "", ctx.Err())
			}
			mu.Unlock()
			return
		default:
		}

		sa, ok := segments[a.SegmentID]
		if !ok {
			mu.Lock()
			if firstErr == nil {
				firstErr = zerr.New(zerr.InvalidConfig, a.ContractID, "segment_id", fmt.Errorf("no assumptions for segment %d", a.SegmentID))
			}
			mu.Unlock()
			return
		}
		p := pipelines[a.SegmentID]

		accountRows, err := computeAccount(a, sa, p, sc, climateScenarios)
		if err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			return
		}

		mu.Lock()
		rows = append(rows, accountRows...)
		mu.Unlock()
	}

	if method == ProcessMap {
		// Two-level fanout: chunk the account book across the same pool
		// instead of one goroutine per account, the closest idiomatic Go
		// reading of "more aggressive parallelism" without process IPC.
		chunks := chunk(accounts, poolSize)
		for _, ch := range chunks {
			wg.Add(1)
			go func(ch []account.Account) {
				defer wg.Done()
				for _, a := range ch {
					wg.Add(1)
					emit(a)
				}
			}(ch)
		}
	} else {
		for _, a := range accounts {
			wg.Add(1)
			go emit(a)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return rows, nil
}

func chunk(accounts []account.Account, n int) [][]account.Account {
	if n < 1 {
		n = 1
	}
	size := (len(accounts) + n - 1) / n
	if size < 1 {
		size = 1
	}
	var out [][]account.Account
	for i := 0; i < len(accounts); i += size {
		end := i + size
		if end > len(accounts) {
			end = len(accounts)
		}
		out = append(out, accounts[i:end])
	}
	return out
}

// segmentPipeline holds the per-segment artefacts that are independent of
// scenario and account: the regularised, write-off-augmented monthly TTC
// matrix. Building it requires C3's eigen-decomposition work, so it is
// computed once per segment and shared (read-only) across every scenario
// and account in that segment.
type segmentPipeline struct {
	augmentedMonthlyTTC [][]float64
	defaultState        int
	cureState           int
	woColumn            int
}

func buildSegmentPipeline(sa assumptions.SegmentAssumptions) (*segmentPipeline, error) {
	monthly, err := transition.Regularise(sa.PD.TTCMatrix, sa.PD.Frequency, transition.WA)
	if err != nil {
		return nil, err
	}
	augmented := transition.AugmentWriteOff(monthly, sa.PD.DefaultState, sa.PD.CureState, sa.LGD.TimeToSale, sa.LGD.ProbabilityOfCure)
	return &segmentPipeline{
		augmentedMonthlyTTC: augmented,
		defaultState:        sa.PD.DefaultState,
		cureState:           sa.PD.CureState,
		woColumn:            len(monthly),
	}, nil
}

func computeAccount(
	a account.Account,
	sa assumptions.SegmentAssumptions,
	p *segmentPipeline,
	sc *scenario.Scenario,
	climateScenarios climate.Scenarios,
) ([]ecl.ResultRow, error) {
	startMonth := a.ReportingMonth()
	n := a.RemainingLife

	zWindow, err := sc.Window(sa.PD.ZIndex, startMonth, n)
	if err != nil {
		return nil, err
	}

	method := transition.ZShift
	if sa.PD.Method == assumptions.Method2DefaultBarrier {
		method = transition.DefaultBarrier
	}

	series, err := transition.BuildUnderZ(p.augmentedMonthlyTTC, sa.PD.Rho, zWindow, method, sa.PD.Calibrated, p.defaultState)
	if err != nil {
		return nil, err
	}

	pdCurve := pd.Build(series.Cumulative, a.CurrentRating, p.woColumn, n)

	stageIndices, err := sa.StageMap.StageIndices(a.OriginationRating)
	if err != nil {
		return nil, err
	}
	stageProbs := stage.Build(series.Cumulative, stageIndices, p.woColumn, a.CurrentRating, a.Watchlist, sa.PD.TimeInWatchlist, n)

	eirVec, err := eir.Build(
		assumptions.InterestRateType(a.InterestRateType),
		a.InterestRateFreq, a.FixedRate, a.Spread, sa.EIR, sc, startMonth, n,
	)
	if err != nil {
		return nil, err
	}

	eadVec, err := ead.Compute(sa.EAD, ead.Input{
		OutstandingBalance:    a.OutstandingBalance,
		Limit:                 a.Limit,
		CurrentArrears:        a.CurrentArrears,
		ContractualPayment:    a.ContractualPayment,
		ContractualFreq:       a.ContractualFreq,
		RemainingLife:         n,
		EIR:                   eirVec,
		MonthsUntilHolidayEnd: a.MonthsUntilHolidayEnd(),
	})
	if err != nil {
		return nil, err
	}

	var climateAdj []float64
	if climateScenarios != nil {
		climateAdj = make([]float64, n)
		for t := 0; t < n; t++ {
			adj, ok := climateScenarios.Lookup(sc.Name, a.ContractID, int(startMonth)+t)
			if ok {
				climateAdj[t] = adj.Expected
			}
		}
	}

	lgdVec, err := lgd.Compute(sa.LGD, lgd.Input{
		EAD:               eadVec,
		EIR:               eirVec,
		CollateralValue:   a.CollateralValue,
		RemainingLife:     n,
		Scenario:          sc,
		StartMonth:        startMonth,
		ClimateAdjustment: climateAdj,
	})
	if err != nil {
		return nil, err
	}

	rows := ecl.Compose(a.ContractID, a.SegmentID, string(a.AccountType), sc.Name, a.ReportingDate, ecl.Curves{
		PD:    pdCurve,
		EAD:   eadVec,
		LGD:   lgdVec,
		EIR:   eirVec,
		Stage: stageProbs,
	})
	return rows, nil
}
