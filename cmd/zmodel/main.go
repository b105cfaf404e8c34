// Command zmodel is the CLI entrypoint for the ECL engine: it loads
// config, validates and echoes a pre-built scenario file, validates the
// run flags, and signs license blobs. The run subcommand has no book,
// assumptions or scenario loader wired, so it does not run the executor
// or write reports; it returns an IOFailure error after logging the
// resolved run configuration.
package main

import (
	"encoding/json"
	"encoding/pem"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"crypto/x509"

	"github.com/jiangshenghai57/zmodel/config"
	"github.com/jiangshenghai57/zmodel/executor"
	"github.com/jiangshenghai57/zmodel/license"
	"github.com/jiangshenghai57/zmodel/logger"
	"github.com/jiangshenghai57/zmodel/results"
	"github.com/jiangshenghai57/zmodel/zerr"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: zmodel <about|generate-scenarios|run|create-license|gui> [flags]")
		return 1
	}

	cfg, cfgErr := config.Load()
	logDir := cfg.LogDir
	if logDir == "" {
		logDir = "./logs"
	}
	log, logErr := logger.NewLogger(logDir)
	if logErr != nil {
		fmt.Fprintln(os.Stderr, "failed to initialise logger:", logErr)
		return 3
	}
	if cfgErr != nil {
		log.Warn("config load failed, continuing with defaults", slog.Any("error", cfgErr))
	}

	var err error
	switch args[0] {
	case "about":
		err = cmdAbout()
	case "generate-scenarios":
		err = cmdGenerateScenarios(args[1:], log)
	case "run":
		err = cmdRun(args[1:], cfg, log)
	case "create-license":
		err = cmdCreateLicense(args[1:], log)
	case "gui":
		fmt.Println("gui: not implemented in this distribution")
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", args[0])
		return 1
	}

	if err == nil {
		return 0
	}
	log.Error("subcommand failed", slog.String("subcommand", args[0]), slog.Any("error", err))
	return exitCodeFor(err)
}

// exitCodeFor classifies an engine error into the exit-code buckets: 1
// for a caller-fixable input problem (bad config, bad matrix, unknown
// scenario/climate key), 2 for a license problem, 3 for an operational
// failure (I/O, cancellation) or an error this CLI didn't originate.
func exitCodeFor(err error) int {
	switch {
	case zerr.Is(err, zerr.InvalidConfig), zerr.Is(err, zerr.InvalidTTCMatrix),
		zerr.Is(err, zerr.MatrixRegularisationError), zerr.Is(err, zerr.ScenarioLookupMiss),
		zerr.Is(err, zerr.ClimateKeyMiss):
		return 1
	case zerr.Is(err, zerr.LicenseInvalid):
		return 2
	default:
		return 3
	}
}

func cmdAbout() error {
	fmt.Printf("zmodel %s — IFRS9 expected-credit-loss engine\n", version)
	return nil
}

// cmdGenerateScenarios validates and echoes a pre-built scenario file.
// The stochastic macro simulator that would normally produce this file
// is an external collaborator, out of scope here.
func cmdGenerateScenarios(args []string, log *logger.Logger) error {
	fs := flag.NewFlagSet("generate-scenarios", flag.ExitOnError)
	path := fs.String("scenario-file", "", "path to a pre-built scenario JSON file")
	fs.Parse(args)

	if *path == "" {
		return zerr.New(zerr.InvalidConfig, "", "scenario-file", fmt.Errorf("--scenario-file is required"))
	}
	raw, err := os.ReadFile(*path)
	if err != nil {
		return zerr.New(zerr.IOFailure, *path, "scenario-file", err)
	}
	var echoCheck interface{}
	if err := json.Unmarshal(raw, &echoCheck); err != nil {
		return zerr.New(zerr.InvalidConfig, *path, "scenario-file", err)
	}
	log.Info("scenario file validated", slog.String("path", *path))
	fmt.Println("scenario file OK:", *path)
	return nil
}

type byFlag []string

func (b *byFlag) String() string { return fmt.Sprint(*b) }
func (b *byFlag) Set(v string) error {
	*b = append(*b, v)
	return nil
}

func parseMethod(s string) (executor.Method, error) {
	switch executor.Method(s) {
	case executor.Map, executor.ThreadMap, executor.ProcessMap:
		return executor.Method(s), nil
	default:
		return "", zerr.New(zerr.InvalidConfig, "", "method", fmt.Errorf("unknown method %q", s))
	}
}

func parseForecastType(s string) (executor.ForecastType, error) {
	switch executor.ForecastType(s) {
	case executor.Static, executor.BusinessPlan, executor.Dynamic:
		return executor.ForecastType(s), nil
	default:
		return "", zerr.New(zerr.InvalidConfig, "", "forecast-type", fmt.Errorf("unknown forecast_type %q", s))
	}
}

// parseGroupBy validates each requested --by field against the results
// package's group-by vocabulary, returning results.DefaultGroupBy when
// none were supplied.
func parseGroupBy(fields []string) ([]results.GroupField, error) {
	if len(fields) == 0 {
		return results.DefaultGroupBy, nil
	}
	out := make([]results.GroupField, 0, len(fields))
	for _, f := range fields {
		switch results.GroupField(f) {
		case results.ByAccountType, results.BySegmentID, results.ByForecastReportingDate, results.ByScenario:
			out = append(out, results.GroupField(f))
		default:
			return nil, zerr.New(zerr.InvalidConfig, "", "by", fmt.Errorf("unknown group-by field %q", f))
		}
	}
	return out, nil
}

// cmdRun parses and validates the run flags and logs the resolved run
// configuration. The book, segment assumptions, and scenario set are
// loaded by a data-access layer outside this engine's scope; a concrete
// deployment wires a loader here, feeds its output into executor.Run with
// the parsed Method/ForecastType/DynamicRange below, and passes groupBy
// to results.Summarise/results.Parameters for the summary/parameter
// reports.
func cmdRun(args []string, cfg config.Config, log *logger.Logger) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	forecastTypeFlag := fs.String("forecast-type", "static", "static|business_plan|dynamic")
	methodFlag := fs.String("method", "thread_map", "map|thread_map|process_map")
	start := fs.Int("start", 0, "dynamic forecast start offset, months")
	stop := fs.Int("stop", 0, "dynamic forecast stop offset, months")
	step := fs.Int("step", 1, "dynamic forecast step, months")
	var by byFlag
	fs.Var(&by, "by", "group-by field for the summary report (repeatable; account_type|segment_id|forecast_reporting_date|scenario)")
	fs.Parse(args)

	method, err := parseMethod(*methodFlag)
	if err != nil {
		return err
	}
	forecastType, err := parseForecastType(*forecastTypeFlag)
	if err != nil {
		return err
	}
	groupBy, err := parseGroupBy(by)
	if err != nil {
		return err
	}
	dynRange := executor.DynamicRange{Start: *start, Stop: *stop, Step: *step}

	log.Info("run starting",
		slog.String("forecast_type", string(forecastType)),
		slog.String("method", string(method)),
		slog.Any("group_by", groupBy),
		slog.String("output_dir", cfg.OutputDir),
		slog.Group("dynamic_range",
			slog.Int("start", dynRange.Start),
			slog.Int("stop", dynRange.Stop),
			slog.Int("step", dynRange.Step),
		),
	)

	return zerr.New(zerr.IOFailure, "", "run",
		fmt.Errorf("no book/assumptions/scenario loader wired in this distribution"))
}

func cmdCreateLicense(args []string, log *logger.Logger) error {
	fs := flag.NewFlagSet("create-license", flag.ExitOnError)
	company := fs.String("company", "", "company name")
	email := fs.String("email", "", "contact email")
	author := fs.String("author", "", "issuing author")
	years := fs.Int("years", 1, "validity period in years")
	keyPath := fs.String("private-key", "", "path to a PEM-encoded PKCS#1 RSA private key")
	out := fs.String("out", "license.json", "output path for the signed blob")
	fs.Parse(args)

	if *company == "" || *keyPath == "" {
		return zerr.New(zerr.InvalidConfig, "", "create-license", fmt.Errorf("--company and --private-key are required"))
	}

	pemBytes, err := os.ReadFile(*keyPath)
	if err != nil {
		return zerr.New(zerr.IOFailure, *keyPath, "private-key", err)
	}
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return zerr.New(zerr.InvalidConfig, *keyPath, "private-key", fmt.Errorf("no PEM block found"))
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return zerr.New(zerr.InvalidConfig, *keyPath, "private-key", err)
	}

	blob, err := license.Sign(license.Information{
		CompanyName:    *company,
		Email:          *email,
		Author:         *author,
		ExpirationDate: time.Now().AddDate(*years, 0, 0),
	}, priv)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return zerr.New(zerr.IOFailure, *out, "license", err)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		return zerr.New(zerr.IOFailure, *out, "license", err)
	}

	log.Info("license created", slog.String("company", *company), slog.String("out", *out),
		slog.Time("expiration_date", blob.Information.ExpirationDate))
	fmt.Println("license written to", *out)
	return nil
}
