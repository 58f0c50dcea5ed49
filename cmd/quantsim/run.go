package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/newthinker/quantsim/internal/app"
	"github.com/newthinker/quantsim/internal/backtest"
	"github.com/newthinker/quantsim/internal/config"
	"github.com/newthinker/quantsim/internal/data"
	"github.com/newthinker/quantsim/internal/metrics"
	"github.com/newthinker/quantsim/internal/report"
	"github.com/newthinker/quantsim/internal/storage/archive"
	"github.com/newthinker/quantsim/internal/strategy"
	"github.com/newthinker/quantsim/internal/strategy/builtin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runDataPath     string
	runRebalance    string
	runCapital      float64
	runCommission   float64
	runSlippage     float64
	runParams       []string
	runAllMetrics   bool
	runFormat       string
	runOutput       string
	runPrintMetrics bool
)

var runCmd = &cobra.Command{
	Use:   "run [strategy...]",
	Short: "Backtest one or more strategies",
	Long: `Backtest the named strategies on the configured price table. Without
arguments every strategy enabled in the config file is run. When more than
one strategy succeeds a comparison table is printed.`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runDataPath, "data", "", "price table path (overrides data.path)")
	f.StringVarP(&runRebalance, "rebalance", "r", "", "rebalancing frequency (overrides backtest.rebalancing_frequency)")
	f.Float64Var(&runCapital, "capital", 0, "initial capital (overrides backtest.initial_capital)")
	f.Float64Var(&runCommission, "commission", -1, "commission rate (overrides backtest.commission)")
	f.Float64Var(&runSlippage, "slippage", -1, "slippage rate (overrides backtest.slippage)")
	f.StringArrayVarP(&runParams, "param", "p", nil, "strategy parameter as strategy.key=value, repeatable")
	f.BoolVar(&runAllMetrics, "all-metrics", false, "report every metric instead of the essential set")
	f.StringVarP(&runFormat, "format", "f", "text", "report format: text, json or yaml")
	f.StringVarP(&runOutput, "output", "o", "", "also write the report to this path in the data store")
	f.BoolVar(&runPrintMetrics, "print-metrics", false, "print run metrics in Prometheus text format")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	applyRunOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	format, err := report.ParseFormat(runFormat)
	if err != nil {
		return err
	}
	specs, err := buildSpecs(cfg, args, runParams)
	if err != nil {
		return err
	}
	if cfg.Data.Path == "" {
		return fmt.Errorf("no price table given, set data.path or pass --data")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry(cfg.Metrics.Namespace)
	store, err := archive.Open(cfg.Data)
	if err != nil {
		return err
	}
	series, err := data.NewLoader(store, data.WithLogger(log), data.WithMetrics(reg)).Load(ctx, cfg.Data.Path)
	if err != nil {
		return err
	}

	btCfg := backtest.Config{
		InitialCapital: cfg.Backtest.InitialCapital,
		Commission:     cfg.Backtest.Commission,
		Slippage:       cfg.Backtest.Slippage,
		Rebalancing:    cfg.Backtest.RebalancingFrequency,
	}
	runner := app.New(btCfg, builtin.NewRegistry(log), log,
		app.WithMetrics(reg),
		app.WithMaxParallel(cfg.Runner.MaxParallel),
	)
	outcomes, err := runner.RunAll(ctx, series, specs)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := writeReport(&buf, format, outcomes); err != nil {
		return err
	}
	if _, err := io.Copy(cmd.OutOrStdout(), bytes.NewReader(buf.Bytes())); err != nil {
		return err
	}

	if runOutput != "" {
		if err := store.Write(ctx, runOutput, buf.Bytes()); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		log.Info("report written", zap.String("path", runOutput))
	}

	if runPrintMetrics && cfg.Metrics.Enabled {
		fmt.Fprintln(cmd.OutOrStdout())
		if err := reg.WriteText(cmd.OutOrStdout(), cfg.Metrics.Namespace+"_"); err != nil {
			return err
		}
	}

	for _, o := range outcomes {
		if o.Err != nil {
			return fmt.Errorf("%d of %d strategies failed", countFailed(outcomes), len(outcomes))
		}
	}
	return nil
}

func applyRunOverrides(cfg *config.Config) {
	if runDataPath != "" {
		cfg.Data.Path = runDataPath
	}
	if runRebalance != "" {
		cfg.Backtest.RebalancingFrequency = runRebalance
	}
	if runCapital != 0 {
		cfg.Backtest.InitialCapital = runCapital
	}
	if runCommission >= 0 {
		cfg.Backtest.Commission = runCommission
	}
	if runSlippage >= 0 {
		cfg.Backtest.Slippage = runSlippage
	}
}

// buildSpecs resolves the strategies to run and merges command-line params
// over the configured ones
func buildSpecs(cfg *config.Config, names, overrides []string) ([]app.Spec, error) {
	if len(names) == 0 {
		names = cfg.EnabledStrategies()
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no strategies given and none enabled in config")
	}

	extra := map[string]strategy.Params{}
	for _, kv := range overrides {
		key, value, ok := strings.Cut(kv, "=")
		name, param, dotted := strings.Cut(key, ".")
		if !ok || !dotted || name == "" || param == "" {
			return nil, fmt.Errorf("invalid --param %q, want strategy.key=value", kv)
		}
		if extra[name] == nil {
			extra[name] = strategy.Params{}
		}
		extra[name][param] = value
	}

	specs := make([]app.Spec, 0, len(names))
	for _, name := range names {
		params := strategy.Params{}
		for k, v := range cfg.Strategies[name].Params {
			params[k] = v
		}
		for k, v := range extra[name] {
			params[k] = v
		}
		specs = append(specs, app.Spec{Name: name, Params: params})
	}
	return specs, nil
}

func writeReport(w io.Writer, format report.Format, outcomes []app.Outcome) error {
	names := backtest.EssentialMetricNames
	if runAllMetrics {
		names = backtest.AllMetricNames
	}

	runs := make([]report.Run, len(outcomes))
	for i, o := range outcomes {
		runs[i] = report.Run{ID: o.ID, Strategy: o.Strategy, Status: o.Status()}
		if o.Err != nil {
			runs[i].Error = o.Err.Error()
			continue
		}
		runs[i].Bars = len(o.Result.Data())
		runs[i].Metrics = o.Result.AllMetrics()
	}

	results, labels := app.Results(outcomes)
	if format == report.FormatText {
		if err := report.WriteRuns(w, format, runs, names); err != nil {
			return err
		}
		if len(results) == 0 {
			return nil
		}
		fmt.Fprintln(w)
		if len(results) == 1 {
			return report.WriteMetrics(w, format, results[0].AllMetrics(), names)
		}
	} else if len(results) < 2 {
		return report.WriteRuns(w, format, runs, names)
	}

	cmp, err := backtest.Compare(results, names...)
	if err != nil {
		return err
	}
	cmp.Labels = labels
	return report.WriteComparison(w, format, cmp)
}

func countFailed(outcomes []app.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
