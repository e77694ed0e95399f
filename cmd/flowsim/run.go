package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rfielding/flowsim/config"
	"github.com/rfielding/flowsim/logging"
	"github.com/rfielding/flowsim/report"
	"github.com/rfielding/flowsim/scenario"
	"github.com/rfielding/flowsim/telemetry"
)

var (
	csvDir      string
	workers     int
	metricsAddr string
	timeout     time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <config.toml>",
	Short: "Run every scenario in a campaign and report energy availability",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&csvDir, "csv-dir", "", "directory to write event/stats CSVs into (default: cwd)")
	runCmd.Flags().IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "worker pool size for scenario occurrences")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address while the campaign runs (e.g. :9090)")
	runCmd.Flags().DurationVar(&timeout, "timeout", 0, "wall-clock deadline for the whole campaign (e.g. 30s); 0 means no deadline (spec.md §4.6)")
}

func runRun(cmd *cobra.Command, args []string) error {
	level := "info"
	if verbose {
		level = "debug"
	}
	log := logging.New(os.Stderr, level)

	input, err := config.Load(args[0])
	if err != nil {
		log.Error().Err(err).Msg("bad input")
		return err
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		defer srv.Close()
		log.Info().Str("addr", metricsAddr).Msg("serving prometheus metrics")
	}

	dir := csvDir
	if dir == "" {
		dir = "."
	}

	allGood := true
	for id, sc := range input.Scenarios {
		start := time.Now()
		occurrences := scenario.RunCampaign(ctx, input, sc, workers)
		perOccurrence := time.Since(start).Seconds() / float64(len(occurrences))

		for i, res := range occurrences {
			res := res
			if err := writeOccurrenceCSVs(dir, id, i, &res); err != nil {
				return err
			}
			sub := logging.ForInstance(log, id, i)
			if !res.IsGood {
				allGood = false
				sub.Error().Err(res.Err).Msg("scenario instance failed")
			} else {
				sub.Info().
					Float64("energy_balance_kj", res.Stats.EnergyBalanceKJ).
					Float64("load_not_served_kj", res.Stats.LoadNotServedKJ).
					Msg("scenario instance complete")
			}
			metrics.ObserveResult(res.IsGood, perOccurrence, res.Stats.LoadNotServedKJ)
		}
	}

	if !allGood {
		os.Exit(1)
	}
	return nil
}

func writeOccurrenceCSVs(dir, scenarioID string, occurrence int, res *scenario.Results) error {
	eventPath := fmt.Sprintf("%s/%s-%d-events.csv", dir, scenarioID, occurrence)
	statsPath := fmt.Sprintf("%s/%s-%d-stats.csv", dir, scenarioID, occurrence)

	ef, err := os.Create(eventPath)
	if err != nil {
		return err
	}
	defer ef.Close()
	if err := report.WriteEventCSV(ef, res); err != nil {
		return err
	}

	sf, err := os.Create(statsPath)
	if err != nil {
		return err
	}
	defer sf.Close()
	return report.WriteStatsCSV(sf, res)
}
