package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/retrolife/retrolife/pkg/config"
	"github.com/retrolife/retrolife/pkg/lib/filemonitor"
	"github.com/retrolife/retrolife/pkg/lib/profile"
	"github.com/retrolife/retrolife/pkg/lib/signals"
	"github.com/retrolife/retrolife/pkg/life"
	"github.com/retrolife/retrolife/pkg/metrics"
	"github.com/retrolife/retrolife/pkg/output"
	"github.com/retrolife/retrolife/pkg/solver"
)

func newWatchCmd() *cobra.Command {
	var (
		configPath  string
		metricsAddr string
		profiling   bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-solve whenever the target state file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(configPath, config.Overrides{})
			if err != nil {
				return err
			}
			logger := newLogger(settings.Solver.Verbosity, verbose)
			ctx := signals.Context()

			if metricsAddr != "" {
				registry := prometheus.NewRegistry()
				if err := metrics.RegisterDefault(registry); err != nil {
					return err
				}
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
				if profiling {
					profile.RegisterHandlers(mux)
				}
				server := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.WithError(err).Warn("metrics server stopped")
					}
				}()
				go func() {
					<-ctx.Done()
					server.Close()
				}()
				logger.Infof("serving metrics on %s", metricsAddr)
			}

			solveOnce := func() {
				target, err := life.LoadFile(settings.Input.TargetStateFile)
				if err != nil {
					logger.WithError(err).Warn("target file unreadable, waiting for next change")
					return
				}
				opts, err := settings.SolverOptions()
				if err != nil {
					logger.WithError(err).Error("invalid solver settings")
					return
				}
				problem, err := solver.NewReverseProblem(target, opts, logger)
				if err != nil {
					logger.WithError(err).Error("failed to set up problem")
					return
				}
				result, err := problem.Solve(ctx)
				if err != nil {
					logger.WithError(err).Error("solve failed")
					return
				}
				rendered, err := output.Render(
					output.Format(settings.Output.Format), result, target, problem.Options(), false)
				if err != nil {
					logger.WithError(err).Error("failed to render result")
					return
				}
				fmt.Fprint(cmd.OutOrStdout(), rendered)
				if err := output.Save(
					settings.Output.OutputDirectory, result, problem.Options(),
					settings.Output.SaveIntermediate); err != nil {
					logger.WithError(err).Warn("failed to save solutions")
				}
			}

			// Debounce: editors fire several events per save.
			pending := make(chan struct{}, 1)
			watcher, err := filemonitor.NewWatcher(logger, settings.Input.TargetStateFile, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
			if err != nil {
				return err
			}
			watcher.Run(ctx)

			logger.Infof("watching %s", settings.Input.TargetStateFile)
			solveOnce()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-pending:
					time.Sleep(100 * time.Millisecond)
					for len(pending) > 0 {
						<-pending
					}
					solveOnce()
				}
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file path")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve prometheus metrics on (empty disables)")
	cmd.Flags().BoolVar(&profiling, "profiling", false, "serve pprof handlers alongside the metrics endpoint")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	return cmd
}
