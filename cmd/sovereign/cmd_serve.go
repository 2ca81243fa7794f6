package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bitfsorg/libsovereign-go/harvester"
	"github.com/bitfsorg/libsovereign-go/metrics"
)

var cmdServe = &cobra.Command{
	Use:   "serve",
	Short: "Serve metrics and run the scheduled fee harvester",
	Args:  cobra.NoArgs,
	Run:   serve,
}

var flagServe struct {
	Capability string
	Schedule   string
	Mints      []string
}

func init() {
	cmdMain.AddCommand(cmdServe)
	cmdServe.Flags().StringVar(&flagServe.Capability, "capability", "", "Fee operator capability; enables the harvester")
	cmdServe.Flags().StringVar(&flagServe.Schedule, "schedule", "", "Harvest schedule (overrides config)")
	cmdServe.Flags().StringSliceVar(&flagServe.Mints, "mint", nil, "Restrict harvesting to these mints")
}

func serve(*cobra.Command, []string) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	e := openEnvWithMetrics(metrics.New(reg))
	defer e.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              e.cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var h *harvester.Harvester
	if flagServe.Capability != "" {
		h = newHarvester(e)
		schedule := e.cfg.HarvestSchedule
		if flagServe.Schedule != "" {
			schedule = flagServe.Schedule
		}
		check(h.Start(ctx, schedule))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e.logger.Info("serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		if h != nil {
			h.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	checkf(g.Wait(), "serve")
	e.logger.Info("stopped")
}

func newHarvester(e *env) *harvester.Harvester {
	opts := []harvester.Option{
		harvester.WithLogger(e.logger),
		harvester.WithSweepHook(func(r harvester.Report) {
			e.logger.Info("sweep complete",
				"mints", r.Mints,
				"harvested", r.Harvested,
				"withdrawn", r.Withdrawn,
				"failures", r.Failures,
			)
		}),
	}
	if len(flagServe.Mints) > 0 {
		opts = append(opts, harvester.WithMints(parseAddrs(flagServe.Mints)...))
	}
	return harvester.New(e.eng, identity(), parseAddr(flagServe.Capability), opts...)
}
