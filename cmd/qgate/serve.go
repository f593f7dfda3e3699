package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theapemachine/qgate"
	"github.com/theapemachine/qgate/gateway"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway and its metrics endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		localOpts := []qgate.LocalOption{
			qgate.WithMaxQubits(cfg.MaxQubits),
			qgate.WithMaxShots(cfg.Gateway.MaxShots),
		}
		if cfg.Seed != 0 {
			localOpts = append(localOpts, qgate.WithSeed(cfg.Seed))
		}

		opts := []gateway.Option{
			gateway.WithLogger(logger.Named("gateway")),
			gateway.WithRegisterer(reg),
			gateway.WithExecutor(qgate.NewLocalExecutor(localOpts...)),
		}

		if cfg.Gateway.RedisAddr != "" {
			cache, err := gateway.DialRedis(ctx, cfg.Gateway.RedisAddr)
			if err != nil {
				return err
			}
			defer cache.Close()

			opts = append(opts, gateway.WithCache(cache))
		}

		srv := gateway.NewServer(cfg.Gateway, opts...)
		admin := &http.Server{
			Addr:              cfg.Gateway.MetricsAddr,
			Handler:           adminRouter(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return srv.Serve(ctx)
		})

		g.Go(func() error {
			logger.Info("metrics listening", zap.String("addr", admin.Addr))
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()

			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			return admin.Shutdown(shutdown)
		})

		return g.Wait()
	},
}

func adminRouter(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return r
}
