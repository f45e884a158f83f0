package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/fewston/stile"
	"github.com/fewston/stile/internal/config"
	"github.com/fewston/stile/internal/demo"
	"github.com/fewston/stile/internal/flows/arrange"
	"github.com/fewston/stile/internal/flows/record"
	"github.com/fewston/stile/internal/logging"
	httpadapter "github.com/fewston/stile/pkg/adapters/http"
	"github.com/fewston/stile/pkg/adapters/memory"
	redisadapter "github.com/fewston/stile/pkg/adapters/redis"
	"github.com/fewston/stile/pkg/observability"
	"github.com/fewston/stile/pkg/ports"
	"github.com/fewston/stile/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the form flows over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.LogLevel = lvl
		}
		return serve(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cfg config.Config) error {
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	ttl, err := cfg.TTL()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	svc := demo.New()

	var client *goredis.Client
	if cfg.Redis.Addr != "" {
		client = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("using redis sessions", "addr", cfg.Redis.Addr)
	} else {
		logger.Info("using in-memory sessions")
	}

	arrangeFlow, err := arrange.New(svc, httpadapter.StepURLs("/arrange"),
		stile.WithLogger[arrange.Appointment](logger),
		stile.WithLifecycleHooks[arrange.Appointment](metrics.Hooks()))
	if err != nil {
		return fmt.Errorf("failed to build arrange flow: %w", err)
	}
	recordFlow, err := record.New(svc.Outcomes(), httpadapter.StepURLs("/outcome"),
		stile.WithLogger[record.Outcome](logger),
		stile.WithLifecycleHooks[record.Outcome](metrics.Hooks()))
	if err != nil {
		return fmt.Errorf("failed to build record flow: %w", err)
	}

	r := chi.NewRouter()
	r.Mount("/arrange", httpadapter.NewHandler(arrangeFlow,
		newSessions[arrange.Appointment](client, ttl, "stile:arrange:", logger),
		httpadapter.WithLogger[arrange.Appointment](logger)))
	r.Mount("/outcome", httpadapter.NewHandler(recordFlow,
		newSessions[record.Outcome](client, ttl, "stile:outcome:", logger),
		httpadapter.WithLogger[record.Outcome](logger)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.Listen, Handler: r}
	msrv := &http.Server{
		Addr:    cfg.MetricsListen,
		Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}

	errs := make(chan error, 2)
	go func() {
		logger.Info("listening", "addr", cfg.Listen)
		errs <- srv.ListenAndServe()
	}()
	go func() {
		logger.Info("metrics listening", "addr", cfg.MetricsListen)
		errs <- msrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := msrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown", "error", err)
	}
	if client != nil {
		if err := client.Close(); err != nil {
			logger.Error("redis close", "error", err)
		}
	}
	return nil
}

// newSessions builds a session manager for one flow: Redis-backed with a
// distributed lock when a client is configured, otherwise in-process memory.
func newSessions[D any](client *goredis.Client, ttl time.Duration, prefix string, logger *slog.Logger) *session.Manager[D] {
	if client == nil {
		return session.NewManager[D](memory.NewStore[D](),
			session.WithLogger[D](logger))
	}

	var store ports.SessionStore[D] = redisadapter.NewFromClient[D](client,
		redisadapter.WithTTL[D](ttl),
		redisadapter.WithPrefix[D](prefix))
	return session.NewManager[D](store,
		session.WithLocker[D](redisadapter.NewLocker(client, prefix+"lock:")),
		session.WithLogger[D](logger))
}
