package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	web "rinkdesk/internal/adapters/http"
	"rinkdesk/internal/adapters/http/perf"
	"rinkdesk/internal/adapters/restapi"
	"rinkdesk/internal/application/listutil"
	"rinkdesk/internal/application/projections"
	"rinkdesk/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	defaultPath := envOrDefault("RINKDESK_CONFIG", "rinkdesk.yaml")
	configPath := flag.String("config", defaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("invalid timezone: %v", err)
	}
	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		log.Fatalf("invalid csrf key: %v", err)
	}

	// Request and upstream timings share one collector for /api/perf
	collector := perf.NewCollector(perf.DefaultRingSize)

	api, err := restapi.New(cfg.APIBaseURL,
		restapi.WithServiceToken(cfg.APIToken),
		restapi.WithCollector(collector),
		restapi.WithSlowThreshold(time.Duration(cfg.SlowUpstreamMs)*time.Millisecond),
	)
	if err != nil {
		log.Fatalf("failed to create api client: %v", err)
	}

	handler, err := web.NewMux(api, collector, web.Options{
		Production:         cfg.Production(),
		CSRFKey:            csrfKey,
		TrustedOrigins:     cfg.TrustedOrigins,
		RequireToken:       cfg.APIToken == "",
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		SlowRequestMs:      cfg.SlowRequestMs,
		Location:           loc,
		Fetch: projections.FetchOptions{
			Timeout:       cfg.FetchTimeout,
			MaxConcurrent: cfg.MaxConcurrentFetches,
		},
		Tolerances:   cfg.Match.Tolerances(),
		UpcomingDays: cfg.UpcomingDays,
		Compare:      listutil.CompareFold,
	})
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		slog.Info("server_shutdown", "reason", "signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server_shutdown_failed", "error", err)
		}
	}()

	log.Printf("Rinkdesk %s starting on %s (env=%s, api=%s, tz=%s)", version, cfg.Listen, cfg.Env, api.BaseURL(), loc)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	<-drained
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
