// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vaxxnz/vaxx-web/internal/analytics"
	"github.com/vaxxnz/vaxx-web/internal/api/bookings"
	"github.com/vaxxnz/vaxx-web/internal/api/outbound"
	"github.com/vaxxnz/vaxx-web/internal/availability"
	"github.com/vaxxnz/vaxx-web/internal/catalog"
	"github.com/vaxxnz/vaxx-web/internal/config"
	"github.com/vaxxnz/vaxx-web/internal/db"
	"github.com/vaxxnz/vaxx-web/internal/i18n"
	"github.com/vaxxnz/vaxx-web/internal/metrics"
	"github.com/vaxxnz/vaxx-web/internal/models"
	"github.com/vaxxnz/vaxx-web/internal/ratelimit"
	"github.com/vaxxnz/vaxx-web/internal/scheduler"
	"github.com/vaxxnz/vaxx-web/internal/slotcache"
	"github.com/vaxxnz/vaxx-web/internal/templates/layouts"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func setupLogger(environment string, debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func main() {
	cfg, err := config.Load(getEnv("CONFIG_PATH", "config/config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if port, ok := os.LookupEnv("PORT"); ok {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.App.Port = p
		}
	}
	cfg.App.Environment = getEnv("ENVIRONMENT", cfg.App.Environment)
	shutdownTimeout := time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second

	setupLogger(cfg.App.Environment, cfg.Features.EnableDebug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	if cfg.Catalog.File != "" {
		n, err := catalog.Import(ctx, database, cfg.Catalog.File)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Catalog.File).Msg("Failed to import location catalog")
		}
		log.Info().Int("locations", n).Str("file", cfg.Catalog.File).Msg("Location catalog imported")
	}

	bundle, err := i18n.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load translations")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	siteMetrics := metrics.NewSiteMetrics(registry)

	var cache *slotcache.Cache
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = newRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, slot cache disabled")
		} else {
			cache = slotcache.New(redisClient, cfg.Redis.SlotTTL)
			log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.SlotTTL).Msg("Slot cache enabled")
		}
	}

	client := availability.NewClient(
		availability.WithTimeout(cfg.Availability.Timeout),
		availability.WithObserver(siteMetrics),
	)
	proxies := availability.Proxies{
		Staging:    cfg.Availability.StagingBase,
		Production: cfg.Availability.ProductionBase,
	}

	layouts.SetHtmxSrc(cfg.App.HtmxSrc)
	bookings.InitHandlers(bookings.Deps{
		Queries:  database.Queries,
		Bundle:   bundle,
		Fetchers: bookings.HostFetchers{Client: client, Proxies: proxies, Cache: cache},
		Observer: siteMetrics,
		Location: models.SiteLocation(),
	})
	outbound.InitHandlers(database.Queries, analytics.NewRecorder(siteMetrics))

	limiter := ratelimit.New(&ratelimit.Config{
		MaxPerWindow: cfg.RateLimit.ClicksPerMinute,
		Window:       time.Minute,
		TrustProxy:   cfg.App.TrustProxy,
	})
	defer limiter.Close()

	if cfg.Features.EnableRefresh {
		if err := startFallbackRefresh(cfg, database, client, proxies, siteMetrics); err != nil {
			log.Fatal().Err(err).Msg("Failed to start fallback refresh")
		}
	}

	var metricsRegistry *prometheus.Registry
	if cfg.Features.EnableMetrics {
		metricsRegistry = registry
	}
	server := newServer(cfg, routeOptions{
		limiter:  limiter,
		registry: metricsRegistry,
	})

	g, ctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if cfg.Features.EnableRefresh {
			if err := scheduler.Stop(); err != nil {
				log.Warn().Err(err).Msg("Failed to stop scheduler")
			}
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close redis client")
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

// startFallbackRefresh schedules the snapshot refresh against the production
// proxy and runs it once straight away so a fresh database has fallback data.
func startFallbackRefresh(cfg *config.Config, database *db.DB, client *availability.Client, proxies availability.Proxies, siteMetrics *metrics.SiteMetrics) error {
	if err := scheduler.Init(models.SiteLocation()); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	svc, err := scheduler.ServiceInstance()
	if err != nil {
		return err
	}

	refresher := &catalog.Refresher{
		Queries:  database.Queries,
		Fetcher:  availability.ProxyFetcher{Client: client, Base: proxies.Production},
		Days:     cfg.Catalog.RefreshDays,
		Location: models.SiteLocation(),
		Observer: siteMetrics,
	}
	job, err := scheduler.RegisterFallbackRefreshJob(svc, refresher, cfg.Catalog.RefreshCron)
	if err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		return err
	}
	if err := job.RunNow(); err != nil {
		log.Warn().Err(err).Msg("Initial fallback refresh failed to start")
	}
	return nil
}
