package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/vaxxnz/vaxx-web/internal/catalog"
)

const (
	FallbackRefreshJobName = "fallback_slot_refresh"
	fallbackRefreshTimeout = 2 * time.Minute
)

type FallbackRefresher interface {
	Refresh(ctx context.Context) (catalog.RefreshResult, error)
}

// RegisterFallbackRefreshJob schedules the snapshot refresh on svc.
func RegisterFallbackRefreshJob(svc *Service, refresher FallbackRefresher, cronExpr string) (gocron.Job, error) {
	if refresher == nil {
		return nil, errors.New("fallback refresh job requires a refresher")
	}

	jobLogger := log.With().
		Str("component", "fallback_refresh_job").
		Str("job_name", FallbackRefreshJobName).
		Str("cron", cronExpr).
		Logger()

	return svc.AddJob(FallbackRefreshJobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), fallbackRefreshTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		start := time.Now()
		result, err := refresher.Refresh(ctx)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Fallback refresh failed")
			return
		}
		jobLogger.Info().
			Int("updated", result.Updated).
			Int("failed", result.Failed).
			Int64("pruned", result.Pruned).
			Dur("duration", time.Since(start)).
			Msg("Fallback refresh completed")
	})
}
