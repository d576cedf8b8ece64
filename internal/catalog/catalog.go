// Package catalog maintains the location list and the fallback slots shown
// before a card's live lookup completes.
package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vaxxnz/vaxx-web/internal/db"
	"github.com/vaxxnz/vaxx-web/internal/models"
	"github.com/vaxxnz/vaxx-web/internal/slots"
)

const refreshConcurrency = 4

type File struct {
	Locations []models.Location `yaml:"locations"`
}

// ParseFile decodes a yaml catalog and checks every entry is usable.
func ParseFile(data []byte) ([]models.Location, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Locations))
	for i, loc := range file.Locations {
		loc.ExtID = strings.TrimSpace(loc.ExtID)
		loc.Slug = strings.TrimSpace(loc.Slug)
		if loc.ExtID == "" {
			return nil, fmt.Errorf("catalog entry %d: ext_id is required", i)
		}
		if loc.Slug == "" {
			return nil, fmt.Errorf("catalog entry %s: slug is required", loc.ExtID)
		}
		if loc.Location.Lat < -90 || loc.Location.Lat > 90 || loc.Location.Lng < -180 || loc.Location.Lng > 180 {
			return nil, fmt.Errorf("catalog entry %s: coordinate out of range", loc.ExtID)
		}
		if _, dup := seen[loc.ExtID]; dup {
			return nil, fmt.Errorf("catalog entry %s: duplicate ext_id", loc.ExtID)
		}
		seen[loc.ExtID] = struct{}{}
		file.Locations[i] = loc
	}
	return file.Locations, nil
}

// Import upserts the catalog at path in one transaction and returns the
// number of locations written.
func Import(ctx context.Context, database *db.DB, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read catalog: %w", err)
	}
	locations, err := ParseFile(data)
	if err != nil {
		return 0, err
	}

	err = database.RunInTx(ctx, func(tx *db.DB) error {
		for _, loc := range locations {
			if err := tx.Queries.UpsertLocation(ctx, loc); err != nil {
				return fmt.Errorf("upsert location %s: %w", loc.ExtID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(locations), nil
}

type RefreshObserver interface {
	ObserveRefresh(status string)
}

// Refresher stores fresh fallback snapshots for the next few days.
type Refresher struct {
	Queries  *db.Queries
	Fetcher  slots.Fetcher
	Days     int
	Location *time.Location
	Observer RefreshObserver
	Now      func() time.Time
}

type RefreshResult struct {
	Updated int
	Failed  int
	Pruned  int64
}

// Refresh fetches every location for today and the following Days-1 days.
// A failed lookup keeps the previous snapshot for that location and day.
func (r *Refresher) Refresh(ctx context.Context) (RefreshResult, error) {
	logger := log.Ctx(ctx)
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	loc := r.Location
	if loc == nil {
		loc = models.SiteLocation()
	}
	days := r.Days
	if days <= 0 {
		days = 1
	}

	locations, err := r.Queries.ListLocations(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("list locations: %w", err)
	}

	today := models.CalendarDateOf(now().In(loc))
	type fetchResult struct {
		extID string
		date  string
		slots []models.Slot
		err   error
	}
	results := make(chan fetchResult, len(locations)*days)

	// Lookups run concurrently; snapshots are written afterwards from this
	// goroutine so sqlite sees a single writer.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, location := range locations {
		for offset := 0; offset < days; offset++ {
			extID := location.ExtID
			date := today.AddDays(offset).DateStr
			g.Go(func() error {
				fetched, err := r.Fetcher.FetchSlots(gctx, extID, date)
				results <- fetchResult{extID: extID, date: date, slots: fetched, err: err}
				return nil
			})
		}
	}
	_ = g.Wait()
	close(results)

	var result RefreshResult
	for res := range results {
		status := "ok"
		switch {
		case res.err != nil:
			logger.Warn().Err(res.err).Str("ext_id", res.extID).Str("date", res.date).Msg("Fallback refresh fetch failed")
			status = "error"
		default:
			err := r.Queries.UpsertSlotSnapshot(ctx, db.UpsertSlotSnapshotParams{
				ExtID:     res.extID,
				Date:      res.date,
				Slots:     res.slots,
				FetchedAt: now(),
			})
			if err != nil {
				logger.Error().Err(err).Str("ext_id", res.extID).Str("date", res.date).Msg("Failed to store fallback snapshot")
				status = "error"
			}
		}

		if status == "ok" {
			result.Updated++
		} else {
			result.Failed++
		}
		if r.Observer != nil {
			r.Observer.ObserveRefresh(status)
		}
	}

	pruned, err := r.Queries.DeleteSnapshotsBefore(ctx, today.DateStr)
	if err != nil {
		return result, fmt.Errorf("prune snapshots: %w", err)
	}
	result.Pruned = pruned

	return result, nil
}
