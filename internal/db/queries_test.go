package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/vaxxnz/vaxx-web/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}

func TestLocationQueries(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	loc := models.Location{
		ExtID:          "loc-1",
		Slug:           "city-clinic",
		Name:           "City Clinic",
		DisplayAddress: "1 Queen Street, Auckland",
		Location:       models.Coordinate{Lat: -36.85, Lng: 174.76},
	}
	if err := database.Queries.UpsertLocation(ctx, loc); err != nil {
		t.Fatalf("UpsertLocation: %v", err)
	}
	loc.Name = "City Clinic (Level 2)"
	if err := database.Queries.UpsertLocation(ctx, loc); err != nil {
		t.Fatalf("UpsertLocation update: %v", err)
	}

	got, err := database.Queries.GetLocationBySlug(ctx, "city-clinic")
	if err != nil {
		t.Fatalf("GetLocationBySlug: %v", err)
	}
	if got != loc {
		t.Fatalf("location = %+v, want %+v", got, loc)
	}

	if _, err := database.Queries.GetLocation(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("GetLocation missing err = %v", err)
	}

	all, err := database.Queries.ListLocations(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListLocations = %v, %v", all, err)
	}
}

func TestSlotSnapshots(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	for _, loc := range []models.Location{
		{ExtID: "loc-a", Slug: "a", Name: "Alpha"},
		{ExtID: "loc-b", Slug: "b", Name: "Bravo"},
	} {
		if err := database.Queries.UpsertLocation(ctx, loc); err != nil {
			t.Fatalf("UpsertLocation: %v", err)
		}
	}

	err := database.Queries.UpsertSlotSnapshot(ctx, UpsertSlotSnapshotParams{
		ExtID:     "loc-a",
		Date:      "2026-10-19",
		Slots:     []models.Slot{{LocalStartTime: "09:00:00", Available: 2}},
		FetchedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertSlotSnapshot: %v", err)
	}

	pairs, err := database.Queries.ListLocationSlotsPairs(ctx, "2026-10-19")
	if err != nil {
		t.Fatalf("ListLocationSlotsPairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs = %d, want 2", len(pairs))
	}
	if pairs[0].Location.ExtID != "loc-a" || len(pairs[0].Slots) != 1 || pairs[0].Slots[0].Available != 2 {
		t.Fatalf("alpha pair = %+v", pairs[0])
	}
	if len(pairs[1].Slots) != 0 {
		t.Fatalf("bravo should have no slots, got %+v", pairs[1].Slots)
	}

	if slots, err := database.Queries.GetSlotSnapshot(ctx, "loc-b", "2026-10-19"); err != nil || slots != nil {
		t.Fatalf("GetSlotSnapshot missing = %v, %v", slots, err)
	}

	deleted, err := database.Queries.DeleteSnapshotsBefore(ctx, "2026-10-20")
	if err != nil || deleted != 1 {
		t.Fatalf("DeleteSnapshotsBefore = %d, %v", deleted, err)
	}
}

func TestSnapshotRequiresLocation(t *testing.T) {
	database := newTestDB(t)

	err := database.Queries.UpsertSlotSnapshot(context.Background(), UpsertSlotSnapshotParams{
		ExtID:     "unknown",
		Date:      "2026-10-19",
		FetchedAt: time.Now(),
	})
	if err == nil {
		t.Fatal("expected foreign key failure for unknown location")
	}
}
