package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vaxxnz/vaxx-web/internal/db"
	"github.com/vaxxnz/vaxx-web/internal/models"
	"github.com/vaxxnz/vaxx-web/internal/slots"
	"github.com/vaxxnz/vaxx-web/internal/testutil"
)

const testCatalog = `locations:
  - ext_id: "loc-akl"
    slug: "auckland-central"
    name: "Auckland Central Pharmacy"
    display_address: "10 Queen Street, Auckland"
    location:
      lat: -36.8485
      lng: 174.7633
  - ext_id: "loc-wlg"
    slug: "wellington-hub"
    name: "Wellington Vaccination Hub"
    display_address: "1 Lambton Quay, Wellington"
    location:
      lat: -41.2865
      lng: 174.7762
`

type statusCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *statusCounter) ObserveRefresh(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[status]++
}

func importTestCatalog(t *testing.T, database *db.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "locations.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	n, err := Import(context.Background(), database, path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d locations, want 2", n)
	}
}

func TestImport(t *testing.T) {
	database := testutil.NewTestDB(t)
	importTestCatalog(t, database)

	loc, err := database.Queries.GetLocationBySlug(context.Background(), "wellington-hub")
	if err != nil {
		t.Fatalf("GetLocationBySlug: %v", err)
	}
	if loc.ExtID != "loc-wlg" || loc.Location.Lat != -41.2865 {
		t.Fatalf("location = %+v", loc)
	}
}

func TestParseFileValidation(t *testing.T) {
	tests := map[string]struct {
		body string
		want string
	}{
		"missing ext id": {body: "locations:\n  - slug: a\n", want: "ext_id is required"},
		"missing slug":   {body: "locations:\n  - ext_id: a\n", want: "slug is required"},
		"bad latitude":   {body: "locations:\n  - ext_id: a\n    slug: a\n    location: {lat: 95, lng: 0}\n", want: "coordinate out of range"},
		"duplicate":      {body: "locations:\n  - ext_id: a\n    slug: a\n  - ext_id: a\n    slug: b\n", want: "duplicate ext_id"},
	}
	for name, tt := range tests {
		_, err := ParseFile([]byte(tt.body))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: err = %v, want %q", name, err, tt.want)
		}
	}
}

func TestRefreshStoresSnapshotsAndKeepsOldOnFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	importTestCatalog(t, database)
	ctx := context.Background()

	loc := time.FixedZone("NZDT", 13*3600)
	now := time.Date(2026, time.October, 19, 8, 0, 0, 0, loc)

	// A stale snapshot from yesterday is pruned; an older Wellington snapshot
	// for today survives the failed lookup.
	for _, params := range []db.UpsertSlotSnapshotParams{
		{ExtID: "loc-akl", Date: "2026-10-18", FetchedAt: now},
		{ExtID: "loc-wlg", Date: "2026-10-19", Slots: []models.Slot{{LocalStartTime: "16:00:00"}}, FetchedAt: now},
	} {
		if err := database.Queries.UpsertSlotSnapshot(ctx, params); err != nil {
			t.Fatalf("seed snapshot: %v", err)
		}
	}

	var mu sync.Mutex
	var calls []slots.Key
	fetcher := slots.FetcherFunc(func(ctx context.Context, extID, date string) ([]models.Slot, error) {
		mu.Lock()
		calls = append(calls, slots.Key{ExtID: extID, Date: date})
		mu.Unlock()
		if extID == "loc-wlg" {
			return nil, errors.New("proxy timeout")
		}
		return []models.Slot{{LocalStartTime: "10:00:00"}}, nil
	})

	observer := &statusCounter{}
	refresher := &Refresher{
		Queries:  database.Queries,
		Fetcher:  fetcher,
		Days:     2,
		Location: loc,
		Observer: observer,
		Now:      func() time.Time { return now },
	}

	result, err := refresher.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if result.Updated != 2 || result.Failed != 2 || result.Pruned != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(calls) != 4 {
		t.Fatalf("calls = %v, want 4", calls)
	}
	if observer.counts["ok"] != 2 || observer.counts["error"] != 2 {
		t.Fatalf("observer = %v", observer.counts)
	}

	akl, err := database.Queries.GetSlotSnapshot(ctx, "loc-akl", "2026-10-20")
	if err != nil || len(akl) != 1 || akl[0].LocalStartTime != "10:00:00" {
		t.Fatalf("auckland tomorrow = %v, %v", akl, err)
	}
	wlg, err := database.Queries.GetSlotSnapshot(ctx, "loc-wlg", "2026-10-19")
	if err != nil || len(wlg) != 1 || wlg[0].LocalStartTime != "16:00:00" {
		t.Fatalf("wellington today should keep the old snapshot, got %v, %v", wlg, err)
	}
}
