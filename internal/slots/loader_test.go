package slots

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/vaxxnz/vaxx-web/internal/models"
)

type recordingFetcher struct {
	calls []Key
	slots []models.Slot
	err   error
}

func (f *recordingFetcher) FetchSlots(_ context.Context, extID, date string) ([]models.Slot, error) {
	f.calls = append(f.calls, Key{ExtID: extID, Date: date})
	return f.slots, f.err
}

func testPair(extID string, fallback ...string) models.LocationSlotsPair {
	return models.LocationSlotsPair{
		Location: models.Location{ExtID: extID, Name: "Test Clinic"},
		Slots:    slotsAt(fallback...),
	}
}

func TestLoaderRendersNothingUntilVisible(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, testLoc)
	loader := NewLoader(testPair("loc-1", "23:00:00"), models.CalendarDate{DateStr: "2026-10-19"}, testLoc)

	if loader.State() != Idle {
		t.Fatalf("initial state = %s, want idle", loader.State())
	}
	if got := loader.Display(now); len(got) != 0 {
		t.Fatalf("unseen loader displayed %v", startTimes(got))
	}
}

func TestLoaderLiveDataWins(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, testLoc)
	fetcher := &recordingFetcher{slots: slotsAt("09:00:00", "14:00:00")}
	loader := NewLoader(testPair("loc-1", "23:00:00"), models.CalendarDate{DateStr: "2026-10-19"}, testLoc)

	loader.Run(context.Background(), fetcher)

	if loader.State() != Loaded {
		t.Fatalf("state = %s, want loaded", loader.State())
	}
	if want := []Key{{ExtID: "loc-1", Date: "2026-10-19"}}; !reflect.DeepEqual(fetcher.calls, want) {
		t.Fatalf("fetch calls = %v, want %v", fetcher.calls, want)
	}
	if got := startTimes(loader.Display(now)); !reflect.DeepEqual(got, []string{"14:00:00"}) {
		t.Fatalf("display = %v, want filtered live slots", got)
	}
	if loader.LiveCount() != 2 {
		t.Fatalf("live count = %d, want 2", loader.LiveCount())
	}

	// Seen again with live data held: no second fetch.
	loader.Run(context.Background(), fetcher)
	if len(fetcher.calls) != 1 {
		t.Fatalf("expected a single fetch, got %d", len(fetcher.calls))
	}
}

func TestLoaderFallsBackOnEmptyOrFailedFetch(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, testLoc)
	date := models.CalendarDate{DateStr: "2026-10-19"}

	tests := []struct {
		name    string
		fetcher *recordingFetcher
		state   State
	}{
		{name: "empty", fetcher: &recordingFetcher{slots: slotsAt()}, state: Loaded},
		{name: "error", fetcher: &recordingFetcher{err: errors.New("connection refused")}, state: FailedFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(testPair("loc-1", "00:30:00", "23:59:00"), date, testLoc)
			loader.Run(context.Background(), tt.fetcher)

			if loader.State() != tt.state {
				t.Fatalf("state = %s, want %s", loader.State(), tt.state)
			}
			if got := startTimes(loader.Display(now)); !reflect.DeepEqual(got, []string{"23:59:00"}) {
				t.Fatalf("display = %v, want filtered fallback", got)
			}

			loader.Run(context.Background(), tt.fetcher)
			if len(tt.fetcher.calls) != 1 {
				t.Fatalf("expected no retry, got %d calls", len(tt.fetcher.calls))
			}
		})
	}
}

func TestLoaderEmptyDisplayWhenEverythingIsPast(t *testing.T) {
	now := time.Date(2026, time.October, 19, 23, 59, 30, 0, testLoc)
	loader := NewLoader(testPair("loc-1", "00:30:00", "23:59:00"), models.CalendarDate{DateStr: "2026-10-19"}, testLoc)
	loader.Run(context.Background(), &recordingFetcher{err: errors.New("timeout")})

	if got := loader.Display(now); len(got) != 0 {
		t.Fatalf("display = %v, want empty", startTimes(got))
	}
}

func TestLoaderTomorrowKeepsAllFallback(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, testLoc)
	loader := NewLoader(testPair("loc-1", "00:30:00", "23:59:00"), models.CalendarDate{DateStr: "2026-10-20"}, testLoc)
	loader.Run(context.Background(), &recordingFetcher{})

	if got := startTimes(loader.Display(now)); !reflect.DeepEqual(got, []string{"00:30:00", "23:59:00"}) {
		t.Fatalf("display = %v, want both fallback slots", got)
	}
	if loader.DayOffset(now) != 1 {
		t.Fatalf("day offset = %d, want 1", loader.DayOffset(now))
	}
}

func TestLoaderIgnoresStaleResults(t *testing.T) {
	loader := NewLoader(testPair("loc-1"), models.CalendarDate{DateStr: "2026-10-19"}, testLoc)

	first, ok := loader.BecameVisible()
	if !ok {
		t.Fatal("expected first visibility to request a fetch")
	}

	second, ok := loader.KeyChanged(testPair("loc-1"), models.CalendarDate{DateStr: "2026-10-20"})
	if !ok {
		t.Fatal("expected a key change on a seen card to request a fetch")
	}
	if second.Key.Date != "2026-10-20" {
		t.Fatalf("ticket date = %s", second.Key.Date)
	}

	if loader.FetchSucceeded(first, slotsAt("10:00:00")) {
		t.Fatal("stale result must not be applied")
	}
	if loader.State() != Fetching {
		t.Fatalf("state = %s, want fetching", loader.State())
	}

	if !loader.FetchSucceeded(second, slotsAt("11:00:00")) {
		t.Fatal("current result must be applied")
	}
	if loader.FetchFailed(second) {
		t.Fatal("a settled ticket must not apply twice")
	}
	if loader.LiveCount() != 1 {
		t.Fatalf("live count = %d, want 1", loader.LiveCount())
	}
}

func TestLoaderKeyChangedBeforeVisible(t *testing.T) {
	loader := NewLoader(testPair("loc-1"), models.CalendarDate{DateStr: "2026-10-19"}, testLoc)

	if _, ok := loader.KeyChanged(testPair("loc-2"), models.CalendarDate{DateStr: "2026-10-19"}); ok {
		t.Fatal("unseen card must not fetch on key change")
	}
	if loader.State() != Idle {
		t.Fatalf("state = %s, want idle", loader.State())
	}

	// Same key with new fallback data does not refetch.
	loader.Run(context.Background(), &recordingFetcher{slots: slotsAt("10:00:00")})
	if _, ok := loader.KeyChanged(testPair("loc-2", "15:00:00"), models.CalendarDate{DateStr: "2026-10-19"}); ok {
		t.Fatal("unchanged key must not refetch")
	}
	if loader.State() != Loaded {
		t.Fatalf("state = %s, want loaded", loader.State())
	}
	if len(loader.Pair().Slots) != 1 {
		t.Fatal("fallback slots should be replaced")
	}
}
