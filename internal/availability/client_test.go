package availability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type outcomeRecorder struct {
	outcomes []string
}

func (r *outcomeRecorder) ObserveFetch(outcome string, _ float64) {
	r.outcomes = append(r.outcomes, outcome)
}

func newTestServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestFetchSlotsPostsBookingIntent(t *testing.T) {
	base := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/public/locations/loc-42/date/2026-10-19/slots" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content type = %s", ct)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["vaccineData"] != "WyJhMVQ0YTAwMDAwMEhJS0NFQTQiXQ==" {
			t.Fatalf("vaccineData = %v", body["vaccineData"])
		}
		if body["groupSize"] != float64(1) {
			t.Fatalf("groupSize = %v", body["groupSize"])
		}
		if body["url"] != "https://app.bookmyvaccine.covid19.health.nz/appointment-select" {
			t.Fatalf("url = %v", body["url"])
		}
		if body["timeZone"] != "Pacific/Auckland" {
			t.Fatalf("timeZone = %v", body["timeZone"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"slotsWithAvailability":[{"localStartTime":"09:00:00","available":4},{"localStartTime":"09:15:00","available":1}]}`))
	})

	recorder := &outcomeRecorder{}
	client := NewClient(WithObserver(recorder))

	got, err := client.FetchSlots(context.Background(), base+"/", "loc-42", "2026-10-19")
	if err != nil {
		t.Fatalf("FetchSlots() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(got))
	}
	if got[0].LocalStartTime != "09:00:00" || got[0].Available != 4 {
		t.Fatalf("first slot = %+v", got[0])
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0] != "ok" {
		t.Fatalf("outcomes = %v", recorder.outcomes)
	}
}

func TestFetchSlotsFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  bool
	}{
		{
			name: "bad gateway",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream failed", http.StatusBadGateway)
			},
			status: true,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"slotsWithAvailability":[`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &outcomeRecorder{}
			client := NewClient(WithObserver(recorder))

			_, err := client.FetchSlots(context.Background(), newTestServer(t, tt.handler), "loc-1", "2026-10-19")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var statusErr *StatusError
			if errors.As(err, &statusErr) != tt.status {
				t.Fatalf("status error = %v, want %v (err: %v)", errors.As(err, &statusErr), tt.status, err)
			}
			if len(recorder.outcomes) != 1 || recorder.outcomes[0] != "error" {
				t.Fatalf("outcomes = %v", recorder.outcomes)
			}
		})
	}
}

func TestFetchSlotsMissingFieldIsEmpty(t *testing.T) {
	base := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"no slots"}`))
	})

	got, err := ProxyFetcher{Client: NewClient(), Base: base}.FetchSlots(context.Background(), "loc-1", "2026-10-19")
	if err != nil {
		t.Fatalf("FetchSlots() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("slots = %v, want none", got)
	}
}

func TestFetchSlotsUnreachable(t *testing.T) {
	_, err := NewClient().FetchSlots(context.Background(), "http://127.0.0.1:1", "loc-1", "2026-10-19")
	if err == nil {
		t.Fatal("expected transport error")
	}
}

func TestNewClientTimeoutOptions(t *testing.T) {
	if got := NewClient().httpClient.Timeout; got != defaultTimeout {
		t.Fatalf("default timeout = %v, want %v", got, defaultTimeout)
	}

	shared := &http.Client{Timeout: time.Minute}
	orders := map[string][]Option{
		"timeout before client": {WithTimeout(2 * time.Second), WithHTTPClient(shared)},
		"timeout after client":  {WithHTTPClient(shared), WithTimeout(2 * time.Second)},
	}
	for name, opts := range orders {
		c := NewClient(opts...)
		if c.httpClient.Timeout != 2*time.Second {
			t.Fatalf("%s: timeout = %v, want 2s", name, c.httpClient.Timeout)
		}
		if c.httpClient == shared {
			t.Fatalf("%s: caller's client used directly", name)
		}
	}
	if shared.Timeout != time.Minute {
		t.Fatalf("caller's client timeout changed to %v", shared.Timeout)
	}

	if got := NewClient(WithHTTPClient(shared)).httpClient.Timeout; got != time.Minute {
		t.Fatalf("client timeout without WithTimeout = %v, want 1m", got)
	}
}
