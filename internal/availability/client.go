// Package availability talks to the appointment availability proxy.
package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vaxxnz/vaxx-web/internal/models"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20

	bookingVaccineData = "WyJhMVQ0YTAwMDAwMEhJS0NFQTQiXQ=="
	bookingProviderURL = "https://app.bookmyvaccine.covid19.health.nz/appointment-select"
)

// slotsRequest is the fixed booking intent sent for every lookup: one
// person, the default vaccine, New Zealand time.
type slotsRequest struct {
	VaccineData string `json:"vaccineData"`
	GroupSize   int    `json:"groupSize"`
	URL         string `json:"url"`
	TimeZone    string `json:"timeZone"`
}

type slotsResponse struct {
	SlotsWithAvailability []models.Slot `json:"slotsWithAvailability"`
}

// StatusError is returned when the proxy answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("availability proxy returned %d: %s", e.StatusCode, e.Body)
}

// Observer receives the outcome of every proxy call. Implemented by metrics.
type Observer interface {
	ObserveFetch(outcome string, seconds float64)
}

type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	observer   Observer
}

type Option func(*Client)

// WithHTTPClient uses a copy of hc for lookups; hc itself is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each lookup, overriding the timeout of any client set
// through WithHTTPClient regardless of option order.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	var hc http.Client
	if c.httpClient != nil {
		hc = *c.httpClient
	} else {
		hc.Timeout = defaultTimeout
	}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.httpClient = &hc
	return c
}

// SlotsURL builds the proxy endpoint for a location and day.
func SlotsURL(base, extID, date string) string {
	return fmt.Sprintf("%s/public/locations/%s/date/%s/slots",
		strings.TrimRight(base, "/"), url.PathEscape(extID), url.PathEscape(date))
}

// FetchSlots posts the booking intent to the proxy and returns the slots it
// reports. Transport failures, non-2xx answers and undecodable bodies are
// all errors; there is no retry.
func (c *Client) FetchSlots(ctx context.Context, base, extID, date string) ([]models.Slot, error) {
	start := time.Now()
	slots, err := c.fetchSlots(ctx, base, extID, date)
	if c.observer != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		} else if len(slots) == 0 {
			outcome = "empty"
		}
		c.observer.ObserveFetch(outcome, time.Since(start).Seconds())
	}
	return slots, err
}

func (c *Client) fetchSlots(ctx context.Context, base, extID, date string) ([]models.Slot, error) {
	payload, err := json.Marshal(slotsRequest{
		VaccineData: bookingVaccineData,
		GroupSize:   1,
		URL:         bookingProviderURL,
		TimeZone:    models.SiteTimezone,
	})
	if err != nil {
		return nil, fmt.Errorf("encode slots request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, SlotsURL(base, extID, date), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build slots request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slots request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read slots response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var decoded slotsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode slots response: %w", err)
	}
	return decoded.SlotsWithAvailability, nil
}

// ProxyFetcher binds a client to one proxy root. It satisfies slots.Fetcher.
type ProxyFetcher struct {
	Client *Client
	Base   string
}

func (f ProxyFetcher) FetchSlots(ctx context.Context, extID, date string) ([]models.Slot, error) {
	return f.Client.FetchSlots(ctx, f.Base, extID, date)
}
