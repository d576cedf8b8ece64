package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vaxxnz/vaxx-web/internal/models"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

const upsertLocation = `
INSERT INTO locations (ext_id, slug, name, display_address, lat, lng)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (ext_id) DO UPDATE SET
    slug = excluded.slug,
    name = excluded.name,
    display_address = excluded.display_address,
    lat = excluded.lat,
    lng = excluded.lng,
    updated_at = CURRENT_TIMESTAMP`

func (q *Queries) UpsertLocation(ctx context.Context, loc models.Location) error {
	_, err := q.db.ExecContext(ctx, upsertLocation,
		loc.ExtID, loc.Slug, loc.Name, loc.DisplayAddress, loc.Location.Lat, loc.Location.Lng)
	return err
}

const selectLocationColumns = `SELECT ext_id, slug, name, display_address, lat, lng FROM locations`

func scanLocation(row interface{ Scan(...any) error }) (models.Location, error) {
	var loc models.Location
	err := row.Scan(&loc.ExtID, &loc.Slug, &loc.Name, &loc.DisplayAddress, &loc.Location.Lat, &loc.Location.Lng)
	return loc, err
}

func (q *Queries) ListLocations(ctx context.Context) ([]models.Location, error) {
	rows, err := q.db.QueryContext(ctx, selectLocationColumns+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// GetLocation returns sql.ErrNoRows when the ext id is unknown.
func (q *Queries) GetLocation(ctx context.Context, extID string) (models.Location, error) {
	return scanLocation(q.db.QueryRowContext(ctx, selectLocationColumns+` WHERE ext_id = ?`, extID))
}

// GetLocationBySlug returns sql.ErrNoRows when the slug is unknown.
func (q *Queries) GetLocationBySlug(ctx context.Context, slug string) (models.Location, error) {
	return scanLocation(q.db.QueryRowContext(ctx, selectLocationColumns+` WHERE slug = ?`, slug))
}

type UpsertSlotSnapshotParams struct {
	ExtID     string
	Date      string
	Slots     []models.Slot
	FetchedAt time.Time
}

const upsertSlotSnapshot = `
INSERT INTO slot_snapshots (ext_id, date, slots_json, fetched_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (ext_id, date) DO UPDATE SET
    slots_json = excluded.slots_json,
    fetched_at = excluded.fetched_at`

func (q *Queries) UpsertSlotSnapshot(ctx context.Context, arg UpsertSlotSnapshotParams) error {
	slots := arg.Slots
	if slots == nil {
		slots = []models.Slot{}
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode slot snapshot: %w", err)
	}
	_, err = q.db.ExecContext(ctx, upsertSlotSnapshot, arg.ExtID, arg.Date, string(raw), arg.FetchedAt.UTC())
	return err
}

// GetSlotSnapshot returns the stored slots for a location and day, or nil
// slots when no snapshot exists.
func (q *Queries) GetSlotSnapshot(ctx context.Context, extID, date string) ([]models.Slot, error) {
	var raw string
	err := q.db.QueryRowContext(ctx,
		`SELECT slots_json FROM slot_snapshots WHERE ext_id = ? AND date = ?`, extID, date).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSlots(raw)
}

// ListLocationSlotsPairs pairs every location with its snapshot for date.
// Locations without a snapshot get no slots.
func (q *Queries) ListLocationSlotsPairs(ctx context.Context, date string) ([]models.LocationSlotsPair, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT l.ext_id, l.slug, l.name, l.display_address, l.lat, l.lng, COALESCE(s.slots_json, '[]')
FROM locations l
LEFT JOIN slot_snapshots s ON s.ext_id = l.ext_id AND s.date = ?
ORDER BY l.name`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []models.LocationSlotsPair
	for rows.Next() {
		var (
			pair models.LocationSlotsPair
			raw  string
		)
		loc := &pair.Location
		if err := rows.Scan(&loc.ExtID, &loc.Slug, &loc.Name, &loc.DisplayAddress, &loc.Location.Lat, &loc.Location.Lng, &raw); err != nil {
			return nil, err
		}
		if pair.Slots, err = decodeSlots(raw); err != nil {
			return nil, fmt.Errorf("location %s: %w", loc.ExtID, err)
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}

// DeleteSnapshotsBefore removes snapshots for days before date.
func (q *Queries) DeleteSnapshotsBefore(ctx context.Context, date string) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM slot_snapshots WHERE date < ?`, date)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func decodeSlots(raw string) ([]models.Slot, error) {
	var slots []models.Slot
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, fmt.Errorf("decode slot snapshot: %w", err)
	}
	return slots, nil
}
