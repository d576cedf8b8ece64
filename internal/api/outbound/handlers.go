// internal/api/outbound/handlers.go
package outbound

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vaxxnz/vaxx-web/internal/analytics"
	"github.com/vaxxnz/vaxx-web/internal/models"
	"github.com/vaxxnz/vaxx-web/internal/slots"
)

const queryTimeout = 5 * time.Second

type locationQueries interface {
	GetLocation(ctx context.Context, extID string) (models.Location, error)
}

var (
	queries  locationQueries
	recorder *analytics.Recorder
	siteLoc  = models.SiteLocation()
	nowFunc  = time.Now
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q locationQueries, r *analytics.Recorder) {
	queries = q
	recorder = r
}

// /out/{kind}
//
// Records the click and redirects to the external target. Only catalogued
// locations are accepted so the endpoint cannot redirect anywhere else.
func HandleOutbound(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	kind, err := analytics.ParseKind(r.PathValue("kind"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	click, date, err := analytics.ParseClick(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	location, err := queries.GetLocation(ctx, click.ExtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		logger.Error().Err(err).Str("ext_id", click.ExtID).Msg("Failed to load location")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	event := analytics.Event{
		Name:              kind.EventName(),
		RadiusKm:          click.RadiusKm,
		SpotsAvailable:    click.SpotsAvailable,
		BookingDateInDays: slots.DayOffset(date, nowFunc(), siteLoc),
	}
	if kind.NamesLocation() {
		event.LocationName = location.Name
	}
	recorder.Record(r.Context(), event)

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, kind.Target(location, date), http.StatusFound)
}
