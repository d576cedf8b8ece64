package slots

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vaxxnz/vaxx-web/internal/models"
)

type State int

const (
	Idle State = iota
	Fetching
	Loaded
	FailedFallback
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Loaded:
		return "loaded"
	case FailedFallback:
		return "failed_fallback"
	default:
		return "unknown"
	}
}

// Fetcher retrieves live slots for one location on one day.
type Fetcher interface {
	FetchSlots(ctx context.Context, extID, date string) ([]models.Slot, error)
}

type FetcherFunc func(ctx context.Context, extID, date string) ([]models.Slot, error)

func (f FetcherFunc) FetchSlots(ctx context.Context, extID, date string) ([]models.Slot, error) {
	return f(ctx, extID, date)
}

// Key identifies what a card fetches for. Only a change of key can cause a
// new fetch; coordinate and radius changes never do.
type Key struct {
	ExtID string
	Date  string
}

// Ticket is handed out when a fetch should start and must accompany its
// result. Results carrying an outdated ticket are discarded.
type Ticket struct {
	Key        Key
	generation uint64
}

// Loader is the state machine behind one location card:
//
//	Idle --BecameVisible--> Fetching --FetchSucceeded--> Loaded
//	                                 --FetchFailed-----> FailedFallback
//	any  --KeyChanged-----> Idle (then Fetching again if already seen)
//
// A Loader is owned by a single request and is not safe for concurrent use.
type Loader struct {
	pair       models.LocationSlotsPair
	date       models.CalendarDate
	loc        *time.Location
	state      State
	seen       bool
	generation uint64
	live       []models.Slot
}

func NewLoader(pair models.LocationSlotsPair, date models.CalendarDate, loc *time.Location) *Loader {
	if loc == nil {
		loc = models.SiteLocation()
	}
	return &Loader{pair: pair, date: date, loc: loc}
}

func (l *Loader) State() State { return l.state }

// Seen reports whether the card has been revealed at least once. Unseen cards render nothing.
func (l *Loader) Seen() bool { return l.seen }

func (l *Loader) Key() Key {
	return Key{ExtID: l.pair.Location.ExtID, Date: l.date.DateStr}
}

func (l *Loader) Pair() models.LocationSlotsPair { return l.pair }

func (l *Loader) Date() models.CalendarDate { return l.date }

// BecameVisible records that the card is on screen. It returns a ticket and
// true only when a fetch should be issued: the first time the card is seen
// while idle. Once live data is held, or a fetch failed, no new fetch starts.
func (l *Loader) BecameVisible() (Ticket, bool) {
	l.seen = true
	if l.state != Idle {
		return Ticket{}, false
	}
	l.state = Fetching
	return l.ticket(), true
}

// FetchSucceeded stores live slots if the ticket is current. It reports whether the result was applied.
func (l *Loader) FetchSucceeded(t Ticket, live []models.Slot) bool {
	if !l.current(t) {
		return false
	}
	l.live = live
	l.state = Loaded
	return true
}

// FetchFailed moves to the fallback state if the ticket is current.
func (l *Loader) FetchFailed(t Ticket) bool {
	if !l.current(t) {
		return false
	}
	l.state = FailedFallback
	return true
}

// KeyChanged points the loader at another location or day. Fallback slots
// are always replaced. When the key differs, live data is dropped, any
// in-flight ticket is invalidated, and, if the card was already seen, a new
// fetch is requested immediately.
func (l *Loader) KeyChanged(pair models.LocationSlotsPair, date models.CalendarDate) (Ticket, bool) {
	previous := l.Key()
	l.pair = pair
	l.date = date
	if l.Key() == previous {
		return Ticket{}, false
	}

	l.generation++
	l.live = nil
	l.state = Idle
	if !l.seen {
		return Ticket{}, false
	}
	l.state = Fetching
	return l.ticket(), true
}

// LiveCount is the number of live slots held, before filtering.
func (l *Loader) LiveCount() int {
	return len(l.live)
}

func (l *Loader) IsToday(now time.Time) bool {
	return IsToday(l.date, now, l.loc)
}

func (l *Loader) DayOffset(now time.Time) int {
	return DayOffset(l.date, now, l.loc)
}

// Display returns the slots to render at now. It is empty for cards that
// have not been seen yet.
func (l *Loader) Display(now time.Time) []models.Slot {
	if !l.seen {
		return nil
	}
	local := now.In(l.loc)
	return Select(l.live, l.pair.Slots, l.IsToday(local), local)
}

// Run reveals the card and, when a fetch is due, performs it with f. Fetch
// errors are logged and leave the card showing fallback slots.
func (l *Loader) Run(ctx context.Context, f Fetcher) {
	ticket, ok := l.BecameVisible()
	if !ok {
		return
	}
	l.fetch(ctx, f, ticket)
}

func (l *Loader) fetch(ctx context.Context, f Fetcher, ticket Ticket) {
	live, err := f.FetchSlots(ctx, ticket.Key.ExtID, ticket.Key.Date)
	if err != nil {
		log.Ctx(ctx).Warn().
			Err(err).
			Str("ext_id", ticket.Key.ExtID).
			Str("date", ticket.Key.Date).
			Msg("Couldn't retrieve slots")
		l.FetchFailed(ticket)
		return
	}
	l.FetchSucceeded(ticket, live)
}

func (l *Loader) ticket() Ticket {
	return Ticket{Key: l.Key(), generation: l.generation}
}

func (l *Loader) current(t Ticket) bool {
	return l.state == Fetching && t.generation == l.generation && t.Key == l.Key()
}
