package schedule

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/meetsched/internal/instrumentation"
)

// Provider is a request-scoped authenticated handle to the external
// calendar. Implementations must not be cached across requests.
type Provider interface {
	// QueryBusy returns the busy periods reported for the interval.
	QueryBusy(ctx context.Context, timeMin, timeMax time.Time) ([]BusyPeriod, error)

	// InsertBooking inserts an event with provider-generated conferencing
	// and returns the event id and join link.
	InsertBooking(ctx context.Context, spec EventSpec) (*CreatedEvent, error)
}

// HandleSource yields a fresh Provider bound to a currently valid access
// token. It returns ErrNotConnected when no usable credential exists.
type HandleSource interface {
	Handle(ctx context.Context) (Provider, error)
}

// Owner identifies the calendar owner for event summaries and invites.
type Owner struct {
	Name  string
	Email string
}

// EngineConfig carries the dependencies for a booking engine.
type EngineConfig struct {
	Policy  Policy
	Hours   WorkingHours
	Handles HandleSource
	Owner   Owner

	// Now is the clock used for the date window and minimum-notice cutoff.
	// Defaults to time.Now.
	Now func() time.Time

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Engine computes availability against the owner's policy and external busy
// periods and commits bookings with a check-then-commit protocol.
//
// All work for one call runs to completion before returning; the engine
// spawns no background tasks and applies no internal timeouts or retries.
type Engine struct {
	policy  Policy
	hours   WorkingHours
	handles HandleSource
	owner   Owner
	now     func() time.Time
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	guard   *slotGuard
}

// NewEngine creates a booking engine from the given configuration.
func NewEngine(cfg EngineConfig) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		policy:  cfg.Policy,
		hours:   cfg.Hours,
		handles: cfg.Handles,
		owner:   cfg.Owner,
		now:     now,
		logger:  logger,
		metrics: cfg.Metrics,
		guard:   newSlotGuard(),
	}
}

// Policy returns the engine's scheduling policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Owner returns the calendar owner's identity.
func (e *Engine) Owner() Owner {
	return e.owner
}

// AvailableDates lists the dates of the given month that fall inside the
// booking window and whose weekday is not closed, in chronological order.
// This is purely a policy-window filter; no calendar I/O happens here.
func (e *Engine) AvailableDates(year int, month time.Month) []string {
	now := e.now()
	max := now.Add(time.Duration(e.policy.MaxDaysInAdvance) * 24 * time.Hour)
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, e.policy.Location).Day()

	var dates []string
	for day := 1; day <= daysInMonth; day++ {
		midnight := time.Date(year, month, day, 0, 0, 0, 0, e.policy.Location)
		if midnight.Before(now) || midnight.After(max) {
			continue
		}
		if e.hours.Closed(midnight.Weekday()) {
			continue
		}
		dates = append(dates, Date{Year: year, Month: month, Day: day}.String())
	}
	return dates
}

// AvailableSlots returns the bookable slots for a date: the candidates from
// the working-hours walk, minus anything before the minimum-notice cutoff
// and anything overlapping a busy period reported by the calendar.
//
// A closed day yields an empty result without any provider call. Without a
// usable credential it returns ErrNotConnected.
func (e *Engine) AvailableSlots(ctx context.Context, date Date) (offers []SlotOffer, err error) {
	ctx, span := instrumentation.StartSpan(ctx, "scheduler.availability",
		attribute.String(instrumentation.SpanAttrDate, date.String()))
	defer func() { instrumentation.EndSpan(span, err) }()

	candidates := CandidateSlots(date, e.policy, e.hours)
	if len(candidates) == 0 {
		return nil, nil
	}

	handle, err := e.handles.Handle(ctx)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, e.policy.Location)
	dayEnd := time.Date(date.Year, date.Month, date.Day, 23, 59, 59, 0, e.policy.Location)

	busy, err := e.queryBusy(ctx, handle, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	minTime := e.now().Add(time.Duration(e.policy.MinHoursNotice) * time.Hour)

	offers = make([]SlotOffer, 0, len(candidates))
	for _, slot := range candidates {
		if !slot.Start.After(minTime) {
			continue
		}
		if overlapsAny(slot, busy) {
			continue
		}
		local := slot.Start.In(e.policy.Location)
		offers = append(offers, SlotOffer{
			Time:    local.Format("15:04"),
			Display: local.Format("3:04 PM"),
			Start:   slot.Start,
			End:     slot.End,
		})
	}

	e.logger.Debug("resolved availability",
		"date", date.String(),
		"candidates", len(candidates),
		"busy_periods", len(busy),
		"offers", len(offers),
	)
	return offers, nil
}

func (e *Engine) queryBusy(ctx context.Context, handle Provider, timeMin, timeMax time.Time) ([]BusyPeriod, error) {
	start := time.Now()
	busy, err := handle.QueryBusy(ctx, timeMin, timeMax)
	if e.metrics != nil {
		e.metrics.RecordCalendarOperation(ctx, instrumentation.OpQueryBusy, statusOf(err), time.Since(start))
	}
	if err != nil {
		return nil, &ProviderError{Op: "freebusy query", Err: err}
	}
	return busy, nil
}

func overlapsAny(slot Slot, busy []BusyPeriod) bool {
	for _, b := range busy {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}

func statusOf(err error) string {
	if err != nil {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}
