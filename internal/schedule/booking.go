package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/logging"
)

// CheckSlot reports whether the interval is currently free of busy periods.
//
// The answer is advisory only: it is not a reservation, and a slot reported
// available here can be claimed before a subsequent Book call commits. Book
// always revalidates on its own.
func (e *Engine) CheckSlot(ctx context.Context, start, end time.Time) (bool, error) {
	handle, err := e.handles.Handle(ctx)
	if err != nil {
		return false, err
	}
	busy, err := e.queryBusy(ctx, handle, start, end)
	if err != nil {
		return false, err
	}
	return len(busy) == 0, nil
}

// Book revalidates the requested slot against a fresh busy query and, if it
// is still free, inserts a calendar event with provider-generated
// conferencing. A busy period found at revalidation time yields
// ErrSlotTaken without an insert; the caller must re-query availability and
// resubmit. Provider failures surface as *ProviderError and are never
// retried internally.
func (e *Engine) Book(ctx context.Context, req Request) (conf *Confirmation, err error) {
	ctx, span := instrumentation.StartSpan(ctx, "scheduler.book")
	defer func() { instrumentation.EndSpan(span, err) }()

	if err := validateRequest(req); err != nil {
		e.recordBooking(ctx, instrumentation.BookingValidationError)
		return nil, err
	}

	logger := e.logger.With(
		logging.UserHash(req.Email),
		"slot_start", req.Start.Format(time.RFC3339),
	)

	handle, err := e.handles.Handle(ctx)
	if err != nil {
		e.recordBooking(ctx, instrumentation.BookingNotConnected)
		return nil, err
	}

	// Same-process attempts for one slot are serialized here. A concurrent
	// holder means the slot is being committed right now, which from this
	// caller's view is indistinguishable from a conflict.
	key := req.Start.UTC().Format(time.RFC3339) + "/" + req.End.UTC().Format(time.RFC3339)
	if !e.guard.acquire(key) {
		logger.Info("booking rejected, concurrent attempt in flight")
		e.recordBooking(ctx, instrumentation.BookingConflict)
		return nil, ErrSlotTaken
	}
	defer e.guard.release(key)

	busy, err := e.queryBusy(ctx, handle, req.Start, req.End)
	if err != nil {
		e.recordBooking(ctx, instrumentation.BookingProviderError)
		return nil, err
	}
	if len(busy) > 0 {
		logger.Info("booking rejected, slot claimed since last check", "busy_periods", len(busy))
		e.recordBooking(ctx, instrumentation.BookingConflict)
		return nil, ErrSlotTaken
	}

	notes := req.Notes
	if notes == "" {
		notes = "None"
	}
	spec := EventSpec{
		Summary:       fmt.Sprintf("Meeting with %s", req.Name),
		Description:   fmt.Sprintf("Client: %s\nEmail: %s\n\nNotes: %s", req.Name, req.Email, notes),
		Start:         req.Start,
		End:           req.End,
		TimeZone:      e.policy.Location.String(),
		AttendeeName:  req.Name,
		AttendeeEmail: req.Email,
	}

	insertStart := time.Now()
	created, err := handle.InsertBooking(ctx, spec)
	if e.metrics != nil {
		e.metrics.RecordCalendarOperation(ctx, instrumentation.OpInsertEvent, statusOf(err), time.Since(insertStart))
	}
	if err != nil {
		logger.Error("event insert failed", logging.Err(err))
		e.recordBooking(ctx, instrumentation.BookingProviderError)
		return nil, &ProviderError{Op: "event insert", Err: err}
	}

	logger.Info("booking confirmed", "event_id", created.ID)
	e.recordBooking(ctx, instrumentation.BookingConfirmed)

	return &Confirmation{
		EventID:  created.ID,
		MeetLink: created.MeetLink,
		Start:    req.Start,
		End:      req.End,
	}, nil
}

func (e *Engine) recordBooking(ctx context.Context, result string) {
	if e.metrics != nil {
		e.metrics.RecordBooking(ctx, result)
	}
}

func validateRequest(req Request) error {
	if req.Name == "" {
		return &ValidationError{Field: "name"}
	}
	if req.Email == "" {
		return &ValidationError{Field: "email"}
	}
	if req.Start.IsZero() {
		return &ValidationError{Field: "start"}
	}
	if req.End.IsZero() {
		return &ValidationError{Field: "end"}
	}
	if !req.End.After(req.Start) {
		return &ValidationError{Field: "end", Reason: "must be after start"}
	}
	return nil
}
