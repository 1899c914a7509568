package calendar

import (
	"context"

	"github.com/teemow/meetsched/internal/google"
	"github.com/teemow/meetsched/internal/schedule"
)

// HandleSource builds request-scoped calendar handles from the token
// lifecycle manager. It implements schedule.HandleSource.
type HandleSource struct {
	auth       *google.Manager
	calendarID string
}

// NewHandleSource creates a handle source for the given calendar.
func NewHandleSource(auth *google.Manager, calendarID string) *HandleSource {
	return &HandleSource{auth: auth, calendarID: calendarID}
}

// Handle returns a fresh calendar client bound to a currently valid access
// token. The manager's expiry check runs on every call, so a token is never
// used past its safety margin.
func (h *HandleSource) Handle(ctx context.Context) (schedule.Provider, error) {
	token, err := h.auth.Token(ctx)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, token, h.calendarID)
}
