package schedule

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func testRequest(loc *time.Location) Request {
	start := time.Date(2025, time.January, 6, 12, 45, 0, 0, loc)
	return Request{
		Name:  "Ada",
		Email: "ada@example.com",
		Start: start,
		End:   start.Add(45 * time.Minute),
		Notes: "Discuss the project",
	}
}

func TestBook_Success(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2025, time.January, 6, 8, 0, 0, 0, loc)

	provider := &fakeProvider{
		created: &CreatedEvent{ID: "evt-1", MeetLink: "https://meet.google.com/abc-defg-hij"},
	}
	e := testEngine(t, &fakeHandles{provider: provider}, now)

	req := testRequest(loc)
	conf, err := e.Book(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conf.EventID != "evt-1" {
		t.Errorf("unexpected event id: %s", conf.EventID)
	}
	if conf.MeetLink != "https://meet.google.com/abc-defg-hij" {
		t.Errorf("unexpected meet link: %s", conf.MeetLink)
	}
	if !conf.Start.Equal(req.Start) || !conf.End.Equal(req.End) {
		t.Error("confirmation interval does not match the request")
	}

	if provider.queryCalls != 1 {
		t.Errorf("expected one revalidation query, got %d", provider.queryCalls)
	}
	if provider.insertCalls != 1 {
		t.Errorf("expected one insert, got %d", provider.insertCalls)
	}

	spec := provider.lastSpec
	if spec.Summary != "Meeting with Ada" {
		t.Errorf("unexpected summary: %s", spec.Summary)
	}
	if !strings.Contains(spec.Description, "Client: Ada") ||
		!strings.Contains(spec.Description, "Email: ada@example.com") ||
		!strings.Contains(spec.Description, "Notes: Discuss the project") {
		t.Errorf("unexpected description: %q", spec.Description)
	}
	if spec.TimeZone != "Asia/Kolkata" {
		t.Errorf("unexpected time zone: %s", spec.TimeZone)
	}
	if spec.AttendeeEmail != "ada@example.com" {
		t.Errorf("unexpected attendee: %s", spec.AttendeeEmail)
	}
}

func TestBook_EmptyNotesDefault(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2025, time.January, 6, 8, 0, 0, 0, loc)

	provider := &fakeProvider{created: &CreatedEvent{ID: "evt-1"}}
	e := testEngine(t, &fakeHandles{provider: provider}, now)

	req := testRequest(loc)
	req.Notes = ""
	if _, err := e.Book(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(provider.lastSpec.Description, "Notes: None") {
		t.Errorf("expected default notes, got %q", provider.lastSpec.Description)
	}
}

func TestBook_SlotTakenNoInsert(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2025, time.January, 6, 8, 0, 0, 0, loc)
	req := testRequest(loc)

	provider := &fakeProvider{
		busy: []BusyPeriod{{Start: req.Start, End: req.End}},
	}
	e := testEngine(t, &fakeHandles{provider: provider}, now)

	_, err := e.Book(context.Background(), req)
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if provider.insertCalls != 0 {
		t.Errorf("expected no insert after conflict, got %d", provider.insertCalls)
	}
}

func TestBook_NotConnected(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2025, time.January, 6, 8, 0, 0, 0, loc)

	e := testEngine(t, &fakeHandles{err: ErrNotConnected}, now)

	_, err := e.Book(context.Background(), testRequest(loc))
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestBook_InsertFailure(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2025, time.January, 6, 8, 0, 0, 0, loc)

	provider := &fakeProvider{insertErr: errors.New("backend unavailable")}
	e := testEngine(t, &fakeHandles{provider: provider}, now)

	_, err := e.Book(context.Background(), testRequest(loc))
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Op != "event insert" {
		t.Errorf("unexpected op: %s", perr.Op)
	}
}

func TestBook_Validation(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2025, time.January, 6, 8, 0, 0, 0, loc)

	handles := &fakeHandles{provider: &fakeProvider{}}
	e := testEngine(t, handles, now)

	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"missing name", func(r *Request) { r.Name = "" }, "name"},
		{"missing email", func(r *Request) { r.Email = "" }, "email"},
		{"zero start", func(r *Request) { r.Start = time.Time{} }, "start"},
		{"zero end", func(r *Request) { r.End = time.Time{} }, "end"},
		{"end before start", func(r *Request) { r.End = r.Start.Add(-time.Minute) }, "end"},
		{"end equals start", func(r *Request) { r.End = r.Start }, "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest(loc)
			tt.mutate(&req)

			_, err := e.Book(context.Background(), req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}

	// Invalid requests fail before any calendar work.
	if handles.calls != 0 {
		t.Errorf("expected no handle calls for invalid requests, got %d", handles.calls)
	}
}

// blockingProvider parks the first insert until released, so a second
// attempt for the same slot arrives while the first is still committing.
type blockingProvider struct {
	fakeProvider
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingProvider) InsertBooking(ctx context.Context, spec EventSpec) (*CreatedEvent, error) {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return b.fakeProvider.InsertBooking(ctx, spec)
}

func TestBook_ConcurrentSameSlot(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2025, time.January, 6, 8, 0, 0, 0, loc)
	req := testRequest(loc)

	provider := &blockingProvider{
		fakeProvider: fakeProvider{created: &CreatedEvent{ID: "evt-1"}},
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	e := testEngine(t, &fakeHandles{provider: provider}, now)

	firstDone := make(chan error, 1)
	go func() {
		_, err := e.Book(context.Background(), req)
		firstDone <- err
	}()

	<-provider.entered

	// Second attempt for the same slot while the first holds the guard.
	_, err := e.Book(context.Background(), req)
	if !errors.Is(err, ErrSlotTaken) {
		t.Errorf("expected ErrSlotTaken for concurrent attempt, got %v", err)
	}

	close(provider.release)
	if err := <-firstDone; err != nil {
		t.Errorf("expected first booking to succeed, got %v", err)
	}
	if provider.insertCalls != 1 {
		t.Errorf("expected exactly one insert, got %d", provider.insertCalls)
	}
}
