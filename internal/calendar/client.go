package calendar

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/meetsched/internal/schedule"
)

// Client wraps the Google Calendar service for a single calendar. A Client
// is bound to one access token and is only valid for the request it was
// created for; it must not be cached.
type Client struct {
	svc        *calendar.Service
	calendarID string
}

// NewClient creates a request-scoped Calendar client from an access token.
// The token source is static: refresh decisions belong to the token
// lifecycle manager, never to the handle.
func NewClient(ctx context.Context, token *oauth2.Token, calendarID string) (*Client, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	// Force HTTP/1.1 by disabling HTTP/2
	transport := httpClient.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:        svc,
		calendarID: calendarID,
	}, nil
}

// CalendarID returns the calendar this client is bound to.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// QueryBusy returns the busy periods reported for the calendar in the
// given interval, in chronological order.
func (c *Client) QueryBusy(ctx context.Context, timeMin, timeMax time.Time) ([]schedule.BusyPeriod, error) {
	query := &calendar.FreeBusyRequest{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: c.calendarID}},
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	cal, ok := result.Calendars[c.calendarID]
	if !ok {
		return nil, nil
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("freebusy query reported error: %s", cal.Errors[0].Reason)
	}

	var busy []schedule.BusyPeriod
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to parse busy period start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("failed to parse busy period end %q: %w", period.End, err)
		}
		busy = append(busy, schedule.BusyPeriod{Start: start, End: end})
	}

	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy, nil
}

// InsertBooking inserts a booking event with a provider-generated Meet
// conference, reminder overrides, and update notifications to all
// participants. The conference request id is a fresh random id so a retried
// network call cannot create a duplicate conference.
func (c *Client) InsertBooking(ctx context.Context, spec schedule.EventSpec) (*schedule.CreatedEvent, error) {
	event := &calendar.Event{
		Summary:     spec.Summary,
		Description: spec.Description,
		Start: &calendar.EventDateTime{
			DateTime: spec.Start.Format(time.RFC3339),
			TimeZone: spec.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: spec.End.Format(time.RFC3339),
			TimeZone: spec.TimeZone,
		},
		Attendees: []*calendar.EventAttendee{
			{
				Email:       spec.AttendeeEmail,
				DisplayName: spec.AttendeeName,
			},
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 60},
				{Method: "popup", Minutes: 15},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	return &schedule.CreatedEvent{
		ID:       created.Id,
		MeetLink: meetLink(created),
	}, nil
}

// meetLink extracts the conference join link from a created event. The
// hangoutLink field is usually populated; the conference entry points are
// the fallback.
func meetLink(event *calendar.Event) string {
	if event.HangoutLink != "" {
		return event.HangoutLink
	}
	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				return ep.Uri
			}
		}
	}
	return ""
}
