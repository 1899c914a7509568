package calendar

import (
	"context"
	"testing"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
)

func TestNewClient(t *testing.T) {
	token := &oauth2.Token{AccessToken: "access", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}

	client, err := NewClient(context.Background(), token, "owner@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.CalendarID() != "owner@example.com" {
		t.Errorf("unexpected calendar id: %s", client.CalendarID())
	}
}

func TestNewClient_Defaults(t *testing.T) {
	token := &oauth2.Token{AccessToken: "access", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}

	client, err := NewClient(context.Background(), token, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.CalendarID() != "primary" {
		t.Errorf("expected primary calendar, got %s", client.CalendarID())
	}
}

func TestNewClient_NilToken(t *testing.T) {
	if _, err := NewClient(context.Background(), nil, "primary"); err == nil {
		t.Error("expected error for nil token")
	}
}

func TestMeetLink(t *testing.T) {
	tests := []struct {
		name  string
		event *calendar.Event
		want  string
	}{
		{
			name:  "hangout link preferred",
			event: &calendar.Event{HangoutLink: "https://meet.google.com/abc-defg-hij"},
			want:  "https://meet.google.com/abc-defg-hij",
		},
		{
			name: "video entry point fallback",
			event: &calendar.Event{
				ConferenceData: &calendar.ConferenceData{
					EntryPoints: []*calendar.EntryPoint{
						{EntryPointType: "phone", Uri: "tel:+1-555-0100"},
						{EntryPointType: "video", Uri: "https://meet.google.com/xyz-abcd-efg"},
					},
				},
			},
			want: "https://meet.google.com/xyz-abcd-efg",
		},
		{
			name:  "no conference",
			event: &calendar.Event{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meetLink(tt.event); got != tt.want {
				t.Errorf("meetLink() = %q, want %q", got, tt.want)
			}
		})
	}
}
