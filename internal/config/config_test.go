package config

import (
	"strings"
	"testing"
	"time"

	"github.com/teemow/meetsched/internal/schedule"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MEETSCHED_OWNER_EMAIL", "owner@example.com")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":3000" {
		t.Errorf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("unexpected metrics addr: %s", cfg.MetricsAddr)
	}
	if cfg.CalendarID != "primary" {
		t.Errorf("unexpected calendar id: %s", cfg.CalendarID)
	}
	if cfg.RedirectURL != "http://localhost:3000/auth/callback" {
		t.Errorf("unexpected redirect URL: %s", cfg.RedirectURL)
	}

	p := cfg.Policy
	if p.MaxDaysInAdvance != 15 || p.MinHoursNotice != 4 || p.MeetingDuration != 45 || p.SlotInterval != 45 {
		t.Errorf("unexpected policy: %+v", p)
	}
	if p.Location == nil || p.Location.String() != "Asia/Kolkata" {
		t.Errorf("unexpected location: %v", p.Location)
	}

	if cfg.Hours.Closed(time.Monday) || cfg.Hours.Closed(time.Sunday) {
		t.Error("expected Monday and Sunday to be open by default")
	}
	if !cfg.Hours.Closed(time.Saturday) {
		t.Error("expected Saturday to be closed by default")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("MEETSCHED_OWNER_EMAIL", "")
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required variables")
	}
	// All missing variables are reported at once.
	if !strings.Contains(err.Error(), "MEETSCHED_OWNER_EMAIL") ||
		!strings.Contains(err.Error(), "GOOGLE_CLIENT_ID") {
		t.Errorf("expected both missing variables in error, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MEETSCHED_ADDR", ":8080")
	t.Setenv("MEETSCHED_OWNER_NAME", "Ada Lovelace")
	t.Setenv("MEETSCHED_TIMEZONE", "Europe/Berlin")
	t.Setenv("MEETSCHED_MEETING_DURATION", "30")
	t.Setenv("MEETSCHED_SLOT_INTERVAL", "30")
	t.Setenv("MEETSCHED_WORKING_HOURS", "Mon-Fri=08:00-16:00")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("unexpected addr: %s", cfg.Addr)
	}
	// The derived redirect URL follows the listen port.
	if cfg.RedirectURL != "http://localhost:8080/auth/callback" {
		t.Errorf("unexpected redirect URL: %s", cfg.RedirectURL)
	}
	if cfg.OwnerName != "Ada Lovelace" {
		t.Errorf("unexpected owner name: %s", cfg.OwnerName)
	}
	if cfg.Policy.Location.String() != "Europe/Berlin" {
		t.Errorf("unexpected location: %v", cfg.Policy.Location)
	}
	if cfg.Policy.MeetingDuration != 30 || cfg.Policy.SlotInterval != 30 {
		t.Errorf("unexpected policy: %+v", cfg.Policy)
	}
	if !cfg.Hours.Closed(time.Sunday) {
		t.Error("expected Sunday closed under the override table")
	}
	if dh := cfg.Hours[time.Wednesday]; dh == nil || dh.Start != 8*60 || dh.End != 16*60 {
		t.Errorf("unexpected Wednesday hours: %+v", dh)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequiredEnv(t)

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric duration", "MEETSCHED_MEETING_DURATION", "abc"},
		{"negative duration", "MEETSCHED_MEETING_DURATION", "-5"},
		{"unknown timezone", "MEETSCHED_TIMEZONE", "Mars/Olympus"},
		{"malformed working hours", "MEETSCHED_WORKING_HOURS", "Mon=9am-5pm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("expected %s in error, got %v", tt.key, err)
			}
		})
	}
}

func TestParseWorkingHours(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(*testing.T, schedule.WorkingHours)
	}{
		{
			name:  "single day",
			input: "Sun=14:00-20:00",
			check: func(t *testing.T, wh schedule.WorkingHours) {
				if dh := wh[time.Sunday]; dh == nil || dh.Start != 14*60 || dh.End != 20*60 {
					t.Errorf("unexpected Sunday hours: %+v", dh)
				}
				if !wh.Closed(time.Monday) {
					t.Error("expected unlisted days closed")
				}
			},
		},
		{
			name:  "day range",
			input: "Mon-Fri=09:00-17:00",
			check: func(t *testing.T, wh schedule.WorkingHours) {
				for _, d := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
					if wh.Closed(d) {
						t.Errorf("expected %s open", d)
					}
				}
				if !wh.Closed(time.Saturday) || !wh.Closed(time.Sunday) {
					t.Error("expected weekend closed")
				}
			},
		},
		{
			name:  "range wrapping the week",
			input: "Fri-Mon=10:00-14:00",
			check: func(t *testing.T, wh schedule.WorkingHours) {
				for _, d := range []time.Weekday{time.Friday, time.Saturday, time.Sunday, time.Monday} {
					if wh.Closed(d) {
						t.Errorf("expected %s open", d)
					}
				}
				if !wh.Closed(time.Wednesday) {
					t.Error("expected Wednesday closed")
				}
			},
		},
		{
			name:  "explicit closed entry",
			input: "Mon-Fri=09:00-17:00,Sat=closed",
			check: func(t *testing.T, wh schedule.WorkingHours) {
				if !wh.Closed(time.Saturday) {
					t.Error("expected Saturday closed")
				}
			},
		},
		{
			name:    "unknown weekday",
			input:   "Funday=09:00-17:00",
			wantErr: true,
		},
		{
			name:    "missing interval",
			input:   "Mon",
			wantErr: true,
		},
		{
			name:    "malformed interval",
			input:   "Mon=9-17",
			wantErr: true,
		},
		{
			name:    "everything closed",
			input:   "Mon=closed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wh, err := ParseWorkingHours(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, wh)
		})
	}
}
