package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/teemow/meetsched/internal/schedule"
)

// Config captures environment driven configuration for the scheduler service.
type Config struct {
	// Addr is the listen address for the HTTP API.
	Addr string

	// MetricsAddr is the listen address for the Prometheus metrics server.
	MetricsAddr string

	// OwnerName and OwnerEmail identify the calendar owner on invites.
	OwnerName  string
	OwnerEmail string

	// CalendarID is the Google calendar queried and written to.
	CalendarID string

	// GoogleClientID, GoogleClientSecret and RedirectURL configure the
	// OAuth client for the owner's one-time consent flow.
	GoogleClientID     string
	GoogleClientSecret string
	RedirectURL        string

	// TokenFile is the path of the persisted credential record.
	TokenFile string

	// Policy and Hours drive slot generation and the booking window.
	Policy schedule.Policy
	Hours  schedule.WorkingHours
}

// defaultWorkingHours mirrors a typical consulting week: open Sunday
// afternoons and weekdays, closed Saturdays.
func defaultWorkingHours() schedule.WorkingHours {
	weekday := &schedule.DayHours{Start: 9 * 60, End: 17 * 60}
	return schedule.WorkingHours{
		time.Sunday:    {Start: 14 * 60, End: 20 * 60},
		time.Monday:    weekday,
		time.Tuesday:   weekday,
		time.Wednesday: weekday,
		time.Thursday:  weekday,
		time.Friday:    weekday,
	}
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields while validating required
// values, accumulating all missing and invalid entries into one error so a
// misconfigured deployment reports everything at once.
func Load() (Config, error) {
	cfg := Config{
		Addr:        ":3000",
		MetricsAddr: ":9090",
		OwnerName:   "Your Name",
		CalendarID:  "primary",
		Policy: schedule.Policy{
			MaxDaysInAdvance: 15,
			MinHoursNotice:   4,
			MeetingDuration:  45,
			SlotInterval:     45,
		},
		Hours: defaultWorkingHours(),
	}

	missing := make([]string, 0, 3)
	invalid := make([]string, 0, 3)

	if v := strings.TrimSpace(os.Getenv("MEETSCHED_ADDR")); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("MEETSCHED_METRICS_ADDR")); v != "" {
		cfg.MetricsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("MEETSCHED_OWNER_NAME")); v != "" {
		cfg.OwnerName = v
	}

	if v := strings.TrimSpace(os.Getenv("MEETSCHED_OWNER_EMAIL")); v == "" {
		missing = append(missing, "MEETSCHED_OWNER_EMAIL")
	} else {
		cfg.OwnerEmail = v
	}

	if v := strings.TrimSpace(os.Getenv("MEETSCHED_CALENDAR_ID")); v != "" {
		cfg.CalendarID = v
	}

	if v := strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")); v == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	} else {
		cfg.GoogleClientID = v
	}
	if v := strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")); v == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	} else {
		cfg.GoogleClientSecret = v
	}

	if v := strings.TrimSpace(os.Getenv("MEETSCHED_REDIRECT_URL")); v != "" {
		cfg.RedirectURL = v
	} else {
		port := cfg.Addr
		if i := strings.LastIndex(port, ":"); i >= 0 {
			port = port[i:]
		}
		cfg.RedirectURL = "http://localhost" + port + "/auth/callback"
	}

	if v := strings.TrimSpace(os.Getenv("MEETSCHED_TOKEN_FILE")); v != "" {
		cfg.TokenFile = v
	}

	cfg.Policy.MaxDaysInAdvance = intEnv("MEETSCHED_MAX_DAYS_IN_ADVANCE", cfg.Policy.MaxDaysInAdvance, &invalid)
	cfg.Policy.MinHoursNotice = intEnv("MEETSCHED_MIN_HOURS_NOTICE", cfg.Policy.MinHoursNotice, &invalid)
	cfg.Policy.MeetingDuration = intEnv("MEETSCHED_MEETING_DURATION", cfg.Policy.MeetingDuration, &invalid)
	cfg.Policy.SlotInterval = intEnv("MEETSCHED_SLOT_INTERVAL", cfg.Policy.SlotInterval, &invalid)

	tzName := "Asia/Kolkata"
	if v := strings.TrimSpace(os.Getenv("MEETSCHED_TIMEZONE")); v != "" {
		tzName = v
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		invalid = append(invalid, "MEETSCHED_TIMEZONE")
	} else {
		cfg.Policy.Location = loc
	}

	if v := strings.TrimSpace(os.Getenv("MEETSCHED_WORKING_HOURS")); v != "" {
		hours, err := ParseWorkingHours(v)
		if err != nil {
			invalid = append(invalid, "MEETSCHED_WORKING_HOURS")
		} else {
			cfg.Hours = hours
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}
	if err := cfg.Policy.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid scheduling policy: %w", err)
	}

	return cfg, nil
}

func intEnv(key string, def int, invalid *[]string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		*invalid = append(*invalid, key)
		return def
	}
	return n
}

var dayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWorkingHours parses a working-hours table of the form
// "Sun=14:00-20:00,Mon-Fri=09:00-17:00". Days not mentioned are closed.
// A day may be listed as "Sat=closed" for clarity; it has the same effect
// as omitting it.
func ParseWorkingHours(s string) (schedule.WorkingHours, error) {
	hours := make(schedule.WorkingHours)

	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid working hours entry %q", entry)
		}

		days, err := parseDayRange(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, err
		}

		value := strings.TrimSpace(parts[1])
		if strings.EqualFold(value, "closed") {
			continue
		}

		dh, err := parseInterval(value)
		if err != nil {
			return nil, fmt.Errorf("invalid working hours entry %q: %w", entry, err)
		}
		for _, day := range days {
			hours[day] = dh
		}
	}

	if len(hours) == 0 {
		return nil, fmt.Errorf("working hours table %q leaves every day closed", s)
	}
	return hours, nil
}

func parseDayRange(s string) ([]time.Weekday, error) {
	if i := strings.Index(s, "-"); i >= 0 {
		from, ok := dayNames[strings.ToLower(s[:i])]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", s[:i])
		}
		to, ok := dayNames[strings.ToLower(s[i+1:])]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", s[i+1:])
		}
		var days []time.Weekday
		for d := from; ; d = (d + 1) % 7 {
			days = append(days, d)
			if d == to {
				break
			}
		}
		return days, nil
	}

	day, ok := dayNames[strings.ToLower(s)]
	if !ok {
		return nil, fmt.Errorf("unknown weekday %q", s)
	}
	return []time.Weekday{day}, nil
}

func parseInterval(s string) (*schedule.DayHours, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected HH:MM-HH:MM, got %q", s)
	}
	start, err := parseMinuteOfDay(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, err
	}
	end, err := parseMinuteOfDay(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, fmt.Errorf("interval %q ends before it starts", s)
	}
	return &schedule.DayHours{Start: start, End: end}, nil
}

func parseMinuteOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
