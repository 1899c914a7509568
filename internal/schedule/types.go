package schedule

import (
	"fmt"
	"time"
)

// Policy holds the scheduling parameters for the calendar owner.
// It is loaded once at startup and never mutated afterwards.
//
// SlotInterval smaller than MeetingDuration is a legal configuration and
// produces overlapping candidate slots; conflicts between overlapping offers
// are resolved by the busy-period check at booking time, not at generation
// time.
type Policy struct {
	// MaxDaysInAdvance limits how far ahead a slot can be booked.
	MaxDaysInAdvance int

	// MinHoursNotice is the minimum lead time before a slot may start.
	MinHoursNotice int

	// MeetingDuration is the length of every meeting in minutes.
	MeetingDuration int

	// SlotInterval is the spacing between candidate slot starts in minutes.
	SlotInterval int

	// Location is the owner's timezone. All working hours and day boundaries
	// are interpreted in this location.
	Location *time.Location
}

// Validate checks that the policy values are usable.
func (p Policy) Validate() error {
	if p.MaxDaysInAdvance <= 0 {
		return fmt.Errorf("max days in advance must be positive, got %d", p.MaxDaysInAdvance)
	}
	if p.MinHoursNotice < 0 {
		return fmt.Errorf("min hours notice must not be negative, got %d", p.MinHoursNotice)
	}
	if p.MeetingDuration <= 0 {
		return fmt.Errorf("meeting duration must be positive, got %d", p.MeetingDuration)
	}
	if p.SlotInterval <= 0 {
		return fmt.Errorf("slot interval must be positive, got %d", p.SlotInterval)
	}
	if p.Location == nil {
		return fmt.Errorf("timezone location is required")
	}
	return nil
}

// DayHours is the open interval of a working day, in minutes of day.
// Start is inclusive, End is the latest minute a meeting may end at.
type DayHours struct {
	Start int
	End   int
}

// WorkingHours maps a weekday to its open interval. A missing or nil entry
// marks the day as closed.
type WorkingHours map[time.Weekday]*DayHours

// Closed reports whether the given weekday has no working hours.
func (wh WorkingHours) Closed(day time.Weekday) bool {
	return wh[day] == nil
}

// Date is a calendar date in the owner's timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Slot is a concrete bookable start/end pair. Slots are derived values and
// are never persisted; two slots are equal iff their instants are equal.
type Slot struct {
	Start time.Time
	End   time.Time
}

// BusyPeriod is an interval during which the owner is unavailable, as
// reported by the external calendar. It is authoritative but may be stale
// by the time a booking commits.
type BusyPeriod struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the slot intersects the busy period. Intervals
// are half-open: a slot that ends exactly when a busy period starts, or
// starts exactly when one ends, does not conflict.
func (s Slot) Overlaps(b BusyPeriod) bool {
	return s.Start.Before(b.End) && s.End.After(b.Start)
}

// SlotOffer is a bookable slot as presented to clients.
type SlotOffer struct {
	Time    string    `json:"time"`
	Display string    `json:"display"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Request is a booking request supplied by the caller.
type Request struct {
	Name  string
	Email string
	Start time.Time
	End   time.Time
	Notes string
}

// Confirmation is the result of a committed booking. The calendar provider
// owns the event from here on; the engine keeps no copy.
type Confirmation struct {
	EventID  string
	MeetLink string
	Start    time.Time
	End      time.Time
}

// EventSpec describes the calendar event to insert for a booking.
type EventSpec struct {
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	TimeZone      string
	AttendeeName  string
	AttendeeEmail string
}

// CreatedEvent is the provider's response to an event insert.
type CreatedEvent struct {
	ID       string
	MeetLink string
}
