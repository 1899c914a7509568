package schedule

import "time"

// CandidateSlots returns the ordered candidate slots for a date under the
// given policy and working hours. A closed weekday yields nil.
//
// The walk starts at the day's opening minute and advances by SlotInterval,
// stopping once a meeting of MeetingDuration would run past the closing
// minute. Every candidate is exactly MeetingDuration long; adjacent
// candidates may overlap when the interval is shorter than the duration.
//
// The function is pure: it performs no I/O and does not consult the clock.
func CandidateSlots(date Date, policy Policy, hours WorkingHours) []Slot {
	midnight := time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, policy.Location)
	dh := hours[midnight.Weekday()]
	if dh == nil {
		return nil
	}

	duration := time.Duration(policy.MeetingDuration) * time.Minute

	var slots []Slot
	for cur := dh.Start; cur+policy.MeetingDuration <= dh.End; cur += policy.SlotInterval {
		// time.Date normalizes minute overflow, so minutes-of-day past 59
		// resolve to the right wall-clock time.
		start := time.Date(date.Year, date.Month, date.Day, 0, cur, 0, 0, policy.Location)
		slots = append(slots, Slot{Start: start, End: start.Add(duration)})
	}
	return slots
}
