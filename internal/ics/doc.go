// Package ics renders confirmed bookings as portable iCalendar invite
// documents for download by the attendee.
package ics
