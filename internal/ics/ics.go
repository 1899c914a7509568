package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/teemow/meetsched/internal/schedule"
)

const productID = "-//meetsched//Meet Scheduler//EN"

// Formatter renders a confirmed booking as an iCalendar invite document.
// Rendering is pure formatting: no I/O, no external state.
type Formatter struct {
	// now supplies the DTSTAMP creation timestamp. Defaults to time.Now.
	now func() time.Time

	// newUID supplies the event identifier. Defaults to a random UUID.
	newUID func() string
}

// NewFormatter creates a formatter with the default clock and UID source.
func NewFormatter() *Formatter {
	return &Formatter{
		now:    time.Now,
		newUID: uuid.NewString,
	}
}

// Render produces the VCALENDAR/VEVENT document for a confirmed meeting:
// start and end in UTC basic format, the join link as location, the owner
// as organizer, the requester as attendee, status confirmed.
func (f *Formatter) Render(conf *schedule.Confirmation, req schedule.Request, ownerName, ownerEmail string) (string, error) {
	notes := req.Notes
	if notes == "" {
		notes = "None"
	}
	description := fmt.Sprintf("Notes: %s\n\nJoin: %s", notes, conf.MeetLink)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, f.newUID()+"@meetsched")
	event.Props.SetDateTime(ical.PropDateTimeStamp, f.now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, conf.Start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, conf.End.UTC())
	event.Props.SetText(ical.PropSummary, fmt.Sprintf("Meeting with %s", ownerName))
	event.Props.SetText(ical.PropDescription, description)
	event.Props.SetText(ical.PropLocation, conf.MeetLink)
	event.Props.SetText(ical.PropStatus, "CONFIRMED")

	organizer := ical.NewProp(ical.PropOrganizer)
	organizer.Params.Set(ical.ParamCommonName, ownerName)
	organizer.Value = "mailto:" + ownerEmail
	event.Props.Set(organizer)

	attendee := ical.NewProp(ical.PropAttendee)
	attendee.Params.Set(ical.ParamCommonName, req.Name)
	attendee.Value = "mailto:" + req.Email
	event.Props.Set(attendee)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, event.Component)

	var buf strings.Builder
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("failed to encode calendar invite: %w", err)
	}
	return buf.String(), nil
}
