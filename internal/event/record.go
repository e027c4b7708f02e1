package event

import (
	"fmt"
	"time"
)

const (
	// DefaultSummary is used when a draft arrives without a title.
	DefaultSummary = "Untitled Event"

	// DefaultAttendee is the scheduling bot's own address, attached when a
	// draft names no attendees.
	DefaultAttendee = "calvinschedulo@gmail.com"

	// DefaultColorID is the Google Calendar color used when the extractor
	// did not pick one.
	DefaultColorID = 1

	// DefaultDuration is applied when a draft has a start but no end.
	DefaultDuration = time.Hour

	// DefaultStartHour is the local hour used when a draft has no start at
	// all ("today at noon").
	DefaultStartHour = 12

	minPriority = 1
	maxPriority = 10
)

// ReminderMethod is a Google Calendar reminder delivery channel.
type ReminderMethod string

const (
	ReminderPopup ReminderMethod = "popup"
	ReminderEmail ReminderMethod = "email"
)

// ReminderOverride is a single non-default reminder.
type ReminderOverride struct {
	Method        ReminderMethod `json:"method"`
	MinutesBefore int64          `json:"minutes"`
}

// ReminderPolicy selects between the provider's default reminders and an
// explicit override list.
type ReminderPolicy struct {
	UseDefault bool               `json:"use_default"`
	Overrides  []ReminderOverride `json:"overrides,omitempty"`
}

// DateTime is a wall-clock instant paired with the IANA zone it was
// expressed in. The zone is kept separately because Google Calendar stores
// and displays it alongside the instant.
type DateTime struct {
	Time     time.Time `json:"date_time"`
	TimeZone string    `json:"time_zone,omitempty"`
}

// IsZero reports whether the instant was never set.
func (d DateTime) IsZero() bool {
	return d.Time.IsZero()
}

// Provenance records where a synthesized event came from. CourseID and
// AssignmentName form the identity key for assignment-linked events across
// synthesis runs. AIGenerated marks events this system is allowed to delete
// in bulk; user-created calendar entries never carry it.
type Provenance struct {
	CourseID       string `json:"course_id,omitempty"`
	AssignmentName string `json:"assignment_name,omitempty"`
	Priority       int    `json:"priority"`
	AIGenerated    bool   `json:"ai_generated"`
}

// HasAssignmentKey reports whether both halves of the identity key are set.
func (p Provenance) HasAssignmentKey() bool {
	return p.CourseID != "" && p.AssignmentName != ""
}

// Record is the canonical structured representation of a schedulable event,
// independent of the calendar provider's wire format.
type Record struct {
	ID          string         `json:"id,omitempty"` // store-assigned, empty on drafts
	Summary     string         `json:"summary"`
	Location    string         `json:"location,omitempty"`
	Description string         `json:"description,omitempty"`
	Start       DateTime       `json:"start"`
	End         DateTime       `json:"end"`
	Attendees   []string       `json:"attendees,omitempty"`
	Reminders   ReminderPolicy `json:"reminders"`
	ColorID     int            `json:"color_id"`
	Recurrence  string         `json:"recurrence,omitempty"`
	Provenance  Provenance     `json:"provenance"`
}

// ClampPriority forces a priority into the 1..10 scale. Out-of-range values
// from extraction are clamped rather than rejected.
func ClampPriority(p int) int {
	if p < minPriority {
		return minPriority
	}
	if p > maxPriority {
		return maxPriority
	}
	return p
}

// ApplyDefaults fills the derivable fields of a draft in place:
// missing start becomes "today at noon" in loc, missing end becomes
// start+1h, and empty attendee/color/priority fields get their defaults.
// The summary default is applied at parse time, where a missing key can
// still be told apart from an explicitly empty one.
func (r *Record) ApplyDefaults(now time.Time, loc *time.Location) {
	if r.Start.IsZero() {
		local := now.In(loc)
		r.Start = DateTime{
			Time:     time.Date(local.Year(), local.Month(), local.Day(), DefaultStartHour, 0, 0, 0, loc),
			TimeZone: loc.String(),
		}
	}
	if r.End.IsZero() {
		r.End = DateTime{
			Time:     r.Start.Time.Add(DefaultDuration),
			TimeZone: r.Start.TimeZone,
		}
	}
	if r.Start.TimeZone == "" {
		r.Start.TimeZone = loc.String()
	}
	if r.End.TimeZone == "" {
		r.End.TimeZone = r.Start.TimeZone
	}
	if len(r.Attendees) == 0 {
		r.Attendees = []string{DefaultAttendee}
	}
	if r.ColorID == 0 {
		r.ColorID = DefaultColorID
	}
	r.Provenance.Priority = ClampPriority(r.Provenance.Priority)
}

// Validate checks the required-field invariants after defaulting. A failing
// record is dropped from its batch, not fatal to it.
func (r *Record) Validate() error {
	if r.Summary == "" {
		return fmt.Errorf("event has an empty summary")
	}
	if r.Start.IsZero() {
		return fmt.Errorf("event %q has no start time", r.Summary)
	}
	if r.End.IsZero() {
		return fmt.Errorf("event %q has no end time", r.Summary)
	}
	if !r.End.Time.After(r.Start.Time) {
		return fmt.Errorf("event %q ends at or before it starts", r.Summary)
	}
	for _, o := range r.Reminders.Overrides {
		if o.MinutesBefore < 0 {
			return fmt.Errorf("event %q has a negative reminder offset", r.Summary)
		}
	}
	return nil
}
