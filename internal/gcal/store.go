package gcal

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/calvinschedulo/schedulo/internal/event"
)

// Keys under extendedProperties.private carrying provenance metadata.
// classID/assignmentName/priority/aiGenerated are the wire names the
// extraction schema has always used.
const (
	propCourseID       = "classID"
	propAssignmentName = "assignmentName"
	propPriority       = "priority"
	propAIGenerated    = "aiGenerated"
)

// StoreError wraps a calendar provider failure so callers can tell a
// transport problem apart from an empty (but successful) result.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("calendar store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// List returns the events in [timeMin, timeMax) on the primary calendar,
// ordered by start time with recurring events expanded to single
// occurrences. Entries the provider reports as cancelled or with
// unparseable times are skipped.
func (c *Client) List(ctx context.Context, timeMin, timeMax time.Time) ([]event.Record, error) {
	if c == nil || c.service == nil {
		return nil, &StoreError{Op: "list", Err: fmt.Errorf("calendar service not initialized")}
	}
	if timeMax.Before(timeMin) {
		return nil, &StoreError{Op: "list", Err: fmt.Errorf("invalid range: time_max is before time_min")}
	}

	var result []event.Record
	pageToken := ""
	nowLoc := time.Now().Location()

	for {
		call := c.service.Events.List("primary").
			Context(ctx).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			ShowDeleted(false).
			OrderBy("startTime")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, &StoreError{Op: "list", Err: err}
		}

		for _, item := range events.Items {
			if item == nil || item.Status == "cancelled" {
				continue
			}
			record, parseErr := fromGoogleEvent(item, nowLoc)
			if parseErr != nil {
				continue
			}
			result = append(result, record)
		}

		if events.NextPageToken == "" {
			break
		}
		pageToken = events.NextPageToken
	}

	return result, nil
}

// Insert creates a new event on the primary calendar and returns the
// provider-assigned event ID.
func (c *Client) Insert(ctx context.Context, record event.Record) (string, error) {
	if c == nil || c.service == nil {
		return "", &StoreError{Op: "insert", Err: fmt.Errorf("calendar service not initialized")}
	}

	created, err := c.service.Events.Insert("primary", toGoogleEvent(record)).Context(ctx).Do()
	if err != nil {
		return "", &StoreError{Op: "insert", Err: err}
	}

	return created.Id, nil
}

// Delete removes an event from the primary calendar.
func (c *Client) Delete(ctx context.Context, eventID string) error {
	if c == nil || c.service == nil {
		return &StoreError{Op: "delete", Err: fmt.Errorf("calendar service not initialized")}
	}
	if eventID == "" {
		return &StoreError{Op: "delete", Err: fmt.Errorf("event id is required")}
	}

	if err := c.service.Events.Delete("primary", eventID).Context(ctx).Do(); err != nil {
		return &StoreError{Op: "delete", Err: err}
	}

	return nil
}

// toGoogleEvent maps a canonical record to the provider's wire format.
func toGoogleEvent(r event.Record) *calendar.Event {
	ge := &calendar.Event{
		Summary:     r.Summary,
		Location:    r.Location,
		Description: r.Description,
		Start: &calendar.EventDateTime{
			DateTime: r.Start.Time.Format(time.RFC3339),
			TimeZone: r.Start.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: r.End.Time.Format(time.RFC3339),
			TimeZone: r.End.TimeZone,
		},
		ColorId: strconv.Itoa(r.ColorID),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				propCourseID:       r.Provenance.CourseID,
				propAssignmentName: r.Provenance.AssignmentName,
				propPriority:       strconv.Itoa(r.Provenance.Priority),
				propAIGenerated:    strconv.FormatBool(r.Provenance.AIGenerated),
			},
		},
	}

	if len(r.Attendees) > 0 {
		attendees := make([]*calendar.EventAttendee, len(r.Attendees))
		for i, email := range r.Attendees {
			attendees[i] = &calendar.EventAttendee{Email: email}
		}
		ge.Attendees = attendees
	}

	reminders := &calendar.EventReminders{
		UseDefault:      r.Reminders.UseDefault,
		ForceSendFields: []string{"UseDefault"},
	}
	if !r.Reminders.UseDefault {
		for _, o := range r.Reminders.Overrides {
			reminders.Overrides = append(reminders.Overrides, &calendar.EventReminder{
				Method:  string(o.Method),
				Minutes: o.MinutesBefore,
			})
		}
	}
	ge.Reminders = reminders

	if r.Recurrence != "" {
		ge.Recurrence = []string{r.Recurrence}
	}

	return ge
}

// fromGoogleEvent maps a provider event back to the canonical record.
// Events created outside this system come back with zero-value provenance
// and AIGenerated=false.
func fromGoogleEvent(item *calendar.Event, loc *time.Location) (event.Record, error) {
	start, end, err := parseGoogleEventTimes(item, loc)
	if err != nil {
		return event.Record{}, err
	}

	r := event.Record{
		ID:          item.Id,
		Summary:     item.Summary,
		Location:    item.Location,
		Description: item.Description,
		Start:       start,
		End:         end,
	}

	for _, attendee := range item.Attendees {
		if attendee != nil && attendee.Email != "" {
			r.Attendees = append(r.Attendees, attendee.Email)
		}
	}

	if item.Reminders != nil {
		r.Reminders.UseDefault = item.Reminders.UseDefault
		for _, o := range item.Reminders.Overrides {
			if o == nil {
				continue
			}
			r.Reminders.Overrides = append(r.Reminders.Overrides, event.ReminderOverride{
				Method:        event.ReminderMethod(o.Method),
				MinutesBefore: o.Minutes,
			})
		}
	} else {
		r.Reminders.UseDefault = true
	}

	if item.ColorId != "" {
		if colorID, convErr := strconv.Atoi(item.ColorId); convErr == nil {
			r.ColorID = colorID
		}
	}

	if len(item.Recurrence) > 0 {
		r.Recurrence = item.Recurrence[0]
	}

	if item.ExtendedProperties != nil && item.ExtendedProperties.Private != nil {
		private := item.ExtendedProperties.Private
		r.Provenance.CourseID = private[propCourseID]
		r.Provenance.AssignmentName = private[propAssignmentName]
		if priority, convErr := strconv.Atoi(private[propPriority]); convErr == nil {
			r.Provenance.Priority = event.ClampPriority(priority)
		}
		r.Provenance.AIGenerated = private[propAIGenerated] == "true"
	}

	return r, nil
}

func parseGoogleEventTimes(item *calendar.Event, loc *time.Location) (event.DateTime, event.DateTime, error) {
	if item == nil || item.Start == nil || item.End == nil {
		return event.DateTime{}, event.DateTime{}, fmt.Errorf("event is missing start or end")
	}

	// All-day events use Date instead of DateTime.
	if item.Start.Date != "" {
		startDate, err := time.ParseInLocation("2006-01-02", item.Start.Date, loc)
		if err != nil {
			return event.DateTime{}, event.DateTime{}, fmt.Errorf("failed to parse all-day start date: %w", err)
		}
		endDate, err := time.ParseInLocation("2006-01-02", item.End.Date, loc)
		if err != nil {
			return event.DateTime{}, event.DateTime{}, fmt.Errorf("failed to parse all-day end date: %w", err)
		}
		return event.DateTime{Time: startDate, TimeZone: loc.String()},
			event.DateTime{Time: endDate, TimeZone: loc.String()}, nil
	}

	if item.Start.DateTime == "" || item.End.DateTime == "" {
		return event.DateTime{}, event.DateTime{}, fmt.Errorf("event datetime is missing")
	}

	startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return event.DateTime{}, event.DateTime{}, fmt.Errorf("failed to parse start datetime: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return event.DateTime{}, event.DateTime{}, fmt.Errorf("failed to parse end datetime: %w", err)
	}

	return event.DateTime{Time: startTime, TimeZone: item.Start.TimeZone},
		event.DateTime{Time: endTime, TimeZone: item.End.TimeZone}, nil
}
