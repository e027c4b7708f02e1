package schedule

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/calvinschedulo/schedulo/internal/event"
)

const (
	// DefaultReadWindowDays bounds the calendar window fetched before a
	// synthesis run.
	DefaultReadWindowDays = 8

	// DefaultDeleteWindowDays bounds the window scanned by the
	// provenance-scoped deletion operations.
	DefaultDeleteWindowDays = 30
)

// Store is the calendar provider boundary. Implementations are expected to
// return events ordered by start time with recurrences expanded.
type Store interface {
	List(ctx context.Context, timeMin, timeMax time.Time) ([]event.Record, error)
	Insert(ctx context.Context, record event.Record) (string, error)
	Delete(ctx context.Context, eventID string) error
}

type assignmentKey struct {
	courseID       string
	assignmentName string
}

// Snapshot is an immutable point-in-time view of one calendar window,
// indexed for the matching the reconciler and cleanup operations do.
// Only entries carrying the AI-generated flag land in the indices;
// everything else is kept in Events for display but can never be matched
// for deletion.
type Snapshot struct {
	Events []event.Record

	byAssignment map[assignmentKey][]event.Record
	byTitle      map[string][]event.Record
	courseColors map[string]int
}

// NewSnapshot builds the lookup indices over an already-fetched window.
func NewSnapshot(events []event.Record) *Snapshot {
	s := &Snapshot{
		Events:       events,
		byAssignment: make(map[assignmentKey][]event.Record),
		byTitle:      make(map[string][]event.Record),
		courseColors: make(map[string]int),
	}

	for _, e := range events {
		if !e.Provenance.AIGenerated {
			continue
		}
		if e.Provenance.HasAssignmentKey() {
			key := assignmentKey{e.Provenance.CourseID, e.Provenance.AssignmentName}
			s.byAssignment[key] = append(s.byAssignment[key], e)
		}
		if e.Summary != "" {
			s.byTitle[e.Summary] = append(s.byTitle[e.Summary], e)
		}
		if e.Provenance.CourseID != "" && e.ColorID != 0 {
			// First occurrence wins; the window is start-ordered so this
			// keeps the earliest event's color for the course.
			if _, seen := s.courseColors[e.Provenance.CourseID]; !seen {
				s.courseColors[e.Provenance.CourseID] = e.ColorID
			}
		}
	}

	return s
}

// FetchSnapshot reads a fresh windowDays-wide window from the store,
// starting now. Snapshots are never cached; every operation refetches.
func FetchSnapshot(ctx context.Context, store Store, now time.Time, windowDays int) (*Snapshot, error) {
	if windowDays <= 0 {
		windowDays = DefaultReadWindowDays
	}

	events, err := store.List(ctx, now, now.AddDate(0, 0, windowDays))
	if err != nil {
		return nil, err
	}

	return NewSnapshot(events), nil
}

// ByAssignment returns the AI-generated events matching the identity key
// exactly.
func (s *Snapshot) ByAssignment(courseID, assignmentName string) []event.Record {
	return s.byAssignment[assignmentKey{courseID, assignmentName}]
}

// ByTitle returns the AI-generated events whose summary matches exactly.
func (s *Snapshot) ByTitle(title string) []event.Record {
	return s.byTitle[title]
}

// CourseColor returns the color already used for a course in this window.
func (s *Snapshot) CourseColor(courseID string) (int, bool) {
	color, ok := s.courseColors[courseID]
	return color, ok
}

// Render produces a plain-text view of the window, suitable for handing to
// the model as context so new events stay color-consistent with what is
// already on the calendar.
func (s *Snapshot) Render() string {
	if len(s.Events) == 0 {
		return "No upcoming events."
	}

	var buf bytes.Buffer
	for _, e := range s.Events {
		fmt.Fprintf(&buf, "- %s: %s - %s (color %d)",
			e.Summary,
			e.Start.Time.Format("2006-01-02 15:04"),
			e.End.Time.Format("2006-01-02 15:04"),
			e.ColorID,
		)
		if e.Provenance.CourseID != "" {
			fmt.Fprintf(&buf, " [course %s]", e.Provenance.CourseID)
		}
		if e.Location != "" {
			fmt.Fprintf(&buf, " @ %s", e.Location)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
