package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func losAngeles(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return loc
}

func TestClampPriority(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"above range", 15, 10},
		{"below range", -3, 1},
		{"zero", 0, 1},
		{"in range", 7, 7},
		{"upper bound", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampPriority(tt.in))
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	loc := losAngeles(t)
	now := time.Date(2025, 3, 4, 9, 30, 0, 0, loc)

	t.Run("missing start becomes today at noon", func(t *testing.T) {
		r := Record{Summary: "Midterm Study"}
		r.ApplyDefaults(now, loc)

		want := time.Date(2025, 3, 4, 12, 0, 0, 0, loc)
		assert.True(t, r.Start.Time.Equal(want), "start = %v, want %v", r.Start.Time, want)
		assert.Equal(t, "America/Los_Angeles", r.Start.TimeZone)
	})

	t.Run("missing end is start plus one hour exactly", func(t *testing.T) {
		start := time.Date(2025, 3, 4, 15, 0, 0, 0, loc)
		r := Record{
			Summary: "Reading",
			Start:   DateTime{Time: start, TimeZone: loc.String()},
		}
		r.ApplyDefaults(now, loc)

		assert.Equal(t, time.Hour, r.End.Time.Sub(r.Start.Time))
		assert.Equal(t, r.Start.TimeZone, r.End.TimeZone)
	})

	t.Run("missing both derives end from defaulted start", func(t *testing.T) {
		r := Record{Summary: "Study Block"}
		r.ApplyDefaults(now, loc)

		assert.Equal(t, 12, r.Start.Time.In(loc).Hour())
		assert.Equal(t, 13, r.End.Time.In(loc).Hour())
	})

	t.Run("fills attendee color and priority defaults", func(t *testing.T) {
		r := Record{Summary: "Quiz Prep"}
		r.ApplyDefaults(now, loc)

		assert.Equal(t, []string{DefaultAttendee}, r.Attendees)
		assert.Equal(t, DefaultColorID, r.ColorID)
		assert.Equal(t, 1, r.Provenance.Priority)
	})

	t.Run("does not overwrite explicit fields", func(t *testing.T) {
		start := time.Date(2025, 3, 5, 8, 0, 0, 0, loc)
		end := time.Date(2025, 3, 5, 10, 0, 0, 0, loc)
		r := Record{
			Summary:   "Lab",
			Start:     DateTime{Time: start, TimeZone: loc.String()},
			End:       DateTime{Time: end, TimeZone: loc.String()},
			Attendees: []string{"partner@example.edu"},
			ColorID:   7,
			Provenance: Provenance{
				Priority: 9,
			},
		}
		r.ApplyDefaults(now, loc)

		assert.True(t, r.End.Time.Equal(end))
		assert.Equal(t, []string{"partner@example.edu"}, r.Attendees)
		assert.Equal(t, 7, r.ColorID)
		assert.Equal(t, 9, r.Provenance.Priority)
	})

	t.Run("clamps out of range priority", func(t *testing.T) {
		r := Record{Summary: "Final", Provenance: Provenance{Priority: 15}}
		r.ApplyDefaults(now, loc)
		assert.Equal(t, 10, r.Provenance.Priority)
	})
}

func TestValidate(t *testing.T) {
	loc := losAngeles(t)
	start := time.Date(2025, 3, 4, 12, 0, 0, 0, loc)

	valid := Record{
		Summary: "Study Block",
		Start:   DateTime{Time: start, TimeZone: loc.String()},
		End:     DateTime{Time: start.Add(time.Hour), TimeZone: loc.String()},
	}
	require.NoError(t, valid.Validate())

	t.Run("empty summary", func(t *testing.T) {
		r := valid
		r.Summary = ""
		assert.Error(t, r.Validate())
	})

	t.Run("end before start", func(t *testing.T) {
		r := valid
		r.End = DateTime{Time: start.Add(-time.Hour), TimeZone: loc.String()}
		assert.Error(t, r.Validate())
	})

	t.Run("end equal to start", func(t *testing.T) {
		r := valid
		r.End = r.Start
		assert.Error(t, r.Validate())
	})

	t.Run("negative reminder offset", func(t *testing.T) {
		r := valid
		r.Reminders = ReminderPolicy{
			Overrides: []ReminderOverride{{Method: ReminderPopup, MinutesBefore: -5}},
		}
		assert.Error(t, r.Validate())
	})
}

func TestHasAssignmentKey(t *testing.T) {
	assert.True(t, Provenance{CourseID: "CS101", AssignmentName: "Midterm"}.HasAssignmentKey())
	assert.False(t, Provenance{CourseID: "CS101"}.HasAssignmentKey())
	assert.False(t, Provenance{AssignmentName: "Midterm"}.HasAssignmentKey())
	assert.False(t, Provenance{}.HasAssignmentKey())
}
