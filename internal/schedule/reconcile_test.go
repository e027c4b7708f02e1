package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinschedulo/schedulo/internal/event"
)

func pacific(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return loc
}

func testReconciler(t *testing.T) *Reconciler {
	loc := pacific(t)
	r := NewReconciler(loc)
	r.Now = func() time.Time { return time.Date(2025, 3, 4, 9, 0, 0, 0, loc) }
	return r
}

func aiEvent(id, summary, courseID, assignment string, colorID int, start time.Time) event.Record {
	return event.Record{
		ID:      id,
		Summary: summary,
		Start:   event.DateTime{Time: start},
		End:     event.DateTime{Time: start.Add(time.Hour)},
		ColorID: colorID,
		Provenance: event.Provenance{
			CourseID:       courseID,
			AssignmentName: assignment,
			Priority:       5,
			AIGenerated:    true,
		},
	}
}

func TestReconcileEmptySnapshot(t *testing.T) {
	loc := pacific(t)
	r := testReconciler(t)

	drafts := []event.Record{{
		Summary: "Midterm Study",
		Provenance: event.Provenance{
			CourseID:       "CS101",
			AssignmentName: "Midterm",
		},
	}}

	plan, err := r.Reconcile(drafts, NewSnapshot(nil))
	require.NoError(t, err)

	require.Len(t, plan.Inserts, 1)
	assert.Empty(t, plan.Deletes)

	got := plan.Inserts[0]
	assert.True(t, got.Start.Time.Equal(time.Date(2025, 3, 4, 12, 0, 0, 0, loc)))
	assert.True(t, got.End.Time.Equal(time.Date(2025, 3, 4, 13, 0, 0, 0, loc)))
	assert.Equal(t, event.DefaultColorID, got.ColorID)
	assert.True(t, got.Provenance.AIGenerated)
}

func TestReconcileReplacesByAssignmentKey(t *testing.T) {
	loc := pacific(t)
	r := testReconciler(t)

	existing := aiEvent("evt-1", "Midterm Study", "CS101", "Midterm", 3,
		time.Date(2025, 3, 5, 10, 0, 0, 0, loc))
	snap := NewSnapshot([]event.Record{existing})

	drafts := []event.Record{{
		Summary: "Midterm Study (revised)",
		Provenance: event.Provenance{
			CourseID:       "CS101",
			AssignmentName: "Midterm",
		},
	}}

	plan, err := r.Reconcile(drafts, snap)
	require.NoError(t, err)

	require.Len(t, plan.Inserts, 1)
	assert.Equal(t, []string{"evt-1"}, plan.Deletes)
}

func TestReconcileMatchesByTitleWithoutKey(t *testing.T) {
	loc := pacific(t)
	r := testReconciler(t)

	existing := aiEvent("evt-2", "Gym Session", "", "", 1,
		time.Date(2025, 3, 5, 18, 0, 0, 0, loc))
	snap := NewSnapshot([]event.Record{existing})

	plan, err := r.Reconcile([]event.Record{{Summary: "Gym Session"}}, snap)
	require.NoError(t, err)

	assert.Equal(t, []string{"evt-2"}, plan.Deletes)
	require.Len(t, plan.Inserts, 1)
}

func TestReconcileNeverDeletesUserEvents(t *testing.T) {
	loc := pacific(t)
	r := testReconciler(t)

	userEvent := event.Record{
		ID:      "user-1",
		Summary: "Gym Session",
		Start:   event.DateTime{Time: time.Date(2025, 3, 5, 18, 0, 0, 0, loc)},
		End:     event.DateTime{Time: time.Date(2025, 3, 5, 19, 0, 0, 0, loc)},
		// No provenance: created by the user, not this pipeline.
	}
	snap := NewSnapshot([]event.Record{userEvent})

	plan, err := r.Reconcile([]event.Record{{Summary: "Gym Session"}}, snap)
	require.NoError(t, err)

	assert.Empty(t, plan.Deletes)
	require.Len(t, plan.Inserts, 1)
}

func TestReconcileColorInheritance(t *testing.T) {
	loc := pacific(t)
	r := testReconciler(t)

	existing := aiEvent("evt-3", "CS101 Reading", "CS101", "Reading 1", 7,
		time.Date(2025, 3, 5, 10, 0, 0, 0, loc))
	snap := NewSnapshot([]event.Record{existing})

	drafts := []event.Record{{
		Summary: "CS101 Problem Set",
		Provenance: event.Provenance{
			CourseID:       "CS101",
			AssignmentName: "PS2",
		},
	}}

	plan, err := r.Reconcile(drafts, snap)
	require.NoError(t, err)
	require.Len(t, plan.Inserts, 1)
	assert.Equal(t, 7, plan.Inserts[0].ColorID)
}

func TestReconcileExplicitColorWins(t *testing.T) {
	loc := pacific(t)
	r := testReconciler(t)

	existing := aiEvent("evt-4", "CS101 Reading", "CS101", "Reading 1", 7,
		time.Date(2025, 3, 5, 10, 0, 0, 0, loc))
	snap := NewSnapshot([]event.Record{existing})

	drafts := []event.Record{{
		Summary: "CS101 Lab",
		ColorID: 4,
		Provenance: event.Provenance{
			CourseID:       "CS101",
			AssignmentName: "Lab 3",
		},
	}}

	plan, err := r.Reconcile(drafts, snap)
	require.NoError(t, err)
	assert.Equal(t, 4, plan.Inserts[0].ColorID)
}

func TestReconcileDropsInvalidKeepsValid(t *testing.T) {
	r := testReconciler(t)

	drafts := []event.Record{
		{Summary: ""}, // invalid after defaulting
		{Summary: "Study Block"},
	}

	plan, err := r.Reconcile(drafts, NewSnapshot(nil))
	require.NoError(t, err)

	require.Len(t, plan.Inserts, 1)
	assert.Equal(t, "Study Block", plan.Inserts[0].Summary)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "draft 0")
}

func TestReconcileEmptyBatch(t *testing.T) {
	r := testReconciler(t)

	_, err := r.Reconcile([]event.Record{{Summary: ""}}, NewSnapshot(nil))
	require.ErrorIs(t, err, ErrEmptyBatch)

	_, err = r.Reconcile(nil, NewSnapshot(nil))
	require.ErrorIs(t, err, ErrEmptyBatch)
}

func TestReconcileInsertOrderPreserved(t *testing.T) {
	r := testReconciler(t)

	drafts := []event.Record{
		{Summary: "First"},
		{Summary: "Second"},
		{Summary: "Third"},
	}

	plan, err := r.Reconcile(drafts, NewSnapshot(nil))
	require.NoError(t, err)

	require.Len(t, plan.Inserts, 3)
	assert.Equal(t, "First", plan.Inserts[0].Summary)
	assert.Equal(t, "Second", plan.Inserts[1].Summary)
	assert.Equal(t, "Third", plan.Inserts[2].Summary)
}

func TestReconcileDuplicateMatchesDeleteOnce(t *testing.T) {
	loc := pacific(t)
	r := testReconciler(t)

	existing := aiEvent("evt-5", "Review", "CS101", "Final", 2,
		time.Date(2025, 3, 6, 10, 0, 0, 0, loc))
	snap := NewSnapshot([]event.Record{existing})

	drafts := []event.Record{
		{Summary: "Review AM", Provenance: event.Provenance{CourseID: "CS101", AssignmentName: "Final"}},
		{Summary: "Review PM", Provenance: event.Provenance{CourseID: "CS101", AssignmentName: "Final"}},
	}

	plan, err := r.Reconcile(drafts, snap)
	require.NoError(t, err)

	assert.Len(t, plan.Inserts, 2)
	assert.Equal(t, []string{"evt-5"}, plan.Deletes)
}
