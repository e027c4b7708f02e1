package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinschedulo/schedulo/internal/event"
	"github.com/calvinschedulo/schedulo/internal/extract"
)

type fakeExtractor struct {
	drafts   []event.Record
	warnings []string
	err      error

	lastFreeText string
	lastHint     string
}

func (f *fakeExtractor) Extract(_ context.Context, freeText, calendarHint string) (*extract.Result, error) {
	f.lastFreeText = freeText
	f.lastHint = calendarHint
	if f.err != nil {
		return nil, f.err
	}
	return &extract.Result{Drafts: f.drafts, Warnings: f.warnings}, nil
}

func testPlanner(t *testing.T, store *fakeStore, ext *fakeExtractor) *Planner {
	loc := pacific(t)
	p := NewPlanner(store, ext, loc)
	p.now = func() time.Time { return time.Date(2025, 3, 4, 9, 0, 0, 0, loc) }
	return p
}

func TestSynthesize(t *testing.T) {
	loc := time.UTC
	start := time.Date(2025, 3, 6, 14, 0, 0, 0, loc)

	draft := func() event.Record {
		return event.Record{
			Summary: "Midterm Study Block",
			Start:   event.DateTime{Time: start},
			End:     event.DateTime{Time: start.Add(time.Hour)},
			ColorID: 3,
			Provenance: event.Provenance{
				CourseID:       "CS101",
				AssignmentName: "Midterm",
				Priority:       8,
				AIGenerated:    true,
			},
		}
	}

	t.Run("inserts extracted drafts", func(t *testing.T) {
		store := newFakeStore()
		ext := &fakeExtractor{drafts: []event.Record{draft()}}

		res, err := testPlanner(t, store, ext).Synthesize(context.Background(), "study plan text")
		require.NoError(t, err)

		require.Len(t, res.Inserted, 1)
		assert.Equal(t, 0, res.Deleted)
		assert.NotEmpty(t, res.Inserted[0].ID)
		assert.Equal(t, "study plan text", ext.lastFreeText)
		assert.Len(t, store.events, 1)
	})

	t.Run("running twice leaves one live event per assignment", func(t *testing.T) {
		store := newFakeStore()
		ext := &fakeExtractor{drafts: []event.Record{draft()}}
		planner := testPlanner(t, store, ext)

		first, err := planner.Synthesize(context.Background(), "study plan text")
		require.NoError(t, err)
		assert.Equal(t, 0, first.Deleted)

		second, err := planner.Synthesize(context.Background(), "study plan text")
		require.NoError(t, err)
		assert.Equal(t, 1, second.Deleted)
		require.Len(t, second.Inserted, 1)

		require.Len(t, store.events, 1)
		for _, live := range store.events {
			assert.Equal(t, second.Inserted[0].ID, live.ID)
		}
	})

	t.Run("snapshot is rendered into the extraction prompt", func(t *testing.T) {
		store := newFakeStore()
		store.add(aiEvent("", "Existing Lecture", "CS101", "", 5, start))
		ext := &fakeExtractor{drafts: []event.Record{draft()}}

		_, err := testPlanner(t, store, ext).Synthesize(context.Background(), "plan")
		require.NoError(t, err)
		assert.Contains(t, ext.lastHint, "Existing Lecture")
		assert.Contains(t, ext.lastHint, "course CS101")
	})

	t.Run("extractor warnings surface in the result", func(t *testing.T) {
		store := newFakeStore()
		ext := &fakeExtractor{
			drafts:   []event.Record{draft()},
			warnings: []string{"dropped one malformed entry"},
		}

		res, err := testPlanner(t, store, ext).Synthesize(context.Background(), "plan")
		require.NoError(t, err)
		assert.Contains(t, res.Warnings, "dropped one malformed entry")
	})

	t.Run("extractor failure aborts before mutating", func(t *testing.T) {
		store := newFakeStore()
		ext := &fakeExtractor{err: assert.AnError}

		_, err := testPlanner(t, store, ext).Synthesize(context.Background(), "plan")
		assert.Error(t, err)
		assert.Empty(t, store.events)
	})

	t.Run("empty extraction is an empty batch", func(t *testing.T) {
		store := newFakeStore()
		ext := &fakeExtractor{}

		_, err := testPlanner(t, store, ext).Synthesize(context.Background(), "plan")
		assert.ErrorIs(t, err, ErrEmptyBatch)
	})
}

func TestCreateEvents(t *testing.T) {
	loc := time.UTC
	start := time.Date(2025, 3, 6, 14, 0, 0, 0, loc)

	t.Run("repeated submission replaces instead of duplicating", func(t *testing.T) {
		store := newFakeStore()
		planner := testPlanner(t, store, &fakeExtractor{})

		drafts := []event.Record{{
			Summary: "Lab Writeup",
			Start:   event.DateTime{Time: start},
			End:     event.DateTime{Time: start.Add(time.Hour)},
			Provenance: event.Provenance{
				CourseID:       "BIO120",
				AssignmentName: "Lab 3",
				AIGenerated:    true,
			},
		}}

		_, err := planner.CreateEvents(context.Background(), drafts)
		require.NoError(t, err)
		_, err = planner.CreateEvents(context.Background(), drafts)
		require.NoError(t, err)

		assert.Len(t, store.events, 1)
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		planner := testPlanner(t, newFakeStore(), &fakeExtractor{})
		_, err := planner.CreateEvents(context.Background(), nil)
		assert.ErrorIs(t, err, ErrEmptyBatch)
	})
}

func TestApplyPartialFailure(t *testing.T) {
	loc := time.UTC
	start := time.Date(2025, 3, 6, 14, 0, 0, 0, loc)

	store := newFakeStore()
	id1 := store.add(aiEvent("", "Old A", "CS101", "Midterm", 1, start))
	id2 := store.add(aiEvent("", "Old B", "CS101", "Final", 1, start.Add(time.Hour)))
	store.failDeleteAfter = 1

	planner := testPlanner(t, store, &fakeExtractor{})
	plan := &Plan{Deletes: []string{id1, id2}}

	res, err := planner.Apply(context.Background(), plan)
	require.Error(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Empty(t, res.Inserted)
}

func TestUpcoming(t *testing.T) {
	loc := time.UTC
	store := newFakeStore()
	store.add(aiEvent("", "Tomorrow", "", "", 1, time.Date(2025, 3, 5, 10, 0, 0, 0, loc)))
	store.add(aiEvent("", "Next Month", "", "", 1, time.Date(2025, 4, 20, 10, 0, 0, 0, loc)))

	planner := testPlanner(t, store, &fakeExtractor{})

	events, err := planner.Upcoming(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Tomorrow", events[0].Summary)

	// Non-positive day counts fall back to the default window.
	events, err = planner.Upcoming(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
