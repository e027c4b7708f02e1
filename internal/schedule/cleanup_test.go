package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinschedulo/schedulo/internal/event"
)

func testCleaner(t *testing.T, store *fakeStore) *Cleaner {
	c := NewCleaner(store)
	c.now = func() time.Time { return time.Date(2025, 3, 4, 9, 0, 0, 0, pacific(t)) }
	return c
}

func TestDeleteByAssignment(t *testing.T) {
	loc := time.UTC
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, loc)

	t.Run("deletes exact matches only", func(t *testing.T) {
		store := newFakeStore()
		store.add(aiEvent("", "Midterm Study", "CS101", "Midterm", 1, start))
		store.add(aiEvent("", "Midterm Study 2", "CS101", "Midterm", 1, start.Add(time.Hour)))
		store.add(aiEvent("", "Final Study", "CS101", "Final", 1, start.Add(2*time.Hour)))
		store.add(aiEvent("", "Midterm Study", "MATH200", "Midterm", 1, start.Add(3*time.Hour)))

		count, err := testCleaner(t, store).DeleteByAssignment(context.Background(), "CS101", "Midterm")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Len(t, store.events, 2)
	})

	t.Run("no partial matching on assignment name", func(t *testing.T) {
		store := newFakeStore()
		store.add(aiEvent("", "Essay Work", "ENG110", "Essay Draft", 1, start))

		count, err := testCleaner(t, store).DeleteByAssignment(context.Background(), "ENG110", "Essay")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Len(t, store.events, 1)
	})

	t.Run("zero matches is not an error", func(t *testing.T) {
		store := newFakeStore()
		count, err := testCleaner(t, store).DeleteByAssignment(context.Background(), "CS101", "Midterm")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("missing arguments rejected", func(t *testing.T) {
		store := newFakeStore()
		_, err := testCleaner(t, store).DeleteByAssignment(context.Background(), "CS101", "")
		assert.Error(t, err)
		_, err = testCleaner(t, store).DeleteByAssignment(context.Background(), "", "Midterm")
		assert.Error(t, err)
	})

	t.Run("store failure is distinguishable from no match", func(t *testing.T) {
		store := newFakeStore()
		store.listErr = assert.AnError

		_, err := testCleaner(t, store).DeleteByAssignment(context.Background(), "CS101", "Midterm")
		assert.Error(t, err)
	})

	t.Run("partial failure reports count so far", func(t *testing.T) {
		store := newFakeStore()
		store.add(aiEvent("", "Study A", "CS101", "Midterm", 1, start))
		store.add(aiEvent("", "Study B", "CS101", "Midterm", 1, start.Add(time.Hour)))
		store.add(aiEvent("", "Study C", "CS101", "Midterm", 1, start.Add(2*time.Hour)))
		store.failDeleteAfter = 2

		count, err := testCleaner(t, store).DeleteByAssignment(context.Background(), "CS101", "Midterm")
		require.Error(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestDeleteByName(t *testing.T) {
	loc := time.UTC
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, loc)

	t.Run("spares user events with the same title", func(t *testing.T) {
		store := newFakeStore()
		store.add(aiEvent("", "Study Session", "", "", 1, start))
		store.add(event.Record{
			Summary: "Study Session",
			Start:   event.DateTime{Time: start.Add(time.Hour)},
			End:     event.DateTime{Time: start.Add(2 * time.Hour)},
			// User-created: no AI-generated flag.
		})

		count, err := testCleaner(t, store).DeleteByName(context.Background(), "Study Session")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.Len(t, store.events, 1)
		for _, remaining := range store.events {
			assert.False(t, remaining.Provenance.AIGenerated)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := testCleaner(t, newFakeStore()).DeleteByName(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("events outside the 30 day window are untouched", func(t *testing.T) {
		store := newFakeStore()
		farFuture := time.Date(2025, 5, 1, 10, 0, 0, 0, loc)
		store.add(aiEvent("", "Study Session", "", "", 1, farFuture))

		count, err := testCleaner(t, store).DeleteByName(context.Background(), "Study Session")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Len(t, store.events, 1)
	})
}
