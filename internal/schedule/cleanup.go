package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/calvinschedulo/schedulo/internal/event"
)

// Cleaner performs provenance-scoped bulk deletion. Every call scans a
// fresh 30-day snapshot; deletion is deliberate and infrequent, so the cost
// of a refetch beats the risk of acting on stale state.
type Cleaner struct {
	store      Store
	windowDays int
	now        func() time.Time
}

// NewCleaner creates a cleaner over the given store.
func NewCleaner(store Store) *Cleaner {
	return &Cleaner{
		store:      store,
		windowDays: DefaultDeleteWindowDays,
		now:        time.Now,
	}
}

// DeleteByAssignment removes the AI-generated events whose course and
// assignment both match exactly. Partial matching is a correctness hazard
// for an irrevocable delete, so none is offered. Returns the number of
// events actually deleted; zero with a nil error means nothing matched.
func (c *Cleaner) DeleteByAssignment(ctx context.Context, courseID, assignmentName string) (int, error) {
	if courseID == "" || assignmentName == "" {
		return 0, fmt.Errorf("both course and assignment are required")
	}

	snap, err := c.fetch(ctx)
	if err != nil {
		return 0, err
	}

	return c.deleteAll(ctx, snap.ByAssignment(courseID, assignmentName))
}

// DeleteByName removes the AI-generated events whose summary matches name
// exactly. User-created events with the same title are left alone.
func (c *Cleaner) DeleteByName(ctx context.Context, name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("name is required")
	}

	snap, err := c.fetch(ctx)
	if err != nil {
		return 0, err
	}

	return c.deleteAll(ctx, snap.ByTitle(name))
}

func (c *Cleaner) fetch(ctx context.Context) (*Snapshot, error) {
	return FetchSnapshot(ctx, c.store, c.now(), c.windowDays)
}

// deleteAll issues one independent delete per match. A failure partway
// leaves the prior deletions applied; the count achieved so far is
// returned alongside the triggering error.
func (c *Cleaner) deleteAll(ctx context.Context, matches []event.Record) (int, error) {
	deleted := 0
	for _, e := range matches {
		if !e.Provenance.AIGenerated || e.ID == "" {
			continue
		}
		if err := c.store.Delete(ctx, e.ID); err != nil {
			return deleted, fmt.Errorf("deleted %d events before failure: %w", deleted, err)
		}
		deleted++
	}
	return deleted, nil
}
