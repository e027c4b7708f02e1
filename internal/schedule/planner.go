package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/calvinschedulo/schedulo/internal/event"
	"github.com/calvinschedulo/schedulo/internal/extract"
)

// Extractor turns finalized planning text into drafts.
type Extractor interface {
	Extract(ctx context.Context, freeText, calendarHint string) (*extract.Result, error)
}

// Planner runs the synthesis pipeline end to end: snapshot the calendar,
// extract drafts from the plan text, reconcile, then apply the plan
// against the store.
type Planner struct {
	store     Store
	extractor Extractor
	location  *time.Location
	now       func() time.Time
}

// NewPlanner wires the pipeline together.
func NewPlanner(store Store, extractor Extractor, loc *time.Location) *Planner {
	return &Planner{
		store:     store,
		extractor: extractor,
		location:  loc,
		now:       time.Now,
	}
}

// ApplyResult reports what a synthesis run actually changed. The calendar
// store is the source of truth and may have moved between snapshot and
// apply; last writer wins.
type ApplyResult struct {
	Inserted []event.Record `json:"inserted"`
	Deleted  int            `json:"deleted"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Synthesize converts finalized plan text into calendar mutations. The
// current snapshot is rendered into the extraction prompt so course colors
// stay consistent across runs.
func (p *Planner) Synthesize(ctx context.Context, planText string) (*ApplyResult, error) {
	snap, err := FetchSnapshot(ctx, p.store, p.now(), DefaultReadWindowDays)
	if err != nil {
		return nil, err
	}

	res, err := p.extractor.Extract(ctx, planText, snap.Render())
	if err != nil {
		return nil, err
	}

	reconciler := NewReconciler(p.location)
	reconciler.Now = p.now
	plan, err := reconciler.Reconcile(res.Drafts, snap)
	if err != nil {
		return nil, err
	}
	plan.Warnings = append(res.Warnings, plan.Warnings...)

	return p.Apply(ctx, plan)
}

// CreateEvents reconciles caller-supplied drafts against a fresh snapshot.
// This is the bulk-create path; it shares replace semantics with
// Synthesize so repeated submissions never duplicate.
func (p *Planner) CreateEvents(ctx context.Context, drafts []event.Record) (*ApplyResult, error) {
	snap, err := FetchSnapshot(ctx, p.store, p.now(), DefaultReadWindowDays)
	if err != nil {
		return nil, err
	}

	reconciler := NewReconciler(p.location)
	reconciler.Now = p.now
	plan, err := reconciler.Reconcile(drafts, snap)
	if err != nil {
		return nil, err
	}

	return p.Apply(ctx, plan)
}

// Apply issues the plan's mutations: deletes first, so a replaced event is
// gone before its successor appears, then inserts in draft order. Each
// store call is independent; on failure the result reflects everything
// applied before it, and nothing is rolled back.
func (p *Planner) Apply(ctx context.Context, plan *Plan) (*ApplyResult, error) {
	result := &ApplyResult{Warnings: plan.Warnings}

	for _, id := range plan.Deletes {
		if err := p.store.Delete(ctx, id); err != nil {
			return result, fmt.Errorf("apply stopped after %d deletes and %d inserts: %w",
				result.Deleted, len(result.Inserted), err)
		}
		result.Deleted++
	}

	for _, draft := range plan.Inserts {
		id, err := p.store.Insert(ctx, draft)
		if err != nil {
			return result, fmt.Errorf("apply stopped after %d deletes and %d inserts: %w",
				result.Deleted, len(result.Inserted), err)
		}
		draft.ID = id
		result.Inserted = append(result.Inserted, draft)
	}

	fmt.Printf("Planner: applied %d inserts, %d deletes\n", len(result.Inserted), result.Deleted)
	return result, nil
}

// CalendarHint renders the current read window as text for the chat
// framing message.
func (p *Planner) CalendarHint(ctx context.Context) (string, error) {
	snap, err := FetchSnapshot(ctx, p.store, p.now(), DefaultReadWindowDays)
	if err != nil {
		return "", err
	}
	return snap.Render(), nil
}

// Upcoming lists the next days of calendar state for display.
func (p *Planner) Upcoming(ctx context.Context, days int) ([]event.Record, error) {
	if days <= 0 {
		days = DefaultReadWindowDays
	}
	now := p.now()
	return p.store.List(ctx, now, now.AddDate(0, 0, days))
}
