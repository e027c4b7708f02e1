package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/calvinschedulo/schedulo/internal/event"
)

// ErrEmptyBatch means every draft in a synthesis batch failed validation.
var ErrEmptyBatch = errors.New("no valid drafts in synthesis batch")

// Plan is the outcome of one reconciliation: the drafts to insert, the IDs
// of the existing events they replace, and one warning per dropped draft.
// Inserts keep the drafts' input order; deletes carry no ordering.
type Plan struct {
	Inserts  []event.Record
	Deletes  []string
	Warnings []string
}

// Reconciler merges extracted drafts against a calendar snapshot. The
// provider gives no in-place update guarantee, so a match is resolved as
// replace: delete the existing event, insert the draft.
type Reconciler struct {
	Location *time.Location
	Now      func() time.Time
}

// NewReconciler creates a reconciler defaulting times into loc.
func NewReconciler(loc *time.Location) *Reconciler {
	return &Reconciler{Location: loc, Now: time.Now}
}

// Reconcile decides, draft by draft, what to insert and what to replace.
// Matching runs first on the (course, assignment) identity key, then by
// exact summary for drafts without one; both match only AI-generated
// events, so a user's own calendar entries are never replaced. A draft that
// still fails validation after defaulting is dropped with a warning; the
// whole batch fails only when nothing survives.
func (r *Reconciler) Reconcile(drafts []event.Record, snap *Snapshot) (*Plan, error) {
	plan := &Plan{}
	deleteSet := make(map[string]struct{})

	for i, draft := range drafts {
		// Color inheritance must look at the draft before defaulting,
		// while "unset" is still distinguishable from color 1.
		if draft.ColorID == 0 && draft.Provenance.CourseID != "" {
			if color, ok := snap.CourseColor(draft.Provenance.CourseID); ok {
				draft.ColorID = color
			}
		}

		draft.ApplyDefaults(r.Now(), r.Location)
		draft.Provenance.AIGenerated = true

		if err := draft.Validate(); err != nil {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("draft %d dropped: %v", i, err))
			continue
		}

		var matches []event.Record
		if draft.Provenance.HasAssignmentKey() {
			matches = snap.ByAssignment(draft.Provenance.CourseID, draft.Provenance.AssignmentName)
		} else {
			matches = snap.ByTitle(draft.Summary)
		}

		for _, existing := range matches {
			// The indices only hold AI-generated events, but deletion is
			// irrevocable, so re-check before marking.
			if !existing.Provenance.AIGenerated || existing.ID == "" {
				continue
			}
			if _, dup := deleteSet[existing.ID]; dup {
				continue
			}
			deleteSet[existing.ID] = struct{}{}
			plan.Deletes = append(plan.Deletes, existing.ID)
		}

		plan.Inserts = append(plan.Inserts, draft)
	}

	if len(plan.Inserts) == 0 {
		return nil, fmt.Errorf("%w: %d drafts submitted, none valid", ErrEmptyBatch, len(drafts))
	}

	return plan, nil
}
