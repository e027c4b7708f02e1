package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/calvinschedulo/schedulo/internal/event"
	"github.com/calvinschedulo/schedulo/internal/groq"
)

// ExtractionError wraps a structured-output failure: the model channel
// errored or returned content no amount of repair could parse. The caller
// owns any retry policy.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("event extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Completer is the LLM channel the extractor speaks through.
type Completer interface {
	Complete(ctx context.Context, messages []groq.Message) (string, error)
}

// Extractor converts free-text planning output into event drafts.
type Extractor struct {
	llm      Completer
	location *time.Location
	now      func() time.Time
}

// NewExtractor creates an extractor using loc as the default time zone for
// drafts that arrive without one.
func NewExtractor(llm Completer, loc *time.Location) *Extractor {
	return &Extractor{
		llm:      llm,
		location: loc,
		now:      time.Now,
	}
}

// Result is one extraction batch: the drafts that survived validation plus
// a warning per item that did not.
type Result struct {
	Drafts   []event.Record
	Warnings []string
}

// Extract asks the model to turn freeText into drafts. calendarHint, when
// non-empty, is a rendering of the current calendar so the model can keep
// course color-coding consistent with existing events. Individual malformed
// drafts are dropped with a warning; the call fails only when the channel
// errors or nothing in the reply is parseable.
func (e *Extractor) Extract(ctx context.Context, freeText, calendarHint string) (*Result, error) {
	userContent := freeText
	if calendarHint != "" {
		userContent = fmt.Sprintf("%s\n\nThis is the user's current calendar, try to match the color schemes:\n%s", freeText, calendarHint)
	}

	reply, err := e.llm.Complete(ctx, []groq.Message{
		{Role: "system", Content: SchemaPrompt},
		{Role: "user", Content: userContent},
	})
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}

	drafts, warnings, err := ParseDrafts(reply, e.now(), e.location)
	if err != nil {
		return nil, err
	}

	for _, w := range warnings {
		fmt.Printf("Extractor: %s\n", w)
	}

	return &Result{Drafts: drafts, Warnings: warnings}, nil
}
