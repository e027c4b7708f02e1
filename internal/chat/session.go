package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/calvinschedulo/schedulo/internal/groq"
)

// DefaultIdleTTL is how long a session may sit without a message before the
// janitor evicts it.
const DefaultIdleTTL = 30 * time.Minute

// ErrEmptyInput is returned when a turn arrives with no text.
var ErrEmptyInput = errors.New("chat: empty input")

// Completer is the LLM boundary for conversation turns.
type Completer interface {
	Complete(ctx context.Context, messages []groq.Message) (string, error)
}

// Reply is the outcome of one conversation turn. When Finalized is set the
// Text is not chat output but the plan text the extraction pipeline
// consumes; the session has been cleared for the next planning round.
type Reply struct {
	Text      string `json:"response"`
	Finalized bool   `json:"-"`
}

type session struct {
	mu         sync.Mutex
	history    []groq.Message
	lastActive time.Time
}

// Manager holds one conversation per user. Sessions are created lazily on
// the first turn and evicted after DefaultIdleTTL of silence.
type Manager struct {
	llm     Completer
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewManager creates a session manager backed by the given completer.
func NewManager(llm Completer) *Manager {
	return &Manager{
		llm:      llm,
		idleTTL:  DefaultIdleTTL,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

func (m *Manager) getOrCreate(userID, calendarState string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = &session{
			history: []groq.Message{
				{Role: "system", Content: SystemPrompt(calendarState)},
			},
		}
		m.sessions[userID] = s
	}
	s.lastActive = m.now()
	return s
}

// Send runs one conversation turn for the user. calendarState is only used
// when this turn starts a fresh session; an established session keeps the
// framing it was created with. Turns within one session are serialized.
func (m *Manager) Send(ctx context.Context, userID, input, calendarState string) (*Reply, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	s := m.getOrCreate(userID, calendarState)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, groq.Message{Role: "user", Content: input})

	response, err := m.llm.Complete(ctx, s.history)
	if err != nil {
		// Keep the failed turn out of the history so a retry replays it.
		s.history = s.history[:len(s.history)-1]
		return nil, fmt.Errorf("chat turn failed: %w", err)
	}

	if input == TriggerPhrase {
		// The completion is the finalized plan, not a chat reply. The
		// planning round is over; drop the session so the next message
		// starts fresh against the calendar as it will be then.
		m.Reset(userID)
		return &Reply{Text: response, Finalized: true}, nil
	}

	s.history = append(s.history, groq.Message{Role: "assistant", Content: response})
	return &Reply{Text: response}, nil
}

// Reset discards the user's session, if any.
func (m *Manager) Reset(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// EvictIdle removes sessions that have been silent longer than the TTL and
// reports how many were dropped.
func (m *Manager) EvictIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idleTTL)
	evicted := 0
	for userID, s := range m.sessions {
		if s.lastActive.Before(cutoff) {
			delete(m.sessions, userID)
			evicted++
		}
	}
	return evicted
}

// StartJanitor evicts idle sessions on an interval until ctx is done.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.EvictIdle(); n > 0 {
					fmt.Printf("Chat: evicted %d idle sessions\n", n)
				}
			}
		}
	}()
}
