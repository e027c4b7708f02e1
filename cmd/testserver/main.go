// Package main provides a test server for exercising the full planning
// pipeline without a Google account. It runs with in-memory SQLite and an
// in-memory calendar store; the Groq API is real so conversation and
// extraction quality can be checked end to end.
//
// Usage:
//
//	GROQ_API_KEY=gsk-... go run cmd/testserver/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/calvinschedulo/schedulo/internal/auth"
	"github.com/calvinschedulo/schedulo/internal/chat"
	"github.com/calvinschedulo/schedulo/internal/config"
	"github.com/calvinschedulo/schedulo/internal/database"
	"github.com/calvinschedulo/schedulo/internal/event"
	"github.com/calvinschedulo/schedulo/internal/extract"
	"github.com/calvinschedulo/schedulo/internal/groq"
	"github.com/calvinschedulo/schedulo/internal/schedule"
	"github.com/calvinschedulo/schedulo/internal/server"
)

// memStore is an in-memory schedule.Store standing in for Google Calendar.
type memStore struct {
	mu     sync.Mutex
	nextID int
	events map[string]event.Record
}

func newMemStore() *memStore {
	return &memStore{events: make(map[string]event.Record)}
}

func (m *memStore) List(_ context.Context, timeMin, timeMax time.Time) ([]event.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []event.Record
	for _, e := range m.events {
		if e.Start.Time.Before(timeMin) || !e.Start.Time.Before(timeMax) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Time.Before(out[j].Start.Time) })
	return out, nil
}

func (m *memStore) Insert(_ context.Context, r event.Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	r.ID = "mem-" + strconv.Itoa(m.nextID)
	m.events[r.ID] = r
	return r.ID, nil
}

func (m *memStore) Delete(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[eventID]; !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	delete(m.events, eventID)
	return nil
}

func main() {
	fmt.Println("Starting Schedulo test server...")
	fmt.Println("Calendar writes go to an in-memory store; Groq API is real.")

	cfg := config.LoadFromEnv()
	if cfg.GroqAPIKey == "" {
		fmt.Fprintln(os.Stderr, "Error: GROQ_API_KEY is required")
		os.Exit(1)
	}

	db, err := database.New(":memory:")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timezone: %v\n", err)
		os.Exit(1)
	}

	llm := groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqTemperature)
	store := newMemStore()

	extractor := extract.NewExtractor(llm, location)
	planner := schedule.NewPlanner(store, extractor, location)
	cleaner := schedule.NewCleaner(store)
	chatManager := chat.NewManager(llm)

	srv := server.New(server.Config{
		DB:          db,
		AuthService: auth.NewService(db),
		ChatService: chatManager,
		Planner:     planner,
		Cleaner:     cleaner,
		Port:        cfg.HTTPPort,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "HTTP server error: %v\n", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}
