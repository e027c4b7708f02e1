package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/calvinschedulo/schedulo/internal/event"
)

// fakeStore is an in-memory Store used across the package tests.
type fakeStore struct {
	mu     sync.Mutex
	events map[string]event.Record
	nextID int

	listErr   error
	insertErr error
	deleteErr error

	// failDeleteAfter makes Delete fail once this many deletes succeeded.
	// Negative disables it.
	failDeleteAfter int
	deleteCalls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:          make(map[string]event.Record),
		failDeleteAfter: -1,
	}
}

func (f *fakeStore) add(r event.Record) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("evt-%d", f.nextID)
	r.ID = id
	f.events[id] = r
	return id
}

func (f *fakeStore) List(_ context.Context, timeMin, timeMax time.Time) ([]event.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []event.Record
	for _, e := range f.events {
		if e.Start.Time.Before(timeMin) || !e.Start.Time.Before(timeMax) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Time.Before(out[j].Start.Time) })
	return out, nil
}

func (f *fakeStore) Insert(_ context.Context, r event.Record) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	return f.add(r), nil
}

func (f *fakeStore) Delete(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if f.failDeleteAfter >= 0 && f.deleteCalls >= f.failDeleteAfter {
		return fmt.Errorf("simulated store failure")
	}
	if _, ok := f.events[eventID]; !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	delete(f.events, eventID)
	f.deleteCalls++
	return nil
}
