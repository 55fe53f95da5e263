package scheduler

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"remindd/internal/event"
)

// Test fakes: an in-memory store with the same compare-and-set semantics as
// the GORM repo, a recording sink, and a manual clock.

type fakeStore struct {
	mu     sync.Mutex
	events map[uint64]*event.Event
	nextID uint64

	// failConflicts makes the next N updates lose the version race.
	failConflicts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: map[uint64]*event.Event{}}
}

func (s *fakeStore) put(ev event.Event) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	ev.ID = s.nextID
	s.events[ev.ID] = &ev
	return ev.ID
}

func (s *fakeStore) ListDue(ctx context.Context, now time.Time) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.Event
	for _, ev := range s.events {
		if ev.IsStopped || ev.PendingAutoMark || ev.NextNotify == nil || ev.NextNotify.After(now) {
			continue
		}
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextNotify.Equal(*out[j].NextNotify) {
			return out[i].NextNotify.Before(*out[j].NextNotify)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *fakeStore) ListExpired(ctx context.Context, cutoff time.Time) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.Event
	for _, ev := range s.events {
		if !ev.PendingAutoMark || ev.PendingAutoMarkSince == nil || ev.PendingAutoMarkSince.After(cutoff) {
			continue
		}
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) Get(ctx context.Context, id uint64) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	return *ev, nil
}

func (s *fakeStore) Update(ctx context.Context, id, version uint64, changes map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return event.ErrNotFound
	}
	if s.failConflicts > 0 {
		s.failConflicts--
		return event.ErrConflict
	}
	if ev.Version != version {
		return event.ErrConflict
	}
	applyChanges(ev, changes)
	ev.Version++
	ev.UpdatedAt = time.Now()
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
	return nil
}

func (s *fakeStore) get(id uint64) event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.events[id]
}

func applyChanges(ev *event.Event, changes map[string]any) {
	for k, v := range changes {
		switch k {
		case "notified":
			ev.Notified = v.(bool)
		case "repeat_count":
			ev.RepeatCount = v.(int)
		case "pending_auto_mark":
			ev.PendingAutoMark = v.(bool)
		case "pending_auto_mark_since":
			ev.PendingAutoMarkSince = toTimePtr(v)
		case "next_notify":
			ev.NextNotify = toTimePtr(v)
		case "is_stopped":
			ev.IsStopped = v.(bool)
		case "start_time":
			ev.StartTime = v.(time.Time)
		}
	}
}

func toTimePtr(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	}
	return nil
}

type fakeSink struct {
	mu   sync.Mutex
	sent []Notification
	fail bool
}

func (s *fakeSink) Notify(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	if s.fail {
		return errors.New("delivery transport down")
	}
	return nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestEngine(store *fakeStore, sink *fakeSink, clk *fakeClock) *Engine {
	logger := zerolog.New(io.Discard)
	return &Engine{
		Store:              store,
		Sink:               sink,
		Log:                &logger,
		GracePeriod:        5 * time.Minute,
		IntraReminderDelay: time.Minute,
		Now:                clk.Now,
	}
}

func timePtr(t time.Time) *time.Time { return &t }
