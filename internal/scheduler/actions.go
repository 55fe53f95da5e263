package scheduler

import (
	"context"

	"remindd/internal/event"
)

// Stop forces an event out of scheduling regardless of its current state.
// Clearing pending_auto_mark also cancels any outstanding watchdog timeout.
func (e *Engine) Stop(ctx context.Context, id uint64) error {
	return e.mutate(ctx, id, func(ev event.Event) map[string]any {
		return map[string]any{
			"is_stopped":              true,
			"next_notify":             nil,
			"pending_auto_mark":       false,
			"pending_auto_mark_since": nil,
		}
	})
}

// Activate puts an event back into rotation with a fresh reminder cycle,
// scheduling from the stored start time. A start already in the past is due
// on the next tick.
func (e *Engine) Activate(ctx context.Context, id uint64) error {
	now := e.now()
	return e.mutate(ctx, id, func(ev event.Event) map[string]any {
		return map[string]any{
			"is_stopped":              false,
			"pending_auto_mark":       false,
			"pending_auto_mark_since": nil,
			"repeat_count":            0,
			"notified":                false,
			"next_notify":             ev.ReminderAt(now),
		}
	})
}

// mutate runs one read-decide-write round, retrying on version conflicts
// with a fresh read. A vanished record is a benign no-op.
func (e *Engine) mutate(ctx context.Context, id uint64, decide func(event.Event) map[string]any) error {
	for {
		ev, err := e.Store.Get(ctx, id)
		if err == event.ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		err = e.Store.Update(ctx, ev.ID, ev.Version, decide(ev))
		if err == nil || err == event.ErrNotFound {
			return nil
		}
		if err != event.ErrConflict {
			return err
		}
	}
}
