package scheduler

import (
	"context"
	"time"

	"remindd/internal/event"
)

// Confirm resolves an outstanding reminder for the given event. Explicit
// user acknowledgment and the auto-mark watchdog both land here, so the two
// paths always produce identical state. An event that is no longer pending
// is left untouched; that re-check is what cancels a watchdog timeout the
// instant another path has already confirmed.
func (e *Engine) Confirm(ctx context.Context, id uint64) error {
	now := e.now()
	for {
		ev, err := e.Store.Get(ctx, id)
		if err == event.ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		if !ev.PendingAutoMark {
			return nil
		}

		err = e.Store.Update(ctx, ev.ID, ev.Version, e.advance(ev, now))
		if err == nil || err == event.ErrNotFound {
			return nil
		}
		if err != event.ErrConflict {
			return err
		}
		// lost the race; loop to re-read and re-decide
	}
}

// advance computes the post-confirmation transition: another escalated
// reminder while the budget lasts, then either terminal stop or a recurrence
// advance into the next occurrence.
func (e *Engine) advance(ev event.Event, now time.Time) map[string]any {
	changes := map[string]any{
		"pending_auto_mark":       false,
		"pending_auto_mark_since": nil,
	}

	if ev.RepeatCount < e.budget(ev) {
		changes["next_notify"] = now.Add(e.IntraReminderDelay)
		return changes
	}

	rec, ok := event.ParseRecurrence(string(ev.Recurrence))
	if !ok {
		e.Log.Warn().
			Uint64("event_id", ev.ID).
			Str("recurrence", string(ev.Recurrence)).
			Msg("unknown recurrence value, treating as none")
	}

	if rec == event.RecurrenceNone {
		changes["is_stopped"] = true
		changes["next_notify"] = nil
		return changes
	}

	next, _ := event.NextOccurrence(rec, ev.StartTime)
	remindAt := next.Add(-time.Duration(ev.RemindBeforeMinutes) * time.Minute)
	if remindAt.Before(now) {
		// catch-up after a long pause: overdue means due now, never in the past
		remindAt = now
	}
	changes["start_time"] = next
	changes["next_notify"] = remindAt
	changes["repeat_count"] = 0
	changes["notified"] = false
	return changes
}

func (e *Engine) budget(ev event.Event) int {
	imp, ok := event.ParseImportance(string(ev.Importance))
	if !ok {
		e.Log.Warn().
			Uint64("event_id", ev.ID).
			Str("importance", string(ev.Importance)).
			Msg("unknown importance value, treating as normal")
	}
	return event.ReminderBudget(imp)
}
