package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"remindd/internal/event"
	"remindd/internal/scheduler"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
)

// EventStore is the slice of the store the HTTP layer needs. The engine owns
// every mutation beyond create/delete.
type EventStore interface {
	Create(ctx context.Context, ev *event.Event) error
	List(ctx context.Context) ([]event.Event, error)
	Get(ctx context.Context, id uint64) (event.Event, error)
	Delete(ctx context.Context, id uint64) error
}

type EventHandler struct {
	Store  EventStore
	Engine *scheduler.Engine
	Now    func() time.Time
}

func (h *EventHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

type createEventReq struct {
	Name                string   `json:"name"`
	Location            string   `json:"location"`
	StartTime           string   `json:"start_time"` // RFC3339
	RemindBeforeMinutes int      `json:"remind_before_minutes"`
	Importance          string   `json:"importance"`
	Recurrence          string   `json:"recurrence"`
	Channels            []string `json:"channels"`
}

type eventDTO struct {
	ID                  uint64     `json:"id"`
	Name                string     `json:"name"`
	Location            string     `json:"location,omitempty"`
	StartTime           time.Time  `json:"start_time"`
	RemindBeforeMinutes int        `json:"remind_before_minutes"`
	Importance          string     `json:"importance"`
	Recurrence          string     `json:"recurrence"`
	Channels            []string   `json:"channels"`
	RepeatCount         int        `json:"repeat_count"`
	NextNotify          *time.Time `json:"next_notify,omitempty"`
	Notified            bool       `json:"notified"`
	State               string     `json:"state"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	if req.RemindBeforeMinutes < 0 {
		http.Error(w, "remind_before_minutes must be >= 0", http.StatusBadRequest)
		return
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		http.Error(w, "invalid start_time (RFC3339)", http.StatusBadRequest)
		return
	}

	imp, ok := event.ParseImportance(req.Importance)
	if !ok {
		http.Error(w, "invalid importance", http.StatusBadRequest)
		return
	}
	rec, ok := event.ParseRecurrence(req.Recurrence)
	if !ok {
		http.Error(w, "invalid recurrence", http.StatusBadRequest)
		return
	}

	channels := make([]string, 0, len(req.Channels))
	for _, c := range req.Channels {
		if c = strings.TrimSpace(strings.ToLower(c)); c != "" {
			channels = append(channels, c)
		}
	}
	if len(channels) == 0 {
		channels = []string{"popup"}
	}

	ev := event.Event{
		Name:                req.Name,
		Location:            strings.TrimSpace(req.Location),
		StartTime:           start,
		RemindBeforeMinutes: req.RemindBeforeMinutes,
		Importance:          imp,
		Recurrence:          rec,
		Channels:            pq.StringArray(channels),
	}
	at := ev.ReminderAt(h.now())
	ev.NextNotify = &at

	if err := h.Store.Create(r.Context(), &ev); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": ev.ID})
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	evs, err := h.Store.List(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	now := h.now()
	out := make([]eventDTO, 0, len(evs))
	for i := range evs {
		out = append(out, toDTO(&evs[i], now))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	ev, err := h.Store.Get(r.Context(), id)
	if errors.Is(err, event.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	dto := toDTO(&ev, h.now())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(dto)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Acknowledge confirms an outstanding reminder, cancelling the pending
// auto-mark timeout for the event. Acknowledging an event with nothing
// pending is a no-op, not an error.
func (h *EventHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.Engine.Confirm)
}

func (h *EventHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.Engine.Stop)
}

func (h *EventHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.Engine.Activate)
}

func (h *EventHandler) action(w http.ResponseWriter, r *http.Request, fn func(context.Context, uint64) error) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if _, err := h.Store.Get(r.Context(), id); errors.Is(err, event.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if err := fn(r.Context(), id); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func toDTO(ev *event.Event, now time.Time) eventDTO {
	return eventDTO{
		ID:                  ev.ID,
		Name:                ev.Name,
		Location:            ev.Location,
		StartTime:           ev.StartTime,
		RemindBeforeMinutes: ev.RemindBeforeMinutes,
		Importance:          string(ev.Importance),
		Recurrence:          string(ev.Recurrence),
		Channels:            []string(ev.Channels),
		RepeatCount:         ev.RepeatCount,
		NextNotify:          ev.NextNotify,
		Notified:            ev.Notified,
		State:               string(ev.State(now)),
		UpdatedAt:           ev.UpdatedAt,
	}
}
