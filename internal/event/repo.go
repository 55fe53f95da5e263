package event

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")
var ErrConflict = errors.New("version conflict")

type Repo struct {
	DB *gorm.DB
}

func (r *Repo) Create(ctx context.Context, ev *Event) error {
	return r.DB.WithContext(ctx).Create(ev).Error
}

func (r *Repo) List(ctx context.Context) ([]Event, error) {
	var evs []Event
	err := r.DB.WithContext(ctx).Order("start_time asc, id asc").Find(&evs).Error
	return evs, err
}

func (r *Repo) Get(ctx context.Context, id uint64) (Event, error) {
	var ev Event
	err := r.DB.WithContext(ctx).First(&ev, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Event{}, ErrNotFound
	}
	return ev, err
}

// ListDue returns events the scheduler should fire now: not stopped, not
// already awaiting confirmation, reminder time reached. Earliest deadline
// first, ties broken by id so processing order is deterministic.
func (r *Repo) ListDue(ctx context.Context, now time.Time) ([]Event, error) {
	var evs []Event
	err := r.DB.WithContext(ctx).
		Where("is_stopped = false AND pending_auto_mark = false AND next_notify IS NOT NULL AND next_notify <= ?", now).
		Order("next_notify asc, id asc").
		Find(&evs).Error
	return evs, err
}

// ListExpired returns events awaiting confirmation whose grace window has
// run out (pending since cutoff or earlier).
func (r *Repo) ListExpired(ctx context.Context, cutoff time.Time) ([]Event, error) {
	var evs []Event
	err := r.DB.WithContext(ctx).
		Where("pending_auto_mark = true AND pending_auto_mark_since IS NOT NULL AND pending_auto_mark_since <= ?", cutoff).
		Order("pending_auto_mark_since asc, id asc").
		Find(&evs).Error
	return evs, err
}

// Update applies changes as a single compare-and-set on (id, version).
// A version miss returns ErrConflict; callers re-read and re-decide rather
// than retrying the stale mutation. All-or-nothing per call.
func (r *Repo) Update(ctx context.Context, id, version uint64, changes map[string]any) error {
	patch := make(map[string]any, len(changes)+2)
	for k, v := range changes {
		patch[k] = v
	}
	patch["version"] = version + 1
	patch["updated_at"] = time.Now()

	res := r.DB.WithContext(ctx).Model(&Event{}).
		Where("id = ? AND version = ?", id, version).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Zero rows: either the record is gone or another writer won the race.
	var n int64
	if err := r.DB.WithContext(ctx).Model(&Event{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (r *Repo) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Delete(&Event{}, id).Error
}
