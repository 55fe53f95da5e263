package db

import (
	"fmt"

	"remindd/internal/event"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&event.Event{}); err != nil {
		return err
	}

	// Partial indexes matching the two hot scans: the due scan and the
	// watchdog's expired-pending scan.
	stmts := []string{
		`create index if not exists idx_events_due
		 on events(next_notify)
		 where is_stopped = false and pending_auto_mark = false and next_notify is not null;`,
		`create index if not exists idx_events_pending
		 on events(pending_auto_mark_since)
		 where pending_auto_mark = true;`,
		`create index if not exists idx_events_start on events(start_time);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
