package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rl1809/car-inventory/internal/core/domain"
	"github.com/rl1809/car-inventory/internal/port"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

const mysqlJournalSchema = `
CREATE TABLE IF NOT EXISTS item_events (
	id          VARCHAR(36) NOT NULL PRIMARY KEY,
	item_id     BIGINT      NOT NULL,
	kind        VARCHAR(16) NOT NULL,
	payload     TEXT        NOT NULL,
	occurred_at DATETIME(6) NOT NULL,
	INDEX idx_item_events_item_id (item_id)
)`

const sqliteJournalSchema = `
CREATE TABLE IF NOT EXISTS item_events (
	id          TEXT     NOT NULL PRIMARY KEY,
	item_id     INTEGER  NOT NULL,
	kind        TEXT     NOT NULL,
	payload     TEXT     NOT NULL,
	occurred_at DATETIME NOT NULL
)`

var _ port.EventJournal = (*JournalAdapter)(nil)

// JournalAdapter appends item change events to an SQL table. It is an audit
// trail only; the inventory is never rebuilt from it.
type JournalAdapter struct {
	db     *sql.DB
	driver string
}

func NewJournalAdapter(db *sql.DB, driver string) *JournalAdapter {
	return &JournalAdapter{db: db, driver: driver}
}

func (j *JournalAdapter) EnsureSchema(ctx context.Context) error {
	var ddl string
	switch j.driver {
	case DriverMySQL:
		ddl = mysqlJournalSchema
	case DriverSQLite:
		ddl = sqliteJournalSchema
	default:
		return fmt.Errorf("unsupported journal driver %q", j.driver)
	}

	if _, err := j.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create item_events: %w", err)
	}
	return nil
}

func (j *JournalAdapter) RecordEvent(ctx context.Context, event domain.ItemEvent) error {
	payload, err := json.Marshal(event.Item)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO item_events (id, item_id, kind, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?)`,
		event.ID, event.ItemID, string(event.Kind), string(payload), event.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}
