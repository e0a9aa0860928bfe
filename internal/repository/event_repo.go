package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"smart_fridge/internal/models"

	"github.com/google/uuid"
)

const (
	// sqliteTimestampLayout is SQLite's TIMESTAMP text format.
	sqliteTimestampLayout = "2006-01-02 15:04:05"

	insertEventSQL = `
		INSERT INTO fridge_events (id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?)
	`
	selectEventsSQL = `SELECT id, occurred_at, type, message, meta FROM fridge_events`
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

// normalizeEventType uppercases and trims an event type.
func normalizeEventType(typ string) string {
	return strings.ToUpper(strings.TrimSpace(typ))
}

// Append inserts a new event, filling in a missing ID and timestamp.
func (r *EventSQLite) Append(ctx context.Context, e models.FridgeEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	var meta sql.NullString
	if e.Metadata != nil {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal %s event metadata: %w", e.Type, err)
		}
		meta = sql.NullString{String: string(b), Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.OccurredAt.UTC().Format(sqliteTimestampLayout),
		normalizeEventType(e.Type),
		e.Description,
		meta,
	); err != nil {
		return fmt.Errorf("insert %s event: %w", e.Type, err)
	}
	return nil
}

// eventFilter builds the WHERE clause for List.
func eventFilter(from, to time.Time, typ string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimestampLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimestampLayout))
	}
	if typ = normalizeEventType(typ); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns events within [from, to] (zero bounds are open) and of the given
// type (empty matches all), oldest first.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.FridgeEvent, error) {
	where, args := eventFilter(from, to, typ)

	rows, err := r.db.QueryContext(ctx, selectEventsSQL+where+" ORDER BY occurred_at ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []models.FridgeEvent
	for rows.Next() {
		var (
			ev   models.FridgeEvent
			meta sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &meta); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		ev.Metadata = decodeMetadata(meta)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeMetadata parses a JSON metadata column; malformed JSON is kept as raw text.
func decodeMetadata(meta sql.NullString) any {
	if !meta.Valid || meta.String == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(meta.String), &v); err != nil {
		return meta.String
	}
	return v
}
