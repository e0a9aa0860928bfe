package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smart_fridge/internal/models"
)

// DisplayRecord is the persisted copy of the last rendered display.
type DisplayRecord struct {
	ID        int                  `json:"id"`
	Lines     models.DisplayLines  `json:"lines"`
	Sample    *models.SensorSample `json:"sample,omitempty"`
	LogLevel  string               `json:"log_level"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type DisplaySQLite struct {
	db *sql.DB
}

func NewDisplaySQLite(db *sql.DB) *DisplaySQLite {
	return &DisplaySQLite{db: db}
}

const (
	displayRowID = 1

	upsertDisplaySQL = `
		INSERT INTO fridge_display (id, line1, line2, sample, log_level, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			line1=excluded.line1,
			line2=excluded.line2,
			sample=excluded.sample,
			log_level=excluded.log_level,
			updated_at=excluded.updated_at
	`

	selectDisplaySQL = `
		SELECT id, line1, line2, sample, log_level, updated_at
		FROM fridge_display WHERE id=?
	`
)

// marshalSample converts an optional sample to a nullable JSON column.
func marshalSample(s *models.SensorSample) (sql.NullString, error) {
	if s == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// unmarshalSample parses the nullable sample column.
func unmarshalSample(ns sql.NullString) (*models.SensorSample, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var s models.SensorSample
	if err := json.Unmarshal([]byte(ns.String), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save updates or inserts the single fridge_display row (id always 1).
func (r *DisplaySQLite) Save(ctx context.Context, d DisplayRecord) error {
	sample, err := marshalSample(d.Sample)
	if err != nil {
		return fmt.Errorf("marshal display sample: %w", err)
	}

	ts := d.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	if _, err := r.db.ExecContext(ctx, upsertDisplaySQL,
		displayRowID,
		d.Lines.Line1,
		d.Lines.Line2,
		sample,
		d.LogLevel,
		ts,
	); err != nil {
		return fmt.Errorf("save display: %w", err)
	}
	return nil
}

// Load fetches the display row. A zero record means nothing was rendered yet.
func (r *DisplaySQLite) Load(ctx context.Context) (DisplayRecord, error) {
	row := r.db.QueryRowContext(ctx, selectDisplaySQL, displayRowID)

	var d DisplayRecord
	var sample sql.NullString
	if err := row.Scan(
		&d.ID,
		&d.Lines.Line1,
		&d.Lines.Line2,
		&sample,
		&d.LogLevel,
		&d.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DisplayRecord{}, nil
		}
		return DisplayRecord{}, fmt.Errorf("load display: %w", err)
	}

	s, err := unmarshalSample(sample)
	if err != nil {
		return DisplayRecord{}, fmt.Errorf("decode display sample: %w", err)
	}
	d.Sample = s
	d.UpdatedAt = d.UpdatedAt.UTC()

	return d, nil
}
