package repository_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"smart_fridge/internal/models"
	"smart_fridge/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

type argMatcher func(v driver.Value) bool

func (f argMatcher) Match(v driver.Value) bool { return f(v) }

func TestDisplaySQLite_Save_ZeroTimeBecomesRecentUTC(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	repo := repository.NewDisplaySQLite(db)

	recentUTC := argMatcher(func(v driver.Value) bool {
		tm, ok := v.(time.Time)
		if !ok || tm.Location() != time.UTC {
			return false
		}
		now := time.Now().UTC()
		return tm.After(now.Add(-5*time.Second)) && tm.Before(now.Add(5*time.Second))
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fridge_display")).
		WithArgs(1, "0 T:4.0C D:CLOSED E:120W", "Status: OK", nil, "DEBUG", recentUTC).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Save(context.Background(), repository.DisplayRecord{
		Lines:    models.DisplayLines{Line1: "0 T:4.0C D:CLOSED E:120W", Line2: "Status: OK"},
		LogLevel: "DEBUG",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDisplaySQLite_Save_MarshalsSample(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	repo := repository.NewDisplaySQLite(db)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))

	hasSample := argMatcher(func(v driver.Value) bool {
		s, ok := v.(string)
		return ok && regexp.MustCompile(`"temperature_c":9`).MatchString(s)
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fridge_display")).
		WithArgs(1, "l1", "l2", hasSample, "INFO", ts.UTC()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Save(context.Background(), repository.DisplayRecord{
		Lines:     models.DisplayLines{Line1: "l1", Line2: "l2"},
		Sample:    &models.SensorSample{TemperatureC: 9, Valid: true},
		LogLevel:  "INFO",
		UpdatedAt: ts,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDisplaySQLite_Save_ExecErrorIsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	down := errors.New("db down")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fridge_display")).
		WillReturnError(down)

	err = repository.NewDisplaySQLite(db).Save(context.Background(), repository.DisplayRecord{})
	if !errors.Is(err, down) {
		t.Fatalf("Save() error = %v, want wrapped %v", err, down)
	}
}

func TestDisplaySQLite_Load(t *testing.T) {
	selectRe := regexp.QuoteMeta("SELECT id, line1, line2, sample, log_level, updated_at")
	cols := []string{"id", "line1", "line2", "sample", "log_level", "updated_at"}
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("no rows yields zero record", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New(): %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(selectRe).WithArgs(1).WillReturnRows(sqlmock.NewRows(cols))

		got, err := repository.NewDisplaySQLite(db).Load(context.Background())
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.ID != 0 || got.Lines != (models.DisplayLines{}) || got.Sample != nil {
			t.Fatalf("Load() = %+v, want zero record", got)
		}
	})

	t.Run("decodes sample", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New(): %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(selectRe).WithArgs(1).WillReturnRows(
			sqlmock.NewRows(cols).AddRow(1, "a", "b", `{"temperature_c":5.5,"valid":true}`, "WARNING", ts),
		)

		got, err := repository.NewDisplaySQLite(db).Load(context.Background())
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Lines.Line1 != "a" || got.Lines.Line2 != "b" || got.LogLevel != "WARNING" {
			t.Fatalf("Load() = %+v", got)
		}
		if got.Sample == nil || got.Sample.TemperatureC != 5.5 || !got.Sample.Valid {
			t.Fatalf("Load() sample = %+v", got.Sample)
		}
		if !got.UpdatedAt.Equal(ts) {
			t.Fatalf("UpdatedAt = %v, want %v", got.UpdatedAt, ts)
		}
	})

	t.Run("bad sample json", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New(): %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(selectRe).WithArgs(1).WillReturnRows(
			sqlmock.NewRows(cols).AddRow(1, "a", "b", `{not json`, "INFO", ts),
		)

		if _, err := repository.NewDisplaySQLite(db).Load(context.Background()); err == nil {
			t.Fatal("Load() expected error for malformed sample")
		}
	})
}
