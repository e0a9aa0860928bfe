package render

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"smart_fridge/internal/models"
	"smart_fridge/internal/repository"

	"github.com/spf13/afero"
)

var frame = models.DisplayLines{
	Line1: models.PadLine("1 T:4.0C D:CLOSED E:120W", 40),
	Line2: models.PadLine("Status: OK", 40),
}

func TestMulti_RendersAllAndJoinsErrors(t *testing.T) {
	var calls []string
	boom := errors.New("boom")

	m := Multi{
		SinkFunc(func(context.Context, models.DisplayLines) error {
			calls = append(calls, "a")
			return unavailable("a", boom)
		}),
		nil,
		SinkFunc(func(context.Context, models.DisplayLines) error {
			calls = append(calls, "b")
			return nil
		}),
	}

	err := m.Render(context.Background(), frame)
	if len(calls) != 2 {
		t.Fatalf("calls = %v, want both sinks", calls)
	}
	if !errors.Is(err, ErrTargetUnavailable) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped ErrTargetUnavailable and cause", err)
	}
}

func TestMulti_NoErrors(t *testing.T) {
	if err := (Multi{}).Render(context.Background(), frame); err != nil {
		t.Fatalf("empty Multi err = %v", err)
	}
}

func TestConsole_DrawsBox(t *testing.T) {
	var buf bytes.Buffer
	if err := NewConsole(&buf).Render(context.Background(), frame); err != nil {
		t.Fatalf("Render() err = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"DISPLAY", "╭", "╰", "1 T:4.0C D:CLOSED E:120W", "Status: OK"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestConsole_WriteError(t *testing.T) {
	err := NewConsole(failingWriter{}).Render(context.Background(), frame)
	if !errors.Is(err, ErrTargetUnavailable) {
		t.Fatalf("err = %v, want ErrTargetUnavailable", err)
	}
}

func TestFile_WritesFrame(t *testing.T) {
	fs := afero.NewMemMapFs()
	at := time.Date(2025, 7, 1, 8, 30, 0, 0, time.UTC)
	sink := NewFile(fs, "/ws/display.txt", 40).WithClock(func() time.Time { return at })

	if err := sink.Render(context.Background(), frame); err != nil {
		t.Fatalf("Render() err = %v", err)
	}

	b, err := afero.ReadFile(fs, "/ws/display.txt")
	if err != nil {
		t.Fatalf("read display file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	want := []string{
		"Smart Fridge Display (2x40)",
		strings.Repeat("=", 40),
		"Line 1: " + frame.Line1,
		"Line 2: " + frame.Line2,
		strings.Repeat("=", 40),
		"Last update: 2025-07-01T08:30:00Z",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), b)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestFile_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := NewFile(fs, "/ws/display.txt", 40).Render(context.Background(), frame)
	if !errors.Is(err, ErrTargetUnavailable) {
		t.Fatalf("err = %v, want ErrTargetUnavailable", err)
	}
}

type stubDisplayRepo struct {
	saved   []repository.DisplayRecord
	saveErr error
}

func (s *stubDisplayRepo) Save(_ context.Context, d repository.DisplayRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, d)
	return nil
}

func (s *stubDisplayRepo) Load(context.Context) (repository.DisplayRecord, error) {
	if len(s.saved) == 0 {
		return repository.DisplayRecord{}, nil
	}
	return s.saved[len(s.saved)-1], nil
}

func TestStore_SavesFrameWithState(t *testing.T) {
	repo := &stubDisplayRepo{}
	sample := &models.SensorSample{TemperatureC: 4, EnergyWatts: 120, Valid: true}
	sink := NewStore(repo, func() (*models.SensorSample, string) { return sample, "INFO" })

	if err := sink.Render(context.Background(), frame); err != nil {
		t.Fatalf("Render() err = %v", err)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saved %d records, want 1", len(repo.saved))
	}
	got := repo.saved[0]
	if got.Lines != frame || got.Sample != sample || got.LogLevel != "INFO" || got.UpdatedAt.IsZero() {
		t.Fatalf("saved = %+v", got)
	}
}

func TestStore_SaveError(t *testing.T) {
	repo := &stubDisplayRepo{saveErr: errors.New("locked")}
	err := NewStore(repo, nil).Render(context.Background(), frame)
	if !errors.Is(err, ErrTargetUnavailable) {
		t.Fatalf("err = %v, want ErrTargetUnavailable", err)
	}
}
