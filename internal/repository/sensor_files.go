package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"smart_fridge/internal/config"
	"smart_fridge/internal/models"

	"github.com/spf13/afero"
)

// FileSource emulates the sensors with one small text file per value:
//
//	temperature  "4.00\n"
//	door         "<0|1> <unix seconds>\n"
//	energy       "120.00\n"
//	button       "<0|1>\n"
type FileSource struct {
	fs    afero.Fs
	dir   string
	paths map[SourceID]string
}

var _ SensorSource = (*FileSource)(nil)

const sensorFileMode = 0o644

func NewFileSource(fs afero.Fs, ws config.Workspace) *FileSource {
	return &FileSource{
		fs:  fs,
		dir: ws.Dir,
		paths: map[SourceID]string{
			TemperatureSource: ws.TemperatureFile,
			DoorSource:        ws.DoorFile,
			EnergySource:      ws.EnergyFile,
			ButtonSource:      ws.ButtonFile,
		},
	}
}

// Path returns the file backing a source.
func (s *FileSource) Path(id SourceID) string {
	return s.paths[id]
}

// EnsureDefaults creates the workspace and any missing sensor file with nominal values.
// It returns the sources it had to create.
func (s *FileSource) EnsureDefaults(ctx context.Context, targets config.Targets) ([]SourceID, error) {
	if s.dir != "" {
		if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
			return nil, fmt.Errorf("create workspace %q: %w", s.dir, err)
		}
	}

	defaults := []struct {
		id    SourceID
		write func() error
	}{
		{TemperatureSource, func() error { return s.WriteTemperature(ctx, targets.TemperatureC) }},
		{DoorSource, func() error { return s.WriteDoor(ctx, models.DoorReading{}) }},
		{EnergySource, func() error { return s.WriteEnergy(ctx, targets.EnergyWatts) }},
		{ButtonSource, func() error { return s.WriteButton(ctx, false) }},
	}

	var created []SourceID
	for _, d := range defaults {
		ok, err := afero.Exists(s.fs, s.paths[d.id])
		if err != nil {
			return created, fmt.Errorf("stat %s file: %w", d.id, err)
		}
		if ok {
			continue
		}
		if err := d.write(); err != nil {
			return created, err
		}
		created = append(created, d.id)
	}
	return created, nil
}

func (s *FileSource) ReadTemperature(_ context.Context) (float64, error) {
	return s.readFloat(TemperatureSource)
}

func (s *FileSource) ReadEnergy(_ context.Context) (float64, error) {
	return s.readFloat(EnergySource)
}

func (s *FileSource) ReadDoor(_ context.Context) (models.DoorReading, error) {
	fields, err := s.readFields(DoorSource)
	if err != nil {
		return models.DoorReading{}, err
	}
	if len(fields) < 2 {
		return models.DoorReading{}, fmt.Errorf("parse door file: want \"<state> <since>\", got %d field(s)", len(fields))
	}
	state, err := strconv.Atoi(fields[0])
	if err != nil {
		return models.DoorReading{}, fmt.Errorf("parse door state %q: %w", fields[0], err)
	}
	since, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return models.DoorReading{}, fmt.Errorf("parse door timestamp %q: %w", fields[1], err)
	}

	door := models.DoorReading{State: state}
	if since > 0 {
		door.Since = time.Unix(since, 0).UTC()
	}
	return door, nil
}

func (s *FileSource) ReadButton(_ context.Context) (bool, error) {
	fields, err := s.readFields(ButtonSource)
	if err != nil {
		return false, err
	}
	if len(fields) == 0 {
		return false, errors.New("parse button file: empty")
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return false, fmt.Errorf("parse button state %q: %w", fields[0], err)
	}
	return v == 1, nil
}

func (s *FileSource) WriteTemperature(_ context.Context, celsius float64) error {
	return s.write(TemperatureSource, fmt.Sprintf("%.2f\n", celsius))
}

func (s *FileSource) WriteEnergy(_ context.Context, watts float64) error {
	return s.write(EnergySource, fmt.Sprintf("%.2f\n", watts))
}

func (s *FileSource) WriteDoor(_ context.Context, door models.DoorReading) error {
	var since int64
	if !door.Since.IsZero() {
		since = door.Since.Unix()
	}
	return s.write(DoorSource, fmt.Sprintf("%d %d\n", door.State, since))
}

func (s *FileSource) WriteButton(_ context.Context, pressed bool) error {
	v := 0
	if pressed {
		v = 1
	}
	return s.write(ButtonSource, fmt.Sprintf("%d\n", v))
}

func (s *FileSource) Marker(_ context.Context, id SourceID) (models.ChangeMarker, error) {
	info, err := s.fs.Stat(s.paths[id])
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.ChangeMarker{}, nil
		}
		return models.ChangeMarker{}, fmt.Errorf("stat %s file: %w", id, err)
	}
	return models.ChangeMarker{
		ModTime: info.ModTime(),
		Size:    info.Size(),
		Exists:  true,
	}, nil
}

// Ping checks that the workspace directory exists.
func (s *FileSource) Ping(_ context.Context) error {
	dir := s.dir
	if dir == "" {
		dir = filepath.Dir(s.paths[TemperatureSource])
	}
	ok, err := afero.DirExists(s.fs, dir)
	if err != nil {
		return fmt.Errorf("stat workspace %q: %w", dir, err)
	}
	if !ok {
		return fmt.Errorf("workspace %q is not accessible", dir)
	}
	return nil
}

func (s *FileSource) readFloat(id SourceID) (float64, error) {
	fields, err := s.readFields(id)
	if err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, fmt.Errorf("parse %s file: empty", id)
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s value %q: %w", id, fields[0], err)
	}
	return v, nil
}

func (s *FileSource) readFields(id SourceID) ([]string, error) {
	b, err := afero.ReadFile(s.fs, s.paths[id])
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", id, err)
	}
	return strings.Fields(string(b)), nil
}

func (s *FileSource) write(id SourceID, content string) error {
	if err := afero.WriteFile(s.fs, s.paths[id], []byte(content), sensorFileMode); err != nil {
		return fmt.Errorf("write %s file: %w", id, err)
	}
	return nil
}
