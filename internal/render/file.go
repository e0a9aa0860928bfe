package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"smart_fridge/internal/models"

	"github.com/spf13/afero"
)

// File mirrors the display into a text file, rewritten on every render.
type File struct {
	fs   afero.Fs
	path string
	cols int
	now  func() time.Time
}

func NewFile(fs afero.Fs, path string, cols int) *File {
	return &File{fs: fs, path: path, cols: cols, now: time.Now}
}

// WithClock replaces the timestamp source.
func (f *File) WithClock(now func() time.Time) *File {
	f.now = now
	return f
}

func (f *File) Render(_ context.Context, lines models.DisplayLines) error {
	rule := strings.Repeat("=", f.cols)

	var b strings.Builder
	fmt.Fprintf(&b, "Smart Fridge Display (2x%d)\n", f.cols)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Line 1: %s\n", lines.Line1)
	fmt.Fprintf(&b, "Line 2: %s\n", lines.Line2)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Last update: %s\n", f.now().Format(time.RFC3339))

	if dir := filepath.Dir(f.path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return unavailable("display file", err)
		}
	}
	if err := afero.WriteFile(f.fs, f.path, []byte(b.String()), 0o644); err != nil {
		return unavailable("display file", err)
	}
	return nil
}
