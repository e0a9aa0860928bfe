package models

import (
	"strings"
	"unicode/utf8"
)

// DisplayLines is the content of the two-line text display.
// Both lines always have the configured column width.
type DisplayLines struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

// BlankLines returns an empty display of the given width.
func BlankLines(cols int) DisplayLines {
	blank := strings.Repeat(" ", cols)
	return DisplayLines{Line1: blank, Line2: blank}
}

// PadLine left-justifies text in a line of cols runes, truncating if needed.
func PadLine(text string, cols int) string {
	text = clean(text)
	n := utf8.RuneCountInString(text)
	if n >= cols {
		return string([]rune(text)[:cols])
	}
	return text + strings.Repeat(" ", cols-n)
}

// CenterLine centers text in a line of cols runes, truncating if needed.
func CenterLine(text string, cols int) string {
	text = clean(text)
	n := utf8.RuneCountInString(text)
	if n >= cols {
		return string([]rune(text)[:cols])
	}
	left := (cols - n) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", cols-n-left)
}

// clean drops NUL bytes and line breaks, which a display line cannot hold.
func clean(text string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 0, '\n', '\r':
			return -1
		}
		return r
	}, text)
}
