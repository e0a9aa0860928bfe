package render

import (
	"context"
	"fmt"
	"io"

	"smart_fridge/internal/models"

	"github.com/charmbracelet/lipgloss"
)

// Console draws the two lines inside a rounded box.
type Console struct {
	w     io.Writer
	style lipgloss.Style
	title lipgloss.Style
}

func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w: w,
		style: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1),
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	}
}

func (c *Console) Render(_ context.Context, lines models.DisplayLines) error {
	box := c.style.Render(lines.Line1 + "\n" + lines.Line2)
	if _, err := fmt.Fprintf(c.w, "%s\n%s\n", c.title.Render("DISPLAY"), box); err != nil {
		return unavailable("console", err)
	}
	return nil
}
