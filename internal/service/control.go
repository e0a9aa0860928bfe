package service

import (
	"context"
	"fmt"
)

// PressButton injects a press into the sensor source; the loop sees it on its next poll.
func (m *MonitorLoop) PressButton(ctx context.Context) error {
	if err := m.Button.Press(ctx); err != nil {
		return fmt.Errorf("press button: %w", err)
	}
	m.Log.Infow("button press injected")
	return nil
}
