package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/ai-cpi-outlook/internal/projection"
)

// Run starts the explorer full screen and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, engine *projection.Engine, tree Tree, opts ...Option) error {
	if engine == nil {
		return fmt.Errorf("engine is required")
	}
	if tree == nil {
		return fmt.Errorf("category tree is required")
	}

	p := tea.NewProgram(New(engine, tree, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("explorer failed: %w", err)
	}
	return nil
}
