package tui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const refreshDebounce = 250 * time.Millisecond

// Run starts the dashboard and blocks until the user quits or ctx is done.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))

	if deps.DBPath != "" {
		changes, err := WatchFile(ctx, deps.DBPath, refreshDebounce)
		if err != nil {
			slog.Warn("live refresh disabled", "path", deps.DBPath, "error", err)
		} else {
			go func() {
				for range changes {
					p.Send(storeChangedMsg{})
				}
			}()
		}
	}

	_, err := p.Run()
	return err
}
