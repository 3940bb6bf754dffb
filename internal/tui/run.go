package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// RunFunc performs the work behind the view, reporting through send.
type RunFunc func(ctx context.Context, send func(tea.Msg))

// Run shows the progress view while work runs in the background. Quitting
// the view cancels ctx for the work, and Run waits for it to return.
func Run(ctx context.Context, cfg Config, work RunFunc) (Model, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewModel(cfg))

	done := make(chan struct{})
	go func() {
		defer close(done)
		work(ctx, program.Send)
	}()

	final, err := program.Run()
	cancel()
	<-done
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}
