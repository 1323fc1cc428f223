package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qmmzzdx/gperf-gcc-tracing/internal/convert"
	"github.com/qmmzzdx/gperf-gcc-tracing/internal/ui"
)

// runBatchWithUI drives the batch through a Bubble Tea progress view.
// The work function runs in the background and reports through the
// provided sink; the UI exits when the event channel closes.
func runBatchWithUI(title string, captures []string, work func(sink convert.ProgressSink) error) error {
	events := make(chan convert.Event, 256)
	outcome := make(chan error, 1)

	go func() {
		outcome <- work(convert.ChannelSink{Ch: events})
		close(events)
	}()

	model := ui.NewProgressModel(title, captures, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	err := <-outcome
	if uiErr != nil {
		return uiErr
	}
	return err
}
