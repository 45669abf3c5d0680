package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"modbind/internal/buildpipeline"
	"modbind/internal/driver"
	"modbind/internal/ui"
)

type generateOutcome struct {
	results []driver.PackageResult
	err     error
}

// generateWithUI runs req while a Bubble Tea program renders its progress.
func generateWithUI(ctx context.Context, title string, req driver.Request) ([]driver.PackageResult, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan generateOutcome, 1)

	go func() {
		req.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := driver.Generate(ctx, req)
		outcomeCh <- generateOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Dirs, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so the driver never blocks on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && ctx.Err() == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
