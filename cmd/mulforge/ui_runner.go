package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"mulforge/internal/pipeline"
	"mulforge/internal/ui"
)

type runOutcome struct {
	results []pipeline.Result
	err     error
}

// runJobsWithUI runs the pipeline in the background and renders its progress
// until every job has finished.
func runJobsWithUI(ctx context.Context, title string, jobs []pipeline.Job, opts pipeline.Options) ([]pipeline.Result, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Run(ctx, jobs, optsCopy)
		outcomeCh <- runOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, pipeline.Names(jobs), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

// runJobs picks the progress view or a plain run.
func runJobs(ctx context.Context, tui bool, title string, jobs []pipeline.Job, opts pipeline.Options) ([]pipeline.Result, error) {
	if tui {
		return runJobsWithUI(ctx, title, jobs, opts)
	}
	return pipeline.Run(ctx, jobs, opts)
}
