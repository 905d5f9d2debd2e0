package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"latrt/internal/suite"
	"latrt/internal/ui"
)

type suiteOutcome struct {
	results []suite.Result
	err     error
}

// runSuiteWithUI runs the suite in the background while a progress view
// consumes its events.
func runSuiteWithUI(ctx context.Context, title string, cfg *suite.Config, cases []suite.Case, opts suite.Options) ([]suite.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan suite.Event, 256)
	outcomeCh := make(chan suiteOutcome, 1)

	go func() {
		runOpts := opts
		runOpts.Sink = suite.MultiSink{opts.Sink, suite.ChannelSink{Ch: events}}
		res, err := suite.Run(ctx, cfg, cases, runOpts)
		outcomeCh <- suiteOutcome{results: res, err: err}
		close(events)
	}()

	names := make([]string, len(cases))
	for i, tc := range cases {
		names[i] = tc.Name
	}
	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// drain so a quit from the keyboard cannot block the runner
	go func() {
		for range events {
		}
	}()
	var outcome suiteOutcome
	select {
	case outcome = <-outcomeCh:
	default:
		// the view was closed early; stop the remaining cases
		cancel()
		outcome = <-outcomeCh
	}
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
