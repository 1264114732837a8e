package orchestrator

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/probe"
)

// maxTransientRetries bounds retries of a step that failed for a
// transient reason (empty stdout on nonzero exit, or timeout).
const maxTransientRetries = 2

// ProbeRunner is the subset of probe.Runtime that Execute depends on;
// *probe.Runtime satisfies it directly, and tests substitute a fake.
type ProbeRunner interface {
	Run(ctx context.Context, req probe.Request) (probe.Result, error)
}

// Execute dispatches every planned step through runner in parallel,
// bounded per-step by a small transient-failure retry, and returns one
// Evidence record per step in plan order. A step that ultimately fails
// (including unknown-probe or rejected-argument errors) is recorded as
// Evidence{Missing: true} rather than aborting the stage: spec requires
// Execute to end Ok and let Interpret handle missing evidence.
func Execute(ctx context.Context, runner ProbeRunner, steps []PlannedCommand, now func() time.Time) []Evidence {
	evidence := make([]Evidence, len(steps))

	g, gctx := errgroup.WithContext(ctx)
	for i, step := range steps {
		i, step := i, step
		g.Go(func() error {
			evidence[i] = executeStep(gctx, runner, step, now)
			return nil
		})
	}
	_ = g.Wait() // per-step errors are captured as evidence, never propagated

	return evidence
}

func executeStep(ctx context.Context, runner ProbeRunner, step PlannedCommand, now func() time.Time) Evidence {
	req := probe.Request{ProbeID: step.ProbeID, Params: step.Params, Flags: step.Flags}

	var res probe.Result
	var err error
	for attempt := 0; attempt <= maxTransientRetries; attempt++ {
		res, err = runner.Run(ctx, req)
		if err == nil && !(res.ExitCode != 0 && res.Stdout == "") {
			break
		}
		if !isTransient(res, err) {
			break
		}
	}

	if err != nil {
		return Evidence{ProbeID: step.ProbeID, Purpose: step.Purpose, Missing: true, ObservedAt: now()}
	}
	return Evidence{
		ProbeID:    step.ProbeID,
		Purpose:    step.Purpose,
		Stdout:     res.Stdout,
		ExitCode:   res.ExitCode,
		Missing:    res.ExitCode != 0,
		ElapsedMS:  res.ElapsedMS,
		ObservedAt: now(),
	}
}

func isTransient(res probe.Result, err error) bool {
	if res.TimedOut || errors.Is(err, probe.ErrTimeout) {
		return true
	}
	return err == nil && res.ExitCode != 0 && res.Stdout == ""
}
