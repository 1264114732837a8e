package orchestrator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/probe"
)

func TestIsTransientOnTimeoutError(t *testing.T) {
	require.True(t, isTransient(probe.Result{}, probe.ErrTimeout))
	require.True(t, isTransient(probe.Result{}, fmt.Errorf("wrapped: %w", probe.ErrTimeout)),
		"isTransient must use errors.Is so a wrapped ErrTimeout is still recognized")
}

func TestIsTransientOnTimedOutResult(t *testing.T) {
	require.True(t, isTransient(probe.Result{TimedOut: true}, nil))
}

func TestIsTransientOnEmptyStdoutNonzeroExit(t *testing.T) {
	require.True(t, isTransient(probe.Result{ExitCode: 1}, nil))
}

func TestIsTransientFalseOnOrdinaryFailure(t *testing.T) {
	require.False(t, isTransient(probe.Result{ExitCode: 1, Stdout: "some output"}, nil))
}

// timeoutThenOKRunner returns probe.ErrTimeout (with a populated,
// TimedOut Result, as probe.Runtime.Run now does) for the first N calls,
// then succeeds.
type timeoutThenOKRunner struct {
	failures int
	calls    int
	ok       probe.Result
}

func (r *timeoutThenOKRunner) Run(_ context.Context, _ probe.Request) (probe.Result, error) {
	r.calls++
	if r.calls <= r.failures {
		return probe.Result{TimedOut: true, ElapsedMS: 50}, probe.ErrTimeout
	}
	return r.ok, nil
}

func TestExecuteRetriesOnTimeoutErrorAndEventuallySucceeds(t *testing.T) {
	runner := &timeoutThenOKRunner{failures: 1, ok: probe.Result{Stdout: "cpu: 4 cores", ExitCode: 0}}
	steps := []PlannedCommand{{ProbeID: "lscpu", Purpose: "cpu"}}

	evidence := Execute(context.Background(), runner, steps, fixedClock(time.Unix(0, 0)))

	require.Len(t, evidence, 1)
	require.False(t, evidence[0].Missing)
	require.Equal(t, "cpu: 4 cores", evidence[0].Stdout)
	require.Equal(t, 2, runner.calls, "must retry exactly once after a single transient timeout")
}

func TestExecuteGivesUpAfterExhaustingRetriesOnRepeatedTimeouts(t *testing.T) {
	runner := &timeoutThenOKRunner{failures: maxTransientRetries + 1}
	steps := []PlannedCommand{{ProbeID: "lscpu", Purpose: "cpu"}}

	evidence := Execute(context.Background(), runner, steps, fixedClock(time.Unix(0, 0)))

	require.Len(t, evidence, 1)
	require.True(t, evidence[0].Missing)
	require.Equal(t, maxTransientRetries+1, runner.calls)
}
