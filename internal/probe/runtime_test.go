package probe

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testRuntime(t *testing.T) *Runtime {
	t.Helper()
	wl := NewWhitelist(
		Spec{ID: "echo", Program: "echo", PositionalArgs: []string{"$msg"}, AllowedFlags: map[string]bool{}, DefaultTimeout: 2 * time.Second},
		Spec{ID: "sleep", Program: "sleep", PositionalArgs: []string{"$secs"}, AllowedFlags: map[string]bool{}, DefaultTimeout: 2 * time.Second},
		Spec{ID: "false_cmd", Program: "false", AllowedFlags: map[string]bool{}, DefaultTimeout: 2 * time.Second},
	)
	return New(wl, t.TempDir(), []string{"PATH=/usr/bin:/bin"})
}

func TestRunUnknownProbe(t *testing.T) {
	r := testRuntime(t)
	_, err := r.Run(context.Background(), Request{ProbeID: "nope"})
	require.ErrorIs(t, err, ErrUnknownProbe)
}

func TestRunRejectsShellMetacharacters(t *testing.T) {
	r := testRuntime(t)
	_, err := r.Run(context.Background(), Request{ProbeID: "echo", Params: map[string]string{"msg": "hi; rm -rf /"}})
	require.ErrorIs(t, err, ErrRejectedArgument)
}

func TestRunRejectsDisallowedFlag(t *testing.T) {
	r := testRuntime(t)
	_, err := r.Run(context.Background(), Request{ProbeID: "echo", Flags: []string{"--evil"}})
	require.ErrorIs(t, err, ErrRejectedFlag)
}

func TestRunCapturesNonzeroExitAsValue(t *testing.T) {
	r := testRuntime(t)
	res, err := r.Run(context.Background(), Request{ProbeID: "false_cmd"})
	require.NoError(t, err)
	require.NotEqual(t, 0, res.ExitCode)
}

func TestRunTimesOut(t *testing.T) {
	r := testRuntime(t)
	r.killGrace = 200 * time.Millisecond
	res, err := r.Run(context.Background(), Request{ProbeID: "sleep", Params: map[string]string{"secs": "5"}, Timeout: 100 * time.Millisecond})
	require.ErrorIs(t, err, ErrTimeout)
	require.True(t, res.TimedOut, "Run must still surface the populated Result (TimedOut=true) alongside ErrTimeout, not a zero Result")
	require.Positive(t, res.ElapsedMS)
}

func TestRunSingleFlightCoalescesIdenticalCalls(t *testing.T) {
	r := testRuntime(t)
	var calls int64

	const n = 8
	var wg sync.WaitGroup
	results := make([]Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := r.Run(context.Background(), Request{ProbeID: "sleep", Params: map[string]string{"secs": "0.2"}})
			require.NoError(t, err)
			atomic.AddInt64(&calls, 1)
			results[i] = res
		}(i)
	}
	wg.Wait()

	first := results[0].InvokedAt
	for _, res := range results {
		require.Equal(t, first, res.InvokedAt, "all callers should observe the same coalesced result")
	}
}
