package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/probe"
)

type fakeRunner struct {
	results map[string]probe.Result
	errs    map[string]error
}

func (f *fakeRunner) Run(_ context.Context, req probe.Request) (probe.Result, error) {
	if err, ok := f.errs[req.ProbeID]; ok {
		return probe.Result{}, err
	}
	return f.results[req.ProbeID], nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestDeterminismSameInputsSameFingerprintAnswerReliability(t *testing.T) {
	runner := &fakeRunner{results: map[string]probe.Result{
		"lscpu":  {ProbeID: "lscpu", Stdout: "Architecture: x86_64\nCPU(s): 8\n", ExitCode: 0},
		"free_h": {ProbeID: "free_h", Stdout: "Mem: 15Gi 8.2Gi\n", ExitCode: 0},
	}}
	o := New(runner, fixedClock(time.Unix(1000, 0)), 0)

	r1 := o.Run(context.Background(), "r1", "how much memory and cpu do I have")
	r2 := o.Run(context.Background(), "r2", "how much memory and cpu do I have")

	require.Equal(t, r1.FingerprintShort, r2.FingerprintShort)
	require.Equal(t, r1.Answer.Answer, r2.Answer.Answer)
	require.Equal(t, r1.Reliability, r2.Reliability)
}

func TestGroundingAnswerOnlyContainsEvidenceValues(t *testing.T) {
	runner := &fakeRunner{results: map[string]probe.Result{
		"lscpu":  {ProbeID: "lscpu", Stdout: "Architecture: x86_64\n", ExitCode: 0},
		"free_h": {ProbeID: "free_h", Stdout: "Mem: 15Gi 8.2Gi\n", ExitCode: 0},
	}}
	o := New(runner, fixedClock(time.Unix(1000, 0)), 0)
	result := o.Run(context.Background(), "r1", "tell me about cpu and memory")

	for _, line := range strings.Split(result.Answer.Answer, "\n") {
		if line == "" {
			continue
		}
		found := false
		for _, e := range result.Evidence {
			if strings.Contains(e.Stdout, strings.TrimSpace(strings.SplitN(line, ": ", 2)[len(strings.SplitN(line, ": ", 2))-1])) {
				found = true
			}
			if e.Missing && strings.Contains(line, "unavailable") {
				found = true
			}
		}
		require.True(t, found, "answer line %q not grounded in evidence", line)
	}
}

func TestFailedProbeNeverAssertedAsPositiveFact(t *testing.T) {
	runner := &fakeRunner{results: map[string]probe.Result{
		"df_h": {ProbeID: "df_h", Stdout: "", ExitCode: 1},
	}}
	o := New(runner, fixedClock(time.Unix(1000, 0)), 0)
	result := o.Run(context.Background(), "r1", "how much disk storage do I have")

	require.Contains(t, result.Answer.Answer, "unavailable")
	require.False(t, result.Answer.AchievedGoal)
}

func TestReliabilityMonotonicity(t *testing.T) {
	base := ReliabilitySignals{}
	baseScore := Score(base)

	flipTrue := base
	flipTrue.TranslatorConfident = true
	require.GreaterOrEqual(t, Score(flipTrue), baseScore)

	flipTrue2 := base
	flipTrue2.ProbeCoverage = true
	require.GreaterOrEqual(t, Score(flipTrue2), baseScore)

	flipTrue3 := base
	flipTrue3.AnswerGrounded = true
	require.GreaterOrEqual(t, Score(flipTrue3), baseScore)

	flipTrue4 := base
	flipTrue4.NoInvention = true
	require.GreaterOrEqual(t, Score(flipTrue4), baseScore)

	// ClarificationNeeded: false is the positive signal.
	clarNeeded := ReliabilitySignals{ClarificationNeeded: true}
	clarNotNeeded := ReliabilitySignals{ClarificationNeeded: false}
	require.GreaterOrEqual(t, Score(clarNotNeeded), Score(clarNeeded))
}

func TestWeightsSumTo100(t *testing.T) {
	all := ReliabilitySignals{
		TranslatorConfident: true,
		ProbeCoverage:       true,
		AnswerGrounded:      true,
		NoInvention:         true,
		ClarificationNeeded: false,
	}
	require.Equal(t, 100, Score(all))
}

func TestCancellationProducesFailedStatus(t *testing.T) {
	runner := &fakeRunner{results: map[string]probe.Result{}}
	o := New(runner, fixedClock(time.Unix(1000, 0)), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := o.Run(ctx, "r1", "what cpu do I have")
	require.Equal(t, StatusFailed, result.Status)
}

func TestHumanRenderSuppressesInternalActors(t *testing.T) {
	runner := &fakeRunner{results: map[string]probe.Result{
		"lscpu": {ProbeID: "lscpu", Stdout: "Architecture: x86_64\n", ExitCode: 0},
	}}
	o := New(runner, fixedClock(time.Unix(1000, 0)), 0)
	result := o.Run(context.Background(), "r1", "what cpu do I have")

	for _, ev := range result.Transcript.Render(RenderHuman) {
		require.Empty(t, ev.Actor)
	}
	require.NotEmpty(t, result.Transcript.Render(RenderDebug))
}
