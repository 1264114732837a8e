package changeengine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/policy"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/probe"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/statepaths"
)

// fakeRunner returns canned probe.Results keyed by probe id, so tests
// never shell out.
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

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + string(rune('0'+n))
	}
}

func newTestEngine(t *testing.T, pol *policy.Engine, runner ProbeRunner) (*Engine, statepaths.Layout) {
	t.Helper()
	root := t.TempDir()
	layout := statepaths.New(root)
	require.NoError(t, layout.EnsureDirs())
	e := New(pol, runner, layout,
		WithClock(fixedClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))),
		WithIDFunc(sequentialIDs("chg")),
	)
	return e, layout
}

func lowRiskEnsureLinePlan(target string) Plan {
	return Plan{
		ID:          "plan-1",
		Description: "enable vim syntax highlighting",
		Steps: []Step{
			{
				Action:      ActionEnsureLine,
				TargetPath:  target,
				Line:        "syntax on",
				Domain:      "config",
				RiskLevel:   RiskLow,
				WritesFiles: true,
			},
		},
		SafetyLevel: RiskLow,
		Confidence:  0.95,
	}
}

func TestEnsureLineIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "vimrc")
	require.NoError(t, os.WriteFile(target, []byte("foo\n"), 0o644))

	pol := policy.New(map[policy.Domain]policy.Decision{"config": policy.AutoRepair})
	runner := &fakeRunner{}
	e, _ := newTestEngine(t, pol, runner)

	plan := lowRiskEnsureLinePlan(target)

	rec1, err := e.Execute(context.Background(), plan, true)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, rec1.Status)

	after1, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "foo\nsyntax on\n", string(after1))

	plan2 := plan
	plan2.ID = "plan-2"
	_, err = e.Execute(context.Background(), plan2, true)
	require.NoError(t, err)

	after2, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, string(after1), string(after2), "re-applying ensure_line must leave the file byte-identical")
}

func TestEnsureLinePlanAutoProceedsWithoutConfirm(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "vimrc")
	require.NoError(t, os.WriteFile(target, []byte("foo\n"), 0o644))

	pol := policy.New(map[policy.Domain]policy.Decision{"config": policy.AutoRepair})
	e, _ := newTestEngine(t, pol, &fakeRunner{})

	plan := lowRiskEnsureLinePlan(target) // RiskLow steps; switch them to read-only for auto-proceed
	plan.Steps[0].RiskLevel = RiskReadOnly
	plan.SafetyLevel = RiskReadOnly
	plan.Confidence = 0.95

	_, err := e.Execute(context.Background(), plan, false)
	require.NoError(t, err, "a fully read-only, high-confidence plan must not require confirmation")
}

func TestLowConfidencePlanNeedsConfirmation(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "vimrc")

	pol := policy.New(map[policy.Domain]policy.Decision{"config": policy.AutoRepair})
	e, _ := newTestEngine(t, pol, &fakeRunner{})

	plan := lowRiskEnsureLinePlan(target)
	plan.Steps[0].RiskLevel = RiskReadOnly
	plan.SafetyLevel = RiskReadOnly
	plan.Confidence = 0.5
	_, err := e.Execute(context.Background(), plan, false)
	require.ErrorIs(t, err, ErrNeedsConfirmation)

	_, statErr := os.Stat(target)
	require.True(t, os.IsNotExist(statErr), "no side effect may occur when confirmation is required and absent")
}

func TestPolicyVetoIsNonBypassable(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "resolv.conf")

	// network domain is AlertOnly by default: no AutoRepair entry.
	pol := policy.New(map[policy.Domain]policy.Decision{})
	e, _ := newTestEngine(t, pol, &fakeRunner{})

	plan := Plan{
		ID:          "plan-net",
		Description: "add DNS server",
		Steps: []Step{
			{Action: ActionEnsureLine, TargetPath: target, Line: "nameserver 1.1.1.1", Domain: "network", RiskLevel: RiskLow, WritesFiles: true},
		},
		SafetyLevel: RiskLow,
		Confidence:  0.99,
	}

	rec, err := e.Execute(context.Background(), plan, true)
	require.ErrorIs(t, err, ErrExecutionFailed)
	require.Equal(t, StatusFailed, rec.Status)
	require.True(t, rec.Steps[0].PolicyBlocked)

	_, statErr := os.Stat(target)
	require.True(t, os.IsNotExist(statErr), "a policy-vetoed step must produce no side effects regardless of confirmation")
}

func TestInstallThenRollbackViaUndo(t *testing.T) {
	pol := policy.New(map[policy.Domain]policy.Decision{"packages": policy.AutoRepair})
	runner := &fakeRunner{results: map[string]probe.Result{
		"pacman_s_noconfirm": {ProbeID: "pacman_s_noconfirm", ExitCode: 0, Stdout: "installing neovim...\n"},
	}}
	e, _ := newTestEngine(t, pol, runner)

	plan := Plan{
		ID:          "plan-install",
		Description: "install neovim",
		Steps: []Step{
			{Action: ActionInstall, PackageName: "neovim", Domain: "packages", RiskLevel: RiskLow, RequiresRoot: true},
		},
		SafetyLevel: RiskLow,
		Confidence:  0.95,
	}

	rec, err := e.Execute(context.Background(), plan, true)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, rec.Status)
	require.True(t, rec.CanUndo)

	runner.results["pacman_rns_noconfirm"] = probe.Result{ProbeID: "pacman_rns_noconfirm", ExitCode: 0, Stdout: "removing neovim...\n"}

	undoRec, err := e.Undo(context.Background(), rec.ChangeID)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, undoRec.Status)
	require.Equal(t, rec.ChangeID, undoRec.UndoOf)

	_, err = e.Undo(context.Background(), rec.ChangeID)
	require.ErrorIs(t, err, ErrUndoNotPossible, "a change may be undone at most once")
}

func TestServiceEnableInvokesRealSystemctlVerbAndRollsBackToDisable(t *testing.T) {
	pol := policy.New(map[policy.Domain]policy.Decision{"services": policy.AutoRepair})
	runner := &fakeRunner{results: map[string]probe.Result{
		"systemctl_enable": {ProbeID: "systemctl_enable", ExitCode: 0, Stdout: "Created symlink ...\n"},
	}}
	e, _ := newTestEngine(t, pol, runner)

	plan := Plan{
		ID:          "plan-enable-sshd",
		Description: "enable sshd",
		Steps: []Step{
			{Action: ActionServiceEnable, ServiceName: "sshd", Domain: "services", RiskLevel: RiskLow, RequiresRoot: true},
		},
		SafetyLevel: RiskLow,
		Confidence:  0.95,
	}

	rec, err := e.Execute(context.Background(), plan, true)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, rec.Status)
	require.Equal(t, 0, rec.Steps[0].ExitCode, "enable must have actually invoked systemctl_enable, not a read-only status stub")

	runner.results["systemctl_disable"] = probe.Result{ProbeID: "systemctl_disable", ExitCode: 0, Stdout: "Removed ...\n"}

	undoRec, err := e.Undo(context.Background(), rec.ChangeID)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, undoRec.Status)
}

func TestServiceEnableFailsWhenSystemctlVerbNotWhitelisted(t *testing.T) {
	pol := policy.New(map[policy.Domain]policy.Decision{"services": policy.AutoRepair})
	// No canned result for "systemctl_enable": an explicit ErrUnknownProbe
	// for it stands in for the error the whitelist itself returns for a
	// missing verb, proving a missing verb fails loudly rather than
	// silently reporting success.
	runner := &fakeRunner{errs: map[string]error{"systemctl_enable": probe.ErrUnknownProbe}}
	e, _ := newTestEngine(t, pol, runner)

	plan := Plan{
		ID:          "plan-enable-missing",
		Description: "enable a service whose verb isn't whitelisted",
		Steps: []Step{
			{Action: ActionServiceEnable, ServiceName: "sshd", Domain: "services", RiskLevel: RiskLow, RequiresRoot: true},
		},
		SafetyLevel: RiskLow,
		Confidence:  0.95,
	}

	rec, err := e.Execute(context.Background(), plan, true)
	require.ErrorIs(t, err, ErrExecutionFailed)
	require.Equal(t, StatusFailed, rec.Status)
	require.NotEmpty(t, rec.Steps[0].Err)
}

func TestUndoRestoresFileBackupByteIdentical(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sshd_config")
	original := "Port 22\n"
	require.NoError(t, os.WriteFile(target, []byte(original), 0o644))

	pol := policy.New(map[policy.Domain]policy.Decision{"config": policy.AutoRepair})
	e, _ := newTestEngine(t, pol, &fakeRunner{})

	plan := lowRiskEnsureLinePlan(target)
	plan.Steps[0].Line = "PermitRootLogin no"

	rec, err := e.Execute(context.Background(), plan, true)
	require.NoError(t, err)

	mutated, err := os.ReadFile(target)
	require.NoError(t, err)
	require.NotEqual(t, original, string(mutated))

	_, err = e.Undo(context.Background(), rec.ChangeID)
	require.NoError(t, err)

	restored, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, original, string(restored), "undo must restore the exact pre-change bytes")
}

func TestUnknownChangeUndoReturnsErrUnknownChange(t *testing.T) {
	pol := policy.New(map[policy.Domain]policy.Decision{})
	e, _ := newTestEngine(t, pol, &fakeRunner{})

	_, err := e.Undo(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, ErrUnknownChange)
}

func TestInvalidPlanIsRejected(t *testing.T) {
	pol := policy.New(map[policy.Domain]policy.Decision{})
	e, _ := newTestEngine(t, pol, &fakeRunner{})

	_, err := e.Execute(context.Background(), Plan{}, true)
	require.ErrorIs(t, err, ErrPlanInvalid)
}

func TestListAndGetChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "vimrc")
	require.NoError(t, os.WriteFile(target, []byte("foo\n"), 0o644))

	pol := policy.New(map[policy.Domain]policy.Decision{"config": policy.AutoRepair})
	e, _ := newTestEngine(t, pol, &fakeRunner{})

	rec, err := e.Execute(context.Background(), lowRiskEnsureLinePlan(target), true)
	require.NoError(t, err)

	all := e.ListChanges()
	require.Len(t, all, 1)
	require.Equal(t, rec.ChangeID, all[0].ChangeID)

	got, err := e.GetChange(rec.ChangeID)
	require.NoError(t, err)
	require.Equal(t, rec.ChangeID, got.ChangeID)

	_, err = e.GetChange("missing")
	require.ErrorIs(t, err, ErrUnknownChange)
}

func TestChangeRecordsArePersistedAsJSONL(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "vimrc")
	require.NoError(t, os.WriteFile(target, []byte("foo\n"), 0o644))

	pol := policy.New(map[policy.Domain]policy.Decision{"config": policy.AutoRepair})
	e, layout := newTestEngine(t, pol, &fakeRunner{})

	_, err := e.Execute(context.Background(), lowRiskEnsureLinePlan(target), true)
	require.NoError(t, err)

	entries, err := os.ReadDir(layout.ChangesDir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
