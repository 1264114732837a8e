package changeengine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/policy"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/probe"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/statepaths"
)

// ProbeRunner is the narrow seam onto the Probe Runtime that install,
// remove, and service-action steps execute through.
type ProbeRunner interface {
	Run(ctx context.Context, req probe.Request) (probe.Result, error)
}

// Clock is the injectable time source, overridden in tests for
// deterministic AppliedAt/ChangeID-adjacent timestamps.
type Clock func() time.Time

// Engine applies and undoes change plans.
type Engine struct {
	mu      sync.Mutex
	policy  *policy.Engine
	runner  ProbeRunner
	layout  statepaths.Layout
	clock   Clock
	newID   func() string
	pending map[string]Plan
	records map[string]Record // change id -> most recent record for that change
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

// WithIDFunc overrides change/plan id generation, for deterministic tests.
func WithIDFunc(f func() string) Option { return func(e *Engine) { e.newID = f } }

// New constructs an Engine. pol and runner must be non-nil; layout names
// where backups and change records live on disk.
func New(pol *policy.Engine, runner ProbeRunner, layout statepaths.Layout, opts ...Option) *Engine {
	e := &Engine{
		policy:  pol,
		runner:  runner,
		layout:  layout,
		clock:   time.Now,
		newID:   func() string { return uuid.NewString() },
		pending: make(map[string]Plan),
		records: make(map[string]Record),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Submit registers plan as pending. A plan whose steps are all read-only
// and whose confidence clears the auto-proceed bar runs under Execute even
// with confirmed=false; any other plan needs confirmed=true. Execute
// checks only that argument, not whether Confirm was called.
func (e *Engine) Submit(plan Plan) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending[plan.ID] = plan
}

// autoProceedConfidence is the confidence floor at or above which a fully
// read-only plan may execute without an explicit confirmation step.
const autoProceedConfidence = 0.9

// Confirm returns the pending plan with planID, or ErrUnknownPlan if it
// was never submitted. It records nothing; the caller executes the plan
// with confirmed=true.
func (e *Engine) Confirm(planID string) (Plan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.pending[planID]
	if !ok {
		return Plan{}, ErrUnknownPlan
	}
	return p, nil
}

// needsConfirmation reports whether plan must pass through Confirm
// before Execute will act on it.
func needsConfirmation(p Plan) bool {
	return !(p.AllReadOnly() && p.Confidence >= autoProceedConfidence)
}

// ListChanges returns every recorded Record (applied changes and their
// undos), ordered oldest first.
func (e *Engine) ListChanges() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Record, 0, len(e.records))
	for _, r := range e.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.Before(out[j].AppliedAt) })
	return out
}

// GetChange returns the most recent Record for changeID.
func (e *Engine) GetChange(changeID string) (Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.records[changeID]
	if !ok {
		return Record{}, ErrUnknownChange
	}
	return r, nil
}

// Execute applies plan's steps in order. confirmed must be true for any
// plan that needsConfirmation; otherwise Execute returns
// ErrNeedsConfirmation and performs no steps. Each step is independently
// gated by the Policy Engine: a vetoed step is skipped and recorded as
// policy-blocked regardless of confirmed, and skipping one step never
// prevents later steps in the same plan from being attempted.
func (e *Engine) Execute(ctx context.Context, plan Plan, confirmed bool) (Record, error) {
	if err := validatePlan(plan); err != nil {
		return Record{}, err
	}
	if needsConfirmation(plan) && !confirmed {
		return Record{}, ErrNeedsConfirmation
	}

	changeID := e.newID()
	now := e.clock()
	outcomes := make([]StepOutcome, 0, len(plan.Steps))
	anyFailed := false
	anySucceeded := false
	canUndo := true

	for _, step := range plan.Steps {
		if !e.policy.Allows(policy.Domain(step.Domain)) {
			outcomes = append(outcomes, StepOutcome{Step: step, PolicyBlocked: true})
			anyFailed = true
			canUndo = false
			continue
		}
		outcome := e.applyStep(ctx, changeID, step)
		outcomes = append(outcomes, outcome)
		if outcome.Err != "" {
			anyFailed = true
		} else {
			anySucceeded = true
		}
		if outcome.BackupPath == "" && step.WritesFiles {
			canUndo = false
		}
	}

	status := StatusSuccess
	switch {
	case anyFailed && anySucceeded:
		status = StatusPartial
	case anyFailed && !anySucceeded:
		status = StatusFailed
		canUndo = false
	}

	record := Record{
		ChangeID:  changeID,
		PlanID:    plan.ID,
		AppliedAt: now,
		Steps:     outcomes,
		Status:    status,
		CanUndo:   canUndo,
	}

	if err := e.appendRecord(record); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}

	e.mu.Lock()
	e.records[changeID] = record
	delete(e.pending, plan.ID)
	e.mu.Unlock()

	if status == StatusFailed {
		return record, ErrExecutionFailed
	}
	return record, nil
}

func validatePlan(p Plan) error {
	if p.ID == "" || len(p.Steps) == 0 {
		return ErrPlanInvalid
	}
	for _, s := range p.Steps {
		switch s.Action {
		case ActionEnsureLine, ActionAppendLine:
			if s.TargetPath == "" || s.Line == "" {
				return ErrPlanInvalid
			}
		case ActionInstall, ActionRemove:
			if s.PackageName == "" {
				return ErrPlanInvalid
			}
		case ActionServiceEnable, ActionServiceDisable, ActionServiceStart, ActionServiceStop:
			if s.ServiceName == "" {
				return ErrPlanInvalid
			}
		default:
			return ErrPlanInvalid
		}
	}
	return nil
}

func (e *Engine) applyStep(ctx context.Context, changeID string, step Step) StepOutcome {
	switch step.Action {
	case ActionEnsureLine:
		return e.applyEnsureLine(changeID, step, true)
	case ActionAppendLine:
		return e.applyEnsureLine(changeID, step, false)
	case ActionInstall:
		return e.runProbeStep(ctx, step, "pacman_s_noconfirm", map[string]string{"package": step.PackageName}, []string{"-S", "--noconfirm"})
	case ActionRemove:
		return e.runProbeStep(ctx, step, "pacman_rns_noconfirm", map[string]string{"package": step.PackageName}, []string{"-Rns", "--noconfirm"})
	case ActionServiceEnable:
		return e.runProbeStep(ctx, step, "systemctl_enable", map[string]string{"unit": step.ServiceName}, nil)
	case ActionServiceDisable:
		return e.runProbeStep(ctx, step, "systemctl_disable", map[string]string{"unit": step.ServiceName}, nil)
	case ActionServiceStart:
		return e.runProbeStep(ctx, step, "systemctl_start", map[string]string{"unit": step.ServiceName}, nil)
	case ActionServiceStop:
		return e.runProbeStep(ctx, step, "systemctl_stop", map[string]string{"unit": step.ServiceName}, nil)
	default:
		return StepOutcome{Step: step, Err: "unknown action"}
	}
}

func (e *Engine) runProbeStep(ctx context.Context, step Step, probeID string, params map[string]string, flags []string) StepOutcome {
	res, err := e.runner.Run(ctx, probe.Request{ProbeID: probeID, Params: params, Flags: flags})
	if err != nil {
		return StepOutcome{Step: step, Err: err.Error()}
	}
	out := StepOutcome{
		Step:       step,
		ExitCode:   res.ExitCode,
		StdoutTail: tail(res.Stdout),
		StderrTail: tail(res.Stderr),
	}
	if res.ExitCode != 0 {
		out.Err = fmt.Sprintf("probe %s exited %d", probeID, res.ExitCode)
	}
	return out
}

const tailBytes = 2048

func tail(s string) string {
	if len(s) <= tailBytes {
		return s
	}
	return s[len(s)-tailBytes:]
}

// applyEnsureLine performs the ensure_line (idempotent) or append_line
// (unconditional) mutation, backing up the target's prior content first.
func (e *Engine) applyEnsureLine(changeID string, step Step, idempotent bool) StepOutcome {
	before, err := readFileOrEmpty(step.TargetPath)
	if err != nil {
		return StepOutcome{Step: step, Err: err.Error()}
	}

	var after string
	if idempotent {
		after = ensureLine(before, step.Line)
	} else {
		after = appendLine(before, step.Line)
	}

	backupPath, err := e.backup(changeID, step.TargetPath, before)
	if err != nil {
		return StepOutcome{Step: step, Err: fmt.Sprintf("%v: %v", ErrBackupFailed, err)}
	}

	if after == before {
		// Already satisfied: no write needed, but the backup still
		// anchors an undo to a no-op restore of identical content.
		return StepOutcome{Step: step, BackupPath: backupPath}
	}

	if err := os.WriteFile(step.TargetPath, []byte(after), 0o644); err != nil {
		return StepOutcome{Step: step, BackupPath: backupPath, Err: err.Error()}
	}
	return StepOutcome{Step: step, BackupPath: backupPath}
}

func (e *Engine) backup(changeID, targetPath, content string) (string, error) {
	backupPath := e.layout.BackupPath(changeID, filepath.Base(targetPath))
	if err := os.MkdirAll(filepath.Dir(backupPath), 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(backupPath, []byte(content), 0o640); err != nil {
		return "", err
	}
	return backupPath, nil
}

// Undo reverses a previously applied change: files are restored from
// their backups and service/package steps are inverted via their
// counterpart probes. A change may be undone at most once.
func (e *Engine) Undo(ctx context.Context, changeID string) (Record, error) {
	e.mu.Lock()
	orig, ok := e.records[changeID]
	e.mu.Unlock()
	if !ok {
		return Record{}, ErrUnknownChange
	}
	if orig.Undone {
		return Record{}, ErrUndoNotPossible
	}
	if !orig.CanUndo {
		return Record{}, ErrUndoNotPossible
	}

	undoOutcomes := make([]StepOutcome, 0, len(orig.Steps))
	anyFailed := false
	for _, so := range orig.Steps {
		undoOutcomes = append(undoOutcomes, e.undoStep(ctx, so))
		if undoOutcomes[len(undoOutcomes)-1].Err != "" {
			anyFailed = true
		}
	}

	status := StatusSuccess
	if anyFailed {
		status = StatusPartial
	}

	undoRecord := Record{
		ChangeID:  e.newID(),
		PlanID:    orig.PlanID,
		AppliedAt: e.clock(),
		Steps:     undoOutcomes,
		Status:    status,
		CanUndo:   false,
		UndoOf:    changeID,
	}
	if err := e.appendRecord(undoRecord); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}

	orig.Undone = true
	e.mu.Lock()
	e.records[changeID] = orig
	e.records[undoRecord.ChangeID] = undoRecord
	e.mu.Unlock()

	if err := e.appendRecord(orig); err != nil {
		return undoRecord, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}

	return undoRecord, nil
}

func (e *Engine) undoStep(ctx context.Context, so StepOutcome) StepOutcome {
	switch so.Step.Action {
	case ActionEnsureLine, ActionAppendLine:
		if so.BackupPath == "" {
			return StepOutcome{Step: so.Step, Err: "no backup to restore"}
		}
		content, err := os.ReadFile(so.BackupPath)
		if err != nil {
			return StepOutcome{Step: so.Step, Err: err.Error()}
		}
		if err := os.WriteFile(so.Step.TargetPath, content, 0o644); err != nil {
			return StepOutcome{Step: so.Step, Err: err.Error()}
		}
		return StepOutcome{Step: so.Step}
	case ActionInstall:
		return e.runProbeStep(ctx, so.Step, "pacman_rns_noconfirm", map[string]string{"package": so.Step.PackageName}, []string{"-Rns", "--noconfirm"})
	case ActionRemove:
		return e.runProbeStep(ctx, so.Step, "pacman_s_noconfirm", map[string]string{"package": so.Step.PackageName}, []string{"-S", "--noconfirm"})
	case ActionServiceEnable:
		return e.runProbeStep(ctx, so.Step, "systemctl_disable", map[string]string{"unit": so.Step.ServiceName}, nil)
	case ActionServiceDisable:
		return e.runProbeStep(ctx, so.Step, "systemctl_enable", map[string]string{"unit": so.Step.ServiceName}, nil)
	case ActionServiceStart:
		return e.runProbeStep(ctx, so.Step, "systemctl_stop", map[string]string{"unit": so.Step.ServiceName}, nil)
	case ActionServiceStop:
		return e.runProbeStep(ctx, so.Step, "systemctl_start", map[string]string{"unit": so.Step.ServiceName}, nil)
	default:
		return StepOutcome{Step: so.Step, Err: "unknown action"}
	}
}

// appendRecord writes record as one JSON line to the day's change log.
func (e *Engine) appendRecord(record Record) error {
	if err := os.MkdirAll(e.layout.ChangesDir(), 0o750); err != nil {
		return err
	}
	path := filepath.Join(e.layout.ChangesDir(), record.AppliedAt.UTC().Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return err
	}
	defer f.Close()

	buf, err := json.Marshal(record)
	if err != nil {
		return err
	}
	buf = append(buf, '\n')
	_, err = f.Write(buf)
	return err
}
