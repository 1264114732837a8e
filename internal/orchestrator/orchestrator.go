package orchestrator

import (
	"context"
	"fmt"
	"time"
)

// RequestState is a position in the per-request stage machine:
// New -> Classifying -> Planning -> Executing -> Interpreting -> Scoring
// -> Done. The only backward transition is Interpret -> Executing when a
// fallback plan triggers, at most once per request.
type RequestState string

const (
	StateNew          RequestState = "new"
	StateClassifying  RequestState = "classifying"
	StatePlanning     RequestState = "planning"
	StateExecuting    RequestState = "executing"
	StateInterpreting RequestState = "interpreting"
	StateScoring      RequestState = "scoring"
	StateDone         RequestState = "done"
)

// Result is everything produced by one request run.
type Result struct {
	RequestID        string
	FinalState       RequestState
	Status           Status
	Intent           Intent
	Plan             CommandPlan
	Evidence         []Evidence
	Answer           InterpretedAnswer
	Reliability      int
	ReliabilityClass ReliabilityClass
	FingerprintShort string
	Transcript       *Transcript
}

// Orchestrator runs requests through the staged pipeline.
type Orchestrator struct {
	runner ProbeRunner
	clock  func() time.Time
	deadline time.Duration
}

// New constructs an Orchestrator. deadline bounds the overall request
// (the orchestrator deadline from spec.md's concurrency model); zero
// means no deadline beyond the caller's context.
func New(runner ProbeRunner, clock func() time.Time, deadline time.Duration) *Orchestrator {
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{runner: runner, clock: clock, deadline: deadline}
}

// Run executes requestID's utterance through Classify -> Plan -> Execute
// -> Interpret -> Score -> Emit. ctx is checked before the classify, plan
// and execute stages and again after execution; interpret and score run
// without a check. Run does not produce change plans: an intent whose goal
// is "change" is planned like any other, as read-only probes for its
// domain.
func (o *Orchestrator) Run(ctx context.Context, requestID, utterance string) Result {
	if o.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.deadline)
		defer cancel()
	}

	start := o.clock()
	tr := NewTranscript(start)
	tr.Append(ActorAnnad, EventMessage, o.clock(), map[string]any{"request_id": requestID, "utterance": utterance})

	result := Result{RequestID: requestID, Transcript: tr}

	// Classify
	tr.Append(ActorTranslator, EventStageStart, o.clock(), map[string]any{"stage": "classify"})
	if err := ctx.Err(); err != nil {
		return o.cancelled(result, tr, StateClassifying)
	}
	intent := Classify(utterance)
	result.Intent = intent
	tr.Append(ActorTranslator, EventStageEnd, o.clock(), map[string]any{"stage": "classify", "outcome": OutcomeOk, "goal": intent.Goal, "domain": intent.Domain})

	// Plan
	tr.Append(ActorJunior, EventStageStart, o.clock(), map[string]any{"stage": "plan"})
	if err := ctx.Err(); err != nil {
		return o.cancelled(result, tr, StatePlanning)
	}
	plan := Plan(intent)
	if err := plan.Validate(); err != nil {
		tr.Append(ActorJunior, EventStageEnd, o.clock(), map[string]any{"stage": "plan", "outcome": OutcomeError, "error": err.Error()})
		result.Status = StatusFailed
		return o.finish(result, tr, StatePlanning)
	}
	result.Plan = plan
	tr.Append(ActorJunior, EventStageEnd, o.clock(), map[string]any{"stage": "plan", "outcome": OutcomeOk, "steps": len(plan.Steps)})

	fallbackUsed := false
	var evidence []Evidence
	var answer InterpretedAnswer

executeAndInterpret:
	// Execute
	tr.Append(ActorJunior, EventStageStart, o.clock(), map[string]any{"stage": "execute"})
	if err := ctx.Err(); err != nil {
		return o.cancelled(result, tr, StateExecuting)
	}
	for _, step := range plan.Steps {
		tr.Append(ActorJunior, EventProbeStart, o.clock(), map[string]any{"probe_id": step.ProbeID})
	}
	evidence = Execute(ctx, o.runner, plan.Steps, o.clock)
	for _, e := range evidence {
		tr.Append(ActorJunior, EventProbeEnd, o.clock(), map[string]any{"probe_id": e.ProbeID, "missing": e.Missing})
	}
	if err := ctx.Err(); err != nil {
		return o.cancelled(result, tr, StateExecuting)
	}
	tr.Append(ActorJunior, EventStageEnd, o.clock(), map[string]any{"stage": "execute", "outcome": OutcomeOk})
	result.Evidence = evidence

	// Interpret
	tr.Append(ActorSenior, EventStageStart, o.clock(), map[string]any{"stage": "interpret"})
	answer = Interpret(intent, evidence)
	tr.Append(ActorSenior, EventStageEnd, o.clock(), map[string]any{"stage": "interpret", "outcome": OutcomeOk, "achieved_goal": answer.AchievedGoal})

	if !answer.AchievedGoal && !fallbackUsed && len(plan.Fallback) > 0 {
		fallbackUsed = true
		plan.Steps = plan.Fallback
		result.Plan = plan
		tr.Append(ActorSenior, EventNote, o.clock(), map[string]any{"note": "falling back to alternate plan"})
		goto executeAndInterpret
	}

	result.Answer = answer

	// Score
	tr.Append(ActorSenior, EventStageStart, o.clock(), map[string]any{"stage": "score"})
	signals := SignalsFromEvidence(plan, evidence, answer, intent.Goal != GoalOther)
	reliability := Score(signals)
	class := ClassifyScore(reliability)
	result.Reliability = reliability
	result.ReliabilityClass = class
	tr.Append(ActorSenior, EventStageEnd, o.clock(), map[string]any{"stage": "score", "outcome": OutcomeOk, "reliability": reliability})

	_, short := Fingerprint(utterance, evidence)
	result.FingerprintShort = short

	tr.Append(ActorAnnad, EventReliability, o.clock(), map[string]any{"reliability": reliability, "class": class})
	tr.Append(ActorAnnad, EventFinalAnswer, o.clock(), map[string]any{"answer": answer.Answer, "confidence": answer.Confidence})

	switch {
	case class == ReliabilityLow:
		result.Status = StatusDegraded
	default:
		result.Status = StatusOk
	}

	return o.finish(result, tr, StateDone)
}

func (o *Orchestrator) cancelled(result Result, tr *Transcript, at RequestState) Result {
	tr.Append(ActorAnnad, EventNote, o.clock(), map[string]any{"note": fmt.Sprintf("%v", ErrCancelled)})
	result.Status = StatusFailed
	return o.finish(result, tr, at)
}

func (o *Orchestrator) finish(result Result, tr *Transcript, state RequestState) Result {
	result.Transcript = tr
	result.FinalState = state
	return result
}
