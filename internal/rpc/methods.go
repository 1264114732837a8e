package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/changeengine"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/orchestrator"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/rpcerr"
)

// errBadParams is classified as rpcerr.ParseError; every handler that
// fails to decode its params returns it, never a raw json error whose
// text might vary by Go version.
var errBadParams = fmt.Errorf("rpc: malformed params")

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadParams, err)
	}
	return nil
}

// statusResult is the wire shape of the "status" method's result.
type statusResult struct {
	State          string   `json:"state"`
	UptimeSeconds  float64  `json:"uptime_seconds"`
	Warnings       []string `json:"warnings"`
	ActiveRequests int      `json:"active_requests"`
}

func handleStatus(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	snap := d.Tracker.GetSnapshot()
	return statusResult{
		State:          string(snap.State),
		UptimeSeconds:  d.Tracker.Uptime().Seconds(),
		Warnings:       snap.Warnings,
		ActiveRequests: snap.ActiveRequests,
	}, nil
}

type showParams struct {
	Key string `json:"key"`
}

type showResult struct {
	Key    string `json:"key"`
	Status string `json:"status"`
	Value  string `json:"value,omitempty"`
}

func handleShow(_ context.Context, d *Deps, raw json.RawMessage) (any, error) {
	var p showParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.Key == "" {
		return nil, fmt.Errorf("%w: key is required", errBadParams)
	}
	st := d.Facts.StatusOf(p.Key)
	return showResult{Key: p.Key, Status: string(st.Kind), Value: st.Value}, nil
}

type askParams struct {
	Utterance string `json:"utterance"`
	Debug     bool   `json:"debug"`
}

type askResult struct {
	RequestID        string              `json:"request_id"`
	Status           string              `json:"status"`
	Answer           string              `json:"answer"`
	Confidence       string              `json:"confidence"`
	Reliability      int                 `json:"reliability"`
	ReliabilityClass string              `json:"reliability_class"`
	Fingerprint      string              `json:"fingerprint"`
	Transcript       []orchestrator.Event `json:"transcript"`
}

func handleAsk(ctx context.Context, d *Deps, raw json.RawMessage) (any, error) {
	var p askParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.Utterance == "" {
		return nil, fmt.Errorf("%w: utterance is required", errBadParams)
	}

	requestID := uuid.NewString()
	result := d.Orch.Run(ctx, requestID, p.Utterance)

	mode := orchestrator.RenderHuman
	if p.Debug {
		mode = orchestrator.RenderDebug
	}
	var events []orchestrator.Event
	if result.Transcript != nil {
		events = result.Transcript.Render(mode)
	}

	return askResult{
		RequestID:        result.RequestID,
		Status:           string(result.Status),
		Answer:           result.Answer.Answer,
		Confidence:       string(result.Answer.Confidence),
		Reliability:      result.Reliability,
		ReliabilityClass: string(result.ReliabilityClass),
		Fingerprint:      result.FingerprintShort,
		Transcript:       events,
	}, nil
}

type planSubmitParams struct {
	Plan changeengine.Plan `json:"plan"`
}

type planIDResult struct {
	PlanID string `json:"plan_id"`
}

func handlePlanSubmit(_ context.Context, d *Deps, raw json.RawMessage) (any, error) {
	var p planSubmitParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.Plan.ID == "" {
		return nil, fmt.Errorf("%w: plan.id is required", errBadParams)
	}
	d.Changes.Submit(p.Plan)
	return planIDResult{PlanID: p.Plan.ID}, nil
}

type planIDParams struct {
	ID string `json:"id"`
}

func handlePlanShow(_ context.Context, d *Deps, raw json.RawMessage) (any, error) {
	var p planIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: id is required", errBadParams)
	}
	return d.Changes.Confirm(p.ID)
}

func handlePlanConfirm(ctx context.Context, d *Deps, raw json.RawMessage) (any, error) {
	var p planIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: id is required", errBadParams)
	}
	plan, err := d.Changes.Confirm(p.ID)
	if err != nil {
		return nil, err
	}
	return d.Changes.Execute(ctx, plan, true)
}

func handleChangeList(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	return d.Changes.ListChanges(), nil
}

func handleChangeUndo(ctx context.Context, d *Deps, raw json.RawMessage) (any, error) {
	var p planIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: id is required", errBadParams)
	}
	return d.Changes.Undo(ctx, p.ID)
}

func handleDrift(ctx context.Context, d *Deps, _ json.RawMessage) (any, error) {
	if d.Drift == nil {
		return nil, rpcerr.New(rpcerr.CommandNotAvailable, "drift unavailable")
	}
	return d.Drift(ctx)
}
