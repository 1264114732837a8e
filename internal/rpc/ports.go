package rpc

import (
	"context"
	"time"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/changeengine"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/daemonstate"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/drift"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/factstore"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/orchestrator"
)

// FactsPort is the narrow seam onto the Fact Store the "show" method
// needs; a fake implementation lets method-dispatch tests run without a
// real Store.
type FactsPort interface {
	Get(key string) (factstore.Fact, bool)
	StatusOf(key string) factstore.Status
}

// OrchestratorPort is the seam onto the request pipeline the "ask"
// method drives.
type OrchestratorPort interface {
	Run(ctx context.Context, requestID, utterance string) orchestrator.Result
}

// ChangesPort is the seam onto the Change Engine the plan/change methods
// drive.
type ChangesPort interface {
	Submit(plan changeengine.Plan)
	Confirm(planID string) (changeengine.Plan, error)
	Execute(ctx context.Context, plan changeengine.Plan, confirmed bool) (changeengine.Record, error)
	ListChanges() []changeengine.Record
	GetChange(changeID string) (changeengine.Record, error)
	Undo(ctx context.Context, changeID string) (changeengine.Record, error)
}

// TrackerPort is the seam onto the daemon lifecycle tracker the "status"
// method reports.
type TrackerPort interface {
	GetSnapshot() daemonstate.Snapshot
	Uptime() time.Duration
}

// DriftFunc computes the current inventory-drift Result; bound to a
// closure over the real Fact Store + Probe Runtime in cmd/annad, or to a
// fake in tests.
type DriftFunc func(ctx context.Context) (drift.Result, error)
