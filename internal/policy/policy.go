// Package policy decides, per change-engine step, whether the daemon may
// act on its own (AutoRepair), must merely surface the condition
// (AlertOnly), or must do nothing (NoAction). The decision is the final
// say regardless of plan confirmation: a confirmed plan whose step falls
// under AlertOnly still does not execute.
package policy

// Decision is the closed set of policy outcomes for a single step.
type Decision string

const (
	AutoRepair Decision = "auto_repair"
	AlertOnly  Decision = "alert_only"
	NoAction   Decision = "no_action"
)

// Domain is the closed tag set a step's target falls under, mirroring
// the orchestrator's classification domains so one policy table serves
// both classification and execution gating.
type Domain string

const (
	DomainPackages Domain = "packages"
	DomainConfig   Domain = "config"
	DomainDevices  Domain = "devices"
	DomainNetwork  Domain = "network"
	DomainStorage  Domain = "storage"
	DomainKernel   Domain = "kernel"
	DomainServices Domain = "services"
	DomainDesktop  Domain = "desktop"
	DomainHardware Domain = "hardware"
	DomainOther    Domain = "other"
)

// Engine holds a static per-domain decision table. A zero-value Engine
// falls back to AlertOnly for every domain (the conservative default).
type Engine struct {
	table map[Domain]Decision
}

// New constructs an Engine from an explicit domain->decision table. Any
// domain absent from table defaults to AlertOnly when queried.
func New(table map[Domain]Decision) *Engine {
	e := &Engine{table: make(map[Domain]Decision, len(table))}
	for d, dec := range table {
		e.table[d] = dec
	}
	return e
}

// Default returns the conservative baseline: packages and services may
// auto-repair (routine, reversible maintenance), everything else is
// alert-only until an operator opts a domain in.
func Default() *Engine {
	return New(map[Domain]Decision{
		DomainPackages: AutoRepair,
		DomainServices: AutoRepair,
		DomainConfig:   AlertOnly,
		DomainDevices:  AlertOnly,
		DomainNetwork:  AlertOnly,
		DomainStorage:  AlertOnly,
		DomainKernel:   NoAction,
		DomainDesktop:  AlertOnly,
		DomainHardware: NoAction,
		DomainOther:    AlertOnly,
	})
}

// Decide returns the policy decision for a step in the given domain.
func (e *Engine) Decide(d Domain) Decision {
	if e == nil || e.table == nil {
		return AlertOnly
	}
	if dec, ok := e.table[d]; ok {
		return dec
	}
	return AlertOnly
}

// Allows reports whether a step in domain d may actually execute. Only
// AutoRepair permits execution; AlertOnly and NoAction both veto it, and
// the veto cannot be bypassed by plan confirmation.
func (e *Engine) Allows(d Domain) bool {
	return e.Decide(d) == AutoRepair
}
