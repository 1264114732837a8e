package orchestrator

// domainProbes maps an inspection domain to the read-only probe(s) that
// answer it, along with the purpose text and expected outcome shown in
// the plan. Every probe referenced here must exist in the Probe
// Runtime's whitelist, or Execute will surface unknown_probe evidence.
var domainProbes = map[Domain][]PlannedCommand{
	DomainHardware: {
		{ProbeID: "lscpu", Purpose: "read CPU topology", RiskLevel: RiskReadOnly, ExpectedOutcome: "CPU architecture and core counts"},
		{ProbeID: "free_h", Flags: []string{"-h"}, Purpose: "read memory usage", RiskLevel: RiskReadOnly, ExpectedOutcome: "total/used/free memory"},
	},
	DomainStorage: {
		{ProbeID: "df_h", Flags: []string{"-h"}, Purpose: "read filesystem usage", RiskLevel: RiskReadOnly, ExpectedOutcome: "per-filesystem capacity and usage"},
	},
	DomainNetwork: {
		{ProbeID: "ip_addr", Purpose: "read network interfaces", RiskLevel: RiskReadOnly, ExpectedOutcome: "interface names, state, addresses"},
	},
	DomainServices: {
		{ProbeID: "systemctl_status", Flags: []string{"--no-pager"}, Purpose: "read service manager status", RiskLevel: RiskReadOnly, ExpectedOutcome: "system unit summary"},
	},
	DomainOther: {
		{ProbeID: "ps_aux", Flags: []string{"aux"}, Purpose: "read process table", RiskLevel: RiskReadOnly, ExpectedOutcome: "running processes"},
	},
}

// Plan produces a CommandPlan of read-only probes for the intent's domain,
// whatever its goal: a change-goal intent gets the same inspection plan,
// not a change plan.
func Plan(intent Intent) CommandPlan {
	steps, ok := domainProbes[intent.Domain]
	if !ok || len(steps) == 0 {
		steps = domainProbes[DomainOther]
	}

	cp := CommandPlan{
		Goal:        string(intent.Goal),
		Steps:       append([]PlannedCommand(nil), steps...),
		SafetyLevel: SafetyReadOnly,
		Assumptions: []string{"all planned probes are read-only host inspection commands"},
		Confidence:  confidenceFor(intent),
	}
	return cp
}

// confidenceFor is a simple deterministic function of how specific the
// classified domain is: a recognized domain is high confidence, the
// Other fallback is lower.
func confidenceFor(intent Intent) float64 {
	if intent.Domain == DomainOther {
		return 0.5
	}
	if intent.Goal == GoalOther {
		return 0.7
	}
	return 0.95
}
