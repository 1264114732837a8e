package orchestrator

import "errors"

var (
	// ErrPlanInvalid is returned when a plan violates the risk/safety
	// invariant: a step's risk exceeds the plan's declared safety level.
	ErrPlanInvalid = errors.New("orchestrator: plan invalid")
	// ErrCancelled is recorded when the client closes the connection
	// mid-request; the request terminates Failed(Cancelled).
	ErrCancelled = errors.New("orchestrator: request cancelled")
)
