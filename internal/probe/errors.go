package probe

import "errors"

// Sentinel errors named directly in spec.md §4.1.
var (
	ErrSpawnFailed      = errors.New("probe: spawn failed")
	ErrRejectedArgument = errors.New("probe: rejected argument")
	ErrRejectedFlag     = errors.New("probe: rejected flag")
	ErrUnknownProbe     = errors.New("probe: unknown probe")
	ErrTimeout          = errors.New("probe: timeout")
)
