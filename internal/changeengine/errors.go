package changeengine

import "errors"

var (
	ErrPlanInvalid       = errors.New("changeengine: plan invalid")
	ErrNeedsConfirmation = errors.New("changeengine: needs confirmation")
	ErrPolicyBlocked     = errors.New("changeengine: policy blocked")
	ErrExecutionFailed   = errors.New("changeengine: execution failed")
	ErrBackupFailed      = errors.New("changeengine: backup failed")
	ErrUndoNotPossible   = errors.New("changeengine: undo not possible")
	ErrUnknownPlan       = errors.New("changeengine: unknown plan")
	ErrUnknownChange     = errors.New("changeengine: unknown change")
)
