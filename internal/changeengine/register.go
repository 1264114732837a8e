package changeengine

import "github.com/jjgarcianorway/anna-assistant-sub019/internal/rpcerr"

func init() {
	rpcerr.Register(ErrPlanInvalid, rpcerr.ParseError)
	rpcerr.Register(ErrNeedsConfirmation, rpcerr.CommandNotAvailable)
	rpcerr.Register(ErrPolicyBlocked, rpcerr.CommandNotAvailable)
	rpcerr.Register(ErrExecutionFailed, rpcerr.GeneralError)
	rpcerr.Register(ErrBackupFailed, rpcerr.GeneralError)
	rpcerr.Register(ErrUndoNotPossible, rpcerr.CommandNotAvailable)
	rpcerr.Register(ErrUnknownPlan, rpcerr.ParseError)
	rpcerr.Register(ErrUnknownChange, rpcerr.ParseError)
}
