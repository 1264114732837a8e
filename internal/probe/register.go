package probe

import "github.com/jjgarcianorway/anna-assistant-sub019/internal/rpcerr"

func init() {
	rpcerr.Register(ErrUnknownProbe, rpcerr.CommandNotAvailable)
	rpcerr.Register(ErrRejectedArgument, rpcerr.ParseError)
	rpcerr.Register(ErrRejectedFlag, rpcerr.ParseError)
}
