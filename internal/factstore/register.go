package factstore

import "github.com/jjgarcianorway/anna-assistant-sub019/internal/rpcerr"

func init() {
	rpcerr.Register(ErrCorrupt, rpcerr.GeneralError)
	rpcerr.Register(ErrIO, rpcerr.GeneralError)
}
