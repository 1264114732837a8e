package rpc

import "github.com/jjgarcianorway/anna-assistant-sub019/internal/rpcerr"

func init() {
	rpcerr.Register(errBadParams, rpcerr.ParseError)
}
