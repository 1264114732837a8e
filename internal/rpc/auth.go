package rpc

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// ErrPeerCred is returned when SO_PEERCRED cannot be read from a
// connection; a privileged method never proceeds without a verified uid.
var ErrPeerCred = fmt.Errorf("rpc: could not read peer credentials")

// peerUID returns the connecting process's UID via SO_PEERCRED, the same
// mechanism sshd and systemd use to authorize local Unix-socket peers.
func peerUID(conn *net.UnixConn) (uint32, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPeerCred, err)
	}

	var ucred *unix.Ucred
	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		ucred, sockErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if ctrlErr != nil {
		return 0, fmt.Errorf("%w: %v", ErrPeerCred, ctrlErr)
	}
	if sockErr != nil {
		return 0, fmt.Errorf("%w: %v", ErrPeerCred, sockErr)
	}
	return ucred.Uid, nil
}
