package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/rpcerr"
)

func TestCallWrapsWireErrorWithExitCode(t *testing.T) {
	socketPath = "/nonexistent/annad.sock"
	callTimeout = 0

	err := call("status", nil, nil)
	require.Error(t, err)

	var ee *exitError
	require.True(t, asExitError(err, &ee))
	require.Equal(t, rpcerr.DaemonUnavailable.ExitCode(), ee.code)
}

func TestAsExitErrorRejectsPlainErrors(t *testing.T) {
	var ee *exitError
	require.False(t, asExitError(errors.New("boom"), &ee))
}
