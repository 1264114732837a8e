// Package commands builds the annactl cobra command tree: one
// subcommand per RPC method, all sharing a persistent --socket/--timeout
// dialer and a --json output switch.
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/config"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/rpc"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/rpcerr"
)

var (
	socketPath string
	callTimeout time.Duration
	jsonOutput bool
)

// exitError carries a process exit code through cobra's error-returning
// RunE chain; Execute returns that code for main to pass to os.Exit,
// without printing cobra's own usage text for what are transport/wire
// failures, not CLI misuse.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

// NewRoot builds the annactl root command.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "annactl",
		Short:         "Control and query the annad daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&socketPath, "socket", config.Default().SocketPath, "annad RPC socket path")
	root.PersistentFlags().DurationVar(&callTimeout, "timeout", 10*time.Second, "RPC call timeout")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of a human-readable summary")

	root.AddCommand(
		newStatusCommand(),
		newShowCommand(),
		newAskCommand(),
		newPlanCommand(),
		newChangeCommand(),
		newDriftCommand(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code,
// mapping a wire error's code through rpcerr so the daemon and the CLI
// agree on exit codes (spec.md's closed error/exit-code table).
func Execute() int {
	root := NewRoot()
	if err := root.Execute(); err != nil {
		var ee *exitError
		if asExitError(err, &ee) {
			fmt.Fprintln(os.Stderr, "annactl:", ee.err)
			return ee.code
		}
		fmt.Fprintln(os.Stderr, "annactl:", err)
		return 1
	}
	return 0
}

func asExitError(err error, target **exitError) bool {
	e, ok := err.(*exitError)
	if !ok {
		return false
	}
	*target = e
	return true
}

// client builds an RPC client from the resolved global flags.
func client() *rpc.Client {
	return rpc.NewClient(socketPath, callTimeout)
}

// call invokes method via the shared client and wraps a *rpc.WireError in
// an *exitError carrying the right process exit code.
func call(method string, params, result any) error {
	if werr := client().Call(method, params, result); werr != nil {
		return &exitError{code: rpcerr.Code(werr.Code).ExitCode(), err: fmt.Errorf("%s: %s", werr.Code, werr.Message)}
	}
	return nil
}

// printResult renders result either as indented JSON (--json) or via the
// given human-readable render function.
func printResult(result any, human func()) {
	if jsonOutput {
		buf, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "annactl: marshal result:", err)
			return
		}
		fmt.Println(string(buf))
		return
	}
	human()
}
