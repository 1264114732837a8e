// Command annactl is the CLI client for annad.
//
// Usage:
//
//	annactl [--socket path] [--timeout dur] [--json] <command> [args...]
//
// Commands:
//
//	status                 daemon lifecycle state, uptime, active requests
//	show <key>             a single Fact Store entry
//	ask <utterance>         [--debug]  ask a question about the system
//	plan show <plan-id>     show a pending plan awaiting confirmation
//	plan confirm <plan-id>  confirm and execute a pending plan
//	change list             list all recorded changes
//	change undo <change-id> roll back a previously applied change
//	drift                   recorded vs. live package inventory
//
// Every subcommand dials the daemon's Unix socket fresh, mirroring a CLI
// invocation's lifetime; a transport failure is reported as
// DAEMON_UNAVAILABLE and the process exits with the code the wire
// protocol assigns that error, so scripts can branch on annactl's exit
// status without parsing its output.
package main
