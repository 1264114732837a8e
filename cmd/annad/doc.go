// Command annad is the daemon process.
//
// Usage:
//
//	annad -config /etc/anna/annad.toml -shutdown-secs 5
//
// Flags:
//
//	-config          path to the TOML configuration file
//	-shutdown-secs   graceful shutdown timeout in seconds (default 5)
//
// Behavior:
//
// Loads configuration, acquires the single-instance state lock, wires
// the Fact Store, Probe Runtime, Orchestrator, Policy Engine, and Change
// Engine together, and serves them over a Unix-domain socket until
// SIGINT/SIGTERM. The binary does not daemonize itself; a systemd unit
// is the expected way to run it persistently.
package main
