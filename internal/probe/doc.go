// Package probe safely invokes whitelisted, read-only external commands
// and returns a structured result: exit code, bounded stdout/stderr,
// elapsed time, and a timed-out flag. It enforces an immutable,
// startup-defined whitelist of (program, positional args template,
// allowed flags, requires_root, default timeout) entries; arguments are
// substituted by name and rejected if they contain shell metacharacters.
//
// Concurrency
//
// Run is safe for concurrent use. Calls with identical (probe id,
// params, flags) bindings are coalesced via a single-flight group, so a
// burst of requests for the same evidence produces one child process and
// one Result shared by every caller.
//
// Error model
//
// Run never panics; a nonzero exit code is returned as data in Result,
// not as an error. The closed set of returned errors is ErrSpawnFailed,
// ErrRejectedArgument, ErrRejectedFlag, ErrUnknownProbe, and ErrTimeout.
package probe
