// Package config loads the daemon's layered configuration: compiled-in
// defaults, then an optional TOML file that overrides them field-by-field,
// mirroring the teacher's pattern of filling zero-value ServerOptions
// fields with defaults at construction time. There is no command-line or
// environment layer over individual values.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds everything the daemon needs to start.
type Config struct {
	// SocketPath is the Unix-domain socket the RPC server listens on.
	SocketPath string `toml:"socket_path"`
	// StateDir is the root directory for facts.json, changes/, backups/,
	// logs/, and offsets/.
	StateDir string `toml:"state_dir"`
	// PrivilegedUIDs is the set of UIDs allowed to call mutating RPC
	// methods (Change Engine confirm/undo).
	PrivilegedUIDs []int `toml:"privileged_uids"`
	// ProbeTimeout is the default per-invocation probe timeout.
	ProbeTimeout time.Duration `toml:"-"`
	ProbeTimeoutMS int64 `toml:"probe_timeout_ms"`
	// OrchestratorDeadline bounds a single request end-to-end.
	OrchestratorDeadline time.Duration `toml:"-"`
	OrchestratorDeadlineMS int64 `toml:"orchestrator_deadline_ms"`
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level"`
	// LogRetentionDays controls how long rolled JSONL logs are kept
	// before being eligible for pruning by an external logrotate-style
	// job; the daemon itself only ever appends.
	LogRetentionDays int `toml:"log_retention_days"`
}

// Default returns the compiled-in defaults.
func Default() Config {
	return Config{
		SocketPath:             "/run/anna/annad.sock",
		StateDir:               "/var/lib/anna",
		PrivilegedUIDs:         []int{0},
		ProbeTimeout:           5 * time.Second,
		OrchestratorDeadline:   30 * time.Second,
		LogLevel:               "info",
		LogRetentionDays:       30,
	}
}

// LoadFile overlays values from a TOML file onto base. A missing file is
// not an error: the base configuration is returned unchanged.
func LoadFile(base Config, path string) (Config, error) {
	if path == "" {
		return base, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}
	var raw struct {
		SocketPath             *string `toml:"socket_path"`
		StateDir               *string `toml:"state_dir"`
		PrivilegedUIDs         []int   `toml:"privileged_uids"`
		ProbeTimeoutMS         *int64  `toml:"probe_timeout_ms"`
		OrchestratorDeadlineMS *int64  `toml:"orchestrator_deadline_ms"`
		LogLevel               *string `toml:"log_level"`
		LogRetentionDays       *int    `toml:"log_retention_days"`
	}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return base, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if raw.SocketPath != nil {
		base.SocketPath = *raw.SocketPath
	}
	if raw.StateDir != nil {
		base.StateDir = *raw.StateDir
	}
	if len(raw.PrivilegedUIDs) > 0 {
		base.PrivilegedUIDs = raw.PrivilegedUIDs
	}
	if raw.ProbeTimeoutMS != nil {
		base.ProbeTimeout = time.Duration(*raw.ProbeTimeoutMS) * time.Millisecond
	}
	if raw.OrchestratorDeadlineMS != nil {
		base.OrchestratorDeadline = time.Duration(*raw.OrchestratorDeadlineMS) * time.Millisecond
	}
	if raw.LogLevel != nil {
		base.LogLevel = *raw.LogLevel
	}
	if raw.LogRetentionDays != nil {
		base.LogRetentionDays = *raw.LogRetentionDays
	}
	return base, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.SocketPath == "" {
		return fmt.Errorf("config: socket_path must not be empty")
	}
	if c.StateDir == "" {
		return fmt.Errorf("config: state_dir must not be empty")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("config: probe_timeout_ms must be positive")
	}
	if c.OrchestratorDeadline <= 0 {
		return fmt.Errorf("config: orchestrator_deadline_ms must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	if len(c.PrivilegedUIDs) == 0 {
		return fmt.Errorf("config: privileged_uids must not be empty")
	}
	return nil
}

// IsPrivilegedUID reports whether uid is authorized for mutating RPC
// methods.
func (c Config) IsPrivilegedUID(uid int) bool {
	for _, u := range c.PrivilegedUIDs {
		if u == uid {
			return true
		}
	}
	return false
}
