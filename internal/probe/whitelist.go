package probe

import (
	"fmt"
	"regexp"
	"time"
)

// Spec is the immutable whitelist entry for one probe id: the program to
// run, its fixed positional argument template, the set of flags callers
// may request, whether it needs root, and its default timeout.
type Spec struct {
	ID              string
	Program         string
	PositionalArgs  []string
	AllowedFlags    map[string]bool
	RequiresRoot    bool
	DefaultTimeout  time.Duration
}

// rejectedChars matches shell metacharacters that must never appear in a
// substituted parameter value.
var rejectedChars = regexp.MustCompile(`[|;&` + "`" + `$()<>\n\r]`)

// Whitelist is the immutable, startup-defined table of runnable probes.
type Whitelist struct {
	specs map[string]Spec
}

// NewWhitelist builds a Whitelist from specs, indexed by ID. Panics on a
// duplicate ID: that is a programmer error at startup, not a runtime
// condition.
func NewWhitelist(specs ...Spec) *Whitelist {
	w := &Whitelist{specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		if _, exists := w.specs[s.ID]; exists {
			panic(fmt.Sprintf("probe: duplicate whitelist id %q", s.ID))
		}
		w.specs[s.ID] = s
	}
	return w
}

// Lookup returns the Spec for id, or ErrUnknownProbe.
func (w *Whitelist) Lookup(id string) (Spec, error) {
	s, ok := w.specs[id]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrUnknownProbe, id)
	}
	return s, nil
}

// ValidateParam rejects a parameter value containing shell
// metacharacters or a newline, per spec.
func ValidateParam(value string) error {
	if rejectedChars.MatchString(value) {
		return fmt.Errorf("%w: value contains a rejected character", ErrRejectedArgument)
	}
	return nil
}

// ValidateFlag rejects a flag outside the Spec's allowed set.
func (s Spec) ValidateFlag(flag string) error {
	if !s.AllowedFlags[flag] {
		return fmt.Errorf("%w: %s", ErrRejectedFlag, flag)
	}
	return nil
}

// DefaultWhitelist returns the whitelist of read-only host-inspection
// probes this system ships with. Probe-specific flags are deliberately
// narrow: each probe offers exactly the flags its parser understands.
func DefaultWhitelist() *Whitelist {
	return NewWhitelist(
		Spec{
			ID:             "lscpu",
			Program:        "lscpu",
			AllowedFlags:   map[string]bool{},
			DefaultTimeout: 3 * time.Second,
		},
		Spec{
			ID:             "free_h",
			Program:        "free",
			PositionalArgs: nil,
			AllowedFlags:   map[string]bool{"-h": true},
			DefaultTimeout: 3 * time.Second,
		},
		Spec{
			ID:             "df_h",
			Program:        "df",
			AllowedFlags:   map[string]bool{"-h": true, "-T": true},
			DefaultTimeout: 5 * time.Second,
		},
		Spec{
			ID:             "ps_aux",
			Program:        "ps",
			AllowedFlags:   map[string]bool{"aux": true},
			DefaultTimeout: 5 * time.Second,
		},
		Spec{
			ID:             "ip_addr",
			Program:        "ip",
			PositionalArgs: []string{"addr"},
			AllowedFlags:   map[string]bool{},
			DefaultTimeout: 3 * time.Second,
		},
		Spec{
			ID:             "systemctl_status",
			Program:        "systemctl",
			PositionalArgs: []string{"status"},
			AllowedFlags:   map[string]bool{"--no-pager": true},
			DefaultTimeout: 5 * time.Second,
		},
		Spec{
			ID:             "systemctl_enable",
			Program:        "systemctl",
			PositionalArgs: []string{"enable", "$unit"},
			AllowedFlags:   map[string]bool{},
			RequiresRoot:   true,
			DefaultTimeout: 10 * time.Second,
		},
		Spec{
			ID:             "systemctl_disable",
			Program:        "systemctl",
			PositionalArgs: []string{"disable", "$unit"},
			AllowedFlags:   map[string]bool{},
			RequiresRoot:   true,
			DefaultTimeout: 10 * time.Second,
		},
		Spec{
			ID:             "systemctl_start",
			Program:        "systemctl",
			PositionalArgs: []string{"start", "$unit"},
			AllowedFlags:   map[string]bool{},
			RequiresRoot:   true,
			DefaultTimeout: 30 * time.Second,
		},
		Spec{
			ID:             "systemctl_stop",
			Program:        "systemctl",
			PositionalArgs: []string{"stop", "$unit"},
			AllowedFlags:   map[string]bool{},
			RequiresRoot:   true,
			DefaultTimeout: 30 * time.Second,
		},
		Spec{
			ID:             "pacman_s_noconfirm",
			Program:        "pacman",
			PositionalArgs: []string{"$package"},
			AllowedFlags:   map[string]bool{"-S": true, "--noconfirm": true},
			RequiresRoot:   true,
			DefaultTimeout: 120 * time.Second,
		},
		Spec{
			ID:             "pacman_rns_noconfirm",
			Program:        "pacman",
			PositionalArgs: []string{"$package"},
			AllowedFlags:   map[string]bool{"-Rns": true, "--noconfirm": true},
			RequiresRoot:   true,
			DefaultTimeout: 60 * time.Second,
		},
		Spec{
			ID:             "pacman_qq",
			Program:        "pacman",
			AllowedFlags:   map[string]bool{"-Qq": true},
			DefaultTimeout: 10 * time.Second,
		},
	)
}
