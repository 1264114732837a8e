package parsers

import (
	"regexp"
	"time"
)

// PackageEventKind is the closed set of package-manager log event kinds.
type PackageEventKind string

const (
	PackageInstalled PackageEventKind = "installed"
	PackageRemoved   PackageEventKind = "removed"
	PackageUpgraded  PackageEventKind = "upgraded"
)

// PackageEvent is one parsed line of a package-manager log (pacman's
// ALPM hook log format: "[timestamp] [ALPM] <verb> <name> (<version>)"
// or, for upgrades, "(<old> -> <new>)").
type PackageEvent struct {
	Timestamp  time.Time
	Kind       PackageEventKind
	Name       string
	OldVersion string // only set for PackageUpgraded
	NewVersion string
}

var pkgLogLineRe = regexp.MustCompile(
	`^\[([^\]]+)\]\s+\[ALPM\]\s+(installed|removed|upgraded)\s+(\S+)\s+\(([^)]*)\)\s*$`,
)

// ParsePackageLogLine parses a single package-manager log line. Lines
// that don't match a known event kind return (nil, nil): absence of a
// recognized event is not a parse error, per spec — the log also
// contains lines for other ALPM hooks and scriptlet output.
func ParsePackageLogLine(line string) (*PackageEvent, error) {
	m := pkgLogLineRe.FindStringSubmatch(line)
	if m == nil {
		return nil, nil
	}
	ts, err := time.Parse("2006-01-02T15:04:05-0700", m[1])
	if err != nil {
		return nil, &ParseError{ProbeID: "pkglog", Raw: line, Reason: ReasonUnexpectedValue}
	}

	kind := PackageEventKind(m[2])
	name := m[3]
	versionField := m[4]

	ev := &PackageEvent{Timestamp: ts, Kind: kind, Name: name}
	if kind == PackageUpgraded {
		old, newVer, ok := splitArrow(versionField)
		if !ok {
			return nil, &ParseError{ProbeID: "pkglog", Raw: line, Reason: ReasonMalformedRow}
		}
		ev.OldVersion, ev.NewVersion = old, newVer
	} else {
		ev.NewVersion = versionField
	}
	return ev, nil
}

var arrowRe = regexp.MustCompile(`^(\S+)\s*->\s*(\S+)$`)

func splitArrow(s string) (old, newVer string, ok bool) {
	m := arrowRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ParsePackageLog parses every line of a multi-line package-manager log,
// skipping non-event lines. Offsets into the raw log are the caller's
// responsibility (see statepaths/Offset handling).
func ParsePackageLog(raw string) ([]PackageEvent, error) {
	var events []PackageEvent
	for _, line := range splitNonEmptyLines(raw) {
		ev, err := ParsePackageLogLine(line)
		if err != nil {
			return nil, err
		}
		if ev != nil {
			events = append(events, *ev)
		}
	}
	return events, nil
}
