package parsers

import (
	"regexp"
	"strings"
)

// InterfaceRow is one network interface parsed from "ip addr" output.
type InterfaceRow struct {
	Name      string
	State     string // "UP" if the header flags include UP, else "DOWN"
	IPv4      string // CIDR form, e.g. "192.168.1.10/24"; empty if none
	IPv6      string // CIDR form, excluding link-local (fe80::/10); empty if none
	HasIPv6   bool
}

var ifaceHeaderRe = regexp.MustCompile(`^\d+:\s+([^:@]+)(?:@\S+)?:\s+<([^>]*)>`)
var inetRe = regexp.MustCompile(`^\s*inet\s+(\S+)`)
var inet6Re = regexp.MustCompile(`^\s*inet6\s+(\S+)`)

// ParseInterfaceTable parses "ip addr" output into one record per
// interface. Parsing is stateful: each interface header line starts a new
// record, and subsequent indented "inet"/"inet6" lines attach to it until
// the next header line.
func ParseInterfaceTable(raw string) ([]InterfaceRow, error) {
	lines := strings.Split(raw, "\n")

	var rows []InterfaceRow
	var current *InterfaceRow

	flush := func() {
		if current != nil {
			rows = append(rows, *current)
			current = nil
		}
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := ifaceHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			flags := m[2]
			state := "DOWN"
			if strings.Contains(flags, "UP") {
				state = "UP"
			}
			current = &InterfaceRow{Name: strings.TrimSpace(m[1]), State: state}
			continue
		}
		if current == nil {
			return nil, &ParseError{ProbeID: "ip_addr", LineNum: i + 1, Raw: line, Reason: ReasonMalformedRow}
		}
		if m := inetRe.FindStringSubmatch(line); m != nil {
			current.IPv4 = m[1]
			continue
		}
		if m := inet6Re.FindStringSubmatch(line); m != nil {
			addr := m[1]
			if isLinkLocalIPv6(addr) {
				continue
			}
			current.IPv6 = addr
			current.HasIPv6 = true
			continue
		}
		// Other lines (link/ether, valid_lft, etc.) are informational
		// and intentionally ignored.
	}
	flush()

	if len(rows) == 0 {
		return nil, &ParseError{ProbeID: "ip_addr", Raw: raw, Reason: ReasonMissingSection}
	}
	return rows, nil
}

func isLinkLocalIPv6(cidr string) bool {
	addr := cidr
	if idx := strings.Index(cidr, "/"); idx >= 0 {
		addr = cidr[:idx]
	}
	return strings.HasPrefix(strings.ToLower(addr), "fe80:")
}
