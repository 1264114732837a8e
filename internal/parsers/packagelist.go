package parsers

import "strings"

// ParsePackageList parses pacman -Qq output: one package name per line,
// no versions. Used for inventory-drift comparisons against the Fact
// Store's recorded package set.
func ParsePackageList(raw string) ([]string, error) {
	var names []string
	for _, line := range splitNonEmptyLines(raw) {
		name := strings.TrimSpace(line)
		if strings.ContainsAny(name, " \t") {
			return nil, &ParseError{ProbeID: "pacman_qq", Raw: line, Reason: ReasonMalformedRow}
		}
		names = append(names, name)
	}
	return names, nil
}
