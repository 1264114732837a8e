package parsers

import (
	"strconv"
	"strings"
)

// CPUTopology is the parsed output of the "lscpu" probe.
type CPUTopology struct {
	Architecture    string
	ModelName       string
	CPUCount        int
	CoresPerSocket  int // 0 when not reported
	ThreadsPerCore  int // 0 when not reported
	Sockets         int // 0 when not reported
	VendorID        string
}

// PhysicalCores returns CoresPerSocket * Sockets, or 0 if either is
// unknown.
func (c CPUTopology) PhysicalCores() int {
	if c.CoresPerSocket == 0 || c.Sockets == 0 {
		return 0
	}
	return c.CoresPerSocket * c.Sockets
}

// Hyperthreading reports whether more than one thread runs per physical
// core.
func (c CPUTopology) Hyperthreading() bool {
	return c.ThreadsPerCore > 1
}

// ParseCPUTopology parses "lscpu" output. Only the "CPU(s)" row is
// required; everything else, "Architecture" included, is optional and
// left at its zero value when absent.
func ParseCPUTopology(raw string) (CPUTopology, error) {
	fields := splitColonFields(raw)

	cpuStr, ok := fields["CPU(s)"]
	if !ok {
		return CPUTopology{}, &ParseError{ProbeID: "lscpu", Raw: raw, Reason: ReasonMissingSection}
	}
	cpuCount, err := strconv.Atoi(strings.TrimSpace(cpuStr))
	if err != nil {
		return CPUTopology{}, &ParseError{ProbeID: "lscpu", Raw: cpuStr, Reason: ReasonUnexpectedValue}
	}

	topo := CPUTopology{
		Architecture: fields["Architecture"],
		ModelName:    fields["Model name"],
		CPUCount:     cpuCount,
		VendorID:     fields["Vendor ID"],
	}

	if v, ok := fields["Core(s) per socket"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return CPUTopology{}, &ParseError{ProbeID: "lscpu", Raw: v, Reason: ReasonUnexpectedValue}
		}
		topo.CoresPerSocket = n
	}
	if v, ok := fields["Thread(s) per core"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return CPUTopology{}, &ParseError{ProbeID: "lscpu", Raw: v, Reason: ReasonUnexpectedValue}
		}
		topo.ThreadsPerCore = n
	}
	if v, ok := fields["Socket(s)"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return CPUTopology{}, &ParseError{ProbeID: "lscpu", Raw: v, Reason: ReasonUnexpectedValue}
		}
		topo.Sockets = n
	}

	return topo, nil
}

// splitColonFields splits "Key:    value" lines into a map, trimming
// surrounding whitespace from both key and value. Blank lines and lines
// without a colon are skipped, not errors: lscpu output format varies by
// distro/version and extra informational lines are common.
func splitColonFields(raw string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if key == "" {
			continue
		}
		out[key] = val
	}
	return out
}
