package parsers

import (
	"math"
	"strconv"
	"strings"
)

// Memory is the parsed output of the "free -h" probe, with every size
// converted to an exact byte count.
type Memory struct {
	TotalBytes     int64
	UsedBytes      int64
	FreeBytes      int64
	SharedBytes    int64
	BuffCacheBytes int64
	AvailableBytes int64

	SwapTotalBytes *int64
	SwapFreeBytes  *int64
	SwapUsedBytes  *int64
}

// unitMultiplier maps a human-readable size suffix to its byte
// multiplier. Per the tie-break rule, ambiguous unit letters ("K", "M",
// "G", "T" without an explicit "i") are always interpreted as binary
// (power-of-1024), matching the explicit "Ki"/"Mi"/"Gi"/"Ti" forms.
var unitMultiplier = map[string]float64{
	"B": 1,
	"K": 1024, "Ki": 1024,
	"M": 1024 * 1024, "Mi": 1024 * 1024,
	"G": 1024 * 1024 * 1024, "Gi": 1024 * 1024 * 1024,
	"T": 1024 * 1024 * 1024 * 1024, "Ti": 1024 * 1024 * 1024 * 1024,
}

// ParseMemory parses "free -h" output. The "Mem" row is mandatory; a
// missing "Swap" row is acceptable and leaves the Swap* fields nil.
func ParseMemory(raw string) (Memory, error) {
	lines := strings.Split(raw, "\n")
	if len(lines) == 0 {
		return Memory{}, &ParseError{ProbeID: "free_h", Raw: raw, Reason: ReasonMissingSection}
	}

	header := strings.Fields(lines[0])
	if len(header) == 0 {
		return Memory{}, &ParseError{ProbeID: "free_h", Raw: lines[0], Reason: ReasonMissingSection}
	}

	var mem Memory
	sawMem := false

	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		label, rest, ok := splitLabel(line)
		if !ok {
			continue
		}
		values := strings.Fields(rest)

		switch {
		case label == "Mem":
			bytesVals, err := parseSizes(values)
			if err != nil {
				return Memory{}, err
			}
			if err := assignMemRow(&mem, header, bytesVals); err != nil {
				return Memory{}, err
			}
			sawMem = true
		case label == "Swap":
			bytesVals, err := parseSizes(values)
			if err != nil {
				return Memory{}, err
			}
			if err := assignSwapRow(&mem, header, bytesVals); err != nil {
				return Memory{}, err
			}
		}
	}

	if !sawMem {
		return Memory{}, &ParseError{ProbeID: "free_h", Raw: raw, Reason: ReasonMissingSection}
	}
	return mem, nil
}

func splitLabel(line string) (label, rest string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), line[idx+1:], true
}

func parseSizes(values []string) ([]int64, error) {
	out := make([]int64, len(values))
	for i, v := range values {
		b, err := parseHumanSize(v)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// parseHumanSize converts a human-readable size like "15Gi", "8.2Gi", or
// "256Mi" into an exact byte count, rounding half-up.
func parseHumanSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ParseError{ProbeID: "free_h", Raw: s, Reason: ReasonMalformedRow}
	}
	i := len(s)
	for i > 0 && !(s[i-1] >= '0' && s[i-1] <= '9') && s[i-1] != '.' {
		i--
	}
	numPart, unitPart := s[:i], strings.TrimSpace(s[i:])
	if numPart == "" {
		return 0, &ParseError{ProbeID: "free_h", Raw: s, Reason: ReasonMalformedRow}
	}
	n, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, &ParseError{ProbeID: "free_h", Raw: s, Reason: ReasonUnexpectedValue}
	}
	if unitPart == "" {
		return int64(math.Floor(n + 0.5)), nil
	}
	mult, ok := unitMultiplier[unitPart]
	if !ok {
		return 0, &ParseError{ProbeID: "free_h", Raw: s, Reason: ReasonUnexpectedValue}
	}
	return int64(math.Floor(n*mult + 0.5)), nil
}

func assignMemRow(mem *Memory, header []string, values []int64) error {
	for i, name := range header {
		if i >= len(values) {
			break
		}
		switch strings.ToLower(name) {
		case "total":
			mem.TotalBytes = values[i]
		case "used":
			mem.UsedBytes = values[i]
		case "free":
			mem.FreeBytes = values[i]
		case "shared":
			mem.SharedBytes = values[i]
		case "buff/cache":
			mem.BuffCacheBytes = values[i]
		case "available":
			mem.AvailableBytes = values[i]
		}
	}
	return nil
}

func assignSwapRow(mem *Memory, header []string, values []int64) error {
	// Swap rows only ever report total/used/free, in that order,
	// positionally aligned with the first three header columns.
	for i := 0; i < len(values) && i < len(header) && i < 3; i++ {
		v := values[i]
		switch strings.ToLower(header[i]) {
		case "total":
			mem.SwapTotalBytes = &v
		case "used":
			mem.SwapUsedBytes = &v
		case "free":
			mem.SwapFreeBytes = &v
		}
	}
	return nil
}
