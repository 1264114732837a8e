package parsers

import (
	"strconv"
	"strings"
)

// ProcessRow is one row of "ps aux" output, after dropping the header.
type ProcessRow struct {
	User    string
	PID     int
	CPUPct  float64
	MemPct  float64
	RSSHuman string // formatted to human-readable, e.g. "12.3M"
	Command string // join of remaining columns
}

// ParseProcessTable parses "ps aux" output. The standard column order is
// USER PID %CPU %MEM VSZ RSS TTY STAT START TIME COMMAND.
func ParseProcessTable(raw string) ([]ProcessRow, error) {
	lines := splitNonEmptyLines(raw)
	if len(lines) == 0 {
		return nil, &ParseError{ProbeID: "ps_aux", Raw: raw, Reason: ReasonMissingSection}
	}

	var rows []ProcessRow
	for i, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 11 {
			return nil, &ParseError{ProbeID: "ps_aux", LineNum: i + 2, Raw: line, Reason: ReasonMalformedRow}
		}

		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, &ParseError{ProbeID: "ps_aux", LineNum: i + 2, Raw: fields[1], Reason: ReasonUnexpectedValue}
		}
		cpu, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, &ParseError{ProbeID: "ps_aux", LineNum: i + 2, Raw: fields[2], Reason: ReasonUnexpectedValue}
		}
		memPct, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, &ParseError{ProbeID: "ps_aux", LineNum: i + 2, Raw: fields[3], Reason: ReasonUnexpectedValue}
		}
		rssKB, err := strconv.ParseInt(fields[5], 10, 64)
		if err != nil {
			return nil, &ParseError{ProbeID: "ps_aux", LineNum: i + 2, Raw: fields[5], Reason: ReasonUnexpectedValue}
		}

		rows = append(rows, ProcessRow{
			User:     fields[0],
			PID:      pid,
			CPUPct:   cpu,
			MemPct:   memPct,
			RSSHuman: humanizeKB(rssKB),
			Command:  strings.Join(fields[10:], " "),
		})
	}
	return rows, nil
}

// humanizeKB formats a kilobyte value (ps's native RSS unit) as a
// human-readable size, tie-breaking binary per the package convention.
func humanizeKB(kb int64) string {
	bytes := float64(kb) * 1024
	units := []struct {
		suffix string
		size   float64
	}{
		{"G", 1024 * 1024 * 1024},
		{"M", 1024 * 1024},
		{"K", 1024},
	}
	for _, u := range units {
		if bytes >= u.size {
			val := bytes / u.size
			return strconv.FormatFloat(roundTo(val, 1), 'f', -1, 64) + u.suffix
		}
	}
	return strconv.FormatInt(int64(bytes), 10) + "B"
}

func roundTo(v float64, decimals int) float64 {
	mult := 1.0
	for i := 0; i < decimals; i++ {
		mult *= 10
	}
	return float64(int64(v*mult+0.5)) / mult
}
