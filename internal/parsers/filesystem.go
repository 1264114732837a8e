package parsers

import (
	"strconv"
	"strings"
)

// FilesystemRow is one data row of "df -h" output, omitting tmpfs and
// devtmpfs filesystems.
type FilesystemRow struct {
	Filesystem string
	Size       string
	Used       string
	Avail      string
	UsePercent int // 0-100
	MountedOn  string
}

// excludedFilesystemTypes are never surfaced as evidence: they are
// ephemeral, in-memory filesystems, not disk state worth tracking.
var excludedFilesystemTypes = map[string]bool{
	"tmpfs":     true,
	"devtmpfs":  true,
}

// ParseFilesystemTable parses "df -h" output, optionally with -T. With -T
// the second column is the filesystem type; without it the Filesystem
// column (e.g. "tmpfs") is matched instead. Either way tmpfs/devtmpfs rows
// are dropped, and the type is not retained in FilesystemRow.
func ParseFilesystemTable(raw string) ([]FilesystemRow, error) {
	lines := splitNonEmptyLines(raw)
	if len(lines) == 0 {
		return nil, &ParseError{ProbeID: "df_h", Raw: raw, Reason: ReasonMissingSection}
	}

	header := strings.Fields(lines[0])
	hasType := len(header) > 1 && strings.EqualFold(header[1], "Type")

	var rows []FilesystemRow
	for i, line := range lines[1:] {
		fields := strings.Fields(line)
		minFields := 6
		if hasType {
			minFields = 7
		}
		if len(fields) < minFields {
			return nil, &ParseError{ProbeID: "df_h", LineNum: i + 2, Raw: line, Reason: ReasonMalformedRow}
		}

		fsType := fields[0]
		idx := 1
		if hasType {
			fsType = fields[1]
			idx = 2
		}
		if excludedFilesystemTypes[fsType] {
			continue
		}

		size, used, avail, pct, mount := fields[idx], fields[idx+1], fields[idx+2], fields[idx+3], strings.Join(fields[idx+4:], " ")
		pct = strings.TrimSuffix(pct, "%")
		n, err := strconv.Atoi(pct)
		if err != nil || n < 0 || n > 100 {
			return nil, &ParseError{ProbeID: "df_h", LineNum: i + 2, Raw: line, Reason: ReasonNumericOutOfRange}
		}

		rows = append(rows, FilesystemRow{
			Filesystem: fields[0],
			Size:       size,
			Used:       used,
			Avail:      avail,
			UsePercent: n,
			MountedOn:  mount,
		})
	}
	return rows, nil
}

func splitNonEmptyLines(raw string) []string {
	var out []string
	for _, l := range strings.Split(raw, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
