package changeengine

import (
	"os"
	"regexp"
	"strings"
)

// ensureLine returns content with line added exactly once: if a
// regex-anchored match for line already exists as a whole line, content
// is returned unchanged, so applying ensureLine twice is indistinguishable
// from applying it once.
func ensureLine(content, line string) string {
	pattern := "^" + regexp.QuoteMeta(line) + "$"
	re := regexp.MustCompile("(?m)" + pattern)
	if re.MatchString(content) {
		return content
	}
	return appendLine(content, line)
}

// appendLine adds line to content unconditionally, first adding a newline
// to non-empty content that lacks one, and ending the result with a
// newline after line.
func appendLine(content, line string) string {
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + line + "\n"
}

// readFileOrEmpty reads path, treating a missing file as empty content
// (ensure_line/append_line may target a file that doesn't exist yet).
func readFileOrEmpty(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(buf), nil
}
