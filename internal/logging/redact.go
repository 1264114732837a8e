package logging

import (
	"fmt"
	"regexp"
	"strings"
)

// truncationLimit bounds the length of any single logged string.
const truncationLimit = 4096

// secretKeyPattern matches field keys that should have their values
// redacted outright regardless of content (password, api key, token,
// bearer, secret, private-key).
var secretKeyPattern = regexp.MustCompile(`(?i)(password|passwd|api[_-]?key|token|bearer|secret|private[_-]?key)`)

// secretValuePatterns matches values that look like secrets even when the
// field key doesn't hint at it: bearer tokens, private-key PEM blocks, and
// database URLs with embedded credentials.
var secretValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/-]+=*`),
	regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`),
	regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://[^\s:/@]+:[^\s:/@]+@[^\s/]+`),
}

// sensitivePathFragments are path substrings whose content must never be
// logged, even inside an otherwise-innocuous field.
var sensitivePathFragments = []string{
	".ssh/", ".gnupg/", ".aws/credentials", ".netrc", "id_rsa", "id_ed25519",
}

const redactedPlaceholder = "[REDACTED]"

// Redact walks a zap-style alternating key/value slice and returns a copy
// with sensitive values replaced and long strings truncated. It is the
// single mandatory sink every log call passes through (spec: redaction
// applied at serialization time, not by caller convention).
func Redact(kv []any) []any {
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, _ := out[i].(string)
		out[i+1] = redactValue(key, out[i+1])
	}
	return out
}

func redactValue(key string, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if secretKeyPattern.MatchString(key) {
		return redactedPlaceholder
	}
	if containsSensitivePath(s) {
		return redactedPlaceholder
	}
	s = RedactString(s)
	return truncate(s)
}

// RedactString applies value-pattern redaction to a free-form string, used
// for log message bodies and for string field values.
func RedactString(s string) string {
	for _, p := range secretValuePatterns {
		s = p.ReplaceAllString(s, redactedPlaceholder)
	}
	return s
}

func containsSensitivePath(s string) bool {
	for _, frag := range sensitivePathFragments {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}

func truncate(s string) string {
	if len(s) <= truncationLimit {
		return s
	}
	return fmt.Sprintf("%s[TRUNCATED] (original: %d bytes)", s[:truncationLimit], len(s))
}
