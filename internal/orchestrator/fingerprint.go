package orchestrator

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// canonicalFingerprintInput is the exact shape hashed for a plan
// fingerprint: the utterance plus every evidence content hash, sorted so
// identical evidence in a different observation order still fingerprints
// identically.
type canonicalFingerprintInput struct {
	Utterance     string   `json:"utterance"`
	EvidenceHashes []string `json:"evidence_hashes"`
}

// Fingerprint computes a stable identifier for (utterance, evidence):
// identical inputs always produce an identical fingerprint, so tests can
// assert equality and transcripts can correlate repeated requests.
// Returns the full 32-byte digest and its first-16-hex-byte short form.
func Fingerprint(utterance string, evidence []Evidence) (full [32]byte, short string) {
	hashes := make([]string, len(evidence))
	for i, e := range evidence {
		hashes[i] = contentHash(e)
	}
	sort.Strings(hashes)

	input := canonicalFingerprintInput{Utterance: utterance, EvidenceHashes: hashes}
	buf, _ := json.Marshal(input) // fixed field order by struct tags; never fails for this shape
	full = sha256.Sum256(buf)
	short = hex.EncodeToString(full[:])[:16]
	return full, short
}

func contentHash(e Evidence) string {
	h := sha256.Sum256([]byte(e.ProbeID + "\x1f" + e.Stdout))
	return hex.EncodeToString(h[:])
}
