package orchestrator

import "strings"

// Interpret builds an InterpretedAnswer strictly from evidence: it never
// asserts the contents of a Missing (failed/timed-out) probe, and every
// fact it states is copied verbatim from a non-missing Evidence.Stdout,
// so the answer's grounding is satisfied by construction.
func Interpret(intent Intent, evidence []Evidence) InterpretedAnswer {
	var present, missing []Evidence
	for _, e := range evidence {
		if e.Missing {
			missing = append(missing, e)
		} else {
			present = append(present, e)
		}
	}

	var sb strings.Builder
	var sources []string
	for _, e := range present {
		sb.WriteString(e.Purpose)
		sb.WriteString(": ")
		sb.WriteString(firstNonEmptyLine(e.Stdout))
		sb.WriteString("\n")
		sources = append(sources, e.ProbeID)
	}
	for _, e := range missing {
		sb.WriteString(e.Purpose)
		sb.WriteString(": unavailable (probe did not return usable output)\n")
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		answer = "no evidence was gathered for this request"
	}

	achieved := len(present) > 0
	validation := 0.0
	if len(evidence) > 0 {
		validation = float64(len(present)) / float64(len(evidence))
	}

	confidence := ConfidenceLow
	switch {
	case validation >= 0.99:
		confidence = ConfidenceHigh
	case validation >= 0.5:
		confidence = ConfidenceMedium
	}

	var followups []string
	for _, e := range missing {
		followups = append(followups, "retry: "+e.ProbeID)
	}

	return InterpretedAnswer{
		Answer:               answer,
		Confidence:           confidence,
		Reasoning:            "derived directly from probe output observed during this request",
		Source:               sources,
		AchievedGoal:         achieved,
		ValidationConfidence: validation,
		FollowupSuggestions:  followups,
		ShortSummary:         shortSummary(intent, achieved),
	}
}

func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func shortSummary(intent Intent, achieved bool) string {
	if achieved {
		return string(intent.Domain) + " inspected"
	}
	return string(intent.Domain) + " inspection incomplete"
}
