package orchestrator

import "strings"

// keywordTableVersion is stamped so a future rewording of the table can
// be distinguished in transcripts; bump it whenever the table changes.
const keywordTableVersion = 1

// domainKeywords maps a domain to the substrings (already lowercase) that
// route an utterance to it. Classification is deterministic: the same
// utterance always yields the same intent, because this table is fixed
// and matching is plain substring containment checked in table order.
var domainKeywords = []struct {
	domain   Domain
	keywords []string
}{
	{DomainHardware, []string{"cpu", "processor", "core count", "memory", "ram"}},
	{DomainStorage, []string{"disk", "storage", "filesystem", "partition", "space"}},
	{DomainNetwork, []string{"network", "interface", "ip address", "connectivity"}},
	{DomainServices, []string{"service", "systemd", "daemon status"}},
	{DomainPackages, []string{"package", "install", "upgrade", "remove", "uninstall"}},
	{DomainDevices, []string{"device", "peripheral", "usb"}},
	{DomainKernel, []string{"kernel", "module", "sysctl"}},
	{DomainDesktop, []string{"desktop", "window manager", "display server"}},
	{DomainConfig, []string{"config", "configuration", "setting"}},
}

var goalKeywords = []struct {
	goal     Goal
	keywords []string
}{
	{GoalChange, []string{"install", "remove", "uninstall", "enable", "disable", "fix", "set "}},
	{GoalCheck, []string{"is ", "check", "verify", "does "}},
	{GoalExplain, []string{"why", "explain", "how does"}},
	{GoalInspect, []string{"show", "what", "list", "how much", "how many"}},
}

// Classify maps an utterance to an Intent, deterministically, using the
// fixed version-stamped keyword table above. Unmatched text classifies
// as (GoalOther, DomainOther).
func Classify(utterance string) Intent {
	lower := strings.ToLower(utterance)

	domain := DomainOther
	for _, row := range domainKeywords {
		for _, kw := range row.keywords {
			if strings.Contains(lower, kw) {
				domain = row.domain
				break
			}
		}
		if domain != DomainOther {
			break
		}
	}

	goal := GoalOther
	for _, row := range goalKeywords {
		for _, kw := range row.keywords {
			if strings.Contains(lower, kw) {
				goal = row.goal
				break
			}
		}
		if goal != GoalOther {
			break
		}
	}

	return Intent{Goal: goal, Domain: domain}
}
