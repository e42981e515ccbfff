package policy

import (
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

// ApplyPolicy filters and adjusts findings for domain according to cfg.
//
//   - a disabled domain drops every finding
//   - a disabled rule drops that rule's findings
//   - a severity override replaces the severity of FAILED findings only;
//     PASSED findings keep their INFORMATIONAL label
//   - min_severity drops FAILED findings ranked below the floor
//
// The input slice is not modified.
func ApplyPolicy(findings []models.Finding, domain string, cfg *PolicyConfig) []models.Finding {
	if cfg == nil {
		return findings
	}

	if !cfg.DomainEnabled(domain) {
		return []models.Finding{}
	}

	minRank := 0
	if sev, ok := ParseSeverity(cfg.Domains[domain].MinSeverity); ok {
		minRank = Rank(sev)
	}

	result := make([]models.Finding, 0, len(findings))
	for _, f := range findings {
		if !cfg.RuleEnabled(f.RuleID) {
			continue
		}

		if !f.Passed() {
			if sev, ok := ParseSeverity(cfg.Rules[f.RuleID].Severity); ok {
				f.Severity = sev
			}
			if Rank(f.Severity) < minRank {
				continue
			}
		}

		result = append(result, f)
	}

	return result
}
