package policy

import (
	"strings"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

// severityRank orders severities for threshold comparisons.
// CRITICAL (5) > HIGH (4) > MEDIUM (3) > LOW (2) > INFORMATIONAL (1).
var severityRank = map[models.Severity]int{
	models.SeverityCritical:      5,
	models.SeverityHigh:          4,
	models.SeverityMedium:        3,
	models.SeverityLow:           2,
	models.SeverityInformational: 1,
}

// ParseSeverity maps a policy-file severity string to its canonical label.
// Matching is case-insensitive and "INFO" is accepted for INFORMATIONAL.
func ParseSeverity(s string) (models.Severity, bool) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if upper == "INFO" {
		return models.SeverityInformational, true
	}
	sev := models.Severity(upper)
	if _, ok := severityRank[sev]; !ok {
		return "", false
	}
	return sev, true
}

// Rank returns the comparison rank of sev, treating the legacy mixed-case
// "Low" label as LOW. Unknown labels rank 0.
func Rank(sev models.Severity) int {
	return severityRank[sev.Canonical()]
}
