package policy

import (
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

// ShouldFail reports whether any FAILED finding has a severity at or above
// the configured fail_on_severity threshold for the given domain.
//
// It returns false when:
//   - cfg is nil (no policy loaded)
//   - no enforcement block is configured for domain
//   - fail_on_severity is empty or an unrecognised value
//   - no failed finding reaches the threshold
//
// PASSED findings never trip the gate.
func ShouldFail(domain string, findings []models.Finding, cfg *PolicyConfig) bool {
	if cfg == nil {
		return false
	}
	enfCfg, ok := cfg.Enforcement[domain]
	if !ok || enfCfg.FailOnSeverity == "" {
		return false
	}
	threshold, ok := ParseSeverity(enfCfg.FailOnSeverity)
	if !ok {
		return false
	}
	for _, f := range findings {
		if f.Passed() {
			continue
		}
		if Rank(f.Severity) >= Rank(threshold) {
			return true
		}
	}
	return false
}
