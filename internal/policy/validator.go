package policy

import (
	"fmt"
)

// validDomains is the set of recognised audit domain names.
var validDomains = map[string]struct{}{
	DomainSNS: {},
}

const severityHint = "valid values: CRITICAL, HIGH, MEDIUM, LOW, INFORMATIONAL (or INFO)"

// Validate checks cfg for semantic correctness and returns all validation errors
// found. An empty slice means the config is valid.
//
// Checks performed:
//   - version must be 1
//   - domain names must be "sns"
//   - domain min_severity must be a valid severity value if set
//   - rule IDs must appear in availableRuleIDs
//   - rule severity overrides must be valid severity values if set
//   - enforcement domain names must be "sns"
//   - enforcement fail_on_severity must be a valid severity value if set
//
// All errors are collected before returning; Validate never stops at the first error.
func Validate(cfg *PolicyConfig, availableRuleIDs []string) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	knownIDs := make(map[string]struct{}, len(availableRuleIDs))
	for _, id := range availableRuleIDs {
		knownIDs[id] = struct{}{}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}

	for name, dcfg := range cfg.Domains {
		if _, ok := validDomains[name]; !ok {
			errs = append(errs, fmt.Errorf("domains.%s: unknown domain; valid values: sns", name))
		}
		if dcfg.MinSeverity != "" {
			if _, ok := ParseSeverity(dcfg.MinSeverity); !ok {
				errs = append(errs, fmt.Errorf("domains.%s.min_severity: invalid value %q; %s", name, dcfg.MinSeverity, severityHint))
			}
		}
	}

	for ruleID, rcfg := range cfg.Rules {
		if _, ok := knownIDs[ruleID]; !ok {
			errs = append(errs, fmt.Errorf("rules.%s: unknown rule ID", ruleID))
		}
		if rcfg.Severity != "" {
			if _, ok := ParseSeverity(rcfg.Severity); !ok {
				errs = append(errs, fmt.Errorf("rules.%s.severity: invalid value %q; %s", ruleID, rcfg.Severity, severityHint))
			}
		}
	}

	for domain, enfCfg := range cfg.Enforcement {
		if _, ok := validDomains[domain]; !ok {
			errs = append(errs, fmt.Errorf("enforcement.%s: unknown domain; valid values: sns", domain))
		}
		if enfCfg.FailOnSeverity != "" {
			if _, ok := ParseSeverity(enfCfg.FailOnSeverity); !ok {
				errs = append(errs, fmt.Errorf("enforcement.%s.fail_on_severity: invalid value %q; %s", domain, enfCfg.FailOnSeverity, severityHint))
			}
		}
	}

	return errs
}
