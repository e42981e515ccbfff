package policy

// DomainSNS is the policy domain name for the SNS topic audit.
const DomainSNS = "sns"

// PolicyConfig is the parsed form of a dp.yaml policy file.
type PolicyConfig struct {
	Version     int                          `yaml:"version"`
	Domains     map[string]DomainConfig      `yaml:"domains"`
	Rules       map[string]RuleConfig        `yaml:"rules"`
	Enforcement map[string]EnforcementConfig `yaml:"enforcement"`
}

// DomainConfig toggles a whole audit domain and optionally hides failed
// findings below a severity floor.
type DomainConfig struct {
	Enabled     bool   `yaml:"enabled"`
	MinSeverity string `yaml:"min_severity,omitempty"`
}

// RuleConfig overrides a single rule. A nil Enabled means "leave as is".
type RuleConfig struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Severity string `yaml:"severity,omitempty"`
}

// EnforcementConfig is the CI gate for a domain.
type EnforcementConfig struct {
	FailOnSeverity string `yaml:"fail_on_severity,omitempty"`
}

// RuleEnabled reports whether ruleID should run under cfg. Rules are enabled
// unless explicitly disabled; a nil cfg enables everything.
func (cfg *PolicyConfig) RuleEnabled(ruleID string) bool {
	if cfg == nil {
		return true
	}
	rc, ok := cfg.Rules[ruleID]
	if !ok || rc.Enabled == nil {
		return true
	}
	return *rc.Enabled
}

// DomainEnabled reports whether domain should run under cfg. A domain with no
// entry is enabled.
func (cfg *PolicyConfig) DomainEnabled(domain string) bool {
	if cfg == nil {
		return true
	}
	d, ok := cfg.Domains[domain]
	if !ok {
		return true
	}
	return d.Enabled
}
