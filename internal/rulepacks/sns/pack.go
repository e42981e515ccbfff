// Package sns provides the SNS topic audit rule pack.
// It groups the topic checks into a single New() function that the CLI
// wires into a DefaultRuleRegistry before invoking the SNS engine.
//
// Convention: every rule pack lives in internal/rulepacks/<domain>/pack.go
// and exposes a single New() func returning []rules.Rule.
package sns

import "github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/rules"

// New returns the SNS audit rule pack in check order.
func New() []rules.Rule {
	return []rules.Rule{
		rules.SNSTopicEncryptionRule{},  // HIGH: no KMS key on the topic
		rules.SNSHTTPSubscriptionRule{}, // HIGH: plain-HTTP subscriber
		rules.SNSPublicAccessRule{},     // HIGH: wildcard principal without Condition
		rules.SNSCrossAccountRule{},     // Low:  principal from another account
	}
}

// NewRegistry returns a registry holding every rule in the pack.
func NewRegistry() *rules.DefaultRuleRegistry {
	reg := rules.NewDefaultRuleRegistry()
	for _, r := range New() {
		reg.Register(r)
	}
	return reg
}
