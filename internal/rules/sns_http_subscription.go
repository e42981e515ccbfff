package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

// insecureProtocol is the only subscription protocol flagged. The comparison
// is exact: "HTTP" and "https" both pass.
const insecureProtocol = "http"

var snsHTTPSubscription = checkTemplate{
	id:             "SNS.2",
	slug:           "sns-http-subscription-check",
	title:          "[SNS.2] SNS topics should not use HTTP subscriptions",
	failSeverity:   models.SeverityHigh,
	passConfidence: 99,
	failConfidence: 99,
	passDesc:       "SNS topic %s does not have a HTTP subscriber.",
	failDesc:       "SNS topic %s has a HTTP subscriber. Refer to the remediation instructions to remediate this behavior",
	tags: []string{
		"NIST CSF ID.AM-2",
		"NIST SP 800-53 CM-8",
		"NIST SP 800-53 PM-5",
		"AICPA TSC CC3.2",
		"AICPA TSC CC6.1",
		"ISO 27001:2013 A.8.1.1",
		"ISO 27001:2013 A.8.1.2",
		"ISO 27001:2013 A.12.5.1",
	},
	remediationText: "For more information on SNS encryption in transit refer to the Enforce Encryption of Data in Transit section of the Amazon Simple Notification Service Developer Guide.",
	remediationURL:  "https://docs.aws.amazon.com/sns/latest/dg/sns-security-best-practices.html#enforce-encryption-data-in-transit",
}

// SNSHTTPSubscriptionRule checks that no subscription delivers over plain
// HTTP. It yields one finding per subscription and none for a topic without
// subscribers.
type SNSHTTPSubscriptionRule struct{}

func (r SNSHTTPSubscriptionRule) ID() string   { return snsHTTPSubscription.id }
func (r SNSHTTPSubscriptionRule) Name() string { return snsHTTPSubscription.ruleName() }

// Evaluate returns one finding per subscription, in subscription order. All
// findings share the topic-level finding ID; the subscription is identified
// in the finding metadata.
func (r SNSHTTPSubscriptionRule) Evaluate(ctx RuleContext) ([]models.Finding, error) {
	if err := ctx.Topic.SubscriptionsErr; err != nil {
		return nil, checkError(r.ID(), ctx, fmt.Errorf("subscriptions unavailable: %w", err))
	}
	findings := make([]models.Finding, 0, len(ctx.Topic.Subscriptions))
	for _, sub := range ctx.Topic.Subscriptions {
		findings = append(findings, snsHTTPSubscription.build(ctx, verdict{
			passed: sub.Protocol != insecureProtocol,
			metadata: map[string]any{
				"subscription_arn": sub.ARN,
				"protocol":         sub.Protocol,
			},
		}))
	}
	return findings, nil
}
