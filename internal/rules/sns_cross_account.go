package rules

import (
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/accesspolicy"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

var snsCrossAccount = checkTemplate{
	id:              "SNS.4",
	slug:            "sns-cross-account-check",
	title:           "[SNS.4] SNS topics should not allow cross-account access",
	failSeverity:    models.SeverityLowLegacy,
	passConfidence:  99,
	failConfidence:  99,
	passDesc:        "SNS topic %s does not have cross-account access.",
	failDesc:        "SNS topic %s has cross-account access.",
	tags:            accessPolicyTags,
	remediationText: "For more information on SNS best practices refer to the Amazon SNS security best practices section of the Amazon Simple Notification Service Developer Guide.",
	remediationURL:  "https://docs.aws.amazon.com/sns/latest/dg/sns-security-best-practices.html#enforce-encryption-data-in-transit",
}

// SNSCrossAccountRule flags topics whose access policy names an AWS principal
// from an account other than the audited one. Wildcard principals are left to
// SNSPublicAccessRule.
type SNSCrossAccountRule struct{}

func (r SNSCrossAccountRule) ID() string   { return snsCrossAccount.id }
func (r SNSCrossAccountRule) Name() string { return snsCrossAccount.ruleName() }

// Evaluate returns exactly one finding for the topic. A principal from which
// no account can be derived (for example a service name placed under the AWS
// key) makes the whole check fail with ErrMalformedPrincipal.
func (r SNSCrossAccountRule) Evaluate(ctx RuleContext) ([]models.Finding, error) {
	doc, err := topicPolicy(ctx)
	if err != nil {
		return nil, checkError(r.ID(), ctx, err)
	}
	principal, found, err := accesspolicy.ForeignPrincipal(doc, ctx.AccountID)
	if err != nil {
		return nil, checkError(r.ID(), ctx, err)
	}
	v := verdict{passed: !found}
	if found {
		v.metadata = map[string]any{"principal": principal}
	}
	return []models.Finding{snsCrossAccount.build(ctx, v)}, nil
}
