package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/accesspolicy"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

// accessPolicyTags is shared by the public and cross-account checks.
var accessPolicyTags = []string{
	"NIST CSF PR.AC-3",
	"NIST SP 800-53 AC-1",
	"NIST SP 800-53 AC-17",
	"NIST SP 800-53 AC-19",
	"NIST SP 800-53 AC-20",
	"NIST SP 800-53 SC-15",
	"AICPA TSC CC6.6",
	"ISO 27001:2013 A.6.2.1",
	"ISO 27001:2013 A.6.2.2",
	"ISO 27001:2013 A.11.2.6",
	"ISO 27001:2013 A.13.1.1",
	"ISO 27001:2013 A.13.2.1",
}

var snsPublicAccess = checkTemplate{
	id:           "SNS.3",
	slug:         "sns-public-access-check",
	title:        "[SNS.3] SNS topics should not have public access",
	failSeverity: models.SeverityHigh,
	// A Condition block is not proof that access is restricted.
	passConfidence:  75,
	failConfidence:  99,
	passDesc:        "SNS topic %s does not have public access or limited by a Condition. Refer to the remediation instructions to review sns access policy",
	failDesc:        "SNS topic %s has public access. Refer to the remediation instructions to remediate this behavior",
	tags:            accessPolicyTags,
	remediationText: "For more information on SNS Access Policy Best Practices refer to Amazons Best Practice rules for Amazon SNS.",
	remediationURL:  "https://docs.aws.amazon.com/sns/latest/dg/sns-security-best-practices.html#ensure-topics-not-publicly-accessible",
}

// SNSPublicAccessRule flags topics whose access policy grants the wildcard
// principal without a Condition.
type SNSPublicAccessRule struct{}

func (r SNSPublicAccessRule) ID() string   { return snsPublicAccess.id }
func (r SNSPublicAccessRule) Name() string { return snsPublicAccess.ruleName() }

// Evaluate returns exactly one finding for the topic.
func (r SNSPublicAccessRule) Evaluate(ctx RuleContext) ([]models.Finding, error) {
	doc, err := topicPolicy(ctx)
	if err != nil {
		return nil, checkError(r.ID(), ctx, err)
	}
	v := verdict{passed: true}
	if stmt, found := accesspolicy.PublicStatement(doc); found {
		v.passed = false
		if stmt.Sid != "" {
			v.metadata = map[string]any{"statement_sid": stmt.Sid}
		}
	}
	return []models.Finding{snsPublicAccess.build(ctx, v)}, nil
}

// topicPolicy parses the topic's Policy attribute. A topic without one is
// treated as having an empty policy.
func topicPolicy(ctx RuleContext) (*accesspolicy.Document, error) {
	if err := ctx.Topic.AttributesErr; err != nil {
		return nil, fmt.Errorf("topic attributes unavailable: %w", err)
	}
	raw, _ := ctx.Topic.Attribute(models.AttrPolicy)
	return accesspolicy.Parse(raw)
}
