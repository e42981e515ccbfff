package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

var snsTopicEncryption = checkTemplate{
	id:             "SNS.1",
	slug:           "sns-topic-encryption-check",
	title:          "[SNS.1] SNS topics should be encrypted",
	failSeverity:   models.SeverityHigh,
	passConfidence: 99,
	failConfidence: 99,
	passDesc:       "SNS topic %s is encrypted.",
	failDesc:       "SNS topic %s is not encrypted. Refer to the remediation instructions to remediate this behavior",
	tags: []string{
		"NIST CSF PR.DS-1",
		"NIST SP 800-53 MP-8",
		"NIST SP 800-53 SC-12",
		"NIST SP 800-53 SC-28",
		"AICPA TSC CC6.1",
		"ISO 27001:2013 A.8.2.3",
	},
	remediationText: "For more information on SNS encryption at rest and how to configure it refer to the Encryption at Rest section of the Amazon Simple Notification Service Developer Guide.",
	remediationURL:  "https://docs.aws.amazon.com/sns/latest/dg/sns-server-side-encryption.html",
}

// SNSTopicEncryptionRule checks that a topic is encrypted at rest with a KMS
// key. A missing or empty KmsMasterKeyId attribute is a normal failure.
type SNSTopicEncryptionRule struct{}

func (r SNSTopicEncryptionRule) ID() string   { return snsTopicEncryption.id }
func (r SNSTopicEncryptionRule) Name() string { return snsTopicEncryption.ruleName() }

// Evaluate returns exactly one finding for the topic.
func (r SNSTopicEncryptionRule) Evaluate(ctx RuleContext) ([]models.Finding, error) {
	if err := ctx.Topic.AttributesErr; err != nil {
		return nil, checkError(r.ID(), ctx, fmt.Errorf("topic attributes unavailable: %w", err))
	}
	key, ok := ctx.Topic.Attribute(models.AttrKmsMasterKeyID)
	v := verdict{passed: ok && key != ""}
	if v.passed {
		v.metadata = map[string]any{"kms_master_key_id": key}
	}
	return []models.Finding{snsTopicEncryption.build(ctx, v)}, nil
}
