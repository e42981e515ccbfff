package rules

import (
	"fmt"
	"strings"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

const (
	// SchemaVersion is the Security Hub finding format version.
	SchemaVersion = "2018-10-08"

	// ProductName is reported under ProductFields for every finding.
	ProductName = "ElectricEye"
)

// findingTypes classifies every SNS finding.
var findingTypes = []string{
	"Software and Configuration Checks/AWS Security Best Practices",
	"Effects/Data Exposure",
}

// checkTemplate holds the static parts of one check's findings. The four SNS
// rules differ only in the data held here and in their predicate.
type checkTemplate struct {
	id    string // "SNS.1"
	slug  string // suffix of the finding ID
	title string

	failSeverity   models.Severity
	passConfidence int
	failConfidence int

	// passDesc and failDesc take the topic short name.
	passDesc string
	failDesc string

	tags            []string
	remediationText string
	remediationURL  string
}

// verdict is the outcome of one predicate for one resource.
type verdict struct {
	passed   bool
	metadata map[string]any
}

// ProductARN returns the Security Hub product ARN findings are attributed to.
func ProductARN(partition, region, accountID string) string {
	return fmt.Sprintf("arn:%s:securityhub:%s:%s:product/%s/default", partition, region, accountID, accountID)
}

// FindingID returns the identifier of the finding for resourceARN under the
// check named by slug.
func FindingID(resourceARN, slug string) string {
	return resourceARN + "/" + slug
}

func (t checkTemplate) ruleName() string {
	return strings.TrimPrefix(t.title, "["+t.id+"] ")
}

// build assembles the finding for v. The status triple is derived solely from
// v.passed so it can never be inconsistent.
func (t checkTemplate) build(ctx RuleContext, v verdict) models.Finding {
	topic := ctx.Topic
	now := ctx.observedAt()

	f := models.Finding{
		ID:                      FindingID(topic.ARN, t.slug),
		RuleID:                  t.id,
		GeneratorID:             topic.ARN,
		AccountID:               ctx.AccountID,
		Profile:                 ctx.Profile,
		ProductARN:              ProductARN(ctx.Partition, ctx.Region, ctx.AccountID),
		SchemaVersion:           SchemaVersion,
		Types:                   append([]string(nil), findingTypes...),
		Title:                   t.title,
		ResourceType:            models.ResourceAWSSNSTopic,
		ResourceID:              topic.ARN,
		ResourcePartition:       ctx.Partition,
		ResourceRegion:          ctx.Region,
		TopicName:               topic.Name,
		ComplianceFrameworkTags: append([]string(nil), t.tags...),
		RemediationText:         t.remediationText,
		RemediationURL:          t.remediationURL,
		FirstObservedAt:         now,
		CreatedAt:               now,
		UpdatedAt:               now,
		Metadata:                v.metadata,
	}

	if v.passed {
		f.Status = models.StatusPassed
		f.WorkflowStatus = models.WorkflowResolved
		f.RecordState = models.RecordArchived
		f.Severity = models.SeverityInformational
		f.Confidence = t.passConfidence
		f.Description = fmt.Sprintf(t.passDesc, topic.Name)
		return f
	}

	f.Status = models.StatusFailed
	f.WorkflowStatus = models.WorkflowNew
	f.RecordState = models.RecordActive
	f.Severity = t.failSeverity
	if ctx.NormalizeSeverity {
		f.Severity = f.Severity.Canonical()
	}
	f.Confidence = t.failConfidence
	f.Description = fmt.Sprintf(t.failDesc, topic.Name)
	return f
}
