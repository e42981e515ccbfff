package output

import (
	"encoding/json"
	"io"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/rules"
)

// ASFFFinding is a finding in AWS Security Finding Format, the shape
// accepted by Security Hub BatchImportFindings.
type ASFFFinding struct {
	SchemaVersion   string            `json:"SchemaVersion"`
	ID              string            `json:"Id"`
	ProductArn      string            `json:"ProductArn"`
	GeneratorID     string            `json:"GeneratorId"`
	AwsAccountID    string            `json:"AwsAccountId"`
	Types           []string          `json:"Types"`
	FirstObservedAt string            `json:"FirstObservedAt"`
	CreatedAt       string            `json:"CreatedAt"`
	UpdatedAt       string            `json:"UpdatedAt"`
	Severity        asffSeverity      `json:"Severity"`
	Confidence      int               `json:"Confidence"`
	Title           string            `json:"Title"`
	Description     string            `json:"Description"`
	Remediation     asffRemediation   `json:"Remediation"`
	ProductFields   map[string]string `json:"ProductFields"`
	Resources       []asffResource    `json:"Resources"`
	Compliance      asffCompliance    `json:"Compliance"`
	Workflow        asffWorkflow      `json:"Workflow"`
	RecordState     string            `json:"RecordState"`
}

type asffSeverity struct {
	Label string `json:"Label"`
}

type asffRemediation struct {
	Recommendation struct {
		Text string `json:"Text"`
		URL  string `json:"Url"`
	} `json:"Recommendation"`
}

type asffResource struct {
	Type      string `json:"Type"`
	ID        string `json:"Id"`
	Partition string `json:"Partition"`
	Region    string `json:"Region"`
	Details   struct {
		AwsSnsTopic struct {
			TopicName string `json:"TopicName"`
		} `json:"AwsSnsTopic"`
	} `json:"Details"`
}

type asffCompliance struct {
	Status              string   `json:"Status"`
	RelatedRequirements []string `json:"RelatedRequirements"`
}

type asffWorkflow struct {
	Status string `json:"Status"`
}

// asffTime is ISO-8601 with millisecond precision, as Security Hub expects.
const asffTime = "2006-01-02T15:04:05.000Z07:00"

// ToASFF converts f to its ASFF form.
func ToASFF(f models.Finding) ASFFFinding {
	a := ASFFFinding{
		SchemaVersion:   f.SchemaVersion,
		ID:              f.ID,
		ProductArn:      f.ProductARN,
		GeneratorID:     f.GeneratorID,
		AwsAccountID:    f.AccountID,
		Types:           f.Types,
		FirstObservedAt: f.FirstObservedAt.UTC().Format(asffTime),
		CreatedAt:       f.CreatedAt.UTC().Format(asffTime),
		UpdatedAt:       f.UpdatedAt.UTC().Format(asffTime),
		Severity:        asffSeverity{Label: string(f.Severity)},
		Confidence:      f.Confidence,
		Title:           f.Title,
		Description:     f.Description,
		ProductFields:   map[string]string{"Product Name": rules.ProductName},
		Compliance: asffCompliance{
			Status:              string(f.Status),
			RelatedRequirements: f.ComplianceFrameworkTags,
		},
		Workflow:    asffWorkflow{Status: string(f.WorkflowStatus)},
		RecordState: string(f.RecordState),
	}
	a.Remediation.Recommendation.Text = f.RemediationText
	a.Remediation.Recommendation.URL = f.RemediationURL

	var r asffResource
	r.Type = string(f.ResourceType)
	r.ID = f.ResourceID
	r.Partition = f.ResourcePartition
	r.Region = f.ResourceRegion
	r.Details.AwsSnsTopic.TopicName = f.TopicName
	a.Resources = []asffResource{r}
	return a
}

// WriteASFF writes findings as a BatchImportFindings request body.
func WriteASFF(w io.Writer, findings []models.Finding) error {
	out := struct {
		Findings []ASFFFinding `json:"Findings"`
	}{Findings: make([]ASFFFinding, 0, len(findings))}
	for _, f := range findings {
		out.Findings = append(out.Findings, ToASFF(f))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
