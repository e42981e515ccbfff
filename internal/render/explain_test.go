package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/rules"
)

// ── test helpers ──────────────────────────────────────────────────────────────

func makeFinding(ruleID, topic, region string, status models.ComplianceStatus, meta map[string]any) models.Finding {
	return models.Finding{
		RuleID:                  ruleID,
		Title:                   "[" + ruleID + "] title",
		TopicName:               topic,
		ResourceRegion:          region,
		Status:                  status,
		RemediationText:         "Fix it.",
		RemediationURL:          "https://docs.aws.amazon.com/sns/",
		ComplianceFrameworkTags: []string{"NIST CSF PR.DS-2", "AICPA TSC CC6.1"},
		Metadata:                meta,
	}
}

func sampleFindings() []models.Finding {
	return []models.Finding{
		makeFinding("SNS.2", "orders", "us-west-2", models.StatusFailed, map[string]any{"subscription_arn": "arn:sub:1", "protocol": "http"}),
		makeFinding("SNS.2", "billing", "eu-west-1", models.StatusFailed, map[string]any{"subscription_arn": "arn:sub:2", "protocol": "http"}),
		makeFinding("SNS.2", "alerts", "eu-west-1", models.StatusPassed, map[string]any{"subscription_arn": "arn:sub:3", "protocol": "https"}),
		makeFinding("SNS.4", "shared", "eu-west-1", models.StatusFailed, map[string]any{"principal": "999988887777"}),
	}
}

// ── ExplainRule ───────────────────────────────────────────────────────────────

func TestExplainRule_CollectsOnlyThatRule(t *testing.T) {
	exp := ExplainRule("SNS.2", sampleFindings())
	if exp == nil {
		t.Fatal("expected explanation")
	}
	if len(exp.Failed) != 2 || exp.Passed != 1 {
		t.Errorf("want 2 failed / 1 passed, got %d / %d", len(exp.Failed), exp.Passed)
	}
	if exp.Title != "[SNS.2] title" || exp.RemediationText != "Fix it." {
		t.Errorf("rule metadata not copied: %+v", exp)
	}
}

func TestExplainRule_Unknown(t *testing.T) {
	if exp := ExplainRule("SNS.9", sampleFindings()); exp != nil {
		t.Errorf("expected nil for a rule with no findings, got %+v", exp)
	}
}

// ── RenderRuleExplanation ─────────────────────────────────────────────────────

func TestRenderRuleExplanation_HappyPath(t *testing.T) {
	var buf bytes.Buffer
	RenderRuleExplanation(&buf, ExplainRule("SNS.2", sampleFindings()))
	out := buf.String()

	for _, want := range []string{
		"RULE SNS.2: [SNS.2] title",
		"Remediation: Fix it.",
		"See: https://docs.aws.amazon.com/sns/",
		"Requirements: NIST CSF PR.DS-2, AICPA TSC CC6.1",
		"Failed (2), Passed (1):",
		"- orders (subscription: arn:sub:1)",
		"- billing (subscription: arn:sub:2)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
	if strings.Contains(out, "alerts") {
		t.Errorf("passed topics must not be listed\ngot:\n%s", out)
	}
}

func TestRenderRuleExplanation_RegionsSorted(t *testing.T) {
	var buf bytes.Buffer
	RenderRuleExplanation(&buf, ExplainRule("SNS.2", sampleFindings()))
	out := buf.String()
	if strings.Index(out, "eu-west-1") > strings.Index(out, "us-west-2") {
		t.Errorf("regions must be sorted ascending\ngot:\n%s", out)
	}
}

func TestRenderRuleExplanation_PrincipalDetail(t *testing.T) {
	var buf bytes.Buffer
	RenderRuleExplanation(&buf, ExplainRule("SNS.4", sampleFindings()))
	if !strings.Contains(buf.String(), "- shared (principal: 999988887777)") {
		t.Errorf("expected principal detail\ngot:\n%s", buf.String())
	}
}

// ── WriteExplainJSON ──────────────────────────────────────────────────────────

func TestWriteExplainJSON_Found(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExplainJSON(&buf, ExplainRule("SNS.4", sampleFindings()), "SNS.4"); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Rule RuleExplanation `json:"rule"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Rule.RuleID != "SNS.4" || len(decoded.Rule.Failed) != 1 {
		t.Errorf("unexpected decoded rule %+v", decoded.Rule)
	}
}

func TestWriteExplainJSON_NotFound(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExplainJSON(&buf, nil, "SNS.9"); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["error"] != "No findings for rule SNS.9" {
		t.Errorf("unexpected error message %q", decoded["error"])
	}
}

func TestRenderRuleExplanation_HTTPSubscriptionRuleOutput(t *testing.T) {
	const topicARN = "arn:aws:sns:us-east-1:111122223333:orders"
	findings, err := rules.SNSHTTPSubscriptionRule{}.Evaluate(rules.RuleContext{
		AccountID: "111122223333",
		Region:    "us-east-1",
		Partition: "aws",
		Topic: models.Topic{
			ARN:    topicARN,
			Name:   "orders",
			Region: "us-east-1",
			Subscriptions: []models.Subscription{
				{ARN: topicARN + ":1f2e", TopicARN: topicARN, Protocol: "http"},
				{ARN: topicARN + ":3a4b", TopicARN: topicARN, Protocol: "https"},
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	RenderRuleExplanation(&buf, ExplainRule("SNS.2", findings))
	out := buf.String()

	for _, want := range []string{
		"RULE SNS.2: [SNS.2] SNS topics should not use HTTP subscriptions\n",
		"Remediation: For more information on SNS encryption in transit refer to ",
		"See: https://docs.aws.amazon.com/sns/latest/dg/sns-security-best-practices.html#enforce-encryption-data-in-transit\n",
		"Requirements: NIST CSF ID.AM-2, NIST SP 800-53 CM-8, NIST SP 800-53 PM-5, ",
		"Failed (1), Passed (1):",
		"  us-east-1\n    - orders (subscription: " + topicARN + ":1f2e)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
}
