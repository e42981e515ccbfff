package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/config"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/providers/aws/common"
	awssns "github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/providers/aws/sns"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

// fakeCollector returns the same topics for every region.
type fakeCollector struct {
	topics []models.Topic
	err    error
}

func (c *fakeCollector) Topics(_ context.Context, _ common.SNSClient, _ string) iter.Seq2[models.Topic, error] {
	return func(yield func(models.Topic, error) bool) {
		if c.err != nil {
			yield(models.Topic{}, c.err)
			return
		}
		for _, t := range c.topics {
			if !yield(t, nil) {
				return
			}
		}
	}
}

func snsTopic(name string, attrs map[string]string) models.Topic {
	return models.Topic{
		ARN:        "arn:aws:sns:us-east-1:123456789012:" + name,
		Name:       name,
		Region:     "us-east-1",
		Attributes: attrs,
	}
}

// twoTopics has one encrypted topic and one unencrypted, publicly readable one.
func twoTopics() *fakeCollector {
	return &fakeCollector{topics: []models.Topic{
		snsTopic("billing", map[string]string{models.AttrKmsMasterKeyID: "alias/aws/sns"}),
		snsTopic("orders", map[string]string{models.AttrPolicy: `{"Statement":[{"Principal":{"AWS":"*"}}]}`}),
	}}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func testDeps(p common.AWSClientProvider, c awssns.TopicCollector) deps {
	return deps{
		provider:  func(*config.Config) common.AWSClientProvider { return p },
		collector: func() awssns.TopicCollector { return c },
	}
}

// isolateHome points HOME at an empty directory so no user config is read.
func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func executeWith(t *testing.T, d deps, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmdWith(d)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func auditSNS(t *testing.T, c *fakeCollector, args ...string) (string, error) {
	t.Helper()
	isolateHome(t)
	return executeWith(t, testDeps(goodMockAWS(), c), append([]string{"aws", "audit", "sns"}, args...)...)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ── report formats ────────────────────────────────────────────────────────────

func TestAuditSNS_Table(t *testing.T) {
	out, err := auditSNS(t, twoTopics())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Account: 123456789012", "Topics: 2", "TOPIC", "orders", "billing", "SNS.3", "FAILED"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestAuditSNS_TableFailedOnly(t *testing.T) {
	out, err := auditSNS(t, twoTopics(), "--failed-only")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "PASSED") {
		t.Errorf("--failed-only must hide PASSED rows\ngot:\n%s", out)
	}
}

func TestAuditSNS_JSON(t *testing.T) {
	out, err := auditSNS(t, twoTopics(), "--report", "json")
	if err != nil {
		t.Fatal(err)
	}
	var report models.AuditReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out)
	}
	if report.Summary.TopicsAudited != 2 || report.Summary.FailedFindings != 2 {
		t.Errorf("unexpected summary %+v", report.Summary)
	}
	if report.Findings[0].Passed() {
		t.Error("failed findings must come first")
	}
}

func TestAuditSNS_ASFF(t *testing.T) {
	out, err := auditSNS(t, twoTopics(), "--report", "asff")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Findings []struct {
			ProductFields map[string]string `json:"ProductFields"`
			Resources     []struct {
				Type string `json:"Type"`
			} `json:"Resources"`
		} `json:"Findings"`
	}
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("output is not ASFF JSON: %v", err)
	}
	if len(body.Findings) != 6 {
		t.Fatalf("want 6 ASFF findings, got %d", len(body.Findings))
	}
	if body.Findings[0].ProductFields["Product Name"] != "ElectricEye" || body.Findings[0].Resources[0].Type != "AwsSnsTopic" {
		t.Errorf("unexpected ASFF finding %+v", body.Findings[0])
	}
}

func TestAuditSNS_JSONLStreamsErrorsInline(t *testing.T) {
	c := twoTopics()
	c.topics = append(c.topics, snsTopic("broken", map[string]string{models.AttrPolicy: "{"}))
	out, err := auditSNS(t, c, "--report", "jsonl")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// billing 3 + orders 3 + broken (SNS.1 finding, SNS.3 and SNS.4 errors)
	if len(lines) != 9 {
		t.Fatalf("want 9 lines, got %d\n%s", len(lines), out)
	}
	var errLines int
	for _, l := range lines {
		if strings.HasPrefix(l, `{"error":`) {
			errLines++
		}
	}
	if errLines != 2 {
		t.Errorf("want 2 inline error lines, got %d", errLines)
	}
}

func TestAuditSNS_JSONLRejectsSummary(t *testing.T) {
	if _, err := auditSNS(t, twoTopics(), "--report", "jsonl", "--summary"); err == nil {
		t.Fatal("expected error combining jsonl and --summary")
	}
}

func TestAuditSNS_UnknownFormat(t *testing.T) {
	_, err := auditSNS(t, twoTopics(), "--report", "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown report format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestAuditSNS_Summary(t *testing.T) {
	out, err := auditSNS(t, twoTopics(), "--summary")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Total Findings:  6", "Failed:        2", "Top Failed Findings"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\ngot:\n%s", want, out)
		}
	}
}

// ── side outputs ──────────────────────────────────────────────────────────────

func TestAuditSNS_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if _, err := auditSNS(t, twoTopics(), "--output", path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if !strings.Contains(string(data), `"topics_audited": 2`) {
		t.Errorf("unexpected report file:\n%s", data)
	}
}

func TestAuditSNS_MetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dp.prom")
	if _, err := auditSNS(t, twoTopics(), "--metrics-file", path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(data), "dp_sns_topics_audited_total") {
		t.Errorf("metrics file missing topic counter:\n%s", data)
	}
}

// ── policy ────────────────────────────────────────────────────────────────────

func TestAuditSNS_EnforcementGateTrips(t *testing.T) {
	pol := writeFile(t, "dp.yaml", "version: 1\nenforcement:\n  sns:\n    fail_on_severity: HIGH\n")
	_, err := auditSNS(t, twoTopics(), "--policy", pol, "--report", "json")
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("want exitError code 1, got %v", err)
	}
}

func TestAuditSNS_EnforcementGatePasses(t *testing.T) {
	pol := writeFile(t, "dp.yaml", "version: 1\nenforcement:\n  sns:\n    fail_on_severity: CRITICAL\n")
	if _, err := auditSNS(t, twoTopics(), "--policy", pol); err != nil {
		t.Fatalf("no CRITICAL findings, gate must pass: %v", err)
	}
}

func TestAuditSNS_InvalidPolicy(t *testing.T) {
	pol := writeFile(t, "dp.yaml", "version: 1\nrules:\n  SNS.9:\n    enabled: false\n")
	_, err := auditSNS(t, twoTopics(), "--policy", pol)
	if err == nil || !strings.Contains(err.Error(), "SNS.9") {
		t.Fatalf("expected invalid policy error naming SNS.9, got %v", err)
	}
}

func TestAuditSNS_PolicyDisablesRule(t *testing.T) {
	pol := writeFile(t, "dp.yaml", "version: 1\nrules:\n  SNS.1:\n    enabled: false\n")
	out, err := auditSNS(t, twoTopics(), "--policy", pol, "--report", "json")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, `"ruleId": "SNS.1"`) {
		t.Errorf("disabled rule must not appear\n%s", out)
	}
}

// ── config ────────────────────────────────────────────────────────────────────

func TestAuditSNS_ConfigDefaults(t *testing.T) {
	isolateHome(t)
	cfg := writeFile(t, "config.yaml", "aws:\n  default_profile: staging\naudit:\n  report_format: json\n  normalize_severity: true\n")
	awsP := goodMockAWS()
	c := &fakeCollector{topics: []models.Topic{
		snsTopic("shared", map[string]string{models.AttrPolicy: `{"Statement":[{"Principal":{"AWS":"999988887777"}}]}`}),
	}}

	out, err := executeWith(t, testDeps(awsP, c), "--config", cfg, "aws", "audit", "sns")
	if err != nil {
		t.Fatal(err)
	}
	if awsP.lastProfile != "staging" {
		t.Errorf("default profile not applied, got %q", awsP.lastProfile)
	}
	var report models.AuditReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("config report_format not applied: %v", err)
	}
	for _, f := range report.Findings {
		if f.RuleID == "SNS.4" && f.Severity != models.SeverityLow {
			t.Errorf("normalize_severity not applied, got %q", f.Severity)
		}
	}
}

func TestAuditSNS_FlagOverridesConfig(t *testing.T) {
	isolateHome(t)
	cfg := writeFile(t, "config.yaml", "aws:\n  default_profile: staging\n")
	awsP := goodMockAWS()
	if _, err := executeWith(t, testDeps(awsP, twoTopics()), "--config", cfg, "aws", "audit", "sns", "--profile", "prod"); err != nil {
		t.Fatal(err)
	}
	if awsP.lastProfile != "prod" {
		t.Errorf("--profile must win over config, got %q", awsP.lastProfile)
	}
}

func TestRoot_BadLogLevel(t *testing.T) {
	isolateHome(t)
	if _, err := executeWith(t, testDeps(goodMockAWS(), twoTopics()), "--log-level", "chatty", "version"); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

// ── failures ──────────────────────────────────────────────────────────────────

func TestAuditSNS_ProfileFailure(t *testing.T) {
	isolateHome(t)
	awsP := &mockAWSProvider{profileErr: errors.New("no credentials")}
	_, err := executeWith(t, testDeps(awsP, twoTopics()), "aws", "audit", "sns")
	if err == nil || !strings.Contains(err.Error(), "audit failed") {
		t.Fatalf("expected audit failure, got %v", err)
	}
}

func TestAuditSNS_RegionErrorReported(t *testing.T) {
	out, err := auditSNS(t, &fakeCollector{err: errors.New("AuthorizationError")})
	if err != nil {
		t.Fatalf("region failures are not fatal: %v", err)
	}
	if !strings.Contains(out, "Errors (1)") || !strings.Contains(out, "AuthorizationError") {
		t.Errorf("expected region error listed\ngot:\n%s", out)
	}
}

// ── explain ───────────────────────────────────────────────────────────────────

func TestAuditSNS_Explain(t *testing.T) {
	out, err := auditSNS(t, twoTopics(), "--explain", "SNS.3")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"RULE SNS.3", "Failed (1), Passed (1):", "- orders"} {
		if !strings.Contains(out, want) {
			t.Errorf("explanation missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestAuditSNS_ExplainUnknownRule(t *testing.T) {
	if _, err := auditSNS(t, twoTopics(), "--explain", "SNS.9"); err == nil {
		t.Fatal("expected error for a rule with no findings")
	}
}

func TestAuditSNS_ExplainJSON(t *testing.T) {
	out, err := auditSNS(t, twoTopics(), "--explain", "SNS.1", "--report", "json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"rule"`) || !strings.Contains(out, `"rule_id": "SNS.1"`) {
		t.Errorf("unexpected explain JSON\n%s", out)
	}
}
