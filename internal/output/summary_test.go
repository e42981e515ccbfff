package output_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/output"
)

func makeReport(findings []models.Finding) *models.AuditReport {
	var s models.AuditSummary
	s.TotalFindings = len(findings)
	s.TopicsAudited = 2
	for _, f := range findings {
		if f.Passed() {
			s.PassedFindings++
		} else {
			s.FailedFindings++
		}
		switch f.Severity.Canonical() {
		case models.SeverityHigh:
			s.HighFindings++
		case models.SeverityLow:
			s.LowFindings++
		case models.SeverityInformational:
			s.InformationalFindings++
		}
	}
	return &models.AuditReport{
		ReportID:  "audit-test",
		AuditType: "sns",
		Profile:   "staging",
		AccountID: "111122223333",
		Regions:   []string{"us-east-1", "eu-west-1"},
		Summary:   s,
		Findings:  findings,
	}
}

func TestRenderSummary_Header(t *testing.T) {
	var buf bytes.Buffer
	output.RenderSummary(&buf, makeReport(nil), false)
	out := buf.String()
	for _, want := range []string{"Account:  111122223333", "Profile:  staging", "Regions:  2", "Topics:   2"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary\ngot:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Top Failed Findings") {
		t.Errorf("no top section expected without failures\ngot:\n%s", out)
	}
}

func TestRenderSummary_Counts(t *testing.T) {
	findings := []models.Finding{
		oneFinding(),
		oneFinding(func(f *models.Finding) { f.RuleID = "SNS.4"; f.Severity = models.SeverityLowLegacy }),
		passedFinding(),
	}
	var buf bytes.Buffer
	output.RenderSummary(&buf, makeReport(findings), false)
	out := buf.String()

	for _, want := range []string{"Total Findings:  3", "Passed:        1", "Failed:        2"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary\ngot:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "Top Failed Findings") || !strings.Contains(out, "SNS.4") {
		t.Errorf("expected failed findings listed\ngot:\n%s", out)
	}
	if strings.Contains(out, "billing") {
		t.Errorf("passed finding must not be listed among top failures\ngot:\n%s", out)
	}
}

func TestRenderSummary_TopCappedAtFive(t *testing.T) {
	var findings []models.Finding
	for i := 0; i < 8; i++ {
		findings = append(findings, oneFinding())
	}
	var buf bytes.Buffer
	output.RenderSummary(&buf, makeReport(findings), false)
	if n := strings.Count(buf.String(), "  orders"); n != 5 {
		t.Errorf("want 5 top rows, got %d\n%s", n, buf.String())
	}
}

func TestRenderHeader(t *testing.T) {
	var buf bytes.Buffer
	output.RenderHeader(&buf, makeReport([]models.Finding{oneFinding(), passedFinding()}))
	out := buf.String()
	for _, want := range []string{"staging", "111122223333", "Regions: 2", "Topics: 2", "Failed: 1/2"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in header\ngot:\n%s", want, out)
		}
	}
}
