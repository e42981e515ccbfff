package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

// RenderHeader writes the one-line report banner printed above the table.
func RenderHeader(w io.Writer, report *models.AuditReport) {
	s := report.Summary
	fmt.Fprintf(w,
		"Profile: %-20s  Account: %-14s  Regions: %d  Topics: %d  Failed: %d/%d\n",
		report.Profile,
		report.AccountID,
		len(report.Regions),
		s.TopicsAudited,
		s.FailedFindings,
		s.TotalFindings,
	)
}

// RenderSummary renders a compact summary view to w:
//   - Account / profile / region header
//   - Finding totals by status
//   - Per-severity counts
//   - Up to five failed findings, highest severity first
//
// It reuses the already-computed AuditReport; no engine logic is duplicated.
func RenderSummary(w io.Writer, report *models.AuditReport, colored bool) {
	s := report.Summary

	fmt.Fprintf(w, "Account:  %s\n", report.AccountID)
	fmt.Fprintf(w, "Profile:  %s\n", report.Profile)
	fmt.Fprintf(w, "Regions:  %d\n", len(report.Regions))
	fmt.Fprintf(w, "Topics:   %d\n", s.TopicsAudited)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total Findings:  %d\n", s.TotalFindings)
	fmt.Fprintf(w, "  Passed:        %d\n", s.PassedFindings)
	fmt.Fprintf(w, "  Failed:        %d\n", s.FailedFindings)
	if s.Errors > 0 {
		fmt.Fprintf(w, "Errors:          %d\n", s.Errors)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Severity Breakdown")
	fmt.Fprintf(w, "  %-13s  %d\n", ColorSeverity(models.SeverityCritical, colored), s.CriticalFindings)
	fmt.Fprintf(w, "  %-13s  %d\n", ColorSeverity(models.SeverityHigh, colored), s.HighFindings)
	fmt.Fprintf(w, "  %-13s  %d\n", ColorSeverity(models.SeverityMedium, colored), s.MediumFindings)
	fmt.Fprintf(w, "  %-13s  %d\n", ColorSeverity(models.SeverityLow, colored), s.LowFindings)
	fmt.Fprintf(w, "  %-13s  %d\n", models.SeverityInformational, s.InformationalFindings)

	top := topFailed(report.Findings, 5)
	if len(top) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top Failed Findings")
	fmt.Fprintf(w, "  %-30s  %-15s  %-6s  %s\n", "TOPIC", "REGION", "RULE", "SEVERITY")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 68))
	for _, f := range top {
		fmt.Fprintf(w, "  %-30s  %-15s  %-6s  %s\n",
			truncateField(f.TopicName, 30), f.ResourceRegion, f.RuleID, ColorSeverity(f.Severity, colored))
	}
}

// topFailed returns up to n failed findings in report order. Reports are
// already sorted failed-first by severity.
func topFailed(findings []models.Finding, n int) []models.Finding {
	var out []models.Finding
	for _, f := range findings {
		if len(out) == n {
			break
		}
		if !f.Passed() {
			out = append(out, f)
		}
	}
	return out
}
