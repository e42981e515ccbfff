package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

// TableOptions controls which columns RenderTable renders and how cells are coloured.
type TableOptions struct {
	// Colored wraps severity and status labels with ANSI codes. Default false (CI-safe).
	Colored bool

	// IncludeProfile adds a PROFILE column (useful with --all-profiles).
	IncludeProfile bool

	// FailedOnly hides PASSED findings.
	FailedOnly bool
}

// severityColor returns the colour for sev, or nil when it is printed plain.
func severityColor(sev models.Severity) *color.Color {
	switch sev.Canonical() {
	case models.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case models.SeverityHigh:
		return color.New(color.FgRed)
	case models.SeverityMedium:
		return color.New(color.FgYellow)
	case models.SeverityLow:
		return color.New(color.FgBlue)
	default:
		return nil
	}
}

func statusColor(status models.ComplianceStatus) *color.Color {
	switch status {
	case models.StatusFailed:
		return color.New(color.FgRed)
	case models.StatusPassed:
		return color.New(color.FgGreen)
	default:
		return nil
	}
}

// paint renders s with c. Colour is forced on so output does not depend on
// whether stdout is a terminal; callers decide via colored.
func paint(c *color.Color, s string, colored bool) string {
	if !colored || c == nil {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

// ColorSeverity wraps a severity string with ANSI codes when colored is true.
// When colored is false the string is returned unchanged (CI-safe default).
func ColorSeverity(sev models.Severity, colored bool) string {
	return paint(severityColor(sev), string(sev), colored)
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// cell pads text to width and colours only the text, so trailing padding
// stays plain and later columns line up with or without ANSI support.
func cell(c *color.Color, text string, width int, colored bool) string {
	spaces := width - len(text)
	if spaces < 0 {
		spaces = 0
	}
	return paint(c, text, colored) + strings.Repeat(" ", spaces)
}

// truncateField shortens s to at most max bytes for ID/label columns.
func truncateField(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "~"
}

// RenderTable writes a formatted findings table to w.
// Columns are dynamically selected based on opts; the separator line width is
// derived from the header row so all rows align correctly.
//
// Column order:
//
//	TOPIC  [PROFILE]  REGION  RULE  STATUS  SEVERITY  DESCRIPTION
func RenderTable(w io.Writer, findings []models.Finding, opts TableOptions) {
	if opts.FailedOnly {
		kept := make([]models.Finding, 0, len(findings))
		for _, f := range findings {
			if !f.Passed() {
				kept = append(kept, f)
			}
		}
		findings = kept
	}

	if len(findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		return
	}

	const (
		wTopic    = 30
		wProfile  = 12
		wRegion   = 15
		wRule     = 6
		wStatus   = 6
		wSeverity = 13
		wMessage  = 60
	)

	var hb strings.Builder
	hb.WriteString(fmt.Sprintf("%-*s", wTopic, "TOPIC"))
	if opts.IncludeProfile {
		hb.WriteString(fmt.Sprintf("  %-*s", wProfile, "PROFILE"))
	}
	hb.WriteString(fmt.Sprintf("  %-*s", wRegion, "REGION"))
	hb.WriteString(fmt.Sprintf("  %-*s", wRule, "RULE"))
	hb.WriteString(fmt.Sprintf("  %-*s", wStatus, "STATUS"))
	hb.WriteString(fmt.Sprintf("  %-*s", wSeverity, "SEVERITY"))
	hb.WriteString(fmt.Sprintf("  %-*s", wMessage, "DESCRIPTION"))
	header := strings.TrimRight(hb.String(), " ")

	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, f := range findings {
		var rb strings.Builder
		rb.WriteString(fmt.Sprintf("%-*s", wTopic, truncateField(f.TopicName, wTopic)))
		if opts.IncludeProfile {
			rb.WriteString(fmt.Sprintf("  %-*s", wProfile, truncateField(f.Profile, wProfile)))
		}
		rb.WriteString(fmt.Sprintf("  %-*s", wRegion, truncateField(f.ResourceRegion, wRegion)))
		rb.WriteString(fmt.Sprintf("  %-*s", wRule, f.RuleID))
		rb.WriteString("  " + cell(statusColor(f.Status), string(f.Status), wStatus, opts.Colored))
		rb.WriteString("  " + cell(severityColor(f.Severity), string(f.Severity), wSeverity, opts.Colored))
		rb.WriteString("  " + ShortenMessage(f.Description, wMessage))
		fmt.Fprintln(w, rb.String())
	}
}

// RenderErrors lists checks that could not be evaluated. Nothing is written
// when errs is empty.
func RenderErrors(w io.Writer, errs []models.CheckErrorRecord) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "\nErrors (%d):\n", len(errs))
	for _, e := range errs {
		scope := e.ResourceID
		if scope == "" {
			scope = "region " + e.Region
		}
		rule := e.RuleID
		if rule == "" {
			rule = "-"
		}
		fmt.Fprintf(w, "  %-6s  %s: %s\n", rule, scope, e.Message)
	}
}
