// Package render provides presentation-layer helpers for dp CLI output.
// It is a pure rendering package with no rule logic and no AWS API calls.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

// RuleExplanation is the rule-level view of a report: what the check asks
// for, how to fix it, and which topics fail it.
type RuleExplanation struct {
	RuleID          string           `json:"rule_id"`
	Title           string           `json:"title"`
	RemediationText string           `json:"remediation_text"`
	RemediationURL  string           `json:"remediation_url"`
	Requirements    []string         `json:"requirements"`
	Passed          int              `json:"passed"`
	Failed          []models.Finding `json:"failed"`
}

// ExplainRule collects every finding of ruleID. It returns nil when the
// report holds no finding for that rule.
func ExplainRule(ruleID string, findings []models.Finding) *RuleExplanation {
	var exp *RuleExplanation
	for _, f := range findings {
		if f.RuleID != ruleID {
			continue
		}
		if exp == nil {
			exp = &RuleExplanation{
				RuleID:          ruleID,
				Title:           f.Title,
				RemediationText: f.RemediationText,
				RemediationURL:  f.RemediationURL,
				Requirements:    f.ComplianceFrameworkTags,
				Failed:          []models.Finding{},
			}
		}
		if f.Passed() {
			exp.Passed++
			continue
		}
		exp.Failed = append(exp.Failed, f)
	}
	return exp
}

// RenderRuleExplanation writes a structured breakdown of one rule to w.
// Failed topics are grouped by region, regions sorted ascending for stable
// output.
//
// Example output:
//
//	RULE SNS.2: [SNS.2] SNS topics should not use HTTP subscriptions
//	Remediation: For more information on SNS encryption in transit refer to ...
//	See: https://docs.aws.amazon.com/sns/latest/dg/sns-security-best-practices.html#enforce-encryption-data-in-transit
//	Requirements: NIST CSF ID.AM-2, NIST SP 800-53 CM-8, NIST SP 800-53 PM-5, ...
//
//	Failed (1), Passed (1):
//
//	  us-east-1
//	    - orders (subscription: arn:aws:sns:us-east-1:111122223333:orders:1f2e)
func RenderRuleExplanation(w io.Writer, exp *RuleExplanation) {
	fmt.Fprintf(w, "RULE %s: %s\n", exp.RuleID, exp.Title)
	fmt.Fprintf(w, "Remediation: %s\n", exp.RemediationText)
	if exp.RemediationURL != "" {
		fmt.Fprintf(w, "See: %s\n", exp.RemediationURL)
	}
	if len(exp.Requirements) > 0 {
		fmt.Fprintf(w, "Requirements: %s\n", strings.Join(exp.Requirements, ", "))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Failed (%d), Passed (%d):\n", len(exp.Failed), exp.Passed)

	byRegion := make(map[string][]models.Finding)
	var regions []string
	for _, f := range exp.Failed {
		if _, ok := byRegion[f.ResourceRegion]; !ok {
			regions = append(regions, f.ResourceRegion)
		}
		byRegion[f.ResourceRegion] = append(byRegion[f.ResourceRegion], f)
	}
	sort.Strings(regions)

	for _, region := range regions {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", region)
		for _, f := range byRegion[region] {
			fmt.Fprintf(w, "    - %s%s\n", f.TopicName, detail(f))
		}
	}
}

// detail returns the metadata suffix that pinpoints the failing element.
func detail(f models.Finding) string {
	for _, key := range []string{"subscription_arn", "principal"} {
		if v, ok := f.Metadata[key].(string); ok && v != "" {
			return fmt.Sprintf(" (%s: %s)", strings.TrimSuffix(key, "_arn"), v)
		}
	}
	return ""
}

// WriteExplainJSON writes the explanation as indented JSON to w.
//
// When exp is non-nil, the output is:
//
//	{"rule": { ...explanation fields... }}
//
// When exp is nil (no finding for the rule in the report), the output is:
//
//	{"error": "No findings for rule X"}
func WriteExplainJSON(w io.Writer, exp *RuleExplanation, ruleID string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if exp == nil {
		return enc.Encode(map[string]string{
			"error": fmt.Sprintf("No findings for rule %s", ruleID),
		})
	}
	return enc.Encode(map[string]any{
		"rule": exp,
	})
}
