package engine

import (
	"context"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

// AuditType identifies the category of audit to run.
type AuditType string

const (
	AuditTypeSNS AuditType = "sns"
)

// ReportFormat controls the CLI output format.
type ReportFormat string

const (
	ReportFormatTable ReportFormat = "table"
	ReportFormatJSON  ReportFormat = "json"
	ReportFormatJSONL ReportFormat = "jsonl"
	ReportFormatASFF  ReportFormat = "asff"
)

// AuditOptions configures a single audit run.
// It is the sole input to Engine.RunAudit.
type AuditOptions struct {
	// AuditType selects the audit module (e.g. "sns").
	AuditType AuditType

	// Profile is the named AWS profile to use. Empty means the default profile.
	Profile string

	// AllProfiles, when true, runs the audit across every configured AWS profile.
	AllProfiles bool

	// Regions is an explicit list of AWS regions to audit.
	// When empty the engine discovers and iterates all active regions.
	Regions []string

	// ReportFormat controls how the CLI renders the returned report.
	ReportFormat ReportFormat

	// NormalizeSeverity replaces the legacy "Low" label with "LOW".
	NormalizeSeverity bool
}

// Engine is the central orchestration interface.
// It coordinates provider collection, rule evaluation and report assembly,
// returning a fully populated AuditReport.
//
// Engine must not call AWS SDK clients directly; it delegates to the
// appropriate provider and rule interfaces.
type Engine interface {
	RunAudit(ctx context.Context, opts AuditOptions) (*models.AuditReport, error)
}
