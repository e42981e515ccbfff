package models

import "time"

// Severity is the Security Hub severity label attached to a finding.
// Labels are emitted verbatim; downstream consumers may match on exact casing.
type Severity string

const (
	SeverityCritical      Severity = "CRITICAL"
	SeverityHigh          Severity = "HIGH"
	SeverityMedium        Severity = "MEDIUM"
	SeverityLow           Severity = "LOW"
	SeverityInformational Severity = "INFORMATIONAL"

	// SeverityLowLegacy is the mixed-case label historically emitted for
	// cross-account failures. It is kept as a distinct value so reports stay
	// byte-compatible with consumers that recorded it; see
	// config.AuditConfig.NormalizeSeverity.
	SeverityLowLegacy Severity = "Low"
)

// Canonical returns the upper-case form of s. Unknown labels are returned
// unchanged.
func (s Severity) Canonical() Severity {
	if s == SeverityLowLegacy {
		return SeverityLow
	}
	return s
}

// ComplianceStatus is the pass/fail verdict of a single check.
type ComplianceStatus string

const (
	StatusPassed ComplianceStatus = "PASSED"
	StatusFailed ComplianceStatus = "FAILED"
)

// WorkflowStatus tracks the remediation workflow of a finding.
type WorkflowStatus string

const (
	WorkflowNew      WorkflowStatus = "NEW"
	WorkflowResolved WorkflowStatus = "RESOLVED"
)

// RecordState tells the findings aggregator whether the record is live.
type RecordState string

const (
	RecordActive   RecordState = "ACTIVE"
	RecordArchived RecordState = "ARCHIVED"
)

// ResourceType identifies the kind of cloud resource a finding refers to.
type ResourceType string

const (
	ResourceAWSSNSTopic ResourceType = "AwsSnsTopic"
)

// Finding is the result of one check against one resource. It is built once by
// the rule that produced it and never mutated afterwards.
//
// The Status, WorkflowStatus and RecordState fields always move together:
// PASSED findings are RESOLVED/ARCHIVED and FAILED findings are NEW/ACTIVE.
type Finding struct {
	ID            string   `json:"id"`
	RuleID        string   `json:"ruleId"`
	GeneratorID   string   `json:"generatorId"`
	AccountID     string   `json:"awsAccountId"`
	Profile       string   `json:"profile,omitempty"`
	ProductARN    string   `json:"productArn"`
	SchemaVersion string   `json:"schemaVersion"`
	Types         []string `json:"types"`

	Severity    Severity `json:"severity"`
	Confidence  int      `json:"confidence"`
	Title       string   `json:"title"`
	Description string   `json:"description"`

	Status         ComplianceStatus `json:"status"`
	WorkflowStatus WorkflowStatus   `json:"workflowStatus"`
	RecordState    RecordState      `json:"recordState"`

	ResourceType      ResourceType `json:"resourceType"`
	ResourceID        string       `json:"resourceId"`
	ResourcePartition string       `json:"resourcePartition"`
	ResourceRegion    string       `json:"resourceRegion"`
	TopicName         string       `json:"topicName"`

	ComplianceFrameworkTags []string `json:"complianceFrameworkTags"`
	RemediationText         string   `json:"remediationText"`
	RemediationURL          string   `json:"remediationUrl"`

	FirstObservedAt time.Time `json:"firstObservedAt"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// Passed reports whether the finding records a compliant resource.
func (f Finding) Passed() bool { return f.Status == StatusPassed }

// CheckErrorRecord is the serialisable form of a check that could not be
// evaluated for one resource. It takes the place of a finding for that
// (resource, check) pair in the report. Region-level collection failures are
// recorded with an empty RuleID and ResourceID.
type CheckErrorRecord struct {
	RuleID     string `json:"ruleId"`
	ResourceID string `json:"resourceId"`
	Region     string `json:"region,omitempty"`
	Message    string `json:"message"`
}

// AuditSummary aggregates counts across all findings of a report.
type AuditSummary struct {
	TotalFindings         int `json:"total_findings"`
	PassedFindings        int `json:"passed_findings"`
	FailedFindings        int `json:"failed_findings"`
	CriticalFindings      int `json:"critical_findings"`
	HighFindings          int `json:"high_findings"`
	MediumFindings        int `json:"medium_findings"`
	LowFindings           int `json:"low_findings"`
	InformationalFindings int `json:"informational_findings"`
	Errors                int `json:"errors"`
	TopicsAudited         int `json:"topics_audited"`
}

// AuditReport is the top-level output of an audit run.
type AuditReport struct {
	ReportID    string             `json:"report_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	AuditType   string             `json:"audit_type"`
	Profile     string             `json:"profile"`
	AccountID   string             `json:"account_id"`
	Partition   string             `json:"partition"`
	Regions     []string           `json:"regions"`
	Summary     AuditSummary       `json:"summary"`
	Findings    []Finding          `json:"findings"`
	Errors      []CheckErrorRecord `json:"errors,omitempty"`
}
