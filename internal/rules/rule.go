package rules

import (
	"fmt"
	"time"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

// RuleContext carries everything a rule needs to evaluate one topic.
// It is the sole input to Rule.Evaluate; rules must never make network calls
// or read external state.
type RuleContext struct {
	// AccountID is the AWS account the topic belongs to.
	AccountID string

	// Region and Partition locate the topic; both appear in the ProductArn.
	Region    string
	Partition string

	// Profile is the AWS profile name for this evaluation run.
	Profile string

	// Topic is the resource under evaluation.
	Topic models.Topic

	// NormalizeSeverity emits "LOW" instead of the legacy "Low" label on
	// cross-account failures.
	NormalizeSeverity bool

	// Now is the observation timestamp stamped on every finding. The zero
	// value means time.Now().UTC().
	Now time.Time
}

func (ctx RuleContext) observedAt() time.Time {
	if ctx.Now.IsZero() {
		return time.Now().UTC()
	}
	return ctx.Now.UTC()
}

// Rule is a single deterministic topic check.
// Rules must be stateless and safe to call concurrently.
// They must never call the AWS SDK or any external service.
type Rule interface {
	// ID returns the unique, stable identifier for this rule (e.g. "SNS.1").
	ID() string

	// Name returns a short human-readable rule name.
	Name() string

	// Evaluate inspects ctx.Topic and returns zero or more findings. A non-nil
	// error is always a *CheckError and replaces the findings for this topic.
	Evaluate(ctx RuleContext) ([]models.Finding, error)
}

// RuleRegistry manages the set of active rules and drives evaluation.
type RuleRegistry interface {
	// Register adds a rule to the registry. Panics on duplicate ID.
	Register(rule Rule)

	// All returns all registered rules in registration order.
	All() []Rule

	// EvaluateAll runs every registered rule against ctx and merges results.
	EvaluateAll(ctx RuleContext) ([]models.Finding, []error)
}

// CheckError reports a check that could not be evaluated for one topic.
// Evaluation of other checks and other topics is unaffected.
type CheckError struct {
	RuleID     string
	ResourceID string
	Region     string
	Err        error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.RuleID, e.ResourceID, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// Record converts e into its report form.
func (e *CheckError) Record() models.CheckErrorRecord {
	return models.CheckErrorRecord{
		RuleID:     e.RuleID,
		ResourceID: e.ResourceID,
		Region:     e.Region,
		Message:    e.Err.Error(),
	}
}

func checkError(ruleID string, ctx RuleContext, err error) *CheckError {
	return &CheckError{
		RuleID:     ruleID,
		ResourceID: ctx.Topic.ARN,
		Region:     ctx.Region,
		Err:        err,
	}
}
