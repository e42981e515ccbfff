package rules

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

func TestSNSTopicEncryptionRule_KeyPresent(t *testing.T) {
	ctx := topicCtx(map[string]string{models.AttrKmsMasterKeyID: "alias/aws/sns"})
	findings, err := SNSTopicEncryptionRule{}.Evaluate(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("want 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Status != models.StatusPassed {
		t.Errorf("want PASSED, got %s", f.Status)
	}
	if f.Description != "SNS topic orders is encrypted." {
		t.Errorf("unexpected description %q", f.Description)
	}
	if f.ID != testARN+"/sns-topic-encryption-check" {
		t.Errorf("unexpected ID %s", f.ID)
	}
}

func TestSNSTopicEncryptionRule_KeyMissing(t *testing.T) {
	findings, err := SNSTopicEncryptionRule{}.Evaluate(topicCtx(map[string]string{}))
	if err != nil {
		t.Fatalf("absence must not be an error, got %v", err)
	}
	f := findings[0]
	if f.Status != models.StatusFailed {
		t.Errorf("want FAILED, got %s", f.Status)
	}
	if f.Severity != models.SeverityHigh {
		t.Errorf("want HIGH, got %s", f.Severity)
	}
	if f.Confidence != 99 {
		t.Errorf("want confidence 99, got %d", f.Confidence)
	}
}

func TestSNSTopicEncryptionRule_KeyEmpty(t *testing.T) {
	findings, _ := SNSTopicEncryptionRule{}.Evaluate(topicCtx(map[string]string{models.AttrKmsMasterKeyID: ""}))
	if findings[0].Status != models.StatusFailed {
		t.Errorf("empty key must fail, got %s", findings[0].Status)
	}
}

func TestSNSTopicEncryptionRule_NilAttributes(t *testing.T) {
	findings, err := SNSTopicEncryptionRule{}.Evaluate(topicCtx(nil))
	if err != nil || findings[0].Status != models.StatusFailed {
		t.Errorf("want FAILED without error, got %v / %v", findings, err)
	}
}

func TestSNSTopicEncryptionRule_AttributesUnavailable(t *testing.T) {
	ctx := topicCtx(nil)
	ctx.Topic.AttributesErr = errors.New("AccessDenied")
	findings, err := SNSTopicEncryptionRule{}.Evaluate(ctx)
	if len(findings) != 0 {
		t.Errorf("want no findings, got %d", len(findings))
	}
	var ce *CheckError
	if !errors.As(err, &ce) {
		t.Fatalf("want *CheckError, got %T", err)
	}
	if ce.RuleID != "SNS.1" || ce.ResourceID != testARN || ce.Region != testRegion {
		t.Errorf("unexpected check error %+v", ce)
	}
}

func TestSNSTopicEncryptionRule_Idempotent(t *testing.T) {
	ctx := topicCtx(map[string]string{models.AttrKmsMasterKeyID: "k"})
	a, _ := SNSTopicEncryptionRule{}.Evaluate(ctx)
	b, _ := SNSTopicEncryptionRule{}.Evaluate(ctx)
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated evaluation must yield identical findings")
	}
}
