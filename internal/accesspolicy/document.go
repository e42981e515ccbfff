// Package accesspolicy parses IAM-style resource access policies (as attached
// to SNS topics) and answers the two questions the SNS checks ask of them:
// is any statement open to everyone, and does any statement name a principal
// from another account.
//
// The matcher is deliberately shallow. Condition blocks are detected but never
// evaluated, Effect is not consulted, and account IDs are taken from a fixed
// ARN field position. Callers report results with reduced confidence where
// that matters.
package accesspolicy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Wildcard is the principal value that matches every caller.
const Wildcard = "*"

var (
	// ErrMalformedPolicy is returned when a policy document is not valid JSON
	// or does not have the shape of an access policy.
	ErrMalformedPolicy = errors.New("malformed access policy")

	// ErrMalformedPrincipal is returned when an account ID cannot be derived
	// from a principal string.
	ErrMalformedPrincipal = errors.New("malformed principal")
)

// Document is a parsed access policy.
type Document struct {
	Version   string      `json:"Version,omitempty"`
	ID        string      `json:"Id,omitempty"`
	Statement []Statement `json:"Statement"`
}

// Statement is one entry of a policy document. Condition is kept raw: only its
// presence is ever inspected.
type Statement struct {
	Sid       string          `json:"Sid,omitempty"`
	Effect    string          `json:"Effect,omitempty"`
	Principal *Principal      `json:"Principal,omitempty"`
	Action    StringList      `json:"Action,omitempty"`
	Resource  StringList      `json:"Resource,omitempty"`
	Condition json.RawMessage `json:"Condition,omitempty"`
}

// HasCondition reports whether the statement carries a Condition key. A
// present-but-empty or null Condition still counts.
func (s Statement) HasCondition() bool {
	return s.Condition != nil
}

// AWSPrincipals returns the AWS principal values of the statement, or nil when
// the statement has no principal.
func (s Statement) AWSPrincipals() []string {
	if s.Principal == nil {
		return nil
	}
	return s.Principal.AWSValues()
}

// Principal is the Principal element of a statement. It is either the bare
// string "*" or an object keyed by principal type.
type Principal struct {
	// Any is set when the principal was written as the bare string "*".
	Any bool

	AWS       StringList `json:"AWS,omitempty"`
	Service   StringList `json:"Service,omitempty"`
	Federated StringList `json:"Federated,omitempty"`
}

// AWSValues returns the AWS principal strings. A bare "*" principal is
// reported as a single wildcard AWS principal.
func (p Principal) AWSValues() []string {
	if p.Any {
		return []string{Wildcard}
	}
	return p.AWS
}

// UnmarshalJSON accepts both the bare-string and the object form. Principal
// type keys are matched exactly: {"aws": ...} names no AWS principal.
func (p *Principal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != Wildcard {
			return fmt.Errorf("%w: principal string %q", ErrMalformedPolicy, s)
		}
		*p = Principal{Any: true}
		return nil
	}

	obj, err := decodeObject(data, "principal")
	if err != nil {
		return err
	}
	var out Principal
	if err := obj.field("AWS", &out.AWS); err != nil {
		return err
	}
	if err := obj.field("Service", &out.Service); err != nil {
		return err
	}
	if err := obj.field("Federated", &out.Federated); err != nil {
		return err
	}
	*p = out
	return nil
}

// UnmarshalJSON decodes a statement by exact key. A lowercase "condition" is
// not a Condition block.
func (s *Statement) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data, "statement")
	if err != nil {
		return err
	}
	var out Statement
	fields := []struct {
		key string
		dst any
	}{
		{"Sid", &out.Sid},
		{"Effect", &out.Effect},
		{"Action", &out.Action},
		{"Resource", &out.Resource},
	}
	for _, f := range fields {
		if err := obj.field(f.key, f.dst); err != nil {
			return err
		}
	}
	if raw, ok := obj["Principal"]; ok && !isNull(raw) {
		out.Principal = &Principal{}
		if err := obj.field("Principal", out.Principal); err != nil {
			return err
		}
	}
	if raw, ok := obj["Condition"]; ok {
		out.Condition = raw
	}
	*s = out
	return nil
}

// object is a JSON object indexed by its literal keys. encoding/json folds
// case when matching struct tags, and policy keys are case-sensitive.
type object map[string]json.RawMessage

func decodeObject(data []byte, what string) (object, error) {
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPolicy, what, err)
	}
	return obj, nil
}

// field decodes the value stored under key into dst. A missing key leaves dst
// untouched.
func (o object) field(key string, dst any) error {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		if errors.Is(err, ErrMalformedPolicy) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrMalformedPolicy, key, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// StringList is a JSON value that may be written as a single string or as an
// array of strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*l = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("%w: expected string or string array", ErrMalformedPolicy)
	}
	*l = many
	return nil
}

// UnmarshalJSON accepts Statement as either an array or a single object.
func (d *Document) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data, "document")
	if err != nil {
		return err
	}
	var out Document
	if err := obj.field("Version", &out.Version); err != nil {
		return err
	}
	if err := obj.field("Id", &out.ID); err != nil {
		return err
	}

	body := bytes.TrimSpace(obj["Statement"])
	switch {
	case len(body) == 0 || isNull(body):
	case body[0] == '{':
		var one Statement
		if err := json.Unmarshal(body, &one); err != nil {
			return err
		}
		out.Statement = []Statement{one}
	default:
		if err := obj.field("Statement", &out.Statement); err != nil {
			return err
		}
	}
	*d = out
	return nil
}

// Parse decodes a policy document. An empty or whitespace-only input yields a
// document with no statements.
func Parse(raw string) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return &Document{}, nil
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		if errors.Is(err, ErrMalformedPolicy) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedPolicy, err)
	}
	return &doc, nil
}
