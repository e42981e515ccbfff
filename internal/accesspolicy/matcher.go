package accesspolicy

import (
	"fmt"
	"strings"
	"unicode"
)

// accountField is the index of the account ID in a colon-separated ARN:
// arn:partition:service:region:account-id:resource.
const accountField = 4

// PublicStatement returns the first statement that grants access to the
// wildcard principal without a Condition block. Evaluation stops at the first
// match; found is false when no statement qualifies.
//
// A Condition is taken as restricting access on presence alone.
func PublicStatement(doc *Document) (stmt Statement, found bool) {
	if doc == nil {
		return Statement{}, false
	}
	for _, s := range doc.Statement {
		if s.HasCondition() {
			continue
		}
		for _, p := range s.AWSPrincipals() {
			if p == Wildcard {
				return s, true
			}
		}
	}
	return Statement{}, false
}

// ForeignPrincipal returns the first AWS principal whose account differs from
// accountID. Wildcard and empty principals are skipped; wildcard exposure is
// the concern of PublicStatement.
//
// An error wrapping ErrMalformedPrincipal is returned as soon as a principal
// is met from which no account can be derived.
func ForeignPrincipal(doc *Document, accountID string) (principal string, found bool, err error) {
	if doc == nil {
		return "", false, nil
	}
	for _, s := range doc.Statement {
		for _, p := range s.AWSPrincipals() {
			if p == "" || p == Wildcard {
				continue
			}
			account, err := AccountFromPrincipal(p)
			if err != nil {
				return "", false, err
			}
			if account != accountID {
				return p, true, nil
			}
		}
	}
	return "", false, nil
}

// AccountFromPrincipal derives the account ID a principal belongs to. A
// string of digits is taken as the account ID itself; anything else is
// assumed to be an ARN and its fifth colon-separated field is returned.
//
// The ARN assumption is naive: a value such as "sns.amazonaws.com" has no
// fifth field and yields ErrMalformedPrincipal, while other non-ARN strings
// with enough colons return whatever sits in that position.
func AccountFromPrincipal(principal string) (string, error) {
	if isDigits(principal) {
		return principal, nil
	}
	fields := strings.Split(principal, ":")
	if len(fields) <= accountField {
		return "", fmt.Errorf("%w: %q has no account field", ErrMalformedPrincipal, principal)
	}
	return fields[accountField], nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
