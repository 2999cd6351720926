package hydrate

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

var (
	ErrMissingField  = errors.New("missing required field")
	ErrUnknownKey    = errors.New("unknown key")
	ErrTypeMismatch  = errors.New("type mismatch")
	ErrUnknownPolicy = errors.New("unknown policy")
)

// Kind classifies a field level discrepancy found during hydration.
type Kind string

const (
	KindMissing      Kind = "missing_required_field"
	KindUnknown      Kind = "unknown_key"
	KindTypeMismatch Kind = "type_mismatch"
)

// FieldError is a single discrepancy. Hydration collects these instead of
// returning them, so a caller always sees every problem in one pass.
type FieldError struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Policy decides which kinds of discrepancies make a result unusable.
type Policy string

const (
	// PolicyLenient accepts every result.
	PolicyLenient Policy = "lenient"
	// PolicyRequireFields rejects missing required fields and type mismatches
	// but tolerates unknown keys.
	PolicyRequireFields Policy = "require"
	// PolicyStrict rejects any discrepancy.
	PolicyStrict Policy = "strict"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyLenient, nil
	case PolicyLenient, PolicyRequireFields, PolicyStrict:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

func (p Policy) Rejects(k Kind) bool {
	switch p {
	case PolicyStrict:
		return true
	case PolicyRequireFields:
		return k == KindMissing || k == KindTypeMismatch
	}
	return false
}

// combine folds the issues rejected by p into a single error.
func combine(p Policy, issues []*FieldError) error {
	var err error
	for _, issue := range issues {
		if p.Rejects(issue.Kind) {
			err = multierr.Append(err, issue)
		}
	}
	return err
}
