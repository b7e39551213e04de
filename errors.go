package shapecheck

import (
	"errors"
	"fmt"
	"strings"
)

// Violation codes (exported consts for IDE completion and type safety by convention)
const (
	CodeRequired    = "required"
	CodeInvalidType = "invalid_type"
	CodeNotArray    = "not_array"
	CodeNotObject   = "not_object"
	CodeInvalidEnum = "invalid_enum"
	CodePattern     = "pattern"
	CodeInvalidMap  = "invalid_map"
	CodeCustom      = "custom"
	CodeDependency  = "dependency"
	CodeTooDeep     = "too_deep"
)

// CodeInvalidConstraint marks a nil constraint or an empty Union, reported at
// the path where the constraint was applied.
const CodeInvalidConstraint = "invalid_constraint"

// ValidationError is the single violation reported by Validate.
type ValidationError struct {
	Code    string
	Path    Path   // Location of the violation; a dependency error sits on the depending field.
	Field   string // Label of the offending field as used in Message.
	Message string
	// Params carries structured parameters (e.g., {"values": [...]}) for
	// callers and i18n. The union resolver adds "variant" and "matched".
	Params map[string]any
	// Cause is the sibling violation nested in a dependency error.
	Cause *ValidationError
}

func (e *ValidationError) Error() string {
	return e.Message + " (" + e.Path.String() + ")"
}

// Unwrap exposes the nested sibling violation of a dependency error.
func (e *ValidationError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// Location is the JSONPath-like rendering of Path.
func (e *ValidationError) Location() string { return e.Path.String() }

// Pointer is the RFC 6901 rendering of Path.
func (e *ValidationError) Pointer() string { return e.Path.Pointer() }

func (e *ValidationError) setParam(k string, v any) {
	if e.Params == nil {
		e.Params = map[string]any{}
	}
	e.Params[k] = v
}

// Issues is the collection returned by ValidateAll. It implements error.
type Issues []*ValidationError

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		// e.g. required at $.microservices[0].name
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsValidationError extracts the first ValidationError from err. For Issues
// the first entry is returned.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	if iss, ok := AsIssues(err); ok && len(iss) > 0 {
		return iss[0], true
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
