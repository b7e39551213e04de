package shapecheck

import (
	"github.com/reoring/shapecheck/i18n"
)

// DefaultMaxDepth bounds the nesting depth of a validated tree when
// ValidateOpt.MaxDepth is zero.
const DefaultMaxDepth = 64

// ValidateOpt configures a validation call. Pass at most one; the last wins.
type ValidateOpt struct {
	// MaxDepth is the deepest path (in segments below the root) the engine
	// descends into before reporting CodeTooDeep. Zero means DefaultMaxDepth,
	// negative disables the guard.
	MaxDepth int
}

// Validate checks data against c and returns the first violation found in a
// depth-first, declaration-ordered walk as a *ValidationError, or nil.
//
// c must be an Object or a non-empty Union; anything else is reported as
// CodeInvalidConstraint. Unknown keys in data are ignored and data
// is never modified. Constraint values are read-only, so concurrent calls
// sharing the same constraints are safe.
func Validate(data any, c Constraint, opts ...ValidateOpt) error {
	w := newWalker(opts, false)
	w.constraint(data, c, Root())
	if len(w.issues) == 0 {
		return nil
	}
	return w.issues[0]
}

// ValidateAll is the collect mode of Validate: instead of stopping at the
// first violation it skips the remaining checks of the failing field and
// keeps walking. The result is Issues in traversal order, or nil.
func ValidateAll(data any, c Constraint, opts ...ValidateOpt) error {
	w := newWalker(opts, true)
	w.constraint(data, c, Root())
	if len(w.issues) == 0 {
		return nil
	}
	return w.issues
}

// walker carries the per-call state of one validation. It is never shared.
type walker struct {
	maxDepth int
	collect  bool
	issues   Issues
}

func newWalker(opts []ValidateOpt, collect bool) *walker {
	var opt ValidateOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	md := opt.MaxDepth
	if md == 0 {
		md = DefaultMaxDepth
	}
	return &walker{maxDepth: md, collect: collect}
}

// report records e. It always returns true so call sites can write
// `return w.report(...)` from functions returning "failed".
func (w *walker) report(e *ValidationError) bool {
	w.issues = append(w.issues, e)
	return true
}

func (w *walker) constraint(v any, c Constraint, p Path) bool {
	if w.maxDepth > 0 && p.Depth() > w.maxDepth {
		return w.report(tooDeep(p))
	}
	switch c := c.(type) {
	case Object:
		return w.object(v, c, p, nil)
	case Union:
		if len(c) > 0 {
			return w.union(v, c, p)
		}
	}
	return w.report(invalidConstraint(p))
}

// prepass lists fields whose dependency rules were already evaluated by the
// union resolver, and which of them failed.
type prepass struct {
	failed map[string]bool
}

func (w *walker) object(v any, o Object, p Path, pre *prepass) bool {
	rec, ok := asMap(v)
	if !ok {
		return w.report(notObject(p))
	}
	failed := false
	for _, f := range o {
		if pre != nil && pre.failed[f.Name] {
			continue
		}
		if w.field(rec, f, p, pre != nil) {
			failed = true
			if !w.collect {
				return true
			}
		}
	}
	return failed
}

// field validates one declared field of rec. parent is the path of rec.
func (w *walker) field(rec map[string]any, f Field, parent Path, depsDone bool) bool {
	fp := parent.Field(f.Name)
	val, present := rec[f.Name]
	if !present || isNull(val) {
		if f.Required {
			return w.report(required(fp))
		}
		return false
	}

	var items []any
	if f.IsArray {
		var ok bool
		if items, ok = asSlice(val); !ok {
			return w.report(notArray(fp))
		}
	} else if !matchesType(val, f.Type) {
		return w.report(invalidType(fp, f.Type))
	}

	for _, vd := range f.Validators {
		if !vd.Check(val) {
			return w.report(violation(fp, vd))
		}
	}

	if !depsDone && w.dependencies(rec, f, parent) {
		return true
	}

	if f.IsArray {
		failed := false
		for i, item := range items {
			if w.element(item, f, fp.Index(i)) {
				failed = true
				if !w.collect {
					return true
				}
			}
		}
		return failed
	}
	if f.Children != nil {
		return w.constraint(val, f.Children, fp)
	}
	return false
}

// element validates one item of an array field.
func (w *walker) element(item any, f Field, ip Path) bool {
	if f.Children != nil {
		return w.constraint(item, f.Children, ip)
	}
	if isNull(item) {
		return w.report(nullElement(ip))
	}
	if !matchesType(item, f.Type) {
		return w.report(invalidType(ip, f.Type))
	}
	return false
}

// ---- violation constructors ----

func required(p Path) *ValidationError {
	return &ValidationError{
		Code:    CodeRequired,
		Path:    p,
		Field:   p.label(),
		Message: i18n.T(CodeRequired, map[string]string{"field": p.label()}),
	}
}

func notArray(p Path) *ValidationError {
	return &ValidationError{
		Code:    CodeNotArray,
		Path:    p,
		Field:   p.label(),
		Message: i18n.T(CodeNotArray, map[string]string{"field": p.label()}),
	}
}

func notObject(p Path) *ValidationError {
	msg := i18n.T(CodeNotObject, map[string]string{"field": p.label()})
	if p.IsRoot() {
		msg = i18n.T("root_not_object", nil)
	}
	return &ValidationError{Code: CodeNotObject, Path: p, Field: p.label(), Message: msg}
}

func invalidType(p Path, t Type) *ValidationError {
	if t == TypeObject {
		return notObject(p)
	}
	return &ValidationError{
		Code:    CodeInvalidType,
		Path:    p,
		Field:   p.label(),
		Message: i18n.T(CodeInvalidType, map[string]string{"field": p.label(), "type": string(t)}),
		Params:  map[string]any{"expected": string(t)},
	}
}

func nullElement(p Path) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidType,
		Path:    p,
		Field:   p.label(),
		Message: i18n.T("null_element", map[string]string{"field": p.label()}),
	}
}

func invalidConstraint(p Path) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidConstraint,
		Path:    p,
		Field:   p.label(),
		Message: i18n.T(CodeInvalidConstraint, map[string]string{"field": p.label()}),
	}
}

func tooDeep(p Path) *ValidationError {
	return &ValidationError{
		Code:    CodeTooDeep,
		Path:    p,
		Field:   p.label(),
		Message: i18n.T(CodeTooDeep, map[string]string{"field": p.label()}),
	}
}

// violation builds the error for a failed validator on the value at p.
func violation(p Path, vd Validator) *ValidationError {
	if vd.Code == CodeRequired {
		return required(p)
	}
	var params map[string]any
	if len(vd.Params) > 0 {
		params = make(map[string]any, len(vd.Params))
		for k, v := range vd.Params {
			params[k] = v
		}
	}
	return &ValidationError{
		Code:    vd.Code,
		Path:    p,
		Field:   p.label(),
		Message: i18n.T("invalid_value", map[string]string{"field": p.label(), "detail": vd.message()}),
		Params:  params,
	}
}
