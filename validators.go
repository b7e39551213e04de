package shapecheck

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/reoring/shapecheck/i18n"
)

// Validator is a predicate plus the message fragment reported when it fails.
// Check must be pure: it sees the field value and nothing else.
type Validator struct {
	Code    string
	Message string
	Params  map[string]any
	Check   func(v any) bool
}

// message returns the localized fragment for built-in codes and the caller's
// message otherwise.
func (v Validator) message() string {
	switch v.Code {
	case CodeInvalidEnum:
		return i18n.T(CodeInvalidEnum, map[string]string{"values": joinValues(v.Params["values"])})
	case CodeInvalidMap:
		return i18n.T(CodeInvalidMap, nil)
	}
	if v.Message == "" && v.Code == CodePattern {
		return i18n.T("invalid_pattern", nil)
	}
	return v.Message
}

// Required fails when the value is absent or null.
var Required = Validator{
	Code:  CodeRequired,
	Check: func(v any) bool { return !isNull(v) },
}

// MapOfStrings fails unless the value is a mapping whose values are all strings.
var MapOfStrings = Validator{
	Code: CodeInvalidMap,
	Check: func(v any) bool {
		m, ok := asMap(v)
		if !ok {
			return false
		}
		for _, e := range m {
			if _, ok := asString(e); !ok {
				return false
			}
		}
		return true
	},
}

// Pattern fails when the value is not a string matching re. message is
// reported verbatim.
func Pattern(re *regexp.Regexp, message string) Validator {
	return Validator{
		Code:    CodePattern,
		Message: message,
		Params:  map[string]any{"pattern": re.String()},
		Check: func(v any) bool {
			s, ok := asString(v)
			return ok && re.MatchString(s)
		},
	}
}

// Values fails when the value is not one of allowed. The failure message lists
// allowed in declared order.
func Values(allowed ...string) Validator {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return Validator{
		Code:   CodeInvalidEnum,
		Params: map[string]any{"values": append([]string(nil), allowed...)},
		Check: func(v any) bool {
			s, ok := asString(v)
			if !ok {
				return false
			}
			_, ok = set[s]
			return ok
		},
	}
}

// Func builds a custom validator. An empty code defaults to CodeCustom.
func Func(code, message string, check func(v any) bool) Validator {
	if code == "" {
		code = CodeCustom
	}
	return Validator{Code: code, Message: message, Check: check}
}

func joinValues(v any) string {
	vals, _ := v.([]string)
	return strings.Join(vals, ", ")
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// asMap views v as a string-keyed mapping. Decoders in this module produce
// map[string]any; other string-keyed maps are accepted through reflection.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asString accepts string and named string types.
func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

// asSlice views v as a sequence. Byte slices are treated as scalars.
func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

// matchesType reports whether v structurally matches t.
func matchesType(v any, t Type) bool {
	switch t {
	case TypeAny:
		return true
	case TypeString:
		_, ok := asString(v)
		return ok
	case TypeBoolean:
		return reflect.ValueOf(v).Kind() == reflect.Bool
	case TypeObject:
		_, ok := asMap(v)
		return ok
	case TypeNumber:
		switch reflect.ValueOf(v).Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		}
		return false
	}
	return false
}
