// Package source decodes configuration files into the plain records
// (map[string]any, []any, scalars) that shapecheck validates.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/shapecheck/i18n"
	eng "github.com/reoring/shapecheck/internal/engine"
	"github.com/reoring/shapecheck/source/gojson"
)

// Format names a supported serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultMaxDepth bounds container nesting when Options.MaxDepth is zero.
const DefaultMaxDepth = 256

var (
	// ErrUnsupportedFormat is returned for file extensions other than
	// .json, .yaml and .yml.
	ErrUnsupportedFormat = errors.New("source: unsupported format")
	// ErrEmptyDocument is returned when the input holds no value.
	ErrEmptyDocument = errors.New("source: empty document")
	// ErrTrailingData is returned when JSON input continues after the first value.
	ErrTrailingData = errors.New("source: trailing data after top-level value")
)

// DecodeError reports an enforcement failure (duplicate key, depth, size)
// at a JSON Pointer location.
type DecodeError struct {
	Code    string // "duplicate_key", "too_deep" or "truncated"
	Path    string
	Message string // untranslated detail from the decoder
}

// Error renders the failure in the active i18n language.
func (e *DecodeError) Error() string {
	return i18n.T("decode_"+e.Code, map[string]string{"path": e.Path})
}

func fromEngineErr(err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return &DecodeError{Code: ie.Code, Path: ie.Path, Message: ie.Message}
	}
	return err
}

// Options controls decoding limits.
type Options struct {
	// MaxDepth limits container nesting. Zero means DefaultMaxDepth,
	// negative disables the check.
	MaxDepth int
	// MaxBytes limits the input size. Zero disables the check.
	MaxBytes int64
	// AllowDuplicateKeys accepts repeated object keys in JSON (last wins).
	// YAML always rejects them.
	AllowDuplicateKeys bool
}

func (o Options) maxDepth() int {
	if o.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	if o.MaxDepth < 0 {
		return 0
	}
	return o.MaxDepth
}

// FormatOf infers the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// LoadFile reads and decodes the file at path, picking the format from its
// extension.
func LoadFile(path string, opts Options) (any, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	v, err := Decode(b, f, opts)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return v, nil
}

// Decode decodes b according to f.
func Decode(b []byte, f Format, opts Options) (any, error) {
	switch f {
	case FormatJSON:
		return DecodeJSON(b, opts)
	case FormatYAML:
		return DecodeYAML(b, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// DecodeJSON decodes a single JSON value using go-json with duplicate-key,
// depth and size enforcement. Numbers become float64.
func DecodeJSON(b []byte, opts Options) (any, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, ErrEmptyDocument
	}
	onDup := eng.DupError
	if opts.AllowDuplicateKeys {
		onDup = eng.DupIgnore
	}
	src := eng.WrapWithEnforcement(gojson.NewBytes(b), eng.EnforceOptions{
		OnDuplicate: onDup,
		MaxDepth:    opts.maxDepth(),
		MaxBytes:    opts.MaxBytes,
	})
	v, err := eng.DecodeAny(src, eng.Float64)
	if err != nil {
		return nil, fromEngineErr(err)
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, ErrTrailingData
		}
		return nil, fromEngineErr(err)
	}
	return v, nil
}

// DecodeYAML decodes the first YAML document of b. Mappings are normalized to
// map[string]any so the result has the same shape as decoded JSON.
func DecodeYAML(b []byte, opts Options) (any, error) {
	if opts.MaxBytes > 0 && int64(len(b)) > opts.MaxBytes {
		return nil, &DecodeError{Code: "truncated", Path: "/", Message: "max bytes exceeded"}
	}
	var node any
	if err := yaml.NewDecoder(bytes.NewReader(b)).Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, err
	}
	return normalizeYAML(node, "", 0, opts.maxDepth())
}

// normalizeYAML converts YAML-decoded values (which may contain map[any]any)
// into JSON-like values recursively.
func normalizeYAML(v any, path string, depth, maxDepth int) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		if err := checkDepth(path, depth+1, maxDepth); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(t))
		for k, vv := range t {
			nv, err := normalizeYAML(vv, path+"/"+k, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case map[any]any:
		if err := checkDepth(path, depth+1, maxDepth); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks := fmt.Sprint(k)
			nv, err := normalizeYAML(vv, path+"/"+ks, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			out[ks] = nv
		}
		return out, nil
	case []any:
		if err := checkDepth(path, depth+1, maxDepth); err != nil {
			return nil, err
		}
		arr := make([]any, len(t))
		for i := range t {
			nv, err := normalizeYAML(t[i], fmt.Sprintf("%s/%d", path, i), depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			arr[i] = nv
		}
		return arr, nil
	default:
		return v, nil
	}
}

func checkDepth(path string, depth, maxDepth int) error {
	if maxDepth > 0 && depth > maxDepth {
		if path == "" {
			path = "/"
		}
		return &DecodeError{Code: "too_deep", Path: path, Message: "max depth exceeded"}
	}
	return nil
}
