package source_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reoring/shapecheck/i18n"
	"github.com/reoring/shapecheck/source"
)

func TestDecodeJSON(t *testing.T) {
	v, err := source.DecodeJSON([]byte(`{"a": [1, "x", true, null, {}], "b": {"c": 2.5}}`), source.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := v.(map[string]any)
	arr := m["a"].([]any)
	if len(arr) != 5 || arr[0] != 1.0 || arr[1] != "x" || arr[2] != true || arr[3] != nil {
		t.Fatalf("unexpected array: %#v", arr)
	}
	if _, ok := arr[4].(map[string]any); !ok {
		t.Fatalf("expected object element, got %T", arr[4])
	}
	if m["b"].(map[string]any)["c"] != 2.5 {
		t.Fatalf("unexpected nested value: %#v", m["b"])
	}
}

func TestDecodeJSON_EmptyArrayIsNotNil(t *testing.T) {
	v, err := source.DecodeJSON([]byte(`{"a": []}`), source.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr, ok := v.(map[string]any)["a"].([]any)
	if !ok || arr == nil || len(arr) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", v)
	}
}

func TestDecodeJSON_Enforcement(t *testing.T) {
	cases := []struct {
		name string
		in   string
		opts source.Options
		code string
		path string
	}{
		{name: "duplicate key", in: `{"a": {"b": 1, "b": 2}}`, code: "duplicate_key", path: "/a/b"},
		{name: "depth", in: `{"a": {"b": {"c": {}}}}`, opts: source.Options{MaxDepth: 3}, code: "too_deep", path: "/a/b/c"},
		{name: "max bytes", in: `{"name": "` + strings.Repeat("x", 64) + `"}`, opts: source.Options{MaxBytes: 16}, code: "truncated"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := source.DecodeJSON([]byte(tc.in), tc.opts)
			var de *source.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected DecodeError, got %T: %v", err, err)
			}
			if de.Code != tc.code {
				t.Fatalf("code: got %q want %q", de.Code, tc.code)
			}
			if tc.path != "" && de.Path != tc.path {
				t.Fatalf("path: got %q want %q", de.Path, tc.path)
			}
		})
	}
}

func TestDecodeJSON_AllowDuplicateKeys(t *testing.T) {
	v, err := source.DecodeJSON([]byte(`{"a": 1, "a": 2}`), source.Options{AllowDuplicateKeys: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(map[string]any)["a"] != 2.0 {
		t.Fatalf("expected last value to win, got %#v", v)
	}
}

func TestDecodeJSON_Errors(t *testing.T) {
	if _, err := source.DecodeJSON([]byte("  \n"), source.Options{}); !errors.Is(err, source.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := source.DecodeJSON([]byte(`{} {}`), source.Options{}); !errors.Is(err, source.ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}
	if _, err := source.DecodeJSON([]byte(`{"a": `), source.Options{}); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestDecodeYAML(t *testing.T) {
	in := "name: demo\nitems:\n  - 1\n  - two\nnested:\n  ok: true\n"
	v, err := source.DecodeYAML([]byte(in), source.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected map[string]any, got %T", v)
	}
	items := m["items"].([]any)
	if len(items) != 2 || items[1] != "two" {
		t.Fatalf("unexpected items: %#v", items)
	}
	if m["nested"].(map[string]any)["ok"] != true {
		t.Fatalf("unexpected nested: %#v", m["nested"])
	}
}

func TestDecodeYAML_Errors(t *testing.T) {
	if _, err := source.DecodeYAML([]byte(""), source.Options{}); !errors.Is(err, source.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := source.DecodeYAML([]byte("a: 1\na: 2\n"), source.Options{}); err == nil {
		t.Fatalf("expected duplicate key error")
	}
	_, err := source.DecodeYAML([]byte("a:\n  b:\n    c: 1\n"), source.Options{MaxDepth: 2})
	var de *source.DecodeError
	if !errors.As(err, &de) || de.Code != "too_deep" || de.Path != "/a/b" {
		t.Fatalf("expected too_deep at /a/b, got %v", err)
	}
	_, err = source.DecodeYAML([]byte("name: "+strings.Repeat("x", 64)), source.Options{MaxBytes: 8})
	if !errors.As(err, &de) || de.Code != "truncated" {
		t.Fatalf("expected truncated, got %v", err)
	}
}

func TestFormatOf(t *testing.T) {
	cases := map[string]source.Format{
		"a.json":      source.FormatJSON,
		"a.YAML":      source.FormatYAML,
		"dir/a.b.yml": source.FormatYAML,
	}
	for in, want := range cases {
		got, err := source.FormatOf(in)
		if err != nil || got != want {
			t.Errorf("%s: got %q, %v", in, got, err)
		}
	}
	if _, err := source.FormatOf("a.toml"); !errors.Is(err, source.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "d.json")
	if err := os.WriteFile(p, []byte(`{"k": "v"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	v, err := source.LoadFile(p, source.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(map[string]any)["k"] != "v" {
		t.Fatalf("unexpected value: %#v", v)
	}

	if _, err := source.LoadFile(filepath.Join(dir, "missing.yaml"), source.Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"a": 1, "a": 2}`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = source.LoadFile(bad, source.Options{})
	if err == nil || !strings.Contains(err.Error(), "bad.json") {
		t.Fatalf("expected error naming the file, got %v", err)
	}
}

func TestDecodeError_Localized(t *testing.T) {
	_, err := source.DecodeJSON([]byte(`{"a": 1, "a": 2}`), source.Options{})
	if err == nil || err.Error() != "duplicate key at /a" {
		t.Fatalf("unexpected error: %v", err)
	}

	i18n.SetLanguage("ja")
	t.Cleanup(func() { i18n.SetLanguage("en") })
	if got := err.Error(); got != "キーが重複しています: /a" {
		t.Fatalf("unexpected ja message: %q", got)
	}
	_, err = source.DecodeYAML([]byte("a:\n  b: 1\n"), source.Options{MaxDepth: 1})
	if err == nil || err.Error() != "最大ネスト深度を超えています: /a" {
		t.Fatalf("unexpected ja message: %v", err)
	}
}
