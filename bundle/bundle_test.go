package bundle_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sc "github.com/reoring/shapecheck"
	"github.com/reoring/shapecheck/bundle"
	"github.com/reoring/shapecheck/source"
)

// newBundleDescriptor returns a fresh valid descriptor on every call.
func newBundleDescriptor() map[string]any {
	return map[string]any{
		"name":        "test-bundle",
		"description": "test description",
		"version":     "0.0.1",
		"type":        "bundle",
		"svc":         []any{"postgresql"},
		"global": map[string]any{
			"nav": []any{
				map[string]any{"label": map[string]any{"en": "Home"}, "target": "internal", "url": "/home"},
			},
		},
		"microservices": []any{
			map[string]any{
				"name":            "test-ms-spring-boot-1",
				"stack":           "spring-boot",
				"dbms":            "postgresql",
				"healthCheckPath": "/api/health",
				"securityLevel":   "strict",
				"env": []any{
					map[string]any{"name": "ENV_1_NAME", "value": "env1value"},
					map[string]any{
						"name": "ENV_2_NAME",
						"valueFrom": map[string]any{
							"secretKeyRef": map[string]any{"name": "env-2-secret", "key": "env-2-secret-key"},
						},
					},
				},
				"commands": map[string]any{"build": "mvn package"},
			},
			map[string]any{
				"name":        "test-ms-node-2",
				"stack":       "node",
				"roles":       []any{"admin"},
				"permissions": []any{map[string]any{"clientId": "realm-management", "role": "manage-users"}},
			},
		},
		"microfrontends": []any{
			map[string]any{
				"name":         "test-mfe-1",
				"stack":        "react",
				"type":         "widget",
				"titles":       map[string]any{"en": "Test MFE", "it": "Test MFE"},
				"group":        "free",
				"publicFolder": "public",
				"apiClaims": []any{
					map[string]any{"name": "ext-api", "type": "external", "serviceId": "ms1", "bundleId": "other-bundle"},
				},
				"nav": []any{
					map[string]any{"label": map[string]any{"en": "Page"}, "target": "internal", "url": "/page"},
				},
			},
			map[string]any{
				"name":   "test-mfe-2",
				"stack":  "react",
				"type":   "widget",
				"titles": map[string]any{"en": "Second"},
				"group":  "free",
				"apiClaims": []any{
					map[string]any{"name": "int-api", "type": "internal", "serviceId": "test-ms-spring-boot-1"},
				},
			},
		},
	}
}

func microfrontend(d map[string]any, i int) map[string]any {
	return d["microfrontends"].([]any)[i].(map[string]any)
}

func microservice(d map[string]any, i int) map[string]any {
	return d["microservices"].([]any)[i].(map[string]any)
}

func mustViolation(t *testing.T, err error) *sc.ValidationError {
	t.Helper()
	ve, ok := sc.AsValidationError(err)
	if !ok {
		t.Fatalf("expected a validation error, got %T: %v", err, err)
	}
	return ve
}

func TestValidate_ValidDescriptor(t *testing.T) {
	if err := bundle.Validate(newBundleDescriptor()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bundle.ValidateAll(newBundleDescriptor()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Descriptor(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(d map[string]any)
		code    string
		path    string
		message string
	}{
		{
			name:    "required field",
			mutate:  func(d map[string]any) { delete(microservice(d, 0), "name") },
			code:    sc.CodeRequired,
			path:    "$.microservices[0].name",
			message: `Field "name" is required`,
		},
		{
			name: "field that allows only specific values",
			mutate: func(d map[string]any) {
				microfrontend(d, 1)["apiClaims"] = []any{
					map[string]any{"name": "invalid-claim", "type": "invalid-type", "serviceId": "service-id"},
				}
			},
			code:    sc.CodeInvalidEnum,
			path:    "$.microfrontends[1].apiClaims[0].type",
			message: `Field "type" is not valid. Allowed values are: internal`,
		},
		{
			name: "field that requires another field to exist",
			mutate: func(d map[string]any) {
				microfrontend(d, 1)["apiClaims"] = []any{
					map[string]any{"name": "invalid-claim", "type": "external", "serviceId": "service-id"},
				}
			},
			code:    sc.CodeDependency,
			path:    "$.microfrontends[1].apiClaims[0].type",
			message: `Field "type" depends on field "bundleId" with validation: Field "bundleId" is required`,
		},
		{
			name: "field that requires another field to have a specific value",
			mutate: func(d map[string]any) {
				microfrontend(d, 1)["apiClaims"] = []any{
					map[string]any{"name": "invalid-claim", "type": "internal", "serviceId": "service-id", "bundleId": "my-bundle"},
				}
			},
			code:    sc.CodeDependency,
			path:    "$.microfrontends[1].apiClaims[0].bundleId",
			message: `Field "bundleId" depends on field "type" with validation: Field "type" is not valid. Allowed values are: external`,
		},
		{
			name:    "object instead of array",
			mutate:  func(d map[string]any) { microfrontend(d, 1)["apiClaims"] = map[string]any{} },
			code:    sc.CodeNotArray,
			path:    "$.microfrontends[1].apiClaims",
			message: `Field "apiClaims" should be an array`,
		},
		{
			name:    "required array",
			mutate:  func(d map[string]any) { d["microservices"] = nil },
			code:    sc.CodeRequired,
			path:    "$.microservices",
			message: `Field "microservices" is required`,
		},
		{
			name: "microfrontend titles",
			mutate: func(d map[string]any) {
				microfrontend(d, 0)["titles"] = map[string]any{"en": map[string]any{"not": "valid"}}
			},
			code:    sc.CodeInvalidMap,
			path:    "$.microfrontends[0].titles",
			message: `Field "titles" is not valid. Should be a key-value map of strings`,
		},
		{
			name:    "primitive field wrong type",
			mutate:  func(d map[string]any) { d["description"] = []any{} },
			code:    sc.CodeInvalidType,
			path:    "$.description",
			message: `Field "description" is not valid. Should be a string`,
		},
		{
			name:    "name using regexp",
			mutate:  func(d map[string]any) { microfrontend(d, 1)["name"] = "invalid mfe name" },
			code:    sc.CodePattern,
			path:    "$.microfrontends[1].name",
			message: `Field "name" is not valid. ` + bundle.InvalidNameMessage,
		},
		{
			name:    "descriptor type",
			mutate:  func(d map[string]any) { d["type"] = "plugin" },
			code:    sc.CodeInvalidEnum,
			path:    "$.type",
			message: `Field "type" is not valid. Allowed values are: bundle`,
		},
		{
			name: "environment variable secret reference",
			mutate: func(d map[string]any) {
				env := microservice(d, 0)["env"].([]any)
				env[1] = map[string]any{"name": "ENV_2_NAME", "valueFrom": map[string]any{"secretKeyRef": map[string]any{"name": "s"}}}
			},
			code:    sc.CodeRequired,
			path:    "$.microservices[0].env[1].valueFrom.secretKeyRef.key",
			message: `Field "key" is required`,
		},
		{
			name:    "microservice stack",
			mutate:  func(d map[string]any) { microservice(d, 1)["stack"] = "python" },
			code:    sc.CodeInvalidEnum,
			path:    "$.microservices[1].stack",
			message: `Field "stack" is not valid. Allowed values are: spring-boot, node`,
		},
		{
			name: "global nav label",
			mutate: func(d map[string]any) {
				d["global"] = map[string]any{"nav": []any{map[string]any{"label": "Home", "target": "internal", "url": "/"}}}
			},
			code:    sc.CodeInvalidMap,
			path:    "$.global.nav[0].label",
			message: `Field "label" is not valid. Should be a key-value map of strings`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newBundleDescriptor()
			tc.mutate(d)
			ve := mustViolation(t, bundle.Validate(d))
			if ve.Code != tc.code {
				t.Fatalf("code: got %q want %q (%v)", ve.Code, tc.code, ve)
			}
			if ve.Location() != tc.path {
				t.Fatalf("path: got %q want %q", ve.Location(), tc.path)
			}
			if ve.Message != tc.message {
				t.Fatalf("message: got %q want %q", ve.Message, tc.message)
			}
		})
	}
}

func appBuilder(slot string, extra map[string]any) map[string]any {
	m := map[string]any{
		"name":   "app-builder-mfe",
		"stack":  "react",
		"type":   "app-builder",
		"titles": map[string]any{"en": "AB"},
		"group":  "free",
	}
	if slot != "" {
		m["slot"] = slot
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func TestValidate_AppBuilderMicroFrontends(t *testing.T) {
	cases := []struct {
		name    string
		mfe     map[string]any
		path    string
		message string
	}{
		{name: "header slot", mfe: appBuilder("primary-header", nil)},
		{name: "menu slot", mfe: appBuilder("primary-menu", nil)},
		{name: "content slot with paths", mfe: appBuilder("content", map[string]any{"paths": []any{"/a", "/b"}})},
		{
			name:    "missing slot",
			mfe:     appBuilder("", nil),
			path:    "$.microfrontends[2].type",
			message: `Field "type" depends on field "slot" with validation: Field "slot" is required`,
		},
		{
			name:    "content slot without paths",
			mfe:     appBuilder("content", nil),
			path:    "$.microfrontends[2].slot",
			message: `Field "slot" depends on field "paths" with validation: Field "paths" is required`,
		},
		{
			name:    "paths element type",
			mfe:     appBuilder("content", map[string]any{"paths": []any{"/a", 1.0}}),
			path:    "$.microfrontends[2].paths[1]",
			message: `Field "paths[1]" is not valid. Should be a string`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newBundleDescriptor()
			d["microfrontends"] = append(d["microfrontends"].([]any), tc.mfe)
			err := bundle.Validate(d)
			if tc.path == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			ve := mustViolation(t, err)
			if ve.Location() != tc.path || ve.Message != tc.message {
				t.Fatalf("got %s %q", ve.Location(), ve.Message)
			}
		})
	}
}

func TestValidateAll_ReportsEveryViolation(t *testing.T) {
	d := newBundleDescriptor()
	delete(microservice(d, 0), "name")
	d["description"] = 3.0
	microfrontend(d, 1)["name"] = "bad name"

	iss, ok := sc.AsIssues(bundle.ValidateAll(d))
	if !ok {
		t.Fatalf("expected issues")
	}
	want := []string{"$.description", "$.microservices[0].name", "$.microfrontends[1].name"}
	if len(iss) != len(want) {
		t.Fatalf("expected %d issues, got %v", len(want), iss)
	}
	for i, p := range want {
		if iss[i].Location() != p {
			t.Fatalf("issue %d: got %s want %s", i, iss[i].Location(), p)
		}
	}
}

const descriptorYAML = `name: yaml-bundle
version: 1.0.0
type: bundle
microservices:
  - name: ms
    stack: node
microfrontends:
  - name: mfe
    stack: angular
    type: widget-config
    group: free
    titles:
      en: Config
`

const descriptorJSON = `{
  "name": "json-bundle",
  "version": "1.0.0",
  "type": "bundle",
  "microservices": [{"name": "ms", "stack": "spring-boot"}],
  "microfrontends": [{"name": "mfe", "stack": "react", "type": "widget", "group": "free", "titles": {"en": "W"}}]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestValidateFile(t *testing.T) {
	if err := bundle.ValidateFile(writeFile(t, "entando.yaml", descriptorYAML)); err != nil {
		t.Fatalf("yaml: unexpected error: %v", err)
	}
	if err := bundle.ValidateFile(writeFile(t, "bundle.json", descriptorJSON)); err != nil {
		t.Fatalf("json: unexpected error: %v", err)
	}

	bad := strings.Replace(descriptorYAML, "stack: node", "stack: cobol", 1)
	ve := mustViolation(t, bundle.ValidateFile(writeFile(t, "bad.yml", bad)))
	if ve.Location() != "$.microservices[0].stack" {
		t.Fatalf("unexpected violation: %v", ve)
	}

	dup := `{"name": "a", "name": "b"}`
	err := bundle.ValidateFile(writeFile(t, "dup.json", dup))
	var de *source.DecodeError
	if !errors.As(err, &de) || de.Code != "duplicate_key" {
		t.Fatalf("expected duplicate key decode error, got %v", err)
	}

	if err := bundle.ValidateFile(writeFile(t, "bundle.toml", "")); !errors.Is(err, source.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
}
