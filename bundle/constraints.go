// Package bundle declares the constraint tree of the bundle descriptor
// format and validates decoded descriptors against it.
package bundle

import (
	"regexp"

	sc "github.com/reoring/shapecheck"
)

// Allowed values of the enumerated descriptor fields.
var (
	MicroserviceStacks  = []string{"spring-boot", "node"}
	MicroFrontendStacks = []string{"react", "angular"}
	DBMSs               = []string{"none", "embedded", "postgresql", "mysql"}
	SecurityLevels      = []string{"strict", "lenient"}
)

const (
	ApiTypeInternal = "internal"
	ApiTypeExternal = "external"

	MicroFrontendTypeWidget       = "widget"
	MicroFrontendTypeWidgetConfig = "widget-config"
	MicroFrontendTypeAppBuilder   = "app-builder"

	SlotPrimaryHeader = "primary-header"
	SlotPrimaryMenu   = "primary-menu"
	SlotContent       = "content"

	DescriptorType = "bundle"
)

var (
	ApiTypes           = []string{ApiTypeInternal, ApiTypeExternal}
	MicroFrontendTypes = []string{MicroFrontendTypeWidget, MicroFrontendTypeWidgetConfig, MicroFrontendTypeAppBuilder}
	AppBuilderSlots    = []string{SlotPrimaryHeader, SlotPrimaryMenu, SlotContent}
)

// NameRegexp restricts component and bundle names to a safe character set.
var NameRegexp = regexp.MustCompile(`^[\w-]+$`)

// InvalidNameMessage is reported when a name does not match NameRegexp.
const InvalidNameMessage = "Only alphanumeric characters, underscore and dash are allowed"

var nameValidator = sc.Pattern(NameRegexp, InvalidNameMessage)

func requiredString(name string, validators ...sc.Validator) sc.Field {
	return sc.Field{Name: name, Required: true, Type: sc.TypeString, Validators: validators}
}

func optionalString(name string, validators ...sc.Validator) sc.Field {
	return sc.Field{Name: name, Type: sc.TypeString, Validators: validators}
}

// EnvironmentVariableConstraints accepts either a literal value or a secret
// reference.
var EnvironmentVariableConstraints = sc.Union{
	{
		requiredString("name"),
		requiredString("value"),
	},
	{
		requiredString("name"),
		{
			Name:     "valueFrom",
			Required: true,
			Children: sc.Object{
				{
					Name:     "secretKeyRef",
					Required: true,
					Children: sc.Object{
						requiredString("name"),
						requiredString("key"),
					},
				},
			},
		},
	},
}

// ApiClaimConstraints distinguishes claims on services of the same bundle
// from claims on another bundle, which must name it in bundleId.
var ApiClaimConstraints = sc.Union{
	{
		requiredString("name"),
		requiredString("type", sc.Values(ApiTypeInternal)),
		requiredString("serviceId"),
	},
	{
		requiredString("name"),
		{
			Name:       "type",
			Required:   true,
			Type:       sc.TypeString,
			Validators: []sc.Validator{sc.Values(ApiTypeExternal)},
			DependsOn:  []sc.Dependency{{Field: "bundleId", Validators: []sc.Validator{sc.Required}}},
		},
		requiredString("serviceId"),
		{
			Name:      "bundleId",
			Required:  true,
			Type:      sc.TypeString,
			DependsOn: []sc.Dependency{{Field: "type", Validators: []sc.Validator{sc.Values(ApiTypeExternal)}}},
		},
	},
}

// NavConstraints describes a navigation entry.
var NavConstraints = sc.Object{
	{Name: "label", Required: true, Validators: []sc.Validator{sc.MapOfStrings}, Children: sc.Object{}},
	requiredString("target"),
	requiredString("url"),
}

var commandsField = sc.Field{
	Name:     "commands",
	Children: sc.Object{optionalString("build")},
}

// MicroserviceConstraints describes one microservice component.
var MicroserviceConstraints = sc.Object{
	requiredString("name", nameValidator),
	requiredString("stack", sc.Values(MicroserviceStacks...)),
	optionalString("deploymentBaseName"),
	optionalString("dbms", sc.Values(DBMSs...)),
	optionalString("ingressPath"),
	optionalString("healthCheckPath"),
	{Name: "roles", IsArray: true, Type: sc.TypeString},
	optionalString("securityLevel", sc.Values(SecurityLevels...)),
	{
		Name:    "permissions",
		IsArray: true,
		Children: sc.Object{
			requiredString("clientId"),
			requiredString("role"),
		},
	},
	{Name: "env", IsArray: true, Children: EnvironmentVariableConstraints},
	commandsField,
}

// microFrontendBase returns the fields every micro frontend variant shares,
// in declaration order.
func microFrontendBase() sc.Object {
	return sc.Object{
		requiredString("name", nameValidator),
		optionalString("code"),
		requiredString("stack", sc.Values(MicroFrontendStacks...)),
	}
}

func microFrontendCommon() sc.Object {
	return sc.Object{
		{Name: "titles", Required: true, Validators: []sc.Validator{sc.MapOfStrings}, Children: sc.Object{}},
		optionalString("publicFolder"),
		requiredString("group"),
		{Name: "apiClaims", IsArray: true, Children: ApiClaimConstraints},
		{Name: "nav", IsArray: true, Children: NavConstraints},
		commandsField,
	}
}

func concat(parts ...sc.Object) sc.Object {
	var out sc.Object
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// MicroFrontendConstraints has three variants: widgets, app-builder header
// and menu extensions, and app-builder content pages which also need paths.
var MicroFrontendConstraints = sc.Union{
	concat(
		microFrontendBase(),
		sc.Object{requiredString("type", sc.Values(MicroFrontendTypeWidget, MicroFrontendTypeWidgetConfig))},
		microFrontendCommon(),
	),
	concat(
		microFrontendBase(),
		microFrontendCommon(),
		sc.Object{
			{
				Name:       "type",
				Required:   true,
				Type:       sc.TypeString,
				Validators: []sc.Validator{sc.Values(MicroFrontendTypeAppBuilder)},
				DependsOn:  []sc.Dependency{{Field: "slot", Validators: []sc.Validator{sc.Required}}},
			},
			{
				Name:       "slot",
				Required:   true,
				Type:       sc.TypeString,
				Validators: []sc.Validator{sc.Values(SlotPrimaryHeader, SlotPrimaryMenu)},
				DependsOn:  []sc.Dependency{{Field: "type", Validators: []sc.Validator{sc.Values(MicroFrontendTypeAppBuilder)}}},
			},
		},
	),
	concat(
		microFrontendBase(),
		microFrontendCommon(),
		sc.Object{
			{
				Name:       "type",
				Required:   true,
				Type:       sc.TypeString,
				Validators: []sc.Validator{sc.Values(MicroFrontendTypeAppBuilder)},
				DependsOn:  []sc.Dependency{{Field: "slot", Validators: []sc.Validator{sc.Required}}},
			},
			{
				Name:       "slot",
				Required:   true,
				Type:       sc.TypeString,
				Validators: []sc.Validator{sc.Values(SlotContent)},
				DependsOn: []sc.Dependency{
					{Field: "type", Validators: []sc.Validator{sc.Values(MicroFrontendTypeAppBuilder)}},
					{Field: "paths", Validators: []sc.Validator{sc.Required}},
				},
			},
			{
				Name:      "paths",
				Required:  true,
				IsArray:   true,
				Type:      sc.TypeString,
				DependsOn: []sc.Dependency{{Field: "slot", Validators: []sc.Validator{sc.Values(SlotContent)}}},
			},
		},
	),
}

// DescriptorConstraints is the top-level constraint of a bundle descriptor.
var DescriptorConstraints = sc.Object{
	requiredString("name", nameValidator),
	optionalString("description"),
	requiredString("version"),
	requiredString("type", sc.Values(DescriptorType)),
	{Name: "microservices", Required: true, IsArray: true, Children: MicroserviceConstraints},
	{Name: "microfrontends", Required: true, IsArray: true, Children: MicroFrontendConstraints},
	{Name: "svc", IsArray: true, Type: sc.TypeString},
	{
		Name: "global",
		Children: sc.Object{
			{Name: "nav", Required: true, IsArray: true, Children: NavConstraints},
		},
	},
}
