package bundle

import (
	sc "github.com/reoring/shapecheck"
	"github.com/reoring/shapecheck/source"
)

// Validate checks a decoded descriptor and returns the first violation.
func Validate(descriptor any, opts ...sc.ValidateOpt) error {
	return sc.Validate(descriptor, DescriptorConstraints, opts...)
}

// ValidateAll checks a decoded descriptor and returns every violation as
// shapecheck.Issues.
func ValidateAll(descriptor any, opts ...sc.ValidateOpt) error {
	return sc.ValidateAll(descriptor, DescriptorConstraints, opts...)
}

// ValidateFile decodes the descriptor at path (JSON or YAML) and validates
// it. Decoding failures are returned as-is; violations are *ValidationError.
func ValidateFile(path string, opts ...sc.ValidateOpt) error {
	v, err := source.LoadFile(path, source.Options{})
	if err != nil {
		return err
	}
	return Validate(v, opts...)
}
