package shapecheck

import (
	"github.com/reoring/shapecheck/i18n"
)

// dependencies runs f's DependsOn rules against the siblings of f in rec.
// A failure is located at f's own path and nests the sibling's violation.
func (w *walker) dependencies(rec map[string]any, f Field, parent Path) bool {
	for _, d := range f.DependsOn {
		target := rec[d.Field]
		for _, vd := range d.Validators {
			if vd.Check(target) {
				continue
			}
			return w.report(dependencyError(parent.Field(f.Name), d.Field, violation(parent.Field(d.Field), vd)))
		}
	}
	return false
}

func dependencyError(fp Path, target string, cause *ValidationError) *ValidationError {
	return &ValidationError{
		Code:  CodeDependency,
		Path:  fp,
		Field: fp.label(),
		Message: i18n.T(CodeDependency, map[string]string{
			"field":  fp.label(),
			"target": target,
			"detail": cause.Message,
		}),
		Params: map[string]any{"dependsOn": target},
		Cause:  cause,
	}
}
