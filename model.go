package shapecheck

// Type is the primitive type tag checked against a field value.
type Type string

const (
	TypeAny     Type = ""        // No type check.
	TypeString  Type = "string"  // Any Go string kind.
	TypeNumber  Type = "number"  // Any Go integer or float kind.
	TypeBoolean Type = "boolean" // Any Go bool kind.
	TypeObject  Type = "object"  // A string-keyed mapping.
)

// Constraint is either an Object or a Union. The set is closed.
type Constraint interface {
	constraint()
}

// Field describes the constraints attached to one field name.
type Field struct {
	Name     string
	Required bool
	Type     Type
	// IsArray makes the raw value a sequence whose elements are checked
	// against Children, or against Type when Children is nil.
	IsArray    bool
	Children   Constraint
	Validators []Validator
	// DependsOn rules run against sibling fields of the same record, only
	// while this field is present.
	DependsOn []Dependency
}

// Dependency runs Validators against the current value of the sibling Field.
type Dependency struct {
	Field      string
	Validators []Validator
}

// Object is an ordered list of field descriptors. Declaration order is the
// evaluation order and decides which violation surfaces first.
type Object []Field

// Union lists the acceptable shapes of a value in declared order.
type Union []Object

func (Object) constraint() {}
func (Union) constraint()  {}

// Lookup returns the descriptor declared for name.
func (o Object) Lookup(name string) (Field, bool) {
	for _, f := range o {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Declares reports whether the object declares a field called name.
func (o Object) Declares(name string) bool {
	_, ok := o.Lookup(name)
	return ok
}

// isDiscriminator reports whether the field carries an enumerated-values
// validator and therefore acts as a variant tag inside a union.
func (f Field) isDiscriminator() bool {
	for _, v := range f.Validators {
		if v.Code == CodeInvalidEnum {
			return true
		}
	}
	return false
}
