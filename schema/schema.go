// Package schema describes the static shape a decoder maps element trees onto.
//
// A schema is a graph of Nodes: records (ordered fields), unions (ordered
// variants selected by element tag) and scalars (leaf text parsers). Schemas
// are plain data. Build them with the dsl package, derive them from Go types
// with xmlskema.SchemaOf, or load them with the schemafile package, then
// freeze them with Compile. After Compile a schema is read-only and may be
// shared by any number of concurrent decodes.
package schema

import "fmt"

// Node is one of *Record, *Union or *Scalar.
type Node interface {
	node()
	// Describe returns a short human-readable label used in diagnostics.
	Describe() string
}

// Cardinality is the number of matching elements a field accepts.
type Cardinality int

const (
	Required Cardinality = iota // exactly one (last write wins on repeats)
	Optional                    // zero or one
	Sequence                    // zero or more, document order preserved
)

func (c Cardinality) String() string {
	switch c {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Sequence:
		return "sequence"
	default:
		return fmt.Sprintf("cardinality(%d)", int(c))
	}
}

// Field is one member of a record.
type Field struct {
	// Name identifies the field in paths, values and Go bindings.
	Name string
	// Rename overrides the element tag matched by this field. When empty the
	// field matches elements tagged Name.
	Rename string
	// Flatten merges the field's record or union namespace into the parent
	// instead of matching a wrapper element.
	Flatten bool
	Card    Cardinality
	Type    Node

	// Index is the field's slot in its record, assigned by Compile.
	Index int
}

// Tag returns the element tag matched by f.
func (f *Field) Tag() string {
	if f.Rename != "" {
		return f.Rename
	}
	return f.Name
}

// Record is an ordered set of fields.
type Record struct {
	Name   string
	Fields []*Field
	// Transparent marks a record decoded from a document without a wrapper
	// element: the top-level elements are the record's fields.
	Transparent bool

	compiled  bool
	direct    map[string]*Field
	byName    map[string]*Field
	namespace map[string]struct{}
	claims    []claim
}

func (*Record) node() {}

func (r *Record) Describe() string { return "record " + r.Name }

// Resolve returns the direct (non-flatten) field matching tag.
func (r *Record) Resolve(tag string) (*Field, bool) {
	f, ok := r.direct[tag]
	return f, ok
}

// CanResolve reports whether tag is claimed anywhere in the record's
// flattened namespace.
func (r *Record) CanResolve(tag string) bool {
	_, ok := r.namespace[tag]
	return ok
}

// Namespace returns every tag claimed by r, including tags contributed by
// flatten fields, in declaration order.
func (r *Record) Namespace() []string {
	out := make([]string, 0, len(r.claims))
	for _, c := range r.claims {
		out = append(out, c.tag)
	}
	return out
}

// FieldByName returns the field with the given identifier.
func (r *Record) FieldByName(name string) (*Field, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// Compiled reports whether Compile has frozen r.
func (r *Record) Compiled() bool { return r.compiled }

// Variant is one case of a union.
type Variant struct {
	Name string
	// Rename overrides the element tag selecting this variant.
	Rename string
	// Payload is nil for unit variants.
	Payload Node
	// Repeated collects every element carrying the variant tag, in document
	// order, into a sequence payload.
	Repeated bool

	// Index is the variant's position in its union, assigned by Compile.
	Index int
}

// Tag returns the element tag selecting v.
func (v *Variant) Tag() string {
	if v.Rename != "" {
		return v.Rename
	}
	return v.Name
}

// IsUnit reports whether v carries no payload.
func (v *Variant) IsUnit() bool { return v.Payload == nil }

// Union is a tagged union selected by element tag.
type Union struct {
	Name     string
	Variants []*Variant
	// Default names the variant produced when no element selects one. Empty
	// means absence of a match is an error.
	Default string

	compiled   bool
	byTag      map[string]*Variant
	defaultVar *Variant
}

func (*Union) node() {}

func (u *Union) Describe() string { return "union " + u.Name }

// ResolveVariant returns the variant selected by tag.
func (u *Union) ResolveVariant(tag string) (*Variant, bool) {
	v, ok := u.byTag[tag]
	return v, ok
}

// DefaultVariant returns the registered default variant, if any.
func (u *Union) DefaultVariant() (*Variant, bool) {
	return u.defaultVar, u.defaultVar != nil
}

// VariantByName returns the variant with the given identifier.
func (u *Union) VariantByName(name string) (*Variant, bool) {
	for _, v := range u.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Compiled reports whether Compile has frozen u.
func (u *Union) Compiled() bool { return u.compiled }

// Claims reports whether n, used as a flatten target, accepts an element
// tagged tag.
func Claims(n Node, tag string) bool {
	switch t := n.(type) {
	case *Record:
		return t.CanResolve(tag)
	case *Union:
		_, ok := t.ResolveVariant(tag)
		return ok
	default:
		return false
	}
}
