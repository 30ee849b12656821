package dsl

import (
	"github.com/reoring/xmlskema/schema"
)

type recordBuilder struct {
	rec *schema.Record
}

type fieldStep struct {
	b *recordBuilder
	f *schema.Field
}

// Record creates a record builder. Fields are required single elements
// unless a modifier says otherwise.
func Record(name string) *recordBuilder {
	return &recordBuilder{rec: &schema.Record{Name: name}}
}

// Field appends a field with the given type.
func (b *recordBuilder) Field(name string, n schema.Node) *fieldStep {
	f := &schema.Field{Name: name, Card: schema.Required, Type: n}
	b.rec.Fields = append(b.rec.Fields, f)
	return &fieldStep{b: b, f: f}
}

// Transparent marks the record as wrapper-less at the document root.
func (b *recordBuilder) Transparent() *recordBuilder {
	b.rec.Transparent = true
	return b
}

// Node returns the record under construction without compiling it. Use it to
// nest one record in another or to close a recursive reference.
func (b *recordBuilder) Node() *schema.Record { return b.rec }

// Build compiles the record. Errors are schema.Error values describing the
// first ambiguity or malformed declaration found.
func (b *recordBuilder) Build() (*schema.Record, error) {
	if err := schema.Compile(b.rec); err != nil {
		return nil, err
	}
	return b.rec, nil
}

// MustBuild is like Build but panics on error.
func (b *recordBuilder) MustBuild() *schema.Record {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

// Optional allows the field to be absent.
func (f *fieldStep) Optional() *fieldStep {
	f.f.Card = schema.Optional
	return f
}

// Required restores the default cardinality.
func (f *fieldStep) Required() *fieldStep {
	f.f.Card = schema.Required
	return f
}

// Sequence collects every element carrying the field tag, in document order.
func (f *fieldStep) Sequence() *fieldStep {
	f.f.Card = schema.Sequence
	return f
}

// Flatten merges the field's record or union into the parent's namespace.
func (f *fieldStep) Flatten() *fieldStep {
	f.f.Flatten = true
	return f
}

// Rename sets the element tag matched for the field.
func (f *fieldStep) Rename(tag string) *fieldStep {
	f.f.Rename = tag
	return f
}

func (f *fieldStep) Field(name string, n schema.Node) *fieldStep { return f.b.Field(name, n) }
func (f *fieldStep) Transparent() *recordBuilder                 { return f.b.Transparent() }
func (f *fieldStep) Node() *schema.Record                        { return f.b.Node() }
func (f *fieldStep) Build() (*schema.Record, error)              { return f.b.Build() }
func (f *fieldStep) MustBuild() *schema.Record                   { return f.b.MustBuild() }
