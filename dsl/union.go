package dsl

import (
	"github.com/reoring/xmlskema/schema"
)

type unionBuilder struct {
	u *schema.Union
}

type variantStep struct {
	b *unionBuilder
	v *schema.Variant
}

// Union creates a union builder.
func Union(name string) *unionBuilder {
	return &unionBuilder{u: &schema.Union{Name: name}}
}

// Variant appends a variant decoded from the single element carrying its
// tag. A nil payload declares a unit variant.
func (b *unionBuilder) Variant(name string, payload schema.Node) *variantStep {
	v := &schema.Variant{Name: name, Payload: payload}
	b.u.Variants = append(b.u.Variants, v)
	return &variantStep{b: b, v: v}
}

// Unit appends a variant without payload.
func (b *unionBuilder) Unit(name string) *variantStep { return b.Variant(name, nil) }

// Repeated appends a variant whose payload is the sequence of every element
// carrying its tag.
func (b *unionBuilder) Repeated(name string, payload schema.Node) *variantStep {
	s := b.Variant(name, payload)
	s.v.Repeated = true
	return s
}

// Node returns the union under construction without compiling it.
func (b *unionBuilder) Node() *schema.Union { return b.u }

// Build compiles the union.
func (b *unionBuilder) Build() (*schema.Union, error) {
	if err := schema.Compile(b.u); err != nil {
		return nil, err
	}
	return b.u, nil
}

// MustBuild is like Build but panics on error.
func (b *unionBuilder) MustBuild() *schema.Union {
	u, err := b.Build()
	if err != nil {
		panic(err)
	}
	return u
}

// Rename sets the element tag selecting the variant.
func (s *variantStep) Rename(tag string) *variantStep {
	s.v.Rename = tag
	return s
}

// Default makes the variant the fallback when no element selects one.
func (s *variantStep) Default() *variantStep {
	s.b.u.Default = s.v.Name
	return s
}

func (s *variantStep) Variant(name string, payload schema.Node) *variantStep {
	return s.b.Variant(name, payload)
}
func (s *variantStep) Unit(name string) *variantStep { return s.b.Unit(name) }
func (s *variantStep) Repeated(name string, payload schema.Node) *variantStep {
	return s.b.Repeated(name, payload)
}
func (s *variantStep) Node() *schema.Union           { return s.b.Node() }
func (s *variantStep) Build() (*schema.Union, error) { return s.b.Build() }
func (s *variantStep) MustBuild() *schema.Union      { return s.b.MustBuild() }
