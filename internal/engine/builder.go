package engine

import (
	"github.com/reoring/xmlskema/schema"
	"github.com/reoring/xmlskema/xmltree"
)

type slotKind uint8

const (
	slotUnset slotKind = iota
	slotScalar
	slotSequence
	slotNested
)

// slot accumulates the elements routed to one field. Elements are decoded
// lazily at finalize time.
type slot struct {
	kind   slotKind
	el     *xmltree.Element
	seq    []*xmltree.Element
	record *recordBuilder
	union  *unionBuilder
}

// recordBuilder holds one slot per field, addressed by schema.Field.Index.
type recordBuilder struct {
	schema  *schema.Record
	slots   []slot
	touched bool
}

func newRecordBuilder(r *schema.Record) *recordBuilder {
	return &recordBuilder{schema: r, slots: make([]slot, len(r.Fields))}
}

// setScalar stores the element of a single-valued field. A repeated tag
// overwrites the earlier element.
func (b *recordBuilder) setScalar(f *schema.Field, el *xmltree.Element) (overwritten bool) {
	s := &b.slots[f.Index]
	overwritten = s.kind == slotScalar
	s.kind = slotScalar
	s.el = el
	b.touched = true
	return overwritten
}

// append pushes el onto a sequence field in document order.
func (b *recordBuilder) append(f *schema.Field, el *xmltree.Element) {
	s := &b.slots[f.Index]
	s.kind = slotSequence
	s.seq = append(s.seq, el)
	b.touched = true
}

// nestedRecord returns the builder of a flattened record field, creating it
// on first use.
func (b *recordBuilder) nestedRecord(f *schema.Field) *recordBuilder {
	s := &b.slots[f.Index]
	if s.record == nil {
		s.kind = slotNested
		s.record = newRecordBuilder(f.Type.(*schema.Record))
	}
	b.touched = true
	return s.record
}

// nestedUnion returns the builder of a flattened union field, creating it on
// first use.
func (b *recordBuilder) nestedUnion(f *schema.Field) *unionBuilder {
	s := &b.slots[f.Index]
	if s.union == nil {
		s.kind = slotNested
		s.union = newUnionBuilder(f.Type.(*schema.Union))
	}
	b.touched = true
	return s.union
}

// unionBuilder tracks the variant selected so far and the elements carrying
// its tag.
type unionBuilder struct {
	schema   *schema.Union
	selected *schema.Variant
	els      []*xmltree.Element
	first    *xmltree.Element
}

func newUnionBuilder(u *schema.Union) *unionBuilder {
	return &unionBuilder{schema: u}
}

// offer selects the variant tagged el.Tag. Repeated variants keep
// appending; any other repeat overwrites, and a different variant replaces
// the current selection.
func (b *unionBuilder) offer(el *xmltree.Element) (accepted, switched bool) {
	if b.first == nil {
		b.first = el
	}
	v, ok := b.schema.ResolveVariant(el.Tag)
	if !ok {
		return false, false
	}
	switch {
	case b.selected != v:
		switched = b.selected != nil
		b.selected = v
		b.els = append(b.els[:0], el)
	case v.Repeated:
		b.els = append(b.els, el)
	default:
		b.els = append(b.els[:0], el)
	}
	return true, switched
}
