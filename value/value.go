// Package value holds the type-erased output of a decode: records, sequences,
// variants, scalars and none. Values keep a reference to the schema node
// that produced them so that callers can walk them without the Go types the
// schema may or may not have been derived from.
package value

import (
	"github.com/reoring/xmlskema/schema"
)

// Kind discriminates the concrete Value types.
type Kind int

const (
	KindNone Kind = iota
	KindScalar
	KindRecord
	KindSequence
	KindVariant
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindScalar:
		return "scalar"
	case KindRecord:
		return "record"
	case KindSequence:
		return "sequence"
	case KindVariant:
		return "variant"
	default:
		return "unknown"
	}
}

// Value is one of None, Scalar, *Record, Seq or *Variant.
type Value interface {
	Kind() Kind
}

// None is the value of an absent optional field.
type None struct{}

func (None) Kind() Kind { return KindNone }

// Scalar is a parsed leaf. Raw keeps the element text it was parsed from.
type Scalar struct {
	Raw string
	V   any
}

func (Scalar) Kind() Kind { return KindScalar }

// Seq is an ordered sequence, in document order.
type Seq []Value

func (Seq) Kind() Kind { return KindSequence }

// Record holds one value per schema field, indexed by schema.Field.Index.
type Record struct {
	Schema *schema.Record
	Fields []Value
}

func (*Record) Kind() Kind { return KindRecord }

// Get returns the value of the field named name.
func (r *Record) Get(name string) (Value, bool) {
	if r == nil || r.Schema == nil {
		return nil, false
	}
	f, ok := r.Schema.FieldByName(name)
	if !ok || f.Index >= len(r.Fields) {
		return nil, false
	}
	return r.Fields[f.Index], true
}

// Variant is the selected case of a union. Payload is None for unit
// variants.
type Variant struct {
	Union   *schema.Union
	Index   int
	Name    string
	Payload Value
}

func (*Variant) Kind() Kind { return KindVariant }

// IsNone reports whether v is absent.
func IsNone(v Value) bool {
	if v == nil {
		return true
	}
	return v.Kind() == KindNone
}

// Lookup walks a record/variant/sequence tree along field names, variant
// names and sequence indices, e.g. Lookup(v, "date", "extra", "week").
func Lookup(v Value, path ...string) (Value, bool) {
	cur := v
	for _, seg := range path {
		switch t := cur.(type) {
		case *Record:
			next, ok := t.Get(seg)
			if !ok {
				return nil, false
			}
			cur = next
		case *Variant:
			if t.Name != seg {
				return nil, false
			}
			cur = t.Payload
		case Seq:
			i, ok := atoi(seg)
			if !ok || i >= len(t) {
				return nil, false
			}
			cur = t[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
