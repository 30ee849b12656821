// Package engine maps element trees onto compiled schemas.
//
// The engine is synchronous and performs no I/O. All per-call state lives in
// builders created for the call; compiled schemas are only read.
package engine

import (
	"strconv"
	"strings"

	"github.com/reoring/xmlskema/schema"
	"github.com/reoring/xmlskema/value"
	"github.com/reoring/xmlskema/xmltree"
	"go.uber.org/zap"
)

// Mark is a presence bit recorded per field path.
type Mark uint8

const (
	MarkSeen    Mark = 1 << iota // elements were routed to the field
	MarkNone                     // optional field resolved to none
	MarkDefault                  // default variant or empty sequence applied
)

// Options configures one decode.
type Options struct {
	// Strict turns unmatched elements into unknown_key issues.
	Strict bool
	// CollectMarks enables Result.Marks.
	CollectMarks bool
	// TrimSpace trims string scalars before they are stored.
	TrimSpace bool

	Logger *zap.Logger
}

// Result is the outcome of a successful decode.
type Result struct {
	Value value.Value
	Marks map[string]Mark
}

type decoder struct {
	opt   Options
	log   *zap.Logger
	marks map[string]Mark
}

func newDecoder(opt Options) *decoder {
	d := &decoder{opt: opt, log: opt.Logger}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	if opt.CollectMarks {
		d.marks = map[string]Mark{"/": MarkSeen}
	}
	return d
}

func (d *decoder) mark(path string, m Mark) {
	if d.marks != nil {
		d.marks[normalizeIssuePath(path)] |= m
	}
}

// Decode maps root onto n. A record consumes the children of root, a union
// is selected by root's own tag and a scalar parses root's text.
func Decode(root *xmltree.Element, n schema.Node, opt Options) (Result, error) {
	if err := ready(root, n); err != nil {
		return Result{}, err
	}
	d := newDecoder(opt)
	var (
		v   value.Value
		err error
	)
	if u, ok := n.(*schema.Union); ok {
		v, err = d.decodeRootUnion(u, root)
	} else {
		v, err = d.decodeElement(n, root, "")
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Value: v, Marks: d.marks}, nil
}

// DecodeDocument maps a document node onto n. A transparent record reads the
// top-level elements as its fields; any other schema decodes the first
// top-level element as the root. An element that is not a document node is
// decoded as the root directly.
func DecodeDocument(doc *xmltree.Element, n schema.Node, opt Options) (Result, error) {
	if err := ready(doc, n); err != nil {
		return Result{}, err
	}
	if !doc.IsDocument() {
		return Decode(doc, n, opt)
	}
	if r, ok := n.(*schema.Record); ok && r.Transparent {
		return Decode(doc, n, opt)
	}
	first := doc.First()
	if first == nil {
		return Result{}, issue(CodeParseError, "", "empty document", nil, nil)
	}
	return Decode(first, n, opt)
}

func ready(root *xmltree.Element, n schema.Node) error {
	if n == nil {
		return issue(CodeParseError, "", "nil schema", nil, nil)
	}
	if root == nil {
		return issue(CodeParseError, "", "nil element", nil, nil)
	}
	switch t := n.(type) {
	case *schema.Record:
		if !t.Compiled() {
			return issue(CodeParseError, "", "schema "+t.Describe()+" is not compiled", nil, nil)
		}
	case *schema.Union:
		if !t.Compiled() {
			return issue(CodeParseError, "", "schema "+t.Describe()+" is not compiled", nil, nil)
		}
	}
	return nil
}

// decodeElement decodes el as a value of n. For records and unions el is the
// wrapper whose children carry the content.
func (d *decoder) decodeElement(n schema.Node, el *xmltree.Element, path string) (value.Value, error) {
	switch t := n.(type) {
	case *schema.Scalar:
		text := el.Text
		if d.opt.TrimSpace && t.Kind == schema.KindString {
			text = strings.TrimSpace(text)
		}
		v, err := t.Parse(text)
		if err != nil {
			return nil, scalarParseError(path, text, t.Expected(), err)
		}
		return value.Scalar{Raw: el.Text, V: v}, nil
	case *schema.Record:
		b := newRecordBuilder(t)
		for _, c := range el.Children {
			if d.route(b, c, path) {
				continue
			}
			if err := d.unmatched(c, path); err != nil {
				return nil, err
			}
		}
		return d.finalizeRecord(b, path)
	case *schema.Union:
		ub := newUnionBuilder(t)
		for _, c := range el.Children {
			if ok, _ := ub.offer(c); ok {
				continue
			}
			if err := d.unmatched(c, path); err != nil {
				return nil, err
			}
		}
		if ub.selected == nil {
			if _, ok := t.DefaultVariant(); !ok {
				if ub.first != nil {
					return nil, unmatchedVariant(path, ub.first.Tag)
				}
				return nil, missingField(path)
			}
		}
		return d.finalizeUnion(ub, schema.Required, path)
	default:
		return nil, issue(CodeParseError, path, "unsupported schema node", nil, nil)
	}
}

// decodeRootUnion selects a variant with the root element's own tag.
func (d *decoder) decodeRootUnion(u *schema.Union, el *xmltree.Element) (value.Value, error) {
	if v, ok := u.ResolveVariant(el.Tag); ok {
		d.log.Debug("root variant", zap.String("tag", el.Tag), zap.String("variant", v.Name))
		return d.variantValue(u, v, []*xmltree.Element{el}, "")
	}
	if def, ok := u.DefaultVariant(); ok {
		d.log.Debug("default variant applied", zap.String("tag", el.Tag), zap.String("variant", def.Name))
		d.mark("", MarkDefault)
		return d.defaultValue(u, def, "")
	}
	return nil, unmatchedVariant("", el.Tag)
}

func (d *decoder) finalizeRecord(b *recordBuilder, path string) (*value.Record, error) {
	out := &value.Record{Schema: b.schema, Fields: make([]value.Value, len(b.schema.Fields))}
	for _, f := range b.schema.Fields {
		v, err := d.finalizeField(f, &b.slots[f.Index], joinJSONPointer(path, f.Name))
		if err != nil {
			return nil, err
		}
		out.Fields[f.Index] = v
	}
	return out, nil
}

func (d *decoder) finalizeField(f *schema.Field, s *slot, path string) (value.Value, error) {
	if f.Flatten {
		switch t := f.Type.(type) {
		case *schema.Record:
			nb := s.record
			if nb == nil || !nb.touched {
				if f.Card == schema.Optional {
					d.mark(path, MarkNone)
					return value.None{}, nil
				}
				nb = newRecordBuilder(t)
			} else {
				d.mark(path, MarkSeen)
			}
			return d.finalizeRecord(nb, path)
		case *schema.Union:
			ub := s.union
			if ub == nil {
				ub = newUnionBuilder(t)
			}
			return d.finalizeUnion(ub, f.Card, path)
		}
	}
	switch s.kind {
	case slotScalar:
		d.mark(path, MarkSeen)
		return d.decodeElement(f.Type, s.el, path)
	case slotSequence:
		d.mark(path, MarkSeen)
		seq := make(value.Seq, len(s.seq))
		for i, el := range s.seq {
			v, err := d.decodeElement(f.Type, el, joinJSONPointer(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			seq[i] = v
		}
		return seq, nil
	}
	switch f.Card {
	case schema.Optional:
		d.mark(path, MarkNone)
		return value.None{}, nil
	case schema.Sequence:
		d.mark(path, MarkDefault)
		return value.Seq{}, nil
	default:
		return nil, missingField(path)
	}
}

// finalizeUnion resolves the selection of ub: the selected variant, else the
// default variant, else none for optional fields.
func (d *decoder) finalizeUnion(ub *unionBuilder, card schema.Cardinality, path string) (value.Value, error) {
	if ub.selected != nil {
		d.mark(path, MarkSeen)
		return d.variantValue(ub.schema, ub.selected, ub.els, path)
	}
	if def, ok := ub.schema.DefaultVariant(); ok {
		d.log.Debug("default variant applied", zap.String("path", normalizeIssuePath(path)), zap.String("variant", def.Name))
		d.mark(path, MarkDefault)
		return d.defaultValue(ub.schema, def, path)
	}
	if card == schema.Optional {
		d.mark(path, MarkNone)
		return value.None{}, nil
	}
	return nil, missingField(path)
}

// variantValue decodes the payload of v from the elements carrying its tag.
func (d *decoder) variantValue(u *schema.Union, v *schema.Variant, els []*xmltree.Element, path string) (value.Value, error) {
	out := &value.Variant{Union: u, Index: v.Index, Name: v.Name, Payload: value.None{}}
	if v.IsUnit() {
		return out, nil
	}
	vpath := joinJSONPointer(path, v.Name)
	if v.Repeated {
		seq := make(value.Seq, len(els))
		for i, el := range els {
			pv, err := d.decodeElement(v.Payload, el, joinJSONPointer(vpath, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			seq[i] = pv
		}
		out.Payload = seq
		return out, nil
	}
	pv, err := d.decodeElement(v.Payload, els[len(els)-1], vpath)
	if err != nil {
		return nil, err
	}
	out.Payload = pv
	return out, nil
}

// defaultValue builds the default variant without any element: unit, an
// empty sequence, or a payload decoded from no content.
func (d *decoder) defaultValue(u *schema.Union, v *schema.Variant, path string) (value.Value, error) {
	out := &value.Variant{Union: u, Index: v.Index, Name: v.Name, Payload: value.None{}}
	if v.IsUnit() {
		return out, nil
	}
	vpath := joinJSONPointer(path, v.Name)
	if v.Repeated {
		out.Payload = value.Seq{}
		return out, nil
	}
	var (
		pv  value.Value
		err error
	)
	switch t := v.Payload.(type) {
	case *schema.Record:
		pv, err = d.finalizeRecord(newRecordBuilder(t), vpath)
	case *schema.Union:
		pv, err = d.finalizeUnion(newUnionBuilder(t), schema.Required, vpath)
	default:
		err = missingField(vpath)
	}
	if err != nil {
		return nil, err
	}
	out.Payload = pv
	return out, nil
}
