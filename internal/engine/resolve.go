package engine

import (
	"github.com/reoring/xmlskema/schema"
	"github.com/reoring/xmlskema/xmltree"
	"go.uber.org/zap"
)

// route dispatches el into b. A direct field wins; otherwise flatten fields
// are tried depth-first in declaration order and the first whose namespace
// claims the tag receives el. It reports false when nothing claims el.
func (d *decoder) route(b *recordBuilder, el *xmltree.Element, path string) bool {
	if f, ok := b.schema.Resolve(el.Tag); ok {
		fpath := joinJSONPointer(path, f.Name)
		if f.Card == schema.Sequence {
			b.append(f, el)
			d.log.Debug("append", zap.String("tag", el.Tag), zap.String("path", fpath))
			return true
		}
		if b.setScalar(f, el) {
			d.log.Debug("overwrite", zap.String("tag", el.Tag), zap.String("path", fpath))
		} else {
			d.log.Debug("set", zap.String("tag", el.Tag), zap.String("path", fpath))
		}
		return true
	}
	for _, f := range b.schema.Fields {
		if !f.Flatten || !schema.Claims(f.Type, el.Tag) {
			continue
		}
		fpath := joinJSONPointer(path, f.Name)
		switch f.Type.(type) {
		case *schema.Record:
			return d.route(b.nestedRecord(f), el, fpath)
		case *schema.Union:
			ub := b.nestedUnion(f)
			if _, switched := ub.offer(el); switched {
				d.log.Debug("variant switched", zap.String("tag", el.Tag), zap.String("path", fpath))
			} else {
				d.log.Debug("variant", zap.String("tag", el.Tag), zap.String("path", fpath))
			}
			return true
		}
	}
	return false
}

// unmatched handles an element no field claims: an issue under strict
// policy, a debug line otherwise.
func (d *decoder) unmatched(el *xmltree.Element, path string) error {
	if d.opt.Strict {
		return unknownElement(joinJSONPointer(path, el.Tag), el.Tag)
	}
	d.log.Debug("ignored element", zap.String("tag", el.Tag), zap.String("path", normalizeIssuePath(path)))
	return nil
}
