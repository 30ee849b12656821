package xmlskema

import (
	"reflect"
	"strings"
)

// FieldPathToken identifies a (possibly nested) struct field of T by the
// field names SchemaOf derives. Produced by PathOf; use it to query a
// PresenceMap without spelling paths by hand.
type FieldPathToken[T any] struct {
	keys []string
}

// Keys returns the path segments, outermost first.
func (t FieldPathToken[T]) Keys() []string { return append([]string(nil), t.keys...) }

// Pointer renders the token as a JSON Pointer, e.g. "/date/extra/week".
func (t FieldPathToken[T]) Pointer() string {
	p := RootPath()
	for _, k := range t.keys {
		p = p.Field(k)
	}
	return p.Pointer()
}

// FieldNameOf returns the schema field name for a top-level field of S selected by selector.
// Example: FieldNameOf[Date](func(d *Date) *int32 { return &d.Year }) -> "year".
func FieldNameOf[S any, F any](selector func(*S) *F) string {
	tok := PathOf(selector)
	if len(tok.keys) != 1 {
		panic("xmlskema.FieldNameOf: selector must return address of a top-level field")
	}
	return tok.keys[0]
}

// PathOf builds a FieldPathToken for an arbitrary nested field of T.
// The selector must return the address of a field, e.g.:
//
//	PathOf(func(d *DateTime) *int32 { return &d.Date.Extra.Week })
//
// Limitations: Only descends through struct fields (non-pointer).
func PathOf[T any, F any](selector func(*T) *F) FieldPathToken[T] {
	if selector == nil {
		panic("xmlskema.PathOf: selector must not be nil")
	}
	var zero T
	target := reflect.ValueOf(selector(&zero)).Pointer()
	ft := reflect.TypeOf((*F)(nil)).Elem()
	keys, ok := findPathKeys(reflect.ValueOf(&zero).Elem(), target, ft, 0)
	if !ok || len(keys) == 0 {
		panic("xmlskema.PathOf: selector must address a struct field reachable without pointer hops")
	}
	return FieldPathToken[T]{keys: keys}
}

const _maxPathDepth = 32

func findPathKeys(v reflect.Value, target uintptr, ft reflect.Type, depth int) ([]string, bool) {
	if depth > _maxPathDepth {
		return nil, false
	}
	t := v.Type()
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := ResolveStructKey(sf)
		if name == "" || name == "-" {
			continue
		}
		fv := v.Field(i)
		// a struct shares its address with its first field, so match the type too
		if fv.CanAddr() && fv.Addr().Pointer() == target && fv.Type() == ft {
			return []string{name}, true
		}
		if fv.Kind() == reflect.Struct {
			if rest, ok := findPathKeys(fv, target, ft, depth+1); ok {
				return append([]string{name}, rest...), true
			}
		}
	}
	return nil, false
}

// Seen reports whether elements were routed to the field at path.
func (pm PresenceMap) Seen(path string) bool { return pm[path]&PresenceSeen != 0 }

// IsNone reports whether the optional field at path resolved to none.
func (pm PresenceMap) IsNone(path string) bool { return pm[path]&PresenceNone != 0 }

// DefaultApplied reports whether the field at path was materialized from a
// default variant or as an empty sequence.
func (pm PresenceMap) DefaultApplied(path string) bool {
	return pm[path]&PresenceDefaultApplied != 0
}

// AnySeenDeep reports whether the field at path or any of its descendants
// was seen.
func (pm PresenceMap) AnySeenDeep(path string) bool {
	if pm.Seen(path) {
		return true
	}
	for k, v := range pm {
		if v&PresenceSeen != 0 && strings.HasPrefix(k, path+"/") {
			return true
		}
	}
	return false
}
