package xmlskema

import (
	"reflect"
	"strings"
	"sync"
)

// structKey is the parsed form of a field's struct tags.
type structKey struct {
	Name     string
	Rename   string
	Flatten  bool
	Optional bool
}

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// name used by SchemaOf, Bind and PresenceMap paths.
// Priority: xmlskema:"name,..." > xml tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	return parseStructKey(sf).Name
}

// parseStructKey reads `xmlskema:"name,flatten,optional,rename=tag"`, falling
// back to the name of an `xml:"tag"` tag. Embedded structs default to
// flatten.
func parseStructKey(sf reflect.StructField) structKey {
	k := structKey{Name: sf.Name, Flatten: sf.Anonymous}
	if xt := sf.Tag.Get("xml"); xt != "" {
		if xt == "-" {
			return structKey{Name: "-"}
		}
		name := xt
		if i := strings.IndexByte(xt, ','); i >= 0 {
			name = xt[:i]
		}
		if name != "" {
			k.Name = name
		}
	}
	gt, ok := sf.Tag.Lookup("xmlskema")
	if !ok {
		return k
	}
	if gt == "-" {
		return structKey{Name: "-"}
	}
	parts := strings.Split(gt, ",")
	if name := strings.TrimSpace(parts[0]); name != "" {
		k.Name = name
	}
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		switch {
		case p == "flatten":
			k.Flatten = true
		case p == "noflatten":
			k.Flatten = false
		case p == "optional":
			k.Optional = true
		case strings.HasPrefix(p, "rename="):
			k.Rename = strings.TrimPrefix(p, "rename=")
		}
	}
	return k
}

var structIndexCache sync.Map // reflect.Type -> map[string]int

// structIndex maps resolved field names of struct type t to field indices.
func structIndex(t reflect.Type) map[string]int {
	if m, ok := structIndexCache.Load(t); ok {
		return m.(map[string]int)
	}
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := ResolveStructKey(sf)
		if name == "" || name == "-" {
			continue
		}
		m[name] = i
	}
	structIndexCache.Store(t, m)
	return m
}
