package xmlskema

import (
	"context"
	"encoding"
	"fmt"
	"reflect"
	"sync"

	"github.com/reoring/xmlskema/schema"
	"github.com/reoring/xmlskema/value"
)

// VariantSpec declares one variant of a union registered with RegisterUnion.
type VariantSpec struct {
	name   string
	rename string
	def    bool
	typ    reflect.Type
}

// Variant declares a variant named name whose Go representation is V.
//
// V decides the payload: an empty struct is a unit variant, a slice collects
// every element carrying the variant tag, anything else is decoded from the
// single element carrying it.
func Variant[V any](name string) VariantSpec {
	return VariantSpec{name: name, typ: reflect.TypeOf((*V)(nil)).Elem()}
}

// Rename sets the element tag selecting the variant.
func (v VariantSpec) Rename(tag string) VariantSpec { v.rename = tag; return v }

// Default marks the variant produced when no element selects one.
func (v VariantSpec) Default() VariantSpec { v.def = true; return v }

type unionInfo struct {
	name     string
	iface    reflect.Type
	variants []VariantSpec
}

func (u *unionInfo) variantType(name string) (reflect.Type, bool) {
	for _, v := range u.variants {
		if v.name == name {
			return v.typ, true
		}
	}
	return nil, false
}

var (
	unionMu       sync.RWMutex
	unionRegistry = map[reflect.Type]*unionInfo{}
)

// RegisterUnion declares the interface type I as a tagged union whose
// variants are the given concrete types. Every variant type must implement
// I. Registering I again replaces the earlier declaration.
func RegisterUnion[I any](name string, variants ...VariantSpec) error {
	it := reflect.TypeOf((*I)(nil)).Elem()
	if it.Kind() != reflect.Interface {
		return fmt.Errorf("xmlskema: RegisterUnion: %s is not an interface type", it)
	}
	if len(variants) == 0 {
		return fmt.Errorf("xmlskema: RegisterUnion: %s has no variants", it)
	}
	defaults := 0
	for _, v := range variants {
		if v.typ == nil || v.name == "" {
			return fmt.Errorf("xmlskema: RegisterUnion: %s has an unnamed variant", it)
		}
		if !v.typ.Implements(it) {
			return fmt.Errorf("xmlskema: RegisterUnion: %s does not implement %s", v.typ, it)
		}
		if v.def {
			defaults++
		}
	}
	if defaults > 1 {
		return fmt.Errorf("xmlskema: RegisterUnion: %s has more than one default variant", it)
	}
	unionMu.Lock()
	unionRegistry[it] = &unionInfo{name: name, iface: it, variants: append([]VariantSpec(nil), variants...)}
	unionMu.Unlock()
	return nil
}

// MustRegisterUnion is like RegisterUnion but panics on error.
func MustRegisterUnion[I any](name string, variants ...VariantSpec) {
	if err := RegisterUnion[I](name, variants...); err != nil {
		panic(err)
	}
}

func lookupUnion(t reflect.Type) (*unionInfo, bool) {
	unionMu.RLock()
	u, ok := unionRegistry[t]
	unionMu.RUnlock()
	return u, ok
}

// SchemaOpt adjusts a schema derived by SchemaOf.
type SchemaOpt func(*schemaConfig)

type schemaConfig struct {
	transparent bool
}

// Transparent marks the root record as wrapper-less: a document's top-level
// elements are its fields.
func Transparent() SchemaOpt { return func(c *schemaConfig) { c.transparent = true } }

// SchemaOf derives a compiled schema from the Go type T.
//
// Structs become records (see ResolveStructKey for field naming; the
// `xmlskema` tag accepts flatten, optional and rename=tag), pointers are
// optional, slices are sequences, interfaces registered with RegisterUnion
// are unions, and strings, integers, floats, bools, time.Time and
// encoding.TextUnmarshaler implementations are scalars. Construction errors,
// including ambiguous tags, are returned as Issues.
func SchemaOf[T any](opts ...SchemaOpt) (Schema[T], error) {
	var cfg schemaConfig
	for _, o := range opts {
		o(&cfg)
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	r := &reflector{nodes: map[reflect.Type]schema.Node{}}
	n, err := r.node(t)
	if err != nil {
		return nil, AppendIssues(nil, Issue{Code: CodeInvalidSchema, Path: "/", Message: err.Error(), Cause: err})
	}
	if cfg.transparent {
		rec, ok := n.(*schema.Record)
		if !ok {
			return nil, singleIssue(CodeInvalidSchema, "transparent requires a struct type")
		}
		rec.Transparent = true
	}
	if err := schema.Compile(n); err != nil {
		return nil, toIssues(err)
	}
	return &reflectSchema[T]{node: n}, nil
}

// MustSchemaOf is like SchemaOf but panics on error.
func MustSchemaOf[T any](opts ...SchemaOpt) Schema[T] {
	s, err := SchemaOf[T](opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// SchemaFor compiles an already declared node (see package dsl and
// schemafile) and binds decoded values to T with BindValue.
func SchemaFor[T any](n schema.Node) (Schema[T], error) {
	if n == nil {
		return nil, singleIssue(CodeInvalidSchema, "nil schema")
	}
	if err := schema.Compile(n); err != nil {
		return nil, toIssues(err)
	}
	return &reflectSchema[T]{node: n}, nil
}

// Untyped compiles n and returns a schema producing the decoded value tree
// itself.
func Untyped(n schema.Node) (Schema[value.Value], error) {
	if n == nil {
		return nil, singleIssue(CodeInvalidSchema, "nil schema")
	}
	if err := schema.Compile(n); err != nil {
		return nil, toIssues(err)
	}
	return untypedSchema{node: n}, nil
}

type untypedSchema struct {
	node schema.Node
}

func (s untypedSchema) Node() schema.Node { return s.node }

func (untypedSchema) Bind(_ context.Context, v value.Value) (value.Value, error) { return v, nil }

type reflectSchema[T any] struct {
	node schema.Node
}

func (s *reflectSchema[T]) Node() schema.Node { return s.node }

func (s *reflectSchema[T]) Bind(_ context.Context, v value.Value) (T, error) {
	var out T
	if err := bindInto(reflect.ValueOf(&out).Elem(), v, ""); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

type reflector struct {
	nodes map[reflect.Type]schema.Node
}

func (r *reflector) node(t reflect.Type) (schema.Node, error) {
	if n, ok := r.nodes[t]; ok {
		return n, nil
	}
	if s := scalarOf(t); s != nil {
		r.nodes[t] = s
		return s, nil
	}
	switch t.Kind() {
	case reflect.Struct:
		return r.record(t)
	case reflect.Interface:
		return r.union(t)
	case reflect.Pointer:
		return r.node(t.Elem())
	default:
		return nil, fmt.Errorf("unsupported type %s", t)
	}
}

func scalarOf(t reflect.Type) *schema.Scalar {
	if t == timeType {
		return schema.Time()
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return schema.Custom(t.String(), func(text string) (any, error) {
			p := reflect.New(t)
			if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
				return nil, err
			}
			return p.Elem().Interface(), nil
		})
	}
	switch t.Kind() {
	case reflect.String:
		return schema.String()
	case reflect.Bool:
		return schema.Bool()
	case reflect.Int, reflect.Int64:
		return schema.Int(64)
	case reflect.Int8:
		return schema.Int(8)
	case reflect.Int16:
		return schema.Int(16)
	case reflect.Int32:
		return schema.Int(32)
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return schema.Uint(64)
	case reflect.Uint8:
		return schema.Uint(8)
	case reflect.Uint16:
		return schema.Uint(16)
	case reflect.Uint32:
		return schema.Uint(32)
	case reflect.Float32:
		return schema.Float(32)
	case reflect.Float64:
		return schema.Float(64)
	}
	return nil
}

func (r *reflector) record(t reflect.Type) (schema.Node, error) {
	rec := &schema.Record{Name: t.Name()}
	r.nodes[t] = rec // registered first so recursive types resolve
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := parseStructKey(sf)
		if key.Name == "" || key.Name == "-" {
			continue
		}
		ft := sf.Type
		card := schema.Required
		switch {
		case ft.Kind() == reflect.Pointer:
			card = schema.Optional
			ft = ft.Elem()
		case ft.Kind() == reflect.Slice && scalarOf(ft) == nil:
			card = schema.Sequence
			ft = ft.Elem()
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
		}
		if key.Optional && card == schema.Required {
			card = schema.Optional
		}
		n, err := r.node(ft)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t, sf.Name, err)
		}
		rec.Fields = append(rec.Fields, &schema.Field{
			Name:    key.Name,
			Rename:  key.Rename,
			Flatten: key.Flatten,
			Card:    card,
			Type:    n,
		})
	}
	return rec, nil
}

func (r *reflector) union(t reflect.Type) (schema.Node, error) {
	ui, ok := lookupUnion(t)
	if !ok {
		return nil, fmt.Errorf("interface %s is not a registered union", t)
	}
	u := &schema.Union{Name: ui.name}
	r.nodes[t] = u
	for _, vs := range ui.variants {
		v := &schema.Variant{Name: vs.name, Rename: vs.rename}
		vt := vs.typ
		for vt.Kind() == reflect.Pointer {
			vt = vt.Elem()
		}
		switch {
		case vt.Kind() == reflect.Struct && vt.NumField() == 0:
			// unit
		case vt.Kind() == reflect.Slice && scalarOf(vt) == nil:
			n, err := r.node(vt.Elem())
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", ui.name, vs.name, err)
			}
			v.Payload, v.Repeated = n, true
		default:
			n, err := r.node(vt)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", ui.name, vs.name, err)
			}
			v.Payload = n
		}
		if vs.def {
			u.Default = vs.name
		}
		u.Variants = append(u.Variants, v)
	}
	return u, nil
}
