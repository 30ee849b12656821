package xmlskema

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/reoring/xmlskema/value"
)

// BindError reports a decoded value that does not fit the Go destination.
type BindError struct {
	Path    string // JSON Pointer over field names
	Message string
	Err     error
}

func (e *BindError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("bind error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("bind error: %s", e.Message)
}

func (e *BindError) Unwrap() error { return e.Err }

var (
	timeType            = reflect.TypeOf(time.Time{})
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	anyType             = reflect.TypeOf((*any)(nil)).Elem()
)

// BindValue assigns a decoded value to the Go value dst points to.
//
// Records bind to structs by field name (see ResolveStructKey) or to
// map[string]any; sequences bind to slices; variants bind to interfaces
// registered with RegisterUnion, to strings (unit variants only) or to any;
// none leaves the destination at its zero value.
func BindValue(v value.Value, dst any) error {
	rv := reflect.ValueOf(dst)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &BindError{Path: "/", Message: "destination must be a non-nil pointer"}
	}
	return bindInto(rv.Elem(), v, "")
}

func bindErr(path, format string, args ...any) *BindError {
	if path == "" {
		path = "/"
	}
	return &BindError{Path: path, Message: fmt.Sprintf(format, args...)}
}

func bindInto(rv reflect.Value, v value.Value, path string) error {
	if value.IsNone(v) {
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}
	if rv.Kind() == reflect.Pointer {
		p := reflect.New(rv.Type().Elem())
		if err := bindInto(p.Elem(), v, path); err != nil {
			return err
		}
		rv.Set(p)
		return nil
	}
	if rv.Type() == anyType {
		if x := value.ToAny(v); x != nil {
			rv.Set(reflect.ValueOf(x))
		}
		return nil
	}
	switch t := v.(type) {
	case value.Scalar:
		return bindScalar(rv, t, path)
	case value.Seq:
		return bindSeq(rv, t, path)
	case *value.Record:
		return bindRecord(rv, t, path)
	case *value.Variant:
		return bindVariant(rv, t, path)
	default:
		return bindErr(path, "unsupported value %T", v)
	}
}

func bindScalar(rv reflect.Value, s value.Scalar, path string) error {
	src := reflect.ValueOf(s.V)
	if src.IsValid() && src.Type().AssignableTo(rv.Type()) {
		rv.Set(src)
		return nil
	}
	if rv.CanAddr() && rv.Addr().Type().Implements(textUnmarshalerType) {
		if err := rv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s.Raw)); err != nil {
			return &BindError{Path: path, Message: err.Error(), Err: err}
		}
		return nil
	}
	switch rv.Kind() {
	case reflect.String:
		if str, ok := s.V.(string); ok {
			rv.SetString(str)
		} else {
			rv.SetString(s.Raw)
		}
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		switch x := s.V.(type) {
		case int64:
			n = x
		case uint64:
			if x > uint64(1<<63-1) {
				return bindErr(path, "value %d overflows %s", x, rv.Type())
			}
			n = int64(x)
		default:
			return bindErr(path, "cannot assign %T to %s", s.V, rv.Type())
		}
		if rv.OverflowInt(n) {
			return bindErr(path, "value %d overflows %s", n, rv.Type())
		}
		rv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		switch x := s.V.(type) {
		case uint64:
			n = x
		case int64:
			if x < 0 {
				return bindErr(path, "negative value %d for %s", x, rv.Type())
			}
			n = uint64(x)
		default:
			return bindErr(path, "cannot assign %T to %s", s.V, rv.Type())
		}
		if rv.OverflowUint(n) {
			return bindErr(path, "value %d overflows %s", n, rv.Type())
		}
		rv.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		var f float64
		switch x := s.V.(type) {
		case float64:
			f = x
		case int64:
			f = float64(x)
		case uint64:
			f = float64(x)
		default:
			return bindErr(path, "cannot assign %T to %s", s.V, rv.Type())
		}
		if rv.OverflowFloat(f) {
			return bindErr(path, "value %s overflows %s", strconv.FormatFloat(f, 'g', -1, 64), rv.Type())
		}
		rv.SetFloat(f)
		return nil
	case reflect.Bool:
		b, ok := s.V.(bool)
		if !ok {
			return bindErr(path, "cannot assign %T to bool", s.V)
		}
		rv.SetBool(b)
		return nil
	}
	if src.IsValid() && src.Type().ConvertibleTo(rv.Type()) && rv.Type() != timeType {
		rv.Set(src.Convert(rv.Type()))
		return nil
	}
	return bindErr(path, "cannot assign %T to %s", s.V, rv.Type())
}

func bindSeq(rv reflect.Value, seq value.Seq, path string) error {
	if rv.Kind() != reflect.Slice {
		return bindErr(path, "cannot assign sequence to %s", rv.Type())
	}
	out := reflect.MakeSlice(rv.Type(), len(seq), len(seq))
	for i, e := range seq {
		if err := bindInto(out.Index(i), e, path+"/"+strconv.Itoa(i)); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func bindRecord(rv reflect.Value, r *value.Record, path string) error {
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String && rv.Type().Elem() == anyType {
		m, _ := value.ToAny(r).(map[string]any)
		rv.Set(reflect.ValueOf(m).Convert(rv.Type()))
		return nil
	}
	if rv.Kind() != reflect.Struct {
		return bindErr(path, "cannot assign record %s to %s", r.Schema.Name, rv.Type())
	}
	idx := structIndex(rv.Type())
	for _, f := range r.Schema.Fields {
		i, ok := idx[f.Name]
		if !ok {
			continue
		}
		if err := bindInto(rv.Field(i), r.Fields[f.Index], path+"/"+escapePointer(f.Name)); err != nil {
			return err
		}
	}
	return nil
}

func bindVariant(rv reflect.Value, v *value.Variant, path string) error {
	if rv.Kind() == reflect.Interface {
		ui, ok := lookupUnion(rv.Type())
		if !ok {
			return bindErr(path, "interface %s is not a registered union", rv.Type())
		}
		vt, ok := ui.variantType(v.Name)
		if !ok {
			return bindErr(path, "union %s has no variant %q", ui.name, v.Name)
		}
		cv := reflect.New(vt).Elem()
		if cv.Kind() == reflect.Pointer && value.IsNone(v.Payload) {
			cv.Set(reflect.New(vt.Elem()))
		}
		if !value.IsNone(v.Payload) {
			if err := bindInto(cv, v.Payload, path+"/"+escapePointer(v.Name)); err != nil {
				return err
			}
		}
		rv.Set(cv)
		return nil
	}
	if rv.Kind() == reflect.String && value.IsNone(v.Payload) {
		rv.SetString(v.Name)
		return nil
	}
	return bindErr(path, "cannot assign variant %s to %s", v.Name, rv.Type())
}
