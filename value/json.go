package value

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Marshal renders v as JSON. Records become objects whose keys follow field
// declaration order, sequences become arrays, unit variants become their name
// and payload variants become a single-key object {"Name": payload}.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent is like Marshal with indentation applied.
func MarshalIndent(v Value, prefix, indent string) ([]byte, error) {
	b, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func write(buf *bytes.Buffer, v Value) error {
	switch t := v.(type) {
	case nil, None:
		buf.WriteString("null")
	case Scalar:
		b, err := json.Marshal(t.V)
		if err != nil {
			return err
		}
		buf.Write(b)
	case Seq:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := write(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Record:
		buf.WriteByte('{')
		if t.Schema != nil {
			for i, f := range t.Schema.Fields {
				if i > 0 {
					buf.WriteByte(',')
				}
				writeKey(buf, f.Name)
				var fv Value
				if i < len(t.Fields) {
					fv = t.Fields[i]
				}
				if err := write(buf, fv); err != nil {
					return err
				}
			}
		}
		buf.WriteByte('}')
	case *Variant:
		if IsNone(t.Payload) {
			writeString(buf, t.Name)
			return nil
		}
		buf.WriteByte('{')
		writeKey(buf, t.Name)
		if err := write(buf, t.Payload); err != nil {
			return err
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeKey(buf *bytes.Buffer, k string) {
	writeString(buf, k)
	buf.WriteByte(':')
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

func (r *Record) MarshalJSON() ([]byte, error)  { return Marshal(r) }
func (v *Variant) MarshalJSON() ([]byte, error) { return Marshal(v) }
func (s Seq) MarshalJSON() ([]byte, error)      { return Marshal(s) }
func (n None) MarshalJSON() ([]byte, error)     { return []byte("null"), nil }
func (s Scalar) MarshalJSON() ([]byte, error)   { return json.Marshal(s.V) }

// ToAny converts v into plain Go values: map[string]any for records and
// payload variants, []any for sequences, the variant name for unit variants,
// nil for none and the parsed scalar otherwise.
func ToAny(v Value) any {
	switch t := v.(type) {
	case nil, None:
		return nil
	case Scalar:
		return t.V
	case Seq:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToAny(e)
		}
		return out
	case *Record:
		out := make(map[string]any, len(t.Fields))
		if t.Schema != nil {
			for i, f := range t.Schema.Fields {
				if i < len(t.Fields) {
					out[f.Name] = ToAny(t.Fields[i])
				}
			}
		}
		return out
	case *Variant:
		if IsNone(t.Payload) {
			return t.Name
		}
		return map[string]any{t.Name: ToAny(t.Payload)}
	default:
		return nil
	}
}
