// Package schemafile reads schemas declared in YAML.
//
// A document names the root type and declares every record and union by
// name:
//
//	root: DateTime
//	types:
//	  DateTime:
//	    record:
//	      fields:
//	        - {name: date, type: Date, flatten: true}
//	        - {name: time, type: string}
//	        - {name: kind, type: DateKind, flatten: true}
//	  DateKind:
//	    union:
//	      default: Working
//	      variants:
//	        - {name: Holidays, rename: holidays, type: string, repeated: true}
//	        - {name: Working, rename: working}
//
// Field and variant types are either declared type names or one of the
// primitives string, bool, int, int8..int64, uint, uint8..uint64, float32,
// float64 and time. Types may refer to each other recursively.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/reoring/xmlskema/schema"
)

// File is the YAML document model.
type File struct {
	Root  string             `yaml:"root"`
	Types map[string]TypeDef `yaml:"types"`
}

// TypeDef declares exactly one of a record or a union.
type TypeDef struct {
	Record *RecordDef `yaml:"record,omitempty"`
	Union  *UnionDef  `yaml:"union,omitempty"`
}

type RecordDef struct {
	Transparent bool       `yaml:"transparent,omitempty"`
	Fields      []FieldDef `yaml:"fields"`
}

type FieldDef struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Rename   string `yaml:"rename,omitempty"`
	Flatten  bool   `yaml:"flatten,omitempty"`
	Optional bool   `yaml:"optional,omitempty"`
	Sequence bool   `yaml:"sequence,omitempty"`
}

type UnionDef struct {
	Default  string       `yaml:"default,omitempty"`
	Variants []VariantDef `yaml:"variants"`
}

// VariantDef declares a variant. An empty Type declares a unit variant.
type VariantDef struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type,omitempty"`
	Rename   string `yaml:"rename,omitempty"`
	Repeated bool   `yaml:"repeated,omitempty"`
}

var errNoRoot = errors.New("schemafile: root is required")

// Load reads and builds the schema file at path.
func Load(path string) (schema.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	n, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// Parse decodes a YAML schema document and builds its compiled root node.
// Unknown keys are rejected.
func Parse(data []byte) (schema.Node, error) {
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return f.Build()
}

// Decode reads the document model without building it.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errNoRoot
		}
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	return &f, nil
}

// Build resolves type references and compiles the root node.
func (f *File) Build() (schema.Node, error) {
	if f.Root == "" {
		return nil, errNoRoot
	}
	b := &builder{file: f, nodes: map[string]schema.Node{}}
	// shells first so that references resolve regardless of order
	for _, name := range f.typeNames() {
		def := f.Types[name]
		switch {
		case def.Record != nil && def.Union != nil:
			return nil, fmt.Errorf("schemafile: type %q declares both record and union", name)
		case def.Record != nil:
			b.nodes[name] = &schema.Record{Name: name, Transparent: def.Record.Transparent}
		case def.Union != nil:
			b.nodes[name] = &schema.Union{Name: name, Default: def.Union.Default}
		default:
			return nil, fmt.Errorf("schemafile: type %q declares neither record nor union", name)
		}
	}
	for _, name := range f.typeNames() {
		if err := b.fill(name); err != nil {
			return nil, err
		}
	}
	root, err := b.ref(f.Root)
	if err != nil {
		return nil, fmt.Errorf("schemafile: root: %w", err)
	}
	if err := schema.Compile(root); err != nil {
		return nil, err
	}
	return root, nil
}

func (f *File) typeNames() []string {
	names := make([]string, 0, len(f.Types))
	for k := range f.Types {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type builder struct {
	file  *File
	nodes map[string]schema.Node
}

func (b *builder) fill(name string) error {
	def := b.file.Types[name]
	switch n := b.nodes[name].(type) {
	case *schema.Record:
		for _, fd := range def.Record.Fields {
			t, err := b.ref(fd.Type)
			if err != nil {
				return fmt.Errorf("schemafile: type %q: field %q: %w", name, fd.Name, err)
			}
			card := schema.Required
			switch {
			case fd.Optional && fd.Sequence:
				return fmt.Errorf("schemafile: type %q: field %q: optional and sequence are exclusive", name, fd.Name)
			case fd.Optional:
				card = schema.Optional
			case fd.Sequence:
				card = schema.Sequence
			}
			n.Fields = append(n.Fields, &schema.Field{
				Name:    fd.Name,
				Rename:  fd.Rename,
				Flatten: fd.Flatten,
				Card:    card,
				Type:    t,
			})
		}
	case *schema.Union:
		for _, vd := range def.Union.Variants {
			v := &schema.Variant{Name: vd.Name, Rename: vd.Rename, Repeated: vd.Repeated}
			if vd.Type != "" {
				t, err := b.ref(vd.Type)
				if err != nil {
					return fmt.Errorf("schemafile: type %q: variant %q: %w", name, vd.Name, err)
				}
				v.Payload = t
			} else if vd.Repeated {
				return fmt.Errorf("schemafile: type %q: variant %q: repeated requires a type", name, vd.Name)
			}
			n.Variants = append(n.Variants, v)
		}
	}
	return nil
}

// ref resolves a declared type name or a primitive. Primitives get a fresh
// node per reference.
func (b *builder) ref(name string) (schema.Node, error) {
	if n, ok := b.nodes[name]; ok {
		return n, nil
	}
	if s := primitive(name); s != nil {
		return s, nil
	}
	if name == "" {
		return nil, errors.New("type is required")
	}
	return nil, fmt.Errorf("unknown type %q", name)
}

func primitive(name string) *schema.Scalar {
	switch name {
	case "string":
		return schema.String()
	case "bool":
		return schema.Bool()
	case "int", "int64":
		return schema.Int(64)
	case "int8":
		return schema.Int(8)
	case "int16":
		return schema.Int(16)
	case "int32":
		return schema.Int(32)
	case "uint", "uint64":
		return schema.Uint(64)
	case "uint8":
		return schema.Uint(8)
	case "uint16":
		return schema.Uint(16)
	case "uint32":
		return schema.Uint(32)
	case "float32":
		return schema.Float(32)
	case "float64":
		return schema.Float(64)
	case "time":
		return schema.Time()
	}
	return nil
}
