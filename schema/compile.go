package schema

// claim records which declaration owns a tag of a flattened namespace.
type claim struct {
	tag   string
	owner string
}

// Compile validates the schema graph reachable from root and freezes it:
// field and variant indices are assigned, tag lookup tables are built and the
// flattened namespace of every record is computed.
//
// Compile rejects duplicate tags within one flattened namespace, duplicate
// variant tags, flatten cycles, flatten on sequence fields or scalar types,
// a default naming no variant, and empty names. Compile is idempotent. It
// mutates the schema, so call it before the schema is shared between
// goroutines.
func Compile(root Node) error {
	c := &compiler{
		seen:   map[Node]bool{},
		active: map[*Record]bool{},
		memo:   map[*Record][]claim{},
	}
	return c.node(root, label(root))
}

// MustCompile is like Compile but panics on error.
func MustCompile(root Node) Node {
	if err := Compile(root); err != nil {
		panic(err)
	}
	return root
}

type compiler struct {
	seen   map[Node]bool
	active map[*Record]bool
	memo   map[*Record][]claim
}

func label(n Node) string {
	switch t := n.(type) {
	case *Record:
		if t.Name != "" {
			return t.Name
		}
		return "record"
	case *Union:
		if t.Name != "" {
			return t.Name
		}
		return "union"
	case *Scalar:
		return t.Expected()
	default:
		return "<nil>"
	}
}

func (c *compiler) node(n Node, path string) error {
	if n == nil {
		return invalid(path, "nil schema node")
	}
	if c.seen[n] {
		return nil
	}
	c.seen[n] = true
	switch t := n.(type) {
	case *Record:
		return c.record(t, path)
	case *Union:
		return c.union(t, path)
	case *Scalar:
		return c.scalar(t, path)
	default:
		return invalid(path, "unsupported schema node %T", n)
	}
}

func (c *compiler) scalar(s *Scalar, path string) error {
	if s.Bits < 0 || s.Bits > 64 {
		return invalid(path, "scalar bit size %d out of range", s.Bits)
	}
	if s.Kind == KindFloat && s.Bits != 0 && s.Bits != 32 && s.Bits != 64 {
		return invalid(path, "float bit size must be 32 or 64, got %d", s.Bits)
	}
	return nil
}

func (c *compiler) record(r *Record, path string) error {
	if r.compiled {
		return nil
	}
	direct := make(map[string]*Field, len(r.Fields))
	byName := make(map[string]*Field, len(r.Fields))
	for i, f := range r.Fields {
		if f == nil {
			return invalid(path, "field #%d is nil", i)
		}
		fpath := path + "." + f.Name
		if f.Name == "" {
			return invalid(path, "field #%d has an empty name", i)
		}
		if _, dup := byName[f.Name]; dup {
			return invalid(fpath, "duplicate field name")
		}
		if f.Type == nil {
			return invalid(fpath, "field has no type")
		}
		if f.Card < Required || f.Card > Sequence {
			return invalid(fpath, "unknown cardinality %d", int(f.Card))
		}
		f.Index = i
		byName[f.Name] = f
		if f.Flatten {
			switch f.Type.(type) {
			case *Record, *Union:
			default:
				return invalid(fpath, "flatten requires a record or union, got %s", f.Type.Describe())
			}
			if f.Card == Sequence {
				return invalid(fpath, "flatten cannot be combined with a sequence")
			}
			continue
		}
		if prev, dup := direct[f.Tag()]; dup {
			return ambiguous(fpath, f.Tag(), "tag already claimed by field %q", prev.Name)
		}
		direct[f.Tag()] = f
	}
	for _, f := range r.Fields {
		if err := c.node(f.Type, path+"."+f.Name); err != nil {
			return err
		}
	}
	claims, err := c.namespace(r, path)
	if err != nil {
		return err
	}
	ns := make(map[string]struct{}, len(claims))
	for _, cl := range claims {
		ns[cl.tag] = struct{}{}
	}
	r.direct = direct
	r.byName = byName
	r.namespace = ns
	r.claims = claims
	r.compiled = true
	return nil
}

// namespace computes the tags claimed by r across all flatten levels and
// rejects duplicates and flatten cycles.
func (c *compiler) namespace(r *Record, path string) ([]claim, error) {
	if r.compiled {
		return r.claims, nil
	}
	if cl, ok := c.memo[r]; ok {
		return cl, nil
	}
	if c.active[r] {
		return nil, invalid(path, "flatten cycle through %s", label(r))
	}
	c.active[r] = true
	defer delete(c.active, r)

	var out []claim
	owners := map[string]string{}
	add := func(tag, owner, at string) error {
		if prev, dup := owners[tag]; dup {
			return ambiguous(at, tag, "tag claimed by both %s and %s", prev, owner)
		}
		owners[tag] = owner
		out = append(out, claim{tag: tag, owner: owner})
		return nil
	}
	for _, f := range r.Fields {
		if f == nil {
			continue
		}
		fpath := path + "." + f.Name
		if !f.Flatten {
			if err := add(f.Tag(), f.Name, fpath); err != nil {
				return nil, err
			}
			continue
		}
		switch t := f.Type.(type) {
		case *Record:
			sub, err := c.namespace(t, fpath)
			if err != nil {
				return nil, err
			}
			for _, cl := range sub {
				if err := add(cl.tag, f.Name+"."+cl.owner, fpath); err != nil {
					return nil, err
				}
			}
		case *Union:
			for _, v := range t.Variants {
				if v == nil {
					continue
				}
				if err := add(v.Tag(), f.Name+"."+v.Name, fpath); err != nil {
					return nil, err
				}
			}
		}
	}
	c.memo[r] = out
	return out, nil
}

func (c *compiler) union(u *Union, path string) error {
	if u.compiled {
		return nil
	}
	if len(u.Variants) == 0 {
		return invalid(path, "union has no variants")
	}
	byTag := make(map[string]*Variant, len(u.Variants))
	names := make(map[string]struct{}, len(u.Variants))
	for i, v := range u.Variants {
		if v == nil {
			return invalid(path, "variant #%d is nil", i)
		}
		vpath := path + "." + v.Name
		if v.Name == "" {
			return invalid(path, "variant #%d has an empty name", i)
		}
		if _, dup := names[v.Name]; dup {
			return invalid(vpath, "duplicate variant name")
		}
		names[v.Name] = struct{}{}
		if prev, dup := byTag[v.Tag()]; dup {
			return ambiguous(vpath, v.Tag(), "tag already selects variant %q", prev.Name)
		}
		if v.Repeated && v.Payload == nil {
			return invalid(vpath, "repeated variant needs a payload")
		}
		v.Index = i
		byTag[v.Tag()] = v
	}
	var def *Variant
	if u.Default != "" {
		for _, v := range u.Variants {
			if v.Name == u.Default {
				def = v
				break
			}
		}
		if def == nil {
			return invalid(path, "default %q names no variant", u.Default)
		}
		if _, scalar := def.Payload.(*Scalar); scalar && !def.Repeated {
			return invalid(path+"."+def.Name, "default variant cannot carry a single scalar payload")
		}
	}
	for _, v := range u.Variants {
		if v.Payload == nil {
			continue
		}
		if err := c.node(v.Payload, path+"."+v.Name); err != nil {
			return err
		}
	}
	u.byTag = byTag
	u.defaultVar = def
	u.compiled = true
	return nil
}
