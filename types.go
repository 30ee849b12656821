package xmlskema

// UnknownPolicy controls how elements claimed by no field are handled.
type UnknownPolicy int

const (
	UnknownStrip  UnknownPolicy = iota // Ignore unknown elements (logged at debug level).
	UnknownStrict                      // Reject unknown elements with an unknown_key issue.
)

// PresenceOpt configures presence collection for WithMeta-style decoding.
type PresenceOpt struct {
	Collect bool
	Include []string
	Exclude []string
}

// PathRenderOpt controls how paths are rendered into strings.
type PathRenderOpt struct {
	Intern bool
}

// ParseOpt bundles decoding options.
type ParseOpt struct {
	MaxDepth    int   // Maximum element nesting depth (0 = unlimited).
	MaxElements int   // Maximum number of elements in the tree (0 = unlimited).
	MaxBytes    int64 // Maximum input size for reader-based entry points (0 = unlimited).
	Unknown     UnknownPolicy
	Presence    PresenceOpt
	PathRender  PathRenderOpt
	// TrimSpace trims surrounding whitespace from string scalars.
	TrimSpace bool
}

func lastOpt(opts []ParseOpt) ParseOpt {
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}
