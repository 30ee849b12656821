package xmlskema

import (
	"context"

	"github.com/reoring/xmlskema/schema"
	"github.com/reoring/xmlskema/value"
	"github.com/reoring/xmlskema/xmltree"
	"go.uber.org/zap"
)

// Schema pairs a compiled schema node with the conversion of decoded values
// into T.
type Schema[T any] interface {
	// Node returns the compiled schema node element trees are mapped onto.
	Node() schema.Node
	// Bind converts a decoded value into T. It returns Issues with code
	// bind_error when the value does not fit T.
	Bind(ctx context.Context, v value.Value) (T, error)
}

// SafeDecode decodes root into T, returning (zero, false) on error.
func SafeDecode[T any](ctx context.Context, s Schema[T], root *xmltree.Element, opts ...ParseOpt) (T, bool) {
	val, err := Decode(ctx, s, root, opts...)
	if err != nil {
		var zero T
		return zero, false
	}
	return val, true
}

// Is reports whether root decodes against s.
func Is[T any](ctx context.Context, s Schema[T], root *xmltree.Element) bool {
	_, ok := SafeDecode(ctx, s, root)
	return ok
}

// ---- Decode-time context options ----

type contextKey int

const (
	_ctxKeyLogger contextKey = iota
)

// WithLogger returns a child context carrying the logger used for dispatch
// diagnostics. Decisions are logged at debug level.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, _ctxKeyLogger, l)
}

// LoggerFrom returns the logger carried by ctx, or a no-op logger.
func LoggerFrom(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(_ctxKeyLogger).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.NewNop()
}
