package xmlskema

import (
	"context"
	"io"

	eng "github.com/reoring/xmlskema/internal/engine"
	"github.com/reoring/xmlskema/schema"
	"github.com/reoring/xmlskema/xmltree"
	"go.uber.org/zap"
)

// Decode maps root onto s. For a record schema root is the wrapper element
// whose children carry the fields; for a union schema root's own tag selects
// the variant.
func Decode[T any](ctx context.Context, s Schema[T], root *xmltree.Element, opts ...ParseOpt) (T, error) {
	dm, err := run(ctx, s, root, lastOpt(opts), eng.Decode)
	return dm.Value, err
}

// DecodeDocument maps a document node (see xmltree.Document) onto s. A
// transparent record reads the top-level elements as its fields; any other
// schema decodes the first top-level element.
func DecodeDocument[T any](ctx context.Context, s Schema[T], doc *xmltree.Element, opts ...ParseOpt) (T, error) {
	dm, err := run(ctx, s, doc, lastOpt(opts), eng.DecodeDocument)
	return dm.Value, err
}

// DecodeWithMeta is like DecodeDocument and also returns presence metadata
// for every field path. Presence collection is enabled unless the options
// configure it explicitly.
func DecodeWithMeta[T any](ctx context.Context, s Schema[T], doc *xmltree.Element, opts ...ParseOpt) (Decoded[T], error) {
	return run(ctx, s, doc, normalizeWithMetaOpt(opts), eng.DecodeDocument)
}

// DecodeFrom is the primary entry point for raw input. It materializes the
// document through the Source and decodes it like DecodeDocument.
func DecodeFrom[T any](ctx context.Context, s Schema[T], src Source, opts ...ParseOpt) (T, error) {
	dm, err := decodeFrom(ctx, s, src, lastOpt(opts))
	return dm.Value, err
}

// DecodeFromWithMeta is DecodeFrom with presence metadata.
func DecodeFromWithMeta[T any](ctx context.Context, s Schema[T], src Source, opts ...ParseOpt) (Decoded[T], error) {
	return decodeFrom(ctx, s, src, normalizeWithMetaOpt(opts))
}

// Unmarshal decodes an XML document held in memory using the active driver.
func Unmarshal[T any](ctx context.Context, s Schema[T], data []byte, opts ...ParseOpt) (T, error) {
	return DecodeFrom(ctx, s, XMLBytes(data), opts...)
}

// StreamDecode decodes a document read from r. When MaxBytes is set it
// enforces the size cap up front, otherwise it delegates directly to
// DecodeFrom via the active driver.
func StreamDecode[T any](ctx context.Context, s Schema[T], r io.Reader, opts ...ParseOpt) (T, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 {
		var zero T
		lr := io.LimitReader(r, opt.MaxBytes+1)
		data, err := io.ReadAll(lr)
		if err != nil {
			return zero, singleIssue(CodeParseError, err.Error())
		}
		if int64(len(data)) > opt.MaxBytes {
			return zero, singleIssue(CodeLimitExceeded, "max bytes exceeded")
		}
		return DecodeFrom(ctx, s, XMLBytes(data), opts...)
	}
	return DecodeFrom(ctx, s, XMLReader(r), opts...)
}

// ---- helpers (options, driver, engine wiring) ----

type entry func(*xmltree.Element, schema.Node, eng.Options) (eng.Result, error)

func normalizeWithMetaOpt(opts []ParseOpt) ParseOpt {
	opt := lastOpt(opts)
	if !opt.Presence.Collect && len(opt.Presence.Include) == 0 && len(opt.Presence.Exclude) == 0 {
		opt.Presence.Collect = true
	}
	return opt
}

func decodeFrom[T any](ctx context.Context, s Schema[T], src Source, opt ParseOpt) (Decoded[T], error) {
	var zero Decoded[T]
	if src == nil {
		return zero, singleIssue(CodeParseError, "nil source")
	}
	doc, err := src.Document()
	if err != nil {
		return zero, AppendIssues(nil, Issue{Code: CodeParseError, Path: "/", Message: err.Error(), Cause: err})
	}
	return run(ctx, s, doc, opt, eng.DecodeDocument)
}

func run[T any](ctx context.Context, s Schema[T], root *xmltree.Element, opt ParseOpt, enter entry) (Decoded[T], error) {
	var zero Decoded[T]
	if s == nil {
		return zero, singleIssue(CodeParseError, "nil schema")
	}
	node := s.Node()
	if node == nil {
		return zero, singleIssue(CodeParseError, "nil schema")
	}
	if err := eng.CheckLimits(root, eng.Limits{MaxDepth: opt.MaxDepth, MaxElements: opt.MaxElements}); err != nil {
		return zero, toIssues(err)
	}
	log := LoggerFrom(ctx)
	log.Debug("decode", zap.String("schema", node.Describe()))
	res, err := enter(root, node, eng.Options{
		Strict:       opt.Unknown == UnknownStrict,
		CollectMarks: opt.Presence.Collect,
		TrimSpace:    opt.TrimSpace,
		Logger:       log,
	})
	if err != nil {
		return zero, toIssues(err)
	}
	v, err := s.Bind(ctx, res.Value)
	if err != nil {
		return zero, toIssues(err)
	}
	return Decoded[T]{
		Value:    v,
		Presence: applyPresenceOptions(presenceFromMarks(res.Marks), opt.Presence, opt.PathRender),
	}, nil
}
