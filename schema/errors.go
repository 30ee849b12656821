package schema

import "fmt"

const (
	// CodeAmbiguous reports a tag claimed twice within one flattened
	// namespace, or two variants of a union sharing a tag.
	CodeAmbiguous = "ambiguous_schema"
	// CodeInvalid reports any other structural violation.
	CodeInvalid = "invalid_schema"
)

// Error is a compile-time schema violation.
type Error struct {
	Code string
	// Path locates the offending declaration, e.g. "DateTime.date.extra".
	Path string
	// Tag is the conflicting element tag for CodeAmbiguous.
	Tag     string
	Message string
}

func (e *Error) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s at %s: %s (tag %q)", e.Code, e.Path, e.Message, e.Tag)
	}
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Path, e.Message)
}

func invalid(path, format string, args ...any) *Error {
	return &Error{Code: CodeInvalid, Path: path, Message: fmt.Sprintf(format, args...)}
}

func ambiguous(path, tag, format string, args ...any) *Error {
	return &Error{Code: CodeAmbiguous, Path: path, Tag: tag, Message: fmt.Sprintf(format, args...)}
}
