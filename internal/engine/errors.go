package engine

import (
	"strings"
)

// Issue codes produced by the engine. The public package re-exports them.
const (
	CodeMissingField     = "missing_field"
	CodeUnmatchedVariant = "unmatched_variant"
	CodeInvalidScalar    = "invalid_scalar"
	CodeUnknownKey       = "unknown_key"
	CodeLimitExceeded    = "limit_exceeded"
	CodeParseError       = "parse_error"
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
	Params  map[string]any
	Cause   error
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Code + " at " + e.SimpleIssue.Path + ": " + e.SimpleIssue.Message }

func (e IssueError) Unwrap() error { return e.SimpleIssue.Cause }

func issue(code, path, msg string, params map[string]any, cause error) IssueError {
	return IssueError{SimpleIssue{Code: code, Path: normalizeIssuePath(path), Message: msg, Params: params, Cause: cause}}
}

func missingField(path string) error {
	return issue(CodeMissingField, path, "missing field", nil, nil)
}

func unmatchedVariant(path, tag string) error {
	return issue(CodeUnmatchedVariant, path, "unknown variant: '"+tag+"'", map[string]any{"tag": tag}, nil)
}

func scalarParseError(path, text, expected string, cause error) error {
	return issue(CodeInvalidScalar, path, "cannot parse '"+text+"' as "+expected,
		map[string]any{"text": text, "expected": expected}, cause)
}

func unknownElement(path, tag string) error {
	return issue(CodeUnknownKey, path, "unknown element '"+tag+"'", map[string]any{"tag": tag}, nil)
}

func normalizeIssuePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapeJSONPointerToken(s string) string {
	return jsonPointerEscaper.Replace(s)
}

func joinJSONPointer(base, token string) string {
	if base == "" {
		return "/" + escapeJSONPointerToken(token)
	}
	return base + "/" + escapeJSONPointerToken(token)
}
