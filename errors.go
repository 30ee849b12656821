package xmlskema

import (
	"errors"
	"fmt"
	"strings"

	eng "github.com/reoring/xmlskema/internal/engine"
	"github.com/reoring/xmlskema/i18n"
	"github.com/reoring/xmlskema/schema"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeMissingField     = eng.CodeMissingField
	CodeUnmatchedVariant = eng.CodeUnmatchedVariant
	CodeInvalidScalar    = eng.CodeInvalidScalar
	CodeUnknownKey       = eng.CodeUnknownKey
	CodeLimitExceeded    = eng.CodeLimitExceeded
	CodeParseError       = eng.CodeParseError
	// Schema construction
	CodeAmbiguousSchema = schema.CodeAmbiguous
	CodeInvalidSchema   = schema.CodeInvalid
	// Go binding
	CodeBindError = "bind_error"
)

// Issue represents a single decode error.
type Issue struct {
	Path    string // JSON Pointer over field names (for example: /date/extra/week).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected kinds, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"tag":"Other"}) for i18n
	// and observability.
	Params map[string]any
}

// Issues is a collection of decode errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. missing_field at /date/year
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// toIssues converts engine, schema and driver errors into Issues.
func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{
			Code:    ie.Code,
			Path:    ie.Path,
			Message: message(ie.Code, ie.Params, ie.Message),
			Hint:    hintOf(ie.Params),
			Cause:   ie.Cause,
			Params:  ie.Params,
		})
	}
	var be *BindError
	if errors.As(err, &be) {
		return AppendIssues(nil, Issue{
			Code:    CodeBindError,
			Path:    be.Path,
			Message: message(CodeBindError, nil, be.Message),
			Hint:    be.Message,
			Cause:   be,
		})
	}
	var se *schema.Error
	if errors.As(err, &se) {
		params := map[string]any{"schema": se.Path}
		if se.Tag != "" {
			params["tag"] = se.Tag
		}
		return AppendIssues(nil, Issue{
			Code:    se.Code,
			Path:    "/",
			Message: message(se.Code, params, se.Message),
			Hint:    se.Path + ": " + se.Message,
			Cause:   se,
			Params:  params,
		})
	}
	return AppendIssues(nil, Issue{Code: CodeParseError, Path: "/", Message: err.Error(), Cause: err})
}

func singleIssue(code, msg string) Issues {
	return AppendIssues(nil, Issue{Code: code, Path: "/", Message: msg})
}

// message renders a localized message, falling back to the engine text for
// codes the translator does not know.
func message(code string, params map[string]any, fallback string) string {
	data := make(map[string]string, len(params))
	for k, v := range params {
		data[k] = fmt.Sprint(v)
	}
	if msg := i18n.T(code, data); msg != code {
		return msg
	}
	return fallback
}

func hintOf(params map[string]any) string {
	if exp, ok := params["expected"].(string); ok {
		return "expected " + exp
	}
	return ""
}
