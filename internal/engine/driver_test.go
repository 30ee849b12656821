package engine_test

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/reoring/xmlskema/internal/engine"
	"github.com/reoring/xmlskema/schema"
	"github.com/reoring/xmlskema/value"
	"github.com/reoring/xmlskema/xmltree"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func dateTimeSchema(t *testing.T) *schema.Record {
	t.Helper()
	extra := &schema.Record{Name: "Extra", Fields: []*schema.Field{
		{Name: "week", Type: schema.Int(32)},
		{Name: "century", Type: schema.Int(32)},
	}}
	optionalExtra := &schema.Record{Name: "OptionalExtra", Fields: []*schema.Field{
		{Name: "lunar_day", Type: schema.Int(32)},
	}}
	date := &schema.Record{Name: "Date", Fields: []*schema.Field{
		{Name: "year", Type: schema.Int(32)},
		{Name: "month", Type: schema.Int(32)},
		{Name: "day", Type: schema.Int(32)},
		{Name: "extra", Flatten: true, Type: extra},
		{Name: "optional_extra", Flatten: true, Card: schema.Optional, Type: optionalExtra},
	}}
	kind := &schema.Union{Name: "DateKind", Default: "Working", Variants: []*schema.Variant{
		{Name: "Holidays", Rename: "holidays", Payload: schema.String(), Repeated: true},
		{Name: "Working", Rename: "working"},
	}}
	dt := &schema.Record{Name: "DateTime", Fields: []*schema.Field{
		{Name: "date", Flatten: true, Type: date},
		{Name: "time", Type: schema.String()},
		{Name: "kind", Flatten: true, Type: kind},
	}}
	if err := schema.Compile(dt); err != nil {
		t.Fatalf("compile: %v", err)
	}
	return dt
}

func leaves(kv ...string) []*xmltree.Element {
	out := make([]*xmltree.Element, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, xmltree.Leaf(kv[i], kv[i+1]))
	}
	return out
}

func mustDecode(t *testing.T, root *xmltree.Element, n schema.Node, opt engine.Options) engine.Result {
	t.Helper()
	res, err := engine.Decode(root, n, opt)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res
}

func issueOf(t *testing.T, err error) engine.SimpleIssue {
	t.Helper()
	var ie engine.IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected engine.IssueError, got %T: %v", err, err)
	}
	return ie.SimpleIssue
}

func TestDecode_DateTimeEndToEnd(t *testing.T) {
	dt := dateTimeSchema(t)
	root := xmltree.Node("DateTime", leaves(
		"year", "2020", "month", "1", "day", "1", "week", "1", "century", "21",
		"lunar_day", "1", "time", "10:40:03", "holidays", "A", "holidays", "B",
	)...)
	res := mustDecode(t, root, dt, engine.Options{})
	want := map[string]any{
		"date": map[string]any{
			"year": int64(2020), "month": int64(1), "day": int64(1),
			"extra":          map[string]any{"week": int64(1), "century": int64(21)},
			"optional_extra": map[string]any{"lunar_day": int64(1)},
		},
		"time": "10:40:03",
		"kind": map[string]any{"Holidays": []any{"A", "B"}},
	}
	if diff := cmp.Diff(want, value.ToAny(res.Value)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_OrderIndependentAndSequenceOrder(t *testing.T) {
	dt := dateTimeSchema(t)
	a := xmltree.Node("DateTime", leaves(
		"holidays", "New Year's Day", "year", "2020", "month", "1", "day", "1",
		"holidays", "Novy God Day", "week", "1", "century", "21", "time", "10:40:03",
		"holidays", "Polar Bear Swim Day",
	)...)
	b := xmltree.Node("DateTime", leaves(
		"time", "10:40:03", "century", "21", "week", "1", "holidays", "New Year's Day",
		"day", "1", "holidays", "Novy God Day", "month", "1", "year", "2020",
		"holidays", "Polar Bear Swim Day",
	)...)
	ra := value.ToAny(mustDecode(t, a, dt, engine.Options{}).Value)
	rb := value.ToAny(mustDecode(t, b, dt, engine.Options{}).Value)
	if diff := cmp.Diff(ra, rb); diff != "" {
		t.Fatalf("child order must not matter (-a +b):\n%s", diff)
	}
	got, _ := value.Lookup(mustDecode(t, a, dt, engine.Options{}).Value, "kind", "Holidays")
	want := []any{"New Year's Day", "Novy God Day", "Polar Bear Swim Day"}
	if diff := cmp.Diff(want, value.ToAny(got)); diff != "" {
		t.Fatalf("holidays (-want +got):\n%s", diff)
	}
}

func TestDecode_OptionalFlattenAbsentAndDefaultVariant(t *testing.T) {
	dt := dateTimeSchema(t)
	root := xmltree.Node("DateTime", leaves(
		"year", "2020", "month", "1", "day", "1", "week", "1", "century", "21", "time", "10:40:03",
	)...)
	res := mustDecode(t, root, dt, engine.Options{CollectMarks: true})
	oe, _ := value.Lookup(res.Value, "date", "optional_extra")
	if !value.IsNone(oe) {
		t.Fatalf("optional_extra should be none, got %#v", oe)
	}
	kind, _ := value.Lookup(res.Value, "kind")
	if v, ok := kind.(*value.Variant); !ok || v.Name != "Working" {
		t.Fatalf("expected default Working variant, got %#v", kind)
	}
	if res.Marks["/date/optional_extra"]&engine.MarkNone == 0 {
		t.Fatalf("optional_extra should be marked none: %v", res.Marks)
	}
	if res.Marks["/kind"]&engine.MarkDefault == 0 {
		t.Fatalf("kind should be marked default: %v", res.Marks)
	}
	if res.Marks["/date/extra/week"]&engine.MarkSeen == 0 {
		t.Fatalf("week should be marked seen: %v", res.Marks)
	}
}

func TestDecode_FlattenedErrorsCarryFullPath(t *testing.T) {
	dt := dateTimeSchema(t)
	missing := xmltree.Node("DateTime", leaves(
		"year", "2020", "month", "1", "day", "1", "week", "1", "time", "t",
	)...)
	_, err := engine.Decode(missing, dt, engine.Options{})
	if is := issueOf(t, err); is.Code != engine.CodeMissingField || is.Path != "/date/extra/century" {
		t.Fatalf("unexpected issue: %+v", is)
	}

	bad := xmltree.Node("DateTime", leaves(
		"year", "2020", "month", "1", "day", "1", "week", "first", "century", "21", "time", "t",
	)...)
	_, err = engine.Decode(bad, dt, engine.Options{})
	is := issueOf(t, err)
	if is.Code != engine.CodeInvalidScalar || is.Path != "/date/extra/week" {
		t.Fatalf("unexpected issue: %+v", is)
	}
	if is.Params["text"] != "first" || is.Params["expected"] != "int32" {
		t.Fatalf("unexpected params: %v", is.Params)
	}
}

func TestDecode_LastWriteWins(t *testing.T) {
	r := &schema.Record{Name: "R", Fields: []*schema.Field{{Name: "x", Type: schema.Int(64)}}}
	schema.MustCompile(r)
	res := mustDecode(t, xmltree.Node("R", leaves("x", "1", "x", "2")...), r, engine.Options{})
	got, _ := value.Lookup(res.Value, "x")
	if s := got.(value.Scalar); s.V != int64(2) {
		t.Fatalf("expected last value 2, got %v", s.V)
	}
}

func TestDecode_UnknownElements(t *testing.T) {
	r := &schema.Record{Name: "R", Fields: []*schema.Field{{Name: "x", Type: schema.String()}}}
	schema.MustCompile(r)
	root := xmltree.Node("R", leaves("x", "1", "y", "2")...)

	core, logs := observer.New(zapcore.DebugLevel)
	if _, err := engine.Decode(root, r, engine.Options{Logger: zap.New(core)}); err != nil {
		t.Fatalf("lenient decode: %v", err)
	}
	if n := logs.FilterMessage("ignored element").Len(); n != 1 {
		t.Fatalf("expected one ignored element log, got %d", n)
	}

	_, err := engine.Decode(root, r, engine.Options{Strict: true})
	if is := issueOf(t, err); is.Code != engine.CodeUnknownKey || is.Path != "/y" {
		t.Fatalf("unexpected issue: %+v", is)
	}
}

func contentUnion(t *testing.T, def string) *schema.Union {
	t.Helper()
	binary := &schema.Record{Name: "Binary", Fields: []*schema.Field{{Name: "binary_data", Type: schema.String()}}}
	data := &schema.Record{Name: "Data", Fields: []*schema.Field{{Name: "string_data", Type: schema.String()}}}
	u := &schema.Union{Name: "Content", Default: def, Variants: []*schema.Variant{
		{Name: "Binary", Payload: binary},
		{Name: "Data", Payload: data},
		{Name: "Unknown"},
	}}
	schema.MustCompile(u)
	return u
}

func TestDecode_RootUnionDispatch(t *testing.T) {
	u := contentUnion(t, "")
	root := xmltree.Node("Binary", xmltree.Leaf("binary_data", "binary"))
	res := mustDecode(t, root, u, engine.Options{})
	want := map[string]any{"Binary": map[string]any{"binary_data": "binary"}}
	if diff := cmp.Diff(want, value.ToAny(res.Value)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	_, err := engine.Decode(xmltree.Node("Other"), u, engine.Options{})
	is := issueOf(t, err)
	if is.Code != engine.CodeUnmatchedVariant || is.Params["tag"] != "Other" {
		t.Fatalf("unexpected issue: %+v", is)
	}
}

func TestDecode_RootUnionDefault(t *testing.T) {
	u := contentUnion(t, "Unknown")
	res := mustDecode(t, xmltree.Node("Other"), u, engine.Options{})
	if v := res.Value.(*value.Variant); v.Name != "Unknown" {
		t.Fatalf("expected default variant, got %s", v.Name)
	}
}

func TestDecode_WrapperUnionField(t *testing.T) {
	u := contentUnion(t, "")
	r := &schema.Record{Name: "Msg", Fields: []*schema.Field{{Name: "content", Type: u}}}
	schema.MustCompile(r)

	ok := xmltree.Node("Msg", xmltree.Node("content", xmltree.Node("Data", xmltree.Leaf("string_data", "s"))))
	res := mustDecode(t, ok, r, engine.Options{})
	got, _ := value.Lookup(res.Value, "content", "Data", "string_data")
	if s := got.(value.Scalar); s.V != "s" {
		t.Fatalf("unexpected payload %#v", got)
	}

	bad := xmltree.Node("Msg", xmltree.Node("content", xmltree.Leaf("Nope", "")))
	_, err := engine.Decode(bad, r, engine.Options{})
	if is := issueOf(t, err); is.Code != engine.CodeUnmatchedVariant || is.Path != "/content" || is.Params["tag"] != "Nope" {
		t.Fatalf("unexpected issue: %+v", is)
	}
}

func TestDecode_FlattenedUnionRecordPayload(t *testing.T) {
	u := contentUnion(t, "")
	r := &schema.Record{Name: "Msg", Fields: []*schema.Field{
		{Name: "id", Type: schema.Int(64)},
		{Name: "content", Flatten: true, Type: u},
	}}
	schema.MustCompile(r)

	root := xmltree.Node("Msg",
		xmltree.Leaf("id", "1"),
		xmltree.Node("Binary", xmltree.Leaf("binary_data", "b")),
	)
	res := mustDecode(t, root, r, engine.Options{})
	want := map[string]any{
		"id":      int64(1),
		"content": map[string]any{"Binary": map[string]any{"binary_data": "b"}},
	}
	if diff := cmp.Diff(want, value.ToAny(res.Value)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	_, err := engine.Decode(xmltree.Node("Msg", xmltree.Leaf("id", "1")), r, engine.Options{})
	if is := issueOf(t, err); is.Code != engine.CodeMissingField || is.Path != "/content" {
		t.Fatalf("unexpected issue: %+v", is)
	}
}

func TestDecode_FlattenMatchesNestedWrapper(t *testing.T) {
	extra := func() *schema.Record {
		return &schema.Record{Name: "Extra", Fields: []*schema.Field{
			{Name: "week", Type: schema.Int(32)},
			{Name: "century", Type: schema.Int(32)},
		}}
	}
	flat := &schema.Record{Name: "Date", Fields: []*schema.Field{
		{Name: "year", Type: schema.Int(32)},
		{Name: "extra", Flatten: true, Type: extra()},
	}}
	nested := &schema.Record{Name: "Date", Fields: []*schema.Field{
		{Name: "year", Type: schema.Int(32)},
		{Name: "extra", Type: extra()},
	}}
	schema.MustCompile(flat)
	schema.MustCompile(nested)

	a := mustDecode(t, xmltree.Node("Date", leaves("week", "2", "year", "1999", "century", "20")...), flat, engine.Options{})
	b := mustDecode(t, xmltree.Node("Date",
		xmltree.Leaf("year", "1999"),
		xmltree.Node("extra", leaves("century", "20", "week", "2")...),
	), nested, engine.Options{})
	if diff := cmp.Diff(value.ToAny(b.Value), value.ToAny(a.Value)); diff != "" {
		t.Fatalf("flattened and nested decodes differ (-nested +flat):\n%s", diff)
	}
}

func TestDecode_SharedSchemaConcurrent(t *testing.T) {
	dt := dateTimeSchema(t)
	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			year := strconv.Itoa(2000 + i)
			root := xmltree.Node("DateTime", leaves(
				"year", year, "month", "1", "day", "1", "week", "1", "century", "21",
				"time", "t", "holidays", year,
			)...)
			res, err := engine.Decode(root, dt, engine.Options{CollectMarks: true})
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			got, _ := value.Lookup(res.Value, "date", "year")
			if s := got.(value.Scalar); s.V != int64(2000+i) {
				t.Errorf("worker %d: year %v", i, s.V)
			}
			hol, _ := value.Lookup(res.Value, "kind", "Holidays")
			if diff := cmp.Diff([]any{year}, value.ToAny(hol)); diff != "" {
				t.Errorf("worker %d: holidays (-want +got):\n%s", i, diff)
			}
			if res.Marks["/date/extra/week"]&engine.MarkSeen == 0 {
				t.Errorf("worker %d: week not marked", i)
			}
		}(i)
	}
	wg.Wait()
}

func TestDecodeDocument_TransparentRecord(t *testing.T) {
	r := &schema.Record{Name: "Data", Transparent: true, Fields: []*schema.Field{
		{Name: "binary_data", Type: schema.String()},
		{Name: "string_data", Type: schema.String()},
	}}
	schema.MustCompile(r)
	doc := xmltree.Document(leaves("binary_data", "binary", "string_data", "string")...)
	res, err := engine.DecodeDocument(doc, r, engine.Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{"binary_data": "binary", "string_data": "string"}
	if diff := cmp.Diff(want, value.ToAny(res.Value)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDocument_FirstTopLevelElement(t *testing.T) {
	u := contentUnion(t, "Unknown")
	doc := xmltree.Document(xmltree.Node("Binary", xmltree.Leaf("binary_data", "binary")))
	res, err := engine.DecodeDocument(doc, u, engine.Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v := res.Value.(*value.Variant); v.Name != "Binary" {
		t.Fatalf("expected Binary, got %s", v.Name)
	}
	if _, err := engine.DecodeDocument(xmltree.Document(), u, engine.Options{}); issueOf(t, err).Code != engine.CodeParseError {
		t.Fatalf("empty document should be a parse error")
	}
}

func TestDecode_RejectsUncompiledSchema(t *testing.T) {
	r := &schema.Record{Name: "R"}
	_, err := engine.Decode(xmltree.Node("R"), r, engine.Options{})
	if is := issueOf(t, err); is.Code != engine.CodeParseError {
		t.Fatalf("unexpected issue: %+v", is)
	}
}
