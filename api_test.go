package xmlskema_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	xmlskema "github.com/reoring/xmlskema"
	g "github.com/reoring/xmlskema/dsl"
	"github.com/reoring/xmlskema/schema"
	"github.com/reoring/xmlskema/xmltree"
)

type Extra struct {
	Week    int32 `xml:"week"`
	Century int32 `xml:"century"`
}

type OptionalExtra struct {
	LunarDay int32 `xml:"lunar_day"`
}

type Date struct {
	Year          int32          `xml:"year"`
	Month         int32          `xml:"month"`
	Day           int32          `xml:"day"`
	Extra         Extra          `xmlskema:"extra,flatten"`
	OptionalExtra *OptionalExtra `xmlskema:"optional_extra,flatten"`
}

type DateKind interface{ isDateKind() }

type Holidays []string

type Working struct{}

func (Holidays) isDateKind() {}
func (Working) isDateKind()  {}

type DateTime struct {
	Date Date     `xmlskema:"date,flatten"`
	Time string   `xml:"time"`
	Kind DateKind `xmlskema:"kind,flatten"`
}

type Content interface{ isContent() }

type Binary struct {
	BinaryData string `xml:"binary_data"`
}

type Data struct {
	StringData string `xml:"string_data"`
}

type Unknown struct{}

func (Binary) isContent()  {}
func (Data) isContent()    {}
func (Unknown) isContent() {}

type Flat struct {
	BinaryData string `xml:"binary_data"`
	StringData string `xml:"string_data"`
}

func init() {
	xmlskema.MustRegisterUnion[DateKind]("DateKind",
		xmlskema.Variant[Holidays]("Holidays").Rename("holidays"),
		xmlskema.Variant[Working]("Working").Rename("working").Default(),
	)
	xmlskema.MustRegisterUnion[Content]("Content",
		xmlskema.Variant[Binary]("Binary"),
		xmlskema.Variant[Data]("Data"),
		xmlskema.Variant[Unknown]("Unknown").Default(),
	)
	xmlskema.MustRegisterUnion[Signal]("Signal",
		xmlskema.Variant[*Stop]("Stop").Rename("stop"),
		xmlskema.Variant[*Proceed]("Proceed").Rename("proceed"),
	)
}

const dateTimeXML = `<?xml version="1.0" encoding="utf-8"?>
<DateTime>
  <year>2020</year>
  <month>1</month>
  <day>1</day>
  <week>1</week>
  <century>21</century>
  <lunar_day>1</lunar_day>
  <time>10:40:03</time>
  <holidays>New Year's Day</holidays>
  <holidays>Novy God Day</holidays>
  <holidays>Polar Bear Swim Day</holidays>
</DateTime>`

func TestUnmarshal_NestedFlatten(t *testing.T) {
	s := xmlskema.MustSchemaOf[DateTime]()
	got, err := xmlskema.Unmarshal(context.Background(), s, []byte(dateTimeXML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := DateTime{
		Date: Date{
			Year: 2020, Month: 1, Day: 1,
			Extra:         Extra{Week: 1, Century: 21},
			OptionalExtra: &OptionalExtra{LunarDay: 1},
		},
		Time: "10:40:03",
		Kind: Holidays{"New Year's Day", "Novy God Day", "Polar Bear Swim Day"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshal_RootFlattenStruct(t *testing.T) {
	s := xmlskema.MustSchemaOf[Flat](xmlskema.Transparent())
	in := `<?xml version="1.0" encoding="utf-8"?>
<binary_data>binary</binary_data>
<string_data>string</string_data>`
	got, err := xmlskema.Unmarshal(context.Background(), s, []byte(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Flat{BinaryData: "binary", StringData: "string"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshal_RootFlattenEnum(t *testing.T) {
	s := xmlskema.MustSchemaOf[Content]()
	in := `<?xml version="1.0" encoding="utf-8"?>
<Binary>
  <binary_data>binary</binary_data>
</Binary>`
	got, err := xmlskema.Unmarshal(context.Background(), s, []byte(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Content(Binary{BinaryData: "binary"}), got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	// unknown root tags fall back to the default variant
	got, err = xmlskema.Unmarshal(context.Background(), s, []byte(`<Other/>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.(Unknown); !ok {
		t.Fatalf("expected Unknown, got %T", got)
	}
}

func TestDecode_ElementTree(t *testing.T) {
	s := xmlskema.MustSchemaOf[Date]()
	root := xmltree.Node("Date",
		xmltree.Leaf("century", "21"),
		xmltree.Leaf("day", "3"),
		xmltree.Leaf("week", "2"),
		xmltree.Leaf("month", "4"),
		xmltree.Leaf("year", "1999"),
	)
	got, err := xmlskema.Decode(context.Background(), s, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Date{Year: 1999, Month: 4, Day: 3, Extra: Extra{Week: 2, Century: 21}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if !xmlskema.Is(context.Background(), s, root) {
		t.Fatalf("Is should accept the tree")
	}
	if _, ok := xmlskema.SafeDecode(context.Background(), s, xmltree.Node("Date")); ok {
		t.Fatalf("SafeDecode should reject an empty date")
	}
}

func TestDecodeWithMeta_Presence(t *testing.T) {
	s := xmlskema.MustSchemaOf[DateTime]()
	doc := xmltree.Document(xmltree.Node("DateTime",
		xmltree.Leaf("year", "2020"), xmltree.Leaf("month", "1"), xmltree.Leaf("day", "1"),
		xmltree.Leaf("week", "1"), xmltree.Leaf("century", "21"), xmltree.Leaf("time", "t"),
	))
	dm, err := xmlskema.DecodeWithMeta(context.Background(), s, doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := dm.Value.Kind.(Working); !ok {
		t.Fatalf("expected default Working, got %T", dm.Value.Kind)
	}
	if dm.Value.Date.OptionalExtra != nil {
		t.Fatalf("optional_extra should be nil")
	}
	week := xmlskema.PathOf(func(d *DateTime) *int32 { return &d.Date.Extra.Week })
	if week.Pointer() != "/date/extra/week" || !dm.Presence.Seen(week.Pointer()) {
		t.Fatalf("week should be seen at %s: %v", week.Pointer(), dm.Presence)
	}
	opt := xmlskema.PathOf(func(d *DateTime) **OptionalExtra { return &d.Date.OptionalExtra })
	if !dm.Presence.IsNone(opt.Pointer()) {
		t.Fatalf("optional_extra should be none: %v", dm.Presence)
	}
	if !dm.Presence.DefaultApplied("/kind") || dm.Presence.Seen("/kind") {
		t.Fatalf("kind should be default-only: %v", dm.Presence)
	}
	if !dm.Presence.AnySeenDeep("/date") {
		t.Fatalf("date descendants were seen: %v", dm.Presence)
	}

	// Include filters paths by prefix
	dm, err = xmlskema.DecodeWithMeta(context.Background(), s, doc, xmlskema.ParseOpt{
		Presence: xmlskema.PresenceOpt{Collect: true, Include: []string{"/date/extra"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for k := range dm.Presence {
		if !strings.HasPrefix(k, "/date/extra") {
			t.Fatalf("unexpected presence key %s", k)
		}
	}
}

func TestPresenceFilter_SegmentBoundary(t *testing.T) {
	s := g.Untyped(g.Record("R").
		Field("date", g.String()).
		Field("datetime", g.String()).
		MustBuild())
	data := []byte(`<R><date>d</date><datetime>dt</datetime></R>`)
	decode := func(popt xmlskema.PresenceOpt) xmlskema.PresenceMap {
		t.Helper()
		dm, err := xmlskema.DecodeFromWithMeta(context.Background(), s, xmlskema.XMLBytes(data), xmlskema.ParseOpt{Presence: popt})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return dm.Presence
	}

	pm := decode(xmlskema.PresenceOpt{Collect: true, Include: []string{"/date"}})
	if !pm.Seen("/date") {
		t.Fatalf("/date should be kept: %v", pm)
	}
	if _, ok := pm["/datetime"]; ok {
		t.Fatalf("/datetime must not match the /date filter: %v", pm)
	}

	pm = decode(xmlskema.PresenceOpt{Collect: true, Exclude: []string{"/date"}})
	if _, ok := pm["/date"]; ok {
		t.Fatalf("/date should be excluded: %v", pm)
	}
	if !pm.Seen("/datetime") {
		t.Fatalf("/datetime should survive the /date exclusion: %v", pm)
	}
}

func TestFieldNameOf(t *testing.T) {
	if got := xmlskema.FieldNameOf(func(d *Date) *int32 { return &d.Year }); got != "year" {
		t.Fatalf("got %q", got)
	}
	if got := xmlskema.FieldNameOf(func(d *Date) *Extra { return &d.Extra }); got != "extra" {
		t.Fatalf("struct fields must not resolve to their first member, got %q", got)
	}
}

func TestIssues_ErrorSummary(t *testing.T) {
	iss := xmlskema.Issues{
		{Path: "/a", Code: xmlskema.CodeMissingField},
		{Path: "/b", Code: xmlskema.CodeUnknownKey},
		{Path: "/c", Code: xmlskema.CodeInvalidScalar},
		{Path: "/d", Code: xmlskema.CodeUnmatchedVariant},
	}
	want := "missing_field at /a; unknown_key at /b; invalid_scalar at /c; ... (total 4)"
	if s := iss.Error(); s != want {
		t.Fatalf("summary:\n got %s\nwant %s", s, want)
	}
}

func TestPathRef(t *testing.T) {
	p := xmlskema.RootPath().Field("date").Field("a/b").Index(2)
	if got := p.Pointer(); got != "/date/a~1b/2" {
		t.Fatalf("pointer: %s", got)
	}
	if got := xmlskema.ParsePath(p.Pointer()).Field("x").Pointer(); got != "/date/a~1b/2/x" {
		t.Fatalf("parsed pointer: %s", got)
	}
	if got := xmlskema.ParsePath("/").Pointer(); got != "/" {
		t.Fatalf("root pointer: %s", got)
	}
	it := xmlskema.ParsePath("/date/year").Issue(xmlskema.CodeMissingField, "required", "tag", "year")
	if it.Path != "/date/year" || it.Params["tag"] != "year" {
		t.Fatalf("issue: %+v", it)
	}
}

type Base struct {
	ID string `xml:"id"`
}

type Tagged struct {
	Base
	Label string `xmlskema:"label,rename=Label"`
	Skip  string `xml:"-"`
}

func TestSchemaOf_EmbeddedAndRename(t *testing.T) {
	s := xmlskema.MustSchemaOf[Tagged]()
	got, err := xmlskema.Unmarshal(context.Background(), s, []byte(`<Tagged><Label>x</Label><id>1</id><Skip>no</Skip></Tagged>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Tagged{Base: Base{ID: "1"}, Label: "x"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

type Signal interface{ isSignal() }

type Stop struct{}

type Proceed struct {
	Speed int32 `xml:"speed"`
}

func (*Stop) isSignal()    {}
func (*Proceed) isSignal() {}

type Light struct {
	Signal Signal `xmlskema:"signal,flatten"`
}

func TestSchemaOf_PointerVariants(t *testing.T) {
	s := xmlskema.MustSchemaOf[Light]()
	u := s.Node().(*schema.Record).Fields[0].Type.(*schema.Union)
	if !u.Variants[0].IsUnit() {
		t.Fatalf("Stop should be a unit variant, payload %#v", u.Variants[0].Payload)
	}
	if u.Variants[1].IsUnit() {
		t.Fatalf("Proceed should carry a payload")
	}

	ctx := context.Background()
	got, err := xmlskema.Unmarshal(ctx, s, []byte(`<Light><stop/></Light>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Light{Signal: &Stop{}}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	got, err = xmlskema.Unmarshal(ctx, s, []byte(`<Light><proceed><speed>3</speed></proceed></Light>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Light{Signal: &Proceed{Speed: 3}}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
