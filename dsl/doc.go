// Package dsl builds xmlskema schemas without Go struct tags.
//
// Overview
//   - Record(name): declare an ordered record; chain Field(name, node) with
//     Optional()/Sequence()/Flatten()/Rename(tag), then Build()/MustBuild().
//   - Union(name): declare a tagged union; chain Variant(name, payload),
//     Unit(name) or Repeated(name, payload) with Rename(tag)/Default().
//   - Primitives: String()/Bool()/Int32()/Float64()/Time()/Custom(...) etc.
//   - Bind[T](node): bind a built node to a Go type via xmlskema.BindValue.
//   - Untyped(node): keep the decoded value.Value as is.
//
// Builders are not safe for concurrent use; the nodes they produce are
// read-only after Build and may be shared freely.
//
// Example
//
//	extra := dsl.Record("Extra").
//		Field("week", dsl.Int32()).
//		Field("century", dsl.Int32()).
//		Node()
//	date := dsl.Record("Date").
//		Field("year", dsl.Int32()).
//		Field("extra", extra).Flatten().
//		MustBuild()
//	s := dsl.Untyped(date)
package dsl
