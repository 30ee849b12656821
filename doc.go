package xmlskema

// Package xmlskema provides:
//
// - Schema-driven decoding of XML element trees into typed values (records and tagged unions)
// - Flatten semantics: a nested record or union can claim its tags in the enclosing record's namespace
// - A stable error model via Issues (JSON Pointer, code, message)
// - Presence metadata through WithMeta APIs
// - A pluggable XML driver SPI (etree by default, encoding/xml via source/stdxml)
//
// Design policy:
// - Keep only public APIs in the root package; put the decoder under internal/engine.
// - Schemas live in schema/, fluent builders in dsl/, YAML schema files in schemafile/, the CLI under cmd/xmlskema.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  s := xmlskema.MustSchemaOf[DateTime]()
//  v, err := xmlskema.Unmarshal(ctx, s, data)
//  dm, err := xmlskema.DecodeFromWithMeta(ctx, s, xmlskema.XMLBytes(data))
//
//  node := dsl.Record("Msg").Field("id", dsl.String()).MustBuild()
//  vals, err := xmlskema.Unmarshal(ctx, dsl.Untyped(node), data)
//
