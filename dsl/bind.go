package dsl

import (
	xmlskema "github.com/reoring/xmlskema"
	"github.com/reoring/xmlskema/schema"
	"github.com/reoring/xmlskema/value"
)

// Bind compiles n and binds decoded values to T (free function for Go version
// compatibility). Records bind to structs by field name, see
// xmlskema.ResolveStructKey.
func Bind[T any](n schema.Node) (xmlskema.Schema[T], error) {
	return xmlskema.SchemaFor[T](n)
}

// MustBind is like Bind but panics on error.
func MustBind[T any](n schema.Node) xmlskema.Schema[T] {
	s, err := Bind[T](n)
	if err != nil {
		panic(err)
	}
	return s
}

// Untyped wraps n in a schema producing value.Value trees. It panics when n
// does not compile; nodes returned by MustBuild always do.
func Untyped(n schema.Node) xmlskema.Schema[value.Value] {
	s, err := xmlskema.Untyped(n)
	if err != nil {
		panic(err)
	}
	return s
}
