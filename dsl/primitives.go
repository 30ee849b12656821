package dsl

import (
	"github.com/reoring/xmlskema/schema"
)

// String returns a scalar keeping the element text verbatim.
func String() *schema.Scalar { return schema.String() }

// Bool returns a scalar accepting true/false/1/0.
func Bool() *schema.Scalar { return schema.Bool() }

func Int() *schema.Scalar   { return schema.Int(64) }
func Int8() *schema.Scalar  { return schema.Int(8) }
func Int16() *schema.Scalar { return schema.Int(16) }
func Int32() *schema.Scalar { return schema.Int(32) }
func Int64() *schema.Scalar { return schema.Int(64) }

func Uint() *schema.Scalar   { return schema.Uint(64) }
func Uint8() *schema.Scalar  { return schema.Uint(8) }
func Uint16() *schema.Scalar { return schema.Uint(16) }
func Uint32() *schema.Scalar { return schema.Uint(32) }
func Uint64() *schema.Scalar { return schema.Uint(64) }

func Float32() *schema.Scalar { return schema.Float(32) }
func Float64() *schema.Scalar { return schema.Float(64) }

// Time returns an RFC 3339 timestamp scalar.
func Time() *schema.Scalar { return schema.Time() }

// Custom returns a scalar parsed by fn; name appears in error messages.
func Custom(name string, fn func(text string) (any, error)) *schema.Scalar {
	return schema.Custom(name, fn)
}
