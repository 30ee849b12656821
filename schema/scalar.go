package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScalarKind selects the primitive parser of a Scalar.
type ScalarKind int

const (
	KindString ScalarKind = iota
	KindInt
	KindUint
	KindFloat
	KindBool
	KindTime
	KindCustom
)

// Scalar parses the leaf text of an element.
//
// Parsed values are string, int64, uint64, float64, bool, time.Time, or
// whatever a custom parser returns.
type Scalar struct {
	Kind ScalarKind
	// Bits bounds KindInt/KindUint/KindFloat values (0 means 64).
	Bits int
	// Name labels KindCustom scalars in diagnostics.
	Name string
	// ParseFunc parses KindCustom scalars.
	ParseFunc func(text string) (any, error)
}

func (*Scalar) node() {}

func (s *Scalar) Describe() string { return s.Expected() }

// String returns a string scalar. Text is kept verbatim.
func String() *Scalar { return &Scalar{Kind: KindString} }

// Int returns a signed integer scalar bounded to bits.
func Int(bits int) *Scalar { return &Scalar{Kind: KindInt, Bits: bits} }

// Uint returns an unsigned integer scalar bounded to bits.
func Uint(bits int) *Scalar { return &Scalar{Kind: KindUint, Bits: bits} }

// Float returns a floating point scalar of the given precision.
func Float(bits int) *Scalar { return &Scalar{Kind: KindFloat, Bits: bits} }

// Bool returns a boolean scalar accepting true/false/1/0.
func Bool() *Scalar { return &Scalar{Kind: KindBool} }

// Time returns an RFC 3339 timestamp scalar.
func Time() *Scalar { return &Scalar{Kind: KindTime} }

// Custom returns a scalar backed by fn.
func Custom(name string, fn func(string) (any, error)) *Scalar {
	return &Scalar{Kind: KindCustom, Name: name, ParseFunc: fn}
}

func (s *Scalar) bits() int {
	if s.Bits <= 0 {
		return 64
	}
	return s.Bits
}

// Expected names the primitive kind, e.g. "int32", for error reports.
func (s *Scalar) Expected() string {
	switch s.Kind {
	case KindString:
		return "string"
	case KindInt:
		return "int" + strconv.Itoa(s.bits())
	case KindUint:
		return "uint" + strconv.Itoa(s.bits())
	case KindFloat:
		return "float" + strconv.Itoa(s.bits())
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindCustom:
		if s.Name != "" {
			return s.Name
		}
		return "custom"
	default:
		return fmt.Sprintf("scalar(%d)", int(s.Kind))
	}
}

// Parse converts leaf text with the scalar's primitive parser. Non-string
// kinds ignore surrounding whitespace.
func (s *Scalar) Parse(text string) (any, error) {
	switch s.Kind {
	case KindString:
		return text, nil
	case KindInt:
		return strconv.ParseInt(strings.TrimSpace(text), 10, s.bits())
	case KindUint:
		return strconv.ParseUint(strings.TrimSpace(text), 10, s.bits())
	case KindFloat:
		return strconv.ParseFloat(strings.TrimSpace(text), s.bits())
	case KindBool:
		return strconv.ParseBool(strings.TrimSpace(text))
	case KindTime:
		return parseRFC3339(strings.TrimSpace(text))
	case KindCustom:
		if s.ParseFunc == nil {
			return text, nil
		}
		return s.ParseFunc(text)
	default:
		return nil, fmt.Errorf("unsupported scalar kind %d", int(s.Kind))
	}
}

func parseRFC3339(s string) (time.Time, error) {
	// RFC3339Nano accepts an absent fractional part as well.
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}
