package coder

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
)

var (
	integerPrefix = regexp.MustCompile(`^\s*[+-]?\d+`)
	floatPrefix   = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	// zeroLike is the string form a value must have to be accepted as an
	// integer zero.
	zeroLike = regexp.MustCompile(`^(0x|0b)?0+`)
)

// Text converts values to strings.
type Text struct{}

// TypeName implements [domain.TypeNamer].
func (Text) TypeName() string { return TagString }

// ToWire implements [domain.Coder].
func (Text) ToWire(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// FromWire implements [domain.Coder].
func (t Text) FromWire(v any) any { return t.ToWire(v) }

// Integer converts values to int64. Strings are parsed up to the first
// character that is not part of an integer. A value whose parse is zero is only
// accepted if its string form starts with zeros, otherwise it becomes nil.
type Integer struct{}

// TypeName implements [domain.TypeNamer].
func (Integer) TypeName() string { return TagInteger }

// Number implements [domain.NumberCoder].
func (Integer) Number() bool { return true }

// ToWire implements [domain.Coder].
func (Integer) ToWire(v any) any {
	switch t := v.(type) {
	case nil, bool:
		return nil
	case int64:
		return t
	case string:
		return parseInteger(t)
	case float32:
		return truncateFloat(float64(t))
	case float64:
		return truncateFloat(t)
	}
	if n, ok := asInt64(v); ok {
		return n
	}
	return nil
}

// FromWire implements [domain.Coder].
func (i Integer) FromWire(v any) any { return i.ToWire(v) }

func parseInteger(s string) any {
	if prefix := integerPrefix.FindString(s); prefix != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(prefix), 10, 64)
		if err != nil {
			return nil
		}
		if n != 0 {
			return n
		}
	}
	return zeroOrNil(s)
}

func truncateFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	trunc := math.Trunc(f)
	if trunc < math.MinInt64 || trunc >= math.MaxInt64 {
		return nil
	}
	if trunc == 0 && f != 0 {
		return zeroOrNil(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return int64(trunc)
}

func zeroOrNil(s string) any {
	if zeroLike.MatchString(s) {
		return int64(0)
	}
	return nil
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), uint64(t) <= math.MaxInt64
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), t <= math.MaxInt64
	}
	return 0, false
}

// Float converts values to float64. Strings are parsed up to the first
// character that is not part of a float, and become nil when they have no
// numeric prefix.
type Float struct{}

// TypeName implements [domain.TypeNamer].
func (Float) TypeName() string { return TagFloat }

// Number implements [domain.NumberCoder].
func (Float) Number() bool { return true }

// ToWire implements [domain.Coder].
func (Float) ToWire(v any) any {
	switch t := v.(type) {
	case nil, bool:
		return nil
	case float64:
		if math.IsNaN(t) {
			return nil
		}
		return t
	case string:
		prefix := floatPrefix.FindString(t)
		if prefix == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(prefix), 64)
		if err != nil {
			return nil
		}
		return f
	}
	f, ok := structure.AsFloat(v)
	if !ok {
		var err error
		f, err = cast.ToFloat64E(v)
		ok = err == nil
	}
	if !ok || math.IsNaN(f) {
		return nil
	}
	return f
}

// FromWire implements [domain.Coder].
func (Float) FromWire(v any) any { return v }

// Boolean converts a fixed set of tokens to bool. Reading is total: nil and
// false are false, everything else is true.
type Boolean struct{}

// TypeName implements [domain.TypeNamer].
func (Boolean) TypeName() string { return TagBoolean }

// ToWire implements [domain.Coder].
func (Boolean) ToWire(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		return t
	case string:
		switch strings.ToLower(t) {
		case "true", "t", "1":
			return true
		case "false", "f", "0":
			return false
		}
		return nil
	}
	if f, ok := structure.AsFloat(v); ok {
		switch f {
		case 1:
			return true
		case 0:
			return false
		}
	}
	return nil
}

// FromWire implements [domain.Coder].
func (Boolean) FromWire(v any) any {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	default:
		return true
	}
}
