// Package structure contains type-related operations, such as iterating over a
// value of type any and converting numbers.
package structure

import (
	"errors"
	"iter"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/google/uuid"
)

// TagName is the struct tag used to rename or omit fields.
const TagName = "godm"

var (
	// ErrNilObj may be returned by [Seq] or [Seq2] when a nil value is
	// passed as argument.
	ErrNilObj = errors.New("nil object")
)

var timeType = reflect.TypeOf(time.Time{})

// ErrorNonObject is returned by [Seq2] when a value that is neither a struct
// nor a map with string keys is passed as argument.
type ErrorNonObject struct {
	Type reflect.Type
}

func (e ErrorNonObject) Error() string {
	if e.Type == nil {
		return "expected object, got nil"
	}
	return "expected object, got " + e.Type.String()
}

// ErrorNonList is returned by [Seq] when a value that is neither a slice
// nor a array is passed as argument.
type ErrorNonList struct {
	Type reflect.Type
}

func (e ErrorNonList) Error() string {
	if e.Type == nil {
		return "expected list, got nil"
	}
	return "expected list, got " + e.Type.String()
}

// Seq2 returns an iterator over the passed type. This method works for maps
// with string keys and structs.
func Seq2(obj any) (iter.Seq2[string, any], int, error) {
	if obj == nil {
		return nil, 0, ErrNilObj
	}
	if i, length, err := fastPathStruct(obj); err != nil || i != nil {
		return i, length, err
	}
	return iterReflect(obj)
}

// IsMap reports whether obj is a map with string keys. Structs are not
// considered maps.
func IsMap(obj any) bool {
	switch obj.(type) {
	case nil:
		return false
	case map[string]any, map[string]string:
		return true
	}
	v := reflect.ValueNoEscapeOf(obj)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	return v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String
}

// IsList reports whether obj is a slice or an array. Byte slices are not
// considered lists.
func IsList(obj any) bool {
	switch obj.(type) {
	case nil, []byte, uuid.UUID:
		return false
	case []any, []string:
		return true
	}
	k := reflect.ValueNoEscapeOf(obj).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func fastPathStruct(obj any) (iter.Seq2[string, any], int, error) {
	if err := checkPrimitive(obj); err != nil {
		return nil, 0, err
	}
	return checkMaps(obj)
}

func checkPrimitive(obj any) error {
	switch obj.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		time.Time, *regexp.Regexp, []byte, uuid.UUID:
		return ErrorNonObject{Type: reflect.TypeOf(obj)}
	default:
		return nil
	}
}

func checkMaps(obj any) (iter.Seq2[string, any], int, error) {
	switch t := obj.(type) {
	case map[string]any:
		return iterMap(t), len(t), nil
	case map[string]string:
		return iterMap(t), len(t), nil
	case map[string]bool:
		return iterMap(t), len(t), nil
	case map[string]int:
		return iterMap(t), len(t), nil
	case map[string]int64:
		return iterMap(t), len(t), nil
	case map[string]float64:
		return iterMap(t), len(t), nil
	case map[string]time.Time:
		return iterMap(t), len(t), nil
	}
	return nil, 0, nil
}

func iterReflect(obj any) (iter.Seq2[string, any], int, error) {
	v := reflect.ValueNoEscapeOf(obj)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, 0, ErrNilObj
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String {
			i, l := iterReflectMap(v)
			return i, l, nil
		}
	case reflect.Struct:
		if v.Type() == timeType {
			break
		}
		i, l := iterReflectStruct(v)
		return i, l, nil
	}
	return nil, 0, ErrorNonObject{Type: v.Type()}
}

func iterReflectMap(v reflect.Value) (iter.Seq2[string, any], int) {
	return func(yield func(string, any) bool) {
		for _, k := range v.MapKeys() {
			if !yield(k.String(), v.MapIndex(k).Interface()) {
				return
			}
		}
	}, v.Len()
}

func iterReflectStruct(v reflect.Value) (iter.Seq2[string, any], int) {
	fields := make([]struct {
		Key   string
		Value any
	}, 0, v.NumField())
	for k, v := range listStructFields(v) {
		fields = append(fields, struct {
			Key   string
			Value any
		}{Key: k, Value: v})
	}
	return func(yield func(string, any) bool) {
		for _, field := range fields {
			if !yield(field.Key, field.Value) {
				return
			}
		}
	}, len(fields)
}

func listStructFields(v reflect.Value) iter.Seq2[string, any] {
	var tag string
	var ok bool
	var field reflect.StructField
	var omitEmpty bool
	var omitZero bool
	return func(yield func(string, any) bool) {
		typ := v.Type()
		for n := range typ.NumField() {
			omitEmpty, omitZero = false, false
			field = typ.Field(n)

			if field.PkgPath != "" {
				continue
			}

			if tag, ok = field.Tag.Lookup(TagName); ok {
				if tag == "-" {
					continue
				}
				found := strings.IndexRune(tag, ',')
				if found >= 0 {
					for sub := range strings.SplitSeq(tag[found:], ",") {
						switch sub {
						case "omitempty":
							omitEmpty = true
						case "omitzero":
							omitZero = true
						}
					}
					if tag = tag[:found]; tag == "" {
						tag = field.Name
					}
				}

			} else {
				tag = field.Name
			}
			switch {
			case omitZero:
				if v.Field(n).IsZero() {
					continue
				}
			case omitEmpty:
				switch field.Type.Kind() {
				case reflect.Chan, reflect.Func, reflect.Map,
					reflect.Ptr, reflect.UnsafePointer,
					reflect.Interface, reflect.Slice:
					if v.Field(n).IsNil() {
						continue
					}
				}
			}
			if !yield(tag, v.Field(n).Interface()) {
				return
			}
		}
	}
}

func iterMap[T any](m map[string]T) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for k, v := range m {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Seq returns an iterator over a slice or array of any type.
func Seq(obj any) (iter.Seq[any], int, error) {
	if obj == nil {
		return nil, 0, ErrNilObj
	}
	if i, length, err := fastPathList(obj); err != nil || i != nil {
		return i, length, err
	}
	v := reflect.ValueNoEscapeOf(obj)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(any) bool) {
			for n := range v.Len() {
				if !yield(v.Index(n).Interface()) {
					return
				}
			}
		}, v.Len(), nil
	}
	return nil, 0, ErrorNonList{Type: v.Type()}
}

func fastPathList(obj any) (iter.Seq[any], int, error) {
	switch obj.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		time.Time, *regexp.Regexp, []byte, uuid.UUID:
		return nil, 0, ErrorNonList{Type: reflect.TypeOf(obj)}
	}
	return checkLists(obj)
}

func checkLists(obj any) (iter.Seq[any], int, error) {
	switch t := obj.(type) {
	case []any:
		return iterSlice(t), len(t), nil
	case []string:
		return iterSlice(t), len(t), nil
	case []bool:
		return iterSlice(t), len(t), nil
	case []int:
		return iterSlice(t), len(t), nil
	case []int64:
		return iterSlice(t), len(t), nil
	case []float64:
		return iterSlice(t), len(t), nil
	case []time.Time:
		return iterSlice(t), len(t), nil
	case []uuid.UUID:
		return iterSlice(t), len(t), nil
	case []map[string]any:
		return iterSlice(t), len(t), nil
	}
	return nil, 0, nil
}

func iterSlice[T any](m []T) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range m {
			if !yield(v) {
				return
			}
		}
	}
}

// ToSlice collects any slice or array into a []any. ok is false if obj is not a
// list.
func ToSlice(obj any) ([]any, bool) {
	if s, ok := obj.([]any); ok {
		return s, true
	}
	seq, l, err := Seq(obj)
	if err != nil {
		return nil, false
	}
	res := make([]any, 0, l)
	for v := range seq {
		res = append(res, v)
	}
	return res, true
}

// ToMap collects a map with string keys into a map[string]any. Structs are
// rejected. ok is false if obj is not a map.
func ToMap(obj any) (map[string]any, bool) {
	if m, ok := obj.(map[string]any); ok {
		return m, true
	}
	if !IsMap(obj) {
		return nil, false
	}
	seq, l, err := Seq2(obj)
	if err != nil {
		return nil, false
	}
	res := make(map[string]any, l)
	for k, v := range seq {
		res[k] = v
	}
	return res, true
}

// AsInteger converts any built-in number to int and returns a flag that informs
// if the argument is a valid integer.
func AsInteger(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int8:
		return int(t), true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint:
		return int(t), true
	case uint8:
		return int(t), true
	case uint16:
		return int(t), true
	case uint32:
		return int(t), true
	case uint64:
		return int(t), true
	case float32:
		if trunc := math.Trunc(float64(t)); trunc == float64(t) {
			return int(trunc), true
		}
		return 0, false
	case float64:
		if trunc := math.Trunc(t); trunc == t {
			return int(trunc), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsFloat converts any built-in number to float64.
func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	}
	if i, ok := AsInteger(v); ok {
		return float64(i), true
	}
	return 0, false
}

// Contains checks if the given value is present in the slice.
func Contains[T any, S ~[]T](s S, t T, fn func(a T, b T) (bool, error)) (bool, error) {
	var ok bool
	var err error
	for _, i := range s {
		if ok, err = fn(i, t); err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}
