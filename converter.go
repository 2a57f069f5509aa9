package tval

import (
	"bytes"
	"cmp"
)

type (
	// Scalar lists the native types that convert to a single variant and to
	// a typed list slot.
	Scalar interface {
		bool | int64 | float64 | string | []byte
	}

	// Key is the subset of Scalar usable as a Go map key or hash set element.
	Key interface {
		bool | int64 | float64 | string
	}

	// BoundScalar is the subset of Scalar that can bound a range.
	BoundScalar interface {
		int64 | float64 | string | []byte
	}
)

// converter is the per-type capability every generic conversion is written
// against. Each native type has exactly one implementation.
type converter[T any] interface {
	typeName() string
	toValue(v T) Value
	fromValue(v Value) (T, bool)
	toList(items []T) ListValue
	// listItems returns the contents of T's slot, which may be empty.
	listItems(l ListValue) []T
	compare(a, b T) int
}

func converterFor[T Scalar]() converter[T] {
	var zero T
	var c any
	switch any(zero).(type) {
	case bool:
		c = boolConverter{}
	case int64:
		c = int64Converter{}
	case float64:
		c = float64Converter{}
	case string:
		c = textConverter{}
	case []byte:
		c = blobConverter{}
	}
	return c.(converter[T])
}

func typeName[T Scalar]() string {
	return converterFor[T]().typeName()
}

type int64Converter struct{}

func (int64Converter) typeName() string       { return "int64" }
func (int64Converter) toValue(v int64) Value  { return Int64Value(v) }
func (int64Converter) compare(a, b int64) int { return cmp.Compare(a, b) }
func (int64Converter) toList(items []int64) ListValue {
	return ListValue{Int64Values: items}
}
func (int64Converter) listItems(l ListValue) []int64 { return l.Int64Values }
func (int64Converter) fromValue(v Value) (int64, bool) {
	if x, ok := v.(Int64Value); ok {
		return int64(x), true
	}
	return 0, false
}

// boolConverter stores booleans in the int64 slot; any nonzero integer reads
// back as true.
type boolConverter struct{}

func (boolConverter) typeName() string { return "bool" }
func (boolConverter) toValue(v bool) Value {
	return Int64Value(boolToInt(v))
}
func (boolConverter) compare(a, b bool) int {
	return cmp.Compare(boolToInt(a), boolToInt(b))
}
func (boolConverter) toList(items []bool) ListValue {
	ints := make([]int64, len(items))
	for i, v := range items {
		ints[i] = boolToInt(v)
	}
	return ListValue{Int64Values: ints}
}
func (boolConverter) listItems(l ListValue) []bool {
	if len(l.Int64Values) == 0 {
		return nil
	}
	items := make([]bool, len(l.Int64Values))
	for i, v := range l.Int64Values {
		items[i] = v != 0
	}
	return items
}
func (boolConverter) fromValue(v Value) (bool, bool) {
	if x, ok := v.(Int64Value); ok {
		return x != 0, true
	}
	return false, false
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

type float64Converter struct{}

func (float64Converter) typeName() string         { return "float64" }
func (float64Converter) toValue(v float64) Value  { return Float64Value(v) }
func (float64Converter) compare(a, b float64) int { return cmp.Compare(a, b) }
func (float64Converter) toList(items []float64) ListValue {
	return ListValue{Float64Values: items}
}
func (float64Converter) listItems(l ListValue) []float64 { return l.Float64Values }
func (float64Converter) fromValue(v Value) (float64, bool) {
	if x, ok := v.(Float64Value); ok {
		return float64(x), true
	}
	return 0, false
}

type textConverter struct{}

func (textConverter) typeName() string        { return "string" }
func (textConverter) toValue(v string) Value  { return TextValue(v) }
func (textConverter) compare(a, b string) int { return cmp.Compare(a, b) }
func (textConverter) toList(items []string) ListValue {
	return ListValue{TextValues: items}
}
func (textConverter) listItems(l ListValue) []string { return l.TextValues }
func (textConverter) fromValue(v Value) (string, bool) {
	if x, ok := v.(TextValue); ok {
		return string(x), true
	}
	return "", false
}

type blobConverter struct{}

func (blobConverter) typeName() string        { return "[]byte" }
func (blobConverter) toValue(v []byte) Value  { return BlobValue(v) }
func (blobConverter) compare(a, b []byte) int { return bytes.Compare(a, b) }
func (blobConverter) toList(items [][]byte) ListValue {
	return ListValue{BlobValues: items}
}
func (blobConverter) listItems(l ListValue) [][]byte { return l.BlobValues }
func (blobConverter) fromValue(v Value) ([]byte, bool) {
	if x, ok := v.(BlobValue); ok {
		return []byte(x), true
	}
	return nil, false
}
