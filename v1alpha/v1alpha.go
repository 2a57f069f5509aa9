// Package v1alpha exposes the tval model under the names of the v1alpha
// schema, where the wrapper is called Value, the union is called Variant, and
// lists and maps are "repeated" and "mapping" values.
//
// Everything here is an alias or a one-line forward to package tval; values
// pass freely between the two. Unlike tval.TryFromValueOrSingleton, v1alpha
// extraction is strict: a singleton list is not accepted in place of a
// scalar.
package v1alpha

import "github.com/andreyvit/tval"

type (
	Value         = tval.TypedValue
	Variant       = tval.Value
	RepeatedValue = tval.ListValue
	MappingValue  = tval.MapValue
	SetValue      = tval.SetValue
	RangeValue    = tval.RangeValue
	RangeBound    = tval.RangeBound

	Expr      = tval.Expr
	TypedExpr = tval.TypedExpr
	Call      = tval.Call
	AnyExpr   = tval.AnyExpr
	I64Expr   = tval.I64Expr
	F64Expr   = tval.F64Expr
	BlobExpr  = tval.BlobExpr
	TextExpr  = tval.TextExpr
	ListExpr  = tval.ListExpr
	MapExpr   = tval.MapExpr
	SetExpr   = tval.SetExpr
)

// Empty is the absent value, used as the "any" expression argument.
func Empty() Value {
	return tval.Absent()
}

func From[T tval.Scalar](v T) Value {
	return tval.ToTypedValue(v)
}

func FromVariant(v Variant) Value {
	return tval.Typed(v)
}

func TryFrom[T tval.Scalar](v Value) (T, error) {
	return tval.TryFromTypedValue[T](v)
}

func TryFromOptional[T tval.Scalar](v Value) (T, bool, error) {
	return tval.TryFromTypedValueOptional[T](v)
}

func Repeated[T tval.Scalar](items []T) RepeatedValue {
	return tval.ListOf(items)
}

func FromRepeated[T tval.Scalar](r RepeatedValue) ([]T, error) {
	return tval.SliceFromList[T](r)
}

func TryFromRepeated[T tval.Scalar](v Value) ([]T, error) {
	return tval.FromTyped(v, tval.TryFromListValue[T])
}

// SingleFromRepeated unwraps a one-element list.
func SingleFromRepeated[T tval.Scalar](r RepeatedValue) (T, error) {
	return tval.ScalarFromList[T](r)
}

// OptionalFromRepeated treats an empty list as "none" and a one-element list
// as "some".
func OptionalFromRepeated[T tval.Scalar](r RepeatedValue) (T, bool, error) {
	return tval.OptionalScalarFromList[T](r)
}

func Mapping[K tval.Key, V tval.Scalar](m map[K]V) MappingValue {
	return tval.MapOf(m)
}

func FromMapping[K tval.Key, V tval.Scalar](m MappingValue) (map[K]V, error) {
	return tval.MapFromMapValue[K, V](m)
}

func TryFromMapping[K tval.Key, V tval.Scalar](v Value) (map[K]V, error) {
	return tval.FromTyped(v, tval.TryFromMapValue[K, V])
}

func Set[T tval.Key](set map[T]struct{}) SetValue {
	return tval.SetOf(set)
}

func FromSet[T tval.Key](s SetValue) (map[T]struct{}, error) {
	return tval.SetFromSetValue[T](s)
}

func TryFromSet[T tval.Key](v Value) (map[T]struct{}, error) {
	return tval.FromTyped(v, tval.TryFromSetValue[T])
}

func Range[T tval.BoundScalar](start, end tval.Bound[T]) RangeValue {
	return tval.RangeOf(start, end)
}

func FromRange[T tval.BoundScalar](r RangeValue) (start, end tval.Bound[T], err error) {
	return tval.BoundsFromRange[T](r)
}

func TryFromRange[T tval.BoundScalar](v Value) (tval.Bounds[T], error) {
	return tval.FromTyped(v, tval.TryRangeFromValue[T])
}

func ToTypedExpr(e Expr) TypedExpr {
	return tval.ToTypedExpr(e)
}
