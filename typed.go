package tval

import "fmt"

// ToTypedValue wraps v in a present TypedValue.
func ToTypedValue[T Scalar](v T) TypedValue {
	return TypedValue{Value: ToValue(v)}
}

// TryFromTypedValue extracts a T. An absent value or a variant mismatch
// returns a *MismatchError[TypedValue] carrying tv.
func TryFromTypedValue[T Scalar](tv TypedValue) (T, error) {
	return FromTyped(tv, TryFromValue[T])
}

// FromTyped applies a value-level extractor to a TypedValue. Pass any
// extractor of this package, e.g. FromTyped(tv, TryFromListValue[string]).
// An absent value is a mismatch; on any mismatch the error carries tv.
func FromTyped[T any](tv TypedValue, extract func(Value) (T, error)) (T, error) {
	var zero T
	if tv.Value == nil {
		return zero, mismatch(wantOf[T](), tv)
	}
	v, err := extract(tv.Value)
	if err != nil {
		return zero, retype(err, tv)
	}
	return v, nil
}

// FromTypedOptional is FromTyped that treats an absent value as a successful
// "none" (ok=false, err=nil).
func FromTypedOptional[T any](tv TypedValue, extract func(Value) (T, error)) (v T, ok bool, err error) {
	if tv.Value == nil {
		return v, false, nil
	}
	v, err = FromTyped(tv, extract)
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

// TryFromTypedValueOptional is FromTypedOptional for scalars.
func TryFromTypedValueOptional[T Scalar](tv TypedValue) (T, bool, error) {
	return FromTypedOptional(tv, TryFromValue[T])
}

// retype lifts a value-level mismatch to the wrapper level. The payload
// becomes the value-level payload wrapped in a TypedValue.
func retype(err error, orig TypedValue) error {
	if me, ok := err.(*MismatchError[Value]); ok {
		return mismatch(me.Want, TypedValue{Value: me.Got})
	}
	return mismatch("value", orig)
}

// wantOf names T for the absent case without calling the extractor.
func wantOf[T any]() string {
	var zero T
	if name := fmt.Sprintf("%T", zero); name != "[]uint8" {
		return name
	}
	return "[]byte"
}
