package tval

// ToValue wraps v in the matching variant. Booleans become Int64Value 0 or 1.
func ToValue[T Scalar](v T) Value {
	return converterFor[T]().toValue(v)
}

// TryFromValue extracts a T from the variant holding it. On mismatch it
// returns a *MismatchError[Value] carrying v.
func TryFromValue[T Scalar](v Value) (T, error) {
	c := converterFor[T]()
	if x, ok := c.fromValue(v); ok {
		return x, nil
	}
	var zero T
	return zero, mismatch(c.typeName(), v)
}

// TryFromValueOrSingleton is TryFromValue that also accepts a list whose T
// slot holds exactly one element. An exact scalar match is tried first.
func TryFromValueOrSingleton[T Scalar](v Value) (T, error) {
	c := converterFor[T]()
	if x, ok := c.fromValue(v); ok {
		return x, nil
	}
	if l, ok := v.(ListValue); ok {
		if items := c.listItems(l); len(items) == 1 {
			return items[0], nil
		}
	}
	var zero T
	return zero, mismatch(c.typeName(), v)
}

// ScalarOfList wraps v in a single-element list.
func ScalarOfList[T Scalar](v T) ListValue {
	return converterFor[T]().toList([]T{v})
}

// ScalarFromList unwraps a list whose T slot holds exactly one element.
func ScalarFromList[T Scalar](l ListValue) (T, error) {
	c := converterFor[T]()
	if items := c.listItems(l); len(items) == 1 {
		return items[0], nil
	}
	var zero T
	return zero, mismatch(c.typeName(), Value(l))
}

// OptionalScalarFromList treats an entirely empty list as absent (ok=false)
// and a single-element list as present. Anything else is a mismatch.
func OptionalScalarFromList[T Scalar](l ListValue) (v T, ok bool, err error) {
	c := converterFor[T]()
	items := c.listItems(l)
	switch {
	case len(items) == 0 && l.IsEmpty():
		return v, false, nil
	case len(items) == 1:
		return items[0], true, nil
	default:
		return v, false, mismatch(c.typeName(), Value(l))
	}
}
