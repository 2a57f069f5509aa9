package tval

// ListOf stores items in T's slot. The list shares items' backing array.
func ListOf[T Scalar](items []T) ListValue {
	return converterFor[T]().toList(items)
}

// ToListValue is ListOf wrapped as a Value.
func ToListValue[T Scalar](items []T) Value {
	return ListOf(items)
}

// SliceFromList extracts the contents of T's slot.
//
// A non-empty slot is returned as is. An empty slot is accepted only when the
// whole list is empty: such a list cannot tell an empty []int64 from an empty
// []string (or from nothing at all), so it reads back as an empty slice of
// any type. An empty slot next to a non-empty one means the caller asked for
// the wrong element type, and the list is returned in the error.
func SliceFromList[T Scalar](l ListValue) ([]T, error) {
	c := converterFor[T]()
	if items, ok := fromSlot(l, c.listItems(l)); ok {
		return items, nil
	}
	return nil, mismatch("[]"+c.typeName(), Value(l))
}

// TryFromListValue is SliceFromList for a Value that must be a ListValue.
func TryFromListValue[T Scalar](v Value) ([]T, error) {
	if l, ok := v.(ListValue); ok {
		return SliceFromList[T](l)
	}
	return nil, mismatch("[]"+typeName[T](), v)
}

// ListOfValues stores nested typed values. Absent elements are preserved.
func ListOfValues(items []TypedValue) ListValue {
	return ListValue{Values: items}
}

// ValuesFromList extracts nested values, with the same empty-list rule as
// SliceFromList.
func ValuesFromList(l ListValue) ([]TypedValue, error) {
	if items, ok := fromSlot(l, l.Values); ok {
		return items, nil
	}
	return nil, mismatch("[]TypedValue", Value(l))
}

func fromSlot[T any](l ListValue, items []T) ([]T, bool) {
	if len(items) != 0 {
		return items, true
	}
	if l.IsEmpty() {
		return []T{}, true
	}
	return nil, false
}
