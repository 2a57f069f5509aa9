package tval

import "slices"

// SetOfList wraps a list as a set as is, without deduplication.
func SetOfList(l ListValue) SetValue {
	return SetValue{Keys: &l}
}

// SetOf converts a hash set. Element order is unspecified.
func SetOf[T Key](set map[T]struct{}) SetValue {
	items := make([]T, 0, len(set))
	for v := range set {
		items = append(items, v)
	}
	return SetOfList(ListOf(items))
}

// SortedSetOf converts an ordered set: items are copied, sorted and
// deduplicated.
func SortedSetOf[T Scalar](items []T) SetValue {
	return SetOfList(ListOf(sortedUnique(items)))
}

// SetFromList rebuilds a hash set from a list, dropping duplicates.
func SetFromList[T Key](l ListValue) (map[T]struct{}, error) {
	items, err := SliceFromList[T](l)
	if err != nil {
		return nil, err
	}
	set := make(map[T]struct{}, len(items))
	for _, v := range items {
		set[v] = struct{}{}
	}
	return set, nil
}

// SortedSetFromList rebuilds an ordered set from a list.
func SortedSetFromList[T Scalar](l ListValue) ([]T, error) {
	items, err := SliceFromList[T](l)
	if err != nil {
		return nil, err
	}
	return sortedUnique(items), nil
}

// SetFromSetValue rebuilds a hash set. A set without a key list, or with keys
// of another type, is a mismatch carrying the set.
func SetFromSetValue[T Key](s SetValue) (map[T]struct{}, error) {
	if s.Keys == nil {
		return nil, mismatch(setTypeName[T](), Value(s))
	}
	set, err := SetFromList[T](*s.Keys)
	if err != nil {
		return nil, mismatch(setTypeName[T](), Value(s))
	}
	return set, nil
}

// SortedSetFromSetValue rebuilds an ordered set.
func SortedSetFromSetValue[T Scalar](s SetValue) ([]T, error) {
	if s.Keys == nil {
		return nil, mismatch(sortedSetTypeName[T](), Value(s))
	}
	items, err := SortedSetFromList[T](*s.Keys)
	if err != nil {
		return nil, mismatch(sortedSetTypeName[T](), Value(s))
	}
	return items, nil
}

// TryFromSetValue is SetFromSetValue for a Value that must be a SetValue.
func TryFromSetValue[T Key](v Value) (map[T]struct{}, error) {
	if s, ok := v.(SetValue); ok {
		return SetFromSetValue[T](s)
	}
	return nil, mismatch(setTypeName[T](), v)
}

// TrySortedSetFromValue is SortedSetFromSetValue for a Value that must be a
// SetValue.
func TrySortedSetFromValue[T Scalar](v Value) ([]T, error) {
	if s, ok := v.(SetValue); ok {
		return SortedSetFromSetValue[T](s)
	}
	return nil, mismatch(sortedSetTypeName[T](), v)
}

// SetOfValues builds a set of nested values, dropping structural duplicates.
// First occurrences win and keep their order.
func SetOfValues(items []TypedValue) SetValue {
	seen := make(map[uint64][]int, len(items))
	unique := make([]TypedValue, 0, len(items))
outer:
	for _, tv := range items {
		fp := Fingerprint(tv)
		for _, i := range seen[fp] {
			if unique[i].Equal(tv) {
				continue outer
			}
		}
		seen[fp] = append(seen[fp], len(unique))
		unique = append(unique, tv)
	}
	return SetOfList(ListOfValues(unique))
}

func sortedUnique[T Scalar](items []T) []T {
	c := converterFor[T]()
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, c.compare)
	return slices.CompactFunc(sorted, func(a, b T) bool {
		return c.compare(a, b) == 0
	})
}

func setTypeName[T Scalar]() string {
	return "set[" + typeName[T]() + "]"
}

func sortedSetTypeName[T Scalar]() string {
	return "sorted set[" + typeName[T]() + "]"
}
