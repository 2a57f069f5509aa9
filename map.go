package tval

// Entry is one key/value pair of an ordered mapping. Entries allow blob keys,
// which Go maps cannot hold.
type Entry[K, V Scalar] struct {
	Key   K
	Value V
}

// MapPair builds a map from two lists without checking that they line up.
func MapPair(keys, values ListValue) MapValue {
	return MapValue{Keys: &keys, Values: &values}
}

// MapOf converts m in a single pass, so the i-th key always corresponds to the
// i-th value. Key order follows Go's map iteration order.
func MapOf[K Key, V Scalar](m map[K]V) MapValue {
	keys := make([]K, 0, len(m))
	values := make([]V, 0, len(m))
	for k, v := range m {
		keys = append(keys, k)
		values = append(values, v)
	}
	return MapPair(ListOf(keys), ListOf(values))
}

// MapOfEntries converts an ordered mapping, preserving entry order.
func MapOfEntries[K, V Scalar](entries []Entry[K, V]) MapValue {
	keys := make([]K, len(entries))
	values := make([]V, len(entries))
	for i, e := range entries {
		keys[i], values[i] = e.Key, e.Value
	}
	return MapPair(ListOf(keys), ListOf(values))
}

// EntriesFromMapValue decodes both lists and zips them. It fails when either
// list is missing, either list holds the wrong element type, or the lengths
// differ; the error carries m unchanged.
func EntriesFromMapValue[K, V Scalar](m MapValue) ([]Entry[K, V], error) {
	keys, values, err := decodeMapLists[K, V](m)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry[K, V], len(keys))
	for i := range keys {
		entries[i] = Entry[K, V]{keys[i], values[i]}
	}
	return entries, nil
}

// MapFromMapValue is EntriesFromMapValue collected into a Go map. When a key
// repeats, the last value wins.
func MapFromMapValue[K Key, V Scalar](m MapValue) (map[K]V, error) {
	keys, values, err := decodeMapLists[K, V](m)
	if err != nil {
		return nil, err
	}
	result := make(map[K]V, len(keys))
	for i, k := range keys {
		result[k] = values[i]
	}
	return result, nil
}

// TryFromMapValue is MapFromMapValue for a Value that must be a MapValue.
func TryFromMapValue[K Key, V Scalar](v Value) (map[K]V, error) {
	if m, ok := v.(MapValue); ok {
		return MapFromMapValue[K, V](m)
	}
	return nil, mismatch(mapTypeName[K, V](), v)
}

// TryEntriesFromValue is EntriesFromMapValue for a Value that must be a
// MapValue.
func TryEntriesFromValue[K, V Scalar](v Value) ([]Entry[K, V], error) {
	if m, ok := v.(MapValue); ok {
		return EntriesFromMapValue[K, V](m)
	}
	return nil, mismatch(mapTypeName[K, V](), v)
}

func decodeMapLists[K, V Scalar](m MapValue) ([]K, []V, error) {
	want := mapTypeName[K, V]()
	if m.Keys == nil || m.Values == nil {
		return nil, nil, mismatch(want, Value(m))
	}

	keys, kerr := SliceFromList[K](*m.Keys)
	values, verr := SliceFromList[V](*m.Values)
	if kerr == nil && verr == nil && len(keys) == len(values) {
		return keys, values, nil
	}
	// Decoding is lossy for bool, so the payload is always m as received.
	return nil, nil, mismatch(want, Value(m))
}

func mapTypeName[K, V Scalar]() string {
	return "map[" + typeName[K]() + "]" + typeName[V]()
}
