package tval

// Value is one variant of the closed value union: Int64Value, Float64Value,
// BlobValue, TextValue, ListValue, MapValue, SetValue or RangeValue.
//
// A nil Value means "no value" and only appears inside TypedValue and the
// optional fields of container variants.
type Value interface {
	Kind() Kind
	String() string
	isValue()
}

// BoundValue is the payload of a range bound. Only scalar variants can bound
// a range.
type BoundValue interface {
	Value
	isBoundValue()
}

type (
	// Int64Value also carries booleans as 0 and 1.
	Int64Value   int64
	Float64Value float64
	BlobValue    []byte
	TextValue    string
)

func (Int64Value) Kind() Kind   { return KindInt64 }
func (Float64Value) Kind() Kind { return KindFloat64 }
func (BlobValue) Kind() Kind    { return KindBlob }
func (TextValue) Kind() Kind    { return KindText }
func (ListValue) Kind() Kind    { return KindList }
func (MapValue) Kind() Kind     { return KindMap }
func (SetValue) Kind() Kind     { return KindSet }
func (RangeValue) Kind() Kind   { return KindRange }

func (Int64Value) isValue()   {}
func (Float64Value) isValue() {}
func (BlobValue) isValue()    {}
func (TextValue) isValue()    {}
func (ListValue) isValue()    {}
func (MapValue) isValue()     {}
func (SetValue) isValue()     {}
func (RangeValue) isValue()   {}

func (Int64Value) isBoundValue()   {}
func (Float64Value) isBoundValue() {}
func (BlobValue) isBoundValue()    {}
func (TextValue) isBoundValue()    {}

// ListValue holds a homogeneous sequence. Exactly one slot is expected to be
// non-empty; which one determines the element type. A list with every slot
// empty is valid and reads back as an empty sequence of any element type.
type ListValue struct {
	Int64Values   []int64
	Float64Values []float64
	BlobValues    [][]byte
	TextValues    []string
	Values        []TypedValue
}

// IsEmpty reports whether every slot is empty. This is exactly the condition
// under which the list has a zero-length wire encoding.
func (l ListValue) IsEmpty() bool {
	return len(l.Int64Values) == 0 &&
		len(l.Float64Values) == 0 &&
		len(l.BlobValues) == 0 &&
		len(l.TextValues) == 0 &&
		len(l.Values) == 0
}

// Len returns the number of elements across all slots.
func (l ListValue) Len() int {
	return len(l.Int64Values) + len(l.Float64Values) + len(l.BlobValues) + len(l.TextValues) + len(l.Values)
}

// MapValue stores a mapping as two parallel lists. Either list may be missing,
// and nothing guarantees that their lengths agree; extraction checks both.
type MapValue struct {
	Keys   *ListValue
	Values *ListValue
}

// SetValue is a list with set semantics. The wire form does not enforce
// uniqueness; deduplication happens when a native set is rebuilt.
type SetValue struct {
	Keys *ListValue
}

// RangeBound is one side of a range. A nil Value means unbounded, whatever
// Included says.
type RangeBound struct {
	Value    BoundValue
	Included bool
}

func (b RangeBound) IsUnbounded() bool {
	return b.Value == nil
}

// RangeValue is a pair of bounds. A missing bound reads back as unbounded.
type RangeValue struct {
	Start *RangeBound
	End   *RangeBound
}

// TypedValue wraps an optional Value. The zero TypedValue is absent, which is
// distinct from every variant (including zero-valued ones).
type TypedValue struct {
	Value Value
}

// Typed wraps v. Passing nil produces an absent value.
func Typed(v Value) TypedValue {
	return TypedValue{Value: v}
}

// Absent returns the empty ("any") typed value.
func Absent() TypedValue {
	return TypedValue{}
}

// OptionalTyped wraps v when ok is true and returns an absent value otherwise.
func OptionalTyped(v Value, ok bool) TypedValue {
	if !ok {
		return TypedValue{}
	}
	return TypedValue{Value: v}
}

func (tv TypedValue) IsAbsent() bool {
	return tv.Value == nil
}

func (tv TypedValue) Kind() Kind {
	return KindOf(tv.Value)
}

func boundPtr(b RangeBound) *RangeBound {
	return &b
}
