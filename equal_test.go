package tval

import (
	"math"
	"testing"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		e    bool
	}{
		{nil, nil, true},
		{Int64Value(1), nil, false},
		{Int64Value(1), Int64Value(1), true},
		{Int64Value(1), Float64Value(1), false},
		{Float64Value(math.NaN()), Float64Value(math.NaN()), true},
		{Float64Value(0), Float64Value(math.Copysign(0, -1)), false},
		{BlobValue(nil), BlobValue{}, true},
		{TextValue("a"), TextValue("b"), false},
		{ListValue{}, ListValue{Int64Values: []int64{}}, true},
		{ListOf([]int64{1}), ListOf([]int64{1}), true},
		{ListOf([]int64{1}), ListOf([]float64{1}), false},
		{ListOfValues([]TypedValue{{}}), ListOfValues([]TypedValue{{}}), true},
		{MapValue{}, MapValue{Keys: &ListValue{}}, false},
		{MapOfEntries([]Entry[string, int64]{{"a", 1}}), MapOfEntries([]Entry[string, int64]{{"a", 1}}), true},
		{SetValue{}, SetOfList(ListValue{}), false},
		{HalfOpen[int64](1, 2), HalfOpen[int64](1, 2), true},
		{HalfOpen[int64](1, 2), Closed[int64](1, 2), false},
		{FullRange(), RangeOf(Unbounded[int64](), Unbounded[int64]()), false},
	}
	for _, tt := range tests {
		if a := Equal(tt.a, tt.b); a != tt.e {
			t.Errorf("Equal(%v, %v) = %v, wanted %v", describe(tt.a), describe(tt.b), a, tt.e)
		}
		if a := Equal(tt.b, tt.a); a != tt.e {
			t.Errorf("Equal(%v, %v) = %v, wanted %v", describe(tt.b), describe(tt.a), a, tt.e)
		}
		if tt.e && Fingerprint(Typed(tt.a)) != Fingerprint(Typed(tt.b)) {
			t.Errorf("Fingerprint differs for equal %v and %v", describe(tt.a), describe(tt.b))
		}
	}
}

func TestFingerprint_Distinguishes(t *testing.T) {
	values := []TypedValue{
		Absent(),
		ToTypedValue(int64(0)),
		ToTypedValue(0.0),
		ToTypedValue(""),
		ToTypedValue([]byte{}),
		Typed(ListValue{}),
		Typed(ListOf([]string{""})),
		Typed(ListOf([]string{"", ""})),
		Typed(MapValue{}),
		Typed(SetValue{}),
		Typed(FullRange()),
		Typed(AtLeast[int64](0)),
		Typed(LessThan[int64](0)),
	}
	seen := make(map[uint64]int)
	for i, tv := range values {
		fp := Fingerprint(tv)
		if j, ok := seen[fp]; ok {
			t.Errorf("Fingerprint(%v) == Fingerprint(%v)", values[j], tv)
		}
		seen[fp] = i
	}
}
