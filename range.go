package tval

import "fmt"

type BoundKind int

const (
	BoundUnbounded BoundKind = iota
	BoundIncluded
	BoundExcluded
)

func (k BoundKind) String() string {
	switch k {
	case BoundUnbounded:
		return "unbounded"
	case BoundIncluded:
		return "included"
	case BoundExcluded:
		return "excluded"
	default:
		return "invalid"
	}
}

// Bound is one native side of a range. Value is meaningful only for included
// and excluded bounds.
type Bound[T BoundScalar] struct {
	Kind  BoundKind
	Value T
}

func Unbounded[T BoundScalar]() Bound[T] {
	return Bound[T]{Kind: BoundUnbounded}
}

func Included[T BoundScalar](v T) Bound[T] {
	return Bound[T]{Kind: BoundIncluded, Value: v}
}

func Excluded[T BoundScalar](v T) Bound[T] {
	return Bound[T]{Kind: BoundExcluded, Value: v}
}

// BoundOf encodes b. Unbounded becomes a bound with no payload. It panics on
// a Kind outside the BoundKind constants.
func BoundOf[T BoundScalar](b Bound[T]) RangeBound {
	switch b.Kind {
	case BoundIncluded:
		return RangeBound{Value: boundValue(b.Value), Included: true}
	case BoundExcluded:
		return RangeBound{Value: boundValue(b.Value), Included: false}
	case BoundUnbounded:
		return RangeBound{}
	default:
		panic(fmt.Errorf("tval: invalid bound kind %d", int(b.Kind)))
	}
}

// BoundFromRangeBound decodes rb. A bound with no payload is unbounded no
// matter what its Included flag says. A payload of another type is a
// *MismatchError[RangeBound] carrying rb.
func BoundFromRangeBound[T BoundScalar](rb RangeBound) (Bound[T], error) {
	if rb.Value == nil {
		return Unbounded[T](), nil
	}
	c := converterFor[T]()
	v, ok := c.fromValue(rb.Value)
	if !ok {
		return Bound[T]{}, mismatch("bound "+c.typeName(), rb)
	}
	if rb.Included {
		return Included(v), nil
	}
	return Excluded(v), nil
}

// RangeOf encodes both sides. Both bounds are always present in the result,
// even when unbounded.
func RangeOf[T BoundScalar](start, end Bound[T]) RangeValue {
	return RangeValue{
		Start: boundPtr(BoundOf(start)),
		End:   boundPtr(BoundOf(end)),
	}
}

// BoundsFromRange decodes both sides. A missing bound is unbounded. If either
// side fails, the error carries r unchanged.
func BoundsFromRange[T BoundScalar](r RangeValue) (start, end Bound[T], err error) {
	var serr, eerr error
	start, end = Unbounded[T](), Unbounded[T]()
	if r.Start != nil {
		start, serr = BoundFromRangeBound[T](*r.Start)
	}
	if r.End != nil {
		end, eerr = BoundFromRangeBound[T](*r.End)
	}
	if serr == nil && eerr == nil {
		return start, end, nil
	}
	return Bound[T]{}, Bound[T]{}, mismatch("range of "+typeName[T](), Value(r))
}

// Bounds is a decoded range.
type Bounds[T BoundScalar] struct {
	Start Bound[T]
	End   Bound[T]
}

// TryRangeFromValue is BoundsFromRange for a Value that must be a RangeValue.
func TryRangeFromValue[T BoundScalar](v Value) (Bounds[T], error) {
	r, ok := v.(RangeValue)
	if !ok {
		return Bounds[T]{}, mismatch("range of "+typeName[T](), v)
	}
	start, end, err := BoundsFromRange[T](r)
	if err != nil {
		return Bounds[T]{}, err
	}
	return Bounds[T]{start, end}, nil
}

// HalfOpen is [start, end).
func HalfOpen[T BoundScalar](start, end T) RangeValue {
	return RangeOf(Included(start), Excluded(end))
}

// Closed is [start, end].
func Closed[T BoundScalar](start, end T) RangeValue {
	return RangeOf(Included(start), Included(end))
}

// AtLeast is [start, ∞).
func AtLeast[T BoundScalar](start T) RangeValue {
	return RangeOf(Included(start), Unbounded[T]())
}

// LessThan is (-∞, end).
func LessThan[T BoundScalar](end T) RangeValue {
	return RangeOf(Unbounded[T](), Excluded(end))
}

// AtMost is (-∞, end].
func AtMost[T BoundScalar](end T) RangeValue {
	return RangeOf(Unbounded[T](), Included(end))
}

// FullRange has no bounds at all; both sides are omitted.
func FullRange() RangeValue {
	return RangeValue{}
}

func boundValue[T BoundScalar](v T) BoundValue {
	return converterFor[T]().toValue(v).(BoundValue)
}
