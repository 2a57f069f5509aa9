package tval

import (
	"errors"
	"fmt"
)

// MismatchError is returned by every extractor when the value does not hold
// the requested native type. Got carries the value exactly as examined so
// that callers can inspect it or retry with a different type. No information is lost.
//
// V is Value for value-level extractors, TypedValue for wrapper-level ones and
// RangeBound for bound-level ones.
type MismatchError[V any] struct {
	Want string
	Got  V
}

func (e *MismatchError[V]) Error() string {
	return fmt.Sprintf("tval: cannot extract %s from %s", e.Want, describe(e.Got))
}

func mismatch[V any](want string, got V) error {
	return &MismatchError[V]{Want: want, Got: got}
}

// Recover returns the payload of a MismatchError[V] anywhere in err's chain.
func Recover[V any](err error) (V, bool) {
	var me *MismatchError[V]
	if errors.As(err, &me) {
		return me.Got, true
	}
	var zero V
	return zero, false
}

// IsMismatch reports whether err is a mismatch error of any payload type.
func IsMismatch(err error) bool {
	var v interface{ isMismatch() }
	return errors.As(err, &v)
}

func (e *MismatchError[V]) isMismatch() {}

func describe(v any) string {
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case Value:
		return v.Kind().String() + " " + v.String()
	case TypedValue:
		if v.IsAbsent() {
			return "absent value"
		}
		return v.Value.Kind().String() + " " + v.Value.String()
	case RangeBound:
		return "bound " + v.String()
	default:
		return fmt.Sprintf("%T", v)
	}
}
