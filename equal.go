package tval

import (
	"bytes"
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Equal reports whether a and b are structurally identical. Floats compare by
// bit pattern, so NaN equals itself and 0.0 differs from -0.0. A nil and an
// empty slot are equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case Int64Value:
		b, ok := b.(Int64Value)
		return ok && a == b
	case Float64Value:
		b, ok := b.(Float64Value)
		return ok && math.Float64bits(float64(a)) == math.Float64bits(float64(b))
	case BlobValue:
		b, ok := b.(BlobValue)
		return ok && bytes.Equal(a, b)
	case TextValue:
		b, ok := b.(TextValue)
		return ok && a == b
	case ListValue:
		b, ok := b.(ListValue)
		return ok && listEqual(a, b)
	case MapValue:
		b, ok := b.(MapValue)
		return ok && listPtrEqual(a.Keys, b.Keys) && listPtrEqual(a.Values, b.Values)
	case SetValue:
		b, ok := b.(SetValue)
		return ok && listPtrEqual(a.Keys, b.Keys)
	case RangeValue:
		b, ok := b.(RangeValue)
		return ok && boundPtrEqual(a.Start, b.Start) && boundPtrEqual(a.End, b.End)
	default:
		panic("tval: unknown variant")
	}
}

func (tv TypedValue) Equal(another TypedValue) bool {
	return Equal(tv.Value, another.Value)
}

func (b RangeBound) Equal(another RangeBound) bool {
	return b.Included == another.Included && Equal(b.Value, another.Value)
}

func listEqual(a, b ListValue) bool {
	return slices.Equal(a.Int64Values, b.Int64Values) &&
		slices.EqualFunc(a.Float64Values, b.Float64Values, func(x, y float64) bool {
			return math.Float64bits(x) == math.Float64bits(y)
		}) &&
		slices.EqualFunc(a.BlobValues, b.BlobValues, bytes.Equal) &&
		slices.Equal(a.TextValues, b.TextValues) &&
		slices.EqualFunc(a.Values, b.Values, TypedValue.Equal)
}

func listPtrEqual(a, b *ListValue) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return listEqual(*a, *b)
}

func boundPtrEqual(a, b *RangeBound) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Fingerprint is a 64-bit hash of tv's structure. Values that are Equal have
// equal fingerprints.
func Fingerprint(tv TypedValue) uint64 {
	h := fingerprinter{d: xxhash.New()}
	h.value(tv.Value)
	return h.d.Sum64()
}

type fingerprinter struct {
	d   *xxhash.Digest
	buf [binary.MaxVarintLen64]byte
}

func (h *fingerprinter) uint(v uint64) {
	n := binary.PutUvarint(h.buf[:], v)
	h.d.Write(h.buf[:n])
}

func (h *fingerprinter) bytes(b []byte) {
	h.uint(uint64(len(b)))
	h.d.Write(b)
}

func (h *fingerprinter) string(s string) {
	h.uint(uint64(len(s)))
	h.d.WriteString(s)
}

func (h *fingerprinter) value(v Value) {
	h.uint(uint64(KindOf(v)))
	switch v := v.(type) {
	case nil:
	case Int64Value:
		h.uint(uint64(v))
	case Float64Value:
		h.uint(math.Float64bits(float64(v)))
	case BlobValue:
		h.bytes(v)
	case TextValue:
		h.string(string(v))
	case ListValue:
		h.list(&v)
	case MapValue:
		h.list(v.Keys)
		h.list(v.Values)
	case SetValue:
		h.list(v.Keys)
	case RangeValue:
		h.bound(v.Start)
		h.bound(v.End)
	}
}

func (h *fingerprinter) list(l *ListValue) {
	if l == nil {
		h.uint(0)
		return
	}
	h.uint(1)
	h.uint(uint64(len(l.Int64Values)))
	for _, v := range l.Int64Values {
		h.uint(uint64(v))
	}
	h.uint(uint64(len(l.Float64Values)))
	for _, v := range l.Float64Values {
		h.uint(math.Float64bits(v))
	}
	h.uint(uint64(len(l.BlobValues)))
	for _, v := range l.BlobValues {
		h.bytes(v)
	}
	h.uint(uint64(len(l.TextValues)))
	for _, v := range l.TextValues {
		h.string(v)
	}
	h.uint(uint64(len(l.Values)))
	for _, v := range l.Values {
		h.value(v.Value)
	}
}

func (h *fingerprinter) bound(b *RangeBound) {
	if b == nil {
		h.uint(0)
		return
	}
	if b.Included {
		h.uint(2)
	} else {
		h.uint(1)
	}
	h.value(b.Value)
}
