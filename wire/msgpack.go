package wire

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/andreyvit/tval"
)

// MsgPack layout. Every present value is an array whose first element is the
// Protobuf field number of its variant:
//
//	[1, int] [2, float] [3, bin] [4, str]
//	[5, [ints], [floats], [bins], [strs], [values]]
//	[6, list|nil, list|nil]          map keys, values
//	[7, list|nil]                    set keys
//	[8, bound|nil, bound|nil]        range start, end
//
// where list is the 5-element tail of a list value and bound is
// [included, scalar|nil]. An absent value is nil.

func appendMsgpackValue(buf []byte, tv tval.TypedValue) ([]byte, error) {
	bb := bytesBuilder{buf}
	enc := msgpack.GetEncoder()
	enc.Reset(&bb)
	err := encodeMsgpackValue(enc, tv.Value)
	msgpack.PutEncoder(enc)
	if err != nil {
		return buf, fmt.Errorf("failed to encode %v using MsgPack: %w", tv, err)
	}
	return bb.Buf, nil
}

func appendMsgpackExpr(buf []byte, e tval.TypedExpr) ([]byte, error) {
	bb := bytesBuilder{buf}
	enc := msgpack.GetEncoder()
	enc.Reset(&bb)
	err := encodeMsgpackExpr(enc, e)
	msgpack.PutEncoder(enc)
	if err != nil {
		return buf, fmt.Errorf("failed to encode %v using MsgPack: %w", e, err)
	}
	return bb.Buf, nil
}

func encodeMsgpackValue(enc *msgpack.Encoder, v tval.Value) error {
	switch v := v.(type) {
	case nil:
		return enc.EncodeNil()
	case tval.Int64Value:
		return encodeTagged(enc, fieldInt64, 2, func() error { return enc.EncodeInt(int64(v)) })
	case tval.Float64Value:
		return encodeTagged(enc, fieldFloat64, 2, func() error { return enc.EncodeFloat64(float64(v)) })
	case tval.BlobValue:
		return encodeTagged(enc, fieldBlob, 2, func() error { return encodeMsgpackBlob(enc, v) })
	case tval.TextValue:
		return encodeTagged(enc, fieldText, 2, func() error { return enc.EncodeString(string(v)) })
	case tval.ListValue:
		return encodeTagged(enc, fieldList, 6, func() error { return encodeMsgpackListBody(enc, &v) })
	case tval.MapValue:
		return encodeTagged(enc, fieldMap, 3, func() error {
			if err := encodeMsgpackList(enc, v.Keys); err != nil {
				return err
			}
			return encodeMsgpackList(enc, v.Values)
		})
	case tval.SetValue:
		return encodeTagged(enc, fieldSet, 2, func() error { return encodeMsgpackList(enc, v.Keys) })
	case tval.RangeValue:
		return encodeTagged(enc, fieldRange, 3, func() error {
			if err := encodeMsgpackBound(enc, v.Start); err != nil {
				return err
			}
			return encodeMsgpackBound(enc, v.End)
		})
	default:
		panic(fmt.Errorf("wire: unknown value variant %T", v))
	}
}

func encodeTagged(enc *msgpack.Encoder, tag protowire.Number, n int, body func() error) error {
	if err := enc.EncodeArrayLen(n); err != nil {
		return err
	}
	if err := enc.EncodeUint(uint64(tag)); err != nil {
		return err
	}
	return body()
}

// encodeMsgpackBlob keeps empty blobs distinct from nil.
func encodeMsgpackBlob(enc *msgpack.Encoder, b []byte) error {
	if b == nil {
		b = []byte{}
	}
	return enc.EncodeBytes(b)
}

func encodeMsgpackList(enc *msgpack.Encoder, l *tval.ListValue) error {
	if l == nil {
		return enc.EncodeNil()
	}
	if err := enc.EncodeArrayLen(5); err != nil {
		return err
	}
	return encodeMsgpackListBody(enc, l)
}

func encodeMsgpackListBody(enc *msgpack.Encoder, l *tval.ListValue) error {
	if err := enc.EncodeArrayLen(len(l.Int64Values)); err != nil {
		return err
	}
	for _, v := range l.Int64Values {
		if err := enc.EncodeInt(v); err != nil {
			return err
		}
	}
	if err := enc.EncodeArrayLen(len(l.Float64Values)); err != nil {
		return err
	}
	for _, v := range l.Float64Values {
		if err := enc.EncodeFloat64(v); err != nil {
			return err
		}
	}
	if err := enc.EncodeArrayLen(len(l.BlobValues)); err != nil {
		return err
	}
	for _, v := range l.BlobValues {
		if err := encodeMsgpackBlob(enc, v); err != nil {
			return err
		}
	}
	if err := enc.EncodeArrayLen(len(l.TextValues)); err != nil {
		return err
	}
	for _, v := range l.TextValues {
		if err := enc.EncodeString(v); err != nil {
			return err
		}
	}
	if err := enc.EncodeArrayLen(len(l.Values)); err != nil {
		return err
	}
	for _, v := range l.Values {
		if err := encodeMsgpackValue(enc, v.Value); err != nil {
			return err
		}
	}
	return nil
}

func encodeMsgpackBound(enc *msgpack.Encoder, b *tval.RangeBound) error {
	if b == nil {
		return enc.EncodeNil()
	}
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeBool(b.Included); err != nil {
		return err
	}
	if b.Value == nil {
		return enc.EncodeNil()
	}
	return encodeMsgpackValue(enc, b.Value)
}

// Expressions are [kind, func, [args...]], kind being the TypedExpr oneof
// field number.
func encodeMsgpackExpr(enc *msgpack.Encoder, e tval.TypedExpr) error {
	if e.Expr == nil {
		return enc.EncodeNil()
	}
	call := e.Expr.ExprCall()
	if err := enc.EncodeArrayLen(3); err != nil {
		return err
	}
	if err := enc.EncodeUint(uint64(exprField(e.Expr.ExprKind()))); err != nil {
		return err
	}
	if err := enc.EncodeInt(int64(call.Func)); err != nil {
		return err
	}
	if err := enc.EncodeArrayLen(len(call.Args)); err != nil {
		return err
	}
	for _, arg := range call.Args {
		if err := encodeMsgpackValue(enc, arg.Value); err != nil {
			return err
		}
	}
	return nil
}

type msgpackDecoder struct {
	dec      *msgpack.Decoder
	r        bytes.Reader
	orig     []byte
	maxDepth int
}

func (d *msgpackDecoder) off() int {
	return len(d.orig) - d.r.Len()
}

func (d *msgpackDecoder) errf(err error, format string, args ...any) error {
	if _, ok := err.(*DataError); ok {
		return err
	}
	return dataErrf(d.orig, d.off(), err, format, args...)
}

func withMsgpackDecoder[T any](data []byte, maxDepth int, f func(d *msgpackDecoder) (T, error)) (T, error) {
	d := &msgpackDecoder{orig: data, maxDepth: maxDepth}
	d.r.Reset(data)
	d.dec = msgpack.GetDecoder()
	d.dec.Reset(&d.r)
	defer msgpack.PutDecoder(d.dec)

	result, err := f(d)
	if err != nil {
		var zero T
		return zero, err
	}
	if d.r.Len() > 0 {
		var zero T
		return zero, d.errf(nil, "%d bytes of trailing data", d.r.Len())
	}
	return result, nil
}

func decodeMsgpackValue(data []byte, maxDepth int) (tval.TypedValue, error) {
	return withMsgpackDecoder(data, maxDepth, func(d *msgpackDecoder) (tval.TypedValue, error) {
		v, err := d.value(0)
		return tval.TypedValue{Value: v}, err
	})
}

func decodeMsgpackExpr(data []byte, maxDepth int) (tval.TypedExpr, error) {
	return withMsgpackDecoder(data, maxDepth, (*msgpackDecoder).expr)
}

// arrayLen reads an array header, returning -1 for nil.
func (d *msgpackDecoder) arrayLen() (int, error) {
	n, err := d.dec.DecodeArrayLen()
	if err != nil {
		return 0, d.errf(err, "invalid array")
	}
	return n, nil
}

func (d *msgpackDecoder) value(depth int) (tval.Value, error) {
	if depth > d.maxDepth {
		return nil, d.errf(ErrTooDeep, "exceeded max depth %d", d.maxDepth)
	}
	n, err := d.arrayLen()
	if err != nil || n < 0 {
		return nil, err
	}
	if n == 0 {
		return nil, d.errf(nil, "empty value array")
	}
	tag, err := d.dec.DecodeUint64()
	if err != nil {
		return nil, d.errf(err, "invalid variant tag")
	}
	want := 2
	switch tag {
	case uint64(fieldList):
		want = 6
	case uint64(fieldMap), uint64(fieldRange):
		want = 3
	}
	if tag < 1 || tag > uint64(fieldRange) {
		return nil, d.errf(ErrUnknownVariant, "variant %d", tag)
	}
	if n != want {
		return nil, d.errf(nil, "variant %d has %d elements, wanted %d", tag, n, want)
	}

	switch tag {
	case uint64(fieldInt64):
		v, err := d.dec.DecodeInt64()
		if err != nil {
			return nil, d.errf(err, "invalid int64")
		}
		return tval.Int64Value(v), nil
	case uint64(fieldFloat64):
		v, err := d.dec.DecodeFloat64()
		if err != nil {
			return nil, d.errf(err, "invalid float64")
		}
		return tval.Float64Value(v), nil
	case uint64(fieldBlob):
		v, err := d.blob()
		return tval.BlobValue(v), err
	case uint64(fieldText):
		v, err := d.dec.DecodeString()
		if err != nil {
			return nil, d.errf(err, "invalid text")
		}
		return tval.TextValue(v), nil
	case uint64(fieldList):
		l, err := d.listBody(depth + 1)
		if err != nil {
			return nil, err
		}
		return *l, nil
	case uint64(fieldMap):
		var m tval.MapValue
		if m.Keys, err = d.list(depth + 1); err != nil {
			return nil, err
		}
		if m.Values, err = d.list(depth + 1); err != nil {
			return nil, err
		}
		return m, nil
	case uint64(fieldSet):
		var s tval.SetValue
		if s.Keys, err = d.list(depth + 1); err != nil {
			return nil, err
		}
		return s, nil
	default:
		var r tval.RangeValue
		if r.Start, err = d.bound(depth + 1); err != nil {
			return nil, err
		}
		if r.End, err = d.bound(depth + 1); err != nil {
			return nil, err
		}
		return r, nil
	}
}

func (d *msgpackDecoder) blob() ([]byte, error) {
	v, err := d.dec.DecodeBytes()
	if err != nil {
		return nil, d.errf(err, "invalid blob")
	}
	if v == nil {
		v = []byte{}
	}
	return v, nil
}

func (d *msgpackDecoder) list(depth int) (*tval.ListValue, error) {
	n, err := d.arrayLen()
	if err != nil || n < 0 {
		return nil, err
	}
	if n != 5 {
		return nil, d.errf(nil, "list has %d slots, wanted 5", n)
	}
	return d.listBody(depth)
}

func (d *msgpackDecoder) listBody(depth int) (*tval.ListValue, error) {
	if depth > d.maxDepth {
		return nil, d.errf(ErrTooDeep, "exceeded max depth %d", d.maxDepth)
	}
	l := new(tval.ListValue)

	n, err := d.slotLen()
	if err != nil {
		return nil, err
	}
	for range n {
		v, err := d.dec.DecodeInt64()
		if err != nil {
			return nil, d.errf(err, "invalid int64 item")
		}
		l.Int64Values = append(l.Int64Values, v)
	}

	if n, err = d.slotLen(); err != nil {
		return nil, err
	}
	for range n {
		v, err := d.dec.DecodeFloat64()
		if err != nil {
			return nil, d.errf(err, "invalid float64 item")
		}
		l.Float64Values = append(l.Float64Values, v)
	}

	if n, err = d.slotLen(); err != nil {
		return nil, err
	}
	for range n {
		v, err := d.blob()
		if err != nil {
			return nil, err
		}
		l.BlobValues = append(l.BlobValues, v)
	}

	if n, err = d.slotLen(); err != nil {
		return nil, err
	}
	for range n {
		v, err := d.dec.DecodeString()
		if err != nil {
			return nil, d.errf(err, "invalid text item")
		}
		l.TextValues = append(l.TextValues, v)
	}

	if n, err = d.slotLen(); err != nil {
		return nil, err
	}
	for range n {
		v, err := d.value(depth + 1)
		if err != nil {
			return nil, err
		}
		l.Values = append(l.Values, tval.TypedValue{Value: v})
	}
	return l, nil
}

func (d *msgpackDecoder) slotLen() (int, error) {
	n, err := d.arrayLen()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, nil
	}
	if n > d.r.Len() {
		return 0, d.errf(nil, "slot of %d items exceeds remaining %d bytes", n, d.r.Len())
	}
	return n, nil
}

func (d *msgpackDecoder) bound(depth int) (*tval.RangeBound, error) {
	n, err := d.arrayLen()
	if err != nil || n < 0 {
		return nil, err
	}
	if n != 2 {
		return nil, d.errf(nil, "bound has %d elements, wanted 2", n)
	}
	rb := new(tval.RangeBound)
	if rb.Included, err = d.dec.DecodeBool(); err != nil {
		return nil, d.errf(err, "invalid bound flag")
	}
	v, err := d.value(depth)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return rb, nil
	}
	bv, ok := v.(tval.BoundValue)
	if !ok {
		return nil, d.errf(nil, "bound holds %s, wanted a scalar", v.Kind())
	}
	rb.Value = bv
	return rb, nil
}

func (d *msgpackDecoder) expr() (tval.TypedExpr, error) {
	n, err := d.arrayLen()
	if err != nil || n < 0 {
		return tval.TypedExpr{}, err
	}
	if n != 3 {
		return tval.TypedExpr{}, d.errf(nil, "expression has %d elements, wanted 3", n)
	}
	tag, err := d.dec.DecodeUint64()
	if err != nil {
		return tval.TypedExpr{}, d.errf(err, "invalid expression kind")
	}
	if tag < 1 || tag >= uint64(len(exprFields)) {
		return tval.TypedExpr{}, d.errf(ErrUnknownVariant, "expression kind %d", tag)
	}
	fn, err := d.dec.DecodeInt32()
	if err != nil {
		return tval.TypedExpr{}, d.errf(err, "invalid func")
	}
	argc, err := d.slotLen()
	if err != nil {
		return tval.TypedExpr{}, err
	}
	var args []tval.TypedValue
	for range argc {
		v, err := d.value(1)
		if err != nil {
			return tval.TypedExpr{}, err
		}
		args = append(args, tval.TypedValue{Value: v})
	}
	return tval.ToTypedExpr(tval.NewExpr(exprFields[tag], tval.Func(fn), args...)), nil
}
