package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/andreyvit/tval"
)

// Field numbers from proto/tval/v1/value.proto.
const (
	// TypedValue oneof; RangeBound reuses 1-4 for its payload.
	fieldInt64   protowire.Number = 1
	fieldFloat64 protowire.Number = 2
	fieldBlob    protowire.Number = 3
	fieldText    protowire.Number = 4
	fieldList    protowire.Number = 5
	fieldMap     protowire.Number = 6
	fieldSet     protowire.Number = 7
	fieldRange   protowire.Number = 8

	fieldListInt64s   protowire.Number = 1
	fieldListFloat64s protowire.Number = 2
	fieldListBlobs    protowire.Number = 3
	fieldListTexts    protowire.Number = 4
	fieldListValues   protowire.Number = 5

	fieldMapKeys   protowire.Number = 1
	fieldMapValues protowire.Number = 2

	fieldSetKeys protowire.Number = 1

	fieldBoundIncluded protowire.Number = 5

	fieldRangeStart protowire.Number = 1
	fieldRangeEnd   protowire.Number = 2

	fieldCallFunc protowire.Number = 1
	fieldCallArgs protowire.Number = 2
)

// exprFields maps TypedExpr oneof field numbers to expression kinds.
var exprFields = [...]tval.Kind{
	1: tval.KindAbsent,
	2: tval.KindInt64,
	3: tval.KindFloat64,
	4: tval.KindBlob,
	5: tval.KindText,
	6: tval.KindList,
	7: tval.KindMap,
	8: tval.KindSet,
}

func exprField(kind tval.Kind) protowire.Number {
	for num, k := range exprFields {
		if num > 0 && k == kind {
			return protowire.Number(num)
		}
	}
	return 1
}

// Size returns the length of tv's Protobuf encoding. An absent value encodes
// to zero bytes.
func Size(tv tval.TypedValue) int {
	var s protoSizer
	return s.typedValue(tv.Value)
}

// ListSize returns the length of l's Protobuf encoding as a standalone
// message. It is zero exactly when l.IsEmpty().
func ListSize(l tval.ListValue) int {
	var s protoSizer
	return s.list(&l)
}

// ExprSize returns the length of e's Protobuf encoding.
func ExprSize(e tval.TypedExpr) int {
	if e.Expr == nil {
		return 0
	}
	var s protoSizer
	return sizeNested(exprField(e.Expr.ExprKind()), s.call(e.Expr.ExprCall()))
}

// AppendTypedValue appends the Protobuf encoding of tv to buf.
func AppendTypedValue(buf []byte, tv tval.TypedValue) []byte {
	var s protoSizer
	n := s.typedValue(tv.Value)
	buf = ensureCapacity(buf, len(buf)+n)
	a := protoAppender{sizes: s.sizes}
	return a.typedValue(buf, tv.Value)
}

// AppendTypedExpr appends the Protobuf encoding of e to buf.
func AppendTypedExpr(buf []byte, e tval.TypedExpr) []byte {
	if e.Expr == nil {
		return buf
	}
	call := e.Expr.ExprCall()
	var s protoSizer
	n := s.call(call)
	num := exprField(e.Expr.ExprKind())
	buf = ensureCapacity(buf, len(buf)+sizeNested(num, n))
	buf = appendNestedHeader(buf, num, n)
	a := protoAppender{sizes: s.sizes}
	return a.call(buf, call)
}

func sizeNested(num protowire.Number, n int) int {
	return protowire.SizeTag(num) + protowire.SizeBytes(n)
}

func appendNestedHeader(buf []byte, num protowire.Number, n int) []byte {
	buf = protowire.AppendTag(buf, num, protowire.BytesType)
	return protowire.AppendVarint(buf, uint64(n))
}

// sizeScalar and appendScalar cover fields 1-4, shared by TypedValue and
// RangeBound.
func sizeScalar(v tval.Value) (int, bool) {
	switch v := v.(type) {
	case tval.Int64Value:
		return protowire.SizeTag(fieldInt64) + protowire.SizeVarint(uint64(v)), true
	case tval.Float64Value:
		return protowire.SizeTag(fieldFloat64) + protowire.SizeFixed64(), true
	case tval.BlobValue:
		return sizeNested(fieldBlob, len(v)), true
	case tval.TextValue:
		return sizeNested(fieldText, len(v)), true
	default:
		return 0, false
	}
}

func appendScalar(buf []byte, v tval.Value) ([]byte, bool) {
	switch v := v.(type) {
	case tval.Int64Value:
		buf = protowire.AppendTag(buf, fieldInt64, protowire.VarintType)
		return protowire.AppendVarint(buf, uint64(v)), true
	case tval.Float64Value:
		buf = protowire.AppendTag(buf, fieldFloat64, protowire.Fixed64Type)
		return protowire.AppendFixed64(buf, math.Float64bits(float64(v))), true
	case tval.BlobValue:
		buf = protowire.AppendTag(buf, fieldBlob, protowire.BytesType)
		return protowire.AppendBytes(buf, v), true
	case tval.TextValue:
		buf = protowire.AppendTag(buf, fieldText, protowire.BytesType)
		return protowire.AppendString(buf, string(v)), true
	default:
		return buf, false
	}
}

// protoSizer records the body size of every nested message that can contain
// other values, in the order their headers are written. protoAppender
// consumes the sizes in the same order, so each value is sized once no matter
// how deep it sits.
type protoSizer struct {
	sizes []int
}

func (s *protoSizer) slot() int {
	s.sizes = append(s.sizes, 0)
	return len(s.sizes) - 1
}

// typedValue returns the body size of a TypedValue message holding v.
func (s *protoSizer) typedValue(v tval.Value) int {
	if v == nil {
		return 0
	}
	if n, ok := sizeScalar(v); ok {
		return n
	}
	switch v := v.(type) {
	case tval.ListValue:
		i := s.slot()
		n := s.list(&v)
		s.sizes[i] = n
		return sizeNested(fieldList, n)
	case tval.MapValue:
		i := s.slot()
		n := s.optionalList(fieldMapKeys, v.Keys)
		n += s.optionalList(fieldMapValues, v.Values)
		s.sizes[i] = n
		return sizeNested(fieldMap, n)
	case tval.SetValue:
		i := s.slot()
		n := s.optionalList(fieldSetKeys, v.Keys)
		s.sizes[i] = n
		return sizeNested(fieldSet, n)
	case tval.RangeValue:
		return sizeNested(fieldRange, sizeRange(v))
	default:
		panic(fmt.Errorf("wire: unknown value variant %T", v))
	}
}

// A present but empty list still costs a tag and a zero length, which keeps
// presence distinguishable from absence.
func (s *protoSizer) optionalList(num protowire.Number, l *tval.ListValue) int {
	if l == nil {
		return 0
	}
	i := s.slot()
	n := s.list(l)
	s.sizes[i] = n
	return sizeNested(num, n)
}

func (s *protoSizer) list(l *tval.ListValue) int {
	var n int
	if len(l.Int64Values) > 0 {
		n += sizeNested(fieldListInt64s, sizePackedInt64s(l.Int64Values))
	}
	if len(l.Float64Values) > 0 {
		n += sizeNested(fieldListFloat64s, 8*len(l.Float64Values))
	}
	for _, v := range l.BlobValues {
		n += sizeNested(fieldListBlobs, len(v))
	}
	for _, v := range l.TextValues {
		n += sizeNested(fieldListTexts, len(v))
	}
	for _, v := range l.Values {
		n += s.nestedValue(fieldListValues, v.Value)
	}
	return n
}

func (s *protoSizer) nestedValue(num protowire.Number, v tval.Value) int {
	i := s.slot()
	n := s.typedValue(v)
	s.sizes[i] = n
	return sizeNested(num, n)
}

func (s *protoSizer) call(call tval.Call) int {
	var n int
	if call.Func != tval.FuncNone {
		n += protowire.SizeTag(fieldCallFunc) + protowire.SizeVarint(uint64(call.Func))
	}
	for _, arg := range call.Args {
		n += s.nestedValue(fieldCallArgs, arg.Value)
	}
	return n
}

type protoAppender struct {
	sizes []int
	next  int
}

func (a *protoAppender) take() int {
	n := a.sizes[a.next]
	a.next++
	return n
}

func (a *protoAppender) typedValue(buf []byte, v tval.Value) []byte {
	if v == nil {
		return buf
	}
	if out, ok := appendScalar(buf, v); ok {
		return out
	}
	switch v := v.(type) {
	case tval.ListValue:
		buf = appendNestedHeader(buf, fieldList, a.take())
		return a.list(buf, &v)
	case tval.MapValue:
		buf = appendNestedHeader(buf, fieldMap, a.take())
		buf = a.optionalList(buf, fieldMapKeys, v.Keys)
		return a.optionalList(buf, fieldMapValues, v.Values)
	case tval.SetValue:
		buf = appendNestedHeader(buf, fieldSet, a.take())
		return a.optionalList(buf, fieldSetKeys, v.Keys)
	case tval.RangeValue:
		buf = appendNestedHeader(buf, fieldRange, sizeRange(v))
		buf = appendOptionalBound(buf, fieldRangeStart, v.Start)
		return appendOptionalBound(buf, fieldRangeEnd, v.End)
	default:
		panic(fmt.Errorf("wire: unknown value variant %T", v))
	}
}

func (a *protoAppender) optionalList(buf []byte, num protowire.Number, l *tval.ListValue) []byte {
	if l == nil {
		return buf
	}
	buf = appendNestedHeader(buf, num, a.take())
	return a.list(buf, l)
}

func (a *protoAppender) list(buf []byte, l *tval.ListValue) []byte {
	if len(l.Int64Values) > 0 {
		buf = appendNestedHeader(buf, fieldListInt64s, sizePackedInt64s(l.Int64Values))
		for _, v := range l.Int64Values {
			buf = protowire.AppendVarint(buf, uint64(v))
		}
	}
	if len(l.Float64Values) > 0 {
		buf = appendNestedHeader(buf, fieldListFloat64s, 8*len(l.Float64Values))
		for _, v := range l.Float64Values {
			buf = protowire.AppendFixed64(buf, math.Float64bits(v))
		}
	}
	for _, v := range l.BlobValues {
		buf = protowire.AppendTag(buf, fieldListBlobs, protowire.BytesType)
		buf = protowire.AppendBytes(buf, v)
	}
	for _, v := range l.TextValues {
		buf = protowire.AppendTag(buf, fieldListTexts, protowire.BytesType)
		buf = protowire.AppendString(buf, v)
	}
	for _, v := range l.Values {
		buf = appendNestedHeader(buf, fieldListValues, a.take())
		buf = a.typedValue(buf, v.Value)
	}
	return buf
}

func (a *protoAppender) call(buf []byte, call tval.Call) []byte {
	if call.Func != tval.FuncNone {
		buf = protowire.AppendTag(buf, fieldCallFunc, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(call.Func))
	}
	for _, arg := range call.Args {
		buf = appendNestedHeader(buf, fieldCallArgs, a.take())
		buf = a.typedValue(buf, arg.Value)
	}
	return buf
}

func sizePackedInt64s(items []int64) int {
	var n int
	for _, v := range items {
		n += protowire.SizeVarint(uint64(v))
	}
	return n
}

func sizeBound(b *tval.RangeBound) int {
	var n int
	if b.Value != nil {
		n, _ = sizeScalar(b.Value)
	}
	if b.Included {
		n += protowire.SizeTag(fieldBoundIncluded) + 1
	}
	return n
}

func appendOptionalBound(buf []byte, num protowire.Number, b *tval.RangeBound) []byte {
	if b == nil {
		return buf
	}
	buf = appendNestedHeader(buf, num, sizeBound(b))
	if b.Value != nil {
		buf, _ = appendScalar(buf, b.Value)
	}
	if b.Included {
		buf = protowire.AppendTag(buf, fieldBoundIncluded, protowire.VarintType)
		buf = protowire.AppendVarint(buf, 1)
	}
	return buf
}

func sizeRange(r tval.RangeValue) int {
	var n int
	if r.Start != nil {
		n += sizeNested(fieldRangeStart, sizeBound(r.Start))
	}
	if r.End != nil {
		n += sizeNested(fieldRangeEnd, sizeBound(r.End))
	}
	return n
}
