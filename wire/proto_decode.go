package wire

import (
	"bytes"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/andreyvit/tval"
)

// DefaultMaxDepth limits nesting of lists, maps, sets and ranges on decode.
const DefaultMaxDepth = 100

// DecodeTypedValue decodes the Protobuf encoding of a TypedValue. Empty data
// decodes to an absent value.
func DecodeTypedValue(data []byte) (tval.TypedValue, error) {
	d := protoDecoder{orig: data, maxDepth: DefaultMaxDepth}
	return d.typedValue(data, 0, 0)
}

// DecodeTypedExpr decodes the Protobuf encoding of a TypedExpr.
func DecodeTypedExpr(data []byte) (tval.TypedExpr, error) {
	d := protoDecoder{orig: data, maxDepth: DefaultMaxDepth}
	return d.typedExpr(data, 0)
}

// protoDecoder walks nested messages. Each method receives the message body
// and its offset within orig so that errors can point at the exact byte.
type protoDecoder struct {
	orig     []byte
	maxDepth int
}

func (d *protoDecoder) errf(off int, err error, format string, args ...any) error {
	return dataErrf(d.orig, off, err, format, args...)
}

type protoField struct {
	num  protowire.Number
	typ  protowire.Type
	off  int // offset of the field value within orig
	body []byte
}

// next consumes one tag from b and returns the field along with the length of
// the tag itself.
func (d *protoDecoder) next(b []byte, off int) (protoField, error) {
	num, typ, n := protowire.ConsumeTag(b)
	if n < 0 {
		return protoField{}, d.errf(off, protowire.ParseError(n), "invalid field tag")
	}
	return protoField{num: num, typ: typ, off: off + n, body: b[n:]}, nil
}

// skip consumes the value of an unrecognized field.
func (d *protoDecoder) skip(f protoField) (int, error) {
	n := protowire.ConsumeFieldValue(f.num, f.typ, f.body)
	if n < 0 {
		return 0, d.errf(f.off, protowire.ParseError(n), "invalid value of field %d", f.num)
	}
	return n, nil
}

func (d *protoDecoder) wantType(f protoField, typ protowire.Type) error {
	if f.typ != typ {
		return d.errf(f.off, nil, "field %d: wire type %d, wanted %d", f.num, f.typ, typ)
	}
	return nil
}

func (d *protoDecoder) varint(f protoField) (uint64, int, error) {
	if err := d.wantType(f, protowire.VarintType); err != nil {
		return 0, 0, err
	}
	v, n := protowire.ConsumeVarint(f.body)
	if n < 0 {
		return 0, 0, d.errf(f.off, protowire.ParseError(n), "invalid varint in field %d", f.num)
	}
	return v, n, nil
}

func (d *protoDecoder) fixed64(f protoField) (uint64, int, error) {
	if err := d.wantType(f, protowire.Fixed64Type); err != nil {
		return 0, 0, err
	}
	v, n := protowire.ConsumeFixed64(f.body)
	if n < 0 {
		return 0, 0, d.errf(f.off, protowire.ParseError(n), "invalid fixed64 in field %d", f.num)
	}
	return v, n, nil
}

// bytes returns the payload of a length-delimited field, the offset of the
// payload, and the total number of bytes consumed.
func (d *protoDecoder) bytes(f protoField) ([]byte, int, int, error) {
	if err := d.wantType(f, protowire.BytesType); err != nil {
		return nil, 0, 0, err
	}
	v, n := protowire.ConsumeBytes(f.body)
	if n < 0 {
		return nil, 0, 0, d.errf(f.off, protowire.ParseError(n), "invalid length-delimited field %d", f.num)
	}
	return v, f.off + n - len(v), n, nil
}

func (d *protoDecoder) checkDepth(off, depth int) error {
	if depth > d.maxDepth {
		return d.errf(off, ErrTooDeep, "exceeded max depth %d", d.maxDepth)
	}
	return nil
}

// scalar decodes one of the fields 1-4 shared by TypedValue and RangeBound.
// It returns ok == false for any other field number.
func (d *protoDecoder) scalar(f protoField) (tval.BoundValue, int, bool, error) {
	switch f.num {
	case fieldInt64:
		v, n, err := d.varint(f)
		return tval.Int64Value(int64(v)), n, true, err
	case fieldFloat64:
		v, n, err := d.fixed64(f)
		return tval.Float64Value(math.Float64frombits(v)), n, true, err
	case fieldBlob:
		v, _, n, err := d.bytes(f)
		if v == nil {
			v = []byte{}
		}
		return tval.BlobValue(bytes.Clone(v)), n, true, err
	case fieldText:
		v, _, n, err := d.bytes(f)
		return tval.TextValue(v), n, true, err
	default:
		return nil, 0, false, nil
	}
}

// typedValue decodes a TypedValue message body. As with any oneof, the last
// variant field wins.
func (d *protoDecoder) typedValue(b []byte, off, depth int) (tval.TypedValue, error) {
	if err := d.checkDepth(off, depth); err != nil {
		return tval.TypedValue{}, err
	}
	var result tval.Value
	for len(b) > 0 {
		f, err := d.next(b, off)
		if err != nil {
			return tval.TypedValue{}, err
		}
		v, n, ok, err := d.scalar(f)
		if err != nil {
			return tval.TypedValue{}, err
		}
		if ok {
			result = v
		} else {
			switch f.num {
			case fieldList, fieldMap, fieldSet, fieldRange:
				var body []byte
				var bodyOff int
				body, bodyOff, n, err = d.bytes(f)
				if err != nil {
					return tval.TypedValue{}, err
				}
				result, err = d.container(f.num, body, bodyOff, depth+1)
			default:
				n, err = d.skip(f)
			}
			if err != nil {
				return tval.TypedValue{}, err
			}
		}
		consumed := f.off - off + n
		b, off = b[consumed:], off+consumed
	}
	return tval.TypedValue{Value: result}, nil
}

func (d *protoDecoder) container(num protowire.Number, body []byte, off, depth int) (tval.Value, error) {
	switch num {
	case fieldList:
		l, err := d.list(body, off, depth)
		if err != nil {
			return nil, err
		}
		return *l, nil
	case fieldMap:
		return d.mapValue(body, off, depth)
	case fieldSet:
		return d.setValue(body, off, depth)
	default:
		return d.rangeValue(body, off, depth)
	}
}

// list decodes a ListValue body. Both packed and unpacked encodings of the
// numeric fields are accepted.
func (d *protoDecoder) list(b []byte, off, depth int) (*tval.ListValue, error) {
	if err := d.checkDepth(off, depth); err != nil {
		return nil, err
	}
	l := new(tval.ListValue)
	for len(b) > 0 {
		f, err := d.next(b, off)
		if err != nil {
			return nil, err
		}
		var n int
		switch {
		case f.num == fieldListInt64s && f.typ == protowire.BytesType:
			var packed []byte
			var packedOff int
			packed, packedOff, n, err = d.bytes(f)
			if err == nil {
				l.Int64Values, err = d.packedVarints(l.Int64Values, packed, packedOff)
			}
		case f.num == fieldListInt64s:
			var v uint64
			v, n, err = d.varint(f)
			l.Int64Values = append(l.Int64Values, int64(v))
		case f.num == fieldListFloat64s && f.typ == protowire.BytesType:
			var packed []byte
			var packedOff int
			packed, packedOff, n, err = d.bytes(f)
			if err == nil {
				l.Float64Values, err = d.packedFixed64s(l.Float64Values, packed, packedOff)
			}
		case f.num == fieldListFloat64s:
			var v uint64
			v, n, err = d.fixed64(f)
			l.Float64Values = append(l.Float64Values, math.Float64frombits(v))
		case f.num == fieldListBlobs:
			var v []byte
			v, _, n, err = d.bytes(f)
			if v == nil {
				v = []byte{}
			}
			l.BlobValues = append(l.BlobValues, bytes.Clone(v))
		case f.num == fieldListTexts:
			var v []byte
			v, _, n, err = d.bytes(f)
			l.TextValues = append(l.TextValues, string(v))
		case f.num == fieldListValues:
			var body []byte
			var bodyOff int
			body, bodyOff, n, err = d.bytes(f)
			if err == nil {
				var tv tval.TypedValue
				tv, err = d.typedValue(body, bodyOff, depth+1)
				l.Values = append(l.Values, tv)
			}
		default:
			n, err = d.skip(f)
		}
		if err != nil {
			return nil, err
		}
		consumed := f.off - off + n
		b, off = b[consumed:], off+consumed
	}
	return l, nil
}

func (d *protoDecoder) packedVarints(items []int64, b []byte, off int) ([]int64, error) {
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, d.errf(off, protowire.ParseError(n), "invalid packed int64")
		}
		items = append(items, int64(v))
		b, off = b[n:], off+n
	}
	return items, nil
}

func (d *protoDecoder) packedFixed64s(items []float64, b []byte, off int) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, d.errf(off, nil, "packed float64 length %d is not a multiple of 8", len(b))
	}
	for len(b) > 0 {
		v, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return nil, d.errf(off, protowire.ParseError(n), "invalid packed float64")
		}
		items = append(items, math.Float64frombits(v))
		b, off = b[n:], off+n
	}
	return items, nil
}

// nestedList decodes a singular ListValue field. A repeated occurrence
// replaces the earlier one rather than merging into it.
func (d *protoDecoder) nestedList(f protoField, depth int) (*tval.ListValue, int, error) {
	body, bodyOff, n, err := d.bytes(f)
	if err != nil {
		return nil, 0, err
	}
	l, err := d.list(body, bodyOff, depth)
	return l, n, err
}

func (d *protoDecoder) mapValue(b []byte, off, depth int) (tval.Value, error) {
	var m tval.MapValue
	for len(b) > 0 {
		f, err := d.next(b, off)
		if err != nil {
			return nil, err
		}
		var n int
		switch f.num {
		case fieldMapKeys:
			m.Keys, n, err = d.nestedList(f, depth+1)
		case fieldMapValues:
			m.Values, n, err = d.nestedList(f, depth+1)
		default:
			n, err = d.skip(f)
		}
		if err != nil {
			return nil, err
		}
		consumed := f.off - off + n
		b, off = b[consumed:], off+consumed
	}
	return m, nil
}

func (d *protoDecoder) setValue(b []byte, off, depth int) (tval.Value, error) {
	var s tval.SetValue
	for len(b) > 0 {
		f, err := d.next(b, off)
		if err != nil {
			return nil, err
		}
		var n int
		if f.num == fieldSetKeys {
			s.Keys, n, err = d.nestedList(f, depth+1)
		} else {
			n, err = d.skip(f)
		}
		if err != nil {
			return nil, err
		}
		consumed := f.off - off + n
		b, off = b[consumed:], off+consumed
	}
	return s, nil
}

func (d *protoDecoder) rangeValue(b []byte, off, depth int) (tval.Value, error) {
	var r tval.RangeValue
	for len(b) > 0 {
		f, err := d.next(b, off)
		if err != nil {
			return nil, err
		}
		var n int
		switch f.num {
		case fieldRangeStart, fieldRangeEnd:
			var body []byte
			var bodyOff int
			body, bodyOff, n, err = d.bytes(f)
			if err == nil {
				var rb *tval.RangeBound
				rb, err = d.bound(body, bodyOff)
				if f.num == fieldRangeStart {
					r.Start = rb
				} else {
					r.End = rb
				}
			}
		default:
			n, err = d.skip(f)
		}
		if err != nil {
			return nil, err
		}
		consumed := f.off - off + n
		b, off = b[consumed:], off+consumed
	}
	return r, nil
}

func (d *protoDecoder) bound(b []byte, off int) (*tval.RangeBound, error) {
	rb := new(tval.RangeBound)
	for len(b) > 0 {
		f, err := d.next(b, off)
		if err != nil {
			return nil, err
		}
		v, n, ok, err := d.scalar(f)
		if err != nil {
			return nil, err
		}
		switch {
		case ok:
			rb.Value = v
		case f.num == fieldBoundIncluded:
			var x uint64
			x, n, err = d.varint(f)
			rb.Included = x != 0
		default:
			n, err = d.skip(f)
		}
		if err != nil {
			return nil, err
		}
		consumed := f.off - off + n
		b, off = b[consumed:], off+consumed
	}
	return rb, nil
}

func (d *protoDecoder) typedExpr(b []byte, off int) (tval.TypedExpr, error) {
	var result tval.Expr
	for len(b) > 0 {
		f, err := d.next(b, off)
		if err != nil {
			return tval.TypedExpr{}, err
		}
		var n int
		if f.num >= 1 && int(f.num) < len(exprFields) {
			var body []byte
			var bodyOff int
			body, bodyOff, n, err = d.bytes(f)
			if err == nil {
				var call tval.Call
				call, err = d.call(body, bodyOff)
				result = tval.NewExpr(exprFields[f.num], call.Func, call.Args...)
			}
		} else {
			n, err = d.skip(f)
		}
		if err != nil {
			return tval.TypedExpr{}, err
		}
		consumed := f.off - off + n
		b, off = b[consumed:], off+consumed
	}
	return tval.TypedExpr{Expr: result}, nil
}

func (d *protoDecoder) call(b []byte, off int) (tval.Call, error) {
	var call tval.Call
	for len(b) > 0 {
		f, err := d.next(b, off)
		if err != nil {
			return call, err
		}
		var n int
		switch f.num {
		case fieldCallFunc:
			var v uint64
			v, n, err = d.varint(f)
			call.Func = tval.Func(int32(v))
		case fieldCallArgs:
			var body []byte
			var bodyOff int
			body, bodyOff, n, err = d.bytes(f)
			if err == nil {
				var tv tval.TypedValue
				tv, err = d.typedValue(body, bodyOff, 1)
				call.Args = append(call.Args, tv)
			}
		default:
			n, err = d.skip(f)
		}
		if err != nil {
			return call, err
		}
		consumed := f.off - off + n
		b, off = b[consumed:], off+consumed
	}
	return call, nil
}
