package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/andreyvit/tval"
)

// JSON layout: an absent value is null, a present one is an object with
// exactly one key named after its variant.
//
//	{"int64": 5}  {"float64": 1.5}  {"blob": "AQI="}  {"text": "x"}
//	{"list": {"int64": [1, 2]}}
//	{"map": {"keys": {...}, "values": {...}}}
//	{"set": {"keys": {...}}}
//	{"range": {"start": {"value": {"int64": 1}, "included": true}, "end": null}}
//
// Expressions are {"kind": "int64", "func": "add", "args": [...]}, with kind
// "any" for AnyExpr.
//
// Non-finite floats are written as the strings "NaN", "+Inf" and "-Inf".
type jsonValue struct {
	Int64   *int64     `json:"int64,omitempty"`
	Float64 *jsonFloat `json:"float64,omitempty"`
	Blob    *[]byte    `json:"blob,omitempty"`
	Text    *string    `json:"text,omitempty"`
	List    *jsonList  `json:"list,omitempty"`
	Map     *jsonMap   `json:"map,omitempty"`
	Set     *jsonSet   `json:"set,omitempty"`
	Range   *jsonRange `json:"range,omitempty"`
}

type jsonList struct {
	Int64   []int64      `json:"int64,omitempty"`
	Float64 []jsonFloat  `json:"float64,omitempty"`
	Blob    [][]byte     `json:"blob,omitempty"`
	Text    []string     `json:"text,omitempty"`
	Values  []*jsonValue `json:"values,omitempty"`
}

type jsonMap struct {
	Keys   *jsonList `json:"keys"`
	Values *jsonList `json:"values"`
}

type jsonSet struct {
	Keys *jsonList `json:"keys"`
}

type jsonRange struct {
	Start *jsonBound `json:"start"`
	End   *jsonBound `json:"end"`
}

type jsonBound struct {
	Value    *jsonValue `json:"value"`
	Included bool       `json:"included,omitempty"`
}

type jsonExpr struct {
	Kind string       `json:"kind"`
	Func string       `json:"func"`
	Args []*jsonValue `json:"args,omitempty"`
}

type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	default:
		return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
	}
}

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN":
			*f = jsonFloat(math.NaN())
		case "+Inf", "Inf":
			*f = jsonFloat(math.Inf(1))
		case "-Inf":
			*f = jsonFloat(math.Inf(-1))
		default:
			return fmt.Errorf("invalid float %q", s)
		}
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

var errInvalidUTF8 = errors.New("text is not valid UTF-8")

func appendJSONValue(buf []byte, tv tval.TypedValue) ([]byte, error) {
	if !validUTF8(tv.Value) {
		return buf, fmt.Errorf("failed to encode %v to JSON: %w", tv, errInvalidUTF8)
	}
	raw, err := json.Marshal(toJSONValue(tv.Value))
	if err != nil {
		return buf, fmt.Errorf("failed to encode %v to JSON: %w", tv, err)
	}
	return appendRaw(buf, raw), nil
}

func appendJSONExpr(buf []byte, e tval.TypedExpr) ([]byte, error) {
	var je *jsonExpr
	if e.Expr != nil {
		call := e.Expr.ExprCall()
		je = &jsonExpr{Kind: exprKindName(e.Expr.ExprKind()), Func: call.Func.String()}
		for _, arg := range call.Args {
			if !validUTF8(arg.Value) {
				return buf, fmt.Errorf("failed to encode %v to JSON: %w", e, errInvalidUTF8)
			}
			je.Args = append(je.Args, toJSONValue(arg.Value))
		}
	}
	raw, err := json.Marshal(je)
	if err != nil {
		return buf, fmt.Errorf("failed to encode %v to JSON: %w", e, err)
	}
	return appendRaw(buf, raw), nil
}

// validUTF8 reports whether every text in v is valid UTF-8. encoding/json
// would otherwise replace bad bytes with U+FFFD.
func validUTF8(v tval.Value) bool {
	switch v := v.(type) {
	case tval.TextValue:
		return utf8.ValidString(string(v))
	case tval.ListValue:
		return validListUTF8(&v)
	case tval.MapValue:
		return validListUTF8(v.Keys) && validListUTF8(v.Values)
	case tval.SetValue:
		return validListUTF8(v.Keys)
	case tval.RangeValue:
		return (v.Start == nil || validUTF8(v.Start.Value)) && (v.End == nil || validUTF8(v.End.Value))
	default:
		return true
	}
}

func validListUTF8(l *tval.ListValue) bool {
	if l == nil {
		return true
	}
	for _, s := range l.TextValues {
		if !utf8.ValidString(s) {
			return false
		}
	}
	for _, tv := range l.Values {
		if !validUTF8(tv.Value) {
			return false
		}
	}
	return true
}

func toJSONValue(v tval.Value) *jsonValue {
	switch v := v.(type) {
	case nil:
		return nil
	case tval.Int64Value:
		x := int64(v)
		return &jsonValue{Int64: &x}
	case tval.Float64Value:
		x := jsonFloat(v)
		return &jsonValue{Float64: &x}
	case tval.BlobValue:
		x := []byte(v)
		if x == nil {
			x = []byte{}
		}
		return &jsonValue{Blob: &x}
	case tval.TextValue:
		x := string(v)
		return &jsonValue{Text: &x}
	case tval.ListValue:
		return &jsonValue{List: toJSONList(&v)}
	case tval.MapValue:
		return &jsonValue{Map: &jsonMap{Keys: toJSONList(v.Keys), Values: toJSONList(v.Values)}}
	case tval.SetValue:
		return &jsonValue{Set: &jsonSet{Keys: toJSONList(v.Keys)}}
	case tval.RangeValue:
		return &jsonValue{Range: &jsonRange{Start: toJSONBound(v.Start), End: toJSONBound(v.End)}}
	default:
		panic(fmt.Errorf("wire: unknown value variant %T", v))
	}
}

func toJSONList(l *tval.ListValue) *jsonList {
	if l == nil {
		return nil
	}
	jl := &jsonList{
		Int64: l.Int64Values,
		Blob:  l.BlobValues,
		Text:  l.TextValues,
	}
	if len(l.Float64Values) > 0 {
		jl.Float64 = make([]jsonFloat, len(l.Float64Values))
		for i, v := range l.Float64Values {
			jl.Float64[i] = jsonFloat(v)
		}
	}
	for _, v := range l.Values {
		jl.Values = append(jl.Values, toJSONValue(v.Value))
	}
	return jl
}

func toJSONBound(b *tval.RangeBound) *jsonBound {
	if b == nil {
		return nil
	}
	return &jsonBound{Value: toJSONValue(b.Value), Included: b.Included}
}

type jsonDecoder struct {
	orig     []byte
	maxDepth int
}

func (d *jsonDecoder) errf(err error, format string, args ...any) error {
	return dataErrf(d.orig, 0, err, format, args...)
}

func decodeJSONValue(data []byte, maxDepth int) (tval.TypedValue, error) {
	d := &jsonDecoder{orig: data, maxDepth: maxDepth}
	var jv *jsonValue
	if err := json.Unmarshal(data, &jv); err != nil {
		return tval.TypedValue{}, d.jsonErr(err)
	}
	v, err := d.value(jv, 0)
	if err != nil {
		return tval.TypedValue{}, err
	}
	return tval.TypedValue{Value: v}, nil
}

func decodeJSONExpr(data []byte, maxDepth int) (tval.TypedExpr, error) {
	d := &jsonDecoder{orig: data, maxDepth: maxDepth}
	var je *jsonExpr
	if err := json.Unmarshal(data, &je); err != nil {
		return tval.TypedExpr{}, d.jsonErr(err)
	}
	if je == nil {
		return tval.TypedExpr{}, nil
	}
	kind, ok := exprKindByName(je.Kind)
	if !ok {
		return tval.TypedExpr{}, d.errf(ErrUnknownVariant, "expression kind %q", je.Kind)
	}
	fn, ok := funcByName(je.Func)
	if !ok {
		return tval.TypedExpr{}, d.errf(nil, "unknown func %q", je.Func)
	}
	var args []tval.TypedValue
	for _, ja := range je.Args {
		v, err := d.value(ja, 1)
		if err != nil {
			return tval.TypedExpr{}, err
		}
		args = append(args, tval.TypedValue{Value: v})
	}
	return tval.ToTypedExpr(tval.NewExpr(kind, fn, args...)), nil
}

// jsonErr keeps the byte offset that encoding/json reports for syntax errors.
func (d *jsonDecoder) jsonErr(err error) error {
	off := 0
	switch e := err.(type) {
	case *json.SyntaxError:
		off = int(e.Offset)
	case *json.UnmarshalTypeError:
		off = int(e.Offset)
	}
	return dataErrf(d.orig, off, err, "invalid JSON value")
}

func (d *jsonDecoder) value(jv *jsonValue, depth int) (tval.Value, error) {
	if jv == nil {
		return nil, nil
	}
	if depth > d.maxDepth {
		return nil, d.errf(ErrTooDeep, "exceeded max depth %d", d.maxDepth)
	}
	var result tval.Value
	var count int
	if jv.Int64 != nil {
		result, count = tval.Int64Value(*jv.Int64), count+1
	}
	if jv.Float64 != nil {
		result, count = tval.Float64Value(*jv.Float64), count+1
	}
	if jv.Blob != nil {
		b := *jv.Blob
		if b == nil {
			b = []byte{}
		}
		result, count = tval.BlobValue(b), count+1
	}
	if jv.Text != nil {
		result, count = tval.TextValue(*jv.Text), count+1
	}
	if jv.List != nil {
		l, err := d.list(jv.List, depth+1)
		if err != nil {
			return nil, err
		}
		result, count = *l, count+1
	}
	if jv.Map != nil {
		keys, err := d.list(jv.Map.Keys, depth+1)
		if err != nil {
			return nil, err
		}
		values, err := d.list(jv.Map.Values, depth+1)
		if err != nil {
			return nil, err
		}
		result, count = tval.MapValue{Keys: keys, Values: values}, count+1
	}
	if jv.Set != nil {
		keys, err := d.list(jv.Set.Keys, depth+1)
		if err != nil {
			return nil, err
		}
		result, count = tval.SetValue{Keys: keys}, count+1
	}
	if jv.Range != nil {
		start, err := d.bound(jv.Range.Start, depth+1)
		if err != nil {
			return nil, err
		}
		end, err := d.bound(jv.Range.End, depth+1)
		if err != nil {
			return nil, err
		}
		result, count = tval.RangeValue{Start: start, End: end}, count+1
	}
	if count != 1 {
		return nil, d.errf(ErrUnknownVariant, "value object has %d variant keys, wanted 1", count)
	}
	return result, nil
}

func (d *jsonDecoder) list(jl *jsonList, depth int) (*tval.ListValue, error) {
	if jl == nil {
		return nil, nil
	}
	if depth > d.maxDepth {
		return nil, d.errf(ErrTooDeep, "exceeded max depth %d", d.maxDepth)
	}
	l := &tval.ListValue{
		Int64Values: jl.Int64,
		BlobValues:  jl.Blob,
		TextValues:  jl.Text,
	}
	for i, b := range l.BlobValues {
		if b == nil {
			l.BlobValues[i] = []byte{}
		}
	}
	if len(jl.Float64) > 0 {
		l.Float64Values = make([]float64, len(jl.Float64))
		for i, v := range jl.Float64 {
			l.Float64Values[i] = float64(v)
		}
	}
	for _, jv := range jl.Values {
		v, err := d.value(jv, depth+1)
		if err != nil {
			return nil, err
		}
		l.Values = append(l.Values, tval.TypedValue{Value: v})
	}
	return l, nil
}

func (d *jsonDecoder) bound(jb *jsonBound, depth int) (*tval.RangeBound, error) {
	if jb == nil {
		return nil, nil
	}
	v, err := d.value(jb.Value, depth)
	if err != nil {
		return nil, err
	}
	rb := &tval.RangeBound{Included: jb.Included}
	if v != nil {
		bv, ok := v.(tval.BoundValue)
		if !ok {
			return nil, d.errf(nil, "bound holds %s, wanted a scalar", v.Kind())
		}
		rb.Value = bv
	}
	return rb, nil
}

func exprKindName(k tval.Kind) string {
	if k == tval.KindAbsent {
		return "any"
	}
	return k.String()
}

func exprKindByName(name string) (tval.Kind, bool) {
	for _, k := range exprFields[1:] {
		if exprKindName(k) == name {
			return k, true
		}
	}
	return 0, false
}

// funcByName also accepts the "func(N)" form that Func.String uses for
// numbers it has no name for.
func funcByName(name string) (tval.Func, bool) {
	for fn := tval.FuncNone; fn <= tval.FuncRemove; fn++ {
		if fn.String() == name {
			return fn, true
		}
	}
	if s, ok := strings.CutPrefix(name, "func("); ok {
		if s, ok = strings.CutSuffix(s, ")"); ok {
			if n, err := strconv.ParseInt(s, 10, 32); err == nil {
				return tval.Func(n), true
			}
		}
	}
	return 0, false
}
