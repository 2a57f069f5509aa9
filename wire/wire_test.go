package wire_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/andreyvit/tval"
	"github.com/andreyvit/tval/wire"
	"github.com/andreyvit/tval/wire/wiretest"
)

var encodings = []wire.Encoding{wire.Protobuf, wire.MsgPack, wire.JSON}

func samples() []tval.TypedValue {
	return []tval.TypedValue{
		tval.Absent(),
		tval.ToTypedValue(int64(0)),
		tval.ToTypedValue(int64(-1)),
		tval.ToTypedValue(int64(math.MaxInt64)),
		tval.ToTypedValue(int64(math.MinInt64)),
		tval.ToTypedValue(true),
		tval.ToTypedValue(1.5),
		tval.ToTypedValue(math.Inf(-1)),
		tval.ToTypedValue(math.NaN()),
		tval.ToTypedValue(""),
		tval.ToTypedValue("hello, мир"),
		tval.ToTypedValue([]byte{}),
		tval.ToTypedValue([]byte{0, 1, 0xFF}),
		tval.Typed(tval.ListValue{}),
		tval.Typed(tval.ListOf([]int64{1, -2, 300})),
		tval.Typed(tval.ListOf([]float64{0.25, -1e300})),
		tval.Typed(tval.ListOf([][]byte{{}, {9}})),
		tval.Typed(tval.ListOf([]string{"", "x"})),
		tval.Typed(tval.ListOfValues([]tval.TypedValue{
			tval.ToTypedValue(int64(1)),
			tval.Absent(),
			tval.Typed(tval.ListOf([]string{"nested"})),
		})),
		tval.Typed(tval.MapOfEntries([]tval.Entry[string, int64]{{Key: "a", Value: 1}, {Key: "b", Value: 2}})),
		tval.Typed(tval.MapPair(tval.ListOf([]int64{1, 2, 3}), tval.ListOf([]int64{10}))),
		tval.Typed(tval.MapValue{}),
		tval.Typed(tval.MapValue{Keys: &tval.ListValue{}}),
		tval.Typed(tval.SortedSetOf([]string{"b", "a"})),
		tval.Typed(tval.SetValue{}),
		tval.Typed(tval.SetOfList(tval.ListValue{})),
		tval.Typed(tval.HalfOpen[int64](1, 2)),
		tval.Typed(tval.Closed([]byte{1}, []byte{2})),
		tval.Typed(tval.AtMost("z")),
		tval.Typed(tval.FullRange()),
		tval.Typed(tval.RangeOf(tval.Unbounded[float64](), tval.Unbounded[float64]())),
		tval.Typed(tval.RangeValue{Start: &tval.RangeBound{Included: true}}),
	}
}

func TestRoundTrip(t *testing.T) {
	for _, enc := range encodings {
		t.Run(enc.String(), func(t *testing.T) {
			c := wiretest.Codec(t, enc)
			for _, tv := range samples() {
				wiretest.RoundTrip(t, c, tv)
			}
		})
	}
}

func TestRoundTrip_Extracts(t *testing.T) {
	for _, enc := range encodings {
		c := wiretest.Codec(t, enc)
		m := map[string]float64{"x": 1, "y": 2}
		data := must(c.Marshal(tval.Typed(tval.MapOf(m))))
		tv := must(c.Unmarshal(data))
		got := must(tval.FromTyped(tv, tval.TryFromMapValue[string, float64]))
		if len(got) != 2 || got["x"] != 1 || got["y"] != 2 {
			t.Fatalf("%v: got %v, wanted %v", enc, got, m)
		}

		// an empty list decodes as an empty list of any type
		data = must(c.Marshal(tval.Typed(tval.ListOf([]int64{}))))
		tv = must(c.Unmarshal(data))
		if s := must(tval.FromTyped(tv, tval.TryFromListValue[string])); len(s) != 0 {
			t.Fatalf("%v: got %v, wanted empty", enc, s)
		}
	}
}

func TestProtobuf_Golden(t *testing.T) {
	wiretest.Golden(t, tval.Absent())
	wiretest.Golden(t, tval.ToTypedValue(int64(5)), "08 05")
	wiretest.Golden(t, tval.ToTypedValue(int64(-1)), "08 #-1")
	wiretest.Golden(t, tval.ToTypedValue(true), "08 01")
	wiretest.Golden(t, tval.ToTypedValue(1.5), "11 000000000000f83f")
	wiretest.Golden(t, tval.ToTypedValue([]byte{}), "1a 00")
	wiretest.Golden(t, tval.ToTypedValue("hi"), "22 02 'hi")
	wiretest.Golden(t, tval.Typed(tval.ListValue{}), "2a 00")
	wiretest.Golden(t, tval.Typed(tval.ListOf([]int64{1, 300})), "2a 05", "0a 03 01 #300")
	wiretest.Golden(t, tval.Typed(tval.ListOf([]string{"a", "b"})), "2a 06", "22 01 'a", "22 01 'b")
	wiretest.Golden(t, tval.Typed(tval.ListOfValues([]tval.TypedValue{{}})), "2a 02", "2a 00")
	wiretest.Golden(t, tval.Typed(tval.MapOfEntries([]tval.Entry[string, int64]{{Key: "a", Value: 1}})),
		"32 0a",
		"0a 03 22 01 'a /keys",
		"12 03 0a 01 01 /values")
	wiretest.Golden(t, tval.Typed(tval.SetValue{}), "3a 00")
	wiretest.Golden(t, tval.Typed(tval.SetOfList(tval.ListValue{})), "3a 02 0a 00")
	wiretest.Golden(t, tval.Typed(tval.HalfOpen[int64](1, 2)),
		"42 0a",
		"0a 04 08 01 28 01 /start",
		"12 02 08 02 /end")
	wiretest.Golden(t, tval.Typed(tval.FullRange()), "42 00")
	wiretest.Golden(t, tval.Typed(tval.RangeOf(tval.Unbounded[int64](), tval.Unbounded[int64]())), "42 04 0a 00 12 00")
}

func TestListSize_IsEmpty(t *testing.T) {
	lists := []tval.ListValue{
		{},
		{Int64Values: []int64{}},
		{Int64Values: []int64{0}},
		{Float64Values: []float64{0}},
		{BlobValues: [][]byte{{}}},
		{TextValues: []string{""}},
		{Values: []tval.TypedValue{{}}},
	}
	for _, l := range lists {
		if a, e := wire.ListSize(l) == 0, l.IsEmpty(); a != e {
			t.Errorf("ListSize(%v) == 0 is %v, IsEmpty is %v", l, a, e)
		}
	}
}

func TestSize(t *testing.T) {
	for _, tv := range samples() {
		if a, e := wire.Size(tv), len(wire.AppendTypedValue(nil, tv)); a != e {
			t.Errorf("Size(%v) = %d, wanted %d", tv, a, e)
		}
	}
}

func TestAppend_PreservesPrefix(t *testing.T) {
	for _, enc := range encodings {
		c := wiretest.Codec(t, enc)
		buf := must(c.Append([]byte("prefix"), tval.ToTypedValue("x")))
		if !bytes.HasPrefix(buf, []byte("prefix")) {
			t.Fatalf("%v: got %q, wanted prefix kept", enc, buf)
		}
		tv := must(c.Unmarshal(buf[len("prefix"):]))
		if !tv.Equal(tval.ToTypedValue("x")) {
			t.Fatalf("%v: got %v", enc, tv)
		}
	}
}

func TestProtobuf_DeepMixedNesting(t *testing.T) {
	tv := tval.ToTypedValue("leaf")
	for i := range 30 {
		switch i % 3 {
		case 0:
			tv = tval.Typed(tval.ListOfValues([]tval.TypedValue{tval.ToTypedValue(int64(i)), tv, tval.Absent()}))
		case 1:
			vals := tval.ListOfValues([]tval.TypedValue{tv})
			tv = tval.Typed(tval.MapPair(tval.ListOf([]string{"k"}), vals))
		case 2:
			tv = tval.Typed(tval.SetOfList(tval.ListOfValues([]tval.TypedValue{tv, tval.Typed(tval.HalfOpen[int64](0, 1))})))
		}
	}
	data := wire.AppendTypedValue([]byte("pre"), tv)
	if n := wire.Size(tv); n != len(data)-3 {
		t.Fatalf("Size = %d, wanted %d", n, len(data)-3)
	}
	got, err := wire.DecodeTypedValue(data[3:])
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(tv) {
		t.Fatalf("decoded value differs from original")
	}

	e := tval.ToTypedExpr(tval.NewExpr(tval.KindList, tval.FuncAppend, tv, tval.ToTypedValue(int64(1)), tv))
	edata := wire.AppendTypedExpr(nil, e)
	if n := wire.ExprSize(e); n != len(edata) {
		t.Fatalf("ExprSize = %d, wanted %d", n, len(edata))
	}
	if got := must(wire.DecodeTypedExpr(edata)); got.String() != e.String() {
		t.Fatalf("decoded expression differs from original")
	}
}

func TestDecode_Truncated(t *testing.T) {
	for _, enc := range encodings {
		c := wiretest.Codec(t, enc)
		for _, tv := range samples() {
			data := must(c.Marshal(tv))
			for n := 1; n < len(data); n++ {
				_, err := enc.DecodeValue(data[:n], wire.DefaultMaxDepth)
				var de *wire.DataError
				if !errors.As(err, &de) {
					t.Fatalf("%v: decoding %d of %d bytes of %v: got %v, wanted *DataError", enc, n, len(data), tv, err)
				}
			}
		}
	}
}

func TestDecode_DepthLimit(t *testing.T) {
	tv := tval.ToTypedValue(int64(1))
	for range 120 {
		tv = tval.Typed(tval.ListOfValues([]tval.TypedValue{tv}))
	}
	for _, enc := range encodings {
		data := must(wiretest.Codec(t, enc).Marshal(tv))

		_, err := enc.DecodeValue(data, wire.DefaultMaxDepth)
		if !errors.Is(err, wire.ErrTooDeep) {
			t.Fatalf("%v: got %v, wanted ErrTooDeep", enc, err)
		}

		deep := wire.NewCodec(wire.Options{Encoding: enc, MaxDepth: 1000})
		got, err := deep.Unmarshal(data)
		if err != nil {
			t.Fatalf("%v: with MaxDepth 1000: %v", enc, err)
		}
		if !got.Equal(tv) {
			t.Fatalf("%v: deep value did not round-trip", enc)
		}
	}
}

func TestProtobuf_Lenient(t *testing.T) {
	tests := []struct {
		data string
		e    tval.Value
	}{
		{"08 05 f8_01 07 /unknown-field-31", tval.Int64Value(5)},
		{"2a 04 08 01 08 02 /unpacked", tval.ListOf([]int64{1, 2})},
		{"2a 09 11 000000000000f03f /unpacked-float", tval.ListOf([]float64{1})},
		{"08 01 22 01 'x /last-variant-wins", tval.TextValue("x")},
		{"42 02 0a 00", tval.RangeValue{Start: &tval.RangeBound{}}},
	}
	for _, tt := range tests {
		tv, err := wire.DecodeTypedValue(wiretest.Expand(tt.data))
		if err != nil {
			t.Errorf("%s: %v", tt.data, err)
		} else if !tval.Equal(tv.Value, tt.e) {
			t.Errorf("%s: got %v, wanted %v", tt.data, tv, tt.e)
		}
	}
}

func TestProtobuf_Malformed(t *testing.T) {
	tests := []struct {
		data string
		off  int
	}{
		{"0a 00 /int64-field-as-bytes", 1},
		{"2a 03 12 01 00 /packed-float-not-multiple-of-8", 4},
		{"2a 02 0a 05 /packed-ints-overflow-list", 3},
		{"ff", 0},
	}
	for _, tt := range tests {
		_, err := wire.DecodeTypedValue(wiretest.Expand(tt.data))
		var de *wire.DataError
		if !errors.As(err, &de) {
			t.Errorf("%s: got %v, wanted *DataError", tt.data, err)
			continue
		}
		if de.Off != tt.off {
			t.Errorf("%s: error at %d, wanted %d: %v", tt.data, de.Off, tt.off, err)
		}
	}
}

func TestMsgPack_Malformed(t *testing.T) {
	tests := []string{
		"92 01 05 c0 /trailing-data",
		"92 09 05 /unknown-variant",
		"93 01 05 05 /wrong-arity",
		"93 08 92 c2 96 05 90 90 90 90 90 c0 /list-as-bound",
	}
	for _, data := range tests {
		_, err := wire.MsgPack.DecodeValue(wiretest.Expand(data), wire.DefaultMaxDepth)
		var de *wire.DataError
		if !errors.As(err, &de) {
			t.Errorf("%s: got %v, wanted *DataError", data, err)
		}
	}
	_, err := wire.MsgPack.DecodeValue(wiretest.Expand("92 09 05"), wire.DefaultMaxDepth)
	if !errors.Is(err, wire.ErrUnknownVariant) {
		t.Errorf("got %v, wanted ErrUnknownVariant", err)
	}
}

func TestJSON_Format(t *testing.T) {
	c := wiretest.Codec(t, wire.JSON)
	tests := []struct {
		tv tval.TypedValue
		e  string
	}{
		{tval.Absent(), `null`},
		{tval.ToTypedValue(int64(5)), `{"int64":5}`},
		{tval.ToTypedValue(math.Inf(1)), `{"float64":"+Inf"}`},
		{tval.ToTypedValue([]byte{1, 2}), `{"blob":"AQI="}`},
		{tval.Typed(tval.ListValue{}), `{"list":{}}`},
		{tval.Typed(tval.MapValue{}), `{"map":{"keys":null,"values":null}}`},
		{tval.Typed(tval.AtLeast[int64](1)), `{"range":{"start":{"value":{"int64":1},"included":true},"end":{"value":null}}}`},
	}
	for _, tt := range tests {
		if a := string(must(c.Marshal(tt.tv))); a != tt.e {
			t.Errorf("Marshal(%v) = %s, wanted %s", tt.tv, a, tt.e)
		}
	}

	for _, bad := range []string{`{}`, `{"int64":1,"text":"x"}`, `{"range":{"start":{"value":{"list":{}}},"end":null}}`, `[`} {
		_, err := wire.JSON.DecodeValue([]byte(bad), wire.DefaultMaxDepth)
		var de *wire.DataError
		if !errors.As(err, &de) {
			t.Errorf("%s: got %v, wanted *DataError", bad, err)
		}
	}
}

func TestJSON_RejectsInvalidUTF8(t *testing.T) {
	bad := "a\xffb"
	values := []tval.TypedValue{
		tval.ToTypedValue(bad),
		tval.Typed(tval.ListOf([]string{"ok", bad})),
		tval.Typed(tval.ListOfValues([]tval.TypedValue{tval.ToTypedValue(bad)})),
		tval.Typed(tval.MapOf(map[string]int64{bad: 1})),
		tval.Typed(tval.SortedSetOf([]string{bad})),
		tval.Typed(tval.AtLeast(bad)),
	}
	c := wiretest.Codec(t, wire.JSON)
	for _, tv := range values {
		if _, err := c.Marshal(tv); err == nil {
			t.Errorf("Marshal(%v) succeeded, wanted invalid UTF-8 error", tv)
		}
	}

	e := tval.ToTypedExpr(tval.NewExpr(tval.KindText, tval.FuncAppend, tval.ToTypedValue(bad)))
	if _, err := c.MarshalExpr(e); err == nil {
		t.Errorf("MarshalExpr(%v) succeeded, wanted invalid UTF-8 error", e)
	}

	// binary encodings carry the bytes through unchanged
	for _, enc := range []wire.Encoding{wire.Protobuf, wire.MsgPack} {
		wiretest.RoundTrip(t, wiretest.Codec(t, enc), tval.ToTypedValue(bad))
	}
}

func TestExpr_RoundTrip(t *testing.T) {
	exprs := []tval.TypedExpr{
		{},
		tval.ToTypedExpr(tval.AnyExpr{Call: tval.Call{Func: tval.FuncLoad}}),
		tval.ToTypedExpr(tval.NewExpr(tval.KindInt64, tval.FuncAdd, tval.ToTypedValue(int64(5)))),
		tval.ToTypedExpr(tval.NewExpr(tval.KindList, tval.FuncPushFront, tval.ToTypedValue("x"), tval.Absent())),
		tval.ToTypedExpr(tval.NewExpr(tval.KindMap, tval.FuncStore, tval.Typed(tval.MapOf(map[string]int64{"k": 1})))),
		tval.ToTypedExpr(tval.NewExpr(tval.KindSet, tval.FuncContains, tval.ToTypedValue([]byte{1}))),
	}
	for _, enc := range encodings {
		c := wiretest.Codec(t, enc)
		for _, e := range exprs {
			data := must(c.MarshalExpr(e))
			got := must(c.UnmarshalExpr(data))
			if got.String() != e.String() {
				t.Errorf("%v: got %v, wanted %v", enc, got, e)
			}
		}
	}

	e := tval.ToTypedExpr(tval.NewExpr(tval.KindInt64, tval.FuncAdd, tval.ToTypedValue(int64(5))))
	wiretest.BytesEq(t, wire.AppendTypedExpr(nil, e), wiretest.Expand("12 06 08 04 12 02 08 05"))
	if n := wire.ExprSize(e); n != 8 {
		t.Errorf("ExprSize = %d, wanted 8", n)
	}
}

func TestCodec_LogsDecodeFailures(t *testing.T) {
	var buf bytes.Buffer
	c := wire.NewCodec(wire.Options{
		Encoding:  wire.MsgPack,
		DebugName: "test",
		Logger:    slog.New(slog.NewTextHandler(&buf, nil)),
	})
	_, err := c.Unmarshal([]byte{0x92, 0x01})
	if err == nil {
		t.Fatal("Unmarshal succeeded, wanted error")
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "codec=test") || !strings.Contains(out, "data=9201") {
		t.Fatalf("log output = %q, wanted warning with codec and data", out)
	}
}

func TestEncoding_Names(t *testing.T) {
	for _, enc := range encodings {
		if a := must(wire.ParseEncoding(enc.String())); a != enc {
			t.Errorf("ParseEncoding(%q) = %v", enc.String(), a)
		}
	}
	if _, err := wire.ParseEncoding("xml"); err == nil {
		t.Errorf("ParseEncoding(xml) succeeded")
	}
	if a := wire.Encoding(7).String(); a != "encoding(7)" {
		t.Errorf("String() = %q", a)
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
