package v1alpha_test

import (
	"reflect"
	"testing"

	"github.com/andreyvit/tval"
	"github.com/andreyvit/tval/v1alpha"
	"github.com/andreyvit/tval/wire"
	"github.com/andreyvit/tval/wire/wiretest"
)

func TestFrom_InteropsWithTval(t *testing.T) {
	v := v1alpha.From("hello")
	s, err := tval.TryFromTypedValue[string](v)
	if err != nil || s != "hello" {
		t.Fatalf("TryFromTypedValue = %q, %v", s, err)
	}

	var variant v1alpha.Variant = tval.Int64Value(7)
	n, err := v1alpha.TryFrom[int64](v1alpha.FromVariant(variant))
	if err != nil || n != 7 {
		t.Fatalf("TryFrom = %d, %v", n, err)
	}

	if !v1alpha.Empty().IsAbsent() {
		t.Fatalf("Empty() is present")
	}
}

func TestTryFrom_Strict(t *testing.T) {
	single := tval.Typed(tval.ListOf([]int64{5}))

	_, err := v1alpha.TryFrom[int64](single)
	if !tval.IsMismatch(err) {
		t.Fatalf("TryFrom(singleton) err = %v, wanted mismatch", err)
	}
	got, ok := tval.Recover[v1alpha.Value](err)
	if !ok || !tval.Equal(got.Value, single.Value) {
		t.Fatalf("Recover = %v, %v, wanted original singleton", got, ok)
	}

	n, err := tval.TryFromValueOrSingleton[int64](single.Value)
	if err != nil || n != 5 {
		t.Fatalf("TryFromValueOrSingleton = %d, %v", n, err)
	}
}

func TestTryFromOptional(t *testing.T) {
	_, ok, err := v1alpha.TryFromOptional[float64](v1alpha.Empty())
	if ok || err != nil {
		t.Fatalf("TryFromOptional(empty) = %v, %v", ok, err)
	}
	f, ok, err := v1alpha.TryFromOptional[float64](v1alpha.From(2.5))
	if !ok || err != nil || f != 2.5 {
		t.Fatalf("TryFromOptional(2.5) = %v, %v, %v", f, ok, err)
	}
}

func TestRepeated(t *testing.T) {
	r := v1alpha.Repeated([]string{"a", "b"})
	items, err := v1alpha.FromRepeated[string](r)
	if err != nil || !reflect.DeepEqual(items, []string{"a", "b"}) {
		t.Fatalf("FromRepeated = %v, %v", items, err)
	}
	items, err = v1alpha.TryFromRepeated[string](v1alpha.FromVariant(r))
	if err != nil || len(items) != 2 {
		t.Fatalf("TryFromRepeated = %v, %v", items, err)
	}
	if _, err := v1alpha.FromRepeated[int64](r); !tval.IsMismatch(err) {
		t.Fatalf("FromRepeated[int64] err = %v, wanted mismatch", err)
	}

	x, err := v1alpha.SingleFromRepeated[int64](v1alpha.Repeated([]int64{9}))
	if err != nil || x != 9 {
		t.Fatalf("SingleFromRepeated = %d, %v", x, err)
	}
}

func TestOptionalFromRepeated(t *testing.T) {
	tests := []struct {
		r      v1alpha.RepeatedValue
		v      int64
		ok     bool
		failed bool
	}{
		{v1alpha.RepeatedValue{}, 0, false, false},
		{v1alpha.Repeated([]int64{}), 0, false, false},
		{v1alpha.Repeated([]int64{3}), 3, true, false},
		{v1alpha.Repeated([]int64{3, 4}), 0, false, true},
		{v1alpha.Repeated([]string{"x"}), 0, false, true},
	}
	for _, tt := range tests {
		v, ok, err := v1alpha.OptionalFromRepeated[int64](tt.r)
		if (err != nil) != tt.failed {
			t.Errorf("OptionalFromRepeated(%v) err = %v, wanted failed=%v", tt.r, err, tt.failed)
			continue
		}
		if v != tt.v || ok != tt.ok {
			t.Errorf("OptionalFromRepeated(%v) = %v, %v, wanted %v, %v", tt.r, v, ok, tt.v, tt.ok)
		}
	}
}

func TestMapping(t *testing.T) {
	m := map[string]int64{"a": 1, "b": 2}
	mv := v1alpha.Mapping(m)
	back, err := v1alpha.FromMapping[string, int64](mv)
	if err != nil || !reflect.DeepEqual(back, m) {
		t.Fatalf("FromMapping = %v, %v", back, err)
	}
	back, err = v1alpha.TryFromMapping[string, int64](v1alpha.FromVariant(mv))
	if err != nil || !reflect.DeepEqual(back, m) {
		t.Fatalf("TryFromMapping = %v, %v", back, err)
	}
	if _, err := v1alpha.TryFromMapping[string, int64](v1alpha.From("x")); !tval.IsMismatch(err) {
		t.Fatalf("TryFromMapping(text) err = %v, wanted mismatch", err)
	}
}

func TestSet(t *testing.T) {
	s := map[int64]struct{}{1: {}, 3: {}}
	sv := v1alpha.Set(s)
	back, err := v1alpha.FromSet[int64](sv)
	if err != nil || !reflect.DeepEqual(back, s) {
		t.Fatalf("FromSet = %v, %v", back, err)
	}
	back, err = v1alpha.TryFromSet[int64](v1alpha.FromVariant(sv))
	if err != nil || !reflect.DeepEqual(back, s) {
		t.Fatalf("TryFromSet = %v, %v", back, err)
	}
}

func TestRange(t *testing.T) {
	rv := v1alpha.Range(tval.Included[int64](1), tval.Unbounded[int64]())
	start, end, err := v1alpha.FromRange[int64](rv)
	if err != nil || start != tval.Included[int64](1) || end != tval.Unbounded[int64]() {
		t.Fatalf("FromRange = %v, %v, %v", start, end, err)
	}
	b, err := v1alpha.TryFromRange[int64](v1alpha.FromVariant(rv))
	if err != nil || b.Start.Value != 1 || b.End.Kind != tval.BoundUnbounded {
		t.Fatalf("TryFromRange = %v, %v", b, err)
	}
	if _, err := v1alpha.TryFromRange[string](v1alpha.FromVariant(rv)); !tval.IsMismatch(err) {
		t.Fatalf("TryFromRange[string] err = %v, wanted mismatch", err)
	}
}

func TestWireRoundTrip(t *testing.T) {
	v := v1alpha.FromVariant(v1alpha.Mapping(map[string]float64{"pi": 3.14}))
	for _, enc := range []wire.Encoding{wire.Protobuf, wire.MsgPack, wire.JSON} {
		t.Run(enc.String(), func(t *testing.T) {
			wiretest.RoundTrip(t, wiretest.Codec(t, enc), v)
		})
	}
}

func TestToTypedExpr(t *testing.T) {
	e := v1alpha.ToTypedExpr(v1alpha.AnyExpr{Call: v1alpha.Call{Func: tval.FuncLoad}})
	if k := e.Expr.ExprKind(); k != tval.KindAbsent {
		t.Fatalf("ExprKind() = %v, wanted absent", k)
	}
}
