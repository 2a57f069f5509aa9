package tval

import (
	"encoding/hex"
	"log/slog"
	"strconv"
	"strings"
)

const absentStr = "<absent>"

func (v Int64Value) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float64Value) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v BlobValue) String() string    { return "x'" + hex.EncodeToString(v) + "'" }
func (v TextValue) String() string    { return strconv.Quote(string(v)) }

func (l ListValue) String() string {
	var buf strings.Builder
	writeList(&buf, &l)
	return buf.String()
}

func (m MapValue) String() string {
	var buf strings.Builder
	if m.Keys != nil && m.Values != nil && m.Keys.Len() == m.Values.Len() {
		keys, values := listItemStrings(m.Keys), listItemStrings(m.Values)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(k)
			buf.WriteString(": ")
			buf.WriteString(values[i])
		}
		buf.WriteByte('}')
		return buf.String()
	}
	buf.WriteString("map{keys: ")
	writeList(&buf, m.Keys)
	buf.WriteString(", values: ")
	writeList(&buf, m.Values)
	buf.WriteByte('}')
	return buf.String()
}

func (s SetValue) String() string {
	var buf strings.Builder
	buf.WriteString("set")
	writeList(&buf, s.Keys)
	return buf.String()
}

func (r RangeValue) String() string {
	var buf strings.Builder
	switch {
	case r.Start == nil || r.Start.Value == nil:
		buf.WriteString("(-inf")
	case r.Start.Included:
		buf.WriteByte('[')
		buf.WriteString(r.Start.Value.String())
	default:
		buf.WriteByte('(')
		buf.WriteString(r.Start.Value.String())
	}
	buf.WriteString(", ")
	switch {
	case r.End == nil || r.End.Value == nil:
		buf.WriteString("+inf)")
	case r.End.Included:
		buf.WriteString(r.End.Value.String())
		buf.WriteByte(']')
	default:
		buf.WriteString(r.End.Value.String())
		buf.WriteByte(')')
	}
	return buf.String()
}

func (b RangeBound) String() string {
	switch {
	case b.Value == nil:
		return "unbounded"
	case b.Included:
		return "included " + b.Value.String()
	default:
		return "excluded " + b.Value.String()
	}
}

func (tv TypedValue) String() string {
	if tv.Value == nil {
		return absentStr
	}
	return tv.Value.String()
}

// LogValue implements slog.LogValuer.
func (tv TypedValue) LogValue() slog.Value {
	if tv.Value == nil {
		return slog.StringValue(absentStr)
	}
	return slog.GroupValue(
		slog.String("kind", tv.Value.Kind().String()),
		slog.String("value", tv.Value.String()),
	)
}

func (e TypedExpr) String() string {
	if e.Expr == nil {
		return absentStr
	}
	var buf strings.Builder
	call := e.Expr.ExprCall()
	buf.WriteString(e.Expr.ExprKind().String())
	buf.WriteByte('.')
	buf.WriteString(call.Func.String())
	buf.WriteByte('(')
	for i, arg := range call.Args {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(arg.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

func writeList(buf *strings.Builder, l *ListValue) {
	if l == nil {
		buf.WriteString("<missing>")
		return
	}
	buf.WriteByte('[')
	for i, s := range listItemStrings(l) {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(s)
	}
	buf.WriteByte(']')
}

func listItemStrings(l *ListValue) []string {
	items := make([]string, 0, l.Len())
	for _, v := range l.Int64Values {
		items = append(items, Int64Value(v).String())
	}
	for _, v := range l.Float64Values {
		items = append(items, Float64Value(v).String())
	}
	for _, v := range l.BlobValues {
		items = append(items, BlobValue(v).String())
	}
	for _, v := range l.TextValues {
		items = append(items, TextValue(v).String())
	}
	for _, v := range l.Values {
		items = append(items, v.String())
	}
	return items
}
