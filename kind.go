package tval

import "strconv"

type Kind int

const (
	KindAbsent Kind = iota
	KindInt64
	KindFloat64
	KindBlob
	KindText
	KindList
	KindMap
	KindSet
	KindRange
)

var kindNames = [...]string{
	KindAbsent:  "absent",
	KindInt64:   "int64",
	KindFloat64: "float64",
	KindBlob:    "blob",
	KindText:    "text",
	KindList:    "list",
	KindMap:     "map",
	KindSet:     "set",
	KindRange:   "range",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// KindOf returns the kind of v, or KindAbsent for nil.
func KindOf(v Value) Kind {
	if v == nil {
		return KindAbsent
	}
	return v.Kind()
}
