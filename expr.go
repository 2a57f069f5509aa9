package tval

import "strconv"

// Func names the operation an expression applies to its target object.
type Func int32

const (
	FuncNone Func = iota
	FuncLoad
	FuncStore
	FuncReset
	FuncAdd
	FuncSub
	FuncLen
	FuncAppend
	FuncPopBack
	FuncPushFront
	FuncPopFront
	FuncContains
	FuncRemove
)

var funcNames = [...]string{
	FuncNone:      "none",
	FuncLoad:      "load",
	FuncStore:     "store",
	FuncReset:     "reset",
	FuncAdd:       "add",
	FuncSub:       "sub",
	FuncLen:       "len",
	FuncAppend:    "append",
	FuncPopBack:   "pop_back",
	FuncPushFront: "push_front",
	FuncPopFront:  "pop_front",
	FuncContains:  "contains",
	FuncRemove:    "remove",
}

func (f Func) String() string {
	if f >= 0 && int(f) < len(funcNames) {
		return funcNames[f]
	}
	return "func(" + strconv.Itoa(int(f)) + ")"
}

// Call is the body shared by every typed expression.
type Call struct {
	Func Func
	Args []TypedValue
}

// Expr is one variant of the expression union. The variant names the type of
// object the call operates on. Expressions are plain data; nothing here
// evaluates them.
type Expr interface {
	ExprKind() Kind
	ExprCall() Call
	isExpr()
}

type (
	// AnyExpr operates on an object of any (or unknown) type.
	AnyExpr  struct{ Call }
	I64Expr  struct{ Call }
	F64Expr  struct{ Call }
	BlobExpr struct{ Call }
	TextExpr struct{ Call }
	ListExpr struct{ Call }
	MapExpr  struct{ Call }
	SetExpr  struct{ Call }
)

func (AnyExpr) ExprKind() Kind  { return KindAbsent }
func (I64Expr) ExprKind() Kind  { return KindInt64 }
func (F64Expr) ExprKind() Kind  { return KindFloat64 }
func (BlobExpr) ExprKind() Kind { return KindBlob }
func (TextExpr) ExprKind() Kind { return KindText }
func (ListExpr) ExprKind() Kind { return KindList }
func (MapExpr) ExprKind() Kind  { return KindMap }
func (SetExpr) ExprKind() Kind  { return KindSet }

func (e AnyExpr) ExprCall() Call  { return e.Call }
func (e I64Expr) ExprCall() Call  { return e.Call }
func (e F64Expr) ExprCall() Call  { return e.Call }
func (e BlobExpr) ExprCall() Call { return e.Call }
func (e TextExpr) ExprCall() Call { return e.Call }
func (e ListExpr) ExprCall() Call { return e.Call }
func (e MapExpr) ExprCall() Call  { return e.Call }
func (e SetExpr) ExprCall() Call  { return e.Call }

func (AnyExpr) isExpr()  {}
func (I64Expr) isExpr()  {}
func (F64Expr) isExpr()  {}
func (BlobExpr) isExpr() {}
func (TextExpr) isExpr() {}
func (ListExpr) isExpr() {}
func (MapExpr) isExpr()  {}
func (SetExpr) isExpr()  {}

// TypedExpr wraps an optional Expr.
type TypedExpr struct {
	Expr Expr
}

func ToTypedExpr(e Expr) TypedExpr {
	return TypedExpr{Expr: e}
}

// NewExpr builds the expression variant that operates on objects of the given
// kind. KindAbsent and KindRange produce an AnyExpr.
func NewExpr(kind Kind, fn Func, args ...TypedValue) Expr {
	call := Call{Func: fn, Args: args}
	switch kind {
	case KindInt64:
		return I64Expr{call}
	case KindFloat64:
		return F64Expr{call}
	case KindBlob:
		return BlobExpr{call}
	case KindText:
		return TextExpr{call}
	case KindList:
		return ListExpr{call}
	case KindMap:
		return MapExpr{call}
	case KindSet:
		return SetExpr{call}
	default:
		return AnyExpr{call}
	}
}
