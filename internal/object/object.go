package object

import (
	"math"
	"strconv"
)

type Type string

const (
	BOOLEAN_OBJ Type = "BOOLEAN"
	NIL_OBJ     Type = "NIL"
	NUMBER_OBJ  Type = "NUMBER"
	STRING_OBJ  Type = "STRING"
)

// Object is a runtime value. The set of implementations is closed: Boolean,
// Nil and Number are plain values, *String points into a heap owned by a VM.
type Object interface {
	Type() Type
	Inspect() string
	sealed()
}

// HeapObject is an Object whose storage belongs to a heap arena.
type HeapObject interface {
	Object
	Cost() int64
}

// Interner returns the canonical string object for the given content. It
// fails only when the allocation is refused.
type Interner interface {
	CopyString(s string) (*String, error)
}

type Boolean struct{ Value bool }

func (Boolean) Type() Type { return BOOLEAN_OBJ }
func (b Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (Boolean) sealed() {}

type Nil struct{}

func (Nil) Type() Type      { return NIL_OBJ }
func (Nil) Inspect() string { return "nil" }
func (Nil) sealed()         {}

type Number struct{ Value float64 }

func (Number) Type() Type { return NUMBER_OBJ }
func (n Number) Inspect() string {
	switch {
	case math.IsNaN(n.Value):
		return "nan"
	case math.IsInf(n.Value, 1):
		return "inf"
	case math.IsInf(n.Value, -1):
		return "-inf"
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}
func (Number) sealed() {}

// String is immutable once constructed; Hash is the FNV-1a hash of Chars.
type String struct {
	Chars string
	Hash  uint32
}

func (*String) Type() Type        { return STRING_OBJ }
func (s *String) Inspect() string { return s.Chars }
func (*String) sealed()           {}
func (s *String) Cost() int64     { return CostString(len(s.Chars)) }
func (s *String) Len() int        { return len(s.Chars) }

var (
	True  Object = Boolean{Value: true}
	False Object = Boolean{Value: false}
	Null  Object = Nil{}
)

func NativeBool(b bool) Object {
	if b {
		return True
	}
	return False
}

// IsFalsey reports whether o counts as false in a condition: false, nil and
// the number zero.
func IsFalsey(o Object) bool {
	switch v := o.(type) {
	case Boolean:
		return !v.Value
	case Nil:
		return true
	case Number:
		return v.Value == 0
	default:
		return false
	}
}

// Equal compares two values. Values of different types are never equal;
// numbers use IEEE equality and strings compare by content.
func Equal(a, b Object) bool {
	switch av := a.(type) {
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av.Value == bv.Value
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Number:
		bv, ok := b.(Number)
		return ok && av.Value == bv.Value
	case *String:
		bv, ok := b.(*String)
		if !ok {
			return false
		}
		if av == bv {
			return true
		}
		return len(av.Chars) == len(bv.Chars) && av.Chars == bv.Chars
	default:
		return false
	}
}
