// Package machine implements the virtual machine that executes the
// bytecode-compiled form of the source code. It owns the runtime
// representation of values, the object heap and its garbage collector, the
// global name table and the string intern table. A VM is an explicit value;
// nothing in this package is process-global, so multiple machines can coexist
// in one process as long as each is used from a single goroutine.
package machine

import "strconv"

// Value is the interface implemented by any value manipulated by the machine:
// Nil, Bool, Number, or one of the heap object types.
type Value interface {
	// String returns the string representation of the value, as rendered by
	// the broadcast natives.
	String() string

	// Type returns a short string describing the value's type.
	Type() string
}

// NilType is the type of the Nil value.
type NilType struct{}

// Nil is the null value.
var Nil Value = NilType{}

func (NilType) String() string { return "[NULL]" }
func (NilType) Type() string   { return "null" }

// Bool is the type of the True and False values.
type Bool bool

const (
	True  Bool = true
	False Bool = false
)

func (b Bool) String() string {
	if b {
		return "[TRUE]"
	}
	return "[FALSE]"
}
func (b Bool) Type() string { return "bool" }

// Number is a double-precision floating point value, the only numeric type of
// the language.
type Number float64

// String formats like C's printf %g: at most 6 significant digits, trailing
// zeros removed.
func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', 6, 64) }
func (n Number) Type() string   { return "number" }

// Truth returns the truthiness of v: Nil and False are falsey, everything
// else is truthy.
func Truth(v Value) Bool {
	switch v := v.(type) {
	case NilType:
		return False
	case Bool:
		return v
	}
	return True
}

// IsObject reports whether v is a heap-allocated value.
func IsObject(v Value) bool {
	_, ok := v.(object)
	return ok
}

// Equal reports whether two values are equal: numbers compare numerically,
// everything else by identity. Strings are interned, so identity equality is
// content equality for them.
func Equal(x, y Value) bool {
	if xn, ok := x.(Number); ok {
		yn, ok := y.(Number)
		return ok && xn == yn
	}
	return x == y
}
