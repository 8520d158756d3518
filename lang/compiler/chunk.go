package compiler

// A Constant is an entry in a chunk's constant pool. It is one of float64,
// string or *Funcode (the prototype of a nested function, referenced by the
// CLOSURE instruction). The machine materializes runtime values from the pool
// when it wraps a Funcode into a callable function, so the compiler never
// depends on the runtime representation of values.
type Constant interface{}

// A Chunk is the compiled code of one function: the instruction stream, a
// line number per code byte and the constant pool.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Constant
}

func (c *Chunk) write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// addConstant adds v to the pool and returns its index. Equal scalar
// constants share a single entry so that the repeated identifier and selector
// constants emitted by the compiler do not exhaust the pool. The second
// return value is false if the pool is full.
func (c *Chunk) addConstant(v Constant) (int, bool) {
	if _, isFn := v.(*Funcode); !isFn {
		for i, k := range c.Constants {
			if k == v {
				return i, true
			}
		}
	}
	if len(c.Constants) >= maxConstants {
		return 0, false
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1, true
}

// A Funcode is the code of a compiled function. The top-level script is
// itself represented by a Funcode with an empty name.
type Funcode struct {
	Name         string // function name, empty for the top-level script
	Arity        int    // number of declared parameters
	UpvalueCount int    // number of upvalues captured by the function
	Chunk        Chunk
}
