package stdlib

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mna/nppc2/lang/machine"
)

var mathFuncs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"abs":  math.Abs,
	"sqrt": math.Sqrt,
}

// mathNative wraps a one-argument math function as a native.
func mathNative(name string) machine.NativeFn {
	fn := mathFuncs[name]
	return func(_ *machine.VM, args []machine.Value) (machine.Value, error) {
		if err := wantArgs(args, 1); err != nil {
			return nil, err
		}
		x, err := numArg(args, 0)
		if err != nil {
			return nil, err
		}
		return machine.Number(fn(x)), nil
	}
}

func twoNumArgs(args []machine.Value) (float64, float64, error) {
	if err := wantArgs(args, 2); err != nil {
		return 0, 0, err
	}
	a, err := numArg(args, 0)
	if err != nil {
		return 0, 0, err
	}
	b, err := numArg(args, 1)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func hypotNative(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	a, b, err := twoNumArgs(args)
	if err != nil {
		return nil, err
	}
	return machine.Number(math.Hypot(a, b)), nil
}

func powrNative(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	a, b, err := twoNumArgs(args)
	if err != nil {
		return nil, err
	}
	return machine.Number(math.Pow(a, b)), nil
}

// mdlsNative reports whether a is evenly divisible by b, on the truncated
// integer values of its arguments.
func mdlsNative(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	a, b, err := twoNumArgs(args)
	if err != nil {
		return nil, err
	}
	if int(b) == 0 {
		return nil, fmt.Errorf("Division by zero.")
	}
	return machine.Bool(int(a)%int(b) == 0), nil
}

// randNative returns a random integer in the inclusive range [a, b].
func randNative(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	a, b, err := twoNumArgs(args)
	if err != nil {
		return nil, err
	}
	lo, hi := int(a), int(b)
	if hi < lo {
		return nil, fmt.Errorf("Argument 2 must be greater than or equal to argument 1.")
	}
	return machine.Number(rand.Intn(hi-lo+1) + lo), nil
}
