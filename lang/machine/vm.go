package machine

import (
	"fmt"
	"io"
	"os"

	"github.com/dolthub/swiss"

	"github.com/mna/nppc2/lang/compiler"
	"github.com/mna/nppc2/lang/scanner"
)

// Result is the outcome of interpreting a source buffer.
type Result int8

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

// Config holds the tuning knobs of a machine. The zero value is not usable,
// use DefaultConfig (or parse the NPPC2_* environment, as the CLI does) to
// get the standard capacities.
type Config struct {
	// MaxFrames is the call frame capacity; recursing deeper is a "Stack
	// overflow." runtime error.
	MaxFrames int `env:"MAX_FRAMES" envDefault:"64"`

	// StackSize is the value stack capacity in slots.
	StackSize int `env:"STACK_SIZE" envDefault:"16384"`

	// GCThreshold is the initial bytesAllocated threshold that triggers a
	// collection. After each collection the threshold is set to twice the
	// surviving byte count.
	GCThreshold int `env:"GC_THRESHOLD" envDefault:"1048576"`

	// GCStress runs a collection on every allocation. Slow; only useful to
	// shake out missing GC roots.
	GCStress bool `env:"GC_STRESS" envDefault:"false"`
}

// DefaultConfig returns the standard capacities: 64 frames, 16384 value
// slots, 1 MiB initial GC threshold.
func DefaultConfig() Config {
	return Config{MaxFrames: 64, StackSize: 16384, GCThreshold: 1 << 20}
}

// frame records one active invocation: the closure being run, the
// instruction pointer and the stack index of slot 0 of the invocation (the
// callee itself, followed by its parameters and locals).
type frame struct {
	closure *Closure
	ip      int
	slots   int
}

// VM is a single instance of the virtual machine. It is not safe for
// concurrent use; one execution is in flight at a time.
type VM struct {
	// Stdout, Stderr and Stdin are the standard I/O abstractions for the
	// machine and its natives. If nil, os.Stdout, os.Stderr and os.Stdin are
	// used, respectively.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	cfg        Config
	stack      []Value
	stackTop   int
	frames     []frame
	frameCount int

	openUpvalues *Upvalue

	globals *table
	strings *swiss.Map[string, *String] // intern table, content -> object
	init    *String                     // the interned "init", a permanent GC root

	// GC state
	objects        object
	bytesAllocated int
	nextGC         int
	grayStack      []object
}

// New constructs a machine with the given configuration and interns the
// "init" string. Natives are not defined here; the stdlib package registers
// the host functions on a new machine.
func New(cfg Config) *VM {
	vm := &VM{
		cfg:     cfg,
		stack:   make([]Value, cfg.StackSize),
		frames:  make([]frame, cfg.MaxFrames),
		globals: newTable(),
		strings: swiss.NewMap[string, *String](64),
		nextGC:  cfg.GCThreshold,
	}
	vm.init = vm.CopyString("init")
	return vm
}

// Free releases everything the machine owns: the globals table, the intern
// table and every object still on the all-objects list. The machine must not
// be used afterwards.
func (vm *VM) Free() {
	vm.globals = newTable()
	vm.strings = swiss.NewMap[string, *String](8)
	vm.init = nil
	vm.resetStack()
	for o := vm.objects; o != nil; {
		next := o.header().next
		o.header().next = nil
		o = next
	}
	vm.objects = nil
	vm.bytesAllocated = 0
}

func (vm *VM) stdout() io.Writer {
	if vm.Stdout != nil {
		return vm.Stdout
	}
	return os.Stdout
}

func (vm *VM) stderr() io.Writer {
	if vm.Stderr != nil {
		return vm.Stderr
	}
	return os.Stderr
}

func (vm *VM) stdin() io.Reader {
	if vm.Stdin != nil {
		return vm.Stdin
	}
	return os.Stdin
}

// Output returns the writer for program output (Stdout, or os.Stdout when
// unset). Natives print through it so that embedders and tests can capture
// what a script writes.
func (vm *VM) Output() io.Writer { return vm.stdout() }

// Input returns the reader for program input (Stdin, or os.Stdin when
// unset).
func (vm *VM) Input() io.Reader { return vm.stdin() }

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// Push pushes v on the value stack. It is exported for natives that need to
// root temporary objects across allocations.
func (vm *VM) Push(v Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

// Pop pops and returns the top of the value stack.
func (vm *VM) Pop() Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.stackTop-1-distance]
}

// CopyString returns the interned String for s, allocating it on first use.
func (vm *VM) CopyString(s string) *String {
	if o, ok := vm.strings.Get(s); ok {
		return o
	}
	o := vm.allocString(s)
	vm.strings.Put(o.chars, o)
	return o
}

// DefineNative registers a host function under name in the globals table.
func (vm *VM) DefineNative(name string, fn NativeFn) {
	vm.Push(vm.CopyString(name))
	vm.Push(vm.newNative(fn))
	vm.globals.set(vm.stack[vm.stackTop-2].(*String), vm.stack[vm.stackTop-1])
	vm.Pop()
	vm.Pop()
}

// Global returns the value of the named global variable, if defined. Useful
// for tests and embedders; scripts go through the GLOBAL instructions.
func (vm *VM) Global(name string) (Value, bool) {
	s, ok := vm.strings.Get(name)
	if !ok {
		return nil, false
	}
	return vm.globals.get(s)
}

// makeFunction materializes a compiled function prototype into a Function
// object: scalar constants become Values, strings are interned and nested
// prototypes become Function objects themselves. The object under
// construction is kept on the stack so that collections triggered by the
// nested allocations see it as a root.
func (vm *VM) makeFunction(proto *compiler.Funcode) *Function {
	fn := &Function{
		arity:        proto.Arity,
		upvalueCount: proto.UpvalueCount,
		chunk: chunk{
			code:  proto.Chunk.Code,
			lines: proto.Chunk.Lines,
		},
	}
	vm.alloc(fn, sizeFunction+len(proto.Chunk.Code)+len(proto.Chunk.Constants)*sizeValueSlot)

	vm.Push(fn)
	if proto.Name != "" {
		fn.name = vm.CopyString(proto.Name)
	}
	fn.chunk.constants = make([]Value, len(proto.Chunk.Constants))
	for i, k := range proto.Chunk.Constants {
		switch k := k.(type) {
		case float64:
			fn.chunk.constants[i] = Number(k)
		case string:
			fn.chunk.constants[i] = vm.CopyString(k)
		case *compiler.Funcode:
			fn.chunk.constants[i] = vm.makeFunction(k)
		default:
			panic(fmt.Sprintf("unexpected constant %T: %[1]v", k))
		}
	}
	vm.Pop()
	return fn
}

// Load compiles a source buffer and wraps the resulting top-level function
// in a closure, ready to be called with no arguments. The returned error is
// the compile error list, if any.
func (vm *VM) Load(filename string, src []byte) (*Closure, error) {
	proto, err := compiler.Compile(filename, src)
	if err != nil {
		return nil, err
	}
	fn := vm.makeFunction(proto)
	vm.Push(fn)
	cl := vm.newClosure(fn)
	vm.Pop()
	return cl, nil
}

// CallClosure calls cl with args and runs the machine until the call
// completes, returning its result. It may be called by natives to re-enter
// the machine; the frames below the call are untouched.
func (vm *VM) CallClosure(cl *Closure, args []Value) (Value, error) {
	depth := vm.frameCount
	vm.Push(cl)
	for _, a := range args {
		vm.Push(a)
	}
	if err := vm.call(cl, len(args)); err != nil {
		vm.stackTop -= len(args) + 1
		return nil, err
	}
	return vm.run(depth)
}

// Interpret compiles and runs a source buffer. Compile errors are printed to
// Stderr and reported as ResultCompileError without executing anything; a
// runtime error prints a diagnostic and a backtrace, resets the stacks and
// reports ResultRuntimeError. On ResultOK both stacks are empty.
func (vm *VM) Interpret(filename string, src []byte) Result {
	cl, err := vm.Load(filename, src)
	if err != nil {
		scanner.PrintError(vm.stderr(), err)
		return ResultCompileError
	}
	if _, err := vm.CallClosure(cl, nil); err != nil {
		vm.reportRuntimeError(err)
		vm.resetStack()
		return ResultRuntimeError
	}
	return ResultOK
}

// reportRuntimeError prints the diagnostic and one backtrace line per active
// frame, innermost first, with the line of the instruction being executed and
// the function name (or "script" for the top level).
func (vm *VM) reportRuntimeError(err error) {
	w := vm.stderr()
	fmt.Fprintf(w, "Runtime Error:\n%s\n", err)
	for i := vm.frameCount - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		fn := fr.closure.fn
		line := 0
		if ix := fr.ip - 1; ix >= 0 && ix < len(fn.chunk.lines) {
			line = fn.chunk.lines[ix]
		}
		name := "script"
		if fn.name != nil {
			name = fn.name.chars + "()"
		}
		fmt.Fprintf(w, "[line %d] in %s\n", line, name)
	}
}
