package machine

import (
	"fmt"

	"github.com/mna/nppc2/lang/compiler"
)

// call pushes a frame for a closure invocation. The callee and its argc
// arguments must already be on the stack; slot 0 of the new frame is the
// callee itself.
func (vm *VM) call(cl *Closure, argc int) error {
	if argc != cl.fn.arity {
		return fmt.Errorf("Expected %d arguments but got %d.", cl.fn.arity, argc)
	}
	if vm.frameCount == len(vm.frames) || vm.stackTop-argc-1+256 > len(vm.stack) {
		return fmt.Errorf("Stack overflow.")
	}
	vm.frames[vm.frameCount] = frame{
		closure: cl,
		ip:      0,
		slots:   vm.stackTop - argc - 1,
	}
	vm.frameCount++
	return nil
}

// callValue invokes the callee at peek(argc) with argc arguments.
func (vm *VM) callValue(callee Value, argc int) error {
	switch callee := callee.(type) {
	case *BoundMethod:
		vm.stack[vm.stackTop-argc-1] = callee.receiver
		return vm.call(callee.method, argc)
	case *Class:
		vm.stack[vm.stackTop-argc-1] = vm.newInstance(callee)
		if init, ok := callee.methods.get(vm.init); ok {
			return vm.call(init.(*Closure), argc)
		}
		if argc != 0 {
			return fmt.Errorf("Expected 0 arguments but got %d.", argc)
		}
		return nil
	case *Closure:
		return vm.call(callee, argc)
	case *Native:
		res, err := callee.fn(vm, vm.stack[vm.stackTop-argc:vm.stackTop])
		if err != nil {
			return err
		}
		if res == nil {
			res = Nil
		}
		vm.stackTop -= argc + 1
		vm.Push(res)
		return nil
	}
	return fmt.Errorf("Can only call functions and classes.")
}

func (vm *VM) invokeFromClass(class *Class, name *String, argc int) error {
	method, ok := class.methods.get(name)
	if !ok {
		return fmt.Errorf("Undefined property '%s'.", name.chars)
	}
	return vm.call(method.(*Closure), argc)
}

// invoke implements the method-call shortcut: a field holding a callable
// value shadows a method of the same name; otherwise the method is called
// directly, skipping the bound-method allocation.
func (vm *VM) invoke(name *String, argc int) error {
	receiver := vm.peek(argc)
	inst, ok := receiver.(*Instance)
	if !ok {
		return fmt.Errorf("Only instances have methods.")
	}
	if v, ok := inst.fields.get(name); ok {
		vm.stack[vm.stackTop-argc-1] = v
		return vm.callValue(v, argc)
	}
	return vm.invokeFromClass(inst.class, name, argc)
}

// bindMethod replaces the instance on top of the stack with a BoundMethod
// pairing it with the named method of class.
func (vm *VM) bindMethod(class *Class, name *String) error {
	method, ok := class.methods.get(name)
	if !ok {
		return fmt.Errorf("Undefined property '%s'.", name.chars)
	}
	bound := vm.newBoundMethod(vm.peek(0), method.(*Closure))
	vm.Pop()
	vm.Push(bound)
	return nil
}

// captureUpvalue returns the open upvalue for the given stack slot, creating
// and linking it if none exists. The open list is kept sorted by decreasing
// slot so that closing a stack region only looks at the head.
func (vm *VM) captureUpvalue(slot int) *Upvalue {
	var prev *Upvalue
	uv := vm.openUpvalues
	for uv != nil && uv.slot > slot {
		prev = uv
		uv = uv.next
	}
	if uv != nil && uv.slot == slot {
		return uv
	}

	created := vm.newUpvalue(slot)
	created.next = uv
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.next = created
	}
	return created
}

// closeUpvalues closes every open upvalue whose slot is at or above last: the
// stack value is moved into the upvalue and it is unlinked from the open
// list.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.slot >= last {
		uv := vm.openUpvalues
		uv.closed = vm.stack[uv.slot]
		uv.slot = -1
		vm.openUpvalues = uv.next
		uv.next = nil
	}
}

func (uv *Upvalue) get(vm *VM) Value {
	if uv.slot >= 0 {
		return vm.stack[uv.slot]
	}
	return uv.closed
}

func (uv *Upvalue) set(vm *VM, v Value) {
	if uv.slot >= 0 {
		vm.stack[uv.slot] = v
	} else {
		uv.closed = v
	}
}

// concatenate replaces the two strings on top of the stack with their
// concatenation. The operands stay on the stack while the result is interned
// so a collection triggered by the allocation cannot free them.
func (vm *VM) concatenate() {
	b := vm.peek(0).(*String)
	a := vm.peek(1).(*String)
	res := vm.CopyString(a.chars + b.chars)
	vm.Pop()
	vm.Pop()
	vm.Push(res)
}

// run is the dispatch loop. It executes the topmost frame until the frame
// count drops back to exitDepth, then returns the value produced by the
// RETURN that got it there. A register-cached frame pointer is refreshed
// after every operation that changes the frame count.
func (vm *VM) run(exitDepth int) (Value, error) {
	frame := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := frame.closure.fn.chunk.code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() uint16 {
		code := frame.closure.fn.chunk.code
		v := uint16(code[frame.ip])<<8 | uint16(code[frame.ip+1])
		frame.ip += 2
		return v
	}
	readConstant := func() Value {
		return frame.closure.fn.chunk.constants[readByte()]
	}
	readString := func() *String {
		return readConstant().(*String)
	}

	for {
		switch op := compiler.Opcode(readByte()); op {
		case compiler.CONSTANT:
			vm.Push(readConstant())

		case compiler.BOOL:
			switch name := readString(); name.chars {
			case "NULL":
				vm.Push(Nil)
			case "TRUE":
				vm.Push(True)
			case "FALS":
				vm.Push(False)
			default:
				return nil, fmt.Errorf("corrupt chunk: invalid BOOL selector %q", name.chars)
			}

		case compiler.POP:
			vm.Pop()

		case compiler.LOCAL:
			slot := int(readByte())
			if isSet := readByte(); isSet != 0 {
				vm.stack[frame.slots+slot] = vm.peek(0)
			} else {
				vm.Push(vm.stack[frame.slots+slot])
			}

		case compiler.GLOBAL:
			name := readString()
			if isSet := readByte(); isSet != 0 {
				if vm.globals.set(name, vm.peek(0)) {
					vm.globals.delete(name)
					return nil, fmt.Errorf("Undefined variable '%s'.", name.chars)
				}
			} else {
				v, ok := vm.globals.get(name)
				if !ok {
					return nil, fmt.Errorf("Undefined variable '%s'.", name.chars)
				}
				vm.Push(v)
			}

		case compiler.DEFINE_GLOBAL:
			name := readString()
			vm.globals.set(name, vm.peek(0))
			vm.Pop()

		case compiler.UPVALUE:
			slot := int(readByte())
			if isSet := readByte(); isSet != 0 {
				frame.closure.upvalues[slot].set(vm, vm.peek(0))
			} else {
				vm.Push(frame.closure.upvalues[slot].get(vm))
			}

		case compiler.GET_PROPERTY:
			inst, ok := vm.peek(0).(*Instance)
			if !ok {
				return nil, fmt.Errorf("Only instances have properties.")
			}
			name := readString()
			if v, ok := inst.fields.get(name); ok {
				vm.Pop()
				vm.Push(v)
				break
			}
			if err := vm.bindMethod(inst.class, name); err != nil {
				return nil, err
			}

		case compiler.SET_PROPERTY:
			inst, ok := vm.peek(1).(*Instance)
			if !ok {
				return nil, fmt.Errorf("Only instances have fields.")
			}
			inst.fields.set(readString(), vm.peek(0))
			v := vm.Pop()
			vm.Pop()
			vm.Push(v)

		case compiler.GET_SUPER:
			name := readString()
			super := vm.Pop().(*Class)
			if err := vm.bindMethod(super, name); err != nil {
				return nil, err
			}

		case compiler.COMPARE:
			switch op := readString(); op.chars {
			case "!":
				vm.Push(!Truth(vm.Pop()))
			case "=":
				b := vm.Pop()
				a := vm.Pop()
				vm.Push(Bool(Equal(a, b)))
			case ">", "<":
				bn, bok := vm.peek(0).(Number)
				an, aok := vm.peek(1).(Number)
				if !aok || !bok {
					return nil, fmt.Errorf("Operands must be numbers.")
				}
				vm.Pop()
				vm.Pop()
				if op.chars == ">" {
					vm.Push(Bool(an > bn))
				} else {
					vm.Push(Bool(an < bn))
				}
			default:
				return nil, fmt.Errorf("corrupt chunk: invalid COMPARE selector %q", op.chars)
			}

		case compiler.BINARY:
			op := readString()
			if op.chars == "+" {
				if _, ok := vm.peek(0).(*String); ok {
					if _, ok := vm.peek(1).(*String); ok {
						vm.concatenate()
						break
					}
				}
			}
			bn, bok := vm.peek(0).(Number)
			an, aok := vm.peek(1).(Number)
			if !aok || !bok {
				if op.chars == "+" {
					return nil, fmt.Errorf("Operands must be two numbers or two strings.")
				}
				return nil, fmt.Errorf("Operands must be numbers.")
			}
			vm.Pop()
			vm.Pop()
			switch op.chars {
			case "+":
				vm.Push(an + bn)
			case "-":
				vm.Push(an - bn)
			case "*":
				vm.Push(an * bn)
			case "/":
				vm.Push(an / bn)
			default:
				return nil, fmt.Errorf("corrupt chunk: invalid BINARY selector %q", op.chars)
			}

		case compiler.UNARY:
			n, ok := vm.peek(0).(Number)
			if !ok {
				return nil, fmt.Errorf("Operand must be a number.")
			}
			vm.Pop()
			vm.Push(-n)

		case compiler.JUMP:
			offset := int16(readShort())
			frame.ip += int(offset)

		case compiler.JUMP_IF_FALSE:
			offset := readShort()
			if !Truth(vm.peek(0)) {
				frame.ip += int(offset)
			}

		case compiler.CALL:
			argc := int(readByte())
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return nil, err
			}
			frame = &vm.frames[vm.frameCount-1]

		case compiler.INVOKE:
			name := readString()
			argc := int(readByte())
			if err := vm.invoke(name, argc); err != nil {
				return nil, err
			}
			frame = &vm.frames[vm.frameCount-1]

		case compiler.SUPER_INVOKE:
			name := readString()
			argc := int(readByte())
			super := vm.Pop().(*Class)
			if err := vm.invokeFromClass(super, name, argc); err != nil {
				return nil, err
			}
			frame = &vm.frames[vm.frameCount-1]

		case compiler.CLOSURE:
			fn := readConstant().(*Function)
			cl := vm.newClosure(fn)
			vm.Push(cl)
			for i := range cl.upvalues {
				isLocal := readByte()
				index := int(readByte())
				if isLocal != 0 {
					cl.upvalues[i] = vm.captureUpvalue(frame.slots + index)
				} else {
					cl.upvalues[i] = frame.closure.upvalues[index]
				}
			}

		case compiler.CLOSE_UPVALUE:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.Pop()

		case compiler.RETURN:
			result := vm.Pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			vm.stackTop = frame.slots
			if vm.frameCount == exitDepth {
				return result, nil
			}
			vm.Push(result)
			frame = &vm.frames[vm.frameCount-1]

		case compiler.CLASS:
			vm.Push(vm.newClass(readString()))

		case compiler.INHERIT:
			super, ok := vm.peek(1).(*Class)
			if !ok {
				return nil, fmt.Errorf("Superclass must be a class.")
			}
			sub := vm.peek(0).(*Class)
			sub.methods.addAll(super.methods)
			vm.Pop()

		case compiler.METHOD:
			name := readString()
			method := vm.peek(0)
			class := vm.peek(1).(*Class)
			class.methods.set(name, method)
			vm.Pop()

		default:
			return nil, fmt.Errorf("corrupt chunk: unknown opcode %d", byte(op))
		}
	}
}
