package compiler

import (
	"fmt"
	"io"
	"strconv"
)

// Disassemble writes a human-readable listing of the chunk of fn and,
// recursively, of every function prototype in its constant pool.
func Disassemble(w io.Writer, fn *Funcode) {
	name := fn.Name
	if name == "" {
		name = "script"
	}
	fmt.Fprintf(w, "== %s ==\n", name)
	ch := &fn.Chunk
	for off := 0; off < len(ch.Code); {
		off = disasmInstruction(w, ch, off)
	}
	for _, k := range ch.Constants {
		if sub, ok := k.(*Funcode); ok {
			Disassemble(w, sub)
		}
	}
}

func disasmInstruction(w io.Writer, ch *Chunk, off int) int {
	fmt.Fprintf(w, "%04d ", off)
	if off > 0 && ch.Lines[off] == ch.Lines[off-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", ch.Lines[off])
	}

	op := Opcode(ch.Code[off])
	switch op {
	case CONSTANT, BOOL, DEFINE_GLOBAL, GET_PROPERTY, SET_PROPERTY,
		GET_SUPER, COMPARE, BINARY, CLASS, METHOD:
		return constantInstruction(w, op, ch, off)
	case LOCAL, GLOBAL, UPVALUE:
		return variableInstruction(w, op, ch, off)
	case JUMP:
		return jumpInstruction(w, op, ch, off, true)
	case JUMP_IF_FALSE:
		return jumpInstruction(w, op, ch, off, false)
	case CALL:
		fmt.Fprintf(w, "%-16s %4d\n", op, ch.Code[off+1])
		return off + 2
	case INVOKE, SUPER_INVOKE:
		return invokeInstruction(w, op, ch, off)
	case CLOSURE:
		return closureInstruction(w, ch, off)
	case POP, UNARY, CLOSE_UPVALUE, RETURN, INHERIT:
		fmt.Fprintf(w, "%s\n", op)
		return off + 1
	default:
		fmt.Fprintf(w, "unknown opcode %d\n", byte(op))
		return off + 1
	}
}

func constantInstruction(w io.Writer, op Opcode, ch *Chunk, off int) int {
	ix := ch.Code[off+1]
	fmt.Fprintf(w, "%-16s %4d %s\n", op, ix, formatConstant(ch.Constants[ix]))
	return off + 2
}

func variableInstruction(w io.Writer, op Opcode, ch *Chunk, off int) int {
	arg, isSet := ch.Code[off+1], ch.Code[off+2]
	mode := "get"
	if isSet != 0 {
		mode = "set"
	}
	if op == GLOBAL {
		fmt.Fprintf(w, "%-16s %4d %s %s\n", op, arg, mode, formatConstant(ch.Constants[arg]))
	} else {
		fmt.Fprintf(w, "%-16s %4d %s\n", op, arg, mode)
	}
	return off + 3
}

func jumpInstruction(w io.Writer, op Opcode, ch *Chunk, off int, signed bool) int {
	raw := uint16(ch.Code[off+1])<<8 | uint16(ch.Code[off+2])
	jump := int(raw)
	if signed {
		jump = int(int16(raw))
	}
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, off, off+3+jump)
	return off + 3
}

func invokeInstruction(w io.Writer, op Opcode, ch *Chunk, off int) int {
	ix, argc := ch.Code[off+1], ch.Code[off+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d %s\n", op, argc, ix, formatConstant(ch.Constants[ix]))
	return off + 3
}

func closureInstruction(w io.Writer, ch *Chunk, off int) int {
	ix := ch.Code[off+1]
	fn := ch.Constants[ix].(*Funcode)
	fmt.Fprintf(w, "%-16s %4d %s\n", CLOSURE, ix, formatConstant(fn))
	off += 2
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal, index := ch.Code[off], ch.Code[off+1]
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", off, kind, index)
		off += 2
	}
	return off
}

func formatConstant(k Constant) string {
	switch k := k.(type) {
	case float64:
		return strconv.FormatFloat(k, 'g', 6, 64)
	case string:
		return strconv.Quote(k)
	case *Funcode:
		if k.Name == "" {
			return "<script>"
		}
		return "<fn " + k.Name + ">"
	}
	return fmt.Sprintf("%v", k)
}
