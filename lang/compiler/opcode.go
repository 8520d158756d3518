package compiler

import "fmt"

type Opcode uint8

// "x POP -" is a "stack picture" that describes the state of the stack before
// and after execution of the instruction.
//
// OP<k> indicates an immediate operand that is an index into the chunk's
// constant pool; <s> a local slot; <u> an upvalue slot; <n> an argument
// count; <j> a 16-bit big-endian jump offset. The LOCAL, GLOBAL and UPVALUE
// instructions carry an extra <set> byte operand that selects between the
// load and store behavior.
const ( //nolint:revive
	CONSTANT      Opcode = iota //             - CONSTANT<k>      value
	BOOL                        //             - BOOL<k>          value     k selects "NULL", "TRUE" or "FALS"
	POP                         //             x POP              -
	LOCAL                       //   [x] LOCAL<s><set>            [x]       get pushes slots[s], set stores the top
	GLOBAL                      //   [x] GLOBAL<k><set>           [x]       get/set the global named by k
	DEFINE_GLOBAL               //             x DEFINE_GLOBAL<k> -
	UPVALUE                     //   [x] UPVALUE<u><set>          [x]       read/write through upvalues[u]
	GET_PROPERTY                //          inst GET_PROPERTY<k>  value     field first, else bound method
	SET_PROPERTY                //        inst x SET_PROPERTY<k>  x
	GET_SUPER                   //    inst super GET_SUPER<k>     bound
	COMPARE                     //     [x] y COMPARE<k>           bool      k selects "!", "=", ">" or "<"
	BINARY                      //       x y BINARY<k>            value     k selects "+", "-", "*" or "/"
	UNARY                       //             x UNARY            -x
	JUMP                        //             - JUMP<j>          -         j is signed, loops jump backwards
	JUMP_IF_FALSE               //          cond JUMP_IF_FALSE<j> cond      does not pop
	CALL                        //    fn a1..an CALL<n>           result
	INVOKE                      //  inst a1..an INVOKE<k><n>      result
	SUPER_INVOKE                // inst a1..an super SUPER_INVOKE<k><n> result
	CLOSURE                     //             - CLOSURE<k>...    closure   followed by (isLocal, index) per upvalue
	CLOSE_UPVALUE               //             x CLOSE_UPVALUE    -
	RETURN                      //             x RETURN           -
	CLASS                       //             - CLASS<k>         class
	INHERIT                     //    super sub INHERIT           super
	METHOD                      //  class fn METHOD<k>            class

	OpcodeMax = METHOD
)

var opcodeNames = [...]string{
	BINARY:        "binary",
	BOOL:          "bool",
	CALL:          "call",
	CLASS:         "class",
	CLOSE_UPVALUE: "close_upvalue",
	CLOSURE:       "closure",
	COMPARE:       "compare",
	CONSTANT:      "constant",
	DEFINE_GLOBAL: "define_global",
	GET_PROPERTY:  "get_property",
	GET_SUPER:     "get_super",
	GLOBAL:        "global",
	INHERIT:       "inherit",
	INVOKE:        "invoke",
	JUMP:          "jump",
	JUMP_IF_FALSE: "jump_if_false",
	LOCAL:         "local",
	METHOD:        "method",
	POP:           "pop",
	RETURN:        "return",
	SET_PROPERTY:  "set_property",
	SUPER_INVOKE:  "super_invoke",
	UNARY:         "unary",
	UPVALUE:       "upvalue",
}

func (op Opcode) String() string {
	if op <= OpcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal op (%d)", op)
}
