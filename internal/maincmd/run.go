package maincmd

import (
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/nppc2/lang/compiler"
	"github.com/mna/nppc2/lang/machine"
	"github.com/mna/nppc2/lang/scanner"
	"github.com/mna/nppc2/lang/stdlib"
)

func (c *Cmd) runFile(stdio mainer.Stdio, cfg machine.Config) mainer.ExitCode {
	if !hasSuffix(c.file) {
		fmt.Fprintf(stdio.Stderr, "Error: The file %q does not have the required %q extension.\n", c.file, srcExt)
		return ExitExtension
	}

	src, err := os.ReadFile(c.file)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "Error: Unable to read the file %q.\n", c.file)
		return ExitFileError
	}

	if c.Debug {
		// disassemble before running; a compile failure is reported here and
		// nothing is executed
		proto, err := compiler.Compile(c.file, src)
		if err != nil {
			scanner.PrintError(stdio.Stderr, err)
			return ExitCompileError
		}
		compiler.Disassemble(stdio.Stderr, proto)
	}

	vm := newVM(stdio, cfg)
	defer vm.Free()
	stdlib.Register(vm, stdlib.Options{Args: c.scriptArgs})

	switch vm.Interpret(c.file, src) {
	case machine.ResultCompileError:
		return ExitCompileError
	case machine.ResultRuntimeError:
		return ExitRuntimeError
	}
	return mainer.Success
}
