package maincmd

import (
	"bufio"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/nppc2/lang/machine"
	"github.com/mna/nppc2/lang/stdlib"
)

// repl reads one statement per line and interprets it on a single machine,
// so globals persist for the whole session. It ends at EOF (ctrl-D).
func (c *Cmd) repl(stdio mainer.Stdio, cfg machine.Config) mainer.ExitCode {
	vm := newVM(stdio, cfg)
	defer vm.Free()
	stdlib.Register(vm, stdlib.Options{Args: c.scriptArgs})

	scan := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !scan.Scan() {
			fmt.Fprintln(stdio.Stdout)
			break
		}
		line := append([]byte(nil), scan.Bytes()...)
		vm.Interpret("repl", line)
	}
	return mainer.Success
}
