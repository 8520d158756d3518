// Package maincmd implements the nppc2 command-line tool: it runs .npp
// source files, optionally with script-visible arguments and a bytecode
// disassembly listing, and provides the interactive REPL when invoked without
// a file.
package maincmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"

	"github.com/mna/nppc2/lang/machine"
)

const binName = "nppc2"

// Exit codes of the tool, beyond the standard success/failure.
const (
	ExitCompileError mainer.ExitCode = 65
	ExitFileError    mainer.ExitCode = 66
	ExitRuntimeError mainer.ExitCode = 70
	ExitExtension    mainer.ExitCode = 74
)

const srcExt = ".npp"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<file>%s] [--debug] [// <arg>...]
Run '%[1]s help' for details.
`, binName, srcExt)

	longUsage = fmt.Sprintf(`usage: %s [<file>%s] [--debug] [// <arg>...]
       %[1]s help
       %[1]s -h|--help
       %[1]s -v|--version

Interpreter for the N++ programming language. Without a file, an
interactive session (REPL) is started.

Arguments after the "//" separator are not interpreted by the tool,
they are visible to the script through the argc and argv natives.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --debug                   Print the disassembled bytecode of the
                                 compiled file before running it.

The machine can be tuned with the NPPC2_MAX_FRAMES, NPPC2_STACK_SIZE,
NPPC2_GC_THRESHOLD and NPPC2_GC_STRESS environment variables.
`, binName, srcExt)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`
	Debug   bool `flag:"debug"`

	args       []string
	file       string
	scriptArgs []string
	helpCmd    bool
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	rest := c.args
	for i, arg := range rest {
		if arg == "//" {
			c.scriptArgs = rest[i+1:]
			rest = rest[:i]
			break
		}
	}

	switch {
	case len(rest) == 0:
		// REPL
	case len(rest) == 1 && rest[0] == "help":
		c.helpCmd = true
	case len(rest) == 1:
		c.file = rest[0]
	default:
		return errors.New("too many arguments")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help, c.helpCmd:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	cfg := machine.DefaultConfig()
	if err := env.Parse(&cfg, env.Options{Prefix: "NPPC2_"}); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid configuration: %s\n", err)
		return mainer.Failure
	}

	if c.file == "" {
		return c.repl(stdio, cfg)
	}
	return c.runFile(stdio, cfg)
}

func newVM(stdio mainer.Stdio, cfg machine.Config) *machine.VM {
	vm := machine.New(cfg)
	vm.Stdout = stdio.Stdout
	vm.Stderr = stdio.Stderr
	vm.Stdin = stdio.Stdin
	return vm
}

func hasSuffix(path string) bool {
	return strings.HasSuffix(path, srcExt)
}
