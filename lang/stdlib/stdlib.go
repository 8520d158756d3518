// Package stdlib defines the host-provided native functions of the language:
// I/O, time, math, type predicates, string helpers, the named string arrays
// and the language development kit (collectGarbage, runtimeError, get). The
// machine itself knows nothing about these; the CLI registers them on the
// machine it creates.
package stdlib

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mna/nppc2/lang/machine"
)

// Options configures the stdlib for one machine.
type Options struct {
	// Args are the script-visible arguments (everything after the "//"
	// separator on the command line), exposed through argc and argv.
	Args []string

	// Exit is called by the quit native; defaults to os.Exit.
	Exit func(code int)
}

// lib is the per-machine stdlib state shared by the natives through their
// closures.
type lib struct {
	opts   Options
	start  time.Time
	arrays *swiss.Map[string, *namedArray]
	stdin  *bufio.Reader
}

// Register defines every native function on vm.
func Register(vm *machine.VM, opts Options) {
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}
	l := &lib{
		opts:   opts,
		start:  time.Now(),
		arrays: swiss.NewMap[string, *namedArray](8),
	}

	natives := map[string]machine.NativeFn{
		// time section
		"clock": l.clock,
		"wait":  waitNative,
		"time":  timeNative,

		// args and value section
		"argc":      l.argc,
		"argv":      l.argv,
		"stringize": stringize,
		"integize":  integize,

		// value checking section
		"isNum":         isKind(func(v machine.Value) bool { _, ok := v.(machine.Number); return ok }),
		"isBool":        isKind(func(v machine.Value) bool { _, ok := v.(machine.Bool); return ok }),
		"isObj":         isKind(machine.IsObject),
		"isStr":         isKind(func(v machine.Value) bool { _, ok := v.(*machine.String); return ok }),
		"isNull":        isKind(func(v machine.Value) bool { _, ok := v.(machine.NilType); return ok }),
		"isInst":        isKind(func(v machine.Value) bool { _, ok := v.(*machine.Instance); return ok }),
		"isNative":      isKind(func(v machine.Value) bool { _, ok := v.(*machine.Native); return ok }),
		"isClass":       isKind(func(v machine.Value) bool { _, ok := v.(*machine.Class); return ok }),
		"isBoundMethod": isKind(func(v machine.Value) bool { _, ok := v.(*machine.BoundMethod); return ok }),

		// I/O section
		"broadcast":   broadcast,
		"broadcastXN": broadcastXN,
		"setColor":    setColor,
		"receive":     l.receive,
		"system":      systemNative,
		"quit":        l.quit,

		// trigonometry and math sections
		"sin":   mathNative("sin"),
		"cos":   mathNative("cos"),
		"tan":   mathNative("tan"),
		"asin":  mathNative("asin"),
		"acos":  mathNative("acos"),
		"atan":  mathNative("atan"),
		"abs":   mathNative("abs"),
		"sqrt":  mathNative("sqrt"),
		"hypot": hypotNative,
		"powr":  powrNative,
		"mdls":  mdlsNative,
		"rand":  randNative,

		// language development kit section
		"collectGarbage": collectGarbage,
		"runtimeError":   runtimeErrorNative,
		"get":            getNative,
		"strLen":         strLen,
		"strIndex":       strIndex,

		// array section
		"array":    l.array,
		"getArray": l.getArray,
		"lenArray": l.lenArray,
		"addArray": l.addArray,
		"rmvArray": l.rmvArray,
		"cngArray": l.cngArray,
		"delArray": l.delArray,
		"bctArray": l.bctArray,
	}

	// deterministic registration order
	names := maps.Keys(natives)
	slices.Sort(names)
	for _, name := range names {
		vm.DefineNative(name, natives[name])
	}
}

// ---- argument helpers

func wantArgs(args []machine.Value, n int) error {
	if len(args) != n {
		noun := "arguments"
		if n == 1 {
			noun = "argument"
		}
		return fmt.Errorf("Expected %d %s but got %d.", n, noun, len(args))
	}
	return nil
}

func numArg(args []machine.Value, i int) (float64, error) {
	n, ok := args[i].(machine.Number)
	if !ok {
		return 0, fmt.Errorf("Argument %d must be a number.", i+1)
	}
	return float64(n), nil
}

func strArg(args []machine.Value, i int) (string, error) {
	s, ok := args[i].(*machine.String)
	if !ok {
		return "", fmt.Errorf("Argument %d must be a string.", i+1)
	}
	return s.Value(), nil
}

// ---- time section

func (l *lib) clock(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 0); err != nil {
		return nil, err
	}
	return machine.Number(time.Since(l.start).Seconds()), nil
}

func waitNative(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	secs, err := numArg(args, 0)
	if err != nil {
		return nil, err
	}
	time.Sleep(time.Duration(secs * float64(time.Second)))
	return machine.Nil, nil
}

// timeNative formats the current local time, substituting D, M, Y, H, m and S
// in the format string with the date and time components.
func timeNative(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	format, err := strArg(args, 0)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var out []byte
	for i := 0; i < len(format); i++ {
		switch format[i] {
		case 'D':
			out = append(out, fmt.Sprintf("%02d", now.Day())...)
		case 'M':
			out = append(out, fmt.Sprintf("%02d", int(now.Month()))...)
		case 'Y':
			out = append(out, strconv.Itoa(now.Year())...)
		case 'H':
			out = append(out, fmt.Sprintf("%02d", now.Hour())...)
		case 'm':
			out = append(out, fmt.Sprintf("%02d", now.Minute())...)
		case 'S':
			out = append(out, fmt.Sprintf("%02d", now.Second())...)
		default:
			out = append(out, format[i])
		}
	}
	return vm.CopyString(string(out)), nil
}

// ---- args and value section

func (l *lib) argc(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 0); err != nil {
		return nil, err
	}
	return machine.Number(len(l.opts.Args)), nil
}

func (l *lib) argv(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	ix, err := numArg(args, 0)
	if err != nil {
		return nil, err
	}
	if int(ix) < 0 || int(ix) >= len(l.opts.Args) {
		return nil, fmt.Errorf("Index out of bounds. There are %d arguments.", len(l.opts.Args))
	}
	return vm.CopyString(l.opts.Args[int(ix)]), nil
}

func stringize(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *machine.String:
		return v, nil
	case machine.Number:
		return vm.CopyString(v.String()), nil
	}
	return nil, fmt.Errorf("Unsupported type for stringize.")
}

func integize(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case machine.Number:
		return v, nil
	case *machine.String:
		f, err := strconv.ParseFloat(v.Value(), 64)
		if err != nil {
			return nil, fmt.Errorf("String could not be converted to a number.")
		}
		return machine.Number(f), nil
	}
	return nil, fmt.Errorf("Unsupported type for integize.")
}

// ---- value checking section

func isKind(pred func(machine.Value) bool) machine.NativeFn {
	return func(_ *machine.VM, args []machine.Value) (machine.Value, error) {
		if err := wantArgs(args, 1); err != nil {
			return nil, err
		}
		return machine.Bool(pred(args[0])), nil
	}
}

// ---- I/O section

func broadcast(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	fmt.Fprintln(vm.Output(), args[0].String())
	return machine.Nil, nil
}

func broadcastXN(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	fmt.Fprint(vm.Output(), args[0].String())
	return machine.Nil, nil
}

func setColor(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	code, err := numArg(args, 0)
	if err != nil {
		return nil, err
	}
	if code < 30 || code > 38 {
		return nil, fmt.Errorf("Argument 1 must be between or equal to 30 and 38.")
	}
	if code == 38 {
		fmt.Fprint(vm.Output(), "\033[0m")
	} else {
		fmt.Fprintf(vm.Output(), "\033[0;%dm", int(code))
	}
	return machine.Nil, nil
}

// receive prints its argument as a prompt and reads one line of input.
func (l *lib) receive(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	fmt.Fprint(vm.Output(), args[0].String())

	if l.stdin == nil {
		l.stdin = bufio.NewReader(vm.Input())
	}
	line, err := l.stdin.ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("Unable to read input.")
	}
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	return vm.CopyString(line), nil
}

func systemNative(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	cmdStr, err := strArg(args, 0)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command("sh", "-c", cmdStr)
	cmd.Stdout = vm.Output()
	cmd.Stderr = vm.Output()
	_ = cmd.Run()
	return machine.Nil, nil
}

func (l *lib) quit(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 0); err != nil {
		return nil, err
	}
	l.opts.Exit(0)
	return machine.Nil, nil
}

// ---- language development kit section

func collectGarbage(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 0); err != nil {
		return nil, err
	}
	vm.CollectGarbage()
	return machine.Nil, nil
}

func runtimeErrorNative(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	msg, err := strArg(args, 0)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%s", msg)
}

// getNative compiles and immediately runs another source file on the current
// machine. A compile failure is raised as a runtime error in the calling
// script.
func getNative(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	path, err := strArg(args, 0)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Unable to read the file \"%s\".", path)
	}
	cl, err := vm.Load(path, src)
	if err != nil {
		return nil, fmt.Errorf("Unable to compile the file \"%s\": %s", path, err)
	}
	if _, err := vm.CallClosure(cl, nil); err != nil {
		return nil, err
	}
	return machine.Nil, nil
}

func strLen(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	s, err := strArg(args, 0)
	if err != nil {
		return nil, err
	}
	return machine.Number(len(s)), nil
}

func strIndex(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 2); err != nil {
		return nil, err
	}
	s, err := strArg(args, 0)
	if err != nil {
		return nil, err
	}
	ix, err := numArg(args, 1)
	if err != nil {
		return nil, err
	}
	if int(ix) >= 0 && int(ix) < len(s) {
		return vm.CopyString(s[int(ix) : int(ix)+1]), nil
	}
	return machine.Nil, nil
}
