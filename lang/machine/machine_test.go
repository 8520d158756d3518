package machine_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/nppc2/internal/filetest"
	"github.com/mna/nppc2/lang/machine"
	"github.com/mna/nppc2/lang/stdlib"
)

var testUpdateExecTests = flag.Bool("test.update-exec-tests", false, "If set, the exec golden files are updated with the test output.")

// TestExecFiles interprets the source files in testdata/exec and compares the
// output with the corresponding .npp.want golden file and the error output
// (compile errors, runtime error diagnostics and backtraces) with the
// .npp.err golden file. A missing golden file means no output is expected on
// that stream.
func TestExecFiles(t *testing.T) {
	dir := filepath.Join("testdata", "exec")
	for _, fi := range filetest.SourceFiles(t, dir, ".npp") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			require.NoError(t, err)

			var stdout, stderr bytes.Buffer
			vm := machine.New(machine.DefaultConfig())
			vm.Stdout, vm.Stderr = &stdout, &stderr
			vm.Stdin = strings.NewReader("")
			defer vm.Free()
			stdlib.Register(vm, stdlib.Options{Args: []string{"one", "two"}})

			vm.Interpret(fi.Name(), src)
			filetest.DiffOutput(t, fi, stdout.String(), dir, testUpdateExecTests)
			filetest.DiffErrors(t, fi, stderr.String(), dir, testUpdateExecTests)
		})
	}
}

// TestExecFilesStress re-runs every exec script with a collection forced on
// each allocation: any object missing from the GC roots gets swept and the
// run misbehaves.
func TestExecFilesStress(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping GC stress run in short mode")
	}

	cfg := machine.DefaultConfig()
	cfg.GCStress = true

	dir := filepath.Join("testdata", "exec")
	for _, fi := range filetest.SourceFiles(t, dir, ".npp") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			require.NoError(t, err)

			var stdout, stderr bytes.Buffer
			vm := machine.New(cfg)
			vm.Stdout, vm.Stderr = &stdout, &stderr
			vm.Stdin = strings.NewReader("")
			defer vm.Free()
			stdlib.Register(vm, stdlib.Options{Args: []string{"one", "two"}})

			vm.Interpret(fi.Name(), src)
			filetest.DiffOutput(t, fi, stdout.String(), dir, testUpdateExecTests)
			filetest.DiffErrors(t, fi, stderr.String(), dir, testUpdateExecTests)
		})
	}
}

func TestInterpretResults(t *testing.T) {
	cases := []struct {
		name, src string
		want      machine.Result
	}{
		{"ok", "var a = 1;", machine.ResultOK},
		{"compile error", "var;", machine.ResultCompileError},
		{"runtime error", "a;", machine.ResultRuntimeError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var stderr bytes.Buffer
			vm := machine.New(machine.DefaultConfig())
			vm.Stderr = &stderr
			defer vm.Free()

			got := vm.Interpret("test.npp", []byte(c.src))
			assert.Equal(t, c.want, got)
			if c.want != machine.ResultOK {
				assert.NotEmpty(t, stderr.String())
			}
		})
	}
}

func TestCallClosure(t *testing.T) {
	vm := machine.New(machine.DefaultConfig())
	defer vm.Free()

	res := vm.Interpret("test.npp", []byte("fun add(a, b) { return a + b; }"))
	require.Equal(t, machine.ResultOK, res)

	v, ok := vm.Global("add")
	require.True(t, ok)
	cl, ok := v.(*machine.Closure)
	require.True(t, ok)

	got, err := vm.CallClosure(cl, []machine.Value{machine.Number(1), machine.Number(2)})
	require.NoError(t, err)
	assert.Equal(t, machine.Number(3), got)

	// wrong arity surfaces as an error, not a panic
	_, err = vm.CallClosure(cl, []machine.Value{machine.Number(1)})
	require.ErrorContains(t, err, "Expected 2 arguments but got 1.")
}

func TestDefineNative(t *testing.T) {
	vm := machine.New(machine.DefaultConfig())
	defer vm.Free()
	vm.DefineNative("answer", func(_ *machine.VM, args []machine.Value) (machine.Value, error) {
		return machine.Number(42), nil
	})

	res := vm.Interpret("test.npp", []byte("var x = answer();"))
	require.Equal(t, machine.ResultOK, res)
	v, ok := vm.Global("x")
	require.True(t, ok)
	assert.Equal(t, machine.Number(42), v)
}

func TestValueStrings(t *testing.T) {
	cases := []struct {
		v    machine.Value
		want string
	}{
		{machine.Nil, "[NULL]"},
		{machine.True, "[TRUE]"},
		{machine.False, "[FALSE]"},
		{machine.Number(7), "7"},
		{machine.Number(2.5), "2.5"},
		{machine.Number(-3), "-3"},
		{machine.Number(1000000), "1e+06"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.v.String())
	}
}

func TestTruthEqual(t *testing.T) {
	assert.Equal(t, machine.False, machine.Truth(machine.Nil))
	assert.Equal(t, machine.False, machine.Truth(machine.False))
	assert.Equal(t, machine.True, machine.Truth(machine.True))
	assert.Equal(t, machine.True, machine.Truth(machine.Number(0)))

	vm := machine.New(machine.DefaultConfig())
	defer vm.Free()
	assert.True(t, machine.Equal(machine.Number(1), machine.Number(1)))
	assert.False(t, machine.Equal(machine.Number(1), machine.Number(2)))
	assert.False(t, machine.Equal(machine.Number(0), machine.False))
	assert.True(t, machine.Equal(machine.Nil, machine.Nil))
	assert.True(t, machine.Equal(vm.CopyString("ab"), vm.CopyString("ab")))
	assert.False(t, machine.Equal(vm.CopyString("ab"), vm.CopyString("ac")))
}
