package stdlib

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dolthub/swiss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/nppc2/lang/machine"
)

func newTestVM(t *testing.T) *machine.VM {
	t.Helper()
	vm := machine.New(machine.DefaultConfig())
	t.Cleanup(vm.Free)
	return vm
}

func str(vm *machine.VM, s string) machine.Value { return vm.CopyString(s) }

func TestRegisterDefinesNatives(t *testing.T) {
	vm := newTestVM(t)
	Register(vm, Options{})

	for _, name := range []string{
		"broadcast", "clock", "argc", "stringize", "isNum", "sqrt",
		"collectGarbage", "strLen", "array", "get", "quit",
	} {
		v, ok := vm.Global(name)
		require.True(t, ok, "native %s not defined", name)
		_, ok = v.(*machine.Native)
		assert.True(t, ok, "global %s is not a native", name)
	}
}

func TestWantArgs(t *testing.T) {
	err := wantArgs(nil, 1)
	require.EqualError(t, err, "Expected 1 argument but got 0.")
	err = wantArgs([]machine.Value{machine.Nil}, 2)
	require.EqualError(t, err, "Expected 2 arguments but got 1.")
	require.NoError(t, wantArgs([]machine.Value{machine.Nil}, 1))
}

func TestStringize(t *testing.T) {
	vm := newTestVM(t)

	v, err := stringize(vm, []machine.Value{machine.Number(12.5)})
	require.NoError(t, err)
	assert.Equal(t, "12.5", v.(*machine.String).Value())

	s := str(vm, "as-is")
	v, err = stringize(vm, []machine.Value{s})
	require.NoError(t, err)
	assert.Same(t, s, v)

	_, err = stringize(vm, []machine.Value{machine.True})
	require.EqualError(t, err, "Unsupported type for stringize.")
}

func TestIntegize(t *testing.T) {
	vm := newTestVM(t)

	v, err := integize(vm, []machine.Value{str(vm, "3.5")})
	require.NoError(t, err)
	assert.Equal(t, machine.Number(3.5), v)

	v, err = integize(vm, []machine.Value{machine.Number(8)})
	require.NoError(t, err)
	assert.Equal(t, machine.Number(8), v)

	_, err = integize(vm, []machine.Value{str(vm, "nope")})
	require.EqualError(t, err, "String could not be converted to a number.")
}

func TestStrNatives(t *testing.T) {
	vm := newTestVM(t)

	v, err := strLen(vm, []machine.Value{str(vm, "hello")})
	require.NoError(t, err)
	assert.Equal(t, machine.Number(5), v)

	v, err = strIndex(vm, []machine.Value{str(vm, "hello"), machine.Number(1)})
	require.NoError(t, err)
	assert.Equal(t, "e", v.(*machine.String).Value())

	v, err = strIndex(vm, []machine.Value{str(vm, "hello"), machine.Number(9)})
	require.NoError(t, err)
	assert.Equal(t, machine.Nil, v)
}

func TestMathNatives(t *testing.T) {
	vm := newTestVM(t)

	v, err := mathNative("sqrt")(vm, []machine.Value{machine.Number(16)})
	require.NoError(t, err)
	assert.Equal(t, machine.Number(4), v)

	v, err = powrNative(vm, []machine.Value{machine.Number(2), machine.Number(10)})
	require.NoError(t, err)
	assert.Equal(t, machine.Number(1024), v)

	v, err = hypotNative(vm, []machine.Value{machine.Number(3), machine.Number(4)})
	require.NoError(t, err)
	assert.Equal(t, machine.Number(5), v)

	v, err = mdlsNative(vm, []machine.Value{machine.Number(9), machine.Number(3)})
	require.NoError(t, err)
	assert.Equal(t, machine.True, v)

	_, err = mdlsNative(vm, []machine.Value{machine.Number(9), machine.Number(0)})
	require.EqualError(t, err, "Division by zero.")

	_, err = mathNative("sin")(vm, []machine.Value{str(vm, "x")})
	require.EqualError(t, err, "Argument 1 must be a number.")
}

func TestRand(t *testing.T) {
	vm := newTestVM(t)
	for i := 0; i < 100; i++ {
		v, err := randNative(vm, []machine.Value{machine.Number(3), machine.Number(5)})
		require.NoError(t, err)
		n := float64(v.(machine.Number))
		assert.GreaterOrEqual(t, n, 3.0)
		assert.LessOrEqual(t, n, 5.0)
	}
	_, err := randNative(vm, []machine.Value{machine.Number(5), machine.Number(3)})
	require.Error(t, err)
}

func TestTimeNative(t *testing.T) {
	vm := newTestVM(t)

	v, err := timeNative(vm, []machine.Value{str(vm, "Y-M-D")})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), v.(*machine.String).Value())

	v, err = timeNative(vm, []machine.Value{str(vm, "H:m:S")})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`), v.(*machine.String).Value())
}

func TestClock(t *testing.T) {
	vm := newTestVM(t)
	l := &lib{start: time.Now()}
	v, err := l.clock(vm, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, float64(v.(machine.Number)), 0.0)
}

func TestArgs(t *testing.T) {
	vm := newTestVM(t)
	l := &lib{opts: Options{Args: []string{"a", "b"}}}

	v, err := l.argc(vm, nil)
	require.NoError(t, err)
	assert.Equal(t, machine.Number(2), v)

	v, err = l.argv(vm, []machine.Value{machine.Number(1)})
	require.NoError(t, err)
	assert.Equal(t, "b", v.(*machine.String).Value())

	_, err = l.argv(vm, []machine.Value{machine.Number(5)})
	require.EqualError(t, err, "Index out of bounds. There are 2 arguments.")
}

func TestBroadcast(t *testing.T) {
	vm := newTestVM(t)
	var out bytes.Buffer
	vm.Stdout = &out

	_, err := broadcast(vm, []machine.Value{machine.Number(7)})
	require.NoError(t, err)
	_, err = broadcastXN(vm, []machine.Value{str(vm, "x")})
	require.NoError(t, err)
	assert.Equal(t, "7\nx", out.String())
}

func TestReceive(t *testing.T) {
	vm := newTestVM(t)
	var out bytes.Buffer
	vm.Stdout = &out
	vm.Stdin = strings.NewReader("typed\n")
	l := &lib{}

	v, err := l.receive(vm, []machine.Value{str(vm, "? ")})
	require.NoError(t, err)
	assert.Equal(t, "typed", v.(*machine.String).Value())
	assert.Equal(t, "? ", out.String())
}

func TestQuit(t *testing.T) {
	vm := newTestVM(t)
	var code = -1
	l := &lib{opts: Options{Exit: func(c int) { code = c }}}

	_, err := l.quit(vm, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestRuntimeErrorNative(t *testing.T) {
	vm := newTestVM(t)
	_, err := runtimeErrorNative(vm, []machine.Value{str(vm, "boom")})
	require.EqualError(t, err, "boom")
}

func TestArrays(t *testing.T) {
	vm := newTestVM(t)
	l := &lib{arrays: swiss.NewMap[string, *namedArray](8)}

	_, err := l.array(vm, []machine.Value{str(vm, "xs"), str(vm, "a"), str(vm, "b")})
	require.NoError(t, err)

	v, err := l.lenArray(vm, []machine.Value{str(vm, "xs")})
	require.NoError(t, err)
	assert.Equal(t, machine.Number(2), v)

	v, err = l.getArray(vm, []machine.Value{str(vm, "xs"), machine.Number(1)})
	require.NoError(t, err)
	assert.Equal(t, "b", v.(*machine.String).Value())

	_, err = l.addArray(vm, []machine.Value{str(vm, "xs"), str(vm, "c")})
	require.NoError(t, err)
	_, err = l.cngArray(vm, []machine.Value{str(vm, "xs"), machine.Number(0), str(vm, "z")})
	require.NoError(t, err)
	_, err = l.rmvArray(vm, []machine.Value{str(vm, "xs"), machine.Number(1)})
	require.NoError(t, err)

	var out bytes.Buffer
	vm.Stdout = &out
	_, err = l.bctArray(vm, []machine.Value{str(vm, "xs")})
	require.NoError(t, err)
	assert.Equal(t, "[z, c]\n", out.String())

	_, err = l.getArray(vm, []machine.Value{str(vm, "xs"), machine.Number(9)})
	require.EqualError(t, err, "Index 9 out of bounds for array 'xs' (size: 2).")

	_, err = l.delArray(vm, []machine.Value{str(vm, "xs")})
	require.NoError(t, err)
	_, err = l.lenArray(vm, []machine.Value{str(vm, "xs")})
	require.EqualError(t, err, "Array with name 'xs' not found.")
}
