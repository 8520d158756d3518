package maincmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))
	return path
}

func runCmd(t *testing.T, stdin string, args ...string) (code mainer.ExitCode, stdout, stderr string) {
	t.Helper()
	var outb, errb bytes.Buffer
	stdio := mainer.Stdio{
		Stdin:  strings.NewReader(stdin),
		Stdout: &outb,
		Stderr: &errb,
	}
	var c Cmd
	code = c.Main(append([]string{binName}, args...), stdio)
	return code, outb.String(), errb.String()
}

func TestRunFile(t *testing.T) {
	path := writeScript(t, "ok.npp", `broadcast("hello");`)
	code, stdout, stderr := runCmd(t, "", path)
	assert.Equal(t, mainer.Success, code)
	assert.Equal(t, "hello\n", stdout)
	assert.Empty(t, stderr)
}

func TestRunFileScriptArgs(t *testing.T) {
	path := writeScript(t, "args.npp", `broadcast(argc()); broadcast(argv(1));`)
	code, stdout, _ := runCmd(t, "", path, "//", "first", "second")
	assert.Equal(t, mainer.Success, code)
	assert.Equal(t, "2\nsecond\n", stdout)
}

func TestRunFileWrongExtension(t *testing.T) {
	path := writeScript(t, "bad.txt", `broadcast(1);`)
	code, _, stderr := runCmd(t, "", path)
	assert.Equal(t, ExitExtension, code)
	assert.Contains(t, stderr, `".npp" extension`)
}

func TestRunFileUnreadable(t *testing.T) {
	code, _, stderr := runCmd(t, "", filepath.Join(t.TempDir(), "missing.npp"))
	assert.Equal(t, ExitFileError, code)
	assert.Contains(t, stderr, "Unable to read the file")
}

func TestRunFileCompileError(t *testing.T) {
	path := writeScript(t, "bad.npp", `var;`)
	code, _, stderr := runCmd(t, "", path)
	assert.Equal(t, ExitCompileError, code)
	assert.Contains(t, stderr, "Expect variable name.")
}

func TestRunFileRuntimeError(t *testing.T) {
	path := writeScript(t, "boom.npp", `missing();`)
	code, _, stderr := runCmd(t, "", path)
	assert.Equal(t, ExitRuntimeError, code)
	assert.Contains(t, stderr, "Runtime Error:")
	assert.Contains(t, stderr, "Undefined variable 'missing'.")
	assert.Contains(t, stderr, "in script")
}

func TestRunFileDebug(t *testing.T) {
	path := writeScript(t, "dbg.npp", `fun f() { return 1; } broadcast(f());`)
	code, stdout, stderr := runCmd(t, "", path, "--debug")
	assert.Equal(t, mainer.Success, code)
	assert.Equal(t, "1\n", stdout)
	assert.Contains(t, stderr, "== script ==")
	assert.Contains(t, stderr, "== f ==")
}

func TestRepl(t *testing.T) {
	code, stdout, stderr := runCmd(t, "var a = 20;\nbroadcast(a + 1);\n")
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, stdout, "> ")
	assert.Contains(t, stdout, "21\n")
	assert.Empty(t, stderr)
}

func TestReplKeepsGoingAfterError(t *testing.T) {
	code, stdout, stderr := runCmd(t, "nope;\nbroadcast(2);\n")
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, stdout, "2\n")
	assert.Contains(t, stderr, "Undefined variable 'nope'.")
}

func TestHelpAndVersion(t *testing.T) {
	code, stdout, _ := runCmd(t, "", "help")
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, stdout, "usage:")

	code, stdout, _ = runCmd(t, "", "--help")
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, stdout, "usage:")

	var outb bytes.Buffer
	c := Cmd{BuildVersion: "1.2", BuildDate: "2024-01-01"}
	code = c.Main([]string{binName, "-v"}, mainer.Stdio{Stdout: &outb, Stderr: &outb})
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, outb.String(), "nppc2 1.2 2024-01-01")
}

func TestTooManyArguments(t *testing.T) {
	code, _, stderr := runCmd(t, "", "a.npp", "b.npp")
	assert.Equal(t, mainer.InvalidArgs, code)
	assert.Contains(t, stderr, "too many arguments")
}

func TestEnvConfig(t *testing.T) {
	t.Setenv("NPPC2_MAX_FRAMES", "8")
	path := writeScript(t, "deep.npp", `fun f() { f(); } f();`)
	code, _, stderr := runCmd(t, "", path)
	assert.Equal(t, ExitRuntimeError, code)
	assert.Contains(t, stderr, "Stack overflow.")
}

func TestEnvConfigInvalid(t *testing.T) {
	t.Setenv("NPPC2_STACK_SIZE", "not a number")
	path := writeScript(t, "ok.npp", `broadcast(1);`)
	code, _, stderr := runCmd(t, "", path)
	assert.Equal(t, mainer.Failure, code)
	assert.Contains(t, stderr, "invalid configuration")
}
