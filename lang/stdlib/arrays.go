package stdlib

import (
	"fmt"
	"strings"

	"github.com/mna/nppc2/lang/machine"
)

// The named string arrays of the language: a registry of growable string
// lists addressed by name, manipulated exclusively through natives. The
// registry belongs to the stdlib state, not to the machine heap, the items
// only become values when read back with getArray.
type namedArray struct {
	items []string
}

func (l *lib) lookupArray(name string) (*namedArray, error) {
	arr, ok := l.arrays.Get(name)
	if !ok {
		return nil, fmt.Errorf("Array with name '%s' not found.", name)
	}
	return arr, nil
}

func (l *lib) arrayAt(args []machine.Value) (*namedArray, int, error) {
	name, err := strArg(args, 0)
	if err != nil {
		return nil, 0, err
	}
	ixf, err := numArg(args, 1)
	if err != nil {
		return nil, 0, err
	}
	arr, err := l.lookupArray(name)
	if err != nil {
		return nil, 0, err
	}
	ix := int(ixf)
	if ix < 0 || ix >= len(arr.items) {
		return nil, 0, fmt.Errorf("Index %d out of bounds for array '%s' (size: %d).", ix, name, len(arr.items))
	}
	return arr, ix, nil
}

// array creates a named array: the first argument is the name, the rest are
// the initial items.
func (l *lib) array(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("Expected at least 1 argument but got %d.", len(args))
	}
	items := make([]string, 0, len(args)-1)
	for i := range args {
		s, err := strArg(args, i)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			items = append(items, s)
		}
	}
	name, _ := strArg(args, 0)
	l.arrays.Put(name, &namedArray{items: items})
	return machine.Nil, nil
}

func (l *lib) getArray(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 2); err != nil {
		return nil, err
	}
	arr, ix, err := l.arrayAt(args)
	if err != nil {
		return nil, err
	}
	return vm.CopyString(arr.items[ix]), nil
}

func (l *lib) lenArray(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	name, err := strArg(args, 0)
	if err != nil {
		return nil, err
	}
	arr, err := l.lookupArray(name)
	if err != nil {
		return nil, err
	}
	return machine.Number(len(arr.items)), nil
}

func (l *lib) addArray(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 2); err != nil {
		return nil, err
	}
	name, err := strArg(args, 0)
	if err != nil {
		return nil, err
	}
	item, err := strArg(args, 1)
	if err != nil {
		return nil, err
	}
	arr, err := l.lookupArray(name)
	if err != nil {
		return nil, err
	}
	arr.items = append(arr.items, item)
	return machine.Nil, nil
}

func (l *lib) rmvArray(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 2); err != nil {
		return nil, err
	}
	arr, ix, err := l.arrayAt(args)
	if err != nil {
		return nil, err
	}
	arr.items = append(arr.items[:ix], arr.items[ix+1:]...)
	return machine.Nil, nil
}

// cngArray replaces the item at index (argument 2) with the string given as
// argument 3.
func (l *lib) cngArray(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 3); err != nil {
		return nil, err
	}
	repl, err := strArg(args, 2)
	if err != nil {
		return nil, err
	}
	arr, ix, err := l.arrayAt(args)
	if err != nil {
		return nil, err
	}
	arr.items[ix] = repl
	return machine.Nil, nil
}

func (l *lib) delArray(_ *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	name, err := strArg(args, 0)
	if err != nil {
		return nil, err
	}
	if _, err := l.lookupArray(name); err != nil {
		return nil, err
	}
	l.arrays.Delete(name)
	return machine.Nil, nil
}

// bctArray prints the array in "[a, b, c]" form.
func (l *lib) bctArray(vm *machine.VM, args []machine.Value) (machine.Value, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	name, err := strArg(args, 0)
	if err != nil {
		return nil, err
	}
	arr, err := l.lookupArray(name)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(vm.Output(), "[%s]\n", strings.Join(arr.items, ", "))
	return machine.Nil, nil
}
