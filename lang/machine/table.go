package machine

import "github.com/dolthub/swiss"

// table is the string-keyed map used for globals, instance fields and class
// method tables. Keys are interned String objects, so the underlying swiss
// map hashes and compares pointers.
type table struct {
	m *swiss.Map[*String, Value]
}

func newTable() *table {
	return &table{m: swiss.NewMap[*String, Value](8)}
}

func (t *table) get(k *String) (Value, bool) {
	return t.m.Get(k)
}

// set stores v under k and reports whether the key was newly added.
func (t *table) set(k *String, v Value) bool {
	isNew := !t.m.Has(k)
	t.m.Put(k, v)
	return isNew
}

func (t *table) delete(k *String) {
	t.m.Delete(k)
}

// addAll copies every entry of src into t. Used by INHERIT to flatten the
// superclass methods into the subclass before its own methods are defined.
func (t *table) addAll(src *table) {
	src.m.Iter(func(k *String, v Value) bool {
		t.m.Put(k, v)
		return false
	})
}

func (t *table) iter(fn func(k *String, v Value) (stop bool)) {
	t.m.Iter(fn)
}

func (t *table) count() int { return t.m.Count() }
