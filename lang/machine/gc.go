package machine

// The collector is a stop-the-world tri-color mark-sweep over the machine's
// own object heap. White objects are unmarked, gray objects are on the
// worklist, black objects have been marked and had their references scanned.
// Collections are triggered by allocation growth, before the new object is
// linked, so a collection can never observe a half-created object.

// maybeCollect accounts size bytes and runs a collection when the allocation
// growth crosses the threshold (or always, under GCStress).
func (vm *VM) maybeCollect(size int) {
	vm.bytesAllocated += size
	if vm.cfg.GCStress || vm.bytesAllocated > vm.nextGC {
		vm.CollectGarbage()
	}
}

// CollectGarbage runs a full collection: mark from the roots, prune the
// weak intern table, sweep the all-objects list. The next collection triggers
// at twice the surviving byte count.
func (vm *VM) CollectGarbage() {
	vm.markRoots()
	vm.traceReferences()
	vm.pruneStrings()
	vm.sweep()
	vm.nextGC = vm.bytesAllocated * 2
}

// BytesAllocated returns the number of accounted heap bytes currently live.
func (vm *VM) BytesAllocated() int { return vm.bytesAllocated }

// markRoots marks every value the machine can reach directly: the live
// region of the value stack, the closure of every active frame, the open
// upvalue list, the globals table and the interned "init" string. The
// compiler contributes no roots: it works on plain Go values and only the
// materialized Function objects live on this heap, rooted through the stack
// while they are built.
func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		vm.markObject(vm.frames[i].closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.next {
		vm.markObject(uv)
	}
	vm.markTable(vm.globals)
	vm.markObject(vm.init)
}

func (vm *VM) markValue(v Value) {
	if o, ok := v.(object); ok {
		vm.markObject(o)
	}
}

func (vm *VM) markObject(o object) {
	if o == nil {
		return
	}
	h := o.header()
	if h.marked {
		return
	}
	h.marked = true
	vm.grayStack = append(vm.grayStack, o)
}

func (vm *VM) markTable(t *table) {
	t.iter(func(k *String, v Value) bool {
		vm.markObject(k)
		vm.markValue(v)
		return false
	})
}

// traceReferences drains the gray worklist, blackening each object by
// marking everything it references.
func (vm *VM) traceReferences() {
	for len(vm.grayStack) > 0 {
		o := vm.grayStack[len(vm.grayStack)-1]
		vm.grayStack = vm.grayStack[:len(vm.grayStack)-1]
		vm.blacken(o)
	}
}

func (vm *VM) blacken(o object) {
	switch o := o.(type) {
	case *String, *Native:
		// no outgoing references
	case *Function:
		vm.markObject(o.name)
		for _, k := range o.chunk.constants {
			vm.markValue(k)
		}
	case *Closure:
		vm.markObject(o.fn)
		for _, uv := range o.upvalues {
			vm.markObject(uv)
		}
	case *Upvalue:
		// the referent of an open upvalue is a stack slot, covered by the
		// stack root scan
		vm.markValue(o.closed)
	case *Class:
		vm.markObject(o.name)
		vm.markTable(o.methods)
	case *Instance:
		vm.markObject(o.class)
		vm.markTable(o.fields)
	case *BoundMethod:
		vm.markValue(o.receiver)
		vm.markObject(o.method)
	}
}

// pruneStrings removes unmarked strings from the intern table before the
// sweep. The table holds weak references: without the prune, a dead string
// would be resurrected by the next CopyString of equal content returning
// freed memory.
func (vm *VM) pruneStrings() {
	var dead []string
	vm.strings.Iter(func(k string, s *String) bool {
		if !s.marked {
			dead = append(dead, k)
		}
		return false
	})
	for _, k := range dead {
		vm.strings.Delete(k)
	}
}

// sweep walks the all-objects list, unlinking and un-accounting every
// unmarked object and clearing the mark of the survivors.
func (vm *VM) sweep() {
	var prev object
	o := vm.objects
	for o != nil {
		h := o.header()
		if h.marked {
			h.marked = false
			prev = o
			o = h.next
			continue
		}
		dead := o
		o = h.next
		if prev == nil {
			vm.objects = o
		} else {
			prev.header().next = o
		}
		dead.header().next = nil
		vm.bytesAllocated -= h.size
	}
}
