package octree

// ID is an opaque handle to an arena slot. IDs are one greater than the slot
// index they reference so that the zero value can mean "no handle".
type ID uint32

// None is the ID that references nothing.
const None ID = 0

func (id ID) IsNone() bool {
	return id == None
}

func (id ID) IsSome() bool {
	return id != None
}

func (id ID) index() int {
	return int(id) - 1
}

func idFromIndex(i int) ID {
	return ID(i + 1)
}

// arena is a growable slot store with a free-list. Slots are never shifted,
// so an ID stays valid until it is released. Accessing a released or
// out-of-range ID is a programming error; validity is an invariant
// maintained by the Octree, not re-checked here.
type arena[T any] struct {
	slots []T
	free  []ID
}

// alloc stores v in a recycled slot when one is available, appending
// otherwise, and returns the slot's handle. A recycled slot's previous
// occupant is plainly overwritten.
func (a *arena[T]) alloc(v T) ID {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[id.index()] = v
		return id
	}

	a.slots = append(a.slots, v)
	return idFromIndex(len(a.slots) - 1)
}

// release returns the slot to the free-list. The handle must not be used
// afterward.
func (a *arena[T]) release(id ID) {
	a.free = append(a.free, id)
}

// at returns a pointer to the referenced slot. The pointer is invalidated by
// the next alloc, which may grow the backing storage.
func (a *arena[T]) at(id ID) *T {
	return &a.slots[id.index()]
}

// reset empties the arena, invalidating every outstanding handle.
func (a *arena[T]) reset() {
	a.slots = a.slots[:0]
	a.free = a.free[:0]
}
