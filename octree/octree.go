package octree

// Collider is what a stored object must expose: its current axis-aligned
// bounding box. The tree never caches the box; it is re-queried at every
// structural decision point, so it may change between calls if the object
// moves. Callers that move an object far enough to need re-classification
// must Remove and Add it again.
type Collider interface {
	Bounds() BBox
}

// Octree is a spatial index over movable, bounded objects.
//
// The cubic region of the root contains the bounds of every stored object.
// When an object outside that region is added, a larger enclosing branch
// becomes the new root, with the old root as one of its octants; the process
// repeats until the object fits. Removal merges nodes back and collapses a
// root left with a single octant child.
//
// Nodes and colliders live in two handle-indexed arenas with free-lists, so
// nodes reference each other by 32-bit ID instead of by pointer. An Octree
// must not be mutated concurrently; callers needing that wrap it in a lock.
type Octree[T Collider] struct {
	colliders arena[T]
	nodes     arena[node]
	cube      BCube
	root      ID
	count     uint32
}

// New creates an empty octree.
func New[T Collider]() *Octree[T] {
	return &Octree[T]{cube: EmptyBCube()}
}

// Len returns the number of stored colliders.
func (o *Octree[T]) Len() int {
	return int(o.count)
}

// Bounds returns the root's cubic region. It is the empty cube while the
// tree holds nothing.
func (o *Octree[T]) Bounds() BCube {
	if o.count == 0 {
		return EmptyBCube()
	}
	return o.cube
}

// Get returns the stored object for in-place access. The handle must be
// live; anything else is a programming error. The pointer is only valid
// until the next Add, which may move the backing storage.
func (o *Octree[T]) Get(id ID) *T {
	return o.colliders.at(id)
}

// Set overwrites the stored object. The new value's bounds must classify
// into the same region as the old one's; otherwise Remove and Add instead.
func (o *Octree[T]) Set(id ID, v T) {
	*o.colliders.at(id) = v
}

// Add stores c and returns its handle. Add always succeeds: the root grows
// to cover out-of-bounds objects and saturated nodes chain overflow leaves.
func (o *Octree[T]) Add(c T) ID {
	id := o.colliders.alloc(c)

	if o.count == 0 {
		o.addFirst(id)
	} else {
		o.addNext(id)
	}

	o.count++
	return id
}

// addFirst bootstraps the tree around the very first object: whatever node
// state a previous generation left behind is discarded, the root cube is
// sized to the object's box, and a fresh root branch holds the object
// directly.
func (o *Octree[T]) addFirst(id ID) {
	o.nodes.reset()

	o.cube = BCubeContaining((*o.colliders.at(id)).Bounds())
	root := o.newBranch()
	if !o.nodes.at(root).addCollider(id) {
		panic("octree: fresh root rejected collider")
	}
	o.root = root
}

func (o *Octree[T]) addNext(id ID) {
	bounds := (*o.colliders.at(id)).Bounds()

	for !o.cube.BBox().ContainsBox(bounds) {
		o.growRoot(bounds)
	}

	o.addInside(id, o.root, o.cube)
}

// growRoot replaces the root with a branch covering one doubling step more
// space toward bounds. Extend guarantees the old cube is exactly one octant
// of the new cube, so the old root is re-parented under that octant.
func (o *Octree[T]) growRoot(bounds BBox) {
	oldCenter := o.cube.Center
	o.cube = o.cube.Extend(bounds)

	oct := whichChild(o.cube.Center, oldCenter)
	id := o.newBranch()
	o.nodes.at(id).octants[oct] = o.root
	o.root = id
}

// addInside stores id somewhere under nodeID, whose region is cube.
func (o *Octree[T]) addInside(id ID, nodeID ID, cube BCube) {
	bounds := (*o.colliders.at(id)).Bounds()
	if !bounds.CollidesCube(cube) {
		panic("octree: insert outside node region")
	}
	if o.nodes.at(nodeID).isLeaf() {
		panic("octree: insert into leaf node")
	}

	// The common case: the branch has a direct slot open.
	if o.nodes.at(nodeID).addCollider(id) {
		return
	}

	// Full. Try to relocate the branch's current colliders one level down
	// to make room; each that fits a single octant frees its slot here.
	for i := 0; i < branchColliders; i++ {
		held := o.nodes.at(nodeID).colliders[i]
		if held.IsNone() {
			continue
		}
		if o.pushDown(held, nodeID, cube) {
			o.nodes.at(nodeID).colliders[i] = None
		}
	}

	// The new object itself may fit a single octant.
	if o.pushDown(id, nodeID, cube) {
		return
	}

	// It straddles the center. Retry the direct slots, which relocation
	// may have freed, before falling back to the overflow chain.
	if o.nodes.at(nodeID).addCollider(id) {
		return
	}

	o.linkCollider(id, nodeID)
}

// pushDown moves id into the octant child its box fits in, creating the
// child branch when the octant is empty. Reports false when the box straddles
// the region center and cannot descend.
func (o *Octree[T]) pushDown(id ID, nodeID ID, cube BCube) bool {
	bounds := (*o.colliders.at(id)).Bounds()

	oct, ok := whichChildBBox(cube.Center, bounds)
	if !ok {
		return false
	}

	child := o.nodes.at(nodeID).octants[oct]
	childRegion := childCube(oct, cube)

	if child.IsSome() {
		o.addInside(id, child, childRegion)
		return true
	}

	branch := o.newBranch()
	o.nodes.at(nodeID).octants[oct] = branch
	if !o.nodes.at(branch).addCollider(id) {
		panic("octree: fresh branch rejected collider")
	}
	return true
}

// linkCollider stores id in nodeID's overflow chain, walking the linked
// leaves iteratively (chains are unbounded in principle) and appending a new
// leaf at the end when every linked leaf is full.
func (o *Octree[T]) linkCollider(id ID, nodeID ID) {
	cur := nodeID
	for {
		next := o.nodes.at(cur).link
		if next.IsNone() {
			leaf := o.newLeaf()
			o.nodes.at(cur).link = leaf
			if !o.nodes.at(leaf).addCollider(id) {
				panic("octree: fresh leaf rejected collider")
			}
			return
		}
		if o.nodes.at(next).addCollider(id) {
			return
		}
		cur = next
	}
}

func (o *Octree[T]) newNode(n node) ID {
	return o.nodes.alloc(n)
}

func (o *Octree[T]) newBranch() ID {
	return o.newNode(newBranch())
}

func (o *Octree[T]) newLeaf() ID {
	return o.newNode(newLeaf())
}

// Remove takes the object out of the tree and returns it. The handle must
// have been returned by Add and not yet removed; it is recycled and must not
// be used afterward.
func (o *Octree[T]) Remove(id ID) T {
	if o.count == 0 {
		panic("octree: remove from empty tree")
	}

	// The root itself reporting empty is fine; it is never detached and
	// the next Add bootstraps over it.
	found, _ := o.removeInside(id, o.root, o.cube)
	if !found {
		panic("octree: handle not found in tree")
	}

	v := *o.colliders.at(id)
	o.colliders.release(id)

	// A root with a single octant child, no direct colliders and no
	// overflow chain is structurally redundant: promote the child, which
	// also narrows the tree cube to the child's region.
	if oct, ok := o.nodes.at(o.root).soleOctant(); ok && o.nodes.at(o.root).link.IsNone() {
		old := o.root
		o.root = o.nodes.at(old).octants[oct]
		o.cube = childCube(oct, o.cube)
		o.nodes.release(old)
	}

	o.count--
	return v
}

// removeInside removes id from the subtree rooted at nodeID (region cube).
// It reports whether id was found, and whether nodeID became empty so the
// caller can detach it.
//
// The search order is: the single octant the box classifies into, then this
// node's own slots and overflow chain, then every other octant whose closed
// region still touches the box. The last step exists because root growth
// re-parents old content under a fresh center, and a box lying exactly on
// such a center plane classifies into one octant while living in another;
// only the octants touching the box's boundary planes get scanned.
func (o *Octree[T]) removeInside(id ID, nodeID ID, cube BCube) (bool, bool) {
	bounds := (*o.colliders.at(id)).Bounds()
	if !bounds.CollidesCube(cube) {
		panic("octree: remove outside node region")
	}
	if o.nodes.at(nodeID).isLeaf() {
		panic("octree: remove descended into leaf node")
	}

	tried := -1
	if oct, ok := whichChildBBox(cube.Center, bounds); ok {
		if found := o.removeFromOctant(id, nodeID, oct, cube); found {
			return true, false
		}
		tried = oct
	}

	if found, emptied := o.removeLocal(id, nodeID); found {
		return found, emptied
	}

	for oct := 0; oct < 8; oct++ {
		if oct == tried || o.nodes.at(nodeID).octants[oct].IsNone() {
			continue
		}
		if !bounds.CollidesCube(childCube(oct, cube)) {
			continue
		}
		if found := o.removeFromOctant(id, nodeID, oct, cube); found {
			return true, false
		}
	}

	return false, false
}

// removeFromOctant recurses the removal into the given octant child, if
// there is one, detaching the child when it empties.
func (o *Octree[T]) removeFromOctant(id ID, nodeID ID, oct int, cube BCube) bool {
	child := o.nodes.at(nodeID).octants[oct]
	if child.IsNone() {
		return false
	}

	found, emptied := o.removeInside(id, child, childCube(oct, cube))
	if emptied {
		o.nodes.at(nodeID).octants[oct] = None
		o.nodes.release(child)
	}
	return found
}

// removeLocal clears id from nodeID's direct slots, or failing that from its
// overflow chain. A linked leaf emptied by the removal is spliced out of the
// chain and reclaimed. A node with a live chain never reports empty; the
// link must be gone before emptiness means anything.
func (o *Octree[T]) removeLocal(id ID, nodeID ID) (bool, bool) {
	if o.nodes.at(nodeID).removeCollider(id) {
		n := o.nodes.at(nodeID)
		return true, n.isEmpty() && n.link.IsNone()
	}

	prev := nodeID
	for {
		cur := o.nodes.at(prev).link
		if cur.IsNone() {
			return false, false
		}
		if o.nodes.at(cur).removeCollider(id) {
			if o.nodes.at(cur).isEmpty() {
				o.nodes.at(prev).link = o.nodes.at(cur).link
				o.nodes.release(cur)
			}
			return true, false
		}
		prev = cur
	}
}

// Collisions returns the handles of every stored object whose current bounds
// overlap b, pruning subtrees whose regions do not reach b.
func (o *Octree[T]) Collisions(b BBox) []ID {
	if o.count == 0 {
		return nil
	}

	var hits []ID
	o.collect(b, o.root, o.cube, &hits)
	return hits
}

func (o *Octree[T]) collect(b BBox, nodeID ID, cube BCube, hits *[]ID) {
	if !b.CollidesCube(cube) {
		return
	}

	// Direct slots, then the overflow chain.
	cur := nodeID
	for cur.IsSome() {
		for _, held := range o.nodes.at(cur).colliderSlots() {
			if held.IsSome() && b.Collides((*o.colliders.at(held)).Bounds()) {
				*hits = append(*hits, held)
			}
		}
		cur = o.nodes.at(cur).link
	}

	for oct, child := range o.nodes.at(nodeID).octants {
		if child.IsSome() {
			o.collect(b, child, childCube(oct, cube), hits)
		}
	}
}
