package octree

// Direct collider slot budgets. A branch spends 8 of its slots on octant
// children and one on the overflow link, leaving 7 for colliders; a leaf only
// spends the link slot, leaving 14.
const (
	branchColliders = 7
	leafColliders   = 14
)

type nodeKind uint8

const (
	kindBranch nodeKind = iota
	kindLeaf
)

// node is either a branch or a leaf.
//
// A branch has up to 8 octant children and up to 7 directly-held colliders: a
// collider whose box straddles the branch's center cannot be pushed into a
// single octant and is held here instead. A leaf holds up to 14 colliders and
// serves as the overflow bucket of a saturated node, reached through link.
//
// Each node's cubic region is implicit in its position in the tree; nothing
// is cached on the node itself.
type node struct {
	kind      nodeKind
	octants   [8]ID
	colliders [leafColliders]ID
	link      ID
}

func newBranch() node {
	return node{kind: kindBranch}
}

func newLeaf() node {
	return node{kind: kindLeaf}
}

func (n *node) isLeaf() bool {
	return n.kind == kindLeaf
}

// colliderSlots returns the direct collider slots usable by this node kind.
func (n *node) colliderSlots() []ID {
	if n.isLeaf() {
		return n.colliders[:leafColliders]
	}
	return n.colliders[:branchColliders]
}

// addCollider stores id in the first open collider slot, reporting false when
// the node is full.
func (n *node) addCollider(id ID) bool {
	slots := n.colliderSlots()
	for i := range slots {
		if slots[i].IsNone() {
			slots[i] = id
			return true
		}
	}
	return false
}

// removeCollider clears the slot holding id, reporting false when id is not
// held directly by this node. The overflow link is never searched here; that
// is the caller's call to make.
func (n *node) removeCollider(id ID) bool {
	slots := n.colliderSlots()
	for i := range slots {
		if slots[i] == id {
			slots[i] = None
			return true
		}
	}
	return false
}

// isEmpty reports whether the node holds no children and no colliders. The
// link slot is not part of the test; callers splice or clear it separately.
func (n *node) isEmpty() bool {
	for _, o := range n.octants {
		if o.IsSome() {
			return false
		}
	}
	for _, c := range n.colliderSlots() {
		if c.IsSome() {
			return false
		}
	}
	return true
}

// soleOctant returns the index of the only occupied octant child, if the node
// has exactly one child and no directly-held colliders. Removal uses this to
// collapse a redundant root.
func (n *node) soleOctant() (int, bool) {
	found := -1
	for i, o := range n.octants {
		if o.IsNone() {
			continue
		}
		if found >= 0 {
			return 0, false
		}
		found = i
	}
	if found < 0 {
		return 0, false
	}
	for _, c := range n.colliderSlots() {
		if c.IsSome() {
			return 0, false
		}
	}
	return found, true
}

// whichChild classifies p against the region center c, producing the octant
// index. Ties go to the "below" side on each axis.
func whichChild(c, p Vector3f) int {
	oct := 0
	if p.X > c.X {
		oct |= 4
	}
	if p.Y > c.Y {
		oct |= 2
	}
	if p.Z > c.Z {
		oct |= 1
	}
	return oct
}

// whichChildBBox classifies both corners of b; when they land in the same
// octant the box fits entirely within that child's region and descent is
// possible. Otherwise the box straddles the center on at least one axis.
func whichChildBBox(c Vector3f, b BBox) (int, bool) {
	min := whichChild(c, b.Min)
	max := whichChild(c, b.Max)
	if min != max {
		return 0, false
	}
	return min, true
}

// childCube derives the cubic region of the octant child oct from its
// parent's region: half the parent's extent, offset by half the parent's
// half-extent along each axis. Below minHalfLen only the center offset is
// bumped so degenerate subdivisions still separate, while the child stays
// inside the parent's extent.
func childCube(oct int, parent BCube) BCube {
	h := parent.HalfLen / 2

	off := h
	if off < minHalfLen {
		off = 1
	}

	c := parent.Center
	if oct&4 != 0 {
		c.X += off
	} else {
		c.X -= off
	}
	if oct&2 != 0 {
		c.Y += off
	} else {
		c.Y -= off
	}
	if oct&1 != 0 {
		c.Z += off
	} else {
		c.Z -= off
	}

	return BCube{Center: c, HalfLen: h}
}
