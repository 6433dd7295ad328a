package octree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type ball struct {
	Center Vector3f
	Half   Vector3f
	Tag    int
}

func (b ball) Bounds() BBox {
	return BBox{Min: Sub(b.Center, b.Half), Max: Add(b.Center, b.Half)}
}

func unitBall(x, y, z float32, tag int) ball {
	return ball{
		Center: NewVector3f(x, y, z),
		Half:   NewVector3f(1, 1, 1),
		Tag:    tag,
	}
}

func pointBall(x, y, z float32, tag int) ball {
	return ball{Center: NewVector3f(x, y, z), Tag: tag}
}

func TestOctreeBootstrap(t *testing.T) {
	tree := New[ball]()
	require.Equal(t, 0, tree.Len())
	require.True(t, tree.Bounds().IsEmpty())

	id := tree.Add(unitBall(3, 4, 5, 42))
	require.True(t, id.IsSome())
	require.Equal(t, 1, tree.Len())
	require.True(t, tree.Bounds().Center.Equal(NewVector3f(3, 4, 5)))
	require.True(t, tree.Bounds().BBox().ContainsBox(tree.Get(id).Bounds()))

	removed := tree.Remove(id)
	require.Equal(t, 42, removed.Tag)
	require.Equal(t, 0, tree.Len())
	require.True(t, tree.Bounds().IsEmpty())

	// The next insert must bootstrap a fresh tree, not reuse stale state.
	id2 := tree.Add(unitBall(-50, 0, 0, 7))
	require.Equal(t, 1, tree.Len())
	require.True(t, tree.Bounds().Center.Equal(NewVector3f(-50, 0, 0)))
	require.Equal(t, 7, tree.Get(id2).Tag)
}

func TestOctreeRoundTrip(t *testing.T) {
	tree := New[ball]()

	balls := []ball{
		unitBall(0, 0, 0, 0),
		unitBall(10, 0, 0, 1),
		unitBall(0, 10, 0, 2),
		unitBall(0, 0, 10, 3),
		unitBall(-10, -10, -10, 4),
		unitBall(25, 25, 25, 5),
	}

	ids := make([]ID, len(balls))
	for i, b := range balls {
		ids[i] = tree.Add(b)
	}
	require.Equal(t, len(balls), tree.Len())

	// Remove in an order that is neither insertion nor reverse insertion.
	for _, i := range []int{3, 0, 5, 1, 4, 2} {
		removed := tree.Remove(ids[i])
		require.Equal(t, balls[i], removed)
	}
	require.Equal(t, 0, tree.Len())
}

func TestOctreeRemoveOnGrownRootFace(t *testing.T) {
	tree := New[ball]()

	origin := tree.Add(pointBall(0, 0, 0, 1))
	// Sits exactly on the -x face of the initial root cube. Growing the
	// root turns that face into an interior octant plane, and the tie rule
	// then classifies the box away from the octant that actually holds it.
	face := tree.Add(pointBall(-1, 0, 0, 2))
	far := tree.Add(pointBall(-3, 0, 0, 3))
	require.Equal(t, 3, tree.Len())

	require.Equal(t, 2, tree.Remove(face).Tag)
	require.Equal(t, 2, tree.Len())

	require.Equal(t, 1, tree.Remove(origin).Tag)
	require.Equal(t, 3, tree.Remove(far).Tag)
	require.Equal(t, 0, tree.Len())
}

func TestOctreeContainmentInvariant(t *testing.T) {
	tree := New[ball]()

	balls := []ball{
		unitBall(0, 0, 0, 0),
		unitBall(100, 0, 0, 1),
		unitBall(0, 100, 0, 2),
		unitBall(-3, 17, 250, 3),
		unitBall(0.5, -0.5, 0.25, 4),
		{Center: NewVector3f(-60, -60, -60), Half: NewVector3f(5, 2, 9), Tag: 5},
	}

	var ids []ID
	for _, b := range balls {
		ids = append(ids, tree.Add(b))

		root := tree.Bounds().BBox()
		for _, id := range ids {
			require.True(t, root.ContainsBox(tree.Get(id).Bounds()))
		}
	}
}

func TestOctreeCountInvariant(t *testing.T) {
	tree := New[ball]()

	var ids []ID
	for i := 0; i < 20; i++ {
		ids = append(ids, tree.Add(unitBall(float32(i*3), 0, 0, i)))
		require.Equal(t, i+1, tree.Len())
	}

	for i, id := range ids {
		tree.Remove(id)
		require.Equal(t, len(ids)-i-1, tree.Len())
	}
}

func TestOctreeHandleReuse(t *testing.T) {
	tree := New[ball]()

	a := tree.Add(unitBall(0, 0, 0, 1))
	b := tree.Add(unitBall(5, 0, 0, 2))
	require.NotEqual(t, a, b)

	tree.Remove(b)

	// The freed slot is recycled; the surviving handle is untouched.
	c := tree.Add(unitBall(-5, 0, 0, 3))
	require.Equal(t, b, c)
	require.Equal(t, 1, tree.Get(a).Tag)
	require.Equal(t, 3, tree.Get(c).Tag)
}

func TestOctreeGetSet(t *testing.T) {
	tree := New[ball]()

	id := tree.Add(unitBall(1, 2, 3, 9))
	tree.Get(id).Tag = 10
	require.Equal(t, 10, tree.Get(id).Tag)

	tree.Set(id, unitBall(1.5, 2, 3, 11))
	require.Equal(t, 11, tree.Get(id).Tag)
	require.True(t, tree.Get(id).Center.Equal(NewVector3f(1.5, 2, 3)))
}

// Three small objects far apart force the root to grow repeatedly; removing
// the middle one must leave the other two reachable, including through a
// root collapse.
func TestOctreeRootGrowth(t *testing.T) {
	tree := New[ball]()

	h1 := tree.Add(unitBall(0, 0, 0, 1))
	require.EqualValues(t, 1, tree.Bounds().HalfLen)

	h2 := tree.Add(unitBall(100, 0, 0, 2))
	require.GreaterOrEqual(t, tree.Bounds().HalfLen, float32(4))

	h3 := tree.Add(unitBall(0, 100, 0, 3))

	root := tree.Bounds().BBox()
	for _, id := range []ID{h1, h2, h3} {
		require.True(t, root.ContainsBox(tree.Get(id).Bounds()))
	}

	removed := tree.Remove(h2)
	require.Equal(t, 2, removed.Tag)
	require.Equal(t, 2, tree.Len())

	require.Equal(t, 1, tree.Get(h1).Tag)
	require.Equal(t, 3, tree.Get(h3).Tag)

	hits := tree.Collisions(NewBBox(NewVector3f(-2, -2, -2), NewVector3f(2, 2, 2)))
	require.Equal(t, []ID{h1}, hits)

	hits = tree.Collisions(NewBBox(NewVector3f(-2, 98, -2), NewVector3f(2, 102, 2)))
	require.Equal(t, []ID{h3}, hits)

	require.Equal(t, 3, tree.Remove(h3).Tag)
	require.Equal(t, 1, tree.Remove(h1).Tag)
	require.Equal(t, 0, tree.Len())
}

// Objects that all straddle the root's center can never be pushed into an
// octant; once the direct slots run out they must spill into an overflow
// leaf reached through the link slot.
func TestOctreeOverflowChain(t *testing.T) {
	tree := New[ball]()

	ids := make([]ID, 0, 10)
	ids = append(ids, tree.Add(ball{
		Center: NewVector3f(5, 5, 5),
		Half:   NewVector3f(2, 2, 2),
		Tag:    0,
	}))
	for i := 1; i < 10; i++ {
		ids = append(ids, tree.Add(ball{
			Center: NewVector3f(5, 5, 5),
			Half:   NewVector3f(1, 1, 1),
			Tag:    i,
		}))
	}
	require.Equal(t, 10, tree.Len())

	// 7 direct slots on the root, 3 spilled into a linked leaf.
	rootNode := tree.nodes.at(tree.root)
	require.True(t, rootNode.link.IsSome())
	leaf := tree.nodes.at(rootNode.link)
	require.True(t, leaf.isLeaf())

	held := 0
	for _, s := range leaf.colliderSlots() {
		if s.IsSome() {
			held++
		}
	}
	require.Equal(t, 3, held)

	// Remove a chain-held object, then everything else.
	require.Equal(t, 8, tree.Remove(ids[8]).Tag)
	require.Equal(t, 9, tree.Len())

	require.Equal(t, 9, tree.Remove(ids[9]).Tag)
	require.Equal(t, 7, tree.Remove(ids[7]).Tag)

	// The chain leaf emptied and was spliced out.
	require.True(t, tree.nodes.at(tree.root).link.IsNone())

	for i := 0; i < 7; i++ {
		require.Equal(t, i, tree.Remove(ids[i]).Tag)
	}
	require.Equal(t, 0, tree.Len())
}

func TestOctreeCollisions(t *testing.T) {
	tree := New[ball]()
	require.Nil(t, tree.Collisions(NewBBox(NewVector3f(0, 0, 0), NewVector3f(1, 1, 1))))

	a := tree.Add(unitBall(0, 0, 0, 1))
	b := tree.Add(unitBall(20, 0, 0, 2))
	c := tree.Add(unitBall(20, 20, 0, 3))

	t.Run("single hit", func(t *testing.T) {
		hits := tree.Collisions(NewBBox(NewVector3f(19, -1, -1), NewVector3f(21, 1, 1)))
		require.Equal(t, []ID{b}, hits)
	})

	t.Run("all hits", func(t *testing.T) {
		hits := tree.Collisions(NewBBox(NewVector3f(-50, -50, -50), NewVector3f(50, 50, 50)))
		require.ElementsMatch(t, []ID{a, b, c}, hits)
	})

	t.Run("no hit", func(t *testing.T) {
		hits := tree.Collisions(NewBBox(NewVector3f(-50, -50, 30), NewVector3f(50, 50, 40)))
		require.Empty(t, hits)
	})
}
