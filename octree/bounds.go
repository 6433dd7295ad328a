package octree

// BBox is an axis-aligned bounding box.
type BBox struct {
	Min Vector3f
	Max Vector3f
}

// NewBBox creates a bounding box from its two extreme corners. min must be
// component-wise lesser or equal than max; anything else is a programming
// error.
func NewBBox(min, max Vector3f) BBox {
	if !min.LesserOrEqualThan(max) {
		panic("octree: bbox min is greater than max")
	}
	return BBox{Min: min, Max: max}
}

// Collides reports whether the two boxes overlap. Touching faces count as
// overlapping.
func (b BBox) Collides(other BBox) bool {
	return other.Max.X >= b.Min.X &&
		b.Max.X >= other.Min.X &&
		other.Max.Y >= b.Min.Y &&
		b.Max.Y >= other.Min.Y &&
		other.Max.Z >= b.Min.Z &&
		b.Max.Z >= other.Min.Z
}

// CollidesCube reports whether the box overlaps the cubic region.
func (b BBox) CollidesCube(c BCube) bool {
	return b.Collides(c.BBox())
}

// Contains reports whether p is inside the box, faces included.
func (b BBox) Contains(p Vector3f) bool {
	return p.GreaterOrEqualThan(b.Min) && p.LesserOrEqualThan(b.Max)
}

// ContainsBox reports whether other is entirely inside the box.
func (b BBox) ContainsBox(other BBox) bool {
	return other.Min.GreaterOrEqualThan(b.Min) &&
		other.Max.LesserOrEqualThan(b.Max)
}

// Translate returns the box moved by v.
func (b BBox) Translate(v Vector3f) BBox {
	return BBox{Min: Add(b.Min, v), Max: Add(b.Max, v)}
}

// Center returns the centroid of the box.
func (b BBox) Center() Vector3f {
	return Mul(Add(b.Min, b.Max), 0.5)
}

// BCube is a cubic region described by its center and half-extent. The zero
// value is the empty region.
type BCube struct {
	Center  Vector3f
	HalfLen float32
}

// Half-extents below this are treated as degenerate and bumped to 1, so a
// point-sized first insertion still produces a subdividable region.
const minHalfLen = 0.000001

func EmptyBCube() BCube {
	return BCube{}
}

func (c BCube) IsEmpty() bool {
	return c.HalfLen == 0
}

// BCubeContaining returns the smallest cube centered on b that contains b.
func BCubeContaining(b BBox) BCube {
	size := Sub(b.Max, b.Min)
	half := size.X
	if size.Y > half {
		half = size.Y
	}
	if size.Z > half {
		half = size.Z
	}
	half /= 2
	if half < minHalfLen {
		half = 1
	}
	return BCube{Center: b.Center(), HalfLen: half}
}

// BBox returns the box equivalent of the cube.
func (c BCube) BBox() BBox {
	e := Vector3f{c.HalfLen, c.HalfLen, c.HalfLen}
	return BBox{Min: Sub(c.Center, e), Max: Add(c.Center, e)}
}

// Extend grows the cube one doubling step toward b. The half-extent doubles
// and the center shifts by the old half-extent along each axis, toward
// whichever side of b needs the most room. The pre-growth cube is always
// exactly one octant of the returned cube, which is what lets the root grow
// by re-parenting (see Octree.growRoot). Callers repeat until the cube
// contains b.
func (c BCube) Extend(b BBox) BCube {
	h := c.HalfLen
	if h < minHalfLen {
		h = 1
	}

	grown := BCube{Center: c.Center, HalfLen: h * 2}
	grown.Center.X += extendDir(c.Center.X, h, b.Min.X, b.Max.X)
	grown.Center.Y += extendDir(c.Center.Y, h, b.Min.Y, b.Max.Y)
	grown.Center.Z += extendDir(c.Center.Z, h, b.Min.Z, b.Max.Z)
	return grown
}

// extendDir picks the per-axis center shift (+h or -h) toward the side of
// [min, max] that the interval [center-h, center+h] is missing the most.
func extendDir(center, h, min, max float32) float32 {
	below := (center - h) - min
	above := max - (center + h)
	if below > above {
		return -h
	}
	return h
}
