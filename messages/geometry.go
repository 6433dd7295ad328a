package messages

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/plopgrizzly/ami/octree"
)

// Point is a position or a triple of per axis half extents on the wire.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func (p Point) Vector3f() octree.Vector3f {
	return octree.NewVector3f(p.X, p.Y, p.Z)
}

func PointFromVector3f(v octree.Vector3f) Point {
	return Point{X: v.X, Y: v.Y, Z: v.Z}
}

// Box is an axis aligned box on the wire. Boxes coming from clients are not
// trusted and must go through Validate before being converted.
type Box struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

func (b Box) Validate() error {
	if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z {
		return errors.New("box min exceeds max on at least one axis").
			WithTag("min", b.Min).
			WithTag("max", b.Max)
	}
	return nil
}

// BBox converts the box. It must only be called on a validated box.
func (b Box) BBox() octree.BBox {
	return octree.NewBBox(b.Min.Vector3f(), b.Max.Vector3f())
}

func BoxFromBBox(b octree.BBox) Box {
	return Box{
		Min: PointFromVector3f(b.Min),
		Max: PointFromVector3f(b.Max),
	}
}

// ValidateExtents reports whether the given wire half extents are usable,
// which requires every axis to be non negative.
func ValidateExtents(p Point) error {
	if p.X < 0 || p.Y < 0 || p.Z < 0 {
		return errors.New("extents are negative on at least one axis").
			WithTag("extents", p)
	}
	return nil
}

// Body is the wire representation of an indexed body.
type Body struct {
	ID            uint32 `json:"id"`
	ParticipantID uint32 `json:"participant_id"`
	Center        Point  `json:"center"`
	Extents       Point  `json:"extents"`
}
