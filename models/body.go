package models

import (
	"sync"

	"github.com/plopgrizzly/ami/octree"
)

// Body is an axis aligned box that a participant placed into a session world.
// Its identifier is the octree handle value assigned when the body is first
// indexed, which stays stable for the lifetime of the body.
type Body struct {
	ID            uint32
	ParticipantID uint32

	mutex   sync.RWMutex
	center  octree.Vector3f
	extents octree.Vector3f
}

// NewBody creates a body centered at the given position. extents are half
// extents per axis and must be non negative.
func NewBody(participantID uint32, center, extents octree.Vector3f) *Body {
	return &Body{
		ParticipantID: participantID,
		center:        center,
		extents:       extents,
	}
}

// Pose returns the current center and half extents of the body.
func (b *Body) Pose() (center, extents octree.Vector3f) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	return b.center, b.extents
}

func (b *Body) setCenter(center octree.Vector3f) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.center = center
}

// Bounds returns the box currently occupied by the body. It is what the
// spatial index queries when the body is indexed, so a body must be removed
// from the index before its pose changes.
func (b *Body) Bounds() octree.BBox {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	return octree.NewBBox(octree.Sub(b.center, b.extents), octree.Add(b.center, b.extents))
}
