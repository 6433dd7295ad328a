package models

import "sync"

// A sequential id generator.
type SequentialIDGenerator struct {
	mutex       sync.Mutex
	currentID   uint32
	reusableIDs []uint32
}

// New returns a sequential id. Ids marked as reusable are returned first,
// most recently reused ones in priority.
func (g *SequentialIDGenerator) New() uint32 {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if l := len(g.reusableIDs); l != 0 {
		id := g.reusableIDs[l-1]
		g.reusableIDs = g.reusableIDs[:l-1]
		return id
	}

	g.currentID++
	return g.currentID
}

// Reuse marks the given id as reusable.
func (g *SequentialIDGenerator) Reuse(id uint32) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.reusableIDs = append(g.reusableIDs, id)
}
