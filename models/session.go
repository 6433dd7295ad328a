package models

import (
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/google/uuid"
	"github.com/plopgrizzly/ami/octree"
)

// Session represents a session that contains bodies and participants who can
// communicate between each other. Bodies are indexed in an octree so region
// queries stay cheap as the world grows.
type Session struct {
	ID          uint32
	SessionUUID string

	participantIDs   SequentialIDGenerator
	participantMutex sync.RWMutex
	participants     map[uint32]*Participant

	worldMutex sync.Mutex
	world      *octree.Octree[*Body]
	bodies     map[uint32]*Body
}

func NewSession(id uint32) *Session {
	return &Session{
		ID:           id,
		SessionUUID:  uuid.New().String(),
		participants: make(map[uint32]*Participant),
		world:        octree.New[*Body](),
		bodies:       make(map[uint32]*Body),
	}
}

func (s *Session) NewParticipantID() uint32 {
	return s.participantIDs.New()
}

func (s *Session) AddParticipant(p *Participant) {
	s.participantMutex.Lock()
	defer s.participantMutex.Unlock()

	s.participants[p.ID] = p
}

func (s *Session) RemoveParticipant(p *Participant) {
	s.participantMutex.Lock()
	defer s.participantMutex.Unlock()

	delete(s.participants, p.ID)

	s.participantIDs.Reuse(p.ID)
}

func (s *Session) GetParticipants() []*Participant {
	s.participantMutex.RLock()
	defer s.participantMutex.RUnlock()

	participants := make([]*Participant, 0, len(s.participants))
	for _, p := range s.participants {
		participants = append(participants, p)
	}
	return participants
}

func (s *Session) ParticipantCount() int {
	s.participantMutex.RLock()
	defer s.participantMutex.RUnlock()

	return len(s.participants)
}

// AddBody indexes the given body in the session world and assigns its id.
func (s *Session) AddBody(b *Body) {
	s.worldMutex.Lock()
	defer s.worldMutex.Unlock()

	b.ID = uint32(s.world.Add(b))
	s.bodies[b.ID] = b

	instrumentIncreaseBodyGauge()
}

// RemoveBody removes the body with the given id from the session world and
// returns it.
func (s *Session) RemoveBody(id uint32) (*Body, error) {
	s.worldMutex.Lock()
	defer s.worldMutex.Unlock()

	b, ok := s.bodies[id]
	if !ok {
		return nil, errors.New("body is not in the session").
			WithTag("body_id", id)
	}

	s.world.Remove(octree.ID(id))
	delete(s.bodies, id)

	instrumentDecreaseBodyGauge()
	return b, nil
}

// MoveBody updates the center of the body with the given id and reindexes it.
// The body keeps its id across the move.
func (s *Session) MoveBody(id uint32, center octree.Vector3f) (*Body, error) {
	s.worldMutex.Lock()
	defer s.worldMutex.Unlock()

	b, ok := s.bodies[id]
	if !ok {
		return nil, errors.New("body is not in the session").
			WithTag("body_id", id)
	}

	// The slot freed by the removal is the first one the next insertion
	// reuses, so the body comes back under the same handle.
	s.world.Remove(octree.ID(id))
	delete(s.bodies, id)
	b.setCenter(center)
	b.ID = uint32(s.world.Add(b))
	s.bodies[b.ID] = b

	return b, nil
}

func (s *Session) Body(id uint32) (*Body, bool) {
	s.worldMutex.Lock()
	defer s.worldMutex.Unlock()

	b, ok := s.bodies[id]
	return b, ok
}

func (s *Session) Bodies() []*Body {
	s.worldMutex.Lock()
	defer s.worldMutex.Unlock()

	bodies := make([]*Body, 0, len(s.bodies))
	for _, b := range s.bodies {
		bodies = append(bodies, b)
	}
	return bodies
}

// BodiesInRegion returns the bodies whose bounds collide with the given box.
func (s *Session) BodiesInRegion(region octree.BBox) []*Body {
	s.worldMutex.Lock()
	defer s.worldMutex.Unlock()

	ids := s.world.Collisions(region)
	bodies := make([]*Body, 0, len(ids))
	for _, id := range ids {
		bodies = append(bodies, *s.world.Get(id))
	}
	return bodies
}

func (s *Session) BodyCount() int {
	s.worldMutex.Lock()
	defer s.worldMutex.Unlock()

	return len(s.bodies)
}

// WorldBounds returns the cube currently covered by the session octree.
func (s *Session) WorldBounds() octree.BCube {
	s.worldMutex.Lock()
	defer s.worldMutex.Unlock()

	return s.world.Bounds()
}

// Broadcast sends the given message to every participant but the sender.
func (s *Session) Broadcast(sender *Participant, v any) {
	s.participantMutex.RLock()
	defer s.participantMutex.RUnlock()

	for _, p := range s.participants {
		if p == sender {
			continue
		}
		p.Responder.Send(v)
	}
}

type SessionStore struct {
	initOnce sync.Once
	mutex    sync.RWMutex
	sessions map[string]*Session
	ids      SequentialIDGenerator
}

func (s *SessionStore) init() {
	s.sessions = map[string]*Session{}
}

func (s *SessionStore) NewID() uint32 {
	return s.ids.New()
}

func (s *SessionStore) Add(session *Session) {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.sessions[session.SessionUUID] = session

	instrumentIncreaseSessionGauge()
	instrumentCountSession()
}

func (s *SessionStore) Remove(session *Session) {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.sessions, session.SessionUUID)

	s.ids.Reuse(session.ID)

	instrumentDecreaseSessionGauge()
}

func (s *SessionStore) GetByUUID(v string) (*Session, bool) {
	s.initOnce.Do(s.init)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, ok := s.sessions[v]
	return session, ok
}
