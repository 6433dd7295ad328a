package models

import (
	"testing"

	"github.com/plopgrizzly/ami/octree"
	"github.com/stretchr/testify/require"
)

type testResponder struct {
	msgs []any
}

func (r *testResponder) Send(v any) {
	r.msgs = append(r.msgs, v)
}

func TestSessionParticipants(t *testing.T) {
	s := NewSession(1)

	p := &Participant{ID: s.NewParticipantID()}
	s.AddParticipant(p)
	require.Equal(t, 1, s.ParticipantCount())
	require.Equal(t, []*Participant{p}, s.GetParticipants())

	s.RemoveParticipant(p)
	require.Zero(t, s.ParticipantCount())

	// Removed participant ids are handed out again.
	require.Equal(t, p.ID, s.NewParticipantID())
}

func TestSessionAddBody(t *testing.T) {
	s := NewSession(1)

	a := NewBody(1, octree.NewVector3f(0, 0, 0), octree.NewVector3f(1, 1, 1))
	s.AddBody(a)
	require.NotZero(t, a.ID)
	require.Equal(t, 1, s.BodyCount())

	got, ok := s.Body(a.ID)
	require.True(t, ok)
	require.Equal(t, a, got)
}

func TestSessionRemoveBody(t *testing.T) {
	t.Run("removing an indexed body returns it", func(t *testing.T) {
		s := NewSession(1)

		a := NewBody(1, octree.NewVector3f(0, 0, 0), octree.NewVector3f(1, 1, 1))
		s.AddBody(a)

		got, err := s.RemoveBody(a.ID)
		require.NoError(t, err)
		require.Equal(t, a, got)
		require.Zero(t, s.BodyCount())
	})

	t.Run("removing an unknown body returns an error", func(t *testing.T) {
		s := NewSession(1)

		_, err := s.RemoveBody(42)
		require.Error(t, err)
	})
}

func TestSessionMoveBody(t *testing.T) {
	s := NewSession(1)

	a := NewBody(1, octree.NewVector3f(0, 0, 0), octree.NewVector3f(1, 1, 1))
	b := NewBody(1, octree.NewVector3f(8, 8, 8), octree.NewVector3f(1, 1, 1))
	s.AddBody(a)
	s.AddBody(b)

	id := a.ID
	moved, err := s.MoveBody(id, octree.NewVector3f(20, 0, 0))
	require.NoError(t, err)
	require.Equal(t, a, moved)
	require.Equal(t, id, a.ID)

	center, _ := a.Pose()
	require.Equal(t, octree.NewVector3f(20, 0, 0), center)

	require.Equal(t, []*Body{a}, s.BodiesInRegion(octree.NewBBox(
		octree.NewVector3f(18, -1, -1),
		octree.NewVector3f(22, 1, 1),
	)))

	_, err = s.MoveBody(77, octree.NewVector3f(0, 0, 0))
	require.Error(t, err)
}

func TestSessionBodiesInRegion(t *testing.T) {
	s := NewSession(1)

	a := NewBody(1, octree.NewVector3f(0, 0, 0), octree.NewVector3f(1, 1, 1))
	b := NewBody(1, octree.NewVector3f(5, 5, 5), octree.NewVector3f(1, 1, 1))
	c := NewBody(2, octree.NewVector3f(-5, -5, -5), octree.NewVector3f(1, 1, 1))
	s.AddBody(a)
	s.AddBody(b)
	s.AddBody(c)

	got := s.BodiesInRegion(octree.NewBBox(
		octree.NewVector3f(-1, -1, -1),
		octree.NewVector3f(6, 6, 6),
	))
	require.Len(t, got, 2)
	require.Contains(t, got, a)
	require.Contains(t, got, b)

	require.Empty(t, s.BodiesInRegion(octree.NewBBox(
		octree.NewVector3f(100, 100, 100),
		octree.NewVector3f(101, 101, 101),
	)))
}

func TestSessionWorldBounds(t *testing.T) {
	s := NewSession(1)
	require.True(t, s.WorldBounds().IsEmpty())

	a := NewBody(1, octree.NewVector3f(0, 0, 0), octree.NewVector3f(1, 1, 1))
	s.AddBody(a)
	require.False(t, s.WorldBounds().IsEmpty())
}

func TestSessionBroadcast(t *testing.T) {
	s := NewSession(1)

	senderResponder := &testResponder{}
	sender := &Participant{ID: s.NewParticipantID(), Responder: senderResponder}
	s.AddParticipant(sender)

	otherResponder := &testResponder{}
	other := &Participant{ID: s.NewParticipantID(), Responder: otherResponder}
	s.AddParticipant(other)

	s.Broadcast(sender, "hello")

	require.Empty(t, senderResponder.msgs)
	require.Equal(t, []any{"hello"}, otherResponder.msgs)
}

func TestSessionStoreNewID(t *testing.T) {
	var sessions SessionStore
	require.Equal(t, uint32(1), sessions.NewID())
}

func TestSessionStoreAdd(t *testing.T) {
	var sessions SessionStore

	session := NewSession(sessions.NewID())
	sessions.Add(session)

	got, ok := sessions.GetByUUID(session.SessionUUID)
	require.True(t, ok)
	require.Equal(t, session, got)
}

func TestSessionStoreRemove(t *testing.T) {
	var sessions SessionStore

	session := NewSession(sessions.NewID())
	sessions.Add(session)
	sessions.Remove(session)

	_, ok := sessions.GetByUUID(session.SessionUUID)
	require.False(t, ok)

	// The removed session id is handed out again.
	require.Equal(t, session.ID, sessions.NewID())
}
