package models

// Responder sends messages to a connected participant.
type Responder interface {
	Send(v any)
}

// A session participant.
type Participant struct {
	ID        uint32
	Responder Responder

	bodyIDs map[uint32]struct{}
}

func (p *Participant) AddBody(b *Body) {
	if p.bodyIDs == nil {
		p.bodyIDs = make(map[uint32]struct{})
	}
	p.bodyIDs[b.ID] = struct{}{}
}

func (p *Participant) RemoveBody(b *Body) {
	delete(p.bodyIDs, b.ID)
}

func (p *Participant) BodyIDs() map[uint32]struct{} {
	return p.bodyIDs
}
