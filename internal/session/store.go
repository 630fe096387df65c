package session

// Store holds open sessions keyed by ID. It does no locking; the Repository
// serializes every call, including the controller work done on a session it
// returns.
type Store interface {
	GetSession(id SessionID) (*Session, bool)
	SetSession(s *Session)
	// DeleteSession removes the session and hands it back so the caller can
	// reset its controller.
	DeleteSession(id SessionID) (*Session, bool)
	ListSessionIDs() []SessionID
}

// InMemoryStore keeps sessions in a map for the life of the process.
// Nothing is persisted: a restart drops every open player.
type InMemoryStore struct {
	sessions map[SessionID]*Session
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[SessionID]*Session)}
}

func (s *InMemoryStore) GetSession(id SessionID) (*Session, bool) {
	sess, ok := s.sessions[id]
	return sess, ok
}

// SetSession stores sess under its ID, replacing any previous entry.
func (s *InMemoryStore) SetSession(sess *Session) {
	s.sessions[sess.ID] = sess
}

func (s *InMemoryStore) DeleteSession(id SessionID) (*Session, bool) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	delete(s.sessions, id)
	return sess, true
}

// ListSessionIDs returns the open session IDs in no particular order.
func (s *InMemoryStore) ListSessionIDs() []SessionID {
	ids := make([]SessionID, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
