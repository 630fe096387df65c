package session

import (
	"errors"
	"sync"
)

// Repository defines the concurrency-safe contract for accessing sessions.
// A controller is single-threaded, so every read or mutation of a session
// runs inside the repository's critical section.
type Repository interface {
	// Create stores a new session. It fails if the ID is already taken.
	Create(s *Session) error

	// Update runs fn with exclusive access to the session.
	Update(id SessionID, fn func(s *Session) error) error

	// View runs fn with shared access to the session. fn must not mutate it.
	View(id SessionID, fn func(s *Session)) error

	// Delete removes the session and returns it so the caller can tear it down.
	Delete(id SessionID) (*Session, error)

	// ActiveSessionCount returns the number of stored sessions.
	// Used for metrics.
	ActiveSessionCount() int
}

var (
	// ErrSessionNotFound is returned for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned when creating a session whose ID is taken.
	ErrSessionExists = errors.New("session already exists")
)

// InMemoryRepository is a concurrency-safe in-memory implementation of Repository.
// It uses a Store for storage; by default that is an InMemoryStore.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store Store
}

// NewInMemoryRepository constructs a new repository with a default in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return NewInMemoryRepositoryWithStore(NewInMemoryStore())
}

// NewInMemoryRepositoryWithStore constructs a repository that uses the given Store.
func NewInMemoryRepositoryWithStore(store Store) *InMemoryRepository {
	return &InMemoryRepository{store: store}
}

// Create implements Repository.Create.
func (r *InMemoryRepository) Create(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store.GetSession(s.ID); exists {
		return ErrSessionExists
	}
	r.store.SetSession(s)
	return nil
}

// Update implements Repository.Update.
func (r *InMemoryRepository) Update(id SessionID, fn func(s *Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.store.GetSession(id)
	if !ok {
		return ErrSessionNotFound
	}
	return fn(s)
}

// View implements Repository.View.
func (r *InMemoryRepository) View(id SessionID, fn func(s *Session)) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.store.GetSession(id)
	if !ok {
		return ErrSessionNotFound
	}
	fn(s)
	return nil
}

// Delete implements Repository.Delete.
func (r *InMemoryRepository) Delete(id SessionID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.store.DeleteSession(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// ActiveSessionCount implements Repository.ActiveSessionCount.
func (r *InMemoryRepository) ActiveSessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.store.ListSessionIDs())
}
