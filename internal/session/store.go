package session

import "context"

// Store persists sessions. The engine never touches a store; only the
// service reads and writes through it, always under the per-session
// lock, so implementations need their own synchronization only across
// different sessions.
type Store interface {
	// Create stores a new session. It fails if the id already exists.
	Create(ctx context.Context, s *Session) error

	// Get returns the session with the given id, or
	// domain.ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Save replaces the stored session wholesale (last write wins).
	Save(ctx context.Context, s *Session) error
}
