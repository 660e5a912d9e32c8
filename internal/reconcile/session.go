package reconcile

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gmelani/medtrack/internal/record"
)

// Session is one reconciliation run: raw batches resolved and diffed
// against a snapshot into an immutable preview. Each stage runs once,
// at construction; callers only read.
type Session struct {
	// ID is a ULID token identifying this pending session
	ID string

	// Format is the detected input encoding
	Format Format

	// Preview is the proposed delta awaiting confirmation
	Preview *Preview
}

// NewSession runs the full pipeline — parse, resolve identities, diff —
// over the given file text and current snapshot.
func NewSession(text string, snap *record.Snapshot, gen record.IDGenerator) (*Session, error) {
	batch, err := Parse(text)
	if err != nil {
		return nil, err
	}

	staged, idMap := Resolve(batch.Specialists, snap.Specialists, gen)
	preview := Diff(batch, idMap, staged, snap, gen)

	return &Session{
		ID:      newSessionID(),
		Format:  batch.Format,
		Preview: preview,
	}, nil
}

// newSessionID generates a new ULID.
func newSessionID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Registry holds pending sessions for the long-lived surfaces (MCP,
// web), where preview and commit are separate calls. Sessions are
// consumed exactly once: Take removes what it returns, so a stale or
// repeated commit cannot apply the same delta twice.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Put stages a pending session under its id.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Take removes and returns the session with the given id.
func (r *Registry) Take(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

// Drop discards a pending session, if present. Used on cancel.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
