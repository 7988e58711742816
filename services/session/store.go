// Package sessionsvc keeps the server-side state of every logged in actor.
package sessionsvc

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/admin"
	"github.com/ofertaeducativa/catalogo/core/auth"
)

// Entry is the state of one actor: its guard and the admin view state scoped to it.
type Entry struct {
	ID    string
	Guard *auth.Guard
	Admin *admin.Coordinator
}

// EntryFactory builds the guard and coordinator of a new entry.
type EntryFactory func() (*auth.Guard, *admin.Coordinator)

// Store holds entries for `ttl` after their last access.
// Expired or deleted entries are logged out, which resets their admin view state.
type Store struct {
	mu      sync.Mutex // orders Get's lifetime extension against Delete
	entries *cache.Cache
	ttl     time.Duration
	factory EntryFactory
	logger  core.Logger
}

func NewStore(ttl, cleanupInterval time.Duration, factory EntryFactory, logger core.Logger) *Store {
	s := &Store{
		entries: cache.New(ttl, cleanupInterval),
		ttl:     ttl,
		factory: factory,
		logger:  logger,
	}
	s.entries.OnEvicted(s.evicted)
	return s
}

func (s *Store) evicted(id string, v interface{}) {
	if e, ok := v.(*Entry); ok {
		e.Guard.Logout()
		s.logger.Debug("session closed", map[string]interface{}{"sid": id})
	}
}

// New creates and stores an anonymous entry.
func (s *Store) New() *Entry {
	guard, coord := s.factory()
	e := &Entry{ID: uuid.NewString(), Guard: guard, Admin: coord}
	s.entries.Set(e.ID, e, cache.DefaultExpiration)
	return e
}

// Get returns the entry `id` and extends its lifetime.
func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, found := s.entries.Get(id)
	if !found {
		return nil, false
	}
	e := v.(*Entry)
	s.entries.Set(id, e, cache.DefaultExpiration)
	return e, true
}

// Delete logs the entry out and forgets it.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Delete(id)
}

// Count returns the number of entries, expired ones included until the next cleanup.
func (s *Store) Count() int {
	return s.entries.ItemCount()
}

// Flush logs every entry out, eg. on shutdown.
func (s *Store) Flush() {
	for id := range s.entries.Items() {
		s.Delete(id)
	}
}
