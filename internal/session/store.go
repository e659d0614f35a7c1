package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// Store keeps sessions in memory and forgets them after a period of inactivity.
type Store struct {
	cache *cache.Cache
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		cache: cache.New(ttl, 2*ttl),
	}
}

// Create registers a new empty session and returns its id.
func (s *Store) Create() (string, *State) {
	id := uuid.NewString()
	st := New()
	s.cache.SetDefault(id, st)
	return id, st
}

// Get returns the session for id and extends its lifetime.
func (s *Store) Get(id string) (*State, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	st, ok := v.(*State)
	if !ok {
		return nil, false
	}
	s.cache.SetDefault(id, st)
	return st, true
}

// GetOrCreate returns the session for id, creating a new one (with a new id)
// when id is unknown or expired.
func (s *Store) GetOrCreate(id string) (string, *State, bool) {
	if st, ok := s.Get(id); ok {
		return id, st, false
	}
	newID, st := s.Create()
	return newID, st, true
}

func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of live sessions (expired ones may be counted until
// the janitor runs).
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
