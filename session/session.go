// Package session keeps per-session conversation history for the RAG chat.
//
// Sessions live in a go-cache with a sliding TTL: every write pushes the
// expiry out again. A zero TTL keeps sessions until the process exits.
package session

import (
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultID is used when a request names no session.
const DefaultID = "default"

// Exchange is one question and its answer.
type Exchange struct {
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	DocumentsUsed int       `json:"documents_used"`
	WebSearchUsed bool      `json:"web_search_used"`
	At            time.Time `json:"at"`
}

// Session is a snapshot of one conversation.
type Session struct {
	ID       string     `json:"session_id"`
	Document string     `json:"document,omitempty"`
	History  []Exchange `json:"conversation_history"`
}

// Store holds sessions in memory.
type Store struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewStore creates a store whose sessions expire ttl after their last write.
func NewStore(ttl time.Duration) *Store {
	expiration, cleanup := ttl, ttl/2
	if ttl <= 0 {
		expiration, cleanup = cache.NoExpiration, 0
	}
	return &Store{cache: cache.New(expiration, cleanup)}
}

func (s *Store) load(id string) *Session {
	if x, found := s.cache.Get(id); found {
		return x.(*Session)
	}
	return nil
}

// Open starts a fresh conversation about document, dropping any history.
func (s *Store) Open(id, document string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(id, &Session{ID: id, Document: document, History: []Exchange{}}, cache.DefaultExpiration)
}

// Append records an exchange, creating the session if needed.
func (s *Store) Append(id string, e Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.load(id)
	if sess == nil {
		sess = &Session{ID: id}
	}
	sess.History = append(sess.History, e)
	s.cache.Set(id, sess, cache.DefaultExpiration)
}

// Get returns a copy of the session.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.load(id)
	if sess == nil {
		return Session{}, false
	}
	c := *sess
	c.History = slices.Clone(sess.History)
	if c.History == nil {
		c.History = []Exchange{}
	}
	return c, true
}

// History returns the exchanges of a session, oldest first. An unknown
// session has an empty history.
func (s *Store) History(id string) []Exchange {
	sess, ok := s.Get(id)
	if !ok {
		return []Exchange{}
	}
	return sess.History
}

// Clear empties the history of a session. It reports whether the session
// existed.
func (s *Store) Clear(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.load(id)
	if sess == nil {
		return false
	}
	sess.History = []Exchange{}
	s.cache.Set(id, sess, cache.DefaultExpiration)
	return true
}

// Count is the number of live sessions.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
