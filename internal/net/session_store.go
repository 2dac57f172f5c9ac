package net

import (
	"cmp"
	"slices"
)

// SessionStore indexes live sessions by id. Game loop only.
type SessionStore struct {
	byID map[uint64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{byID: make(map[uint64]*Session)}
}

func (s *SessionStore) Add(sess *Session) { s.byID[sess.ID()] = sess }

func (s *SessionStore) Remove(id uint64) { delete(s.byID, id) }

func (s *SessionStore) Get(id uint64) *Session { return s.byID[id] }

func (s *SessionStore) Len() int { return len(s.byID) }

// All returns sessions ordered by id, so per-tick processing is
// deterministic.
func (s *SessionStore) All() []*Session {
	out := make([]*Session, 0, len(s.byID))
	for _, sess := range s.byID {
		out = append(out, sess)
	}
	slices.SortFunc(out, func(a, b *Session) int { return cmp.Compare(a.ID(), b.ID()) })
	return out
}

// ForEach calls fn for every session in id order.
func (s *SessionStore) ForEach(fn func(*Session)) {
	for _, sess := range s.All() {
		fn(sess)
	}
}
