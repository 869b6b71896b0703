package state

import (
	"sync"
	"time"

	"voltswap/internal/models"
)

// SessionStore keeps active swap sessions in memory. The coordinator is the
// sole writer; reads return copies so callers never share the stored value.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]*models.SwapSession
	byBooking map[string]string
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]*models.SwapSession),
		byBooking: make(map[string]string),
	}
}

// Put stores or replaces a session.
func (s *SessionStore) Put(session *models.SwapSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[session.SwapID] = &copied
	s.byBooking[session.BookingID] = session.SwapID
}

// Get returns a copy of the session by swap id.
func (s *SessionStore) Get(swapID string) (*models.SwapSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[swapID]
	if !ok {
		return nil, false
	}
	copied := *session
	return &copied, true
}

// Delete removes a session and its booking index entry.
func (s *SessionStore) Delete(swapID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[swapID]
	if !ok {
		return
	}
	delete(s.sessions, swapID)
	if s.byBooking[session.BookingID] == swapID {
		delete(s.byBooking, session.BookingID)
	}
}

// ActiveForBooking reports whether the booking already owns a live session.
func (s *SessionStore) ActiveForBooking(bookingID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	swapID, ok := s.byBooking[bookingID]
	if !ok {
		return false
	}
	session, ok := s.sessions[swapID]
	return ok && session.Active()
}

// Expired returns copies of sessions whose deadline passed before now.
func (s *SessionStore) Expired(now time.Time) []*models.SwapSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var expired []*models.SwapSession
	for _, session := range s.sessions {
		if session.ExpiresAt.Before(now) {
			copied := *session
			expired = append(expired, &copied)
		}
	}
	return expired
}

// Len returns the number of tracked sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
