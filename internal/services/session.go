package services

import (
	"sync"
	"time"

	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

// SessionManager keeps the in-progress order of every WhatsApp number in
// memory and serializes message processing per number.
type SessionManager struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex

	locks  map[string]*numberLock
	lockMu sync.Mutex

	now func() time.Time
}

// numberLock is released from the map once nobody holds or waits on it
type numberLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessionManager creates a new session manager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*models.Session),
		locks:    make(map[string]*numberLock),
		now:      time.Now,
	}
}

// Lock blocks until the caller owns the number and returns the release func.
// Different numbers never contend.
func (sm *SessionManager) Lock(number string) func() {
	sm.lockMu.Lock()
	l, ok := sm.locks[number]
	if !ok {
		l = &numberLock{}
		sm.locks[number] = l
	}
	l.refs++
	sm.lockMu.Unlock()

	l.mu.Lock()
	return sm.releaser(number, l)
}

// TryLock takes the number only when nobody holds or waits on it.
func (sm *SessionManager) TryLock(number string) (func(), bool) {
	sm.lockMu.Lock()
	defer sm.lockMu.Unlock()

	if _, busy := sm.locks[number]; busy {
		return nil, false
	}
	l := &numberLock{refs: 1}
	l.mu.Lock()
	sm.locks[number] = l
	return sm.releaser(number, l), true
}

func (sm *SessionManager) releaser(number string, l *numberLock) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()

			sm.lockMu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(sm.locks, number)
			}
			sm.lockMu.Unlock()
		})
	}
}

// GetSession returns a copy of the session for number.
func (sm *SessionManager) GetSession(number string) (*models.Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[number]
	if !exists {
		return nil, false
	}
	return session.Clone(), true
}

// SaveSession stores a copy of session and marks it active.
func (sm *SessionManager) SaveSession(number string, session *models.Session) {
	stored := session.Clone()
	stored.LastActive = sm.now()

	sm.mu.Lock()
	sm.sessions[number] = stored
	sm.mu.Unlock()
}

// DeleteSession removes the session. It reports whether one existed.
func (sm *SessionManager) DeleteSession(number string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	_, exists := sm.sessions[number]
	delete(sm.sessions, number)
	return exists
}

// ExpireIdle drops sessions inactive for longer than ttl and returns their
// numbers. Numbers with a message in flight are left alone. onExpire, when
// set, runs for each dropped number while the number is still held, so no
// message for it can start until it returns.
func (sm *SessionManager) ExpireIdle(ttl time.Duration, onExpire func(number string)) []string {
	if ttl <= 0 {
		return nil
	}
	cutoff := sm.now().Add(-ttl)

	sm.mu.RLock()
	var idle []string
	for number, session := range sm.sessions {
		if session.LastActive.Before(cutoff) {
			idle = append(idle, number)
		}
	}
	sm.mu.RUnlock()

	var expired []string
	for _, number := range idle {
		unlock, ok := sm.TryLock(number)
		if !ok {
			continue
		}

		sm.mu.Lock()
		s, exists := sm.sessions[number]
		dropped := exists && s.LastActive.Before(cutoff)
		if dropped {
			delete(sm.sessions, number)
		}
		sm.mu.Unlock()

		if dropped {
			expired = append(expired, number)
			if onExpire != nil {
				onExpire(number)
			}
		}
		unlock()
	}
	return expired
}

// ActiveSession is a monitoring view of one session
type ActiveSession struct {
	WhatsAppNumber string          `json:"whatsapp_number"`
	Session        *models.Session `json:"session"`
}

// GetActiveSessions returns all sessions (for monitoring)
func (sm *SessionManager) GetActiveSessions() []ActiveSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	active := make([]ActiveSession, 0, len(sm.sessions))
	for number, session := range sm.sessions {
		active = append(active, ActiveSession{WhatsAppNumber: number, Session: session.Clone()})
	}
	return active
}

// SessionStats provides session statistics
type SessionStats struct {
	ActiveSessions int            `json:"active_sessions"`
	SessionsByStep map[string]int `json:"sessions_by_step"`
}

// GetSessionStats returns current session statistics
func (sm *SessionManager) GetSessionStats() *SessionStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	stats := &SessionStats{
		ActiveSessions: len(sm.sessions),
		SessionsByStep: make(map[string]int),
	}
	for _, session := range sm.sessions {
		stats.SessionsByStep[session.Step.String()]++
	}
	return stats
}
