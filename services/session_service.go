package services

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Session states reported by Status
const (
	SessionActive  = "active"
	SessionWarning = "warning"
	SessionExpired = "expired"
)

// WarningLead is how long before expiry the warning state begins
const WarningLead = 2 * time.Minute

// SessionStatus describes the current state of one inactivity session
type SessionStatus struct {
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expires_at"`
}

type session struct {
	warnTimer   *time.Timer
	expireTimer *time.Timer
	gen         uint64 // invalidates stale timer callbacks after a re-arm
	warned      bool
	expired     bool
	expiresAt   time.Time
}

// SessionManager tracks per-subject inactivity sessions. Every qualifying
// activity re-arms two timers: a warning timer at (timeout - WarningLead) and
// an expiry timer at timeout. An expired session stays expired until the
// subject signs in again (Reset).
type SessionManager struct {
	mu          sync.Mutex
	timeout     time.Duration
	warningLead time.Duration
	sessions    map[string]*session
	logger      *zap.Logger
}

var sessionManagerInstance *SessionManager

// InitSessionManager initializes the global session manager
func InitSessionManager(timeout time.Duration, logger *zap.Logger) *SessionManager {
	sessionManagerInstance = NewSessionManager(timeout, WarningLead, logger)
	return sessionManagerInstance
}

// GetSessionManager returns the initialized session manager instance
func GetSessionManager() *SessionManager {
	return sessionManagerInstance
}

// SetSessionManager sets the session manager instance (primarily for testing)
func SetSessionManager(m *SessionManager) {
	sessionManagerInstance = m
}

// NewSessionManager creates a session manager with an explicit warning lead
// (exposed so tests can run with short durations)
func NewSessionManager(timeout, warningLead time.Duration, logger *zap.Logger) *SessionManager {
	if warningLead >= timeout {
		warningLead = timeout / 2
	}
	return &SessionManager{
		timeout:     timeout,
		warningLead: warningLead,
		sessions:    make(map[string]*session),
		logger:      logger,
	}
}

// Touch records activity for the subject, re-arming both timers. It returns
// false if the session has already expired; expired sessions are not revived
// until Reset is called from the sign-in path. An unknown subject (e.g. after
// a server restart with a still-valid token) starts a fresh session.
func (m *SessionManager) Touch(subject string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[subject]
	if ok && s.expired {
		return false
	}
	if !ok {
		s = &session{}
		m.sessions[subject] = s
	}
	m.arm(subject, s)
	return true
}

// Reset starts a fresh session for the subject, discarding any expired state.
// Called from the sign-in (profile sync) path.
func (m *SessionManager) Reset(subject string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[subject]; ok {
		stopTimers(s)
	}
	s := &session{}
	m.sessions[subject] = s
	m.arm(subject, s)
}

// Status reports the state of the subject's session. ok is false when no
// session exists for the subject.
func (m *SessionManager) Status(subject string) (SessionStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[subject]
	if !ok {
		return SessionStatus{}, false
	}
	state := SessionActive
	switch {
	case s.expired:
		state = SessionExpired
	case s.warned:
		state = SessionWarning
	}
	return SessionStatus{State: state, ExpiresAt: s.expiresAt}, true
}

// Expired reports whether the subject's session has timed out
func (m *SessionManager) Expired(subject string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[subject]
	return ok && s.expired
}

// End terminates the subject's session and cancels its timers (sign-out)
func (m *SessionManager) End(subject string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[subject]; ok {
		stopTimers(s)
		delete(m.sessions, subject)
	}
}

// Stop cancels all sessions and their timers (application teardown)
func (m *SessionManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for subject, s := range m.sessions {
		stopTimers(s)
		delete(m.sessions, subject)
	}
}

// arm re-arms both timers. Callers must hold m.mu.
func (m *SessionManager) arm(subject string, s *session) {
	stopTimers(s)
	s.gen++
	gen := s.gen
	s.warned = false
	s.expiresAt = time.Now().Add(m.timeout)

	warnIn := m.timeout - m.warningLead
	s.warnTimer = time.AfterFunc(warnIn, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		cur, ok := m.sessions[subject]
		if !ok || cur.gen != gen || cur.expired {
			return
		}
		cur.warned = true
	})
	s.expireTimer = time.AfterFunc(m.timeout, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		cur, ok := m.sessions[subject]
		if !ok || cur.gen != gen {
			return
		}
		cur.expired = true
		m.logger.Info("session expired due to inactivity", zap.String("subject", subject))
	})
}

func stopTimers(s *session) {
	if s.warnTimer != nil {
		s.warnTimer.Stop()
	}
	if s.expireTimer != nil {
		s.expireTimer.Stop()
	}
}
