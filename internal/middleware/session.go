package middleware

import (
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie is the name of the CMS session cookie.
	SessionCookie = "cms-session"
	// SessionTTL is how long a CMS session stays valid after login.
	SessionTTL = 24 * time.Hour
)

// SessionStore keeps CMS sessions in memory. Sessions do not survive a
// restart.
type SessionStore struct {
	username string
	password string
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]time.Time
}

func NewSessionStore(username, password string) *SessionStore {
	return &SessionStore{
		username: username,
		password: password,
		ttl:      SessionTTL,
		now:      time.Now,
		sessions: make(map[string]time.Time),
	}
}

// CheckCredentials compares in constant time. An empty configured password
// disables login.
func (s *SessionStore) CheckCredentials(username, password string) bool {
	if s.password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	return userOK && passOK
}

// Create starts a session and returns its token.
func (s *SessionStore) Create() string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = s.now().Add(s.ttl)
	s.pruneLocked()
	return token
}

// Valid reports whether token names a live session.
func (s *SessionStore) Valid(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	expires, ok := s.sessions[token]
	if !ok {
		return false
	}
	if !s.now().Before(expires) {
		delete(s.sessions, token)
		return false
	}
	return true
}

func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (s *SessionStore) Username() string {
	return s.username
}

// TTL is the lifetime given to new sessions.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

func (s *SessionStore) pruneLocked() {
	now := s.now()
	for token, expires := range s.sessions {
		if !now.Before(expires) {
			delete(s.sessions, token)
		}
	}
}

// RequireSession aborts with 401 unless the request carries a live session cookie.
func RequireSession(store *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || !store.Valid(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
