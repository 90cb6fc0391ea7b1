package session

import (
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
)

// Scope is the key/value scope of one visitor's login attempt.
// It is not safe for concurrent use; every request loads its own.
type Scope struct {
	sess *session.Session
	ttl  time.Duration
	now  func() time.Time
}

// Insert sets key. Nothing is persisted before Save.
func (s *Scope) Insert(key, value string) {
	s.sess.Set(key, value)
}

// Get returns the value of key. Values of an attempt older than the TTL are
// reported as absent even if the storage still holds them.
func (s *Scope) Get(key string) (string, bool) {
	if s.expired() {
		return "", false
	}

	v, ok := s.sess.Get(key).(string)
	if !ok || v == "" {
		return "", false
	}

	return v, true
}

func (s *Scope) expired() bool {
	issued, ok := s.sess.Get(keyIssuedAt).(int64)
	if !ok {
		return true
	}

	return s.now().After(time.Unix(issued, 0).Add(s.ttl))
}

// Clear removes every key from the storage and expires the cookie.
func (s *Scope) Clear() error {
	return s.sess.Destroy() //nolint:wrapcheck
}

// Rotate drops the current attempt and continues under a new session id.
func (s *Scope) Rotate() error {
	if err := s.sess.Regenerate(); err != nil {
		return err //nolint:wrapcheck
	}

	for _, k := range s.sess.Keys() {
		s.sess.Delete(k)
	}

	return nil
}

// Save persists the scope and stamps the start of the attempt.
// The scope must not be used afterwards.
func (s *Scope) Save() error {
	if _, ok := s.sess.Get(keyIssuedAt).(int64); !ok {
		s.sess.Set(keyIssuedAt, s.now().Unix())
	}

	return s.sess.Save() //nolint:wrapcheck
}
