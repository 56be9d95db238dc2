package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// FlashMessage represents a one-time notification stored in session.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SessionManager issues cookie sessions whose state lives in Redis.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

// Session is the explicit access object handed to request handlers. A session
// becomes authenticated on SignIn and is discarded by SignOut.
type Session struct {
	ID         string
	values     map[string]string
	user       string
	signedInAt time.Time
	flash      *FlashMessage
	previousID string
	dirty      bool
	destroyed  bool
}

type sessionPayload struct {
	Values     map[string]string `json:"values"`
	User       string            `json:"user"`
	SignedInAt time.Time         `json:"signed_in_at"`
	Flash      *FlashMessage     `json:"flash,omitempty"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Load returns the session referenced by the request cookie, or a fresh
// anonymous session.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return newSession(), nil
		}
		return nil, err
	}

	raw, err := sm.client.Get(ctx, redisKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return newSession(), nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return &Session{
		ID:         cookie.Value,
		values:     stored.Values,
		user:       stored.User,
		signedInAt: stored.SignedInAt,
		flash:      stored.Flash,
	}, nil
}

// Commit persists the session and writes cookie headers as needed.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := sm.client.Del(ctx, redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if !sess.dirty {
		return nil
	}
	if sess.previousID != "" {
		if err := sm.client.Del(ctx, redisKey(sess.previousID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		sess.previousID = ""
	}

	data, err := json.Marshal(sessionPayload{
		Values:     sess.values,
		User:       sess.user,
		SignedInAt: sess.signedInAt,
		Flash:      sess.flash,
	})
	if err != nil {
		return err
	}
	if err := sm.client.Set(ctx, redisKey(sess.ID), data, sm.ttl).Err(); err != nil {
		return err
	}
	sess.dirty = false

	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(sm.ttl),
	})
	return nil
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// SignIn binds the session to user. The session id is rotated so an id seen
// before login cannot be replayed afterwards.
func (s *Session) SignIn(user string, at time.Time) {
	s.previousID = s.ID
	s.ID = uuid.NewString()
	s.user = user
	s.signedInAt = at
	s.dirty = true
}

// SignOut marks the session for deletion on commit.
func (s *Session) SignOut() {
	s.user = ""
	s.destroyed = true
}

// User returns the signed-in user name or "".
func (s *Session) User() string {
	return s.user
}

// SignedInAt reports when SignIn was called.
func (s *Session) SignedInAt() time.Time {
	return s.signedInAt
}

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	return s.values[key]
}

// SetFlash replaces the pending flash message.
func (s *Session) SetFlash(msg FlashMessage) {
	s.flash = &msg
	s.dirty = true
}

// PopFlash returns and clears the pending flash message.
func (s *Session) PopFlash() *FlashMessage {
	msg := s.flash
	if msg != nil {
		s.flash = nil
		s.dirty = true
	}
	return msg
}

func newSession() *Session {
	return &Session{
		ID:     uuid.NewString(),
		values: make(map[string]string),
	}
}

func redisKey(id string) string {
	return "quotedesk:session:" + id
}
