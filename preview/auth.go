// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package preview serves a local HTTP dashboard listing, per file,
// whether a batch format run would change it (with its formatted size or
// its error), gated behind a generated access phrase. Grounded on the teacher's web/auth package: a session cookie
// backed by an in-memory store, and a separate password.go for hashing.
package preview

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookieName = "efmt_preview_session"

// Session is one authenticated browser session.
type Session struct {
	ID        string
	ExpiresAt time.Time
}

// SessionStore holds live sessions in memory; the preview server is a
// local, single-process tool, so a process-lifetime store is enough.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (s *SessionStore) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &Session{ID: uuid.NewString(), ExpiresAt: time.Now().Add(12 * time.Hour)}
	s.sessions[sess.ID] = sess
	return sess
}

func (s *SessionStore) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok || time.Now().After(sess.ExpiresAt) {
		return nil
	}
	return sess
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func setSessionCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func sessionFromRequest(r *http.Request, store *SessionStore) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	return store.Get(cookie.Value)
}
