// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package preview

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSessionStore_CreateThenGetReturnsTheSameSession(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create()
	got := store.Get(sess.ID)
	if got == nil {
		t.Fatalf("Get(%q) = nil, want the session just created", sess.ID)
	}
	if got.ID != sess.ID {
		t.Fatalf("got.ID = %q, want %q", got.ID, sess.ID)
	}
}

func TestSessionStore_GetUnknownIDReturnsNil(t *testing.T) {
	store := NewSessionStore()
	if got := store.Get("no-such-session"); got != nil {
		t.Fatalf("Get(unknown) = %+v, want nil", got)
	}
}

func TestSessionStore_GetExpiredSessionReturnsNil(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create()
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	if got := store.Get(sess.ID); got != nil {
		t.Fatalf("Get(expired) = %+v, want nil", got)
	}
}

func TestSessionStore_DeleteRemovesTheSession(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create()
	store.Delete(sess.ID)
	if got := store.Get(sess.ID); got != nil {
		t.Fatalf("Get after Delete = %+v, want nil", got)
	}
}

func TestSetSessionCookie_RoundTripsThroughSessionFromRequest(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create()

	rec := httptest.NewRecorder()
	setSessionCookie(rec, sess)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	got := sessionFromRequest(req, store)
	if got == nil {
		t.Fatalf("sessionFromRequest = nil, want the session set by setSessionCookie")
	}
	if got.ID != sess.ID {
		t.Fatalf("got.ID = %q, want %q", got.ID, sess.ID)
	}
}

func TestSessionFromRequest_NoCookieReturnsNil(t *testing.T) {
	store := NewSessionStore()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := sessionFromRequest(req, store); got != nil {
		t.Fatalf("sessionFromRequest with no cookie = %+v, want nil", got)
	}
}

func TestClearSessionCookie_SetsNegativeMaxAge(t *testing.T) {
	rec := httptest.NewRecorder()
	clearSessionCookie(rec)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("len(cookies) = %d, want 1", len(cookies))
	}
	if cookies[0].MaxAge >= 0 {
		t.Fatalf("cookies[0].MaxAge = %d, want negative so the browser deletes it", cookies[0].MaxAge)
	}
}
