package api

import (
	"net/http"
	"time"

	"github.com/okian/pmwiki/internal/domain/compare"
)

// SessionCookie carries the visitor's compare session id.
const SessionCookie = "pmwiki_compare"

// Sessions resolves the compare set of the visitor behind a request.
type Sessions struct {
	deps   Comparer
	maxAge time.Duration
	secure bool
}

// NewSessions creates a session resolver issuing cookies that live maxAge.
func NewSessions(deps Comparer, maxAge time.Duration, secure bool) *Sessions {
	return &Sessions{deps: deps, maxAge: maxAge, secure: secure}
}

// Acquire returns the visitor's set, setting the session cookie on w when
// a new session was issued.
func (s *Sessions) Acquire(w http.ResponseWriter, r *http.Request) *compare.Set {
	set, cookie := s.acquire(r)
	if cookie != nil {
		http.SetCookie(w, cookie)
	}
	return set
}

// Peek returns the visitor's set without issuing a session.
func (s *Sessions) Peek(r *http.Request) (*compare.Set, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	return s.deps.LookupCompare(c.Value)
}

// acquire returns the set and, for a new session, the cookie to issue.
func (s *Sessions) acquire(r *http.Request) (*compare.Set, *http.Cookie) {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	sid, set, created := s.deps.CompareSession(r.Context(), id)
	if !created {
		return set, nil
	}
	return set, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(s.maxAge / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
