package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func sessionEcho(t *testing.T) (http.Handler, *string) {
	t.Helper()

	var seen string
	handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	return handler, &seen
}

func TestSessionUsesHeader(t *testing.T) {
	handler, seen := sessionEcho(t)

	want := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Session-Id", want)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if *seen != want {
		t.Fatalf("expected session %q in context, got %q", want, *seen)
	}
	if got := w.Header().Get("X-Session-Id"); got != want {
		t.Fatalf("expected session echoed in response header, got %q", got)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("no cookie should be set for an existing session")
	}
}

func TestSessionFallsBackToCookie(t *testing.T) {
	handler, seen := sessionEcho(t)

	want := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "ah_session", Value: want})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if *seen != want {
		t.Fatalf("expected session %q in context, got %q", want, *seen)
	}
}

func TestSessionMintsWhenAbsent(t *testing.T) {
	handler, seen := sessionEcho(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if uuid.Validate(*seen) != nil {
		t.Fatalf("expected minted uuid session, got %q", *seen)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "ah_session" {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	if cookies[0].Value != *seen {
		t.Fatalf("cookie value %q does not match context session %q", cookies[0].Value, *seen)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}
}

func TestSessionRejectsMalformedID(t *testing.T) {
	handler, seen := sessionEcho(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Session-Id", "not-a-uuid")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if *seen == "not-a-uuid" {
		t.Fatalf("malformed session id must be replaced")
	}
	if uuid.Validate(*seen) != nil {
		t.Fatalf("expected minted uuid session, got %q", *seen)
	}
}
