package auth

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

// SessionName is the name of the admin session cookie.
const SessionName = "discovery-admin"

const sessionKeyToken = "token"

// CookieJar persists the admin token in a signed cookie.
type CookieJar struct {
	store *sessions.CookieStore
}

// NewCookieJar creates a cookie-backed session store.
//
// The secret can be any passphrase; it is SHA-256 hashed to derive a 32-byte
// signing key, so it must be stable across restarts and replicas.
func NewCookieJar(secret string, settings CookieSettings, maxAge time.Duration) *CookieJar {
	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   settings.Domain,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   settings.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	return &CookieJar{store: store}
}

// Token returns the token stored in the request's cookie, or "".
func (j *CookieJar) Token(r *http.Request) string {
	session, err := j.store.Get(r, SessionName)
	if err != nil {
		return ""
	}
	token, _ := session.Values[sessionKeyToken].(string)
	return token
}

// Store writes token into the session cookie.
func (j *CookieJar) Store(w http.ResponseWriter, r *http.Request, token string) error {
	// A stale or tampered cookie yields a fresh session alongside the error.
	session, _ := j.store.Get(r, SessionName)
	session.Values[sessionKeyToken] = token
	return session.Save(r, w)
}

// Clear expires the session cookie.
func (j *CookieJar) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := j.store.Get(r, SessionName)
	delete(session.Values, sessionKeyToken)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
