package auth

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionName is the browser cookie holding the login session.
const SessionName = "portal_session"

const sessionTokenKey = "token"

// NewSessionStore builds the cookie store used for browser sessions.
func NewSessionStore(key string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0, // session cookie
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SaveSession stores the login token in the browser session cookie.
func SaveSession(store sessions.Store, w http.ResponseWriter, r *http.Request, token string) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		// A stale or differently-keyed cookie decodes to an error but still
		// yields a usable fresh session.
		session, _ = store.New(r, SessionName)
	}
	session.Values[sessionTokenKey] = token
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ClearSession expires the browser session cookie.
func ClearSession(store sessions.Store, w http.ResponseWriter, r *http.Request) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		session, _ = store.New(r, SessionName)
	}
	session.Options.MaxAge = -1
	delete(session.Values, sessionTokenKey)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// SessionToken extracts the login token from the browser session cookie.
// Returns empty string when the request carries no valid session.
func SessionToken(store sessions.Store, r *http.Request) string {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return ""
	}
	token, _ := session.Values[sessionTokenKey].(string)
	return token
}
