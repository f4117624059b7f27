package pkg

import (
	"net/http"
	"time"
)

const SessionCookie = "game_session"

// SessionID returns the game id bound to the browser session, issuing a new cookie if needed.
// The cookie is re-sent on every call so it expires lifetime after the last request,
// in step with the stored game.
func SessionID(w http.ResponseWriter, r *http.Request, lifetime time.Duration) string {
	id := GenerateNewSessionID()
	if cookie, err := r.Cookie(SessionCookie); err == nil && IsValidID(cookie.Value) {
		id = cookie.Value
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(lifetime),
		MaxAge:   int(lifetime / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}
