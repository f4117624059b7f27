package pkg

import "github.com/google/uuid"

// GenerateNewSessionID returns a new random session id for the session cookie.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// IsValidID reports whether id was a session id produced by GenerateNewSessionID.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
