package auth

import "time"

// Claims representa la información extraída del token.
type Claims struct {
	UserID    string
	Email     string
	Name      string
	Role      string
	SessionID string

	ExpiresAt time.Time
}
