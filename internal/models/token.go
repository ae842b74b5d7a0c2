package models

import (
	"time"
)

// IssuedToken is a signed session token as returned to the client
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
