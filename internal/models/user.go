package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	FullName     string
	PasswordHash string
	JoinedAt     time.Time
}
