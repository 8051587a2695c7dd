package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account row in PostgreSQL. Anonymous users have no username or
// password; they exist only to scope records to a stable identity.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"-"`
	Anonymous    bool      `json:"anonymous"`
	CreatedAt    time.Time `json:"created_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}
