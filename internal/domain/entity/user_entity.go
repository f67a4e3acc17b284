package entity

import (
	"time"
)

// User is an account that can own blogs.
// PasswordHash holds the bcrypt hash, never the plaintext.
// BlogIDs is the owner back-reference collection; entries may point at
// blogs that were deleted since.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Name         string
	Adult        bool
	BlogIDs      []string
	CreatedAt    time.Time
}
