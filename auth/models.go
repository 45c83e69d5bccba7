package auth

import "time"

// User represents a registered identity.
// HashedPassword is excluded from JSON so it can never appear in a response
// body, whatever struct happens to be serialized.
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"-"`
}
