package users

import "time"

// ProfileResponse is the current user's profile as returned by /api/users/me.
type ProfileResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
}
