// Package users provides the authenticated user's profile view.
package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Wirandy/ATARES/apperror"
)

// UserService reads profile data for the current user.
type UserService struct {
	db *pgxpool.Pool
}

// NewUserService creates a UserService.
func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// GetProfile returns the profile of the user with the given ID. The password
// hash is never selected, so it cannot leak into a response.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	var profile ProfileResponse
	query := `SELECT id, name, email, phone_number, created_at
              FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, userID).
		Scan(&profile.ID, &profile.Name, &profile.Email, &profile.PhoneNumber, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}
	return &profile, nil
}
