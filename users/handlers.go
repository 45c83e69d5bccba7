package users

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Wirandy/ATARES/apperror"
	"github.com/Wirandy/ATARES/auth"
)

// ProfileService is the surface the handlers need; tests substitute a fake.
type ProfileService interface {
	GetProfile(ctx context.Context, userID int64) (*ProfileResponse, error)
}

// UserHandlers exposes profile endpoints.
type UserHandlers struct {
	service ProfileService
}

// NewUserHandlers creates the profile handlers.
func NewUserHandlers(service ProfileService) *UserHandlers {
	return &UserHandlers{service: service}
}

// HandleMe godoc
// @Summary Current user profile
// @Description Returns the profile of the authenticated user.
// @Tags Users
// @Produce json
// @Success 200 {object} users.ProfileResponse "Profile"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /api/users/me [get]
func (h *UserHandlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Unauthorized", nil))
			return
		}

		profile, err := h.service.GetProfile(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(profile)
	}
}
