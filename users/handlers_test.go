package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wirandy/ATARES/apperror"
	"github.com/Wirandy/ATARES/auth"
)

type fakeProfileService struct {
	profile *ProfileResponse
	err     error

	gotUserID int64
}

func (f *fakeProfileService) GetProfile(_ context.Context, userID int64) (*ProfileResponse, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func authedRequest(method, target string, userID int64) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

func TestHandleMe(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := &fakeProfileService{profile: &ProfileResponse{
		ID:          42,
		Name:        "Dina",
		Email:       "dina@example.com",
		PhoneNumber: "081234567890",
		CreatedAt:   created,
	}}
	handlers := NewUserHandlers(svc)

	rec := httptest.NewRecorder()
	handlers.HandleMe()(rec, authedRequest(http.MethodGet, "/api/users/me", 42))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), svc.gotUserID)

	var got ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Dina", got.Name)
	assert.Equal(t, "dina@example.com", got.Email)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestHandleMe_Unauthenticated(t *testing.T) {
	t.Parallel()

	handlers := NewUserHandlers(&fakeProfileService{})

	rec := httptest.NewRecorder()
	handlers.HandleMe()(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestHandleMe_NotFound(t *testing.T) {
	t.Parallel()

	// A token can outlive its user row.
	svc := &fakeProfileService{err: apperror.NewNotFoundError("User not found", nil)}
	handlers := NewUserHandlers(svc)

	rec := httptest.NewRecorder()
	handlers.HandleMe()(rec, authedRequest(http.MethodGet, "/api/users/me", 99))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())
}
