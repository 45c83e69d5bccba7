package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRequireSession(t *testing.T) {
	t.Parallel()

	tm := newTestTokenManager("middleware-secret", time.Hour)
	validToken, err := tm.Issue(5)
	require.NoError(t, err)

	expiredToken, err := newTestTokenManager("middleware-secret", -time.Minute).Issue(5)
	require.NoError(t, err)

	var gotUserID int64
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, gotOK = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireSession(tm, zap.NewNop())(next)

	tests := []struct {
		name         string
		cookie       *http.Cookie
		expectedCode int
		wantUserID   int64
	}{
		{
			name:         "valid cookie",
			cookie:       &http.Cookie{Name: SessionCookieName, Value: validToken},
			expectedCode: http.StatusOK,
			wantUserID:   5,
		},
		{
			name:         "no cookie",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "empty cookie left by logout",
			cookie:       &http.Cookie{Name: SessionCookieName, Value: ""},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "expired cookie",
			cookie:       &http.Cookie{Name: SessionCookieName, Value: expiredToken},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "tampered cookie",
			cookie:       &http.Cookie{Name: SessionCookieName, Value: validToken + "x"},
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID, gotOK = 0, false
			req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedCode == http.StatusOK {
				assert.True(t, gotOK)
				assert.Equal(t, tt.wantUserID, gotUserID)
			} else {
				// Every failure mode produces the identical body.
				assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
			}
		})
	}
}
