package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Wirandy/ATARES/apperror"
)

// minPasswordLength is the registration minimum.
const minPasswordLength = 6

// Service is the credential-store surface the handlers need. Declared here
// so tests can substitute a fake.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*User, error)
}

// Handlers exposes the auth endpoints over HTTP. Cookie mutations are built
// explicitly through CookieSettings and attached to the response; nothing is
// smuggled through ambient state.
type Handlers struct {
	service Service
	tokens  *TokenManager
	cookies CookieSettings
	logger  *zap.Logger
}

// NewHandlers creates the auth endpoint handlers.
func NewHandlers(service Service, tokens *TokenManager, cookies CookieSettings, logger *zap.Logger) *Handlers {
	return &Handlers{service: service, tokens: tokens, cookies: cookies, logger: logger}
}

// HandleRegister godoc
// @Summary User Registration
// @Description Registers a new identity and opens a session.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "User registration details"
// @Success 201 {object} auth.RegisterResponse "User created, session cookie set"
// @Failure 400 {object} apperror.ErrorResponse "Missing fields or password too short"
// @Failure 409 {object} apperror.ErrorResponse "Email or phone number already registered"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if req.Name == "" || req.Email == "" || req.PhoneNumber == "" || len(req.Password) < minPasswordLength {
			WriteError(w, r, apperror.NewValidationError("All fields are required (password min 6 characters)", nil))
			return
		}

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		token, err := h.tokens.Issue(user.ID)
		if err != nil {
			h.logger.Error("failed to issue token after registration", zap.Error(err))
			WriteError(w, r, apperror.NewInternalError("registration failed", err))
			return
		}

		http.SetCookie(w, h.cookies.SessionCookie(token))
		writeJSON(w, http.StatusCreated, RegisterResponse{
			Token: token,
			User: UserPayload{
				ID:          user.ID,
				Name:        user.Name,
				Email:       user.Email,
				PhoneNumber: user.PhoneNumber,
			},
		})
	}
}

// HandleLogin godoc
// @Summary User Login
// @Description Verifies credentials and opens a session.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "User login credentials"
// @Success 200 {object} auth.LoginResponse "Login successful, session cookie set"
// @Failure 400 {object} apperror.ErrorResponse "Missing fields"
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if req.Email == "" || req.Password == "" {
			WriteError(w, r, apperror.NewValidationError("Email and password are required", nil))
			return
		}

		user, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		token, err := h.tokens.Issue(user.ID)
		if err != nil {
			h.logger.Error("failed to issue token after login", zap.Error(err))
			WriteError(w, r, apperror.NewInternalError("login failed", err))
			return
		}

		http.SetCookie(w, h.cookies.SessionCookie(token))
		writeJSON(w, http.StatusOK, LoginResponse{
			Success: true,
			Token:   token,
			User: UserPayload{
				ID:    user.ID,
				Name:  user.Name,
				Email: user.Email,
			},
			RedirectTo: req.RedirectTo,
		})
	}
}

// HandleLogout godoc
// @Summary User Logout
// @Description Destroys the session by expiring the cookie. No token needed.
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.LogoutResponse "Session cookie cleared"
// @Router /api/auth/logout [post]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, h.cookies.ExpiredSessionCookie())
		writeJSON(w, http.StatusOK, LogoutResponse{Success: true, Message: "Logged out"})
	}
}

// writeJSON serializes data with the given status.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError writes a standardized error response. Errors that are not
// AppErrors are treated as internal: the client sees a generic message and
// the detail stays out of the body.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
