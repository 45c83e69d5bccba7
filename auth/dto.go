// Package auth provides session authentication: credential verification,
// token issuance and validation, the edge gatekeeper, and the login,
// registration and logout endpoints.
//
// This file defines the request and response payloads for those endpoints.
package auth

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name        string `json:"name" example:"Ann"`
	Email       string `json:"email" example:"ann@x.com"`
	PhoneNumber string `json:"phoneNumber" example:"+1000"`
	Password    string `json:"password" example:"secret1"`
}

// LoginRequest is the login payload. RedirectTo is an optional target the
// client wants to navigate to after login; it is echoed back verbatim.
type LoginRequest struct {
	Email      string `json:"email" example:"ann@x.com"`
	Password   string `json:"password" example:"secret1"`
	RedirectTo string `json:"redirectTo,omitempty" example:"/dashboard/analysis"`
}

// UserPayload is the client-facing slice of a User.
type UserPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	Token string      `json:"token"`
	User  UserPayload `json:"user"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Success    bool        `json:"success"`
	Token      string      `json:"token"`
	User       UserPayload `json:"user"`
	RedirectTo string      `json:"redirectTo,omitempty"`
}

// LogoutResponse is returned by the logout endpoint.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
