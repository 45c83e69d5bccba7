package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Wirandy/ATARES/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// invalidCredentialsMessage is the one message returned for both "no such
// user" and "wrong password", so a failed login cannot reveal whether an
// email is registered.
const invalidCredentialsMessage = "Invalid credentials"

// AuthService owns credential storage and verification. It is constructed
// once at startup with the shared pool and injected into the handlers.
type AuthService struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(db *pgxpool.Pool, logger *zap.Logger) *AuthService {
	return &AuthService{db: db, logger: logger}
}

// Register persists a new identity. Duplicate email or phone number yields a
// ConflictError; two concurrent registrations of the same email are
// serialized by the store's uniqueness constraint, so exactly one wins.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &User{
		Name:           req.Name,
		Email:          strings.ToLower(req.Email),
		PhoneNumber:    req.PhoneNumber,
		HashedPassword: hashed,
	}

	query := `INSERT INTO users (name, email, phone_number, password_hash)
              VALUES ($1, $2, $3, $4)
              RETURNING id, created_at`
	err = s.db.QueryRow(ctx, query, user.Name, user.Email, user.PhoneNumber, user.HashedPassword).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "phone") {
				return nil, apperror.NewConflictError("Phone number already registered", nil)
			}
			return nil, apperror.NewConflictError("Email already registered", nil)
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	return user, nil
}

// Login resolves an identity by email and verifies the password. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*User, error) {
	user, err := s.getUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError(invalidCredentialsMessage, nil)
		}
		s.logger.Error("failed to look up user during login", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if !CheckPassword(req.Password, user.HashedPassword) {
		return nil, apperror.NewAuthError(invalidCredentialsMessage, nil)
	}

	return user, nil
}

// GetUserByID resolves the current user for per-request identity checks.
func (s *AuthService) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	var user User
	query := `SELECT id, name, email, phone_number, password_hash, created_at
              FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, userID).
		Scan(&user.ID, &user.Name, &user.Email, &user.PhoneNumber, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	return &user, nil
}

func (s *AuthService) getUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT id, name, email, phone_number, password_hash, created_at
              FROM users WHERE email = $1`
	err := s.db.QueryRow(ctx, query, strings.ToLower(email)).
		Scan(&user.ID, &user.Name, &user.Email, &user.PhoneNumber, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
