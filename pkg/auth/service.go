package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/repositories"
)

// Common authentication errors.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidAuthFormat    = errors.New("invalid authorization header format")
	ErrInvalidCredentials   = errors.New("invalid email or password")
)

// Credentials identify an admin at sign-in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session describes a signed-in admin.
type Session struct {
	AdminID   string    `json:"adminId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"-"`
}

// AuthService defines the interface for admin authentication.
type AuthService interface {
	// SignIn checks credentials and issues a session token.
	SignIn(ctx context.Context, creds Credentials) (*Session, error)

	// Validate verifies a raw session token.
	Validate(token string) (*Claims, error)

	// ValidateRequest extracts and validates the session token from the request.
	// It checks for the token in:
	//   1. The admin session cookie (browser clients)
	//   2. Authorization header with "Bearer" scheme (API clients)
	ValidateRequest(r *http.Request) (*Claims, error)

	// Persist stores the session token in a cookie on w.
	Persist(w http.ResponseWriter, r *http.Request, session *Session) error

	// SignOut clears the session cookie.
	SignOut(w http.ResponseWriter, r *http.Request) error

	// CurrentSession returns the session carried by r, or nil when absent or invalid.
	CurrentSession(r *http.Request) *Session

	// Bootstrap creates the admin account, or resets its password.
	Bootstrap(ctx context.Context, email, password string) error
}

// authService implements AuthService.
type authService struct {
	admins repositories.AdminRepository
	signer *TokenSigner
	jar    *CookieJar
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(admins repositories.AdminRepository, signer *TokenSigner, jar *CookieJar, logger *zap.Logger) AuthService {
	return &authService{
		admins: admins,
		signer: signer,
		jar:    jar,
		logger: logger.Named("auth"),
	}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) SignIn(ctx context.Context, creds Credentials) (*Session, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrAuth, ErrInvalidCredentials)
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Info("Sign-in for unknown admin", zap.String("email", email))
			return nil, fmt.Errorf("%w: %w", apperrors.ErrAuth, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrAuth, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(creds.Password)); err != nil {
		s.logger.Info("Sign-in with wrong password", zap.String("email", email))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrAuth, ErrInvalidCredentials)
	}

	token, expires, err := s.signer.Issue(admin)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrAuth, err)
	}

	s.logger.Info("Admin signed in", zap.String("admin_id", admin.ID.String()))
	return &Session{
		AdminID:   admin.ID.String(),
		Email:     admin.Email,
		ExpiresAt: expires,
		Token:     token,
	}, nil
}

func (s *authService) Validate(token string) (*Claims, error) {
	return s.signer.Verify(token)
}

func (s *authService) ValidateRequest(r *http.Request) (*Claims, error) {
	var tokenString string
	var tokenSource string

	// Try cookie first (browser clients)
	if token := s.jar.Token(r); token != "" {
		tokenString = token
		tokenSource = "cookie"
	} else {
		// Fallback to Authorization header (API clients)
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.logger.Debug("No session token found in request",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method))
			return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, ErrMissingAuthorization)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.logger.Debug("Invalid Authorization header format",
				zap.String("path", r.URL.Path))
			return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, ErrInvalidAuthFormat)
		}
		tokenString = parts[1]
		tokenSource = "header"
	}

	claims, err := s.signer.Verify(tokenString)
	if err != nil {
		s.logger.Debug("Session token validation failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("token_source", tokenSource))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}

	return claims, nil
}

func (s *authService) Persist(w http.ResponseWriter, r *http.Request, session *Session) error {
	if err := s.jar.Store(w, r, session.Token); err != nil {
		return fmt.Errorf("failed to save session cookie: %w", err)
	}
	return nil
}

func (s *authService) SignOut(w http.ResponseWriter, r *http.Request) error {
	if err := s.jar.Clear(w, r); err != nil {
		return fmt.Errorf("failed to clear session cookie: %w", err)
	}
	return nil
}

func (s *authService) CurrentSession(r *http.Request) *Session {
	claims, err := s.ValidateRequest(r)
	if err != nil {
		return nil
	}
	session := &Session{AdminID: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session
}

func (s *authService) Bootstrap(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	admin, err := s.admins.Upsert(ctx, email, hash)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	s.logger.Info("Admin account ready",
		zap.String("admin_id", admin.ID.String()),
		zap.String("email", admin.Email))
	return nil
}

// Ensure authService implements AuthService at compile time.
var _ AuthService = (*authService)(nil)
