package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/irpartners/brokerage-api/pkg/logging"
)

// BcryptCost is the work factor for admin password hashes.
const BcryptCost = 12

// Service authenticates admins and manages their sessions.
type Service struct {
	admins     AdminRepository
	sessions   SessionStore
	sessionTTL time.Duration
	logger     *logging.Logger
}

// NewService creates an auth service.
func NewService(admins AdminRepository, sessions SessionStore, sessionTTL time.Duration, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &Service{
		admins:     admins,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// SessionTTL returns how long issued sessions live.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords both come back as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, Session{AdminID: admin.ID, Email: admin.Email}, s.sessionTTL)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("admin logged in", "admin_id", admin.ID)
	return token, admin, nil
}

// Resolve maps a session token back to its admin.
func (s *Service) Resolve(ctx context.Context, token string) (*Admin, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.admins.GetByID(ctx, session.AdminID)
}

// Logout discards a session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// HashPassword hashes a password for storage, used by seeding.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
