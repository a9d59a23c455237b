// Package auth implements credential issuance and verification: password
// hashing, registration, login and bearer-token handling. The service is
// the only component that ever sees a plaintext password, and it discards
// it as soon as the digest is computed.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/health-record-service/internal/apperr"
	"github.com/iliyamo/health-record-service/internal/repository"
	"github.com/iliyamo/health-record-service/internal/utils"
)

// Service bundles the credential store with the immutable signing
// configuration. The secret and TTL are fixed at construction and never
// change for the life of the process.
type Service struct {
	users      *repository.UserRepo
	secret     string
	accessTTL  time.Duration
	bcryptCost int
}

func NewService(users *repository.UserRepo, secret string, accessTTL time.Duration, bcryptCost int) *Service {
	return &Service{users: users, secret: secret, accessTTL: accessTTL, bcryptCost: bcryptCost}
}

// Register creates a new principal. Email is checked before username, so
// the first conflicting field is the one reported. The returned record
// carries the digest only because it is an internal value; handlers strip
// it from responses.
func (s *Service) Register(ctx context.Context, email, username, password string) (repository.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return repository.User{}, apperr.Validation("email, username and password are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return repository.User{}, apperr.DuplicateCredential("Email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return repository.User{}, err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return repository.User{}, apperr.DuplicateCredential("Username already taken")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return repository.User{}, err
	}

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return repository.User{}, err
	}
	return s.users.Create(ctx, email, username, hash)
}

// Login verifies the password and issues an access token. Unknown
// username and wrong password produce the same invalid-credential error
// so the response cannot be used to enumerate accounts.
func (s *Service) Login(ctx context.Context, username, password string) (utils.AccessToken, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.AccessToken{}, apperr.InvalidCredential("Incorrect username or password")
		}
		return utils.AccessToken{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return utils.AccessToken{}, apperr.InvalidCredential("Incorrect username or password")
	}
	return s.IssueToken(u.Username, 0)
}

// IssueToken signs a token for the subject. A non-positive ttl selects the
// configured default.
func (s *Service) IssueToken(subject string, ttl time.Duration) (utils.AccessToken, error) {
	if ttl <= 0 {
		ttl = s.accessTTL
	}
	return utils.NewAccessToken(s.secret, subject, ttl)
}

// VerifyToken returns the token's subject, or utils.ErrInvalidToken for
// any token that fails signature or expiry checks.
func (s *Service) VerifyToken(raw string) (string, error) {
	return utils.ParseSubject(s.secret, raw)
}

// Authenticate resolves the calling principal from a bearer token. It
// fails closed: an unverifiable token or a vanished subject is
// unauthenticated, an inactive principal is forbidden.
func (s *Service) Authenticate(ctx context.Context, raw string) (repository.User, error) {
	subject, err := s.VerifyToken(raw)
	if err != nil {
		return repository.User{}, apperr.Unauthenticated("Could not validate credentials")
	}
	u, err := s.users.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.User{}, apperr.Unauthenticated("Could not validate credentials")
		}
		return repository.User{}, err
	}
	if !u.IsActive {
		return repository.User{}, apperr.Forbidden("Inactive user")
	}
	return u, nil
}
