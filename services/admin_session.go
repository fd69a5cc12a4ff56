// services/admin_session.go - Signed, time-limited credentials for the site admin
package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotAdmin           = errors.New("admin privileges required")
)

// PasswordHashCost matches the cost used by legionctl hash-password.
const PasswordHashCost = 12

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AdminClaims are carried in every admin token.
type AdminClaims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

type AdminSessionConfig struct {
	Secret       string
	Username     string
	PasswordHash string
	TTL          time.Duration
}

// AdminSession issues and verifies HS256 tokens for the single static admin
// identity.
type AdminSession struct {
	secret       []byte
	username     string
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAdminSession(cfg AdminSessionConfig) (*AdminSession, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("JWT secret must be at least 32 characters long")
	}
	if cfg.Username == "" {
		return nil, errors.New("admin username is required")
	}
	if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AdminSession{
		secret:       []byte(cfg.Secret),
		username:     cfg.Username,
		passwordHash: []byte(cfg.PasswordHash),
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

// Authenticate checks the admin username and password and returns a signed
// token with its expiry.
func (s *AdminSession) Authenticate(username, password string) (string, time.Time, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// Always pay for the bcrypt comparison so a wrong username is not faster.
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.issue(username)
}

func (s *AdminSession) issue(username string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := AdminClaims{
		Username: username,
		IsAdmin:  true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and checks a token. A well-formed token without the admin
// flag yields ErrNotAdmin.
func (s *AdminSession) Verify(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.IsAdmin {
		return nil, ErrNotAdmin
	}
	return claims, nil
}
