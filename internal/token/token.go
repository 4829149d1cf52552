// Package token authenticates the administrative principal and issues and
// verifies the signed bearer tokens gating every mutating operation.
//
// Tokens are self-contained JWTs carrying the subject and an absolute
// expiry; nothing is stored server-side and there is no refresh or
// revocation flow. Verification fails closed: any signature, algorithm or
// expiry problem rejects the token.
package token

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"qrmanager/internal/apperr"
	"qrmanager/internal/config"
)

// defaultTTL applies when Issue is called without an explicit ttl.
const defaultTTL = 15 * time.Minute

// Principal identifies an authenticated caller.
type Principal struct {
	Username string
}

// Service authenticates the single configured principal and signs and
// verifies credentials with the configured symmetric key.
type Service struct {
	secret    []byte
	method    jwt.SigningMethod
	adminUser string
	adminHash []byte
	log       *zap.Logger

	now func() time.Time
}

// NewService builds a Service from the configuration snapshot. The admin
// password is hashed once here so authentication compares hashes rather
// than raw strings.
func NewService(cfg *config.Config, log *zap.Logger) (*Service, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &Service{
		secret:    []byte(cfg.SecretKey),
		method:    method,
		adminUser: cfg.AdminUser,
		adminHash: hash,
		log:       log,
		now:       time.Now,
	}, nil
}

// Authenticate checks the supplied credentials against the configured
// admin principal. Both comparisons always run, and the same error comes
// back for an unknown user and a wrong password.
func (s *Service) Authenticate(username, password string) (Principal, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUser)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.adminHash, []byte(password))
	if !userOK || passErr != nil {
		s.log.Warn("authentication failed", zap.String("username", username))
		return Principal{}, apperr.New(apperr.KindAuth, "incorrect username or password")
	}
	return Principal{Username: username}, nil
}

// Issue signs a credential for p expiring at now + ttl. A zero ttl falls
// back to 15 minutes.
func (s *Service) Issue(p Principal, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = defaultTTL
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   p.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token, returning the principal it
// was issued to. Signature, algorithm, subject and expiry are all checked.
func (s *Service) Verify(tokenStr string) (Principal, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return Principal{}, apperr.Wrap(apperr.KindAuth, err, "invalid or expired token")
	}
	if claims.Subject == "" {
		return Principal{}, apperr.New(apperr.KindAuth, "invalid or expired token")
	}
	return Principal{Username: claims.Subject}, nil
}
