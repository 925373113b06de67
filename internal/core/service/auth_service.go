package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
)

// AccessClaims is the JWT payload issued at login. Roles are informational;
// authorization always uses the live role set.
type AccessClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthService issues and validates access tokens.
type AuthService struct {
	accounts  ports.AccountService
	hasher    ports.PasswordHasher
	revoker   ports.TokenRevoker
	audit     AuditSink
	jwtSecret []byte
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time

	// dummyHash is verified against when the username is unknown so both
	// login failure paths cost one hash comparison.
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	accounts ports.AccountService,
	hasher ports.PasswordHasher,
	revoker ports.TokenRevoker,
	sink AuditSink,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if sink == nil {
		sink = NopAuditSink
	}
	return &AuthService{
		accounts:  accounts,
		hasher:    hasher,
		revoker:   revoker,
		audit:     sink,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

var _ ports.AuthService = (*AuthService)(nil)

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.Session, *domain.Credential, error) {
	if username == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	cred, err := s.accounts.Resolve(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("login: %w", err)
		}
		s.hasher.Verify(password, s.dummy())
		audit(s.audit, domain.AuditLoginFailed, "", username, "unknown user")
		return nil, nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, cred.PasswordHash) {
		audit(s.audit, domain.AuditLoginFailed, "", username, "bad password")
		return nil, nil, domain.ErrInvalidCredentials
	}

	session, err := s.issue(cred)
	if err != nil {
		return nil, nil, fmt.Errorf("login: sign token: %w", err)
	}
	s.log.Info().Str("username", cred.Username).Str("jti", session.TokenID).Msg("login succeeded")
	return session, cred, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.log.Warn().Err(err).Msg("could not prepare dummy password hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func (s *AuthService) issue(cred *domain.Credential) (*ports.Session, error) {
	now := s.now().UTC()
	exp := now.Add(s.tokenTTL)
	claims := AccessClaims{
		Username: cred.Username,
		Roles:    cred.Roles.Names(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   cred.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &ports.Session{Token: signed, TokenID: claims.ID, ExpiresAt: exp}, nil
}

// Authenticate parses token, rejects revoked tokens and resolves the caller's
// current roles through the account service.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Identity, *ports.Session, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.ID == "" || claims.Username == "" {
		return domain.Identity{}, nil, domain.ErrInvalidCredentials
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return domain.Identity{}, nil, fmt.Errorf("authenticate: revocation check: %w", err)
	}
	if revoked {
		return domain.Identity{}, nil, domain.ErrInvalidCredentials
	}

	cred, err := s.accounts.Resolve(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Identity{}, nil, domain.ErrInvalidCredentials
		}
		return domain.Identity{}, nil, fmt.Errorf("authenticate: %w", err)
	}

	session := &ports.Session{Token: token, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return domain.Identity{UserID: cred.UserID, Username: cred.Username, Roles: cred.Roles}, session, nil
}

// Logout revokes the session's token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, actor domain.Identity, session *ports.Session) error {
	if session == nil || session.TokenID == "" {
		return domain.ErrInvalidCredentials
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, session.TokenID, ttl); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	audit(s.audit, domain.AuditLogout, actor.Username, actor.Username, "")
	s.log.Info().Str("username", actor.Username).Str("jti", session.TokenID).Msg("logged out")
	return nil
}
