package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/blackhole/records-system/internal/core/domain"
)

type authFixture struct {
	roles   *stubRoleRepo
	users   *stubUserRepo
	hasher  *plainHasher
	revoker *stubRevoker
	sink    *recordingSink
	svc     *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		roles:   newStubRoleRepo(domain.RoleAdmin, domain.RoleReviewer),
		hasher:  &plainHasher{},
		revoker: newStubRevoker(),
		sink:    &recordingSink{},
	}
	f.users = newStubUserRepo(f.roles)
	accounts := NewAccountService(f.users, f.roles, f.hasher, nil, zerolog.Nop())
	f.svc = NewAuthService(accounts, f.hasher, f.revoker, f.sink, "secret", time.Hour, zerolog.Nop())
	return f
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture()
	f.users.seedUser("carol", "hashed:s3cret", domain.RoleReviewer, domain.RoleAdmin)

	session, cred, err := f.svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.Token == "" || session.TokenID == "" {
		t.Fatalf("expected token and id, got %+v", session)
	}
	if cred.Username != "carol" {
		t.Fatalf("unexpected credential %+v", cred)
	}

	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(session.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.ID != session.TokenID || claims.Username != "carol" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != string(domain.RoleAdmin) {
		t.Fatalf("unexpected role claims %v", claims.Roles)
	}
}

func TestAuthService_Login_MasksUnknownUser(t *testing.T) {
	f := newAuthFixture()
	f.users.seedUser("dave", "hashed:goodpass", domain.RoleReviewer)

	_, _, errBadPass := f.svc.Login(context.Background(), "dave", "badpass")
	_, _, errUnknown := f.svc.Login(context.Background(), "ghost", "pass")

	if !errors.Is(errBadPass, domain.ErrInvalidCredentials) || !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", errBadPass, errUnknown)
	}
	if f.hasher.verifies != 2 {
		t.Fatalf("expected one hash comparison per attempt, got %d", f.hasher.verifies)
	}
	if got := f.sink.actions(); len(got) != 2 || got[0] != domain.AuditLoginFailed || got[1] != domain.AuditLoginFailed {
		t.Fatalf("unexpected audit trail: %v", got)
	}
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	f := newAuthFixture()
	if _, _, err := f.svc.Login(context.Background(), "", "x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Authenticate_UsesLiveRoles(t *testing.T) {
	f := newAuthFixture()
	u := f.users.seedUser("erin", "hashed:pw", domain.RoleReviewer)

	session, _, err := f.svc.Login(context.Background(), "erin", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := f.users.AddRole(context.Background(), u.ID, 1); err != nil {
		t.Fatalf("AddRole: %v", err)
	}

	id, got, err := f.svc.Authenticate(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if !id.IsAdmin() {
		t.Fatalf("expected role granted after login to be visible, got %v", id.Roles.Names())
	}
	if id.UserID != u.ID || got.TokenID != session.TokenID {
		t.Fatalf("unexpected identity %+v session %+v", id, got)
	}
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	f := newAuthFixture()
	f.users.seedUser("erin", "hashed:pw", domain.RoleReviewer)
	session, _, err := f.svc.Login(context.Background(), "erin", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	other := NewAuthService(nil, f.hasher, f.revoker, nil, "other-secret", time.Hour, zerolog.Nop())
	foreign, err := other.issue(&domain.Credential{Username: "erin", Roles: domain.NewRoleSet(domain.RoleAdmin)})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	expired := NewAuthService(nil, f.hasher, f.revoker, nil, "secret", time.Minute, zerolog.Nop())
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.issue(&domain.Credential{Username: "erin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ghost, err := f.svc.issue(&domain.Credential{Username: "ghost"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for name, token := range map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": foreign.Token,
		"expired":      stale.Token,
		"unknown user": ghost.Token,
	} {
		if _, _, err := f.svc.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
	}

	if _, _, err := f.svc.Authenticate(context.Background(), session.Token); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	f := newAuthFixture()
	f.users.seedUser("frank", "hashed:pw", domain.RoleReviewer)
	session, _, err := f.svc.Login(context.Background(), "frank", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	id, current, err := f.svc.Authenticate(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if err := f.svc.Logout(context.Background(), id, current); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	ttl, ok := f.revoker.revoked[session.TokenID]
	if !ok || ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected token revoked with remaining lifetime, got %v (ok=%v)", ttl, ok)
	}
	if _, _, err := f.svc.Authenticate(context.Background(), session.Token); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestAuthService_Authenticate_RevocationStoreDown(t *testing.T) {
	f := newAuthFixture()
	f.users.seedUser("gina", "hashed:pw", domain.RoleReviewer)
	session, _, err := f.svc.Login(context.Background(), "gina", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	f.revoker.err = errors.New("redis down")

	_, _, err = f.svc.Authenticate(context.Background(), session.Token)
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}
