package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/blackhole/records-system/internal/api/middleware"
	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
)

type stubAccountService struct {
	registerFn   func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	resolveFn    func(ctx context.Context, username string) (*domain.Credential, error)
	assignRoleFn func(ctx context.Context, actor domain.Identity, userID int64, roleName domain.RoleName) (*domain.User, error)
	listUsersFn  func(ctx context.Context) ([]*domain.User, error)
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) Resolve(ctx context.Context, username string) (*domain.Credential, error) {
	return s.resolveFn(ctx, username)
}

func (s *stubAccountService) AssignRole(ctx context.Context, actor domain.Identity, userID int64, roleName domain.RoleName) (*domain.User, error) {
	return s.assignRoleFn(ctx, actor, userID, roleName)
}

func (s *stubAccountService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listUsersFn(ctx)
}

type stubAuthService struct {
	loginFn  func(ctx context.Context, username, password string) (*ports.Session, *domain.Credential, error)
	logoutFn func(ctx context.Context, actor domain.Identity, session *ports.Session) error
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.Session, *domain.Credential, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Authenticate(context.Context, string) (domain.Identity, *ports.Session, error) {
	return domain.Identity{}, nil, errors.New("not used by handlers")
}

func (s *stubAuthService) Logout(ctx context.Context, actor domain.Identity, session *ports.Session) error {
	return s.logoutFn(ctx, actor, session)
}

type stubRoleService struct {
	createFn func(ctx context.Context, actor domain.Identity, name domain.RoleName) (*domain.Role, error)
	deleteFn func(ctx context.Context, actor domain.Identity, id int64) error
	listFn   func(ctx context.Context) ([]domain.Role, error)
}

func (s *stubRoleService) Create(ctx context.Context, actor domain.Identity, name domain.RoleName) (*domain.Role, error) {
	return s.createFn(ctx, actor, name)
}

func (s *stubRoleService) FindByName(context.Context, domain.RoleName) (*domain.Role, error) {
	return nil, errors.New("not used by handlers")
}

func (s *stubRoleService) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubRoleService) List(ctx context.Context) ([]domain.Role, error) {
	return s.listFn(ctx)
}

type stubRecordService struct {
	addFn    func(ctx context.Context, actor domain.Identity, in ports.AddRecordInput) (*domain.Record, error)
	searchFn func(ctx context.Context, query string) ([]domain.Record, error)
	listFn   func(ctx context.Context) ([]domain.Record, error)
}

func (s *stubRecordService) Add(ctx context.Context, actor domain.Identity, in ports.AddRecordInput) (*domain.Record, error) {
	return s.addFn(ctx, actor, in)
}

func (s *stubRecordService) Search(ctx context.Context, query string) ([]domain.Record, error) {
	return s.searchFn(ctx, query)
}

func (s *stubRecordService) List(ctx context.Context) ([]domain.Record, error) {
	return s.listFn(ctx)
}

type stubAuditService struct {
	recentFn func(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}

func (s *stubAuditService) Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	return s.recentFn(ctx, limit)
}

var (
	admin    = domain.Identity{UserID: 1, Username: "admin", Roles: domain.NewRoleSet(domain.RoleAdmin)}
	reviewer = domain.Identity{UserID: 2, Username: "rita", Roles: domain.NewRoleSet(domain.RoleReviewer)}
)

// newContext builds an echo context with the validator installed and, when
// caller is not anonymous, the identity the Auth middleware would have set.
func newContext(method, target string, body io.Reader, caller domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if !caller.Anonymous() {
		c.Set(middleware.IdentityKey, caller)
	}
	return c, rec
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }

// expectHTTPError fails unless err is an *echo.HTTPError with the given code.
func expectHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError with %d, got %v", code, err)
	}
	if he.Code != code {
		t.Fatalf("expected status %d, got %d (%v)", code, he.Code, he.Message)
	}
	return he
}
