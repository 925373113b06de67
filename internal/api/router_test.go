package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
	"github.com/blackhole/records-system/internal/core/service"
	"github.com/blackhole/records-system/internal/infrastructure/http/handlers"
	"github.com/blackhole/records-system/internal/infrastructure/security"
)

// tokenAuth accepts a fixed token per identity.
type tokenAuth map[string]domain.Identity

func (a tokenAuth) Login(context.Context, string, string) (*ports.Session, *domain.Credential, error) {
	return nil, nil, domain.ErrInvalidCredentials
}

func (a tokenAuth) Authenticate(_ context.Context, token string) (domain.Identity, *ports.Session, error) {
	id, ok := a[token]
	if !ok {
		return domain.Identity{}, nil, domain.ErrInvalidCredentials
	}
	return id, &ports.Session{Token: token, TokenID: "jti-" + token, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (a tokenAuth) Logout(context.Context, domain.Identity, *ports.Session) error { return nil }

type fakeRecords struct{ added int }

func (f *fakeRecords) Add(_ context.Context, _ domain.Identity, in ports.AddRecordInput) (*domain.Record, error) {
	f.added++
	return &domain.Record{ID: 1, Name: in.Name, Age: in.Age, DateOfBirth: in.DateOfBirth, Description: in.Description, ConnectedTo: in.ConnectedTo}, nil
}

func (f *fakeRecords) Search(context.Context, string) ([]domain.Record, error) { return nil, nil }

func (f *fakeRecords) List(context.Context) ([]domain.Record, error) {
	return []domain.Record{{ID: 1, Name: "John Smith"}}, nil
}

type fakeAccounts struct{}

func (fakeAccounts) Register(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
	return &domain.User{ID: 5, Username: in.Username, Roles: []domain.Role{{ID: 2, Name: domain.RoleReviewer}}}, nil
}

func (fakeAccounts) Resolve(context.Context, string) (*domain.Credential, error) {
	return nil, domain.NotFound("User not found")
}

func (fakeAccounts) AssignRole(context.Context, domain.Identity, int64, domain.RoleName) (*domain.User, error) {
	return nil, domain.NotFound("User not found")
}

func (fakeAccounts) ListUsers(context.Context) ([]*domain.User, error) { return nil, nil }

type fakeRoles struct{}

func (fakeRoles) Create(_ context.Context, _ domain.Identity, name domain.RoleName) (*domain.Role, error) {
	return &domain.Role{ID: 3, Name: name}, nil
}

func (fakeRoles) FindByName(context.Context, domain.RoleName) (*domain.Role, error) {
	return nil, domain.NotFound("Role not found")
}

func (fakeRoles) Delete(context.Context, domain.Identity, int64) error { return nil }

func (fakeRoles) List(context.Context) ([]domain.Role, error) { return nil, nil }

type fakeAudit struct{}

func (fakeAudit) Recent(context.Context, int) ([]domain.AuditEvent, error) { return nil, nil }

func newTestRouter(t *testing.T) (*echo.Echo, *fakeRecords) {
	t.Helper()
	records := &fakeRecords{}
	reg := prometheus.NewRegistry()
	e := NewRouter(Dependencies{
		Accounts: fakeAccounts{},
		Auth: tokenAuth{
			"admin-token":    {UserID: 1, Username: "admin", Roles: domain.NewRoleSet(domain.RoleAdmin)},
			"reviewer-token": {UserID: 2, Username: "rita", Roles: domain.NewRoleSet(domain.RoleReviewer)},
			"nobody-token":   {UserID: 3, Username: "nobody", Roles: domain.NewRoleSet()},
		},
		Roles:   fakeRoles{},
		Records: records,
		Audit:   fakeAudit{},
		Checks: []handlers.Check{
			{Name: "database", Probe: func(context.Context) error { return nil }},
		},
		Log:        zerolog.Nop(),
		Registerer: reg,
		Gatherer:   reg,
	})
	return e, records
}

func serve(e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AccessControl(t *testing.T) {
	e, _ := newTestRouter(t)

	cases := []struct {
		method, target, token string
		want                  int
	}{
		{http.MethodGet, "/criminals", "", http.StatusUnauthorized},
		{http.MethodGet, "/criminals", "forged", http.StatusUnauthorized},
		{http.MethodGet, "/criminals", "nobody-token", http.StatusForbidden},
		{http.MethodGet, "/criminals", "reviewer-token", http.StatusOK},
		{http.MethodGet, "/criminals", "admin-token", http.StatusOK},
		{http.MethodGet, "/criminals/search?query=smith", "reviewer-token", http.StatusOK},
		{http.MethodGet, "/criminals/search?query=", "reviewer-token", http.StatusBadRequest},
		{http.MethodGet, "/admin/users", "reviewer-token", http.StatusForbidden},
		{http.MethodGet, "/admin/users", "admin-token", http.StatusOK},
		{http.MethodGet, "/admin/roles", "admin-token", http.StatusOK},
		{http.MethodDelete, "/admin/roles/3", "admin-token", http.StatusNoContent},
		{http.MethodGet, "/admin/audit", "admin-token", http.StatusOK},
		{http.MethodGet, "/users/me", "", http.StatusUnauthorized},
		{http.MethodGet, "/users/me", "nobody-token", http.StatusOK},
		{http.MethodPost, "/users/logout", "reviewer-token", http.StatusNoContent},
	}

	for _, tc := range cases {
		rec := serve(e, tc.method, tc.target, tc.token, "")
		if rec.Code != tc.want {
			t.Errorf("%s %s as %q: expected %d, got %d (%s)", tc.method, tc.target, tc.token, tc.want, rec.Code, rec.Body.String())
		}
	}
}

func TestRouter_OnlyAdminsAddRecords(t *testing.T) {
	e, records := newTestRouter(t)
	body := `{"name":"John Smith","age":41,"date_of_birth":"1984-03-02","description":"Fraud","connected_to":"Acme"}`

	if rec := serve(e, http.MethodPost, "/criminals", "reviewer-token", body); rec.Code != http.StatusForbidden {
		t.Fatalf("reviewer: expected 403, got %d", rec.Code)
	}
	if records.added != 0 {
		t.Fatalf("reviewer request reached the service")
	}

	if rec := serve(e, http.MethodPost, "/criminals", "admin-token", body); rec.Code != http.StatusCreated {
		t.Fatalf("admin: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if records.added != 1 {
		t.Fatalf("expected one record added, got %d", records.added)
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	e, _ := newTestRouter(t)

	if rec := serve(e, http.MethodPost, "/users/register", "", `{"username":"alice","email":"a@example.com","password":"secret"}`); rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec := serve(e, http.MethodPost, "/users/login", "", `{"username":"alice","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("login: expected 401, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/health/ready", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestRouter_ExposesHTTPMetrics(t *testing.T) {
	e, _ := newTestRouter(t)
	serve(e, http.MethodGet, "/criminals", "admin-token", "")

	rec := serve(e, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "requests_total") {
		t.Fatalf("expected request counter in scrape output")
	}
}

// reviewerCatalog holds only the default role. Unused methods are left to
// the embedded nil interface.
type reviewerCatalog struct{ ports.RoleRepository }

func (reviewerCatalog) FindByName(_ context.Context, name domain.RoleName) (*domain.Role, error) {
	if name != domain.RoleReviewer {
		return nil, domain.NotFound("Role not found: %s", name)
	}
	return &domain.Role{ID: 2, Name: domain.RoleReviewer}, nil
}

type countingUsers struct {
	ports.UserRepository
	created int
}

func (u *countingUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	u.created++
	user.ID = int64(u.created)
	return user, nil
}

func TestRouter_RegisterRejectsOverlongPassword(t *testing.T) {
	users := &countingUsers{}
	accounts := service.NewAccountService(users, reviewerCatalog{}, security.NewBcryptHasher(4), nil, zerolog.Nop())
	reg := prometheus.NewRegistry()
	e := NewRouter(Dependencies{
		Accounts:   accounts,
		Auth:       tokenAuth{},
		Roles:      fakeRoles{},
		Records:    &fakeRecords{},
		Audit:      fakeAudit{},
		Log:        zerolog.Nop(),
		Registerer: reg,
		Gatherer:   reg,
	})

	body := `{"username":"alice","email":"a@example.com","password":"` + strings.Repeat("a", 73) + `"}`
	rec := serve(e, http.MethodPost, "/users/register", "", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Password must be at most 72 bytes.") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if users.created != 0 {
		t.Fatalf("expected nothing persisted, got %d", users.created)
	}

	body = `{"username":"alice","email":"a@example.com","password":"` + strings.Repeat("a", 72) + `"}`
	if rec := serve(e, http.MethodPost, "/users/register", "", body); rec.Code != http.StatusCreated {
		t.Fatalf("72 bytes: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
}
