package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blackhole/records-system/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

type stubRoleRepo struct {
	nextID    int64
	byID      map[int64]domain.Role
	createErr error
	deleteErr error
	creates   int
}

func newStubRoleRepo(names ...domain.RoleName) *stubRoleRepo {
	r := &stubRoleRepo{byID: make(map[int64]domain.Role)}
	for _, n := range names {
		r.nextID++
		r.byID[r.nextID] = domain.Role{ID: r.nextID, Name: n}
	}
	return r
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if existing.Name == role.Name {
			return nil, domain.AlreadyExists("duplicate role")
		}
	}
	r.creates++
	r.nextID++
	created := domain.Role{ID: r.nextID, Name: role.Name}
	r.byID[created.ID] = created
	return &created, nil
}

func (r *stubRoleRepo) FindByID(_ context.Context, id int64) (*domain.Role, error) {
	role, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound("role %d not found", id)
	}
	return &role, nil
}

func (r *stubRoleRepo) FindByName(_ context.Context, name domain.RoleName) (*domain.Role, error) {
	for _, role := range r.byID {
		if role.Name == name {
			role := role
			return &role, nil
		}
	}
	return nil, domain.NotFound("role %s not found", name)
}

func (r *stubRoleRepo) Delete(_ context.Context, id int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return domain.NotFound("role %d not found", id)
	}
	delete(r.byID, id)
	return nil
}

func (r *stubRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(r.byID))
	for _, role := range r.byID {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubUserRepo struct {
	nextID  int64
	byID    map[int64]*domain.User
	roles   *stubRoleRepo
	writes  int
	findErr error
}

func newStubUserRepo(roles *stubRoleRepo) *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User), roles: roles}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]domain.Role(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Username == user.Username {
			return nil, domain.AlreadyExists("Username already taken: %s", user.Username)
		}
	}
	r.writes++
	r.nextID++
	created := cloneUser(user)
	created.ID = r.nextID
	now := time.Now().UTC()
	created.CreatedAt, created.UpdatedAt = now, now
	r.byID[created.ID] = created
	return cloneUser(created), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound("User not found with ID: %d", id)
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.NotFound("User not found: %s", username)
}

func (r *stubUserRepo) AddRole(_ context.Context, userID, roleID int64) error {
	u, ok := r.byID[userID]
	if !ok {
		return domain.NotFound("User not found with ID: %d", userID)
	}
	role, ok := r.roles.byID[roleID]
	if !ok {
		return domain.NotFound("Role not found with ID: %d", roleID)
	}
	r.writes++
	if !u.HasRole(role.Name) {
		u.Roles = append(u.Roles, role)
	}
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// seedUser stores a user directly, bypassing Register.
func (r *stubUserRepo) seedUser(username, hash string, roles ...domain.RoleName) *domain.User {
	u := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: hash}
	for _, n := range roles {
		role, err := r.roles.FindByName(context.Background(), n)
		if err != nil {
			panic(err)
		}
		u.Roles = append(u.Roles, *role)
	}
	r.nextID++
	u.ID = r.nextID
	r.byID[u.ID] = u
	return cloneUser(u)
}

type stubRecordRepo struct {
	records   []domain.Record
	createErr error
	queries   []string
}

func (r *stubRecordRepo) Create(_ context.Context, rec *domain.Record) (*domain.Record, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	created := *rec
	created.ID = int64(len(r.records) + 1)
	created.CreatedAt = time.Now().UTC()
	r.records = append(r.records, created)
	return &created, nil
}

func (r *stubRecordRepo) Search(_ context.Context, query string) ([]domain.Record, error) {
	r.queries = append(r.queries, query)
	q := strings.ToLower(query)
	var out []domain.Record
	for _, rec := range r.records {
		if strings.Contains(strings.ToLower(rec.Name), q) || strings.Contains(strings.ToLower(rec.Description), q) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *stubRecordRepo) List(_ context.Context) ([]domain.Record, error) {
	return append([]domain.Record(nil), r.records...), nil
}

type stubAuditRepo struct {
	events []domain.AuditEvent
	limit  int
	err    error
}

func (r *stubAuditRepo) Insert(_ context.Context, e *domain.AuditEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *stubAuditRepo) Recent(_ context.Context, limit int) ([]domain.AuditEvent, error) {
	r.limit = limit
	if r.err != nil {
		return nil, r.err
	}
	return r.events, nil
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// plainHasher prefixes the plaintext so tests can reason about hashes
// without paying for bcrypt.
type plainHasher struct {
	hashErr  error
	verifies int
}

func (h *plainHasher) Hash(plaintext string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + plaintext, nil
}

func (h *plainHasher) Verify(plaintext, hash string) bool {
	h.verifies++
	return hash == "hashed:"+plaintext
}

type stubRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Duration)}
}

func (r *stubRevoker) Revoke(_ context.Context, id string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.revoked[id] = ttl
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[id]
	return ok, nil
}

type recordingSink struct {
	events []domain.AuditEvent
}

func (s *recordingSink) Publish(e domain.AuditEvent) { s.events = append(s.events, e) }

func (s *recordingSink) actions() []domain.AuditAction {
	out := make([]domain.AuditAction, len(s.events))
	for i, e := range s.events {
		out[i] = e.Action
	}
	return out
}

var (
	adminIdentity    = domain.Identity{UserID: 100, Username: "root", Roles: domain.NewRoleSet(domain.RoleAdmin)}
	reviewerIdentity = domain.Identity{UserID: 101, Username: "rev", Roles: domain.NewRoleSet(domain.RoleReviewer)}
)
