package domain

import (
	"sort"
	"time"
)

// RoleName identifies a role in the catalog.
type RoleName string

const (
	RoleAdmin    RoleName = "ROLE_ADMIN"
	RoleReviewer RoleName = "ROLE_REVIEWER"

	// DefaultRole is granted to every newly registered account.
	DefaultRole = RoleReviewer
)

// Role is a named permission grouping.
type Role struct {
	ID   int64    `json:"id"`
	Name RoleName `json:"name"`
}

// RoleSet is the set of role names held by an account.
type RoleSet map[RoleName]struct{}

func NewRoleSet(names ...RoleName) RoleSet {
	s := make(RoleSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s RoleSet) Add(name RoleName) { s[name] = struct{}{} }

func (s RoleSet) Has(name RoleName) bool {
	_, ok := s[name]
	return ok
}

// HasAny reports whether the set contains at least one of names.
func (s RoleSet) HasAny(names ...RoleName) bool {
	for _, n := range names {
		if s.Has(n) {
			return true
		}
	}
	return false
}

// Names returns the role names sorted alphabetically.
func (s RoleSet) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, string(n))
	}
	sort.Strings(out)
	return out
}

// User models an account. Roles are always loaded together with the user.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) RoleSet() RoleSet {
	s := make(RoleSet, len(u.Roles))
	for _, r := range u.Roles {
		s.Add(r.Name)
	}
	return s
}

func (u *User) HasRole(name RoleName) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Credential is what authentication needs to know about an account.
type Credential struct {
	UserID       int64
	Username     string
	PasswordHash string
	Roles        RoleSet
}

// Identity is the authenticated caller of a request. It is passed explicitly
// to every operation that makes an authorization decision.
type Identity struct {
	UserID   int64
	Username string
	Roles    RoleSet
}

func (i Identity) IsAdmin() bool { return i.Roles.Has(RoleAdmin) }

func (i Identity) HasAnyRole(names ...RoleName) bool { return i.Roles.HasAny(names...) }

// Anonymous reports whether no caller was authenticated.
func (i Identity) Anonymous() bool { return i.Username == "" }
