package domain

import (
	"context"
	"strings"
	"time"
)

type Role string

const (
	RoleCandidate Role = "CANDIDATE"
	RoleRecruiter Role = "RECRUITER"
	RoleAdmin     Role = "ADMIN"
)

// AuthorityPrefix is prepended to role names when they are exposed to clients.
const AuthorityPrefix = "ROLE_"

func (r Role) Authority() string {
	return AuthorityPrefix + string(r)
}

func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleRecruiter, RoleAdmin:
		return true
	}
	return false
}

// ParseRole is the single normalization point for role strings coming from
// clients. Matching is case-insensitive, an optional ROLE_ prefix is
// accepted, and anything unrecognized becomes CANDIDATE.
func ParseRole(s string) Role {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, AuthorityPrefix)
	if r := Role(s); r.Valid() {
		return r
	}
	return RoleCandidate
}

// ParseRoles normalizes a requested role list. Empty input yields {CANDIDATE};
// duplicates collapse and the first-seen order is kept.
func ParseRoles(in []string) []Role {
	if len(in) == 0 {
		return []Role{RoleCandidate}
	}
	seen := make(map[Role]bool, len(in))
	roles := make([]Role, 0, len(in))
	for _, s := range in {
		r := ParseRole(s)
		if !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}
	return roles
}

func Authorities(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Authority())
	}
	return out
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type SignupInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

type SigninResult struct {
	AccessToken string   `json:"accessToken"`
	TokenType   string   `json:"tokenType"`
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error
	UpdateRoles(ctx context.Context, id string, roles []Role, at time.Time) error
}

// TokenIssuer mints bearer tokens for a subject.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

type AuthUsecase interface {
	Signup(ctx context.Context, in SignupInput) (*User, error)
	Signin(ctx context.Context, username, password string) (*SigninResult, error)
	GetCurrentUser(ctx context.Context, username string) (*User, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	AssignRoles(ctx context.Context, userID string, roles []string) (*User, error)
}
