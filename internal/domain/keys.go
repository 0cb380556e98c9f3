package domain

import "context"

type CtxKey string

const (
	KeyPrincipal CtxKey = "Principal"
	KeyRequestID CtxKey = "RequestID"
)

// Principal is the authenticated caller of a single request.
type Principal struct {
	UserID   string
	Username string
	Roles    []Role
}

func (p *Principal) HasAnyRole(roles ...Role) bool {
	if p == nil {
		return false
	}
	for _, want := range roles {
		for _, have := range p.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, KeyPrincipal, p)
}

// PrincipalFrom returns the request principal; ok is false for anonymous requests.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(KeyPrincipal).(*Principal)
	return p, ok && p != nil
}
