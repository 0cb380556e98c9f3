package usecase

import (
	"context"
	"errors"

	"go-jobboard-backend/internal/domain"
)

// currentRecruiter resolves the recruiter profile of the request principal.
func currentRecruiter(ctx context.Context, repo domain.RecruiterRepository) (*domain.RecruiterProfile, error) {
	principal, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	recruiter, err := repo.GetByUserID(ctx, principal.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrProfileRequired
	}
	return recruiter, err
}

// ownsOrAdmin reports whether the principal is the given user or an admin.
func ownsOrAdmin(ctx context.Context, userID string) bool {
	principal, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return false
	}
	return principal.UserID == userID || principal.HasAnyRole(domain.RoleAdmin)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
