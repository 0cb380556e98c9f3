package usecase

import (
	"context"
	"errors"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type recruiterUsecase struct {
	repo     domain.RecruiterRepository
	validate *validator.Validate
	now      func() time.Time
}

func NewRecruiterUsecase(repo domain.RecruiterRepository, validate *validator.Validate) domain.RecruiterUsecase {
	return &recruiterUsecase{
		repo:     repo,
		validate: validate,
		now:      time.Now,
	}
}

// CreateProfile creates the caller's recruiter profile, always unverified.
func (u *recruiterUsecase) CreateProfile(ctx context.Context, profile *domain.RecruiterProfile) error {
	principal, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}
	if err := u.validate.Struct(profile); err != nil {
		return apperror.BadRequest(err.Error())
	}

	if _, err := u.repo.GetByUserID(ctx, principal.UserID); err == nil {
		return domain.ErrProfileExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	now := u.now()
	profile.ID = uuid.NewString()
	profile.UserID = principal.UserID
	profile.Verified = false
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if err := u.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrProfileExists
		}
		return err
	}
	return nil
}

func (u *recruiterUsecase) GetProfile(ctx context.Context, id string) (*domain.RecruiterProfile, error) {
	return u.repo.GetByID(ctx, id)
}

func (u *recruiterUsecase) GetMyProfile(ctx context.Context) (*domain.RecruiterProfile, error) {
	principal, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return u.repo.GetByUserID(ctx, principal.UserID)
}

func (u *recruiterUsecase) ListRecruiters(ctx context.Context, page, size int) (*domain.PaginatedResult[domain.RecruiterProfile], error) {
	page, size = domain.NormalizePage(page, size)
	profiles, total, err := u.repo.List(ctx, size, page*size)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(profiles, total, page, size), nil
}

func (u *recruiterUsecase) UpdateProfile(ctx context.Context, id string, in *domain.RecruiterProfile) (*domain.RecruiterProfile, error) {
	profile, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	principal, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if profile.UserID != principal.UserID {
		return nil, apperror.Forbidden("You can only modify your own profile")
	}
	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	profile.FirstName = in.FirstName
	profile.LastName = in.LastName
	profile.CompanyName = in.CompanyName
	profile.Position = in.Position
	profile.Phone = in.Phone
	profile.CompanyWebsite = in.CompanyWebsite
	profile.UpdatedAt = u.now()

	if err := u.repo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (u *recruiterUsecase) DeleteProfile(ctx context.Context, id string) error {
	profile, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ownsOrAdmin(ctx, profile.UserID) {
		return apperror.Forbidden("You can only delete your own profile")
	}
	return u.repo.Delete(ctx, id)
}

// Verify marks a recruiter as verified. Route-level guards restrict it to admins.
func (u *recruiterUsecase) Verify(ctx context.Context, id string) (*domain.RecruiterProfile, error) {
	profile, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := u.now()
	if err := u.repo.SetVerified(ctx, id, true, now); err != nil {
		return nil, err
	}
	profile.Verified = true
	profile.UpdatedAt = now

	logger.Log.Info("Recruiter verified", "recruiter_id", id)
	return profile, nil
}
