package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/security"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type candidateUsecase struct {
	repo     domain.CandidateRepository
	resumes  domain.ResumeStore
	validate *validator.Validate
	now      func() time.Time
}

// NewCandidateUsecase wires the candidate profile service. resumes may be nil
// when object storage is not configured; uploads then fail with 503.
func NewCandidateUsecase(repo domain.CandidateRepository, resumes domain.ResumeStore, validate *validator.Validate) domain.CandidateUsecase {
	return &candidateUsecase{
		repo:     repo,
		resumes:  resumes,
		validate: validate,
		now:      time.Now,
	}
}

func (u *candidateUsecase) CreateProfile(ctx context.Context, profile *domain.CandidateProfile) error {
	principal, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}

	if err := u.validate.Struct(profile); err != nil {
		return apperror.BadRequest(err.Error())
	}

	// Fast-path check; the unique index on user_id enforces it
	if _, err := u.repo.GetByUserID(ctx, principal.UserID); err == nil {
		return domain.ErrProfileExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	now := u.now()
	profile.ID = uuid.NewString()
	profile.UserID = principal.UserID
	profile.ResumeURL = nil
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.Skills == nil {
		profile.Skills = []string{}
	}

	if err := u.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrProfileExists
		}
		return err
	}
	return nil
}

func (u *candidateUsecase) GetProfile(ctx context.Context, id string) (*domain.CandidateProfile, error) {
	return u.repo.GetByID(ctx, id)
}

func (u *candidateUsecase) GetMyProfile(ctx context.Context) (*domain.CandidateProfile, error) {
	principal, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return u.repo.GetByUserID(ctx, principal.UserID)
}

func (u *candidateUsecase) ListCandidates(ctx context.Context, page, size int) (*domain.PaginatedResult[domain.CandidateProfile], error) {
	page, size = domain.NormalizePage(page, size)
	profiles, total, err := u.repo.List(ctx, size, page*size)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(profiles, total, page, size), nil
}

func (u *candidateUsecase) SearchBySkill(ctx context.Context, skill string) ([]domain.CandidateProfile, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil, apperror.BadRequest("skill is required")
	}
	return u.repo.SearchBySkill(ctx, skill)
}

func (u *candidateUsecase) SearchByLocation(ctx context.Context, location string) ([]domain.CandidateProfile, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, apperror.BadRequest("location is required")
	}
	return u.repo.SearchByLocation(ctx, location)
}

func (u *candidateUsecase) UpdateProfile(ctx context.Context, id string, in *domain.CandidateProfile) (*domain.CandidateProfile, error) {
	// Security: ownership check (IDOR prevention on update)
	profile, err := u.ownedProfile(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	profile.FirstName = in.FirstName
	profile.LastName = in.LastName
	profile.Phone = in.Phone
	profile.Location = in.Location
	profile.Headline = in.Headline
	profile.Summary = in.Summary
	profile.Skills = in.Skills
	profile.ExperienceYears = in.ExperienceYears
	profile.Education = in.Education
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	profile.UpdatedAt = u.now()

	if err := u.repo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (u *candidateUsecase) DeleteProfile(ctx context.Context, id string) error {
	if _, err := u.ownedProfile(ctx, id, true); err != nil {
		return err
	}
	return u.repo.Delete(ctx, id)
}

// UploadResume validates and stores a resume for the caller's profile and
// records the object key as the profile's resume reference.
func (u *candidateUsecase) UploadResume(ctx context.Context, filename string, data []byte) (*domain.CandidateProfile, error) {
	if u.resumes == nil {
		return nil, apperror.ServiceUnavailable("Resume storage is not configured")
	}

	profile, err := u.GetMyProfile(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrProfileRequired
	}
	if err != nil {
		return nil, err
	}

	contentType, err := security.ValidateResume(filename, data)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	key := fmt.Sprintf("resumes/%s/%s%s", profile.ID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	ref, err := u.resumes.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("store resume: %w", err)
	}

	profile.ResumeURL = &ref
	profile.UpdatedAt = u.now()
	if err := u.repo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (u *candidateUsecase) ownedProfile(ctx context.Context, id string, allowAdmin bool) (*domain.CandidateProfile, error) {
	profile, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	principal, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if profile.UserID == principal.UserID || (allowAdmin && principal.HasAnyRole(domain.RoleAdmin)) {
		return profile, nil
	}
	return nil, apperror.Forbidden("You can only modify your own profile")
}
