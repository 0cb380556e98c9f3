package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/google/uuid"
)

type jobUsecase struct {
	jobRepo       domain.JobRepository
	recruiterRepo domain.RecruiterRepository
	now           func() time.Time
}

func NewJobUsecase(jobRepo domain.JobRepository, recruiterRepo domain.RecruiterRepository) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:       jobRepo,
		recruiterRepo: recruiterRepo,
		now:           time.Now,
	}
}

func (u *jobUsecase) CreateJob(ctx context.Context, job *domain.Job) error {
	// Jobs are owned by the caller's recruiter profile
	recruiter, err := currentRecruiter(ctx, u.recruiterRepo)
	if err != nil {
		return err
	}

	if err := validateJob(job); err != nil {
		return err
	}

	now := u.now()
	job.ID = uuid.NewString()
	job.RecruiterID = recruiter.ID
	job.Active = true
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Company == "" {
		job.Company = recruiter.CompanyName
	}
	if job.Requirements == nil {
		job.Requirements = []string{}
	}

	return u.jobRepo.Create(ctx, job)
}

func (u *jobUsecase) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	return u.jobRepo.GetByID(ctx, id)
}

// ListJobs serves the public listing; only active jobs are visible.
func (u *jobUsecase) ListJobs(ctx context.Context, q domain.JobQuery) (*domain.JobPage, error) {
	q.ActiveOnly = true
	q.RecruiterID = ""
	return u.search(ctx, q)
}

// ListByRecruiter includes inactive jobs.
func (u *jobUsecase) ListByRecruiter(ctx context.Context, recruiterID string, q domain.JobQuery) (*domain.JobPage, error) {
	q.ActiveOnly = false
	q.RecruiterID = recruiterID
	return u.search(ctx, q)
}

func (u *jobUsecase) UpdateJob(ctx context.Context, id string, in *domain.Job) (*domain.Job, error) {
	job, err := u.ownedJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateJob(in); err != nil {
		return nil, err
	}

	job.Title = in.Title
	job.Description = in.Description
	job.Company = in.Company
	job.Location = in.Location
	job.Category = in.Category
	job.EmploymentType = in.EmploymentType
	job.SalaryMin = in.SalaryMin
	job.SalaryMax = in.SalaryMax
	job.Requirements = in.Requirements
	job.Deadline = in.Deadline
	if job.Requirements == nil {
		job.Requirements = []string{}
	}
	job.UpdatedAt = u.now()

	if err := u.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (u *jobUsecase) ToggleActive(ctx context.Context, id string) (*domain.Job, error) {
	job, err := u.ownedJob(ctx, id)
	if err != nil {
		return nil, err
	}
	job.Active = !job.Active
	job.UpdatedAt = u.now()
	if err := u.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (u *jobUsecase) DeleteJob(ctx context.Context, id string) error {
	if _, err := u.ownedJob(ctx, id); err != nil {
		return err
	}
	return u.jobRepo.Delete(ctx, id)
}

func (u *jobUsecase) search(ctx context.Context, q domain.JobQuery) (*domain.JobPage, error) {
	q = q.Normalize()
	jobs, total, err := u.jobRepo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	return &domain.JobPage{
		Jobs:        jobs,
		CurrentPage: q.Page,
		TotalItems:  total,
		TotalPages:  domain.TotalPages(total, q.Size),
	}, nil
}

// ownedJob loads a job the caller's recruiter profile posted.
func (u *jobUsecase) ownedJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	recruiter, err := currentRecruiter(ctx, u.recruiterRepo)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != recruiter.ID {
		return nil, fmt.Errorf("%w: job belongs to another recruiter", domain.ErrForbidden)
	}
	return job, nil
}

func validateJob(job *domain.Job) error {
	if strings.TrimSpace(job.Title) == "" {
		return apperror.BadRequest("Title is required")
	}
	if job.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMin > *job.SalaryMax {
		return apperror.BadRequest("SalaryMin cannot be greater than SalaryMax")
	}
	if job.EmploymentType == "" {
		job.EmploymentType = domain.EmploymentFullTime
	}
	return nil
}
