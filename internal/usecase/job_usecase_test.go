package usecase_test

import (
	"context"
	"testing"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestCreateJob(t *testing.T) {
	ctx := as("u-rec", "rita", domain.RoleRecruiter)

	t.Run("Should attach the recruiter profile and activate the job", func(t *testing.T) {
		jobs, recruiters := new(MockJobRepo), new(MockRecruiterRepo)
		uc := usecase.NewJobUsecase(jobs, recruiters)
		recruiters.On("GetByUserID", mock.Anything, "u-rec").Return(&domain.RecruiterProfile{ID: "r1", CompanyName: "Acme"}, nil)
		jobs.On("Create", mock.Anything, mock.Anything).Return(nil)

		job := &domain.Job{Title: "Backend Engineer", Description: "Go"}
		require.NoError(t, uc.CreateJob(ctx, job))

		assert.NotEmpty(t, job.ID)
		assert.Equal(t, "r1", job.RecruiterID)
		assert.Equal(t, "Acme", job.Company)
		assert.True(t, job.Active)
		assert.Equal(t, domain.EmploymentFullTime, job.EmploymentType)
	})

	t.Run("Should reject an inverted salary range", func(t *testing.T) {
		jobs, recruiters := new(MockJobRepo), new(MockRecruiterRepo)
		uc := usecase.NewJobUsecase(jobs, recruiters)
		recruiters.On("GetByUserID", mock.Anything, "u-rec").Return(&domain.RecruiterProfile{ID: "r1"}, nil)

		err := uc.CreateJob(ctx, &domain.Job{Title: "x", SalaryMin: floatPtr(200), SalaryMax: floatPtr(100)})

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Code)
		jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should require a recruiter profile", func(t *testing.T) {
		jobs, recruiters := new(MockJobRepo), new(MockRecruiterRepo)
		uc := usecase.NewJobUsecase(jobs, recruiters)
		recruiters.On("GetByUserID", mock.Anything, "u-rec").Return(nil, domain.ErrNotFound)

		err := uc.CreateJob(ctx, &domain.Job{Title: "x"})
		assert.ErrorIs(t, err, domain.ErrProfileRequired)
	})
}

func TestListJobs(t *testing.T) {
	jobs := new(MockJobRepo)
	uc := usecase.NewJobUsecase(jobs, new(MockRecruiterRepo))

	jobs.On("Search", mock.Anything, mock.MatchedBy(func(q domain.JobQuery) bool {
		return q.ActiveOnly && q.Size == 100 && q.SortBy == "createdAt" && q.SortDir == "desc"
	})).Return([]domain.Job{{ID: "j1"}}, int64(250), nil)

	page, err := uc.ListJobs(context.Background(), domain.JobQuery{Page: 1, Size: 500, SortBy: "dropTable", RecruiterID: "r1"})

	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, int64(250), page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
}

func TestListByRecruiterIncludesInactive(t *testing.T) {
	jobs := new(MockJobRepo)
	uc := usecase.NewJobUsecase(jobs, new(MockRecruiterRepo))
	jobs.On("Search", mock.Anything, mock.MatchedBy(func(q domain.JobQuery) bool {
		return !q.ActiveOnly && q.RecruiterID == "r1"
	})).Return(nil, int64(0), nil)

	page, err := uc.ListByRecruiter(context.Background(), "r1", domain.JobQuery{ActiveOnly: true})

	require.NoError(t, err)
	assert.NotNil(t, page.Jobs)
	assert.Empty(t, page.Jobs)
}

func TestJobOwnership(t *testing.T) {
	owner := as("u-rec", "rita", domain.RoleRecruiter)
	other := as("u-other", "otto", domain.RoleRecruiter)

	jobs, recruiters := new(MockJobRepo), new(MockRecruiterRepo)
	uc := usecase.NewJobUsecase(jobs, recruiters)
	jobs.On("GetByID", mock.Anything, "j1").Return(&domain.Job{ID: "j1", RecruiterID: "r1", Title: "Go", Active: true}, nil)
	recruiters.On("GetByUserID", mock.Anything, "u-rec").Return(&domain.RecruiterProfile{ID: "r1"}, nil)
	recruiters.On("GetByUserID", mock.Anything, "u-other").Return(&domain.RecruiterProfile{ID: "r2"}, nil)
	jobs.On("Update", mock.Anything, mock.Anything).Return(nil)
	jobs.On("Delete", mock.Anything, "j1").Return(nil)

	_, err := uc.ToggleActive(other, "j1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, uc.DeleteJob(other, "j1"), domain.ErrForbidden)

	job, err := uc.ToggleActive(owner, "j1")
	require.NoError(t, err)
	assert.False(t, job.Active)

	updated, err := uc.UpdateJob(owner, "j1", &domain.Job{Title: "Senior Go", Requirements: nil})
	require.NoError(t, err)
	assert.Equal(t, "Senior Go", updated.Title)
	assert.Equal(t, "r1", updated.RecruiterID)
	assert.NotNil(t, updated.Requirements)

	require.NoError(t, uc.DeleteJob(owner, "j1"))
}
