package usecase_test

import (
	"bytes"
	"fmt"
	"testing"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type applicationFixture struct {
	apps       *MockApplicationRepo
	jobs       *MockJobRepo
	candidates *MockCandidateRepo
	recruiters *MockRecruiterRepo
	uc         domain.ApplicationUsecase
}

func newApplicationFixture(policy domain.TransitionPolicy) *applicationFixture {
	f := &applicationFixture{
		apps:       new(MockApplicationRepo),
		jobs:       new(MockJobRepo),
		candidates: new(MockCandidateRepo),
		recruiters: new(MockRecruiterRepo),
	}
	f.uc = usecase.NewApplicationUsecase(f.apps, f.jobs, f.candidates, f.recruiters, policy)
	return f
}

var (
	activeJob   = &domain.Job{ID: "j1", RecruiterID: "r1", Title: "Go Engineer", Active: true}
	candidateC1 = &domain.CandidateProfile{ID: "c1", UserID: "u-cand"}
	recruiterR1 = &domain.RecruiterProfile{ID: "r1", UserID: "u-rec"}
)

func TestApply(t *testing.T) {
	ctx := as("u-cand", "carol", domain.RoleCandidate)

	t.Run("Should create an APPLIED application and reject the second attempt", func(t *testing.T) {
		f := newApplicationFixture(nil)
		f.candidates.On("GetByUserID", mock.Anything, "u-cand").Return(candidateC1, nil)
		f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)
		f.apps.On("ExistsByCandidateAndJob", mock.Anything, "c1", "j1").Return(false, nil).Once()
		f.apps.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		app, err := f.uc.Apply(ctx, domain.ApplyInput{JobID: "j1", CoverLetter: "hello"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApplied, app.Status)
		assert.Equal(t, "c1", app.CandidateID)
		assert.False(t, app.AppliedAt.IsZero())
		assert.Nil(t, app.ReviewedAt)

		f.apps.On("ExistsByCandidateAndJob", mock.Anything, "c1", "j1").Return(true, nil).Once()

		_, err = f.uc.Apply(ctx, domain.ApplyInput{JobID: "j1", CoverLetter: "again"})
		assert.ErrorIs(t, err, domain.ErrDuplicateApplication)
		f.apps.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("Should map a unique index violation to the duplicate error", func(t *testing.T) {
		f := newApplicationFixture(nil)
		f.candidates.On("GetByUserID", mock.Anything, "u-cand").Return(candidateC1, nil)
		f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)
		f.apps.On("ExistsByCandidateAndJob", mock.Anything, "c1", "j1").Return(false, nil)
		f.apps.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

		_, err := f.uc.Apply(ctx, domain.ApplyInput{JobID: "j1"})
		assert.ErrorIs(t, err, domain.ErrDuplicateApplication)
	})

	t.Run("Should require a candidate profile", func(t *testing.T) {
		f := newApplicationFixture(nil)
		f.candidates.On("GetByUserID", mock.Anything, "u-cand").Return(nil, domain.ErrNotFound)

		_, err := f.uc.Apply(ctx, domain.ApplyInput{JobID: "j1"})
		assert.ErrorIs(t, err, domain.ErrProfileRequired)
	})

	t.Run("Should refuse inactive and unknown jobs", func(t *testing.T) {
		f := newApplicationFixture(nil)
		f.candidates.On("GetByUserID", mock.Anything, "u-cand").Return(candidateC1, nil)
		f.jobs.On("GetByID", mock.Anything, "closed").Return(&domain.Job{ID: "closed", Active: false}, nil)
		f.jobs.On("GetByID", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

		_, err := f.uc.Apply(ctx, domain.ApplyInput{JobID: "closed"})
		assert.ErrorIs(t, err, domain.ErrJobInactive)

		_, err = f.uc.Apply(ctx, domain.ApplyInput{JobID: "ghost"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		f.apps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should fall back to the profile resume", func(t *testing.T) {
		resume := "resumes/c2/cv.pdf"
		f := newApplicationFixture(nil)
		f.candidates.On("GetByUserID", mock.Anything, "u-cand").Return(&domain.CandidateProfile{ID: "c2", ResumeURL: &resume}, nil)
		f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)
		f.apps.On("ExistsByCandidateAndJob", mock.Anything, "c2", "j1").Return(false, nil)
		f.apps.On("Create", mock.Anything, mock.Anything).Return(nil)

		app, err := f.uc.Apply(ctx, domain.ApplyInput{JobID: "j1"})
		require.NoError(t, err)
		require.NotNil(t, app.ResumeURL)
		assert.Equal(t, resume, *app.ResumeURL)
	})
}

func TestUpdateStatus(t *testing.T) {
	recruiterCtx := as("u-rec", "rita", domain.RoleRecruiter)

	t.Run("Should set status and review date", func(t *testing.T) {
		f := newApplicationFixture(nil)
		f.apps.On("GetByID", mock.Anything, "a1").Return(&domain.Application{ID: "a1", JobID: "j1", Status: domain.StatusApplied}, nil)
		f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)
		f.recruiters.On("GetByUserID", mock.Anything, "u-rec").Return(recruiterR1, nil)
		f.apps.On("Update", mock.Anything, mock.Anything).Return(nil)

		notes := "not a fit"
		app, err := f.uc.UpdateStatus(recruiterCtx, "a1", "rejected", &notes)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, app.Status)
		require.NotNil(t, app.ReviewedAt)
		assert.Equal(t, "not a fit", *app.ReviewNotes)
	})

	t.Run("Should keep existing notes when none are given", func(t *testing.T) {
		existing := "first pass"
		f := newApplicationFixture(nil)
		f.apps.On("GetByID", mock.Anything, "a1").Return(&domain.Application{ID: "a1", JobID: "j1", Status: domain.StatusApplied, ReviewNotes: &existing}, nil)
		f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)
		f.recruiters.On("GetByUserID", mock.Anything, "u-rec").Return(recruiterR1, nil)
		f.apps.On("Update", mock.Anything, mock.Anything).Return(nil)

		app, err := f.uc.UpdateStatus(recruiterCtx, "a1", "REVIEWING", nil)

		require.NoError(t, err)
		assert.Equal(t, "first pass", *app.ReviewNotes)
	})

	t.Run("Should return not found for an unknown application", func(t *testing.T) {
		f := newApplicationFixture(nil)
		f.apps.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

		_, err := f.uc.UpdateStatus(recruiterCtx, "missing", "REVIEWING", nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Should reject unknown statuses before touching the store", func(t *testing.T) {
		f := newApplicationFixture(nil)

		_, err := f.uc.UpdateStatus(recruiterCtx, "a1", "HIRED", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
		f.apps.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Should forbid recruiters who do not own the job", func(t *testing.T) {
		f := newApplicationFixture(nil)
		f.apps.On("GetByID", mock.Anything, "a1").Return(&domain.Application{ID: "a1", JobID: "j1", Status: domain.StatusApplied}, nil)
		f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)
		f.recruiters.On("GetByUserID", mock.Anything, "u-other").Return(&domain.RecruiterProfile{ID: "r2"}, nil)

		_, err := f.uc.UpdateStatus(as("u-other", "otto", domain.RoleRecruiter), "a1", "REVIEWING", nil)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		f.apps.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Should let the strict policy block leaving a terminal state", func(t *testing.T) {
		f := newApplicationFixture(domain.StrictPolicy{})
		f.apps.On("GetByID", mock.Anything, "a1").Return(&domain.Application{ID: "a1", JobID: "j1", Status: domain.StatusRejected}, nil)
		f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)
		f.recruiters.On("GetByUserID", mock.Anything, "u-rec").Return(recruiterR1, nil)

		_, err := f.uc.UpdateStatus(recruiterCtx, "a1", "ACCEPTED", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Should let the permissive policy move anywhere", func(t *testing.T) {
		f := newApplicationFixture(nil)
		f.apps.On("GetByID", mock.Anything, "a1").Return(&domain.Application{ID: "a1", JobID: "j1", Status: domain.StatusRejected}, nil)
		f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)
		f.apps.On("Update", mock.Anything, mock.Anything).Return(nil)

		app, err := f.uc.UpdateStatus(as("root", "root", domain.RoleAdmin), "a1", "ACCEPTED", nil)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAccepted, app.Status)
	})
}

func TestNotes(t *testing.T) {
	ctx := as("u-rec", "rita", domain.RoleRecruiter)
	f := newApplicationFixture(nil)
	f.apps.On("GetByID", mock.Anything, "a1").Return(&domain.Application{ID: "a1", JobID: "j1", Status: domain.StatusReviewing}, nil)
	f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)
	f.recruiters.On("GetByUserID", mock.Anything, "u-rec").Return(recruiterR1, nil)
	f.apps.On("Update", mock.Anything, mock.Anything).Return(nil)

	app, err := f.uc.AddInterviewNotes(ctx, "a1", "strong on concurrency")
	require.NoError(t, err)
	assert.Equal(t, "strong on concurrency", *app.InterviewNotes)
	assert.Equal(t, domain.StatusReviewing, app.Status)
	assert.Nil(t, app.ReviewedAt)

	app, err = f.uc.AddReviewNotes(ctx, "a1", "schedule onsite")
	require.NoError(t, err)
	assert.Equal(t, "schedule onsite", *app.ReviewNotes)
	assert.Equal(t, domain.StatusReviewing, app.Status)
}

func TestWithdraw(t *testing.T) {
	ctx := as("u-cand", "carol", domain.RoleCandidate)

	t.Run("Should return not found without deleting anything", func(t *testing.T) {
		f := newApplicationFixture(nil)
		f.apps.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

		err := f.uc.Withdraw(ctx, "missing")

		assert.ErrorIs(t, err, domain.ErrNotFound)
		f.apps.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Should delete the caller's own application in any status", func(t *testing.T) {
		f := newApplicationFixture(nil)
		f.apps.On("GetByID", mock.Anything, "a1").Return(&domain.Application{ID: "a1", CandidateID: "c1", Status: domain.StatusShortlisted}, nil)
		f.candidates.On("GetByUserID", mock.Anything, "u-cand").Return(candidateC1, nil)
		f.apps.On("Delete", mock.Anything, "a1").Return(nil)

		require.NoError(t, f.uc.Withdraw(ctx, "a1"))
		f.apps.AssertExpectations(t)
	})

	t.Run("Should forbid withdrawing someone else's application", func(t *testing.T) {
		f := newApplicationFixture(nil)
		f.apps.On("GetByID", mock.Anything, "a2").Return(&domain.Application{ID: "a2", CandidateID: "c9"}, nil)
		f.candidates.On("GetByUserID", mock.Anything, "u-cand").Return(candidateC1, nil)

		err := f.uc.Withdraw(ctx, "a2")

		assert.ErrorIs(t, err, domain.ErrForbidden)
		f.apps.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestGetApplicationVisibility(t *testing.T) {
	app := &domain.Application{ID: "a1", JobID: "j1", CandidateID: "c1"}

	f := newApplicationFixture(nil)
	f.apps.On("GetByID", mock.Anything, "a1").Return(app, nil)
	f.candidates.On("GetByUserID", mock.Anything, "u-cand").Return(candidateC1, nil)
	f.candidates.On("GetByUserID", mock.Anything, "u-stranger").Return(&domain.CandidateProfile{ID: "c9"}, nil)
	f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)
	f.recruiters.On("GetByUserID", mock.Anything, "u-rec").Return(recruiterR1, nil)

	got, err := f.uc.GetByID(as("u-cand", "carol", domain.RoleCandidate), "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)

	_, err = f.uc.GetByID(as("u-rec", "rita", domain.RoleRecruiter), "a1")
	require.NoError(t, err)

	_, err = f.uc.GetByID(as("u-stranger", "sam", domain.RoleCandidate), "a1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestStatsAndListing(t *testing.T) {
	ctx := as("u-rec", "rita", domain.RoleRecruiter)
	f := newApplicationFixture(nil)
	f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)
	f.recruiters.On("GetByUserID", mock.Anything, "u-rec").Return(recruiterR1, nil)
	f.apps.On("CountByStatus", mock.Anything, "j1").Return(map[domain.ApplicationStatus]int64{
		domain.StatusApplied:  3,
		domain.StatusRejected: 1,
	}, nil)
	f.apps.On("ListByJob", mock.Anything, "j1", 10, 20).Return([]domain.Application{{ID: "a1"}}, int64(21), nil)

	stats, err := f.uc.Stats(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(3), stats.Applied)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Zero(t, stats.Accepted)

	page, err := f.uc.ListByJob(ctx, "j1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Data, 1)
}

func TestExportByJob(t *testing.T) {
	ctx := as("root", "root", domain.RoleAdmin)
	name := "Carol Candidate"
	f := newApplicationFixture(nil)
	f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)
	f.apps.On("ListByJob", mock.Anything, "j1", usecase.ExportBatchSize, 0).Return([]domain.Application{
		{ID: "a1", CandidateID: "c1", CandidateName: &name, Status: domain.StatusShortlisted},
	}, int64(1), nil)

	data, err := f.uc.ExportByJob(ctx, "j1")
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	header, err := book.GetCellValue("Applications", "C1")
	require.NoError(t, err)
	assert.Equal(t, "STATUS", header)

	candidate, _ := book.GetCellValue("Applications", "B2")
	status, _ := book.GetCellValue("Applications", "C2")
	assert.Equal(t, "Carol Candidate", candidate)
	assert.Equal(t, "SHORTLISTED", status)
}

func TestExportByJobReadsEveryBatch(t *testing.T) {
	ctx := as("root", "root", domain.RoleAdmin)
	f := newApplicationFixture(nil)
	f.jobs.On("GetByID", mock.Anything, "j1").Return(activeJob, nil)

	total := 2*usecase.ExportBatchSize + 3
	all := make([]domain.Application, total)
	for i := range all {
		all[i] = domain.Application{ID: fmt.Sprintf("a%d", i), CandidateID: "c", Status: domain.StatusApplied}
	}
	f.apps.On("ListByJob", mock.Anything, "j1", usecase.ExportBatchSize, 0).Return(all[:usecase.ExportBatchSize], int64(total), nil).Once()
	f.apps.On("ListByJob", mock.Anything, "j1", usecase.ExportBatchSize, usecase.ExportBatchSize).Return(all[usecase.ExportBatchSize:2*usecase.ExportBatchSize], int64(total), nil).Once()
	f.apps.On("ListByJob", mock.Anything, "j1", usecase.ExportBatchSize, 2*usecase.ExportBatchSize).Return(all[2*usecase.ExportBatchSize:], int64(total), nil).Once()

	data, err := f.uc.ExportByJob(ctx, "j1")
	require.NoError(t, err)
	f.apps.AssertExpectations(t)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Applications")
	require.NoError(t, err)
	assert.Len(t, rows, total+1)
	assert.Equal(t, fmt.Sprintf("a%d", total-1), rows[total][0])
}
