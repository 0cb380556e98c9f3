package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// exportBatchSize is how many applications ExportByJob reads per query.
const exportBatchSize = 500

type applicationUsecase struct {
	applicationRepo domain.ApplicationRepository
	jobRepo         domain.JobRepository
	candidateRepo   domain.CandidateRepository
	recruiterRepo   domain.RecruiterRepository
	policy          domain.TransitionPolicy
	now             func() time.Time
}

// NewApplicationUsecase creates a new application usecase. A nil policy means
// recruiters may set any status at any time.
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	candidateRepo domain.CandidateRepository,
	recruiterRepo domain.RecruiterRepository,
	policy domain.TransitionPolicy,
) domain.ApplicationUsecase {
	if policy == nil {
		policy = domain.PermissivePolicy{}
	}
	return &applicationUsecase{
		applicationRepo: appRepo,
		jobRepo:         jobRepo,
		candidateRepo:   candidateRepo,
		recruiterRepo:   recruiterRepo,
		policy:          policy,
		now:             time.Now,
	}
}

// Apply creates an APPLIED application for the calling candidate.
func (uc *applicationUsecase) Apply(ctx context.Context, in domain.ApplyInput) (*domain.Application, error) {
	// 1. Resolve the caller's candidate profile
	candidate, err := uc.currentCandidate(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Validate job exists and is active
	job, err := uc.jobRepo.GetByID(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if !job.Active {
		return nil, domain.ErrJobInactive
	}

	// 3. Fast-path duplicate check; the unique index is the real guard
	exists, err := uc.applicationRepo.ExistsByCandidateAndJob(ctx, candidate.ID, job.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateApplication
	}

	// 4. Create application
	now := uc.now()
	app := &domain.Application{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		CandidateID: candidate.ID,
		CoverLetter: in.CoverLetter,
		Status:      domain.StatusApplied,
		AppliedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	resumeURL := strings.TrimSpace(in.ResumeURL)
	if resumeURL == "" && candidate.ResumeURL != nil {
		resumeURL = *candidate.ResumeURL
	}
	if resumeURL != "" {
		app.ResumeURL = &resumeURL
	}

	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrDuplicateApplication
		}
		return nil, err
	}

	logger.Log.Info("Application submitted", "application_id", app.ID, "job_id", job.ID, "candidate_id", candidate.ID)
	return app, nil
}

func (uc *applicationUsecase) ListMine(ctx context.Context) ([]domain.Application, error) {
	candidate, err := uc.currentCandidate(ctx)
	if err != nil {
		return nil, err
	}
	return uc.applicationRepo.ListByCandidate(ctx, candidate.ID)
}

// Withdraw hard-deletes one of the caller's own applications, whatever its status.
func (uc *applicationUsecase) Withdraw(ctx context.Context, id string) error {
	app, err := uc.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	candidate, err := uc.currentCandidate(ctx)
	if err != nil {
		return err
	}
	if app.CandidateID != candidate.ID {
		return fmt.Errorf("%w: application belongs to another candidate", domain.ErrForbidden)
	}

	return uc.applicationRepo.Delete(ctx, id)
}

// GetByID is visible to the applying candidate, the job's recruiter and admins.
func (uc *applicationUsecase) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	principal, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if principal.HasAnyRole(domain.RoleAdmin) {
		return app, nil
	}

	if principal.HasAnyRole(domain.RoleCandidate) {
		candidate, err := uc.candidateRepo.GetByUserID(ctx, principal.UserID)
		if err == nil && candidate.ID == app.CandidateID {
			return app, nil
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	if principal.HasAnyRole(domain.RoleRecruiter) {
		if err := uc.authorizeJob(ctx, app.JobID); err == nil {
			return app, nil
		} else if !errors.Is(err, domain.ErrForbidden) && !errors.Is(err, domain.ErrProfileRequired) {
			return nil, err
		}
	}

	return nil, domain.ErrForbidden
}

// ListByCandidate lists a candidate's applications restricted to the caller's jobs.
func (uc *applicationUsecase) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error) {
	apps, err := uc.applicationRepo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	principal, _ := domain.PrincipalFrom(ctx)
	if principal.HasAnyRole(domain.RoleAdmin) {
		return apps, nil
	}

	recruiter, err := uc.currentRecruiter(ctx)
	if err != nil {
		return nil, err
	}

	owned := make(map[string]bool)
	visible := make([]domain.Application, 0, len(apps))
	for _, app := range apps {
		mine, seen := owned[app.JobID]
		if !seen {
			job, err := uc.jobRepo.GetByID(ctx, app.JobID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			mine = err == nil && job.RecruiterID == recruiter.ID
			owned[app.JobID] = mine
		}
		if mine {
			visible = append(visible, app)
		}
	}
	return visible, nil
}

func (uc *applicationUsecase) ListByJob(ctx context.Context, jobID string, page, size int) (*domain.PaginatedResult[domain.Application], error) {
	if err := uc.authorizeJob(ctx, jobID); err != nil {
		return nil, err
	}

	page, size = domain.NormalizePage(page, size)
	apps, total, err := uc.applicationRepo.ListByJob(ctx, jobID, size, page*size)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(apps, total, page, size), nil
}

// UpdateStatus moves an application to a new status through the transition
// policy and stamps the review date. A nil reviewNotes keeps the existing notes.
func (uc *applicationUsecase) UpdateStatus(ctx context.Context, id string, status string, reviewNotes *string) (*domain.Application, error) {
	// 1. Parse target status
	next, err := domain.ParseApplicationStatus(status)
	if err != nil {
		return nil, err
	}

	// 2. Load application and check job ownership
	app, err := uc.loadForRecruiter(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. Consult transition policy
	if err := uc.policy.Allow(app.Status, next); err != nil {
		return nil, err
	}

	// 4. Apply
	now := uc.now()
	previous := app.Status
	app.Status = next
	app.ReviewedAt = &now
	app.UpdatedAt = now
	if reviewNotes != nil {
		app.ReviewNotes = reviewNotes
	}
	if err := uc.applicationRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	logger.Log.Info("Application status updated", "application_id", app.ID, "from", previous, "to", next)
	return app, nil
}

func (uc *applicationUsecase) AddReviewNotes(ctx context.Context, id, notes string) (*domain.Application, error) {
	app, err := uc.loadForRecruiter(ctx, id)
	if err != nil {
		return nil, err
	}
	app.ReviewNotes = &notes
	app.UpdatedAt = uc.now()
	if err := uc.applicationRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (uc *applicationUsecase) AddInterviewNotes(ctx context.Context, id, notes string) (*domain.Application, error) {
	app, err := uc.loadForRecruiter(ctx, id)
	if err != nil {
		return nil, err
	}
	app.InterviewNotes = &notes
	app.UpdatedAt = uc.now()
	if err := uc.applicationRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (uc *applicationUsecase) Stats(ctx context.Context, jobID string) (*domain.ApplicationStats, error) {
	if err := uc.authorizeJob(ctx, jobID); err != nil {
		return nil, err
	}
	counts, err := uc.applicationRepo.CountByStatus(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return domain.NewApplicationStats(counts), nil
}

// ExportByJob renders the applications of one job as an xlsx workbook.
func (uc *applicationUsecase) ExportByJob(ctx context.Context, jobID string) ([]byte, error) {
	if err := uc.authorizeJob(ctx, jobID); err != nil {
		return nil, err
	}
	var apps []domain.Application
	for offset := 0; ; offset += exportBatchSize {
		batch, total, err := uc.applicationRepo.ListByJob(ctx, jobID, exportBatchSize, offset)
		if err != nil {
			return nil, err
		}
		apps = append(apps, batch...)
		if len(batch) < exportBatchSize || int64(len(apps)) >= total {
			break
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Applications"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"APPLICATION ID", "CANDIDATE", "STATUS", "APPLIED AT", "REVIEWED AT", "RESUME", "REVIEW NOTES", "INTERVIEW NOTES"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, app := range apps {
		candidate := app.CandidateID
		if app.CandidateName != nil {
			candidate = *app.CandidateName
		}
		reviewed := ""
		if app.ReviewedAt != nil {
			reviewed = app.ReviewedAt.Format(time.RFC3339)
		}
		row := []any{
			app.ID,
			candidate,
			string(app.Status),
			app.AppliedAt.Format(time.RFC3339),
			reviewed,
			deref(app.ResumeURL),
			deref(app.ReviewNotes),
			deref(app.InterviewNotes),
		}
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (uc *applicationUsecase) loadForRecruiter(ctx context.Context, id string) (*domain.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.authorizeJob(ctx, app.JobID); err != nil {
		return nil, err
	}
	return app, nil
}

// authorizeJob passes for admins and for the recruiter who posted the job.
func (uc *applicationUsecase) authorizeJob(ctx context.Context, jobID string) error {
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	principal, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}
	if principal.HasAnyRole(domain.RoleAdmin) {
		return nil
	}

	recruiter, err := uc.currentRecruiter(ctx)
	if err != nil {
		return err
	}
	if job.RecruiterID != recruiter.ID {
		return fmt.Errorf("%w: job belongs to another recruiter", domain.ErrForbidden)
	}
	return nil
}

func (uc *applicationUsecase) currentCandidate(ctx context.Context) (*domain.CandidateProfile, error) {
	principal, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	candidate, err := uc.candidateRepo.GetByUserID(ctx, principal.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrProfileRequired
	}
	return candidate, err
}

func (uc *applicationUsecase) currentRecruiter(ctx context.Context) (*domain.RecruiterProfile, error) {
	return currentRecruiter(ctx, uc.recruiterRepo)
}
