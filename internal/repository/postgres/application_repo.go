package postgres

import (
	"context"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

// Joined job title and candidate name are read-only list decorations.
const applicationSelect = `
		SELECT
			a.id, a.job_id, a.candidate_id, a.cover_letter, a.resume_url, a.status,
			a.review_notes, a.interview_notes, a.applied_at, a.reviewed_at,
			a.created_at, a.updated_at,
			j.title AS job_title,
			c.first_name || ' ' || c.last_name AS candidate_name
		FROM applications a
		LEFT JOIN jobs j ON a.job_id = j.id
		LEFT JOIN candidate_profiles c ON a.candidate_id = c.id`

// Create inserts a new application. The (candidate_id, job_id) unique
// constraint turns a concurrent duplicate into ErrDuplicateApplication.
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (id, job_id, candidate_id, cover_letter, resume_url, status,
			review_notes, interview_notes, applied_at, reviewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		app.ID,
		app.JobID,
		app.CandidateID,
		app.CoverLetter,
		app.ResumeURL,
		app.Status,
		app.ReviewNotes,
		app.InterviewNotes,
		app.AppliedAt,
		app.ReviewedAt,
		app.CreatedAt,
		app.UpdatedAt,
	)
	return mapError(err)
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	app, err := scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return app, nil
}

func (r *applicationRepo) ExistsByCandidateAndJob(ctx context.Context, candidateID, jobID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE candidate_id = $1 AND job_id = $2)`,
		candidateID, jobID,
	).Scan(&exists)
	return exists, err
}

func (r *applicationRepo) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error) {
	rows, err := r.db.Query(ctx, applicationSelect+` WHERE a.candidate_id = $1 ORDER BY a.applied_at DESC`, candidateID)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

func (r *applicationRepo) ListByJob(ctx context.Context, jobID string, limit, offset int) ([]domain.Application, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE job_id = $1`, jobID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		applicationSelect+` WHERE a.job_id = $1 ORDER BY a.applied_at DESC LIMIT $2 OFFSET $3`,
		jobID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	apps, err := collectApplications(rows)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// Update writes the mutable fields: status, notes, and review timestamp.
func (r *applicationRepo) Update(ctx context.Context, app *domain.Application) error {
	query := `
		UPDATE applications
		SET status = $2, review_notes = $3, interview_notes = $4, reviewed_at = $5, updated_at = $6
		WHERE id = $1`
	return affectedOne(r.db.Exec(ctx, query,
		app.ID, app.Status, app.ReviewNotes, app.InterviewNotes, app.ReviewedAt, app.UpdatedAt,
	))
}

func (r *applicationRepo) Delete(ctx context.Context, id string) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id))
}

func (r *applicationRepo) CountByStatus(ctx context.Context, jobID string) (map[domain.ApplicationStatus]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM applications WHERE job_id = $1 GROUP BY status`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ApplicationStatus]int64)
	for rows.Next() {
		var status domain.ApplicationStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var app domain.Application
	err := row.Scan(
		&app.ID, &app.JobID, &app.CandidateID, &app.CoverLetter, &app.ResumeURL, &app.Status,
		&app.ReviewNotes, &app.InterviewNotes, &app.AppliedAt, &app.ReviewedAt,
		&app.CreatedAt, &app.UpdatedAt,
		&app.JobTitle, &app.CandidateName,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func collectApplications(rows pgx.Rows) ([]domain.Application, error) {
	defer rows.Close()

	apps := []domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}
