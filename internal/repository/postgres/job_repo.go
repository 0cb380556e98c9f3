package postgres

import (
	"context"
	"fmt"
	"strings"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

const jobColumns = `id, recruiter_id, title, description, company, location, category, employment_type,
	salary_min, salary_max, requirements, active, deadline, created_at, updated_at`

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.db.Exec(ctx, query,
		job.ID, job.RecruiterID, job.Title, job.Description, job.Company, job.Location,
		job.Category, job.EmploymentType, job.SalaryMin, job.SalaryMax, pq.Array(job.Requirements),
		job.Active, job.Deadline, job.CreatedAt, job.UpdatedAt,
	)
	return mapError(err)
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return job, nil
}

// Search pages through jobs. The query must already be normalized so SortBy
// is a known key of domain.JobSortFields.
func (r *jobRepo) Search(ctx context.Context, q domain.JobQuery) ([]domain.Job, int64, error) {
	where, args := jobFilter(q)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	column, ok := domain.JobSortFields[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if q.SortDir == "asc" {
		direction = "ASC"
	}

	args = append(args, q.Size, q.Page*q.Size)
	query := fmt.Sprintf(`SELECT %s FROM jobs%s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		jobColumns, where, column, direction, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, total, rows.Err()
}

func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs SET
			title = $2, description = $3, company = $4, location = $5, category = $6,
			employment_type = $7, salary_min = $8, salary_max = $9, requirements = $10,
			active = $11, deadline = $12, updated_at = $13
		WHERE id = $1`
	return affectedOne(r.db.Exec(ctx, query,
		job.ID, job.Title, job.Description, job.Company, job.Location, job.Category,
		job.EmploymentType, job.SalaryMin, job.SalaryMax, pq.Array(job.Requirements),
		job.Active, job.Deadline, job.UpdatedAt,
	))
}

func (r *jobRepo) Delete(ctx context.Context, id string) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id))
}

// jobFilter builds the WHERE clause shared by the count and page queries.
func jobFilter(q domain.JobQuery) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if q.ActiveOnly {
		conds = append(conds, "active = TRUE")
	}
	if q.RecruiterID != "" {
		add("recruiter_id = $%d", q.RecruiterID)
	}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		add("(title ILIKE $%[1]d OR description ILIKE $%[1]d OR company ILIKE $%[1]d)", "%"+escapeLike(kw)+"%")
	}
	if q.Category != "" {
		add("LOWER(category) = LOWER($%d)", q.Category)
	}
	if q.Location != "" {
		add("location ILIKE $%d", "%"+escapeLike(q.Location)+"%")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	err := row.Scan(
		&job.ID, &job.RecruiterID, &job.Title, &job.Description, &job.Company, &job.Location,
		&job.Category, &job.EmploymentType, &job.SalaryMin, &job.SalaryMax, pq.Array(&job.Requirements),
		&job.Active, &job.Deadline, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if job.Requirements == nil {
		job.Requirements = []string{}
	}
	return &job, nil
}
