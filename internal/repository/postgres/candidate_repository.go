package postgres

import (
	"context"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type candidateRepo struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepo{db: db}
}

const candidateColumns = `id, user_id, first_name, last_name, phone, location, headline, summary,
	skills, experience_years, education, resume_url, created_at, updated_at`

func (r *candidateRepo) Create(ctx context.Context, p *domain.CandidateProfile) error {
	query := `INSERT INTO candidate_profiles (` + candidateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.UserID, p.FirstName, p.LastName, p.Phone, p.Location, p.Headline, p.Summary,
		pq.Array(p.Skills), p.ExperienceYears, p.Education, p.ResumeURL, p.CreatedAt, p.UpdatedAt,
	)
	return mapError(err)
}

func (r *candidateRepo) GetByID(ctx context.Context, id string) (*domain.CandidateProfile, error) {
	return r.getOne(ctx, `SELECT `+candidateColumns+` FROM candidate_profiles WHERE id = $1`, id)
}

func (r *candidateRepo) GetByUserID(ctx context.Context, userID string) (*domain.CandidateProfile, error) {
	return r.getOne(ctx, `SELECT `+candidateColumns+` FROM candidate_profiles WHERE user_id = $1`, userID)
}

func (r *candidateRepo) List(ctx context.Context, limit, offset int) ([]domain.CandidateProfile, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM candidate_profiles`).Scan(&total); err != nil {
		return nil, 0, err
	}
	profiles, err := r.list(ctx,
		`SELECT `+candidateColumns+` FROM candidate_profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// SearchBySkill matches skills case-insensitively.
func (r *candidateRepo) SearchBySkill(ctx context.Context, skill string) ([]domain.CandidateProfile, error) {
	return r.list(ctx, `
		SELECT `+candidateColumns+` FROM candidate_profiles
		WHERE EXISTS (SELECT 1 FROM unnest(skills) s WHERE LOWER(s) = LOWER($1))
		ORDER BY experience_years DESC, created_at DESC`, skill)
}

func (r *candidateRepo) SearchByLocation(ctx context.Context, location string) ([]domain.CandidateProfile, error) {
	return r.list(ctx, `
		SELECT `+candidateColumns+` FROM candidate_profiles
		WHERE location ILIKE $1
		ORDER BY created_at DESC`, "%"+escapeLike(location)+"%")
}

func (r *candidateRepo) Update(ctx context.Context, p *domain.CandidateProfile) error {
	query := `
		UPDATE candidate_profiles SET
			first_name = $2, last_name = $3, phone = $4, location = $5, headline = $6, summary = $7,
			skills = $8, experience_years = $9, education = $10, resume_url = $11, updated_at = $12
		WHERE id = $1`
	return affectedOne(r.db.Exec(ctx, query,
		p.ID, p.FirstName, p.LastName, p.Phone, p.Location, p.Headline, p.Summary,
		pq.Array(p.Skills), p.ExperienceYears, p.Education, p.ResumeURL, p.UpdatedAt,
	))
}

func (r *candidateRepo) Delete(ctx context.Context, id string) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM candidate_profiles WHERE id = $1`, id))
}

func (r *candidateRepo) getOne(ctx context.Context, query string, arg any) (*domain.CandidateProfile, error) {
	p, err := scanCandidate(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *candidateRepo) list(ctx context.Context, query string, args ...any) ([]domain.CandidateProfile, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []domain.CandidateProfile{}
	for rows.Next() {
		p, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func scanCandidate(row pgx.Row) (*domain.CandidateProfile, error) {
	var p domain.CandidateProfile
	err := row.Scan(
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Phone, &p.Location, &p.Headline, &p.Summary,
		pq.Array(&p.Skills), &p.ExperienceYears, &p.Education, &p.ResumeURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return &p, nil
}
