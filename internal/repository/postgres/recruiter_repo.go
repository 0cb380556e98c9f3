package postgres

import (
	"context"
	"time"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type recruiterRepo struct {
	db *pgxpool.Pool
}

func NewRecruiterRepository(db *pgxpool.Pool) domain.RecruiterRepository {
	return &recruiterRepo{db: db}
}

const recruiterColumns = `id, user_id, first_name, last_name, company_name, position, phone,
	company_website, verified, created_at, updated_at`

func (r *recruiterRepo) Create(ctx context.Context, p *domain.RecruiterProfile) error {
	query := `INSERT INTO recruiter_profiles (` + recruiterColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.UserID, p.FirstName, p.LastName, p.CompanyName, p.Position, p.Phone,
		p.CompanyWebsite, p.Verified, p.CreatedAt, p.UpdatedAt,
	)
	return mapError(err)
}

func (r *recruiterRepo) GetByID(ctx context.Context, id string) (*domain.RecruiterProfile, error) {
	p, err := scanRecruiter(r.db.QueryRow(ctx, `SELECT `+recruiterColumns+` FROM recruiter_profiles WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *recruiterRepo) GetByUserID(ctx context.Context, userID string) (*domain.RecruiterProfile, error) {
	p, err := scanRecruiter(r.db.QueryRow(ctx, `SELECT `+recruiterColumns+` FROM recruiter_profiles WHERE user_id = $1`, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *recruiterRepo) List(ctx context.Context, limit, offset int) ([]domain.RecruiterProfile, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM recruiter_profiles`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+recruiterColumns+` FROM recruiter_profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := []domain.RecruiterProfile{}
	for rows.Next() {
		p, err := scanRecruiter(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, total, rows.Err()
}

func (r *recruiterRepo) Update(ctx context.Context, p *domain.RecruiterProfile) error {
	query := `
		UPDATE recruiter_profiles SET
			first_name = $2, last_name = $3, company_name = $4, position = $5, phone = $6,
			company_website = $7, updated_at = $8
		WHERE id = $1`
	return affectedOne(r.db.Exec(ctx, query,
		p.ID, p.FirstName, p.LastName, p.CompanyName, p.Position, p.Phone, p.CompanyWebsite, p.UpdatedAt,
	))
}

func (r *recruiterRepo) SetVerified(ctx context.Context, id string, verified bool, at time.Time) error {
	return affectedOne(r.db.Exec(ctx,
		`UPDATE recruiter_profiles SET verified = $2, updated_at = $3 WHERE id = $1`, id, verified, at))
}

func (r *recruiterRepo) Delete(ctx context.Context, id string) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM recruiter_profiles WHERE id = $1`, id))
}

func scanRecruiter(row pgx.Row) (*domain.RecruiterProfile, error) {
	var p domain.RecruiterProfile
	err := row.Scan(
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.CompanyName, &p.Position, &p.Phone,
		&p.CompanyWebsite, &p.Verified, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
