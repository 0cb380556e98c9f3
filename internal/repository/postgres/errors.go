package postgres

import (
	"errors"
	"fmt"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Unique constraints with a more specific domain error than ErrConflict.
var constraintErrors = map[string]error{
	"users_username_key":             domain.ErrUsernameTaken,
	"users_email_key":                domain.ErrEmailTaken,
	"applications_candidate_job_key": domain.ErrDuplicateApplication,
	"candidate_profiles_user_id_key": domain.ErrProfileExists,
	"recruiter_profiles_user_id_key": domain.ErrProfileExists,
}

// mapError translates driver errors into domain sentinels. Unique violations
// are wrapped so errors.Is matches both the specific error and ErrConflict.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if specific, ok := constraintErrors[pgErr.ConstraintName]; ok {
				return fmt.Errorf("%w: %w", specific, domain.ErrConflict)
			}
			return domain.ErrConflict
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: referenced record does not exist", domain.ErrNotFound)
		}
	}
	return err
}

// affectedOne reports ErrNotFound when an UPDATE or DELETE matched nothing.
func affectedOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
