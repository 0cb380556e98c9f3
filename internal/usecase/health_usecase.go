package usecase

import (
	"context"
	"time"
)

const (
	healthUp            = "up"
	healthDown          = "down"
	healthNotConfigured = "not_configured"
)

// Pinger is satisfied by the database pool and the redis adapter.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthUsecase interface {
	// Check reports per-dependency state; ok is false when the database is down.
	Check(ctx context.Context) (status map[string]string, ok bool)
}

type healthUsecase struct {
	db    Pinger
	redis Pinger
}

// NewHealthUsecase accepts a nil redis pinger when redis is not configured.
func NewHealthUsecase(db, redis Pinger) HealthUsecase {
	return &healthUsecase{db: db, redis: redis}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{
		"database": healthUp,
		"redis":    healthNotConfigured,
	}
	ok := true

	if u.db == nil || u.db.Ping(ctx) != nil {
		status["database"] = healthDown
		ok = false
	}
	if u.redis != nil {
		status["redis"] = healthUp
		if err := u.redis.Ping(ctx); err != nil {
			status["redis"] = healthDown
		}
	}
	return status, ok
}
