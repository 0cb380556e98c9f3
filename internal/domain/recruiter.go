package domain

import (
	"context"
	"time"
)

type RecruiterProfile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	FirstName      string    `json:"firstName" validate:"required,max=50"`
	LastName       string    `json:"lastName" validate:"required,max=50"`
	CompanyName    string    `json:"companyName" validate:"required,max=100"`
	Position       *string   `json:"position,omitempty" validate:"omitempty,max=100"`
	Phone          *string   `json:"phone,omitempty" validate:"omitempty,max=20"`
	CompanyWebsite *string   `json:"companyWebsite,omitempty" validate:"omitempty,url,max=200"`
	Verified       bool      `json:"verified"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type RecruiterRepository interface {
	// Create returns ErrConflict when the user already has a profile.
	Create(ctx context.Context, profile *RecruiterProfile) error
	GetByID(ctx context.Context, id string) (*RecruiterProfile, error)
	GetByUserID(ctx context.Context, userID string) (*RecruiterProfile, error)
	List(ctx context.Context, limit, offset int) ([]RecruiterProfile, int64, error)
	Update(ctx context.Context, profile *RecruiterProfile) error
	SetVerified(ctx context.Context, id string, verified bool, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type RecruiterUsecase interface {
	CreateProfile(ctx context.Context, profile *RecruiterProfile) error
	GetProfile(ctx context.Context, id string) (*RecruiterProfile, error)
	GetMyProfile(ctx context.Context) (*RecruiterProfile, error)
	ListRecruiters(ctx context.Context, page, size int) (*PaginatedResult[RecruiterProfile], error)
	UpdateProfile(ctx context.Context, id string, profile *RecruiterProfile) (*RecruiterProfile, error)
	DeleteProfile(ctx context.Context, id string) error
	Verify(ctx context.Context, id string) (*RecruiterProfile, error)
}
