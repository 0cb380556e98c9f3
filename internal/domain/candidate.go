package domain

import (
	"context"
	"time"
)

type CandidateProfile struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	FirstName       string    `json:"firstName" validate:"required,max=50"`
	LastName        string    `json:"lastName" validate:"required,max=50"`
	Phone           *string   `json:"phone,omitempty" validate:"omitempty,max=20"`
	Location        *string   `json:"location,omitempty" validate:"omitempty,max=100"`
	Headline        *string   `json:"headline,omitempty" validate:"omitempty,max=120"`
	Summary         *string   `json:"summary,omitempty" validate:"omitempty,max=2000"`
	Skills          []string  `json:"skills" validate:"max=50,dive,max=50"`
	ExperienceYears int       `json:"experienceYears" validate:"gte=0,lte=70"`
	Education       *string   `json:"education,omitempty" validate:"omitempty,max=200"`
	ResumeURL       *string   `json:"resumeUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (p *CandidateProfile) FullName() string {
	return p.FirstName + " " + p.LastName
}

type CandidateRepository interface {
	// Create returns ErrConflict when the user already has a profile.
	Create(ctx context.Context, profile *CandidateProfile) error
	GetByID(ctx context.Context, id string) (*CandidateProfile, error)
	GetByUserID(ctx context.Context, userID string) (*CandidateProfile, error)
	List(ctx context.Context, limit, offset int) ([]CandidateProfile, int64, error)
	SearchBySkill(ctx context.Context, skill string) ([]CandidateProfile, error)
	SearchByLocation(ctx context.Context, location string) ([]CandidateProfile, error)
	Update(ctx context.Context, profile *CandidateProfile) error
	Delete(ctx context.Context, id string) error
}

type CandidateUsecase interface {
	CreateProfile(ctx context.Context, profile *CandidateProfile) error
	GetProfile(ctx context.Context, id string) (*CandidateProfile, error)
	GetMyProfile(ctx context.Context) (*CandidateProfile, error)
	ListCandidates(ctx context.Context, page, size int) (*PaginatedResult[CandidateProfile], error)
	SearchBySkill(ctx context.Context, skill string) ([]CandidateProfile, error)
	SearchByLocation(ctx context.Context, location string) ([]CandidateProfile, error)
	UpdateProfile(ctx context.Context, id string, profile *CandidateProfile) (*CandidateProfile, error)
	DeleteProfile(ctx context.Context, id string) error
	UploadResume(ctx context.Context, filename string, data []byte) (*CandidateProfile, error)
}

// ResumeStore persists uploaded resume files and returns their reference.
type ResumeStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}
