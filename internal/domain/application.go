package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type ApplicationStatus string

// Application lifecycle: APPLIED → REVIEWING → SHORTLISTED → ACCEPTED,
// or REJECTED from any non-terminal state.
const (
	StatusApplied     ApplicationStatus = "APPLIED"
	StatusReviewing   ApplicationStatus = "REVIEWING"
	StatusShortlisted ApplicationStatus = "SHORTLISTED"
	StatusAccepted    ApplicationStatus = "ACCEPTED"
	StatusRejected    ApplicationStatus = "REJECTED"
)

var AllStatuses = []ApplicationStatus{
	StatusApplied,
	StatusReviewing,
	StatusShortlisted,
	StatusAccepted,
	StatusRejected,
}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	status := ApplicationStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllStatuses {
		if status == known {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s ApplicationStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// TransitionPolicy decides whether an application may move between two states.
type TransitionPolicy interface {
	Allow(from, to ApplicationStatus) error
}

// PermissivePolicy lets recruiters set any known status at any time.
type PermissivePolicy struct{}

func (PermissivePolicy) Allow(from, to ApplicationStatus) error {
	return nil
}

// StrictPolicy enforces the lifecycle diagram; terminal states are final.
type StrictPolicy struct{}

var strictTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:     {StatusApplied, StatusReviewing, StatusRejected},
	StatusReviewing:   {StatusReviewing, StatusShortlisted, StatusRejected},
	StatusShortlisted: {StatusShortlisted, StatusAccepted, StatusRejected},
}

func (StrictPolicy) Allow(from, to ApplicationStatus) error {
	for _, next := range strictTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

func NewTransitionPolicy(strict bool) TransitionPolicy {
	if strict {
		return StrictPolicy{}
	}
	return PermissivePolicy{}
}

// Application represents a job application from a candidate
type Application struct {
	ID             string            `json:"id"`
	JobID          string            `json:"jobId"`
	CandidateID    string            `json:"candidateId"`
	CoverLetter    string            `json:"coverLetter"`
	ResumeURL      *string           `json:"resumeUrl,omitempty"`
	Status         ApplicationStatus `json:"status"`
	ReviewNotes    *string           `json:"reviewNotes,omitempty"`
	InterviewNotes *string           `json:"interviewNotes,omitempty"`
	AppliedAt      time.Time         `json:"applicationDate"`
	ReviewedAt     *time.Time        `json:"reviewDate,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`

	// Joined data for list responses
	JobTitle      *string `json:"jobTitle,omitempty"`
	CandidateName *string `json:"candidateName,omitempty"`
}

type ApplyInput struct {
	JobID       string
	CoverLetter string
	ResumeURL   string
}

// ApplicationStats counts the applications of one job per status.
type ApplicationStats struct {
	Total       int64 `json:"total"`
	Applied     int64 `json:"applied"`
	Reviewing   int64 `json:"reviewing"`
	Shortlisted int64 `json:"shortlisted"`
	Rejected    int64 `json:"rejected"`
	Accepted    int64 `json:"accepted"`
}

func NewApplicationStats(counts map[ApplicationStatus]int64) *ApplicationStats {
	stats := &ApplicationStats{
		Applied:     counts[StatusApplied],
		Reviewing:   counts[StatusReviewing],
		Shortlisted: counts[StatusShortlisted],
		Rejected:    counts[StatusRejected],
		Accepted:    counts[StatusAccepted],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats
}

// ApplicationRepository defines data access methods for applications
type ApplicationRepository interface {
	// Create returns ErrConflict when the (candidate, job) pair already exists.
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id string) (*Application, error)
	ExistsByCandidateAndJob(ctx context.Context, candidateID, jobID string) (bool, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]Application, error)
	ListByJob(ctx context.Context, jobID string, limit, offset int) ([]Application, int64, error)
	Update(ctx context.Context, app *Application) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, jobID string) (map[ApplicationStatus]int64, error)
}

// ApplicationUsecase defines business logic for applications
type ApplicationUsecase interface {
	// Candidate operations
	Apply(ctx context.Context, in ApplyInput) (*Application, error)
	ListMine(ctx context.Context) ([]Application, error)
	Withdraw(ctx context.Context, id string) error

	// Shared
	GetByID(ctx context.Context, id string) (*Application, error)

	// Recruiter operations
	ListByCandidate(ctx context.Context, candidateID string) ([]Application, error)
	ListByJob(ctx context.Context, jobID string, page, size int) (*PaginatedResult[Application], error)
	UpdateStatus(ctx context.Context, id string, status string, reviewNotes *string) (*Application, error)
	AddReviewNotes(ctx context.Context, id, notes string) (*Application, error)
	AddInterviewNotes(ctx context.Context, id, notes string) (*Application, error)
	Stats(ctx context.Context, jobID string) (*ApplicationStats, error)
	ExportByJob(ctx context.Context, jobID string) ([]byte, error)
}
