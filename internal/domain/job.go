package domain

import (
	"context"
	"time"
)

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "FULL_TIME"
	EmploymentPartTime   EmploymentType = "PART_TIME"
	EmploymentContract   EmploymentType = "CONTRACT"
	EmploymentInternship EmploymentType = "INTERNSHIP"
	EmploymentRemote     EmploymentType = "REMOTE"
)

type Job struct {
	ID             string         `json:"id"`
	RecruiterID    string         `json:"recruiterId"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Company        string         `json:"company"`
	Location       string         `json:"location"`
	Category       string         `json:"category"`
	EmploymentType EmploymentType `json:"employmentType"`
	SalaryMin      *float64       `json:"salaryMin,omitempty"`
	SalaryMax      *float64       `json:"salaryMax,omitempty"`
	Requirements   []string       `json:"requirements"`
	Active         bool           `json:"active"`
	Deadline       *time.Time     `json:"deadline,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// JobSortFields maps accepted sortBy values to store columns.
var JobSortFields = map[string]string{
	"createdAt": "created_at",
	"title":     "title",
	"salaryMin": "salary_min",
	"salaryMax": "salary_max",
	"location":  "location",
	"company":   "company",
}

// JobQuery filters and pages job listings. Page is zero-based.
type JobQuery struct {
	Page        int
	Size        int
	SortBy      string
	SortDir     string
	Keyword     string
	Category    string
	Location    string
	RecruiterID string
	ActiveOnly  bool
}

// Normalize clamps paging and falls back to newest-first ordering.
func (q JobQuery) Normalize() JobQuery {
	q.Page, q.Size = NormalizePage(q.Page, q.Size)
	if _, ok := JobSortFields[q.SortBy]; !ok {
		q.SortBy = "createdAt"
	}
	if q.SortDir != "asc" {
		q.SortDir = "desc"
	}
	return q
}

// JobPage is the listing shape clients page through.
type JobPage struct {
	Jobs        []Job `json:"jobs"`
	CurrentPage int   `json:"currentPage"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id string) (*Job, error)
	Search(ctx context.Context, q JobQuery) ([]Job, int64, error)
	Update(ctx context.Context, job *Job) error
	Delete(ctx context.Context, id string) error
}

type JobUsecase interface {
	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, q JobQuery) (*JobPage, error)
	ListByRecruiter(ctx context.Context, recruiterID string, q JobQuery) (*JobPage, error)
	UpdateJob(ctx context.Context, id string, job *Job) (*Job, error)
	ToggleActive(ctx context.Context, id string) (*Job, error)
	DeleteJob(ctx context.Context, id string) error
}
