package domain

import (
	"context"
	"time"
)

type JobStatus string

const (
	JobStatusDraft     JobStatus = "draft"
	JobStatusPublished JobStatus = "published"
)

type Job struct {
	ID               string          `json:"id" bson:"_id"`
	CompanyID        string          `json:"companyId" bson:"companyId"`
	CompanySnapshot  CompanySnapshot `json:"companySnapshot" bson:"companySnapshot"`
	Title            string          `json:"title" bson:"title"`
	Salary           Salary          `json:"salary" bson:"salary"`
	Experience       string          `json:"experience,omitempty" bson:"experience,omitempty"`
	Education        string          `json:"education,omitempty" bson:"education,omitempty"`
	EmploymentType   string          `json:"employmentType,omitempty" bson:"employmentType,omitempty"`
	WorkMode         string          `json:"workMode,omitempty" bson:"workMode,omitempty"`
	Skills           []string        `json:"skills" bson:"skills"`
	Categories       []string        `json:"categories" bson:"categories"`
	Keywords         []string        `json:"keywords" bson:"keywords"`
	JobDetails       string          `json:"jobDetails" bson:"jobDetails"`
	Requirements     string          `json:"requirements,omitempty" bson:"requirements,omitempty"`
	Benefits         string          `json:"benefits,omitempty" bson:"benefits,omitempty"`
	Workplace        Workplace       `json:"workplace" bson:"workplace"`
	Vacancies        int             `json:"vacancies" bson:"vacancies"`
	StartDate        *time.Time      `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate          *time.Time      `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Status           JobStatus       `json:"status" bson:"status"`
	CreatedBy        string          `json:"createdBy" bson:"createdBy"`
	Views            int64           `json:"views" bson:"views"`
	ApplicationCount int64           `json:"applicationCount" bson:"applicationCount"`
	Applicants       []Applicant     `json:"applicants" bson:"applicants"`
	CreatedAt        time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// CompanySnapshot is copied from the company when the job is created and is
// never re-synced afterwards.
type CompanySnapshot struct {
	Name    string `json:"name" bson:"name"`
	LogoURL string `json:"logoUrl,omitempty" bson:"logoUrl,omitempty"`
	Tier    string `json:"tier,omitempty" bson:"tier,omitempty"`
}

type Salary struct {
	Min      float64 `json:"min" bson:"min"`
	Max      float64 `json:"max" bson:"max"`
	Currency string  `json:"currency,omitempty" bson:"currency,omitempty"`
	Type     string  `json:"type,omitempty" bson:"type,omitempty"`
}

type Workplace struct {
	Address  string `json:"address,omitempty" bson:"address,omitempty"`
	City     string `json:"city,omitempty" bson:"city,omitempty"`
	District string `json:"district,omitempty" bson:"district,omitempty"`
}

func (j *Job) IsPublished() bool {
	return j.Status == JobStatusPublished
}

// IsOwnedBy reports whether userID created the job.
func (j *Job) IsOwnedBy(userID string) bool {
	return userID != "" && j.CreatedBy == userID
}

// FindApplicant returns the applicant record with the given id.
func (j *Job) FindApplicant(applicantID string) *Applicant {
	for i := range j.Applicants {
		if j.Applicants[i].ID == applicantID {
			return &j.Applicants[i]
		}
	}
	return nil
}

// ApplicationOf returns the application the user holds on the job, if any.
func (j *Job) ApplicationOf(userID string) *Applicant {
	for i := range j.Applicants {
		if j.Applicants[i].ApplicantID == userID {
			return &j.Applicants[i]
		}
	}
	return nil
}

// HasApplied reports whether the user already holds an application on the job.
func (j *Job) HasApplied(userID string) bool {
	return j.ApplicationOf(userID) != nil
}

// Listing returns a copy of the job without its applicants. Listings and
// detail views never expose applicant data.
//
// Views and ApplicationCount are bumped without invalidating cached job
// pages, so a listing served from cache may lag behind them for up to the
// jobs page TTL (JOBS_CACHE_TTL, five minutes by default) or until the next
// job write. The detail view always reads them from the store.
func (j Job) Listing() Job {
	j.Applicants = nil
	return j
}

// JobInput carries the recruiter-editable fields of a job.
type JobInput struct {
	CompanyID      string
	Title          string
	Salary         Salary
	Experience     string
	Education      string
	EmploymentType string
	WorkMode       string
	Skills         []string
	Categories     []string
	Keywords       []string
	JobDetails     string
	Requirements   string
	Benefits       string
	Workplace      Workplace
	Vacancies      int
	StartDate      *time.Time
	EndDate        *time.Time
}

// JobSearch is the unbounded search query over published jobs.
type JobSearch struct {
	Keyword    string
	City       string
	Categories []string
	Page       int
	PageSize   int
}

type JobRepository interface {
	GetByID(ctx context.Context, id string) (*Job, error)
	// FindByApplicant returns the job holding the applicant record with the given id.
	FindByApplicant(ctx context.Context, applicantID string) (*Job, error)
	List(ctx context.Context, filter Filter, page, pageSize int) ([]Job, int64, error)
	Create(ctx context.Context, job *Job) error
	Update(ctx context.Context, job *Job) error
	SetStatus(ctx context.Context, id string, status JobStatus) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	AddApplicant(ctx context.Context, jobID string, applicant *Applicant) error
	AppendStatus(ctx context.Context, jobID, applicantID string, entry StatusHistory) error
}

type JobUsecase interface {
	ListJobs(ctx context.Context, viewer Viewer, page, pageSize int) (*PaginatedResult[Job], error)
	GetJob(ctx context.Context, viewer Viewer, id string) (*Job, error)
	CreateJob(ctx context.Context, viewer Viewer, input JobInput) (*Job, error)
	UpdateJob(ctx context.Context, viewer Viewer, id string, input JobInput) (*Job, error)
	DeleteJob(ctx context.Context, viewer Viewer, id string) error
	PublishJob(ctx context.Context, viewer Viewer, id string) (*Job, error)
	UnpublishJob(ctx context.Context, viewer Viewer, id string) (*Job, error)
	SearchJobs(ctx context.Context, viewer Viewer, query JobSearch) (*PaginatedResult[Job], error)
	ListByCompany(ctx context.Context, viewer Viewer, companyID string, page, pageSize int) (*PaginatedResult[Job], error)
}
