package domain

import (
	"context"
	"time"
)

type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "Pending"
	StatusScreening ApplicationStatus = "Screening"
	StatusInterview ApplicationStatus = "Interview"
	StatusRejected  ApplicationStatus = "Rejected"
	StatusHired     ApplicationStatus = "Hired"
)

// ApplicationStatuses lists every recognized status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	StatusPending,
	StatusScreening,
	StatusInterview,
	StatusRejected,
	StatusHired,
}

// RecommendedTransitions is the documented review pipeline. It is advisory:
// status updates accept any recognized status from any current status.
var RecommendedTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:   {StatusScreening, StatusRejected},
	StatusScreening: {StatusInterview, StatusRejected},
	StatusInterview: {StatusHired, StatusRejected},
	StatusRejected:  {},
	StatusHired:     {},
}

func (s ApplicationStatus) IsValid() bool {
	for _, known := range ApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the pipeline documents no way out of s.
func (s ApplicationStatus) IsTerminal() bool {
	next, ok := RecommendedTransitions[s]
	return ok && len(next) == 0
}

// IsRecommended reports whether from -> to follows the documented pipeline.
func IsRecommended(from, to ApplicationStatus) bool {
	for _, next := range RecommendedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Applicant is embedded in its Job. Exactly one exists per (job, user) pair
// and it is never removed.
type Applicant struct {
	ID                string            `json:"id" bson:"id"`
	JobID             string            `json:"jobId" bson:"jobId"`
	ApplicantID       string            `json:"applicantId" bson:"applicantId"`
	ApplicantSnapshot ApplicantSnapshot `json:"applicantSnapshot" bson:"applicantSnapshot"`
	CoverLetter       string            `json:"coverLetter,omitempty" bson:"coverLetter,omitempty"`
	Attachments       []Attachment      `json:"attachments" bson:"attachments"`
	Status            ApplicationStatus `json:"status" bson:"status"`
	StatusHistory     []StatusHistory   `json:"statusHistory" bson:"statusHistory"`
	Screening         *Screening        `json:"screening,omitempty" bson:"screening,omitempty"`
	Interviews        []Interview       `json:"interviews" bson:"interviews"`
	AppliedAt         time.Time         `json:"appliedAt" bson:"appliedAt"`
	UpdatedAt         time.Time         `json:"updatedAt" bson:"updatedAt"`
}

type ApplicantSnapshot struct {
	FullName          string `json:"fullName" bson:"fullName"`
	Email             string `json:"email" bson:"email"`
	Phone             string `json:"phone,omitempty" bson:"phone,omitempty"`
	Avatar            string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	ResumeURL         string `json:"resumeUrl,omitempty" bson:"resumeUrl,omitempty"`
	CurrentPosition   string `json:"currentPosition,omitempty" bson:"currentPosition,omitempty"`
	YearsOfExperience int    `json:"yearsOfExperience" bson:"yearsOfExperience"`
}

type StatusHistory struct {
	Status    ApplicationStatus `json:"status" bson:"status"`
	ChangedAt time.Time         `json:"changedAt" bson:"changedAt"`
	ChangedBy string            `json:"changedBy" bson:"changedBy"`
	Note      string            `json:"note,omitempty" bson:"note,omitempty"`
}

type Screening struct {
	Score           float64  `json:"score" bson:"score"`
	MatchPercentage float64  `json:"matchPercentage" bson:"matchPercentage"`
	Strengths       []string `json:"strengths,omitempty" bson:"strengths,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty" bson:"weaknesses,omitempty"`
}

type Interview struct {
	ScheduledAt time.Time `json:"scheduledAt" bson:"scheduledAt"`
	Location    string    `json:"location,omitempty" bson:"location,omitempty"`
	Interviewer string    `json:"interviewer,omitempty" bson:"interviewer,omitempty"`
	Notes       string    `json:"notes,omitempty" bson:"notes,omitempty"`
}

type Attachment struct {
	Name string `json:"name" bson:"name"`
	URL  string `json:"url" bson:"url"`
	Type string `json:"type,omitempty" bson:"type,omitempty"`
}

type ApplyInput struct {
	CoverLetter string
	ResumeURL   string
	Attachments []Attachment
}

// StatusChange is the outcome of a successful status update.
type StatusChange struct {
	JobID       string            `json:"jobId"`
	ApplicantID string            `json:"applicantId"`
	Previous    ApplicationStatus `json:"previousStatus"`
	Status      ApplicationStatus `json:"status"`
	Entry       StatusHistory     `json:"entry"`
	Recommended bool              `json:"recommended"`
}

// MyApplication is a candidate's view of one of their applications.
type MyApplication struct {
	JobID           string            `json:"jobId"`
	JobTitle        string            `json:"jobTitle"`
	CompanySnapshot CompanySnapshot   `json:"companySnapshot"`
	Applicant       Applicant         `json:"applicant"`
	Status          ApplicationStatus `json:"status"`
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, viewer Viewer, jobID string, input ApplyInput) (*Applicant, error)
	UpdateStatus(ctx context.Context, actor Viewer, jobID, applicantID string, status ApplicationStatus, note string) (*StatusChange, error)
	ListApplicants(ctx context.Context, viewer Viewer, jobID string) ([]Applicant, error)
	ListMine(ctx context.Context, viewer Viewer, page, pageSize int) (*PaginatedResult[MyApplication], error)
	ExportApplicants(ctx context.Context, viewer Viewer, jobID string) ([]byte, string, error)
}
