package document

import (
	"context"

	"go-recruitment-platform/internal/domain"
)

type jobRepo struct {
	store domain.DocumentStore
}

func NewJobRepository(store domain.DocumentStore) domain.JobRepository {
	return &jobRepo{store: store}
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := r.store.FindByID(ctx, domain.CollectionJobs, id, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) FindByApplicant(ctx context.Context, applicantID string) (*domain.Job, error) {
	var job domain.Job
	filter := domain.Filter{All: []domain.Cond{
		domain.ElemMatch("applicants", map[string]any{"id": applicantID}),
	}}
	if err := r.store.FindOne(ctx, domain.CollectionJobs, filter, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns one page of jobs, newest first.
func (r *jobRepo) List(ctx context.Context, filter domain.Filter, page, pageSize int) ([]domain.Job, int64, error) {
	total, err := r.store.Count(ctx, domain.CollectionJobs, filter)
	if err != nil {
		return nil, 0, err
	}

	jobs := []domain.Job{}
	err = r.store.FindPage(ctx, domain.CollectionJobs, domain.Query{
		Filter: filter,
		Sort:   []domain.SortField{domain.ParseSort("-createdAt")},
		Skip:   domain.Offset(page, pageSize),
		Limit:  pageSize,
	}, &jobs)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	if job.Applicants == nil {
		job.Applicants = []domain.Applicant{}
	}
	return r.store.Insert(ctx, domain.CollectionJobs, job.ID, job)
}

func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	return r.store.UpdateFields(ctx, domain.CollectionJobs, job.ID, map[string]any{
		"title":          job.Title,
		"salary":         job.Salary,
		"experience":     job.Experience,
		"education":      job.Education,
		"employmentType": job.EmploymentType,
		"workMode":       job.WorkMode,
		"skills":         job.Skills,
		"categories":     job.Categories,
		"keywords":       job.Keywords,
		"jobDetails":     job.JobDetails,
		"requirements":   job.Requirements,
		"benefits":       job.Benefits,
		"workplace":      job.Workplace,
		"vacancies":      job.Vacancies,
		"startDate":      job.StartDate,
		"endDate":        job.EndDate,
		"updatedAt":      job.UpdatedAt,
	})
}

func (r *jobRepo) SetStatus(ctx context.Context, id string, status domain.JobStatus) error {
	return r.store.UpdateFields(ctx, domain.CollectionJobs, id, map[string]any{
		"status":    string(status),
		"updatedAt": now(),
	})
}

func (r *jobRepo) Delete(ctx context.Context, id string) error {
	return r.store.SoftDelete(ctx, domain.CollectionJobs, id)
}

func (r *jobRepo) IncrementViews(ctx context.Context, id string) error {
	return r.store.Increment(ctx, domain.CollectionJobs, id, "views", 1)
}

// AddApplicant appends the applicant and bumps applicationCount in one
// update. A second application by the same user yields ErrDuplicate.
func (r *jobRepo) AddApplicant(ctx context.Context, jobID string, applicant *domain.Applicant) error {
	return r.store.PushToArray(ctx, domain.CollectionJobs, jobID, domain.ArrayPush{
		Array:       "applicants",
		Value:       applicant,
		UniqueBy:    "applicantId",
		UniqueValue: applicant.ApplicantID,
		Inc:         map[string]int64{"applicationCount": 1},
	})
}

// AppendStatus sets the applicant's current status and appends the history
// entry in the same atomic document update.
func (r *jobRepo) AppendStatus(ctx context.Context, jobID, applicantID string, entry domain.StatusHistory) error {
	return r.store.UpdateArrayElement(ctx, domain.CollectionJobs, jobID, domain.ArrayElementUpdate{
		Array:      "applicants",
		MatchField: "id",
		MatchValue: applicantID,
		Set: map[string]any{
			"status":    string(entry.Status),
			"updatedAt": entry.ChangedAt,
		},
		Push: map[string]any{
			"statusHistory": entry,
		},
	})
}
