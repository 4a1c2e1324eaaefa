package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go-recruitment-platform/internal/cache"
	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/pkg/apperror"

	"github.com/google/uuid"
)

type jobUsecase struct {
	jobRepo  domain.JobRepository
	userRepo domain.UserRepository
	cache    *cache.Manager
	audit    domain.AuditLogger
}

func NewJobUsecase(jobRepo domain.JobRepository, userRepo domain.UserRepository, cm *cache.Manager, audit domain.AuditLogger) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:  jobRepo,
		userRepo: userRepo,
		cache:    cm,
		audit:    audit,
	}
}

func (u *jobUsecase) ListJobs(ctx context.Context, viewer domain.Viewer, page, pageSize int) (*domain.PaginatedResult[domain.Job], error) {
	page, pageSize = domain.NormalizePage(page, pageSize)
	scope := domain.ResolveScope(viewer)

	return cache.GetPage(ctx, u.cache, cache.FamilyJobs, scope, page, pageSize,
		func(ctx context.Context) (*domain.PaginatedResult[domain.Job], error) {
			return u.list(ctx, domain.JobListFilter(viewer), page, pageSize)
		})
}

func (u *jobUsecase) list(ctx context.Context, filter domain.Filter, page, pageSize int) (*domain.PaginatedResult[domain.Job], error) {
	jobs, total, err := u.jobRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, apperror.FromStore(err, "Job not found")
	}
	for i := range jobs {
		jobs[i] = jobs[i].Listing()
	}
	return domain.NewPaginatedResult(jobs, total, page, pageSize), nil
}

// load returns the job if the viewer may see it. Missing and invisible jobs
// are indistinguishable.
func (u *jobUsecase) load(ctx context.Context, viewer domain.Viewer, id string) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromStore(err, "Job not found")
	}
	if !domain.IsJobVisible(job, viewer) {
		return nil, apperror.NotFound("Job not found")
	}
	return job, nil
}

func (u *jobUsecase) GetJob(ctx context.Context, viewer domain.Viewer, id string) (*domain.Job, error) {
	job, err := u.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	// Best-effort view counter
	if err := u.jobRepo.IncrementViews(ctx, id); err != nil {
		slog.WarnContext(ctx, "Failed to increment job views", "job_id", id, "error", err)
	} else {
		job.Views++
	}

	listing := job.Listing()
	return &listing, nil
}

func (u *jobUsecase) CreateJob(ctx context.Context, viewer domain.Viewer, input domain.JobInput) (*domain.Job, error) {
	if !viewer.IsRecruiter() {
		return nil, apperror.Forbidden("Only recruiters can create jobs")
	}
	if err := validateJobInput(input); err != nil {
		return nil, err
	}

	owner, err := u.userRepo.GetByID(ctx, viewer.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Forbidden("Register a company before posting jobs")
		}
		return nil, apperror.FromStore(err, "User not found")
	}
	company := owner.Company
	if company == nil || !company.IsApproved() {
		return nil, apperror.Forbidden("Your company has not been approved yet")
	}
	if input.CompanyID != "" && input.CompanyID != company.ID {
		return nil, apperror.Forbidden("You can only post jobs for your own company")
	}

	ts := now()
	job := &domain.Job{
		ID:        uuid.NewString(),
		CompanyID: company.ID,
		CompanySnapshot: domain.CompanySnapshot{
			Name:    company.Name,
			LogoURL: company.LogoURL,
			Tier:    company.Tier,
		},
		Status:     domain.JobStatusDraft,
		CreatedBy:  viewer.ID,
		Applicants: []domain.Applicant{},
		CreatedAt:  ts,
	}
	applyJobInput(job, input, ts)

	if err := u.jobRepo.Create(ctx, job); err != nil {
		return nil, apperror.FromStore(err, "Job not found")
	}

	// A draft is only listed to its creator and to admins.
	u.cache.InvalidateAll(ctx, cache.FamilyJobs, domain.RecruiterScope(viewer.ID), domain.ScopeAdmin)
	record(ctx, u.audit, viewer, domain.AuditJobCreated, "job:"+job.ID, map[string]any{"company_id": job.CompanyID})

	listing := job.Listing()
	return &listing, nil
}

func (u *jobUsecase) UpdateJob(ctx context.Context, viewer domain.Viewer, id string, input domain.JobInput) (*domain.Job, error) {
	job, err := u.manageable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := validateJobInput(input); err != nil {
		return nil, err
	}

	applyJobInput(job, input, now())
	if err := u.jobRepo.Update(ctx, job); err != nil {
		return nil, apperror.FromStore(err, "Job not found")
	}

	u.invalidate(ctx, job, viewer)
	record(ctx, u.audit, viewer, domain.AuditJobUpdated, "job:"+job.ID, nil)

	listing := job.Listing()
	return &listing, nil
}

func (u *jobUsecase) DeleteJob(ctx context.Context, viewer domain.Viewer, id string) error {
	job, err := u.manageable(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := u.jobRepo.Delete(ctx, id); err != nil {
		return apperror.FromStore(err, "Job not found")
	}

	u.invalidate(ctx, job, viewer)
	record(ctx, u.audit, viewer, domain.AuditJobDeleted, "job:"+id, nil)
	return nil
}

func (u *jobUsecase) PublishJob(ctx context.Context, viewer domain.Viewer, id string) (*domain.Job, error) {
	return u.setStatus(ctx, viewer, id, domain.JobStatusPublished, domain.AuditJobPublished)
}

func (u *jobUsecase) UnpublishJob(ctx context.Context, viewer domain.Viewer, id string) (*domain.Job, error) {
	return u.setStatus(ctx, viewer, id, domain.JobStatusDraft, domain.AuditJobUnpublished)
}

func (u *jobUsecase) setStatus(ctx context.Context, viewer domain.Viewer, id string, status domain.JobStatus, action string) (*domain.Job, error) {
	job, err := u.manageable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := u.jobRepo.SetStatus(ctx, id, status); err != nil {
		return nil, apperror.FromStore(err, "Job not found")
	}
	job.Status = status
	job.UpdatedAt = now()

	u.invalidate(ctx, job, viewer)
	record(ctx, u.audit, viewer, action, "job:"+id, nil)

	listing := job.Listing()
	return &listing, nil
}

func (u *jobUsecase) SearchJobs(ctx context.Context, viewer domain.Viewer, query domain.JobSearch) (*domain.PaginatedResult[domain.Job], error) {
	page, pageSize := domain.NormalizePage(query.Page, query.PageSize)

	filter := domain.Filter{All: []domain.Cond{domain.Eq("status", string(domain.JobStatusPublished))}}
	if kw := strings.TrimSpace(query.Keyword); kw != "" {
		filter.Any = []domain.Cond{
			domain.Match("title", kw),
			domain.Match("keywords", kw),
		}
	}
	if city := strings.TrimSpace(query.City); city != "" {
		filter = filter.And(domain.Match("workplace.city", city))
	}
	if len(query.Categories) > 0 {
		filter = filter.And(domain.ContainsAny("categories", query.Categories))
	}
	return u.list(ctx, filter, page, pageSize)
}

func (u *jobUsecase) ListByCompany(ctx context.Context, viewer domain.Viewer, companyID string, page, pageSize int) (*domain.PaginatedResult[domain.Job], error) {
	page, pageSize = domain.NormalizePage(page, pageSize)

	filter := domain.Filter{All: []domain.Cond{domain.Eq("companyId", companyID)}}
	if !viewer.IsAdmin() {
		filter = filter.And(domain.Eq("status", string(domain.JobStatusPublished)))
	}
	return u.list(ctx, filter, page, pageSize)
}

// manageable loads a job the viewer may modify.
func (u *jobUsecase) manageable(ctx context.Context, viewer domain.Viewer, id string) (*domain.Job, error) {
	job, err := u.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanManageJob(job, viewer) {
		return nil, apperror.Forbidden("You do not have permission to modify this job")
	}
	return job, nil
}

// invalidate bumps every scope whose listing may contain the job.
func (u *jobUsecase) invalidate(ctx context.Context, job *domain.Job, actor domain.Viewer) {
	u.cache.InvalidateAll(ctx, cache.FamilyJobs,
		domain.ScopePublic,
		domain.ScopeAdmin,
		domain.RecruiterScope(job.CreatedBy),
		domain.ResolveScope(actor),
	)
}

func validateJobInput(input domain.JobInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperror.BadRequest("Title is required")
	}
	if input.Salary.Min < 0 || input.Salary.Max < 0 {
		return apperror.BadRequest("Salary cannot be negative")
	}
	if input.Salary.Max > 0 && input.Salary.Min > input.Salary.Max {
		return apperror.BadRequest("Minimum salary cannot be greater than maximum salary")
	}
	if input.Vacancies < 0 {
		return apperror.BadRequest("Vacancies cannot be negative")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return apperror.BadRequest("End date cannot be before start date")
	}
	return nil
}

// applyJobInput copies the editable fields. The company snapshot is left as
// it was at creation.
func applyJobInput(job *domain.Job, input domain.JobInput, ts time.Time) {
	job.Title = strings.TrimSpace(input.Title)
	job.Salary = input.Salary
	job.Experience = input.Experience
	job.Education = input.Education
	job.EmploymentType = input.EmploymentType
	job.WorkMode = input.WorkMode
	job.Skills = nonNil(input.Skills)
	job.Categories = nonNil(input.Categories)
	job.Keywords = nonNil(input.Keywords)
	job.JobDetails = input.JobDetails
	job.Requirements = input.Requirements
	job.Benefits = input.Benefits
	job.Workplace = input.Workplace
	job.Vacancies = input.Vacancies
	job.StartDate = input.StartDate
	job.EndDate = input.EndDate
	job.UpdatedAt = ts
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
