package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/pkg/apperror"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type applicationUsecase struct {
	jobRepo  domain.JobRepository
	userRepo domain.UserRepository
	audit    domain.AuditLogger
}

func NewApplicationUsecase(jobRepo domain.JobRepository, userRepo domain.UserRepository, audit domain.AuditLogger) domain.ApplicationUsecase {
	return &applicationUsecase{
		jobRepo:  jobRepo,
		userRepo: userRepo,
		audit:    audit,
	}
}

func (u *applicationUsecase) Apply(ctx context.Context, viewer domain.Viewer, jobID string, input domain.ApplyInput) (*domain.Applicant, error) {
	if !viewer.IsAuthenticated() || viewer.Role != domain.RoleCandidate {
		return nil, apperror.Forbidden("Only candidates can apply to jobs")
	}

	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperror.FromStore(err, "Job not found")
	}
	if !domain.IsJobVisible(job, viewer) {
		return nil, apperror.NotFound("Job not found")
	}
	if job.HasApplied(viewer.ID) {
		return nil, apperror.Conflict("You have already applied to this job")
	}

	user, err := u.userRepo.GetByID(ctx, viewer.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.FromStore(err, "User not found")
	}

	ts := now()
	applicant := &domain.Applicant{
		ID:                uuid.NewString(),
		JobID:             jobID,
		ApplicantID:       viewer.ID,
		ApplicantSnapshot: snapshotOf(user, viewer, input.ResumeURL),
		CoverLetter:       strings.TrimSpace(input.CoverLetter),
		Attachments:       attachmentsOf(input),
		Status:            domain.StatusPending,
		StatusHistory: []domain.StatusHistory{{
			Status:    domain.StatusPending,
			ChangedAt: ts,
			ChangedBy: viewer.ID,
			Note:      "Application submitted",
		}},
		Interviews: []domain.Interview{},
		AppliedAt:  ts,
		UpdatedAt:  ts,
	}

	if err := u.jobRepo.AddApplicant(ctx, jobID, applicant); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("You have already applied to this job")
		}
		return nil, apperror.FromStore(err, "Job not found")
	}

	record(ctx, u.audit, viewer, domain.AuditApplicationCreated, "job:"+jobID, map[string]any{"applicant_id": applicant.ID, "email": viewer.Email})
	return applicant, nil
}

// snapshotOf copies the applicant's profile at the time of applying. The
// snapshot is never refreshed.
func snapshotOf(user *domain.User, viewer domain.Viewer, resumeURL string) domain.ApplicantSnapshot {
	snap := domain.ApplicantSnapshot{Email: viewer.Email}
	if user != nil {
		snap.Email = user.Email
		snap.Phone = user.Phone
		snap.FullName = user.Profile.FullName
		snap.Avatar = user.Profile.Avatar
		if cp := user.CandidateProfile; cp != nil {
			snap.ResumeURL = cp.ResumeURL
			snap.CurrentPosition = cp.CurrentPosition
			snap.YearsOfExperience = cp.YearsOfExperience
		}
	}
	if resumeURL != "" {
		snap.ResumeURL = resumeURL
	}
	return snap
}

func attachmentsOf(input domain.ApplyInput) []domain.Attachment {
	out := make([]domain.Attachment, 0, len(input.Attachments)+1)
	if input.ResumeURL != "" {
		out = append(out, domain.Attachment{Name: "CV", URL: input.ResumeURL, Type: "resume"})
	}
	return append(out, input.Attachments...)
}

// UpdateStatus records a status change for one applicant. Any recognized
// status is accepted from any current status. An empty jobID locates the job
// through the applicant id.
func (u *applicationUsecase) UpdateStatus(ctx context.Context, actor domain.Viewer, jobID, applicantID string, status domain.ApplicationStatus, note string) (*domain.StatusChange, error) {
	if !status.IsValid() {
		return nil, apperror.BadRequest(fmt.Sprintf("Invalid status %q", status))
	}

	var (
		job *domain.Job
		err error
	)
	if jobID == "" {
		job, err = u.jobRepo.FindByApplicant(ctx, applicantID)
		if err != nil {
			return nil, apperror.FromStore(err, "Application not found")
		}
	} else {
		job, err = u.jobRepo.GetByID(ctx, jobID)
		if err != nil {
			return nil, apperror.FromStore(err, "Job not found")
		}
	}

	// Hidden jobs and unknown applicants are reported before ownership so a
	// non-owner cannot tell a draft from a missing job.
	if !domain.IsJobVisible(job, actor) {
		if jobID == "" {
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.NotFound("Job not found")
	}
	applicant := job.FindApplicant(applicantID)
	if applicant == nil {
		return nil, apperror.NotFound("Application not found")
	}
	if !domain.CanManageJob(job, actor) {
		return nil, apperror.Forbidden("Only the job owner or an admin can change application status")
	}

	entry := domain.StatusHistory{
		Status:    status,
		ChangedAt: now(),
		ChangedBy: actor.ID,
		Note:      strings.TrimSpace(note),
	}
	if err := u.jobRepo.AppendStatus(ctx, job.ID, applicantID, entry); err != nil {
		return nil, apperror.FromStore(err, "Application not found")
	}

	change := &domain.StatusChange{
		JobID:       job.ID,
		ApplicantID: applicantID,
		Previous:    applicant.Status,
		Status:      status,
		Entry:       entry,
		Recommended: domain.IsRecommended(applicant.Status, status),
	}
	record(ctx, u.audit, actor, domain.AuditApplicationStatus, "job:"+job.ID, map[string]any{
		"applicant_id": applicantID,
		"from":         string(change.Previous),
		"to":           string(status),
		"recommended":  change.Recommended,
		"reopened":     change.Previous.IsTerminal() && change.Previous != status,
	})
	return change, nil
}

// applicantsOf loads a job's applicants for its owner or an admin.
func (u *applicationUsecase) applicantsOf(ctx context.Context, viewer domain.Viewer, jobID string) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperror.FromStore(err, "Job not found")
	}
	if !domain.IsJobVisible(job, viewer) {
		return nil, apperror.NotFound("Job not found")
	}
	if !domain.CanManageJob(job, viewer) {
		return nil, apperror.Forbidden("Only the job owner or an admin can view applicants")
	}
	if job.Applicants == nil {
		job.Applicants = []domain.Applicant{}
	}
	return job, nil
}

func (u *applicationUsecase) ListApplicants(ctx context.Context, viewer domain.Viewer, jobID string) ([]domain.Applicant, error) {
	job, err := u.applicantsOf(ctx, viewer, jobID)
	if err != nil {
		return nil, err
	}
	return job.Applicants, nil
}

func (u *applicationUsecase) ListMine(ctx context.Context, viewer domain.Viewer, page, pageSize int) (*domain.PaginatedResult[domain.MyApplication], error) {
	if !viewer.IsAuthenticated() {
		return nil, apperror.Unauthorized("Authentication required")
	}
	page, pageSize = domain.NormalizePage(page, pageSize)

	filter := domain.Filter{All: []domain.Cond{
		domain.ElemMatch("applicants", map[string]any{"applicantId": viewer.ID}),
	}}
	jobs, total, err := u.jobRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, apperror.FromStore(err, "Job not found")
	}

	items := make([]domain.MyApplication, 0, len(jobs))
	for i := range jobs {
		app := jobs[i].ApplicationOf(viewer.ID)
		if app == nil {
			continue
		}
		items = append(items, domain.MyApplication{
			JobID:           jobs[i].ID,
			JobTitle:        jobs[i].Title,
			CompanySnapshot: jobs[i].CompanySnapshot,
			Applicant:       *app,
			Status:          app.Status,
		})
	}
	return domain.NewPaginatedResult(items, total, page, pageSize), nil
}

var exportColumns = []string{
	"FULL NAME", "EMAIL", "PHONE", "CURRENT POSITION", "YEARS OF EXPERIENCE",
	"RESUME", "STATUS", "APPLIED AT", "LAST UPDATE",
}

// ExportApplicants renders the job's applicants as an xlsx workbook.
func (u *applicationUsecase) ExportApplicants(ctx context.Context, viewer domain.Viewer, jobID string) ([]byte, string, error) {
	job, err := u.applicantsOf(ctx, viewer, jobID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Applicants"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", apperror.Internal(err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}

	// Dark blue header with white text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, a := range job.Applicants {
		s := a.ApplicantSnapshot
		values := []any{
			s.FullName, s.Email, s.Phone, s.CurrentPosition, s.YearsOfExperience,
			s.ResumeURL, string(a.Status),
			a.AppliedAt.Format("2006-01-02 15:04"), a.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to write Excel file: %w", err))
	}

	filename := fmt.Sprintf("applicants_%s_%s.xlsx", jobID, now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}
