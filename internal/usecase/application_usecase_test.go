package usecase_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"go-recruitment-platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestApply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r, _ := f.recruiter(t, "r1", "Acme")
	job := f.published(t, r, "Go Developer")
	draft := f.draft(t, r, "Hidden")

	t.Run("Only authenticated candidates may apply", func(t *testing.T) {
		_, err := f.apps.Apply(ctx, domain.Anonymous(), job.ID, domain.ApplyInput{})
		assertCode(t, err, http.StatusForbidden)
		_, err = f.apps.Apply(ctx, r, job.ID, domain.ApplyInput{})
		assertCode(t, err, http.StatusForbidden)
	})

	t.Run("Unpublished jobs cannot be applied to", func(t *testing.T) {
		_, err := f.apps.Apply(ctx, candidate("c1"), draft.ID, domain.ApplyInput{})
		assertCode(t, err, http.StatusNotFound)
	})

	t.Run("Application snapshots the candidate profile", func(t *testing.T) {
		c := candidate("c1")
		_, err := f.users.UpdateProfile(ctx, c, domain.UpdateProfileInput{
			FullName: "Nguyen Van A", Phone: "0901234567", CurrentPosition: "Developer", YearsOfExperience: 3,
		})
		require.NoError(t, err)

		app, err := f.apps.Apply(ctx, c, job.ID, domain.ApplyInput{
			CoverLetter: " Hello ",
			ResumeURL:   "https://cdn.example.com/cv/a.pdf",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, app.Status)
		require.Len(t, app.StatusHistory, 1)
		assert.Equal(t, domain.StatusPending, app.StatusHistory[0].Status)
		assert.Equal(t, "Hello", app.CoverLetter)
		assert.Equal(t, "Nguyen Van A", app.ApplicantSnapshot.FullName)
		assert.Equal(t, "https://cdn.example.com/cv/a.pdf", app.ApplicantSnapshot.ResumeURL)
		require.Len(t, app.Attachments, 1)
		assert.Equal(t, "resume", app.Attachments[0].Type)

		// Later profile edits do not reach the snapshot
		_, err = f.users.UpdateProfile(ctx, c, domain.UpdateProfileInput{FullName: "Renamed"})
		require.NoError(t, err)
		apps, err := f.apps.ListApplicants(ctx, r, job.ID)
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, "Nguyen Van A", apps[0].ApplicantSnapshot.FullName)
	})

	t.Run("Second application by the same candidate conflicts", func(t *testing.T) {
		_, err := f.apps.Apply(ctx, candidate("c1"), job.ID, domain.ApplyInput{})
		assertCode(t, err, http.StatusConflict)

		stored, err := f.jobRepo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Applicants, 1)
		assert.Equal(t, int64(1), stored.ApplicationCount)
	})

	t.Run("Concurrent applications by one candidate store a single record", func(t *testing.T) {
		target := f.published(t, r, "Race")
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = f.apps.Apply(ctx, candidate("c2"), target.ID, domain.ApplyInput{})
			}()
		}
		wg.Wait()

		stored, err := f.jobRepo.GetByID(ctx, target.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Applicants, 1)
		assert.Equal(t, int64(1), stored.ApplicationCount)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r, _ := f.recruiter(t, "r1", "Acme")
	other, _ := f.recruiter(t, "r2", "Globex")
	job := f.published(t, r, "Go Developer")
	app, err := f.apps.Apply(ctx, candidate("c1"), job.ID, domain.ApplyInput{})
	require.NoError(t, err)

	t.Run("Unknown status is rejected", func(t *testing.T) {
		_, err := f.apps.UpdateStatus(ctx, r, job.ID, app.ID, "Archived", "")
		assertCode(t, err, http.StatusBadRequest)
	})

	t.Run("Only the owner or an admin may change status", func(t *testing.T) {
		_, err := f.apps.UpdateStatus(ctx, other, job.ID, app.ID, domain.StatusScreening, "")
		assertCode(t, err, http.StatusForbidden)
		_, err = f.apps.UpdateStatus(ctx, candidate("c1"), job.ID, app.ID, domain.StatusHired, "")
		assertCode(t, err, http.StatusForbidden)
	})

	t.Run("Hidden jobs look missing to non-owners", func(t *testing.T) {
		hidden := f.draft(t, r, "Internal Role")
		tests := []struct {
			name        string
			actor       domain.Viewer
			jobID       string
			applicantID string
			code        int
		}{
			{"missing job", other, "no-such-job", app.ID, http.StatusNotFound},
			{"other recruiter's draft", other, hidden.ID, "bogus", http.StatusNotFound},
			{"other recruiter's draft with a real applicant id", other, hidden.ID, app.ID, http.StatusNotFound},
			{"candidate on a draft", candidate("c1"), hidden.ID, "bogus", http.StatusNotFound},
			{"unknown applicant on a visible job", other, job.ID, "bogus", http.StatusNotFound},
			{"owner's draft with unknown applicant", r, hidden.ID, "bogus", http.StatusNotFound},
			{"visible job and applicant but not the owner", other, job.ID, app.ID, http.StatusForbidden},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.apps.UpdateStatus(ctx, tt.actor, tt.jobID, tt.applicantID, domain.StatusScreening, "")
				assertCode(t, err, tt.code)
			})
		}
	})

	t.Run("Unknown applicant", func(t *testing.T) {
		_, err := f.apps.UpdateStatus(ctx, r, job.ID, "missing", domain.StatusScreening, "")
		assertCode(t, err, http.StatusNotFound)
		_, err = f.apps.UpdateStatus(ctx, r, "", "missing", domain.StatusScreening, "")
		assertCode(t, err, http.StatusNotFound)
	})

	t.Run("Each change appends exactly one history entry", func(t *testing.T) {
		change, err := f.apps.UpdateStatus(ctx, r, job.ID, app.ID, domain.StatusScreening, " looks good ")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, change.Previous)
		assert.True(t, change.Recommended)
		assert.Equal(t, "looks good", change.Entry.Note)
		assert.Equal(t, "r1", change.Entry.ChangedBy)

		// Located through the applicant id alone
		change, err = f.apps.UpdateStatus(ctx, admin, "", app.ID, domain.StatusHired, "")
		require.NoError(t, err)
		assert.Equal(t, job.ID, change.JobID)
		assert.False(t, change.Recommended)

		apps, err := f.apps.ListApplicants(ctx, r, job.ID)
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, domain.StatusHired, apps[0].Status)
		require.Len(t, apps[0].StatusHistory, 3)
		assert.Equal(t, domain.StatusScreening, apps[0].StatusHistory[1].Status)
		assert.Equal(t, domain.StatusHired, apps[0].StatusHistory[2].Status)
	})

	t.Run("Terminal statuses can still be changed", func(t *testing.T) {
		change, err := f.apps.UpdateStatus(ctx, r, job.ID, app.ID, domain.StatusPending, "reopened")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusHired, change.Previous)
		assert.False(t, change.Recommended)
	})

	t.Run("Concurrent changes are all recorded", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.apps.UpdateStatus(ctx, r, job.ID, app.ID, domain.StatusInterview, "")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		apps, err := f.apps.ListApplicants(ctx, r, job.ID)
		require.NoError(t, err)
		assert.Len(t, apps[0].StatusHistory, 4+5)
	})

	assert.Contains(t, f.audit.actions(), domain.AuditApplicationStatus)
}

func TestListApplicantsAndMine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r, _ := f.recruiter(t, "r1", "Acme")
	other, _ := f.recruiter(t, "r2", "Globex")
	a := f.published(t, r, "A")
	b := f.published(t, r, "B")
	f.published(t, r, "C")

	for _, job := range []*domain.Job{a, b} {
		_, err := f.apps.Apply(ctx, candidate("c1"), job.ID, domain.ApplyInput{})
		require.NoError(t, err)
	}
	_, err := f.apps.Apply(ctx, candidate("c2"), a.ID, domain.ApplyInput{})
	require.NoError(t, err)

	t.Run("Non-owners cannot read applicants", func(t *testing.T) {
		_, err := f.apps.ListApplicants(ctx, other, a.ID)
		assertCode(t, err, http.StatusForbidden)
		_, err = f.apps.ListApplicants(ctx, candidate("c1"), a.ID)
		assertCode(t, err, http.StatusForbidden)
	})

	t.Run("Owner sees every applicant", func(t *testing.T) {
		apps, err := f.apps.ListApplicants(ctx, r, a.ID)
		require.NoError(t, err)
		assert.Len(t, apps, 2)
	})

	t.Run("Candidate sees only their own applications", func(t *testing.T) {
		mine, err := f.apps.ListMine(ctx, candidate("c1"), 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), mine.TotalCount)
		for _, m := range mine.Items {
			assert.Equal(t, "c1", m.Applicant.ApplicantID)
			assert.Equal(t, domain.StatusPending, m.Status)
			assert.Equal(t, "Acme", m.CompanySnapshot.Name)
		}

		_, err = f.apps.ListMine(ctx, domain.Anonymous(), 1, 10)
		assertCode(t, err, http.StatusUnauthorized)
	})
}

func TestExportApplicants(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r, _ := f.recruiter(t, "r1", "Acme")
	job := f.published(t, r, "Go Developer")

	c := candidate("c1")
	_, err := f.users.UpdateProfile(ctx, c, domain.UpdateProfileInput{FullName: "Tran Thi B"})
	require.NoError(t, err)
	_, err = f.apps.Apply(ctx, c, job.ID, domain.ApplyInput{})
	require.NoError(t, err)

	data, filename, err := f.apps.ExportApplicants(ctx, r, job.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "applicants_"+job.ID+"_"))
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	header, err := book.GetCellValue("Applicants", "A1")
	require.NoError(t, err)
	assert.Equal(t, "FULL NAME", header)
	name, err := book.GetCellValue("Applicants", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Tran Thi B", name)
	status, err := book.GetCellValue("Applicants", "G2")
	require.NoError(t, err)
	assert.Equal(t, "Pending", status)

	_, _, err = f.apps.ExportApplicants(ctx, candidate("c1"), job.ID)
	assertCode(t, err, http.StatusForbidden)
}

// Recruiter drafts, publishes, receives one application and moves it along.
func TestRecruitmentFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r, _ := f.recruiter(t, "r1", "Acme")
	c := candidate("c1")

	job := f.draft(t, r, "Go Developer")

	public, err := f.jobs.ListJobs(ctx, domain.Anonymous(), 1, 10)
	require.NoError(t, err)
	assert.NotContains(t, jobIDs(public.Items), job.ID)

	own, err := f.jobs.ListJobs(ctx, r, 1, 10)
	require.NoError(t, err)
	assert.Contains(t, jobIDs(own.Items), job.ID)

	_, err = f.jobs.PublishJob(ctx, r, job.ID)
	require.NoError(t, err)

	public, err = f.jobs.ListJobs(ctx, domain.Anonymous(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, []string{job.ID}, jobIDs(public.Items))
	assert.Equal(t, domain.JobStatusPublished, public.Items[0].Status)

	app, err := f.apps.Apply(ctx, c, job.ID, domain.ApplyInput{})
	require.NoError(t, err)
	_, err = f.apps.Apply(ctx, c, job.ID, domain.ApplyInput{})
	assertCode(t, err, http.StatusConflict)

	_, err = f.apps.UpdateStatus(ctx, r, job.ID, app.ID, domain.StatusInterview, "moved to interview")
	require.NoError(t, err)

	apps, err := f.apps.ListApplicants(ctx, r, job.ID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	history := apps[0].StatusHistory
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusPending, history[0].Status)
	assert.Equal(t, domain.StatusInterview, history[1].Status)
	assert.Equal(t, "moved to interview", history[1].Note)
}
