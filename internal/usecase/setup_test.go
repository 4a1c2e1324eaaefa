package usecase_test

import (
	"context"
	"sync"
	"testing"

	"go-recruitment-platform/internal/cache"
	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/internal/repository/document"
	"go-recruitment-platform/internal/repository/memory"
	"go-recruitment-platform/internal/usecase"
	"go-recruitment-platform/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// auditRecorder keeps every event in memory.
type auditRecorder struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *auditRecorder) Record(_ context.Context, e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *auditRecorder) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.events))
	for i, e := range a.events {
		out[i] = e.Action
	}
	return out
}

type fixture struct {
	store      *memory.DocumentStore
	cacheStore *cache.MemoryStore
	jobRepo    domain.JobRepository
	userRepo   domain.UserRepository
	users      domain.UserUsecase
	jobs       domain.JobUsecase
	apps       domain.ApplicationUsecase
	companies  domain.CompanyUsecase
	audit      *auditRecorder
}

var admin = domain.Viewer{ID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      memory.NewDocumentStore(),
		cacheStore: cache.NewMemoryStore(),
		audit:      &auditRecorder{},
	}
	cm := cache.NewManager(f.cacheStore, cache.Config{}, nil)
	f.jobRepo = document.NewJobRepository(f.store)
	f.userRepo = document.NewUserRepository(f.store)
	f.users = usecase.NewUserUsecase(f.userRepo, cm)
	f.jobs = usecase.NewJobUsecase(f.jobRepo, f.userRepo, cm, f.audit)
	f.apps = usecase.NewApplicationUsecase(f.jobRepo, f.userRepo, f.audit)
	f.companies = usecase.NewCompanyUsecase(f.userRepo, f.users, cm, f.audit)
	return f
}

func candidate(id string) domain.Viewer {
	return domain.Viewer{ID: id, Email: id + "@example.com", Role: domain.RoleCandidate}
}

// recruiter registers a company for id, has it approved and returns the
// promoted viewer together with the company id.
func (f *fixture) recruiter(t *testing.T, id, companyName string) (domain.Viewer, string) {
	t.Helper()
	ctx := context.Background()
	company, err := f.companies.Register(ctx, candidate(id), domain.CompanyInput{Name: companyName})
	require.NoError(t, err)
	_, err = f.companies.Verify(ctx, admin, company.ID, domain.VerifyApprove, "")
	require.NoError(t, err)
	return domain.Viewer{ID: id, Email: id + "@example.com", Role: domain.RoleRecruiter}, company.ID
}

func (f *fixture) draft(t *testing.T, owner domain.Viewer, title string) *domain.Job {
	t.Helper()
	job, err := f.jobs.CreateJob(context.Background(), owner, domain.JobInput{
		Title:      title,
		Salary:     domain.Salary{Min: 1000, Max: 2000, Currency: "USD"},
		Categories: []string{"it"},
		Keywords:   []string{"golang"},
		Workplace:  domain.Workplace{City: "Hanoi"},
		Vacancies:  2,
	})
	require.NoError(t, err)
	return job
}

func (f *fixture) published(t *testing.T, owner domain.Viewer, title string) *domain.Job {
	t.Helper()
	job := f.draft(t, owner, title)
	job, err := f.jobs.PublishJob(context.Background(), owner, job.ID)
	require.NoError(t, err)
	return job
}

func assertCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperror.As(err).Code, err.Error())
}

func jobIDs(jobs []domain.Job) []string {
	out := make([]string, len(jobs))
	for i := range jobs {
		out[i] = jobs[i].ID
	}
	return out
}
