package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"go-recruitment-platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCompany(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("Validation", func(t *testing.T) {
		_, err := f.companies.Register(ctx, domain.Anonymous(), domain.CompanyInput{Name: "Acme"})
		assertCode(t, err, http.StatusUnauthorized)
		_, err = f.companies.Register(ctx, domain.Viewer{ID: "r9", Role: domain.RoleRecruiter}, domain.CompanyInput{Name: "Acme"})
		assertCode(t, err, http.StatusForbidden)
		_, err = f.companies.Register(ctx, candidate("c1"), domain.CompanyInput{Name: " "})
		assertCode(t, err, http.StatusBadRequest)
	})

	t.Run("New company awaits moderation", func(t *testing.T) {
		company, err := f.companies.Register(ctx, candidate("c1"), domain.CompanyInput{
			Name:     " Acme ",
			Location: domain.Location{City: "Hanoi"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Acme", company.Name)
		assert.True(t, company.IsPending())

		user, err := f.userRepo.GetByID(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, user.Company)
		assert.Equal(t, company.ID, user.Company.ID)
		assert.Equal(t, domain.RoleCandidate, user.Role)

		_, err = f.companies.Register(ctx, candidate("c1"), domain.CompanyInput{Name: "Again"})
		assertCode(t, err, http.StatusConflict)
	})
}

func TestPendingCompanies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ids := map[string]string{}
	for _, owner := range []string{"c1", "c2", "c3"} {
		company, err := f.companies.Register(ctx, candidate(owner), domain.CompanyInput{Name: "Company " + owner})
		require.NoError(t, err)
		ids[owner] = company.ID
	}

	pending := func() *domain.PaginatedResult[domain.CompanyWithOwner] {
		res, err := f.companies.ListPending(ctx, admin, 1, 10)
		require.NoError(t, err)
		return res
	}

	_, err := f.companies.ListPending(ctx, candidate("c1"), 1, 10)
	assertCode(t, err, http.StatusForbidden)

	first := pending()
	assert.Equal(t, int64(3), first.TotalCount)
	assert.NotEmpty(t, first.Items[0].OwnerEmail)

	t.Run("Approval promotes the owner and leaves the queue", func(t *testing.T) {
		result, err := f.companies.Verify(ctx, admin, ids["c1"], domain.VerifyApprove, "")
		require.NoError(t, err)
		assert.True(t, result.IsApproved())
		assert.NotNil(t, result.VerifiedAt)

		owner, err := f.userRepo.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleRecruiter, owner.Role)
		assert.True(t, owner.Company.IsApproved())
		assert.Equal(t, domain.RoleRecruiter, f.users.ResolveRole(ctx, "c1", domain.RoleCandidate))

		assert.Equal(t, first.TotalCount-1, pending().TotalCount)
	})

	t.Run("Rejection removes the company from its owner", func(t *testing.T) {
		result, err := f.companies.Verify(ctx, admin, ids["c2"], domain.VerifyReject, " incomplete documents ")
		require.NoError(t, err)
		assert.Equal(t, "incomplete documents", result.RejectionReason)

		owner, err := f.userRepo.GetByID(ctx, "c2")
		require.NoError(t, err)
		assert.Nil(t, owner.Company)
		assert.Equal(t, domain.RoleCandidate, owner.Role)

		_, err = f.companies.GetByID(ctx, admin, ids["c2"])
		assertCode(t, err, http.StatusNotFound)
		assert.Equal(t, int64(1), pending().TotalCount)

		// The owner may register again
		_, err = f.companies.Register(ctx, candidate("c2"), domain.CompanyInput{Name: "Second try"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), pending().TotalCount)
	})

	t.Run("Verifying twice conflicts", func(t *testing.T) {
		_, err := f.companies.Verify(ctx, admin, ids["c1"], domain.VerifyApprove, "")
		assertCode(t, err, http.StatusConflict)
	})

	t.Run("Verify input", func(t *testing.T) {
		_, err := f.companies.Verify(ctx, candidate("c9"), ids["c3"], domain.VerifyApprove, "")
		assertCode(t, err, http.StatusForbidden)
		_, err = f.companies.Verify(ctx, admin, ids["c3"], "suspend", "")
		assertCode(t, err, http.StatusBadRequest)
		_, err = f.companies.Verify(ctx, admin, "missing", domain.VerifyApprove, "")
		assertCode(t, err, http.StatusNotFound)
	})

	assert.Contains(t, f.audit.actions(), domain.AuditCompanyApproved)
	assert.Contains(t, f.audit.actions(), domain.AuditCompanyRejected)
}

func TestCompanyReadAndWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	approvedOwner, approvedID := f.recruiter(t, "r1", "Acme")
	pending, err := f.companies.Register(ctx, candidate("c1"), domain.CompanyInput{Name: "Pending Co"})
	require.NoError(t, err)

	t.Run("Pending companies are visible only to owner and admin", func(t *testing.T) {
		_, err := f.companies.GetByID(ctx, domain.Anonymous(), pending.ID)
		assertCode(t, err, http.StatusNotFound)
		_, err = f.companies.GetByID(ctx, candidate("c1"), pending.ID)
		require.NoError(t, err)
		_, err = f.companies.GetByID(ctx, admin, pending.ID)
		require.NoError(t, err)

		got, err := f.companies.GetByID(ctx, domain.Anonymous(), approvedID)
		require.NoError(t, err)
		assert.Equal(t, "Acme", got.Name)
	})

	t.Run("List shows approved companies to the public", func(t *testing.T) {
		res, err := f.companies.List(ctx, domain.Anonymous(), nil, 1, 10)
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, approvedID, res.Items[0].ID)

		unverified := false
		res, err = f.companies.List(ctx, admin, &unverified, 1, 10)
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, pending.ID, res.Items[0].ID)

		res, err = f.companies.List(ctx, admin, nil, 1, 10)
		require.NoError(t, err)
		assert.Len(t, res.Items, 2)
	})

	t.Run("Update is limited to the owner and admins", func(t *testing.T) {
		_, err := f.companies.Update(ctx, candidate("c1"), approvedID, domain.CompanyInput{Name: "Stolen"})
		assertCode(t, err, http.StatusForbidden)

		// Warm the entity cache, then make sure the update is visible
		_, err = f.companies.GetByID(ctx, domain.Anonymous(), approvedID)
		require.NoError(t, err)

		updated, err := f.companies.Update(ctx, approvedOwner, approvedID, domain.CompanyInput{
			Website:    "https://acme.example.com",
			CoreValues: []string{"speed"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Acme", updated.Name)
		assert.Equal(t, "https://acme.example.com", updated.Website)

		got, err := f.companies.GetByID(ctx, domain.Anonymous(), approvedID)
		require.NoError(t, err)
		assert.Equal(t, "https://acme.example.com", got.Website)
		assert.Equal(t, []string{"speed"}, got.CoreValues)
	})

	t.Run("Updating a pending company refreshes the moderation queue", func(t *testing.T) {
		before, err := f.companies.ListPending(ctx, admin, 1, 10)
		require.NoError(t, err)
		require.Len(t, before.Items, 1)

		_, err = f.companies.Update(ctx, candidate("c1"), pending.ID, domain.CompanyInput{Name: "Pending Renamed"})
		require.NoError(t, err)

		after, err := f.companies.ListPending(ctx, admin, 1, 10)
		require.NoError(t, err)
		require.Len(t, after.Items, 1)
		assert.Equal(t, "Pending Renamed", after.Items[0].Name)
	})

	t.Run("Delete is admin only", func(t *testing.T) {
		assertCode(t, f.companies.Delete(ctx, approvedOwner, approvedID), http.StatusForbidden)
		require.NoError(t, f.companies.Delete(ctx, admin, pending.ID))

		_, err := f.companies.GetByID(ctx, admin, pending.ID)
		assertCode(t, err, http.StatusNotFound)

		queue, err := f.companies.ListPending(ctx, admin, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, queue.Items)
	})
}
