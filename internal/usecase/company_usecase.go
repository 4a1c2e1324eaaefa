package usecase

import (
	"context"
	"strings"

	"go-recruitment-platform/internal/cache"
	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/pkg/apperror"

	"github.com/google/uuid"
)

type companyUsecase struct {
	userRepo domain.UserRepository
	users    domain.UserUsecase
	cache    *cache.Manager
	audit    domain.AuditLogger
}

func NewCompanyUsecase(userRepo domain.UserRepository, users domain.UserUsecase, cm *cache.Manager, audit domain.AuditLogger) domain.CompanyUsecase {
	return &companyUsecase{
		userRepo: userRepo,
		users:    users,
		cache:    cm,
		audit:    audit,
	}
}

func (u *companyUsecase) Register(ctx context.Context, viewer domain.Viewer, input domain.CompanyInput) (*domain.Company, error) {
	if !viewer.IsAuthenticated() {
		return nil, apperror.Unauthorized("Authentication required")
	}
	if viewer.Role != domain.RoleCandidate {
		return nil, apperror.Forbidden("Only candidate accounts can register a company")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperror.BadRequest("Company name is required")
	}

	user, err := u.users.Sync(ctx, viewer, viewer.Email)
	if err != nil {
		return nil, err
	}
	if user.Company != nil {
		return nil, apperror.Conflict("You have already registered a company")
	}

	ts := now()
	company := &domain.Company{
		ID:        uuid.NewString(),
		Verified:  false,
		IsActive:  false,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	applyCompanyInput(company, input)

	if err := u.userRepo.SetCompany(ctx, user.ID, company); err != nil {
		return nil, apperror.FromStore(err, "User not found")
	}

	u.cache.Invalidate(ctx, cache.FamilyPendingCompanies, domain.ScopeNone)
	u.cache.Forget(ctx, cache.ProfileKey(user.ID))
	record(ctx, u.audit, viewer, domain.AuditCompanyRegistered, "company:"+company.ID, map[string]any{"name": company.Name})
	return company, nil
}

func (u *companyUsecase) ListPending(ctx context.Context, viewer domain.Viewer, page, pageSize int) (*domain.PaginatedResult[domain.CompanyWithOwner], error) {
	if !viewer.IsAdmin() {
		return nil, apperror.Forbidden("Admin access required")
	}
	page, pageSize = domain.NormalizePage(page, pageSize)

	return cache.GetPage(ctx, u.cache, cache.FamilyPendingCompanies, domain.ScopeNone, page, pageSize,
		func(ctx context.Context) (*domain.PaginatedResult[domain.CompanyWithOwner], error) {
			return u.listCompanies(ctx, domain.PendingCompanyFilter(), page, pageSize)
		})
}

func (u *companyUsecase) listCompanies(ctx context.Context, filter domain.Filter, page, pageSize int) (*domain.PaginatedResult[domain.CompanyWithOwner], error) {
	users, total, err := u.userRepo.ListCompanies(ctx, filter, page, pageSize)
	if err != nil {
		return nil, apperror.FromStore(err, "Company not found")
	}
	items := make([]domain.CompanyWithOwner, 0, len(users))
	for i := range users {
		if users[i].Company == nil {
			continue
		}
		items = append(items, withOwner(&users[i]))
	}
	return domain.NewPaginatedResult(items, total, page, pageSize), nil
}

func withOwner(user *domain.User) domain.CompanyWithOwner {
	return domain.CompanyWithOwner{
		Company:    *user.Company,
		OwnerID:    user.ID,
		OwnerEmail: user.Email,
	}
}

// Verify approves or rejects a pending company. Rejection removes the
// company from its owner entirely.
func (u *companyUsecase) Verify(ctx context.Context, viewer domain.Viewer, companyID string, action domain.VerifyAction, reason string) (*domain.CompanyWithOwner, error) {
	if !viewer.IsAdmin() {
		return nil, apperror.Forbidden("Admin access required")
	}
	if action != domain.VerifyApprove && action != domain.VerifyReject {
		return nil, apperror.BadRequest("Action must be approve or reject")
	}

	owner, err := u.userRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, apperror.FromStore(err, "Company not found")
	}
	if !owner.Company.IsPending() {
		return nil, apperror.Conflict("Company has already been verified")
	}

	result := withOwner(owner)
	ts := now()

	switch action {
	case domain.VerifyApprove:
		err = u.userRepo.UpdateCompanyFields(ctx, owner.ID, map[string]any{
			"verified":        true,
			"isActive":        true,
			"verifiedAt":      ts,
			"rejectionReason": "",
			"updatedAt":       ts,
			"role":            string(promotedRole(owner.Role)),
		})
		result.Verified = true
		result.IsActive = true
		result.VerifiedAt = &ts
		result.UpdatedAt = ts
	case domain.VerifyReject:
		err = u.userRepo.RemoveCompany(ctx, owner.ID, demotedRole(owner.Role))
		result.RejectionReason = strings.TrimSpace(reason)
	}
	if err != nil {
		return nil, apperror.FromStore(err, "Company not found")
	}

	u.cache.Invalidate(ctx, cache.FamilyPendingCompanies, domain.ScopeNone)
	u.cache.Forget(ctx, cache.CompanyKey(companyID), cache.ProfileKey(owner.ID))

	auditAction := domain.AuditCompanyApproved
	if action == domain.VerifyReject {
		auditAction = domain.AuditCompanyRejected
	}
	record(ctx, u.audit, viewer, auditAction, "company:"+companyID, map[string]any{
		"owner_id": owner.ID,
		"reason":   result.RejectionReason,
	})
	return &result, nil
}

// promotedRole keeps admins as admins.
func promotedRole(current domain.Role) domain.Role {
	if current == domain.RoleAdmin {
		return domain.RoleAdmin
	}
	return domain.RoleRecruiter
}

func demotedRole(current domain.Role) domain.Role {
	if current == domain.RoleAdmin {
		return domain.RoleAdmin
	}
	return domain.RoleCandidate
}

func (u *companyUsecase) owned(ctx context.Context, companyID string) (*domain.CompanyWithOwner, error) {
	return cache.GetEntity(ctx, u.cache, cache.CompanyKey(companyID),
		func(ctx context.Context) (*domain.CompanyWithOwner, error) {
			owner, err := u.userRepo.GetByCompanyID(ctx, companyID)
			if err != nil {
				return nil, apperror.FromStore(err, "Company not found")
			}
			c := withOwner(owner)
			return &c, nil
		})
}

// GetByID returns a company. Companies awaiting moderation are only visible
// to their owner and to admins.
func (u *companyUsecase) GetByID(ctx context.Context, viewer domain.Viewer, companyID string) (*domain.Company, error) {
	c, err := u.owned(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !c.IsApproved() && !viewer.IsAdmin() && c.OwnerID != viewer.ID {
		return nil, apperror.NotFound("Company not found")
	}
	return &c.Company, nil
}

// List pages over companies. Non-admin viewers only see approved companies.
func (u *companyUsecase) List(ctx context.Context, viewer domain.Viewer, verified *bool, page, pageSize int) (*domain.PaginatedResult[domain.Company], error) {
	page, pageSize = domain.NormalizePage(page, pageSize)

	var filter domain.Filter
	switch {
	case !viewer.IsAdmin():
		filter = filter.And(domain.Eq("company.verified", true), domain.Eq("company.isActive", true))
	case verified != nil:
		filter = filter.And(domain.Eq("company.verified", *verified))
	}

	owned, err := u.listCompanies(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Company, len(owned.Items))
	for i := range owned.Items {
		items[i] = owned.Items[i].Company
	}
	return domain.NewPaginatedResult(items, owned.TotalCount, owned.Page, owned.PageSize), nil
}

// Update applies the non-empty fields of input.
func (u *companyUsecase) Update(ctx context.Context, viewer domain.Viewer, companyID string, input domain.CompanyInput) (*domain.Company, error) {
	owner, err := u.userRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, apperror.FromStore(err, "Company not found")
	}
	if !viewer.IsAdmin() && owner.ID != viewer.ID {
		return nil, apperror.Forbidden("You can only update your own company")
	}

	fields := companyPatch(input)
	if len(fields) == 0 {
		return owner.Company, nil
	}
	fields["updatedAt"] = now()
	if err := u.userRepo.UpdateCompanyFields(ctx, owner.ID, fields); err != nil {
		return nil, apperror.FromStore(err, "Company not found")
	}

	if owner.Company.IsPending() {
		u.cache.Invalidate(ctx, cache.FamilyPendingCompanies, domain.ScopeNone)
	}
	u.cache.Forget(ctx, cache.CompanyKey(companyID), cache.ProfileKey(owner.ID))
	record(ctx, u.audit, viewer, domain.AuditCompanyUpdated, "company:"+companyID, nil)

	updated, err := u.userRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, apperror.FromStore(err, "Company not found")
	}
	return updated.Company, nil
}

func (u *companyUsecase) Delete(ctx context.Context, viewer domain.Viewer, companyID string) error {
	if !viewer.IsAdmin() {
		return apperror.Forbidden("Admin access required")
	}
	owner, err := u.userRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return apperror.FromStore(err, "Company not found")
	}
	if err := u.userRepo.RemoveCompany(ctx, owner.ID, demotedRole(owner.Role)); err != nil {
		return apperror.FromStore(err, "Company not found")
	}

	if owner.Company.IsPending() {
		u.cache.Invalidate(ctx, cache.FamilyPendingCompanies, domain.ScopeNone)
	}
	u.cache.Forget(ctx, cache.CompanyKey(companyID), cache.ProfileKey(owner.ID))
	record(ctx, u.audit, viewer, domain.AuditCompanyDeleted, "company:"+companyID, map[string]any{"owner_id": owner.ID})
	return nil
}

func applyCompanyInput(c *domain.Company, in domain.CompanyInput) {
	c.Name = strings.TrimSpace(in.Name)
	c.Website = in.Website
	c.Email = in.Email
	c.Phone = in.Phone
	c.EmployeeSize = in.EmployeeSize
	c.BusinessField = in.BusinessField
	c.TaxCode = in.TaxCode
	c.FoundedYear = in.FoundedYear
	c.Introduction = in.Introduction
	c.Vision = in.Vision
	c.Mission = in.Mission
	c.CoreValues = in.CoreValues
	c.Location = in.Location
	c.LogoURL = in.LogoURL
	c.CoverURL = in.CoverURL
	c.Images = in.Images
	c.Benefits = in.Benefits
}

// companyPatch maps the set fields of input onto company-relative keys.
func companyPatch(in domain.CompanyInput) map[string]any {
	fields := map[string]any{}
	setString := func(key, v string) {
		if v = strings.TrimSpace(v); v != "" {
			fields[key] = v
		}
	}
	setString("name", in.Name)
	setString("website", in.Website)
	setString("email", in.Email)
	setString("phone", in.Phone)
	setString("employeeSize", in.EmployeeSize)
	setString("businessField", in.BusinessField)
	setString("taxCode", in.TaxCode)
	setString("introduction", in.Introduction)
	setString("vision", in.Vision)
	setString("mission", in.Mission)
	setString("logoUrl", in.LogoURL)
	setString("coverUrl", in.CoverURL)
	if in.FoundedYear > 0 {
		fields["foundedYear"] = in.FoundedYear
	}
	if in.CoreValues != nil {
		fields["coreValues"] = in.CoreValues
	}
	if in.Images != nil {
		fields["images"] = in.Images
	}
	if in.Benefits != nil {
		fields["benefits"] = in.Benefits
	}
	if in.Location != (domain.Location{}) {
		fields["location"] = in.Location
	}
	return fields
}
