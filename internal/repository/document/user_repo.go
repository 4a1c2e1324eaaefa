package document

import (
	"context"
	"time"

	"go-recruitment-platform/internal/domain"
)

type userRepo struct {
	store domain.DocumentStore
}

func NewUserRepository(store domain.DocumentStore) domain.UserRepository {
	return &userRepo{store: store}
}

func now() time.Time {
	return time.Now().UTC()
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.store.FindByID(ctx, domain.CollectionUsers, id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByCompanyID(ctx context.Context, companyID string) (*domain.User, error) {
	var user domain.User
	filter := domain.Filter{All: []domain.Cond{domain.Eq("company.id", companyID)}}
	if err := r.store.FindOne(ctx, domain.CollectionUsers, filter, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	return r.store.Insert(ctx, domain.CollectionUsers, user.ID, user)
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	set := map[string]any{
		"phone":     user.Phone,
		"profile":   user.Profile,
		"updatedAt": user.UpdatedAt,
	}
	if user.CandidateProfile != nil {
		set["candidateProfile"] = user.CandidateProfile
	}
	return r.store.UpdateFields(ctx, domain.CollectionUsers, user.ID, set)
}

func (r *userRepo) SetCompany(ctx context.Context, userID string, company *domain.Company) error {
	return r.store.UpdateFields(ctx, domain.CollectionUsers, userID, map[string]any{
		"company":   company,
		"updatedAt": now(),
	})
}

// UpdateCompanyFields sets fields of the embedded company. Keys are relative
// to the company; "role" is applied to the user itself.
func (r *userRepo) UpdateCompanyFields(ctx context.Context, userID string, fields map[string]any) error {
	set := map[string]any{"updatedAt": now()}
	for k, v := range fields {
		if k == "role" {
			set[k] = v
			continue
		}
		set["company."+k] = v
	}
	return r.store.UpdateFields(ctx, domain.CollectionUsers, userID, set)
}

// RemoveCompany detaches the company from its owner and resets the role in
// one update. A null company decodes as no company at all.
func (r *userRepo) RemoveCompany(ctx context.Context, userID string, demoteTo domain.Role) error {
	return r.store.UpdateFields(ctx, domain.CollectionUsers, userID, map[string]any{
		"company":   nil,
		"role":      string(demoteTo),
		"updatedAt": now(),
	})
}

// ListCompanies pages over users holding a company that matches filter.
func (r *userRepo) ListCompanies(ctx context.Context, filter domain.Filter, page, pageSize int) ([]domain.User, int64, error) {
	filter = filter.And(domain.Exists("company", true))
	total, err := r.store.Count(ctx, domain.CollectionUsers, filter)
	if err != nil {
		return nil, 0, err
	}

	users := []domain.User{}
	err = r.store.FindPage(ctx, domain.CollectionUsers, domain.Query{
		Filter: filter,
		Sort:   []domain.SortField{domain.ParseSort("-company.createdAt")},
		Skip:   domain.Offset(page, pageSize),
		Limit:  pageSize,
	}, &users)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// List pages over all live users, newest first.
func (r *userRepo) List(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	total, err := r.store.Count(ctx, domain.CollectionUsers, domain.Filter{})
	if err != nil {
		return nil, 0, err
	}

	users := []domain.User{}
	err = r.store.FindPage(ctx, domain.CollectionUsers, domain.Query{
		Sort:  []domain.SortField{domain.ParseSort("-createdAt")},
		Skip:  domain.Offset(page, pageSize),
		Limit: pageSize,
	}, &users)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepo) UpdateAccount(ctx context.Context, user *domain.User) error {
	return r.store.UpdateFields(ctx, domain.CollectionUsers, user.ID, map[string]any{
		"email":            user.Email,
		"phone":            user.Phone,
		"role":             string(user.Role),
		"profile.fullName": user.Profile.FullName,
		"updatedAt":        user.UpdatedAt,
	})
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return r.store.SoftDelete(ctx, domain.CollectionUsers, id)
}
