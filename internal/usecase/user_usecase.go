package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go-recruitment-platform/internal/cache"
	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/pkg/apperror"
)

type userUsecase struct {
	userRepo domain.UserRepository
	cache    *cache.Manager
}

func NewUserUsecase(userRepo domain.UserRepository, cm *cache.Manager) domain.UserUsecase {
	return &userUsecase{userRepo: userRepo, cache: cm}
}

// Sync returns the stored user, creating it from the token identity on first
// sight. The role of a new user comes from the token.
func (u *userUsecase) Sync(ctx context.Context, viewer domain.Viewer, email string) (*domain.User, error) {
	if !viewer.IsAuthenticated() {
		return nil, apperror.Unauthorized("Authentication required")
	}

	user, err := u.userRepo.GetByID(ctx, viewer.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.FromStore(err, "User not found")
	}

	ts := now()
	user = &domain.User{
		ID:        viewer.ID,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      domain.ParseRole(string(viewer.Role)),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if user.Role == domain.RoleCandidate {
		user.CandidateProfile = &domain.CandidateProfile{}
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Created concurrently by another request
			existing, getErr := u.userRepo.GetByID(ctx, viewer.ID)
			if getErr != nil {
				return nil, apperror.FromStore(getErr, "User not found")
			}
			return existing, nil
		}
		return nil, apperror.FromStore(err, "User not found")
	}
	slog.InfoContext(ctx, "User record created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (u *userUsecase) GetProfile(ctx context.Context, viewer domain.Viewer) (*domain.User, error) {
	if !viewer.IsAuthenticated() {
		return nil, apperror.Unauthorized("Authentication required")
	}
	return cache.GetEntity(ctx, u.cache, cache.ProfileKey(viewer.ID),
		func(ctx context.Context) (*domain.User, error) {
			return u.Sync(ctx, viewer, viewer.Email)
		})
}

func (u *userUsecase) UpdateProfile(ctx context.Context, viewer domain.Viewer, input domain.UpdateProfileInput) (*domain.User, error) {
	user, err := u.Sync(ctx, viewer, viewer.Email)
	if err != nil {
		return nil, err
	}
	if input.YearsOfExperience < 0 {
		return nil, apperror.BadRequest("Years of experience cannot be negative")
	}

	user.Phone = strings.TrimSpace(input.Phone)
	user.Profile = domain.UserProfile{
		FullName: strings.TrimSpace(input.FullName),
		Avatar:   input.Avatar,
		Bio:      input.Bio,
	}
	if user.Role == domain.RoleCandidate || user.CandidateProfile != nil {
		user.CandidateProfile = &domain.CandidateProfile{
			ResumeURL:         input.ResumeURL,
			Title:             input.Title,
			YearsOfExperience: input.YearsOfExperience,
			CurrentPosition:   input.CurrentPosition,
			CurrentCompany:    input.CurrentCompany,
			Skills:            input.Skills,
		}
	}
	user.UpdatedAt = now()

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, apperror.FromStore(err, "User not found")
	}
	u.cache.Forget(ctx, cache.ProfileKey(user.ID))
	return user, nil
}

// ResolveRole prefers the stored role so that promotions take effect before
// the identity provider reissues tokens. The token role is only trusted for
// users that are not stored yet; a store failure grants the least privilege.
func (u *userUsecase) ResolveRole(ctx context.Context, userID string, fallback domain.Role) domain.Role {
	user, err := cache.GetEntity(ctx, u.cache, cache.ProfileKey(userID),
		func(ctx context.Context) (*domain.User, error) {
			return u.userRepo.GetByID(ctx, userID)
		})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fallback
	case err != nil:
		slog.WarnContext(ctx, "Failed to resolve stored role", "user_id", userID, "error", err)
		return domain.RoleCandidate
	}
	return domain.ParseRole(string(user.Role))
}

func (u *userUsecase) ListUsers(ctx context.Context, viewer domain.Viewer, page, pageSize int) (*domain.PaginatedResult[domain.User], error) {
	if !viewer.IsAdmin() {
		return nil, apperror.Forbidden("Admin access required")
	}
	page, pageSize = domain.NormalizePage(page, pageSize)

	users, total, err := u.userRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, apperror.FromStore(err, "User not found")
	}
	return domain.NewPaginatedResult(users, total, page, pageSize), nil
}

// GetUser is open to admins and to the user themself.
func (u *userUsecase) GetUser(ctx context.Context, viewer domain.Viewer, id string) (*domain.User, error) {
	if !viewer.IsAuthenticated() {
		return nil, apperror.Unauthorized("Authentication required")
	}
	if !viewer.IsAdmin() && viewer.ID != id {
		return nil, apperror.Forbidden("You can only view your own account")
	}
	user, err := cache.GetEntity(ctx, u.cache, cache.ProfileKey(id),
		func(ctx context.Context) (*domain.User, error) {
			return u.userRepo.GetByID(ctx, id)
		})
	if err != nil {
		return nil, apperror.FromStore(err, "User not found")
	}
	return user, nil
}

func (u *userUsecase) UpdateUser(ctx context.Context, viewer domain.Viewer, id string, input domain.AdminUpdateUserInput) (*domain.User, error) {
	if !viewer.IsAdmin() {
		return nil, apperror.Forbidden("Admin access required")
	}
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromStore(err, "User not found")
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, apperror.BadRequest("Email cannot be empty")
		}
		user.Email = email
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.FullName != nil {
		user.Profile.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Role != nil {
		if domain.ParseRole(string(*input.Role)) != *input.Role {
			return nil, apperror.BadRequest("Invalid role")
		}
		user.Role = *input.Role
	}
	user.UpdatedAt = now()

	if err := u.userRepo.UpdateAccount(ctx, user); err != nil {
		return nil, apperror.FromStore(err, "User not found")
	}
	u.forget(ctx, user)
	slog.InfoContext(ctx, "User account updated", "user_id", user.ID, "role", user.Role, "admin_id", viewer.ID)
	return user, nil
}

func (u *userUsecase) DeleteUser(ctx context.Context, viewer domain.Viewer, id string) error {
	if !viewer.IsAdmin() {
		return apperror.Forbidden("Admin access required")
	}
	if viewer.ID == id {
		return apperror.BadRequest("Admins cannot delete their own account")
	}
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.FromStore(err, "User not found")
	}
	if err := u.userRepo.Delete(ctx, id); err != nil {
		return apperror.FromStore(err, "User not found")
	}
	u.forget(ctx, user)
	if user.Company != nil {
		u.cache.Invalidate(ctx, cache.FamilyPendingCompanies, domain.ScopeNone)
	}
	slog.InfoContext(ctx, "User deleted", "user_id", id, "admin_id", viewer.ID)
	return nil
}

// forget drops the cached entities that embed the user.
func (u *userUsecase) forget(ctx context.Context, user *domain.User) {
	keys := []string{cache.ProfileKey(user.ID)}
	if user.Company != nil {
		keys = append(keys, cache.CompanyKey(user.Company.ID))
	}
	u.cache.Forget(ctx, keys...)
}
