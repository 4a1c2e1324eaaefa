package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a token or stored role onto the closed role set. Anything
// unrecognized is treated as a candidate.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleRecruiter:
		return RoleRecruiter
	default:
		return RoleCandidate
	}
}

type User struct {
	ID               string            `json:"id" bson:"_id"`
	Email            string            `json:"email" bson:"email"`
	Phone            string            `json:"phone,omitempty" bson:"phone,omitempty"`
	Role             Role              `json:"role" bson:"role"`
	Profile          UserProfile       `json:"profile" bson:"profile"`
	CandidateProfile *CandidateProfile `json:"candidateProfile,omitempty" bson:"candidateProfile,omitempty"`
	Company          *Company          `json:"company,omitempty" bson:"company,omitempty"`
	CreatedAt        time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt" bson:"updatedAt"`
}

type UserProfile struct {
	FullName string `json:"fullName" bson:"fullName"`
	Avatar   string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Bio      string `json:"bio,omitempty" bson:"bio,omitempty"`
}

type CandidateProfile struct {
	ResumeURL         string   `json:"resumeUrl,omitempty" bson:"resumeUrl,omitempty"`
	Title             string   `json:"title,omitempty" bson:"title,omitempty"`
	YearsOfExperience int      `json:"yearsOfExperience" bson:"yearsOfExperience"`
	CurrentPosition   string   `json:"currentPosition,omitempty" bson:"currentPosition,omitempty"`
	CurrentCompany    string   `json:"currentCompany,omitempty" bson:"currentCompany,omitempty"`
	Skills            []string `json:"skills,omitempty" bson:"skills,omitempty"`
}

// UpdateProfileInput carries the user-editable part of a profile.
type UpdateProfileInput struct {
	Phone             string
	FullName          string
	Avatar            string
	Bio               string
	ResumeURL         string
	Title             string
	YearsOfExperience int
	CurrentPosition   string
	CurrentCompany    string
	Skills            []string
}

// AdminUpdateUserInput changes account fields of any user. Nil fields keep
// their stored value.
type AdminUpdateUserInput struct {
	Email    *string
	Phone    *string
	FullName *string
	Role     *Role
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByCompanyID(ctx context.Context, companyID string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	SetCompany(ctx context.Context, userID string, company *Company) error
	UpdateCompanyFields(ctx context.Context, userID string, fields map[string]any) error
	RemoveCompany(ctx context.Context, userID string, demoteTo Role) error
	ListCompanies(ctx context.Context, filter Filter, page, pageSize int) ([]User, int64, error)
	List(ctx context.Context, page, pageSize int) ([]User, int64, error)
	// UpdateAccount writes the admin-managed fields: email, phone, role and full name.
	UpdateAccount(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

type UserUsecase interface {
	// Sync returns the stored user for the viewer, creating it on first sight.
	Sync(ctx context.Context, viewer Viewer, email string) (*User, error)
	GetProfile(ctx context.Context, viewer Viewer) (*User, error)
	UpdateProfile(ctx context.Context, viewer Viewer, input UpdateProfileInput) (*User, error)
	// ResolveRole returns the stored role for a user, fallback if none is stored
	// yet, or candidate when the store cannot be read.
	ResolveRole(ctx context.Context, userID string, fallback Role) Role

	ListUsers(ctx context.Context, viewer Viewer, page, pageSize int) (*PaginatedResult[User], error)
	GetUser(ctx context.Context, viewer Viewer, id string) (*User, error)
	UpdateUser(ctx context.Context, viewer Viewer, id string, input AdminUpdateUserInput) (*User, error)
	DeleteUser(ctx context.Context, viewer Viewer, id string) error
}
