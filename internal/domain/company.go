package domain

import (
	"context"
	"time"
)

// Company is embedded in the user that registered it. It stays there after
// approval; rejection removes it from the user entirely.
type Company struct {
	ID              string     `json:"id" bson:"id"`
	Name            string     `json:"name" bson:"name"`
	Website         string     `json:"website,omitempty" bson:"website,omitempty"`
	Email           string     `json:"email,omitempty" bson:"email,omitempty"`
	Phone           string     `json:"phone,omitempty" bson:"phone,omitempty"`
	EmployeeSize    string     `json:"employeeSize,omitempty" bson:"employeeSize,omitempty"`
	BusinessField   string     `json:"businessField,omitempty" bson:"businessField,omitempty"`
	TaxCode         string     `json:"taxCode,omitempty" bson:"taxCode,omitempty"`
	FoundedYear     int        `json:"foundedYear,omitempty" bson:"foundedYear,omitempty"`
	Introduction    string     `json:"introduction,omitempty" bson:"introduction,omitempty"`
	Vision          string     `json:"vision,omitempty" bson:"vision,omitempty"`
	Mission         string     `json:"mission,omitempty" bson:"mission,omitempty"`
	CoreValues      []string   `json:"coreValues,omitempty" bson:"coreValues,omitempty"`
	Location        Location   `json:"location" bson:"location"`
	Tier            string     `json:"tier,omitempty" bson:"tier,omitempty"`
	LogoURL         string     `json:"logoUrl,omitempty" bson:"logoUrl,omitempty"`
	CoverURL        string     `json:"coverUrl,omitempty" bson:"coverUrl,omitempty"`
	Images          []string   `json:"images,omitempty" bson:"images,omitempty"`
	Benefits        []string   `json:"benefits,omitempty" bson:"benefits,omitempty"`
	Verified        bool       `json:"verified" bson:"verified"`
	VerifiedAt      *time.Time `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
	IsActive        bool       `json:"isActive" bson:"isActive"`
	RejectionReason string     `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
}

type Location struct {
	Address  string `json:"address,omitempty" bson:"address,omitempty"`
	City     string `json:"city,omitempty" bson:"city,omitempty"`
	District string `json:"district,omitempty" bson:"district,omitempty"`
	Country  string `json:"country,omitempty" bson:"country,omitempty"`
}

// IsPending reports whether the company is still awaiting moderation.
func (c *Company) IsPending() bool {
	return !c.Verified && !c.IsActive
}

// IsApproved reports whether jobs may be posted under the company.
func (c *Company) IsApproved() bool {
	return c.Verified && c.IsActive
}

// CompanyWithOwner is the moderation view of a company.
type CompanyWithOwner struct {
	Company
	OwnerID    string `json:"ownerId"`
	OwnerEmail string `json:"ownerEmail"`
}

type CompanyInput struct {
	Name          string
	Website       string
	Email         string
	Phone         string
	EmployeeSize  string
	BusinessField string
	TaxCode       string
	FoundedYear   int
	Introduction  string
	Vision        string
	Mission       string
	CoreValues    []string
	Location      Location
	LogoURL       string
	CoverURL      string
	Images        []string
	Benefits      []string
}

type VerifyAction string

const (
	VerifyApprove VerifyAction = "approve"
	VerifyReject  VerifyAction = "reject"
)

type CompanyUsecase interface {
	Register(ctx context.Context, viewer Viewer, input CompanyInput) (*Company, error)
	ListPending(ctx context.Context, viewer Viewer, page, pageSize int) (*PaginatedResult[CompanyWithOwner], error)
	Verify(ctx context.Context, viewer Viewer, companyID string, action VerifyAction, reason string) (*CompanyWithOwner, error)
	GetByID(ctx context.Context, viewer Viewer, companyID string) (*Company, error)
	List(ctx context.Context, viewer Viewer, verified *bool, page, pageSize int) (*PaginatedResult[Company], error)
	Update(ctx context.Context, viewer Viewer, companyID string, input CompanyInput) (*Company, error)
	Delete(ctx context.Context, viewer Viewer, companyID string) error
}
