package v1

import (
	"net/http"
	"strconv"

	"go-recruitment-platform/internal/delivery/http/middleware"
	"go-recruitment-platform/internal/delivery/http/response"
	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyUC domain.CompanyUsecase
}

func NewCompanyHandler(public, protected *gin.RouterGroup, companyUC domain.CompanyUsecase) {
	handler := &CompanyHandler{companyUC: companyUC}

	publicCompanies := public.Group("/companies")
	{
		publicCompanies.GET("", handler.List)
		publicCompanies.GET("/:id", handler.GetByID)
	}

	protectedCompanies := protected.Group("/companies")
	{
		protectedCompanies.POST("/register", handler.Register)
		protectedCompanies.GET("/pending", handler.ListPending)
		protectedCompanies.POST("/verify", handler.Verify)
		protectedCompanies.PUT("/:id", handler.Update)
		protectedCompanies.DELETE("/:id", handler.Delete)
	}
}

type LocationRequest struct {
	Address  string `json:"address" binding:"max=300"`
	City     string `json:"city" binding:"max=100"`
	District string `json:"district" binding:"max=100"`
	Country  string `json:"country" binding:"max=100"`
}

type CompanyRequest struct {
	Name          string          `json:"name" binding:"max=200,no_emoji"`
	Website       string          `json:"website" binding:"omitempty,url"`
	Email         string          `json:"email" binding:"omitempty,email"`
	Phone         string          `json:"phone" binding:"omitempty,valid_phone"`
	EmployeeSize  string          `json:"employeeSize" binding:"max=50"`
	BusinessField string          `json:"businessField" binding:"max=200"`
	TaxCode       string          `json:"taxCode" binding:"max=50"`
	FoundedYear   int             `json:"foundedYear" binding:"omitempty,gte=1800,lte=2100"`
	Introduction  string          `json:"introduction" binding:"max=5000"`
	Vision        string          `json:"vision" binding:"max=2000"`
	Mission       string          `json:"mission" binding:"max=2000"`
	CoreValues    []string        `json:"coreValues" binding:"max=20"`
	Location      LocationRequest `json:"location"`
	LogoURL       string          `json:"logoUrl" binding:"omitempty,url"`
	CoverURL      string          `json:"coverUrl" binding:"omitempty,url"`
	Images        []string        `json:"images" binding:"max=20,dive,url"`
	Benefits      []string        `json:"benefits" binding:"max=30"`
}

func (r CompanyRequest) toInput() domain.CompanyInput {
	return domain.CompanyInput{
		Name:          r.Name,
		Website:       r.Website,
		Email:         r.Email,
		Phone:         r.Phone,
		EmployeeSize:  r.EmployeeSize,
		BusinessField: r.BusinessField,
		TaxCode:       r.TaxCode,
		FoundedYear:   r.FoundedYear,
		Introduction:  r.Introduction,
		Vision:        r.Vision,
		Mission:       r.Mission,
		CoreValues:    r.CoreValues,
		Location: domain.Location{
			Address:  r.Location.Address,
			City:     r.Location.City,
			District: r.Location.District,
			Country:  r.Location.Country,
		},
		LogoURL:  r.LogoURL,
		CoverURL: r.CoverURL,
		Images:   r.Images,
		Benefits: r.Benefits,
	}
}

type VerifyCompanyRequest struct {
	CompanyID string `json:"companyId" binding:"required"`
	Action    string `json:"action" binding:"required,oneof=approve reject"`
	Reason    string `json:"reason" binding:"max=1000"`
}

// Register godoc
// @Summary      Register a company
// @Description  The caller's company awaits admin moderation until approved
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        company  body      CompanyRequest  true  "Company JSON"
// @Success      201  {object}  response.Response{data=domain.Company}
// @Failure      409  {object}  response.Response
// @Security     BearerAuth
// @Router       /companies/register [post]
func (h *CompanyHandler) Register(c *gin.Context) {
	var req CompanyRequest
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.companyUC.Register(c.Request.Context(), middleware.ViewerFrom(c), req.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Company registered and awaiting verification", company)
}

// ListPending godoc
// @Summary      List companies awaiting moderation
// @Tags         companies
// @Produce      json
// @Param        page       query  int  false  "Page number"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.CompanyWithOwner]}
// @Failure      403  {object}  response.Response
// @Security     BearerAuth
// @Router       /companies/pending [get]
func (h *CompanyHandler) ListPending(c *gin.Context) {
	page, pageSize := pageParams(c)
	result, err := h.companyUC.ListPending(c.Request.Context(), middleware.ViewerFrom(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Pending companies retrieved successfully", result)
}

// Verify godoc
// @Summary      Approve or reject a company
// @Description  Approval promotes the owner to recruiter. Rejection removes the company from its owner.
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        request  body      VerifyCompanyRequest  true  "Decision"
// @Success      200  {object}  response.Response{data=domain.CompanyWithOwner}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Security     BearerAuth
// @Router       /companies/verify [post]
func (h *CompanyHandler) Verify(c *gin.Context) {
	var req VerifyCompanyRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.companyUC.Verify(c.Request.Context(), middleware.ViewerFrom(c), req.CompanyID, domain.VerifyAction(req.Action), req.Reason)
	if err != nil {
		c.Error(err)
		return
	}

	message := "Company approved successfully"
	if req.Action == string(domain.VerifyReject) {
		message = "Company rejected"
	}
	response.Success(c, http.StatusOK, message, result)
}

// List godoc
// @Summary      List companies
// @Description  Approved companies for everyone. Admins may filter by verified state.
// @Tags         companies
// @Produce      json
// @Param        verified   query  bool  false  "Verified filter"
// @Param        page       query  int   false  "Page number"
// @Param        page_size  query  int   false  "Page size"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.Company]}
// @Router       /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	var verified *bool
	if raw := c.Query("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.Error(apperror.BadRequest("verified must be true or false"))
			return
		}
		verified = &v
	}

	page, pageSize := pageParams(c)
	result, err := h.companyUC.List(c.Request.Context(), middleware.ViewerFrom(c), verified, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Companies retrieved successfully", result)
}

// GetByID godoc
// @Summary      Get a company
// @Tags         companies
// @Produce      json
// @Param        id   path      string  true  "Company ID"
// @Success      200  {object}  response.Response{data=domain.Company}
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [get]
func (h *CompanyHandler) GetByID(c *gin.Context) {
	company, err := h.companyUC.GetByID(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company retrieved successfully", company)
}

// Update godoc
// @Summary      Update a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "Company ID"
// @Param        company  body      CompanyRequest  true  "Company JSON"
// @Success      200  {object}  response.Response{data=domain.Company}
// @Failure      403  {object}  response.Response
// @Security     BearerAuth
// @Router       /companies/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	var req CompanyRequest
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.companyUC.Update(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id"), req.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company updated successfully", company)
}

// Delete godoc
// @Summary      Delete a company
// @Tags         companies
// @Produce      json
// @Param        id   path      string  true  "Company ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Security     BearerAuth
// @Router       /companies/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	if err := h.companyUC.Delete(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company deleted successfully", nil)
}
