package v1

import (
	"net/http"
	"time"

	"go-recruitment-platform/internal/delivery/http/middleware"
	"go-recruitment-platform/internal/delivery/http/response"
	"go-recruitment-platform/internal/domain"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

// NewJobHandler registers job routes. Reads accept anonymous viewers, writes
// require a token.
func NewJobHandler(public, protected *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	publicJobs := public.Group("/jobs")
	{
		publicJobs.GET("", handler.List)
		publicJobs.GET("/:id", handler.GetDetails)
		publicJobs.POST("/search", handler.Search)
		publicJobs.GET("/company/:companyId", handler.ListByCompany)
	}

	protectedJobs := protected.Group("/jobs")
	{
		protectedJobs.POST("", handler.Create)
		protectedJobs.PUT("/:id", handler.Update)
		protectedJobs.DELETE("/:id", handler.Delete)
		protectedJobs.PATCH("/:id/publish", handler.Publish)
		protectedJobs.PATCH("/:id/unpublish", handler.Unpublish)
	}
}

type SalaryRequest struct {
	Min      float64 `json:"min" binding:"gte=0"`
	Max      float64 `json:"max" binding:"gte=0"`
	Currency string  `json:"currency" binding:"max=10"`
	Type     string  `json:"type" binding:"max=30"`
}

type WorkplaceRequest struct {
	Address  string `json:"address" binding:"max=300"`
	City     string `json:"city" binding:"max=100"`
	District string `json:"district" binding:"max=100"`
}

type JobRequest struct {
	CompanyID      string           `json:"companyId"`
	Title          string           `json:"title" binding:"required,max=200,no_emoji"`
	Salary         SalaryRequest    `json:"salary"`
	Experience     string           `json:"experience" binding:"max=100"`
	Education      string           `json:"education" binding:"max=100"`
	EmploymentType string           `json:"employmentType" binding:"max=50"`
	WorkMode       string           `json:"workMode" binding:"max=50"`
	Skills         []string         `json:"skills" binding:"max=50"`
	Categories     []string         `json:"categories" binding:"max=20"`
	Keywords       []string         `json:"keywords" binding:"max=50"`
	JobDetails     string           `json:"jobDetails" binding:"max=20000"`
	Requirements   string           `json:"requirements"`
	Benefits       string           `json:"benefits"`
	Workplace      WorkplaceRequest `json:"workplace"`
	Vacancies      int              `json:"vacancies" binding:"gte=0"`
	StartDate      *time.Time       `json:"startDate"`
	EndDate        *time.Time       `json:"endDate"`
}

func (r JobRequest) toInput() domain.JobInput {
	return domain.JobInput{
		CompanyID: r.CompanyID,
		Title:     r.Title,
		Salary: domain.Salary{
			Min:      r.Salary.Min,
			Max:      r.Salary.Max,
			Currency: r.Salary.Currency,
			Type:     r.Salary.Type,
		},
		Experience:     r.Experience,
		Education:      r.Education,
		EmploymentType: r.EmploymentType,
		WorkMode:       r.WorkMode,
		Skills:         r.Skills,
		Categories:     r.Categories,
		Keywords:       r.Keywords,
		JobDetails:     r.JobDetails,
		Requirements:   r.Requirements,
		Benefits:       r.Benefits,
		Workplace: domain.Workplace{
			Address:  r.Workplace.Address,
			City:     r.Workplace.City,
			District: r.Workplace.District,
		},
		Vacancies: r.Vacancies,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

type SearchJobsRequest struct {
	Keyword    string   `json:"keyword" binding:"max=200"`
	City       string   `json:"city" binding:"max=100"`
	Categories []string `json:"categories" binding:"max=20"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
}

// List godoc
// @Summary      List jobs
// @Description  Jobs visible to the caller. Anonymous callers and candidates see published jobs, recruiters also see their own drafts, admins see everything.
// @Tags         jobs
// @Produce      json
// @Param        page       query     int  false  "Page number"  default(1)
// @Param        page_size  query     int  false  "Page size"    default(10)
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.Job]}
// @Router       /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	result, err := h.jobUC.ListJobs(c.Request.Context(), middleware.ViewerFrom(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved successfully", result)
}

// GetDetails godoc
// @Summary      Get job details
// @Description  Returns a job visible to the caller and counts the view
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
func (h *JobHandler) GetDetails(c *gin.Context) {
	job, err := h.jobUC.GetJob(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job retrieved successfully", job)
}

// Create godoc
// @Summary      Create a job
// @Description  Creates a draft job under the recruiter's approved company
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      JobRequest  true  "Job JSON"
// @Success      201  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Security     BearerAuth
// @Router       /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	var req JobRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.jobUC.CreateJob(c.Request.Context(), middleware.ViewerFrom(c), req.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job created successfully", job)
}

// Update godoc
// @Summary      Update a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id   path      string      true  "Job ID"
// @Param        job  body      JobRequest  true  "Job JSON"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /jobs/{id} [put]
func (h *JobHandler) Update(c *gin.Context) {
	var req JobRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.jobUC.UpdateJob(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id"), req.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job updated successfully", job)
}

// Delete godoc
// @Summary      Delete a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /jobs/{id} [delete]
func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.jobUC.DeleteJob(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job deleted successfully", nil)
}

// Publish godoc
// @Summary      Publish a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Security     BearerAuth
// @Router       /jobs/{id}/publish [patch]
func (h *JobHandler) Publish(c *gin.Context) {
	job, err := h.jobUC.PublishJob(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job published successfully", job)
}

// Unpublish godoc
// @Summary      Unpublish a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Security     BearerAuth
// @Router       /jobs/{id}/unpublish [patch]
func (h *JobHandler) Unpublish(c *gin.Context) {
	job, err := h.jobUC.UnpublishJob(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job unpublished successfully", job)
}

// Search godoc
// @Summary      Search published jobs
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        query  body      SearchJobsRequest  true  "Search query"
// @Success      200    {object}  response.Response{data=domain.PaginatedResult[domain.Job]}
// @Router       /jobs/search [post]
func (h *JobHandler) Search(c *gin.Context) {
	var req SearchJobsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.jobUC.SearchJobs(c.Request.Context(), middleware.ViewerFrom(c), domain.JobSearch{
		Keyword:    req.Keyword,
		City:       req.City,
		Categories: req.Categories,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved successfully", result)
}

// ListByCompany godoc
// @Summary      List jobs of a company
// @Tags         jobs
// @Produce      json
// @Param        companyId  path   string  true   "Company ID"
// @Param        page       query  int     false  "Page number"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.Job]}
// @Router       /jobs/company/{companyId} [get]
func (h *JobHandler) ListByCompany(c *gin.Context) {
	page, pageSize := pageParams(c)
	result, err := h.jobUC.ListByCompany(c.Request.Context(), middleware.ViewerFrom(c), c.Param("companyId"), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved successfully", result)
}
