package v1

import (
	"fmt"
	"net/http"

	"go-recruitment-platform/internal/delivery/http/middleware"
	"go-recruitment-platform/internal/delivery/http/response"
	"go-recruitment-platform/internal/domain"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes. All of them require a
// token.
func NewApplicationHandler(r *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	jobs := r.Group("/jobs")
	{
		jobs.POST("/:id/apply", handler.Apply)
		jobs.GET("/:id/applicants", handler.ListApplicants)
		jobs.GET("/:id/applicants/export", handler.ExportApplicants)
		jobs.PATCH("/:id/applicants/:applicantId/status", handler.UpdateStatus)
	}

	applications := r.Group("/applications")
	{
		applications.GET("/me", handler.ListMine)
		applications.PATCH("/:applicantId/status", handler.UpdateStatus)
	}
}

type AttachmentRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	URL  string `json:"url" binding:"required,url"`
	Type string `json:"type" binding:"max=50"`
}

type ApplyRequest struct {
	CoverLetter string              `json:"coverLetter" binding:"max=5000"`
	ResumeURL   string              `json:"resumeUrl" binding:"omitempty,url"`
	Attachments []AttachmentRequest `json:"attachments" binding:"max=10,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,application_status"`
	Note   string `json:"note" binding:"max=1000"`
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Candidate applies to a published job. A candidate holds at most one application per job.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id       path      string        true  "Job ID"
// @Param        request  body      ApplyRequest  true  "Application"
// @Success      201  {object}  response.Response{data=domain.Applicant}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Security     BearerAuth
// @Router       /jobs/{id}/apply [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req ApplyRequest
	if !bindJSON(c, &req) {
		return
	}

	input := domain.ApplyInput{CoverLetter: req.CoverLetter, ResumeURL: req.ResumeURL}
	for _, a := range req.Attachments {
		input.Attachments = append(input.Attachments, domain.Attachment{Name: a.Name, URL: a.URL, Type: a.Type})
	}

	applicant, err := h.applicationUC.Apply(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id"), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Application submitted successfully", applicant)
}

// UpdateStatus godoc
// @Summary      Change an application status
// @Description  Appends an entry to the applicant's status history. Any recognized status is accepted from any current status.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id           path      string               true  "Job ID"
// @Param        applicantId  path      string               true  "Applicant ID"
// @Param        request      body      UpdateStatusRequest  true  "New status"
// @Success      200  {object}  response.Response{data=domain.StatusChange}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /jobs/{id}/applicants/{applicantId}/status [patch]
// @Router       /applications/{applicantId}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	change, err := h.applicationUC.UpdateStatus(
		c.Request.Context(),
		middleware.ViewerFrom(c),
		c.Param("id"),
		c.Param("applicantId"),
		domain.ApplicationStatus(req.Status),
		req.Note,
	)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application status updated successfully", change)
}

// ListApplicants godoc
// @Summary      List applicants of a job
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=[]domain.Applicant}
// @Failure      403  {object}  response.Response
// @Security     BearerAuth
// @Router       /jobs/{id}/applicants [get]
func (h *ApplicationHandler) ListApplicants(c *gin.Context) {
	applicants, err := h.applicationUC.ListApplicants(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applicants retrieved successfully", applicants)
}

// ExportApplicants godoc
// @Summary      Export applicants as a spreadsheet
// @Tags         applications
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path  string  true  "Job ID"
// @Success      200  {file}  file
// @Security     BearerAuth
// @Router       /jobs/{id}/applicants/export [get]
func (h *ApplicationHandler) ExportApplicants(c *gin.Context) {
	data, filename, err := h.applicationUC.ExportApplicants(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ListMine godoc
// @Summary      List my applications
// @Tags         applications
// @Produce      json
// @Param        page       query  int  false  "Page number"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.MyApplication]}
// @Security     BearerAuth
// @Router       /applications/me [get]
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	page, pageSize := pageParams(c)
	result, err := h.applicationUC.ListMine(c.Request.Context(), middleware.ViewerFrom(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved successfully", result)
}
