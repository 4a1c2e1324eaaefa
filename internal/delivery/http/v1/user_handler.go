package v1

import (
	"net/http"

	"go-recruitment-platform/internal/delivery/http/middleware"
	"go-recruitment-platform/internal/delivery/http/response"
	"go-recruitment-platform/internal/domain"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userUC domain.UserUsecase
}

func NewUserHandler(r *gin.RouterGroup, userUC domain.UserUsecase) {
	handler := &UserHandler{userUC: userUC}

	users := r.Group("/users")
	{
		users.POST("/sync", handler.Sync)
		users.GET("/profile", handler.GetProfile)
		users.PUT("/profile", handler.UpdateProfile)

		users.GET("", handler.List)
		users.GET("/:id", handler.GetByID)
		users.PUT("/:id", handler.Update)
		users.DELETE("/:id", handler.Delete)
	}
}

type UpdateProfileRequest struct {
	Phone             string   `json:"phone" binding:"omitempty,valid_phone"`
	FullName          string   `json:"fullName" binding:"max=100,valid_name"`
	Avatar            string   `json:"avatar" binding:"omitempty,url"`
	Bio               string   `json:"bio" binding:"max=2000,no_emoji"`
	ResumeURL         string   `json:"resumeUrl" binding:"omitempty,url"`
	Title             string   `json:"title" binding:"max=200"`
	YearsOfExperience int      `json:"yearsOfExperience" binding:"gte=0,lte=70"`
	CurrentPosition   string   `json:"currentPosition" binding:"max=200"`
	CurrentCompany    string   `json:"currentCompany" binding:"max=200"`
	Skills            []string `json:"skills" binding:"max=50"`
}

// AdminUpdateUserRequest changes account fields. Omitted fields are kept.
type AdminUpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=254"`
	Phone    *string `json:"phone" binding:"omitempty,valid_phone"`
	FullName *string `json:"fullName" binding:"omitempty,max=100,valid_name"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin recruiter candidate"`
}

func (r AdminUpdateUserRequest) toInput() domain.AdminUpdateUserInput {
	input := domain.AdminUpdateUserInput{
		Email:    r.Email,
		Phone:    r.Phone,
		FullName: r.FullName,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		input.Role = &role
	}
	return input
}

// Sync godoc
// @Summary      Sync the caller's account
// @Description  Creates the stored user from the token on first sight and returns it
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Security     BearerAuth
// @Router       /users/sync [post]
func (h *UserHandler) Sync(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	user, err := h.userUC.Sync(c.Request.Context(), viewer, viewer.Email)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User synchronized", user)
}

// GetProfile godoc
// @Summary      Get my profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Security     BearerAuth
// @Router       /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userUC.GetProfile(c.Request.Context(), middleware.ViewerFrom(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved successfully", user)
}

// UpdateProfile godoc
// @Summary      Update my profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        profile  body      UpdateProfileRequest  true  "Profile JSON"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      400  {object}  response.Response
// @Security     BearerAuth
// @Router       /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userUC.UpdateProfile(c.Request.Context(), middleware.ViewerFrom(c), domain.UpdateProfileInput{
		Phone:             req.Phone,
		FullName:          req.FullName,
		Avatar:            req.Avatar,
		Bio:               req.Bio,
		ResumeURL:         req.ResumeURL,
		Title:             req.Title,
		YearsOfExperience: req.YearsOfExperience,
		CurrentPosition:   req.CurrentPosition,
		CurrentCompany:    req.CurrentCompany,
		Skills:            req.Skills,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated successfully", user)
}

// List godoc
// @Summary      List users
// @Description  Admin only, newest first
// @Tags         users
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.User]}
// @Failure      403  {object}  response.Response
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	result, err := h.userUC.ListUsers(c.Request.Context(), middleware.ViewerFrom(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Users retrieved successfully", result)
}

// GetByID godoc
// @Summary      Get a user
// @Description  Admins can read any account, other users only their own
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.userUC.GetUser(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User retrieved successfully", user)
}

// Update godoc
// @Summary      Update a user account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "User ID"
// @Param        user  body      AdminUpdateUserRequest  true  "Account fields"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req AdminUpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userUC.UpdateUser(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id"), req.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User updated successfully", user)
}

// Delete godoc
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userUC.DeleteUser(c.Request.Context(), middleware.ViewerFrom(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User deleted successfully", nil)
}
