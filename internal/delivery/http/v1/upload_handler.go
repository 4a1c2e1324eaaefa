package v1

import (
	"io"
	"strconv"
	"net/http"

	"go-recruitment-platform/internal/delivery/http/middleware"
	"go-recruitment-platform/internal/delivery/http/response"
	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadUC domain.UploadUsecase
	maxBytes int64
}

// NewUploadHandler registers upload routes behind mw. maxBytes bounds how much
// of a multipart file is read before the usecase rejects it as too large.
func NewUploadHandler(r *gin.RouterGroup, uploadUC domain.UploadUsecase, maxBytes int64, mw ...gin.HandlerFunc) {
	handler := &UploadHandler{uploadUC: uploadUC, maxBytes: maxBytes}

	uploads := r.Group("/uploads", mw...)
	{
		uploads.POST("/cv", handler.upload(domain.FileTypeCV))
		uploads.POST("/image", handler.upload(domain.FileTypeImage))
		uploads.GET("/validate", handler.Validate)
		uploads.DELETE("/:fileType/:fileName", handler.Delete)
	}
}

// Upload godoc
// @Summary      Upload a CV or an image
// @Description  CVs accept PDF and Word documents. Images are downscaled and stored as JPEG. Files are malware scanned when a scanner is configured.
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to upload"
// @Success      201   {object}  response.Response{data=domain.StoredFile}
// @Failure      400   {object}  response.Response
// @Failure      413   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Failure      503   {object}  response.Response
// @Security     BearerAuth
// @Router       /uploads/cv [post]
// @Router       /uploads/image [post]
func (h *UploadHandler) upload(fileType domain.FileType) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			c.Error(apperror.BadRequest("No file uploaded"))
			return
		}

		file, err := header.Open()
		if err != nil {
			c.Error(apperror.BadRequest("Failed to read uploaded file"))
			return
		}
		defer file.Close()

		limit := h.maxBytes
		if limit <= 0 {
			limit = header.Size
		}
		data, err := io.ReadAll(io.LimitReader(file, limit+1))
		if err != nil {
			c.Error(apperror.BadRequest("Failed to read uploaded file"))
			return
		}

		stored, err := h.uploadUC.Upload(c.Request.Context(), middleware.ViewerFrom(c), fileType, header.Filename, data)
		if err != nil {
			c.Error(err)
			return
		}
		response.Success(c, http.StatusCreated, "File uploaded successfully", stored)
	}
}

// Delete godoc
// @Summary      Delete an uploaded file
// @Tags         uploads
// @Produce      json
// @Param        fileType  path  string  true  "cv or image"
// @Param        fileName  path  string  true  "Stored file name"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Security     BearerAuth
// @Router       /uploads/{fileType}/{fileName} [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	err := h.uploadUC.Delete(c.Request.Context(), middleware.ViewerFrom(c), domain.FileType(c.Param("fileType")), c.Param("fileName"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "File deleted successfully", nil)
}

// Validate godoc
// @Summary      Check an upload before sending it
// @Description  Checks the file type, extension and size without reading content
// @Tags         uploads
// @Produce      json
// @Param        fileType  query  string  true  "cv or image"
// @Param        fileName  query  string  true  "Original file name"
// @Param        fileSize  query  int     true  "Size in bytes"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Security     BearerAuth
// @Router       /uploads/validate [get]
func (h *UploadHandler) Validate(c *gin.Context) {
	size, err := strconv.ParseInt(c.Query("fileSize"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("fileSize must be a number of bytes"))
		return
	}
	err = h.uploadUC.Check(c.Request.Context(), middleware.ViewerFrom(c), domain.FileType(c.Query("fileType")), c.Query("fileName"), size)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "File is valid", nil)
}
