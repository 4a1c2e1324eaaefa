package v1

import (
	"strconv"
	"strings"

	"go-recruitment-platform/pkg/apperror"
	"go-recruitment-platform/pkg/validation"

	"github.com/gin-gonic/gin"
)

// pageParams reads page and page_size (pageSize is accepted too). Values are
// clamped by the usecases.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	sizeParam := c.Query("page_size")
	if sizeParam == "" {
		sizeParam = c.Query("pageSize")
	}
	pageSize, _ := strconv.Atoi(sizeParam)
	return page, pageSize
}

// bindJSON binds the request body and reports validation failures as a
// single 400 error.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.Error(apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; ")))
		return false
	}
	return true
}
