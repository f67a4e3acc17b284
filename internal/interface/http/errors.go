package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/blogilista/internal/application"
	"github.com/oksasatya/blogilista/pkg/response"
	"github.com/oksasatya/blogilista/pkg/validation"
)

// writeError maps application errors onto status codes. Internal causes are never exposed.
func writeError(c *gin.Context, err error) {
	var verr *application.ValidationError
	var aerr *application.AuthenticationError
	switch {
	case errors.As(err, &verr):
		response.Error(c, http.StatusBadRequest, verr.Reason, nil)
	case errors.As(err, &aerr):
		response.Error(c, http.StatusUnauthorized, aerr.Reason, nil)
	case errors.Is(err, application.ErrBlogNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	default:
		response.Error(c, http.StatusInternalServerError, "something went wrong", nil)
	}
}

// bindJSON decodes and validates the body into req. An empty body decodes as {}.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}
