// Package handlers implements the admin HTTP endpoints of the engine.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/complytrack/complytrack/internal/interfaces/http/middleware"
	"github.com/complytrack/complytrack/pkg/errors"
	"github.com/complytrack/complytrack/pkg/types/common"
)

// respond writes the standard success envelope.
func respond(c *gin.Context, status int, data any) {
	c.JSON(status, common.APIResponse[any]{
		Success:   true,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// respondError maps an application error to a status code and writes the
// standard error envelope.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Internal detail stays in the logs.
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, common.APIResponse[any]{
		Success: false,
		Error: &common.ErrorDetail{
			Code:    string(errors.GetCode(err)),
			Message: msg,
		},
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsValidation(err), errors.IsCode(err, errors.ErrCodeFrequencyUnsupported):
		return http.StatusBadRequest
	case errors.IsConflict(err):
		return http.StatusConflict
	case errors.IsCode(err, errors.ErrCodeInvalidState):
		return http.StatusConflict
	case errors.IsCode(err, errors.ErrCodeServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.IsCode(err, errors.ErrCodeTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// parsePagination extracts page and page_size query parameters.
func parsePagination(c *gin.Context) common.Pagination {
	p := common.Pagination{Page: 1, PageSize: 20}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := c.Query("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			p.PageSize = n
		}
	}
	return p
}

// parseBool reads a boolean query parameter, defaulting when absent or
// malformed.
func parseBool(c *gin.Context, name string, def bool) bool {
	v := c.Query(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
