package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/pkg/errors"
	"github.com/complytrack/complytrack/pkg/types/common"
)

// Recovery converts a handler panic into a 500 response instead of tearing
// down the server.
func Recovery(log logging.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("handler panicked",
					logging.String("request_id", GetRequestID(c)),
					logging.String("path", c.Request.URL.Path),
					logging.Any("panic", r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, common.APIResponse[any]{
					Success: false,
					Error: &common.ErrorDetail{
						Code:    string(errors.ErrCodeInternal),
						Message: fmt.Sprintf("internal error: %v", r),
					},
					RequestID: GetRequestID(c),
					Timestamp: time.Now().UTC(),
				})
			}
		}()
		c.Next()
	}
}
