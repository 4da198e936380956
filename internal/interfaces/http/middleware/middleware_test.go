package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complytrack/complytrack/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	log := testutil.NewMockLogger()
	r := gin.New()
	r.Use(RequestID(), Recovery(log))
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, log.HasEntry("error", "handler panicked"))
}

func TestRequestLoggerLevels(t *testing.T) {
	log := testutil.NewMockLogger()
	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/bad", "/fail"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.True(t, log.HasEntry("info", "request served"))
	require.True(t, log.HasEntry("warn", "request rejected"))
	require.True(t, log.HasEntry("error", "request failed"))

	served := log.EntriesAt("info")[0]
	assert.Equal(t, "/ok", served.Field("path"))
	assert.NotEmpty(t, served.Field("request_id"))
}
