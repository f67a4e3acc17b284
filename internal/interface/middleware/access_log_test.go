package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessLog(t *testing.T) {
	logger, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(RequestIDMiddleware(), AccessLog(logger))
	r.GET("/api/blogs/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/blogs/abc", nil))

	require.Len(t, hook.Entries, 1)
	e := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, e.Level)
	assert.Equal(t, "/api/blogs/:id", e.Data["path"])
	assert.Equal(t, http.StatusNotFound, e.Data["status"])
	assert.NotEmpty(t, e.Data["request_id"])
}
