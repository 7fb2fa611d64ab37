package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestGinMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		log, logs := observed()
		router := gin.New()
		router.Use(GinMiddleware(log))
		router.GET("/x", func(c *gin.Context) { c.Status(tt.status) })

		serve(router, "/x?page=2")

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, tt.level, entry.Level)
		assert.Equal(t, int64(tt.status), entry.ContextMap()["status"])
		assert.Equal(t, "page=2", entry.ContextMap()["query"])
	}
}

func TestGinMiddleware_RequestAndCompanyFields(t *testing.T) {
	log, logs := observed()
	companyID := uuid.New()

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-42")
		c.Set(GinCompanyIDKey, companyID)
	})
	router.Use(GinMiddleware(log))
	router.GET("/x", func(c *gin.Context) {
		assert.Equal(t, "req-42", GetRequestID(c.Request.Context()))
		GetGinLogger(c).Info("inside handler")
		c.Status(http.StatusNoContent)
	})

	serve(router, "/x")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])
	assert.Equal(t, companyID.String(), logs.All()[1].ContextMap()["company_id"])
}

func TestRecovery(t *testing.T) {
	log, logs := observed()
	router := gin.New()
	router.Use(Recovery(log))
	router.GET("/boom", func(c *gin.Context) { panic("ledger out of balance") })

	w := serve(router, "/boom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Panic recovered", logs.All()[0].Message)
}

func TestGetGinLogger_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))

	c.Set(GinLoggerKey, "not a logger")
	assert.IsType(t, &zap.Logger{}, GetGinLogger(c))
}
