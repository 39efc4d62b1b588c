package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"shopswift-api/apperrors"
)

func limitedRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorHandler("test"))
	r.GET("/ping", handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimit(t *testing.T) {
	t.Run("rejects requests over the burst with 429", func(t *testing.T) {
		r := limitedRouter(RateLimit(1, time.Hour, 1))

		first := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(first, req)
		assert.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		r.ServeHTTP(second, req)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})

	t.Run("zeroed configuration does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			r := limitedRouter(RateLimit(0, time.Minute, 0))
			recorder := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
			r.ServeHTTP(recorder, req)
			assert.Equal(t, http.StatusOK, recorder.Code)
		})
	})
}
