package apperrors

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler returns the central gin error middleware. Handlers attach
// errors with c.Error; this classifies the last one and renders the
// response envelope. Outside production the payload carries the raw
// message, stack and path for debugging.
func ErrorHandler(env string) gin.HandlerFunc {
	verbose := env != "production"

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr := Classify(err)

		if appErr.StatusCode >= http.StatusInternalServerError {
			zap.L().Error("Unhandled error",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err),
			)
		}

		body := gin.H{
			"status":    statusWord(appErr.StatusCode),
			"message":   appErr.Message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if verbose {
			body["error"] = err.Error()
			body["path"] = c.Request.URL.Path
			if appErr.StatusCode >= http.StatusInternalServerError {
				body["stack"] = string(debug.Stack())
			}
		}

		c.JSON(appErr.StatusCode, body)
		c.Abort()
	}
}

func statusWord(code int) string {
	if code >= 400 && code < 500 {
		return "fail"
	}
	return "error"
}
