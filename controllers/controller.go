package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopswift-api/apperrors"
)

// fail pushes an error into the gin error chain for the central handler
// and stops the pipeline.
func fail(c *gin.Context, err error) {
	_ = c.Error(apperrors.Classify(err))
	c.Abort()
}

// uuidParam parses a path parameter as a UUID, failing the request with a
// 400 when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, apperrors.BadRequest("Invalid "+name+" parameter"))
		return uuid.Nil, false
	}
	return id, true
}
