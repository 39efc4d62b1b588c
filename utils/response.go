package utils

import (
	"math"
	"time"

	"github.com/gin-gonic/gin"
)

// PaginationMeta describes a page of a list response.
type PaginationMeta struct {
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Pages int64 `json:"pages"`
}

// Meta builds pagination metadata for a total row count.
func (f *QueryFeatures) Meta(total int64) PaginationMeta {
	return PaginationMeta{
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
		Pages: int64(math.Ceil(float64(total) / float64(f.Limit))),
	}
}

// SendSuccess writes the common response envelope.
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"status":    "success",
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// FilterFields copies only whitelisted keys from a request map. Used by
// update endpoints that must not accept arbitrary fields.
func FilterFields(obj map[string]interface{}, allowed ...string) map[string]interface{} {
	filtered := make(map[string]interface{})
	for _, field := range allowed {
		if val, ok := obj[field]; ok {
			filtered[field] = val
		}
	}
	return filtered
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
