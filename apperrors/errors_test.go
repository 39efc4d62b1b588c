package apperrors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func decodeErr(t *testing.T, payload string) error {
	t.Helper()
	var dst struct {
		ProductID string `json:"product_id"`
	}
	err := json.Unmarshal([]byte(payload), &dst)
	assert.Error(t, err)
	return err
}

func TestClassify(t *testing.T) {
	t.Run("passes an AppError through unchanged", func(t *testing.T) {
		original := NotFound("Order not found")
		assert.Equal(t, original, Classify(original))
	})

	t.Run("maps missing documents to 404", func(t *testing.T) {
		appErr := Classify(mongo.ErrNoDocuments)
		assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	})

	t.Run("malformed JSON is a client error", func(t *testing.T) {
		appErr := Classify(decodeErr(t, `{"product_id":`))
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	})

	t.Run("wrong field type is a client error naming the field", func(t *testing.T) {
		appErr := Classify(decodeErr(t, `{"product_id": 42}`))
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
		assert.Contains(t, appErr.Message, "product_id")
	})

	t.Run("empty and truncated bodies are client errors", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, Classify(io.EOF).StatusCode)
		assert.Equal(t, http.StatusBadRequest, Classify(io.ErrUnexpectedEOF).StatusCode)
	})

	t.Run("unknown errors stay opaque 500s", func(t *testing.T) {
		appErr := Classify(errors.New("connection reset"))
		assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
		assert.Equal(t, "Something went wrong", appErr.Message)
	})
}
