package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/feedbackhq/feedback-api/pkg/errors"
)

// Envelope is the common response contract: every payload carries a
// success flag, successful list responses add a count, and failures
// carry either a list of field messages or a single message string.
type Envelope struct {
	Success bool                   `json:"success"`
	Count   *int                   `json:"count,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
	Error   interface{}            `json:"error,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	envelope := Envelope{Success: true, Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// List sends a success response with an explicit item count.
func List(c *gin.Context, data interface{}, count int) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, Envelope{Success: true, Count: &count, Data: data})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error maps an error onto the envelope. Validation failures surface the
// per-field message list; everything else collapses to a generic message
// so internal detail never reaches the submitter.
func Error(c *gin.Context, err error) {
	c.Header("Cache-Control", "no-store")

	if v, ok := appErrors.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: v.Messages()})
		return
	}

	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, Envelope{Success: false, Error: appErr.Message})
}
