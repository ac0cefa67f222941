package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feedbackhq/feedback-api/internal/models"
	"github.com/feedbackhq/feedback-api/internal/service"
	"github.com/feedbackhq/feedback-api/internal/view"
	appErrors "github.com/feedbackhq/feedback-api/pkg/errors"
	"github.com/feedbackhq/feedback-api/pkg/response"
)

type feedbackService interface {
	Submit(ctx context.Context, in models.SubmissionInput) (*models.Feedback, error)
	List(ctx context.Context) ([]models.Feedback, error)
	Stats(ctx context.Context) (models.StatsSnapshot, error)
	View(ctx context.Context, q view.Query) (view.Result, bool, error)
	Export(ctx context.Context, q view.Query, format string) (*service.ExportFile, error)
}

// FeedbackHandler wires the feedback service to HTTP routes.
type FeedbackHandler struct {
	feedback feedbackService
}

// NewFeedbackHandler constructs a FeedbackHandler.
func NewFeedbackHandler(feedback feedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// Create godoc
// @Summary Submit feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param payload body models.SubmissionInput true "Feedback payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /feedback [post]
func (h *FeedbackHandler) Create(c *gin.Context) {
	var in models.SubmissionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}

	record, err := h.feedback.Submit(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List all feedback, newest first
// @Tags Feedback
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	records, err := h.feedback.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, records, len(records))
}

// Stats godoc
// @Summary Aggregate feedback statistics
// @Tags Feedback
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /feedback/stats [get]
func (h *FeedbackHandler) Stats(c *gin.Context) {
	snapshot, err := h.feedback.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot)
}

// View godoc
// @Summary Filtered, sorted, paginated feedback view
// @Tags Feedback
// @Produce json
// @Param search query string false "Search text matched against name/email/message/rating"
// @Param sort query string false "Sort key (createdAt,rating,name)"
// @Param order query string false "Sort order (asc/desc)"
// @Param page query int false "Page number (1-indexed, 10 items per page)"
// @Success 200 {object} response.Envelope
// @Router /feedback/view [get]
func (h *FeedbackHandler) View(c *gin.Context) {
	result, cacheHit, err := h.feedback.View(c.Request.Context(), queryFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"cache_hit": cacheHit})
}

// Export godoc
// @Summary Download the filtered and sorted feedback set
// @Tags Feedback
// @Produce text/csv
// @Param search query string false "Search text"
// @Param sort query string false "Sort key (createdAt,rating,name)"
// @Param order query string false "Sort order (asc/desc)"
// @Param format query string false "File format (csv/pdf)"
// @Success 200 {file} file
// @Router /feedback/export [get]
func (h *FeedbackHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))

	file, err := h.feedback.Export(c.Request.Context(), queryFromRequest(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// queryFromRequest builds the view query tuple. Sort and search changes
// reset the page, so the page parameter is applied last.
func queryFromRequest(c *gin.Context) view.Query {
	q := view.DefaultQuery()

	if sortKey := c.Query("sort"); sortKey != "" {
		q = q.WithSort(view.SortKey(sortKey), view.SortOrder(strings.ToLower(c.DefaultQuery("order", "desc"))))
	}
	if search := c.Query("search"); search != "" {
		q = q.WithSearch(strings.TrimSpace(search))
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		q = q.WithPage(page)
	}

	return q.Normalized()
}
