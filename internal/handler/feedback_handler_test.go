package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackhq/feedback-api/internal/models"
	"github.com/feedbackhq/feedback-api/internal/service"
	"github.com/feedbackhq/feedback-api/internal/view"
	appErrors "github.com/feedbackhq/feedback-api/pkg/errors"
)

type fakeFeedbackService struct {
	submitRecord *models.Feedback
	submitErr    error
	listRecords  []models.Feedback
	listErr      error
	snapshot     models.StatsSnapshot
	statsErr     error
	viewResult   view.Result
	viewHit      bool
	viewErr      error
	exportFile   *service.ExportFile
	exportErr    error

	gotInput  models.SubmissionInput
	gotQuery  view.Query
	gotFormat string
}

func (f *fakeFeedbackService) Submit(_ context.Context, in models.SubmissionInput) (*models.Feedback, error) {
	f.gotInput = in
	return f.submitRecord, f.submitErr
}

func (f *fakeFeedbackService) List(_ context.Context) ([]models.Feedback, error) {
	return f.listRecords, f.listErr
}

func (f *fakeFeedbackService) Stats(_ context.Context) (models.StatsSnapshot, error) {
	return f.snapshot, f.statsErr
}

func (f *fakeFeedbackService) View(_ context.Context, q view.Query) (view.Result, bool, error) {
	f.gotQuery = q
	return f.viewResult, f.viewHit, f.viewErr
}

func (f *fakeFeedbackService) Export(_ context.Context, q view.Query, format string) (*service.ExportFile, error) {
	f.gotQuery = q
	f.gotFormat = format
	return f.exportFile, f.exportErr
}

func setupFeedbackRouter(svc *fakeFeedbackService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewFeedbackHandler(svc)

	feedback := router.Group("/api/feedback")
	feedback.POST("", h.Create)
	feedback.GET("", h.List)
	feedback.GET("/stats", h.Stats)
	feedback.GET("/view", h.View)
	feedback.GET("/export", h.Export)
	return router
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateFeedbackReturns201(t *testing.T) {
	svc := &fakeFeedbackService{
		submitRecord: &models.Feedback{
			ID:        "f1",
			Name:      "Jane Doe",
			Email:     "jane@example.com",
			Message:   "The dashboard is easy to use",
			Rating:    5,
			CreatedAt: time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC),
		},
	}
	router := setupFeedbackRouter(svc)

	payload := `{"name":"Jane Doe","email":"jane@example.com","message":"The dashboard is easy to use","rating":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "f1", data["id"])
	assert.Equal(t, float64(5), data["rating"])
	assert.NotEmpty(t, data["createdAt"])

	assert.Equal(t, "Jane Doe", svc.gotInput.Name)
	assert.Equal(t, 5, svc.gotInput.Rating)
}

func TestCreateFeedbackValidationFailure(t *testing.T) {
	validationErr := &appErrors.ValidationError{}
	validationErr.Add("name", "Please provide a name")
	validationErr.Add("rating", "Please add a rating between 1 and 5")
	svc := &fakeFeedbackService{submitErr: validationErr}
	router := setupFeedbackRouter(svc)

	payload := `{"email":"jane@example.com","message":"The dashboard is easy to use"}`
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])

	messages, ok := body["error"].([]interface{})
	require.True(t, ok, "validation failures carry a message list")
	assert.Contains(t, messages, "Please provide a name")
	assert.Contains(t, messages, "Please add a rating between 1 and 5")
}

func TestCreateFeedbackMalformedJSON(t *testing.T) {
	svc := &fakeFeedbackService{}
	router := setupFeedbackRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewBufferString(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestCreateFeedbackServerError(t *testing.T) {
	svc := &fakeFeedbackService{submitErr: appErrors.ErrInternal}
	router := setupFeedbackRouter(svc)

	payload := `{"name":"Jane Doe","email":"jane@example.com","message":"The dashboard is easy to use","rating":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Server Error", body["error"])
}

func TestListFeedback(t *testing.T) {
	svc := &fakeFeedbackService{
		listRecords: []models.Feedback{
			{ID: "f2", Name: "Bob", Rating: 2},
			{ID: "f1", Name: "Alice", Rating: 5},
		},
	}
	router := setupFeedbackRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/feedback", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])

	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "f2", first["id"])
}

func TestListFeedbackServerError(t *testing.T) {
	svc := &fakeFeedbackService{listErr: appErrors.ErrInternal}
	router := setupFeedbackRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/feedback", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Server Error", body["error"])
}

func TestStatsEndpoint(t *testing.T) {
	svc := &fakeFeedbackService{
		snapshot: models.StatsSnapshot{Total: 4, AverageRating: 3.5, Positive: 2, Negative: 1},
	}
	router := setupFeedbackRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["total"])
	assert.Equal(t, 3.5, data["averageRating"])
	assert.Equal(t, float64(2), data["positive"])
	assert.Equal(t, float64(1), data["negative"])
}

func TestViewQueryParsing(t *testing.T) {
	svc := &fakeFeedbackService{viewResult: view.Result{Items: []models.Feedback{}, Page: 1}}
	router := setupFeedbackRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/view?search=alice&sort=rating&order=asc&page=3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", svc.gotQuery.Search)
	assert.Equal(t, view.SortByRating, svc.gotQuery.SortKey)
	assert.Equal(t, view.OrderAsc, svc.gotQuery.SortOrder)
	assert.Equal(t, 3, svc.gotQuery.Page)
}

func TestViewDefaultsAndMeta(t *testing.T) {
	svc := &fakeFeedbackService{
		viewResult: view.Result{Items: []models.Feedback{}, TotalMatched: 0, TotalPages: 0, Page: 1},
		viewHit:    true,
	}
	router := setupFeedbackRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/view", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, view.SortByCreatedAt, svc.gotQuery.SortKey)
	assert.Equal(t, view.OrderDesc, svc.gotQuery.SortOrder)
	assert.Equal(t, 1, svc.gotQuery.Page)

	body := decodeBody(t, rec)
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, true, meta["cache_hit"])
}

func TestViewClampsInvalidParameters(t *testing.T) {
	svc := &fakeFeedbackService{viewResult: view.Result{Items: []models.Feedback{}, Page: 1}}
	router := setupFeedbackRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/view?sort=bogus&order=sideways&page=-4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, view.SortByCreatedAt, svc.gotQuery.SortKey)
	assert.Equal(t, view.OrderDesc, svc.gotQuery.SortOrder)
	assert.Equal(t, 1, svc.gotQuery.Page)
}

func TestExportCSVDownload(t *testing.T) {
	svc := &fakeFeedbackService{
		exportFile: &service.ExportFile{
			Name:        "feedback-export.csv",
			ContentType: "text/csv",
			Data:        []byte("Name,Email,Message,Rating,Date\n"),
		},
	}
	router := setupFeedbackRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/export?search=alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="feedback-export.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "csv", svc.gotFormat)
	assert.Equal(t, "alice", svc.gotQuery.Search)
	assert.Contains(t, rec.Body.String(), "Name,Email,Message,Rating,Date")
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := &fakeFeedbackService{exportErr: appErrors.New("INVALID_FORMAT", http.StatusBadRequest, "unsupported export format")}
	router := setupFeedbackRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/export?format=xlsx", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "xlsx", svc.gotFormat)
	body := decodeBody(t, rec)
	assert.Equal(t, "unsupported export format", body["error"])
}
