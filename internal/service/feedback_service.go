package service

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/feedbackhq/feedback-api/internal/models"
	"github.com/feedbackhq/feedback-api/internal/stats"
	"github.com/feedbackhq/feedback-api/internal/validation"
	"github.com/feedbackhq/feedback-api/internal/view"
	appErrors "github.com/feedbackhq/feedback-api/pkg/errors"
	"github.com/feedbackhq/feedback-api/pkg/export"
)

type feedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	ListNewestFirst(ctx context.Context) ([]models.Feedback, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// viewCachePattern matches every memoized view payload. Creation of a
// record invalidates the whole pattern so readers never observe a view
// inconsistent with the committed record set.
const viewCachePattern = "feedback:view:*"

const exportDateLayout = "2006-01-02 15:04"

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// FeedbackService orchestrates submission, listing, aggregation, the
// derived view and exports.
type FeedbackService struct {
	repo      feedbackRepository
	validator *validator.Validate
	cache     *CacheService
	metrics   *MetricsService
	csv       csvRenderer
	pdf       pdfRenderer
	viewTTL   time.Duration
	logger    *zap.Logger
}

// FeedbackServiceParams groups constructor dependencies.
type FeedbackServiceParams struct {
	Repo      feedbackRepository
	Validator *validator.Validate
	Cache     *CacheService
	Metrics   *MetricsService
	CSV       csvRenderer
	PDF       pdfRenderer
	ViewTTL   time.Duration
	Logger    *zap.Logger
}

// NewFeedbackService constructs a FeedbackService with sane defaults.
func NewFeedbackService(params FeedbackServiceParams) *FeedbackService {
	if params.Validator == nil {
		params.Validator = validation.New()
	}
	if params.CSV == nil {
		params.CSV = export.NewCSVExporter()
	}
	if params.PDF == nil {
		params.PDF = export.NewPDFExporter()
	}
	if params.ViewTTL <= 0 {
		params.ViewTTL = 5 * time.Minute
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &FeedbackService{
		repo:      params.Repo,
		validator: params.Validator,
		cache:     params.Cache,
		metrics:   params.Metrics,
		csv:       params.CSV,
		pdf:       params.PDF,
		viewTTL:   params.ViewTTL,
		logger:    params.Logger,
	}
}

// Submit validates a candidate submission and persists it. Validation
// failures carry every violated field and never reach the store.
func (s *FeedbackService) Submit(ctx context.Context, in models.SubmissionInput) (*models.Feedback, error) {
	normalized, err := validation.Validate(s.validator, in)
	if err != nil {
		s.metrics.RecordSubmission("rejected")
		return nil, err
	}

	record := &models.Feedback{
		Name:    normalized.Name,
		Email:   normalized.Email,
		Message: normalized.Message,
		Rating:  normalized.Rating,
	}

	start := time.Now()
	if err := s.repo.Create(ctx, record); err != nil {
		s.metrics.RecordSubmission("failed")
		s.logger.Error("feedback create failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	s.metrics.ObserveDBQuery("feedback_create", time.Since(start))
	s.metrics.RecordSubmission("accepted")

	if err := s.cache.Invalidate(ctx, viewCachePattern); err != nil {
		s.logger.Warn("view cache invalidation failed", zap.Error(err))
	}

	return record, nil
}

// List returns every record, newest first.
func (s *FeedbackService) List(ctx context.Context) ([]models.Feedback, error) {
	return s.listAll(ctx)
}

// Stats recomputes the aggregate snapshot from the authoritative record
// set. The snapshot itself is never cached.
func (s *FeedbackService) Stats(ctx context.Context) (models.StatsSnapshot, error) {
	records, err := s.listAll(ctx)
	if err != nil {
		return models.StatsSnapshot{}, err
	}
	return stats.Aggregate(records), nil
}

// View derives the filtered, sorted, paginated subset for the query. A
// memoized payload may be served when the cache is enabled; the second
// return value reports a cache hit.
func (s *FeedbackService) View(ctx context.Context, q view.Query) (view.Result, bool, error) {
	q = q.Normalized()

	var cached view.Result
	if hit, err := s.cache.Get(ctx, q.CacheKey(), &cached); err == nil && hit {
		return cached, true, nil
	}

	records, err := s.listAll(ctx)
	if err != nil {
		return view.Result{}, false, err
	}

	result := view.Apply(records, q)
	_ = s.cache.Set(ctx, q.CacheKey(), result, s.viewTTL)
	return result, false, nil
}

// Export renders the filtered and sorted full set, not just the visible
// page, as a downloadable file.
func (s *FeedbackService) Export(ctx context.Context, q view.Query, format string) (*ExportFile, error) {
	records, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := view.ExportRows(records, q)
	dataset := export.Dataset{
		Headers: []string{"Name", "Email", "Message", "Rating", "Date"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, rec := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Name":    rec.Name,
			"Email":   rec.Email,
			"Message": rec.Message,
			"Rating":  strconv.Itoa(rec.Rating),
			"Date":    rec.CreatedAt.Format(exportDateLayout),
		})
	}

	switch format {
	case "", "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
		}
		return &ExportFile{Name: "feedback-export.csv", ContentType: "text/csv", Data: payload}, nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Feedback Export")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
		}
		return &ExportFile{Name: "feedback-export.pdf", ContentType: "application/pdf", Data: payload}, nil
	default:
		return nil, appErrors.New("INVALID_FORMAT", 400, "unsupported export format")
	}
}

func (s *FeedbackService) listAll(ctx context.Context) ([]models.Feedback, error) {
	start := time.Now()
	records, err := s.repo.ListNewestFirst(ctx)
	if err != nil {
		s.logger.Error("feedback list failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	s.metrics.ObserveDBQuery("feedback_list", time.Since(start))
	return records, nil
}
