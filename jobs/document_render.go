package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/verandameister/quotedesk/internal/jobs"
	"github.com/verandameister/quotedesk/internal/quotes"
	"github.com/verandameister/quotedesk/internal/shared"
	"github.com/verandameister/quotedesk/report"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// PDFRenderer produces PDF bytes for a quote.
type PDFRenderer interface {
	PDF(ctx context.Context, q quotes.Quote) ([]byte, error)
}

// PDFArchive stores rendered PDFs.
type PDFArchive interface {
	Save(q quotes.Quote, pdf []byte) (string, error)
}

// DocumentRenderJob renders a quote PDF and writes it to the archive.
type DocumentRenderJob struct {
	Quotes   report.QuoteSource
	Renderer PDFRenderer
	Archive  PDFArchive
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewDocumentRenderJob wires dependencies for the render handler.
func NewDocumentRenderJob(source report.QuoteSource, renderer PDFRenderer, archive PDFArchive, logger *slog.Logger, metrics *jobmetrics.Metrics) *DocumentRenderJob {
	return &DocumentRenderJob{
		Quotes:   source,
		Renderer: renderer,
		Archive:  archive,
		Logger:   logger,
		Metrics:  metrics,
	}
}

// Handle processes document:render tasks. Unknown quotes and malformed
// payloads are not retried.
func (j *DocumentRenderJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Quotes == nil || j.Renderer == nil || j.Archive == nil {
		return errors.New("document render: handler not configured")
	}
	var payload DocumentRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || strings.TrimSpace(payload.QuoteID) == "" {
		return fmt.Errorf("document render: bad payload: %w", asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskDocumentRender)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("quote_id", payload.QuoteID))
	q, err := j.Quotes.Get(ctx, payload.QuoteID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			logger.Warn("document render skipped, quote not found")
			return fmt.Errorf("document render: %w: %w", err, asynq.SkipRetry)
		}
		return err
	}
	pdf, err := j.Renderer.PDF(ctx, q)
	if err != nil {
		if errors.Is(err, report.ErrPDFUnavailable) {
			return fmt.Errorf("document render: %w: %w", err, asynq.SkipRetry)
		}
		logger.Error("document render failed", slog.Any("error", err))
		return err
	}
	path, err := j.Archive.Save(q, pdf)
	if err != nil {
		return err
	}
	logger.Info("document archived", slog.String("path", path), slog.String("kind", report.Kind(q)), slog.Int("bytes", len(pdf)))
	return nil
}

func (j *DocumentRenderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *DocumentRenderJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
