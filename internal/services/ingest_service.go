// Package services holds the application services shared by the CLI and
// the HTTP surface.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"perobatch/internal/archive"
	"perobatch/internal/dataprocessing"
	apierrors "perobatch/internal/errors"
	"perobatch/internal/infrastructure"
	"perobatch/internal/validation"
	"perobatch/pkg/contracts/domain"
)

// IngestSummary describes the outcome of ingesting one experiment plan.
type IngestSummary struct {
	UploadID      string         `json:"upload_id"`
	PlanFile      string         `json:"plan_file"`
	BatchID       string         `json:"batch_id"`
	SampleIDs     []string       `json:"sample_ids"`
	RecordsByKind map[string]int `json:"records_by_kind"`
	References    []string       `json:"references"`
	IngestedAt    time.Time      `json:"ingested_at"`
}

// ingestMetrics holds the OpenTelemetry instruments of the service.
type ingestMetrics struct {
	plansTotal    metric.Int64Counter
	planFailures  metric.Int64Counter
	recordsTotal  metric.Int64Counter
	ingestSeconds metric.Float64Histogram
}

func newIngestMetrics(meter metric.Meter) (*ingestMetrics, error) {
	m := &ingestMetrics{}
	var err error
	if m.plansTotal, err = meter.Int64Counter("perobatch_plans_ingested_total",
		metric.WithDescription("Experiment plans ingested successfully")); err != nil {
		return nil, err
	}
	if m.planFailures, err = meter.Int64Counter("perobatch_plan_failures_total",
		metric.WithDescription("Experiment plans rejected during ingestion")); err != nil {
		return nil, err
	}
	if m.recordsTotal, err = meter.Int64Counter("perobatch_records_archived_total",
		metric.WithDescription("Archive entries written, by record kind")); err != nil {
		return nil, err
	}
	if m.ingestSeconds, err = meter.Float64Histogram("perobatch_ingest_duration_seconds",
		metric.WithDescription("Wall time per plan ingestion")); err != nil {
		return nil, err
	}
	return m, nil
}

// IngestService runs the full pipeline for one plan: load, parse,
// validate, archive. Summaries of completed ingestions are kept in
// memory for the API to report on.
type IngestService struct {
	parser     *dataprocessing.Parser
	validator  *validation.Validator
	archiveDir string
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *ingestMetrics

	mu        sync.RWMutex
	summaries map[string]*IngestSummary
}

// NewIngestService creates the ingestion service. providers may be nil
// in tests; tracing and metrics are then disabled.
func NewIngestService(archiveDir string, logger *slog.Logger, providers *infrastructure.OTelProviders) (*IngestService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &IngestService{
		parser:     dataprocessing.NewParser(logger),
		validator:  validation.New(),
		archiveDir: archiveDir,
		logger:     logger.With(slog.String("component", "ingest_service")),
		summaries:  make(map[string]*IngestSummary),
	}
	if providers != nil {
		s.tracer = providers.Tracer
		m, err := newIngestMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create ingest metrics: %w", err)
		}
		s.metrics = m
	}
	return s, nil
}

// IngestFile ingests the plan workbook at path and returns its summary.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*IngestSummary, error) {
	start := time.Now()
	uploadID := uuid.New().String()

	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "plan.ingest",
			trace.WithAttributes(
				attribute.String("plan.file", filepath.Base(path)),
				attribute.String("plan.upload_id", uploadID),
			))
		defer span.End()
		defer func() {
			if err := recover(); err != nil {
				span.SetStatus(codes.Error, fmt.Sprint(err))
				panic(err)
			}
		}()
	}

	summary, err := s.ingest(ctx, path, uploadID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.planFailures.Add(ctx, 1)
		}
		if span := trace.SpanFromContext(ctx); span != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.plansTotal.Add(ctx, 1)
		s.metrics.ingestSeconds.Record(ctx, time.Since(start).Seconds())
		for kind, n := range summary.RecordsByKind {
			s.metrics.recordsTotal.Add(ctx, int64(n),
				metric.WithAttributes(attribute.String("kind", kind)))
		}
	}

	s.mu.Lock()
	s.summaries[uploadID] = summary
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "plan ingested",
		slog.String("plan_file", summary.PlanFile),
		slog.String("upload_id", uploadID),
		slog.String("batch_id", summary.BatchID),
		slog.Int("samples", len(summary.SampleIDs)),
		slog.Int("records", len(summary.References)),
		slog.Duration("elapsed", time.Since(start)))

	return summary, nil
}

func (s *IngestService) ingest(ctx context.Context, path, uploadID string) (*IngestSummary, error) {
	result, err := s.parser.ParseFile(path, uploadID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apierrors.ErrPlanInvalid, err)
	}

	for _, rec := range result.Records {
		if err := s.validator.Struct(rec.Data); err != nil {
			return nil, fmt.Errorf("%w: record %s failed validation: %s", apierrors.ErrPlanInvalid, rec.Key, err)
		}
	}

	store := archive.NewStore(filepath.Join(s.archiveDir, uploadID), uploadID, s.logger)
	summary := &IngestSummary{
		UploadID:      uploadID,
		PlanFile:      filepath.Base(path),
		BatchID:       result.BatchID,
		SampleIDs:     result.SampleIDs,
		RecordsByKind: make(map[string]int),
		IngestedAt:    time.Now().UTC(),
	}
	for _, rec := range result.Records {
		ref, err := store.Write(rec.Key, rec.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to archive record %s: %w", rec.Key, err)
		}
		summary.References = append(summary.References, ref)
		summary.RecordsByKind[rec.Kind]++
	}

	// The plan file gets its own entry carrying the produced references.
	planKey := strings.TrimSuffix(summary.PlanFile, filepath.Ext(summary.PlanFile))
	if _, err := store.Write(planKey, domain.ProcessedPlan{ProcessedArchive: summary.References}); err != nil {
		return nil, fmt.Errorf("failed to archive plan entry: %w", err)
	}

	return summary, nil
}

// Summary returns the ingestion summary for an upload ID.
func (s *IngestService) Summary(uploadID string) (*IngestSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[uploadID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apierrors.ErrPlanNotFound, uploadID)
	}
	return summary, nil
}

// Summaries lists all completed ingestions, newest first.
func (s *IngestService) Summaries() []*IngestSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*IngestSummary, 0, len(s.summaries))
	for _, summary := range s.summaries {
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].IngestedAt.After(out[j].IngestedAt)
	})
	return out
}
