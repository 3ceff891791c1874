// Package exporter writes tabular reports about completed ingestions.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"perobatch/internal/services"
)

// reportHeader is the column layout of the ingestion report.
var reportHeader = []string{
	"upload_id", "plan_file", "batch_id", "samples", "records", "ingested_at",
}

// CSVWriter writes ingestion reports as CSV files.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a CSV report writer.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_exporter"))}
}

// WriteIngestReport writes one row per ingested plan to filePath.
func (w *CSVWriter) WriteIngestReport(filePath string, summaries []*services.IngestSummary) error {
	w.logger.Info("writing ingestion report",
		slog.String("file_path", filePath),
		slog.Int("plans", len(summaries)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(reportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range summaries {
		record := []string{
			s.UploadID,
			s.PlanFile,
			s.BatchID,
			strconv.Itoa(len(s.SampleIDs)),
			strconv.Itoa(len(s.References)),
			s.IngestedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record for %s: %w", s.UploadID, err)
		}
	}
	return writer.Error()
}
