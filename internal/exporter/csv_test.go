package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perobatch/internal/services"
)

func TestWriteIngestReport(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "reports", "ingest_report.csv")
	summaries := []*services.IngestSummary{
		{
			UploadID:   "upload-1",
			PlanFile:   "batch.xlsx",
			BatchID:    "KIT_AB_2024",
			SampleIDs:  []string{"KIT_AB_2024_0", "KIT_AB_2024_1"},
			References: []string{"r1", "r2", "r3"},
			IngestedAt: time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC),
		},
	}

	require.NoError(t, NewCSVWriter(nil).WriteIngestReport(filePath, summaries))

	file, err := os.Open(filePath)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, reportHeader, rows[0])
	assert.Equal(t, []string{"upload-1", "batch.xlsx", "KIT_AB_2024", "2", "3", "2026-08-26T10:30:00Z"}, rows[1])
}

func TestWriteIngestReportEmpty(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "ingest_report.csv")
	require.NoError(t, NewCSVWriter(nil).WriteIngestReport(filePath, nil))

	file, err := os.Open(filePath)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, reportHeader, rows[0])
}
