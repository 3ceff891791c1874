package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perobatch/internal/dataprocessing"
	apierrors "perobatch/internal/errors"
	"perobatch/internal/shared/testutil"
)

func newTestService(t *testing.T) (*IngestService, string) {
	t.Helper()
	archiveDir := t.TempDir()
	service, err := NewIngestService(archiveDir, nil, nil)
	require.NoError(t, err)
	return service, archiveDir
}

func TestIngestFileArchivesPlan(t *testing.T) {
	service, archiveDir := newTestService(t)
	path := testutil.SamplePlan(t, t.TempDir(), "batch.xlsx")

	summary, err := service.IngestFile(context.Background(), path)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.UploadID)
	assert.Equal(t, "batch.xlsx", summary.PlanFile)
	assert.Equal(t, "KIT_AB_2024", summary.BatchID)
	assert.Len(t, summary.SampleIDs, 4)
	assert.Len(t, summary.References, 11)
	assert.Equal(t, map[string]int{
		dataprocessing.KindSubstrate:   2,
		dataprocessing.KindBatch:       1,
		dataprocessing.KindSample:      4,
		dataprocessing.KindCleaning:    1,
		dataprocessing.KindSpinCoating: 2,
		dataprocessing.KindEvaporation: 1,
	}, summary.RecordsByKind)
	assert.False(t, summary.IngestedAt.IsZero())

	uploadDir := filepath.Join(archiveDir, summary.UploadID)
	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	// 11 records plus the plan entry itself.
	assert.Len(t, entries, 12)

	// Every archive file wraps its record in a data envelope.
	raw, err := os.ReadFile(filepath.Join(uploadDir, "KIT_AB_2024.archive.json"))
	require.NoError(t, err)
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Contains(t, envelope, "data")

	// The plan entry lists all produced references.
	raw, err = os.ReadFile(filepath.Join(uploadDir, "batch.archive.json"))
	require.NoError(t, err)
	var planEntry struct {
		Data struct {
			ProcessedArchive []string `json:"processed_archive"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &planEntry))
	assert.Equal(t, summary.References, planEntry.Data.ProcessedArchive)
}

func TestIngestFileAllowsBlankSubstrateColumns(t *testing.T) {
	service, _ := newTestService(t)
	path := testutil.WritePlanWorkbook(t, t.TempDir(), "blank.xlsx",
		[]string{"Experiment Info", "", "", "", "", "", "Cleaning", ""},
		[]string{
			"Nomad ID", "Variation", "Sample dimension", "Sample area [cm^2]",
			"Substrate material", "Substrate conductive layer",
			"Solvent 1", "Time 1 [s]",
		},
		[][]string{
			{"KIT_X_1_0", "", "1x1 cm", "1", "glass", "ITO", "Acetone", "600"},
			{"KIT_X_1_1", "", "", "", "", "", "Acetone", "600"},
		})

	summary, err := service.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RecordsByKind[dataprocessing.KindSubstrate])
	assert.Equal(t, 2, summary.RecordsByKind[dataprocessing.KindSample])
}

func TestIngestFileAllowsGenericProcessWithoutName(t *testing.T) {
	service, _ := newTestService(t)
	path := testutil.WritePlanWorkbook(t, t.TempDir(), "generic.xlsx",
		[]string{"Experiment Info", "Generic Process", ""},
		[]string{"Nomad ID", "Name", "Notes"},
		[][]string{{"KIT_G_1_0", "", "stored in the dark for 48h"}})

	summary, err := service.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RecordsByKind[dataprocessing.KindGeneric])
}

func TestIngestFileRejectsInvalidPlan(t *testing.T) {
	service, _ := newTestService(t)

	// Workbook without an Experiment Info group cannot be parsed.
	path := testutil.WritePlanWorkbook(t, t.TempDir(), "broken.xlsx",
		[]string{"Some Other Group", ""},
		[]string{"A", "B"},
		[][]string{{"1", "2"}})

	_, err := service.IngestFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrPlanInvalid)
}

func TestIngestFileMissingFile(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.IngestFile(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrPlanInvalid)
}

func TestSummaryLookup(t *testing.T) {
	service, _ := newTestService(t)
	path := testutil.SamplePlan(t, t.TempDir(), "batch.xlsx")

	summary, err := service.IngestFile(context.Background(), path)
	require.NoError(t, err)

	found, err := service.Summary(summary.UploadID)
	require.NoError(t, err)
	assert.Equal(t, summary, found)

	_, err = service.Summary("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrPlanNotFound)
}

func TestSummariesListsAllIngestions(t *testing.T) {
	service, _ := newTestService(t)
	dir := t.TempDir()

	first, err := service.IngestFile(context.Background(), testutil.SamplePlan(t, dir, "a.xlsx"))
	require.NoError(t, err)
	second, err := service.IngestFile(context.Background(), testutil.SamplePlan(t, dir, "b.xlsx"))
	require.NoError(t, err)

	summaries := service.Summaries()
	require.Len(t, summaries, 2)
	ids := []string{summaries[0].UploadID, summaries[1].UploadID}
	assert.Contains(t, ids, first.UploadID)
	assert.Contains(t, ids, second.UploadID)
}
