package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perobatch/internal/files"
	"perobatch/internal/services"
	"perobatch/internal/shared/testutil"
)

func TestIngestPlansKeepsSuccessesOnFailure(t *testing.T) {
	dir := t.TempDir()
	testutil.SamplePlan(t, dir, "a_good.xlsx")
	testutil.WritePlanWorkbook(t, dir, "b_broken.xlsx",
		[]string{"Wrong Group"},
		[]string{"A"},
		[][]string{{"1"}})

	service, err := services.NewIngestService(t.TempDir(), nil, nil)
	require.NoError(t, err)

	plans, err := files.NewDiscovery(".").FindPlans(dir)
	require.NoError(t, err)
	require.Len(t, plans, 2)

	err = ingestPlans(context.Background(), service, plans, 1, slog.Default())
	require.Error(t, err)

	// The good plan's summary survives, so the report can list it.
	summaries := service.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, "a_good.xlsx", summaries[0].PlanFile)
}
