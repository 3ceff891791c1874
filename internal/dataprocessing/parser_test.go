package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perobatch/internal/archive"
	"perobatch/internal/shared/testutil"
	"perobatch/pkg/contracts/domain"
)

const testUploadID = "upload-test"

func parseSamplePlan(t *testing.T) *ParseResult {
	t.Helper()
	path := testutil.SamplePlan(t, t.TempDir(), "batch.xlsx")
	result, err := NewParser(nil).ParseFile(path, testUploadID)
	require.NoError(t, err)
	return result
}

func recordByKey(t *testing.T, result *ParseResult, key string) Record {
	t.Helper()
	for _, rec := range result.Records {
		if rec.Key == key {
			return rec
		}
	}
	t.Fatalf("no record with key %q", key)
	return Record{}
}

func kindCounts(result *ParseResult) map[string]int {
	counts := make(map[string]int)
	for _, rec := range result.Records {
		counts[rec.Kind]++
	}
	return counts
}

func TestParseSamplePlanRecordSet(t *testing.T) {
	result := parseSamplePlan(t)

	assert.Equal(t, "KIT_AB_2024", result.BatchID)
	assert.Equal(t, []string{"KIT_AB_2024_0", "KIT_AB_2024_1", "KIT_AB_2024_2", "KIT_AB_2024_3"}, result.SampleIDs)

	assert.Equal(t, map[string]int{
		KindSubstrate:   2,
		KindBatch:       1,
		KindSample:      4,
		KindCleaning:    1,
		KindSpinCoating: 2,
		KindEvaporation: 1,
	}, kindCounts(result))

	// Substrates are archived before everything else.
	assert.Equal(t, KindSubstrate, result.Records[0].Kind)
}

func TestSubstrateDeduplication(t *testing.T) {
	result := parseSamplePlan(t)

	sub := recordByKey(t, result, "0_substrate").Data.(domain.Substrate)
	assert.Equal(t, "Substrate 1x1 cm glass ITO", sub.Name)
	assert.Equal(t, "glass", sub.SubstrateMaterial)
	assert.Equal(t, []string{"ITO"}, sub.ConductingMaterial)
	require.NotNil(t, sub.SolarCellAreaCm2)
	assert.InDelta(t, 1.0, *sub.SolarCellAreaCm2, 1e-9)

	second := recordByKey(t, result, "2_substrate").Data.(domain.Substrate)
	assert.Equal(t, []string{"FTO"}, second.ConductingMaterial)
}

func TestSampleSubstrateCrossReferences(t *testing.T) {
	result := parseSamplePlan(t)

	first := recordByKey(t, result, "KIT_AB_2024_0").Data.(domain.Sample)
	assert.Equal(t, archive.Reference(testUploadID, "0_substrate.archive.json"), first.Substrate)
	assert.Equal(t, "reference", first.Description)

	// Rows 2 and 3 share the FTO substrate entry.
	third := recordByKey(t, result, "KIT_AB_2024_2").Data.(domain.Sample)
	fourth := recordByKey(t, result, "KIT_AB_2024_3").Data.(domain.Sample)
	assert.Equal(t, archive.Reference(testUploadID, "2_substrate.archive.json"), third.Substrate)
	assert.Equal(t, third.Substrate, fourth.Substrate)
}

func TestSampleWithBlankSubstrateColumns(t *testing.T) {
	path := testutil.WritePlanWorkbook(t, t.TempDir(), "blank.xlsx",
		[]string{"Experiment Info", "", "", "", "", ""},
		[]string{
			"Nomad ID", "Variation", "Sample dimension", "Sample area [cm^2]",
			"Substrate material", "Substrate conductive layer",
		},
		[][]string{
			{"KIT_X_1_0", "", "1x1 cm", "1", "glass", "ITO"},
			{"KIT_X_1_1", "", "", "", "", ""},
		})

	result, err := NewParser(nil).ParseFile(path, testUploadID)
	require.NoError(t, err)

	// Only the first row produces a substrate entry; the blank row's
	// sample carries an empty reference instead of failing the plan.
	assert.Equal(t, 1, kindCounts(result)[KindSubstrate])
	first := recordByKey(t, result, "KIT_X_1_0").Data.(domain.Sample)
	assert.Equal(t, archive.Reference(testUploadID, "0_substrate.archive.json"), first.Substrate)
	second := recordByKey(t, result, "KIT_X_1_1").Data.(domain.Sample)
	assert.Empty(t, second.Substrate)
}

func TestBatchReferencesAllSamples(t *testing.T) {
	result := parseSamplePlan(t)

	batch := recordByKey(t, result, "KIT_AB_2024").Data.(domain.Batch)
	assert.Equal(t, "KIT_AB_2024", batch.LabID)
	require.Len(t, batch.Entities, 4)
	assert.Equal(t, "KIT_AB_2024_0", batch.Entities[0].LabID)
	assert.Equal(t, archive.Reference(testUploadID, "KIT_AB_2024_0.archive.json"), batch.Entities[0].Reference)
}

func TestCleaningSharedByAllSamples(t *testing.T) {
	result := parseSamplePlan(t)

	cleaning := recordByKey(t, result, "1_0_cleaning").Data.(domain.Cleaning)
	require.Len(t, cleaning.Samples, 4)
	assert.Equal(t, "GB1", cleaning.Location)

	require.Len(t, cleaning.SolutionCleaning, 1)
	bath := cleaning.SolutionCleaning[0]
	assert.Equal(t, "Acetone", bath.Solvent.Name)
	assert.InDelta(t, 600, *bath.TimeS, 1e-9)
	assert.InDelta(t, 40, *bath.TemperatureC, 1e-9)

	require.Len(t, cleaning.UVCleaning, 1)
	assert.InDelta(t, 300, *cleaning.UVCleaning[0].TimeS, 1e-9)

	require.Len(t, cleaning.PlasmaCleaning, 1)
	plasma := cleaning.PlasmaCleaning[0]
	assert.InDelta(t, 120, *plasma.TimeS, 1e-9)
	assert.InDelta(t, 50, *plasma.PowerW, 1e-9)
	assert.Equal(t, "O2", plasma.PlasmaType)
}

func TestSpinCoatingVariantsSplitSamples(t *testing.T) {
	result := parseSamplePlan(t)

	first := recordByKey(t, result, "2_0_spin_coating_MAPbI3").Data.(domain.SpinCoating)
	second := recordByKey(t, result, "2_2_spin_coating_MAPbI3").Data.(domain.SpinCoating)

	require.Len(t, first.Samples, 2)
	assert.Equal(t, "KIT_AB_2024_0", first.Samples[0].LabID)
	assert.Equal(t, "KIT_AB_2024_1", first.Samples[1].LabID)
	require.Len(t, second.Samples, 2)
	assert.Equal(t, "KIT_AB_2024_2", second.Samples[0].LabID)

	assert.Equal(t, "spin coating MAPbI3", first.Name)
	assert.Equal(t, 2, first.Position)
	require.Len(t, first.Layers, 1)
	assert.Equal(t, "Absorber", first.Layers[0].Type)
}

func TestSpinCoatingUnitConversions(t *testing.T) {
	result := parseSamplePlan(t)
	spin := recordByKey(t, result, "2_0_spin_coating_MAPbI3").Data.(domain.SpinCoating)

	require.Len(t, spin.Solution, 1)
	solution := spin.Solution[0]
	require.NotNil(t, solution.VolumeMl)
	assert.InDelta(t, 0.1, *solution.VolumeMl, 1e-9) // 100 -> mL

	require.Len(t, solution.Details.Solvents, 1)
	assert.Equal(t, "DMF", solution.Details.Solvents[0].Chemical.Name)
	assert.InDelta(t, 0.2, *solution.Details.Solvents[0].VolumeMl, 1e-9) // 200 uL -> mL

	require.Len(t, solution.Details.Solutes, 1)
	assert.Equal(t, "PbI2", solution.Details.Solutes[0].Chemical.Name)
	assert.InDelta(t, 1.5, *solution.Details.Solutes[0].ConcentrationMol, 1e-9) // 1500 mM -> mol/L

	require.NotNil(t, spin.Annealing.TimeS)
	assert.InDelta(t, 1800, *spin.Annealing.TimeS, 1e-9) // 30 min -> s
	assert.InDelta(t, 100, *spin.Annealing.TemperatureC, 1e-9)
	assert.Equal(t, "N2", spin.Annealing.Atmosphere)

	require.Len(t, spin.RecipeSteps, 1)
	step := spin.RecipeSteps[0]
	assert.InDelta(t, 3000, *step.SpeedRpm, 1e-9)
	assert.InDelta(t, 30, *step.TimeS, 1e-9)
	assert.InDelta(t, 1000, *step.AccelerationRpm, 1e-9)

	require.NotNil(t, spin.AntiSolvent)
	assert.Equal(t, "Toluene", spin.AntiSolvent.AntiSolvent.Name)
	assert.InDelta(t, 0.2, *spin.AntiSolvent.VolumeMl, 1e-9)
	assert.Nil(t, spin.Vacuum)
	assert.Nil(t, spin.GasNozzle)
}

func TestEvaporationInorganicBranch(t *testing.T) {
	result := parseSamplePlan(t)

	evap := recordByKey(t, result, "3_0_evaporation_Au").Data.(domain.Evaporation)
	require.Len(t, evap.Samples, 4)
	require.Len(t, evap.Inorganic, 1)
	assert.Empty(t, evap.Organic)

	source := evap.Inorganic[0]
	assert.Equal(t, "Au", source.Chemical.Name)
	assert.InDelta(t, 100, *source.ThicknessNm, 1e-9)
	assert.InDelta(t, 1, *source.StartRateAngstromS, 1e-9)
}

func TestEvaporationOrganicBranchCarriesTemperatureWindow(t *testing.T) {
	path := testutil.WritePlanWorkbook(t, t.TempDir(), "organic.xlsx",
		[]string{"Experiment Info", "Evaporation HTL", "", "", "", ""},
		[]string{"Nomad ID", "Material name", "Layer type", "Organic", "Thickness [nm]", "Temperature [°C]"},
		[][]string{{"KIT_E_1_0", "Spiro-OMeTAD", "HTL", "yes", "200", "85"}})

	result, err := NewParser(nil).ParseFile(path, testUploadID)
	require.NoError(t, err)

	evap := recordByKey(t, result, "1_0_evaporation_Spiro-OMeTAD").Data.(domain.Evaporation)
	require.Len(t, evap.Organic, 1)
	assert.Empty(t, evap.Inorganic)
	assert.Equal(t, []float64{85, 85}, evap.Organic[0].TemperatureC)
}

func TestEvaporationRejectsUnknownOrganicFlag(t *testing.T) {
	path := testutil.WritePlanWorkbook(t, t.TempDir(), "badorganic.xlsx",
		[]string{"Experiment Info", "Evaporation HTL", "", ""},
		[]string{"Nomad ID", "Material name", "Layer type", "Organic"},
		[][]string{{"KIT_E_2_0", "Au", "Electrode", "maybe"}})

	_, err := NewParser(nil).ParseFile(path, testUploadID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Organic")
}

func TestMaterialProcessSkippedWithoutMaterialName(t *testing.T) {
	path := testutil.WritePlanWorkbook(t, t.TempDir(), "nomaterial.xlsx",
		[]string{"Experiment Info", "Sputtering ITO", "", ""},
		[]string{"Nomad ID", "Material name", "Thickness [nm]", "Gas"},
		[][]string{{"KIT_S_1_0", "", "40", "Ar"}})

	result, err := NewParser(nil).ParseFile(path, testUploadID)
	require.NoError(t, err)
	assert.Zero(t, kindCounts(result)[KindSputtering])
}

func TestBatchIDDerivation(t *testing.T) {
	tests := []struct {
		sampleID string
		want     string
	}{
		{"KIT_AB_2024_0", "KIT_AB_2024"},
		{"batch_7", "batch"},
		{"nodelimiter", "nodelimiter"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, batchIDFrom(tt.sampleID))
	}
}

func TestParseRejectsPlanWithoutSamples(t *testing.T) {
	path := testutil.WritePlanWorkbook(t, t.TempDir(), "empty.xlsx",
		[]string{"Experiment Info", ""},
		[]string{"Nomad ID", "Variation"},
		[][]string{})

	_, err := NewParser(nil).ParseFile(path, testUploadID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sample IDs")
}
