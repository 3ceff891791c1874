package testutil

import (
	"testing"
)

// SamplePlan writes the canonical four-sample test plan: two substrate
// variants, one shared cleaning step, two spin coating variants, and one
// shared evaporation step. Batch ID is KIT_AB_2024.
func SamplePlan(t *testing.T, dir, name string) string {
	t.Helper()

	groupRow := make([]string, 38)
	groupRow[0] = "Experiment Info"
	groupRow[6] = "Cleaning O2-Plasma"
	groupRow[14] = "Spin Coating Perovskite"
	groupRow[31] = "Evaporation Electrode"

	columnRow := []string{
		// Experiment Info
		"Nomad ID", "Variation", "Sample dimension", "Sample area [cm^2]",
		"Substrate material", "Substrate conductive layer",
		// Cleaning
		"Solvent 1", "Time 1 [s]", "Temperature 1 [°C]", "UV-Ozone Time [s]",
		"Gas-Plasma Time [s]", "Gas-Plasma Power [W]", "Gas-Plasma Gas", "Tool/GB name",
		// Spin Coating
		"Material name", "Layer type", "Tool/GB name",
		"Solvent 1 name", "Solvent 1 volume [uL]",
		"Solute 1 type", "Solute 1 Concentration [mM]",
		"Solution volume [um]",
		"Rotation speed [rpm]", "Rotation time [s]", "Acceleration [rpm/s]",
		"Annealing temperature [°C]", "Annealing time [min]", "Annealing athmosphere",
		"Anti solvent name", "Anti solvent volume [ml]", "Notes",
		// Evaporation
		"Material name", "Layer type", "Organic", "Thickness [nm]",
		"Rate [angstrom/s]", "Tool/GB name", "Notes",
	}

	cleaning := []string{"Acetone", "600", "40", "300", "120", "50", "O2", "GB1"}
	spinA := []string{
		"MAPbI3", "Absorber", "GB2", "DMF", "200", "PbI2", "1500", "100",
		"3000", "30", "1000", "100", "30", "N2", "Toluene", "0.2", "fast drop",
	}
	spinB := []string{
		"MAPbI3", "Absorber", "GB2", "DMF", "200", "PbI2", "2000", "100",
		"3000", "30", "1000", "100", "30", "N2", "Toluene", "0.2", "fast drop",
	}
	evap := []string{"Au", "Electrode", "no", "100", "1", "Evap1", ""}

	row := func(info []string, spin []string) []string {
		cells := append([]string{}, info...)
		cells = append(cells, cleaning...)
		cells = append(cells, spin...)
		cells = append(cells, evap...)
		return cells
	}

	dataRows := [][]string{
		row([]string{"KIT_AB_2024_0", "reference", "1x1 cm", "1", "glass", "ITO"}, spinA),
		row([]string{"KIT_AB_2024_1", "", "1x1 cm", "1", "glass", "ITO"}, spinA),
		row([]string{"KIT_AB_2024_2", "thick absorber", "1x1 cm", "1", "glass", "FTO"}, spinB),
		row([]string{"KIT_AB_2024_3", "", "1x1 cm", "1", "glass", "FTO"}, spinB),
	}

	return WritePlanWorkbook(t, dir, name, groupRow, columnRow, dataRows)
}
