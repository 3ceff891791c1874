package dataprocessing

import (
	"fmt"
	"sort"
	"strings"

	"perobatch/internal/archive"
	"perobatch/internal/plan"
	"perobatch/pkg/contracts/domain"
)

// recordMapper converts plan rows into domain records. It carries the
// upload ID so sample references can be resolved while mapping.
type recordMapper struct {
	uploadID string
}

// sampleRefs builds the reference list for the samples a process was
// applied to.
func (m recordMapper) sampleRefs(labIDs []string) []domain.EntityReference {
	refs := make([]domain.EntityReference, 0, len(labIDs))
	for _, labID := range labIDs {
		refs = append(refs, domain.EntityReference{
			Reference: archive.Reference(m.uploadID, archive.FileName(labID)),
			LabID:     labID,
		})
	}
	return refs
}

// metadata assembles the shared process fields from a row.
func (m recordMapper) metadata(name string, pos int, labIDs []string, row plan.Row) domain.ProcessMetadata {
	return domain.ProcessMetadata{
		Name:        name,
		Position:    pos,
		Location:    row.String("Tool/GB name"),
		Description: row.String("Notes"),
		Samples:     m.sampleRefs(labIDs),
	}
}

// scale multiplies an optional quantity by a unit-conversion factor.
func scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * factor
	return &scaled
}

func layers(row plan.Row) []domain.Layer {
	return []domain.Layer{{
		Type:         row.String("Layer type"),
		MaterialName: row.String("Material name"),
	}}
}

func annealing(row plan.Row) domain.Annealing {
	return domain.Annealing{
		TemperatureC: row.Float("Annealing temperature [°C]"),
		TimeS:        scale(row.Float("Annealing time [min]"), 60),
		Atmosphere:   row.String("Annealing athmosphere"),
	}
}

// mapSolution assembles the solution from the numbered Solvent/Solute
// column families of the row ("Solvent 1 name", "Solute 2 type", ...).
func mapSolution(row plan.Row) domain.Solution {
	prefixes := func(kind string) []string {
		seen := make(map[string]bool)
		for _, col := range row.Columns() {
			if !strings.HasPrefix(strings.ToLower(col), kind) {
				continue
			}
			parts := strings.Split(col, " ")
			if len(parts) < 2 {
				continue
			}
			seen[parts[0]+" "+parts[1]] = true
		}
		out := make([]string, 0, len(seen))
		for p := range seen {
			out = append(out, p)
		}
		sort.Strings(out)
		return out
	}

	var solution domain.Solution
	for _, solvent := range prefixes("solvent") {
		name := row.String(solvent + " name")
		volume := row.Float(solvent + " volume [uL]")
		if name == "" && volume == nil {
			continue
		}
		solution.Solvents = append(solution.Solvents, domain.SolutionChemical{
			Chemical: domain.PureSubstance{Name: name},
			VolumeMl: scale(volume, 1.0/1000),
		})
	}
	for _, solute := range prefixes("solute") {
		name := row.String(solute + " type")
		concentration := row.Float(solute + " Concentration [mM]")
		if name == "" && concentration == nil {
			continue
		}
		solution.Solutes = append(solution.Solutes, domain.SolutionChemical{
			Chemical:         domain.PureSubstance{Name: name},
			ConcentrationMol: scale(concentration, 1.0/1000),
		})
	}
	return solution
}

func precursorSolution(row plan.Row) []domain.PrecursorSolution {
	return []domain.PrecursorSolution{{
		Details:  mapSolution(row),
		VolumeMl: scale(row.Float("Solution volume [um]"), 1.0/1000),
	}}
}

func (m recordMapper) mapCleaning(pos, j int, labIDs []string, row plan.Row) (string, any) {
	record := domain.Cleaning{
		ProcessMetadata: m.metadata("Cleaning", pos, labIDs, row),
		UVCleaning: []domain.UVCleaning{{
			TimeS: row.Float("UV-Ozone Time [s]"),
		}},
		PlasmaCleaning: []domain.PlasmaCleaning{{
			TimeS:      row.Float("Gas-Plasma Time [s]"),
			PowerW:     row.Float("Gas-Plasma Power [W]"),
			PlasmaType: row.String("Gas-Plasma Gas"),
		}},
	}
	for n := 0; n < 10; n++ {
		solvent := row.String(fmt.Sprintf("Solvent %d", n))
		if solvent == "" {
			continue
		}
		record.SolutionCleaning = append(record.SolutionCleaning, domain.SolutionCleaningStep{
			Solvent:      domain.PureSubstance{Name: solvent},
			TimeS:        row.Float(fmt.Sprintf("Time %d [s]", n)),
			TemperatureC: row.Float(fmt.Sprintf("Temperature %d [°C]", n)),
		})
	}
	return fmt.Sprintf("%d_%d_cleaning", pos, j), record
}

func (m recordMapper) mapSpinCoating(pos, j int, labIDs []string, row plan.Row) (string, any) {
	material := row.String("Material name")
	record := domain.SpinCoating{
		ProcessMetadata: m.metadata("spin coating "+material, pos, labIDs, row),
		Layers:          layers(row),
		Solution:        precursorSolution(row),
		Annealing:       annealing(row),
	}

	// Recipe steps live under plain and numbered column variants:
	// "Rotation time [s]", "Rotation time 1 [s]", ...
	for _, step := range []string{"", "1 ", "2 ", "3 ", "4 "} {
		t := row.Float(fmt.Sprintf("Rotation time %s[s]", step))
		if t == nil || *t == 0 {
			continue
		}
		record.RecipeSteps = append(record.RecipeSteps, domain.SpinStep{
			SpeedRpm:        row.Float(fmt.Sprintf("Rotation speed %s[rpm]", step)),
			TimeS:           t,
			AccelerationRpm: row.Float(fmt.Sprintf("Acceleration %s[rpm/s]", step)),
		})
	}

	// The quenching variants are mutually exclusive; when a plan carries
	// columns for more than one, gas quenching wins over vacuum, which
	// wins over anti solvent.
	switch {
	case row.String("Gas") != "":
		record.GasNozzle = &domain.GasQuenching{
			Gas:            row.String("Gas"),
			StartingDelayS: row.Float("Gas quenching start time [s]"),
			FlowRateMls:    row.Float("Gas quenching flow rate [ml/s]"),
			HeightMm:       row.Float("Gas quenching height [mm]"),
			DurationS:      row.Float("Gas quenching duration [s]"),
			PressureBar:    row.Float("Gas quenching pressure [bar]"),
			VelocityMs:     row.Float("Gas quenching velocity [m/s]"),
			NozzleShape:    row.String("Nozzle shape"),
			NozzleSizeMm2:  row.String("Nozzle size [mm²]"),
		}
	case row.String("Vacuum quenching duration [s]") != "":
		record.Vacuum = &domain.VacuumQuenching{
			StartTimeS:  row.Float("Vacuum quenching start time [s]"),
			DurationS:   row.Float("Vacuum quenching duration [s]"),
			PressureBar: row.Float("Vacuum quenching pressure [bar]"),
		}
	case row.String("Anti solvent name") != "":
		record.AntiSolvent = &domain.AntiSolventQuenching{
			AntiSolvent:         domain.PureSubstance{Name: row.String("Anti solvent name")},
			VolumeMl:            row.Float("Anti solvent volume [ml]"),
			DroppingTimeS:       row.Float("Anti solvent dropping time [s]"),
			DroppingHeightMm:    row.Float("Anti solvent dropping heigt [mm]"),
			DroppingFlowRateUls: row.Float("Anti solvent dropping speed [ul/s]"),
		}
	}

	return fmt.Sprintf("%d_%d_spin_coating_%s", pos, j, material), record
}

func (m recordMapper) mapSlotDieCoating(pos, j int, labIDs []string, row plan.Row) (string, any) {
	material := row.String("Material name")
	record := domain.SlotDieCoating{
		ProcessMetadata: m.metadata("slot die coating "+material, pos, labIDs, row),
		Layers:          layers(row),
		Solution:        precursorSolution(row),
		Annealing:       annealing(row),
		Properties: domain.SlotDieProperties{
			FlowRateMlMin: scale(row.Float("Flow rate [ul/min]"), 1.0/1000),
			HeadGapMm:     row.Float("Head gap [mm]"),
			HeadSpeedMmS:  row.Float("Speed [mm/s]"),
		},
		Quenching: &domain.AirKnifeQuenching{
			AngleDeg:        row.Float("Air knife angle [°]"),
			BeadVolume:      row.Float("Bead volume [mm/s]"),
			DryingSpeedCmin: row.Float("Drying speed [cm/min]"),
			GapUm:           scale(row.Float("Air knife gap [cm]"), 10000),
		},
	}
	return fmt.Sprintf("%d_%d_slot_die_coating_%s", pos, j, material), record
}

func (m recordMapper) mapDipCoating(pos, j int, labIDs []string, row plan.Row) (string, any) {
	material := row.String("Material name")
	record := domain.DipCoating{
		ProcessMetadata: m.metadata("dip coating "+material, pos, labIDs, row),
		Layers:          layers(row),
		Solution:        precursorSolution(row),
		Annealing:       annealing(row),
		Properties: domain.DipCoatingProperties{
			TimeMin: scale(row.Float("Dipping duration [s]"), 1.0/60),
		},
	}
	return fmt.Sprintf("%d_%d_dip_coating_%s", pos, j, material), record
}

func (m recordMapper) mapInkjetPrinting(pos, j int, labIDs []string, row plan.Row) (string, any) {
	material := row.String("Material name")
	record := domain.InkjetPrinting{
		ProcessMetadata: m.metadata("inkjet printing "+material, pos, labIDs, row),
		Layers:          layers(row),
		Solution:        precursorSolution(row),
		Annealing:       annealing(row),
		Properties: domain.InkjetProperties{
			PrintHead: domain.PrintHeadProperties{
				ActiveNozzles:    row.Float("Number of active nozzles"),
				DropFrequencyHz:  row.Float("Droplet per second [1/s]"),
				DropVolumePl:     row.Float("Droplet volume [pl]"),
				HeadTemperatureC: row.Float("Nozzle temperature [°C]"),
				HeadName:         row.String("Printhead name"),
			},
			CartridgePressureBar:  row.Float("Ink reservoir pressure [bar]"),
			SubstrateTemperatureC: row.Float("Table temperature [°C]"),
			DropDensityDpi:        row.Float("Droplet density [dpi]"),
			PrintedAreaMm2:        row.Float("Printed area [mm²]"),
		},
		Path: domain.PrintHeadPath{
			QualityFactor: row.String("Quality factor"),
		},
		Atmosphere: domain.Atmosphere{
			RelativeHumidity: row.Float("rel. humidity [%]"),
		},
	}
	return fmt.Sprintf("%d_%d_inkjet_printing_%s", pos, j, material), record
}

// mapEvaporation branches on the Organic column: y/1 marks an organic
// source, n/0 an inorganic one. Any other value is a plan error.
func (m recordMapper) mapEvaporation(pos, j int, labIDs []string, row plan.Row) (string, any, error) {
	material := row.String("Material name")
	record := domain.Evaporation{
		ProcessMetadata: m.metadata("evaporation "+material, pos, labIDs, row),
		Layers:          layers(row),
	}
	source := domain.EvaporationSource{
		Chemical:           domain.PureSubstance{Name: material},
		ThicknessNm:        row.Float("Thickness [nm]"),
		StartRateAngstromS: row.Float("Rate [angstrom/s]"),
	}

	organic := strings.ToLower(row.String("Organic"))
	switch {
	case strings.HasPrefix(organic, "n"), strings.HasPrefix(organic, "0"):
		record.Inorganic = []domain.EvaporationSource{source}
	case strings.HasPrefix(organic, "y"), strings.HasPrefix(organic, "1"):
		if t := row.Float("Temperature [°C]"); t != nil {
			source.TemperatureC = []float64{*t, *t}
		}
		record.Organic = []domain.EvaporationSource{source}
	default:
		return "", nil, fmt.Errorf("evaporation row for %q: unrecognized Organic value %q", material, row.String("Organic"))
	}

	return fmt.Sprintf("%d_%d_evaporation_%s", pos, j, material), record, nil
}

func (m recordMapper) mapSputtering(pos, j int, labIDs []string, row plan.Row) (string, any) {
	material := row.String("Material name")
	record := domain.Sputtering{
		ProcessMetadata: m.metadata("sputtering "+material, pos, labIDs, row),
		Layers:          layers(row),
		Processes: []domain.SputterProcess{{
			ThicknessNm:     row.Float("Thickness [nm]"),
			GasFlowRateCcm:  row.Float("Gas flow rate [cm^3/min]"),
			RotationRateRpm: row.Float("Rotation rate [rpm]"),
			PowerW:          row.Float("Power [W]"),
			TemperatureC:    row.Float("Temperature [°C]"),
			DepositionTimeS: row.Float("Deposition time [s]"),
			BurnInTimeS:     row.Float("Burn in time [s]"),
			PressureMbar:    row.Float("Pressure [mbar]"),
			Target:          domain.PureSubstance{Name: material},
			Gas:             domain.PureSubstance{Name: row.String("Gas")},
		}},
	}
	return fmt.Sprintf("%d_%d_sputtering_%s", pos, j, material), record
}

func (m recordMapper) mapALD(pos, j int, labIDs []string, row plan.Row) (string, any) {
	material := row.String("Material name")
	record := domain.ALD{
		ProcessMetadata: m.metadata("atomic layer deposition "+material, pos, labIDs, row),
		Layers:          layers(row),
		Properties: domain.ALDProperties{
			Source:         row.String("Source"),
			ThicknessNm:    row.Float("Thickness [nm]"),
			TemperatureC:   row.Float("Temperature [°C]"),
			RateAngstromS:  row.Float("Rate [A/s]"),
			TimeS:          row.Float("Time [s]"),
			NumberOfCycles: row.Float("Number of cycles"),
			Material: domain.ALDMaterial{
				Material:             domain.PureSubstance{Name: row.String("Precursor 1")},
				PulseDurationS:       row.Float("Pulse duration 1 [s]"),
				ManifoldTemperatureC: row.Float("Manifold temperature 1 [°C]"),
				BottleTemperatureC:   row.Float("Bottle temperature 1 [°C]"),
			},
			OxidizerReducer: domain.ALDMaterial{
				Material:             domain.PureSubstance{Name: row.String("Precursor 2 (Oxidizer/Reducer)")},
				PulseDurationS:       row.Float("Pulse duration 2 [s]"),
				ManifoldTemperatureC: row.Float("Manifold temperature 2 [°C]"),
			},
		},
	}
	return fmt.Sprintf("%d_%d_ALD_%s", pos, j, material), record
}

func (m recordMapper) mapGeneric(pos, j int, labIDs []string, row plan.Row) (string, any) {
	record := domain.GenericProcess{
		ProcessMetadata: domain.ProcessMetadata{
			Name:        row.String("Name"),
			Position:    pos,
			Description: row.String("Notes"),
			Samples:     m.sampleRefs(labIDs),
		},
	}
	return fmt.Sprintf("%d_%d_generic_process", pos, j), record
}

// mapSubstrate builds the substrate record for one unique combination of
// the substrate-identifying columns.
func mapSubstrate(row plan.Row) domain.Substrate {
	name := strings.Join([]string{
		"Substrate",
		row.String("Sample dimension"),
		row.String("Substrate material"),
		row.String("Substrate conductive layer"),
	}, " ")
	return domain.Substrate{
		Name:               name,
		SolarCellAreaCm2:   row.Float("Sample area [cm^2]"),
		SubstrateMaterial:  row.String("Substrate material"),
		ConductingMaterial: []string{row.String("Substrate conductive layer")},
	}
}

// mapSample builds the sample record for one plan row, linked to its
// deduplicated substrate entry.
func (m recordMapper) mapSample(labID, substrateKey string, row plan.Row) domain.Sample {
	substrateRef := ""
	if substrateKey != "" {
		substrateRef = archive.Reference(m.uploadID, archive.FileName(substrateKey))
	}
	return domain.Sample{
		Name:        labID,
		LabID:       labID,
		Substrate:   substrateRef,
		Description: row.String("Variation"),
	}
}

// mapBatch builds the batch record referencing every sample of the plan.
func (m recordMapper) mapBatch(batchID string, sampleIDs []string) domain.Batch {
	return domain.Batch{
		Name:     batchID,
		LabID:    batchID,
		Entities: m.sampleRefs(sampleIDs),
	}
}
