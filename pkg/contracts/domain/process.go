package domain

// ProcessMetadata carries the fields every process record shares: the
// position of its column group in the experiment plan, the tool or
// glovebox it ran in, free-form notes, and the samples it was applied to.
type ProcessMetadata struct {
	Name        string            `json:"name,omitempty"`
	Position    int               `json:"position_in_experimental_plan" validate:"min=0"`
	Location    string            `json:"location,omitempty"`
	Description string            `json:"description,omitempty"`
	Samples     []EntityReference `json:"samples" validate:"required,min=1,dive"`
}

// PureSubstance identifies a chemical by name. Lookup of PubChem data is
// left to the consuming catalogue.
type PureSubstance struct {
	Name string `json:"name"`
}

// SolutionChemical is one solvent or solute entry of a solution.
// Volumes are in mL, concentrations in mol/L.
type SolutionChemical struct {
	Chemical         PureSubstance `json:"chemical"`
	VolumeMl         *float64      `json:"volume_ml,omitempty"`
	ConcentrationMol *float64      `json:"concentration_mol,omitempty"`
}

// Solution aggregates the numbered Solvent/Solute column families of a
// wet-chemical deposition row.
type Solution struct {
	Solvents []SolutionChemical `json:"solvents,omitempty"`
	Solutes  []SolutionChemical `json:"solutes,omitempty"`
}

// PrecursorSolution binds a solution to the volume dispensed, in mL.
type PrecursorSolution struct {
	Details  Solution `json:"details"`
	VolumeMl *float64 `json:"volume_ml,omitempty"`
}

// Layer describes the layer a deposition step produces.
type Layer struct {
	Type         string `json:"layer_type,omitempty"`
	MaterialName string `json:"layer_material_name,omitempty"`
}

// Annealing holds the post-deposition anneal parameters. Time is in
// seconds regardless of the plan's minute-based column.
type Annealing struct {
	TemperatureC *float64 `json:"temperature_c,omitempty"`
	TimeS        *float64 `json:"time_s,omitempty"`
	Atmosphere   string   `json:"atmosphere,omitempty"`
}

// Atmosphere describes the ambient conditions during a process.
type Atmosphere struct {
	RelativeHumidity *float64 `json:"relative_humidity,omitempty"`
}

// SpinStep is one step of a spin coating recipe.
type SpinStep struct {
	SpeedRpm        *float64 `json:"speed_rpm,omitempty"`
	TimeS           *float64 `json:"time_s,omitempty"`
	AccelerationRpm *float64 `json:"acceleration_rpm_s,omitempty"`
}

// AntiSolventQuenching drops an anti solvent onto the wet film.
type AntiSolventQuenching struct {
	AntiSolvent         PureSubstance `json:"anti_solvent"`
	VolumeMl            *float64      `json:"volume_ml,omitempty"`
	DroppingTimeS       *float64      `json:"dropping_time_s,omitempty"`
	DroppingHeightMm    *float64      `json:"dropping_height_mm,omitempty"`
	DroppingFlowRateUls *float64      `json:"dropping_flow_rate_ul_s,omitempty"`
}

// VacuumQuenching dries the wet film under reduced pressure.
type VacuumQuenching struct {
	StartTimeS  *float64 `json:"start_time_s,omitempty"`
	DurationS   *float64 `json:"duration_s,omitempty"`
	PressureBar *float64 `json:"pressure_bar,omitempty"`
}

// GasQuenching blows gas through a nozzle over the wet film.
type GasQuenching struct {
	Gas            string   `json:"gas,omitempty"`
	StartingDelayS *float64 `json:"starting_delay_s,omitempty"`
	FlowRateMls    *float64 `json:"flow_rate_ml_s,omitempty"`
	HeightMm       *float64 `json:"height_mm,omitempty"`
	DurationS      *float64 `json:"duration_s,omitempty"`
	PressureBar    *float64 `json:"pressure_bar,omitempty"`
	VelocityMs     *float64 `json:"velocity_m_s,omitempty"`
	NozzleShape    string   `json:"nozzle_shape,omitempty"`
	NozzleSizeMm2  string   `json:"nozzle_size_mm2,omitempty"`
}

// AirKnifeQuenching dries a slot-die coated film with an air knife.
// The gap is stored in µm, converted from the plan's cm column.
type AirKnifeQuenching struct {
	AngleDeg        *float64 `json:"angle_deg,omitempty"`
	BeadVolume      *float64 `json:"bead_volume_mm_s,omitempty"`
	DryingSpeedCmin *float64 `json:"drying_speed_cm_min,omitempty"`
	GapUm           *float64 `json:"gap_um,omitempty"`
}

// Cleaning is the substrate cleaning step: up to ten sequential solvent
// baths plus optional UV-ozone and plasma treatments.
type Cleaning struct {
	ProcessMetadata

	SolutionCleaning []SolutionCleaningStep `json:"solution_cleaning,omitempty"`
	UVCleaning       []UVCleaning           `json:"cleaning_uv,omitempty"`
	PlasmaCleaning   []PlasmaCleaning       `json:"cleaning_plasma,omitempty"`
}

// SolutionCleaningStep is one solvent bath of a cleaning sequence.
type SolutionCleaningStep struct {
	Solvent      PureSubstance `json:"solvent"`
	TimeS        *float64      `json:"time_s,omitempty"`
	TemperatureC *float64      `json:"temperature_c,omitempty"`
}

// UVCleaning is a UV-ozone treatment.
type UVCleaning struct {
	TimeS *float64 `json:"time_s,omitempty"`
}

// PlasmaCleaning is a gas plasma treatment.
type PlasmaCleaning struct {
	TimeS      *float64 `json:"time_s,omitempty"`
	PowerW     *float64 `json:"power_w,omitempty"`
	PlasmaType string   `json:"plasma_type,omitempty"`
}

// SpinCoating is a wet-chemical deposition by spin coating. Quenching is
// mutually exclusive: at most one of the three variants is set, chosen by
// which optional columns the plan carries.
type SpinCoating struct {
	ProcessMetadata

	Layers      []Layer               `json:"layers" validate:"dive"`
	Solution    []PrecursorSolution   `json:"solution,omitempty"`
	Annealing   Annealing             `json:"annealing"`
	RecipeSteps []SpinStep            `json:"recipe_steps,omitempty"`
	AntiSolvent *AntiSolventQuenching `json:"anti_solvent_quenching,omitempty"`
	Vacuum      *VacuumQuenching      `json:"vacuum_quenching,omitempty"`
	GasNozzle   *GasQuenching         `json:"gas_quenching,omitempty"`
}

// SlotDieProperties holds the head parameters of a slot die coater.
// Flow rate is in mL/min, converted from the plan's µL/min column.
type SlotDieProperties struct {
	FlowRateMlMin *float64 `json:"flow_rate_ml_min,omitempty"`
	HeadGapMm     *float64 `json:"head_gap_mm,omitempty"`
	HeadSpeedMmS  *float64 `json:"head_speed_mm_s,omitempty"`
}

// SlotDieCoating is a wet-chemical deposition by slot die coating.
type SlotDieCoating struct {
	ProcessMetadata

	Layers     []Layer             `json:"layers" validate:"dive"`
	Solution   []PrecursorSolution `json:"solution,omitempty"`
	Annealing  Annealing           `json:"annealing"`
	Properties SlotDieProperties   `json:"properties"`
	Quenching  *AirKnifeQuenching  `json:"air_knife_quenching,omitempty"`
}

// DipCoatingProperties holds the dip parameters. Time is in minutes,
// converted from the plan's seconds column.
type DipCoatingProperties struct {
	TimeMin *float64 `json:"time_min,omitempty"`
}

// DipCoating is a wet-chemical deposition by dip coating.
type DipCoating struct {
	ProcessMetadata

	Layers     []Layer              `json:"layers" validate:"dive"`
	Solution   []PrecursorSolution  `json:"solution,omitempty"`
	Properties DipCoatingProperties `json:"properties"`
	Annealing  Annealing            `json:"annealing"`
}

// PrintHeadProperties describes the inkjet print head configuration.
type PrintHeadProperties struct {
	ActiveNozzles    *float64 `json:"number_of_active_print_nozzles,omitempty"`
	DropFrequencyHz  *float64 `json:"print_nozzle_drop_frequency,omitempty"`
	DropVolumePl     *float64 `json:"print_nozzle_drop_volume,omitempty"`
	HeadTemperatureC *float64 `json:"print_head_temperature,omitempty"`
	HeadName         string   `json:"print_head_name,omitempty"`
}

// InkjetProperties describes the printing parameters of an inkjet run.
type InkjetProperties struct {
	PrintHead             PrintHeadProperties `json:"print_head_properties"`
	CartridgePressureBar  *float64            `json:"cartridge_pressure_bar,omitempty"`
	SubstrateTemperatureC *float64            `json:"substrate_temperature_c,omitempty"`
	DropDensityDpi        *float64            `json:"drop_density_dpi,omitempty"`
	PrintedAreaMm2        *float64            `json:"printed_area_mm2,omitempty"`
}

// PrintHeadPath describes the raster path quality setting.
type PrintHeadPath struct {
	QualityFactor string `json:"quality_factor,omitempty"`
}

// InkjetPrinting is a wet-chemical deposition by inkjet printing.
type InkjetPrinting struct {
	ProcessMetadata

	Layers     []Layer             `json:"layers" validate:"dive"`
	Solution   []PrecursorSolution `json:"solution,omitempty"`
	Properties InkjetProperties    `json:"properties"`
	Path       PrintHeadPath       `json:"print_head_path"`
	Atmosphere Atmosphere          `json:"atmosphere"`
	Annealing  Annealing           `json:"annealing"`
}

// EvaporationSource holds the evaporated material and its rate and
// thickness targets. Organic sources additionally carry a temperature
// window.
type EvaporationSource struct {
	Chemical           PureSubstance `json:"chemical"`
	ThicknessNm        *float64      `json:"thickness_nm,omitempty"`
	StartRateAngstromS *float64      `json:"start_rate_angstrom_s,omitempty"`
	TemperatureC       []float64     `json:"temperature_c,omitempty"`
}

// Evaporation is a thermal evaporation step. Exactly one of the organic
// or inorganic source lists is populated, chosen by the Organic column.
type Evaporation struct {
	ProcessMetadata

	Layers    []Layer             `json:"layers" validate:"dive"`
	Organic   []EvaporationSource `json:"organic_evaporation,omitempty"`
	Inorganic []EvaporationSource `json:"inorganic_evaporation,omitempty"`
}

// SputterProcess holds the plasma parameters of one sputtering run.
type SputterProcess struct {
	ThicknessNm     *float64      `json:"thickness_nm,omitempty"`
	GasFlowRateCcm  *float64      `json:"gas_flow_rate_ccm,omitempty"`
	RotationRateRpm *float64      `json:"rotation_rate_rpm,omitempty"`
	PowerW          *float64      `json:"power_w,omitempty"`
	TemperatureC    *float64      `json:"temperature_c,omitempty"`
	DepositionTimeS *float64      `json:"deposition_time_s,omitempty"`
	BurnInTimeS     *float64      `json:"burn_in_time_s,omitempty"`
	PressureMbar    *float64      `json:"pressure_mbar,omitempty"`
	Target          PureSubstance `json:"target"`
	Gas             PureSubstance `json:"gas"`
}

// Sputtering is a sputter deposition step.
type Sputtering struct {
	ProcessMetadata

	Layers    []Layer          `json:"layers" validate:"dive"`
	Processes []SputterProcess `json:"processes,omitempty"`
}

// ALDMaterial is one precursor line of an ALD cycle.
type ALDMaterial struct {
	Material             PureSubstance `json:"material"`
	PulseDurationS       *float64      `json:"pulse_duration_s,omitempty"`
	ManifoldTemperatureC *float64      `json:"manifold_temperature_c,omitempty"`
	BottleTemperatureC   *float64      `json:"bottle_temperature_c,omitempty"`
}

// ALDProperties holds the cycle parameters of an atomic layer deposition.
type ALDProperties struct {
	Source          string      `json:"source,omitempty"`
	ThicknessNm     *float64    `json:"thickness_nm,omitempty"`
	TemperatureC    *float64    `json:"temperature_c,omitempty"`
	RateAngstromS   *float64    `json:"rate_angstrom_s,omitempty"`
	TimeS           *float64    `json:"time_s,omitempty"`
	NumberOfCycles  *float64    `json:"number_of_cycles,omitempty"`
	Material        ALDMaterial `json:"material"`
	OxidizerReducer ALDMaterial `json:"oxidizer_reducer"`
}

// ALD is an atomic layer deposition step.
type ALD struct {
	ProcessMetadata

	Layers     []Layer       `json:"layers" validate:"dive"`
	Properties ALDProperties `json:"properties"`
}

// GenericProcess covers plan column groups that carry only a name and
// notes, with no structured parameters.
type GenericProcess struct {
	ProcessMetadata
}
