package domain

// EntityReference links a record to another archived entry by its
// reference string and laboratory identifier.
type EntityReference struct {
	Reference string `json:"reference" validate:"required"`
	LabID     string `json:"lab_id" validate:"required"`
}

// Batch groups all samples produced from one experiment plan.
// The batch ID is derived from the shared prefix of the sample lab IDs.
type Batch struct {
	Name     string            `json:"name" validate:"required"`
	LabID    string            `json:"lab_id" validate:"required"`
	Entities []EntityReference `json:"entities" validate:"required,min=1,dive"`
}

// Sample represents a single fabricated sample (one row of the
// Experiment Info group). The substrate field holds the reference to
// the deduplicated substrate entry the sample was built on; it stays
// empty when the row left the substrate columns blank.
type Sample struct {
	Name        string `json:"name" validate:"required"`
	LabID       string `json:"lab_id" validate:"required"`
	Substrate   string `json:"substrate,omitempty"`
	Description string `json:"description,omitempty"`
}

// Substrate describes the carrier a group of samples shares. One record
// is created per unique combination of the substrate-identifying columns.
type Substrate struct {
	Name               string   `json:"name"`
	SolarCellAreaCm2   *float64 `json:"solar_cell_area_cm2,omitempty"`
	SubstrateMaterial  string   `json:"substrate_material,omitempty"`
	ConductingMaterial []string `json:"conducting_material,omitempty"`
}

// ProcessedPlan is the entry written for the plan file itself once all
// records are archived: the list of references it produced.
type ProcessedPlan struct {
	ProcessedArchive []string `json:"processed_archive"`
}
