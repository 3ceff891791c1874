package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"perobatch/internal/plan"
)

// experimentInfoGroup is the column group carrying the per-sample
// identity columns. Every other group is a process step.
const experimentInfoGroup = "Experiment Info"

// labIDColumn is the sample identifier column inside Experiment Info.
const labIDColumn = "Nomad ID"

// substrateColumns are the Experiment Info columns that identify a
// substrate. Rows agreeing on all four share one substrate record.
var substrateColumns = []string{
	"Sample dimension",
	"Sample area [cm^2]",
	"Substrate material",
	"Substrate conductive layer",
}

// Record kinds, used for metrics and ingestion summaries.
const (
	KindBatch          = "batch"
	KindSample         = "sample"
	KindSubstrate      = "substrate"
	KindCleaning       = "cleaning"
	KindSpinCoating    = "spin_coating"
	KindSlotDieCoating = "slot_die_coating"
	KindDipCoating     = "dip_coating"
	KindInkjetPrinting = "inkjet_printing"
	KindEvaporation    = "evaporation"
	KindSputtering     = "sputtering"
	KindALD            = "atomic_layer_deposition"
	KindGeneric        = "generic_process"
)

// Record is one parsed record ready for archiving, keyed by the name its
// archive entry is stored under.
type Record struct {
	Key  string
	Kind string
	Data any
}

// ParseResult holds everything extracted from one experiment plan, in
// archive order: substrates first, then the batch, samples, and process
// records.
type ParseResult struct {
	BatchID   string
	SampleIDs []string
	Records   []Record
}

// Parser converts experiment plans into linked record sets.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger falls back to slog.Default.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With(slog.String("component", "batch_parser"))}
}

// ParseFile loads an experiment plan workbook and parses it.
func (p *Parser) ParseFile(path, uploadID string) (*ParseResult, error) {
	table, err := plan.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load experiment plan: %w", err)
	}
	return p.Parse(table, uploadID)
}

// Parse converts a loaded plan table into the full record set.
func (p *Parser) Parse(table *plan.Table, uploadID string) (*ParseResult, error) {
	info, ok := table.Group(experimentInfoGroup)
	if !ok {
		return nil, fmt.Errorf("plan has no %s group", experimentInfoGroup)
	}

	mapper := recordMapper{uploadID: uploadID}

	// Sample identity: one lab ID per non-empty row.
	labIDByRow := make(map[int]string)
	var sampleIDs []string
	for i := 0; i < info.Len(); i++ {
		if labID := info.Row(i).String(labIDColumn); labID != "" {
			labIDByRow[i] = labID
			sampleIDs = append(sampleIDs, labID)
		}
	}
	if len(sampleIDs) == 0 {
		return nil, fmt.Errorf("plan has no sample IDs in column %q", labIDColumn)
	}
	batchID := batchIDFrom(sampleIDs[0])

	result := &ParseResult{BatchID: batchID, SampleIDs: sampleIDs}

	// Substrates: one record per unique combination of the identifying
	// columns, remembering which rows map to which substrate entry.
	substrateByRow := make(map[int]string)
	for _, u := range info.UniqueBy(substrateColumns) {
		if u.Row.EmptyIn(substrateColumns) {
			continue
		}
		key := fmt.Sprintf("%d_substrate", u.Index)
		result.Records = append(result.Records, Record{
			Key:  key,
			Kind: KindSubstrate,
			Data: mapSubstrate(u.Row),
		})
		for _, rowIdx := range u.Matches {
			substrateByRow[rowIdx] = key
		}
	}

	result.Records = append(result.Records, Record{
		Key:  batchID,
		Kind: KindBatch,
		Data: mapper.mapBatch(batchID, sampleIDs),
	})

	for i := 0; i < info.Len(); i++ {
		labID, ok := labIDByRow[i]
		if !ok {
			continue
		}
		result.Records = append(result.Records, Record{
			Key:  labID,
			Kind: KindSample,
			Data: mapper.mapSample(labID, substrateByRow[i], info.Row(i)),
		})
	}

	// Process groups: deduplicate rows by content, collect the samples
	// sharing each unique row, and dispatch on the group name.
	for pos, group := range table.Groups() {
		if group.Name == experimentInfoGroup {
			continue
		}
		for _, u := range group.Unique() {
			if u.Row.Empty() {
				continue
			}
			labIDs := make([]string, 0, len(u.Matches))
			for _, rowIdx := range u.Matches {
				if labID, ok := labIDByRow[rowIdx]; ok {
					labIDs = append(labIDs, labID)
				}
			}
			if len(labIDs) == 0 {
				continue
			}
			records, err := p.dispatch(mapper, group.Name, pos, u.Index, labIDs, u.Row)
			if err != nil {
				return nil, fmt.Errorf("group %q row %d: %w", group.Name, u.Index, err)
			}
			result.Records = append(result.Records, records...)
		}
	}

	p.logger.Info("parsed experiment plan",
		slog.String("batch_id", batchID),
		slog.Int("samples", len(sampleIDs)),
		slog.Int("records", len(result.Records)))

	return result, nil
}

// dispatch maps one unique process row to records, based on which
// process names the group title contains. Material processes are skipped
// when the row names no material.
func (p *Parser) dispatch(mapper recordMapper, groupName string, pos, j int, labIDs []string, row plan.Row) ([]Record, error) {
	var records []Record
	add := func(kind, key string, data any) {
		records = append(records, Record{Key: key, Kind: kind, Data: data})
	}

	if strings.Contains(groupName, "Cleaning") {
		key, data := mapper.mapCleaning(pos, j, labIDs, row)
		add(KindCleaning, key, data)
	}
	if strings.Contains(groupName, "Generic Process") {
		key, data := mapper.mapGeneric(pos, j, labIDs, row)
		add(KindGeneric, key, data)
	}

	if row.String("Material name") == "" {
		return records, nil
	}

	if strings.Contains(groupName, "Evaporation") {
		key, data, err := mapper.mapEvaporation(pos, j, labIDs, row)
		if err != nil {
			return nil, err
		}
		add(KindEvaporation, key, data)
	}
	if strings.Contains(groupName, "Spin Coating") {
		key, data := mapper.mapSpinCoating(pos, j, labIDs, row)
		add(KindSpinCoating, key, data)
	}
	if strings.Contains(groupName, "Slot Die Coating") {
		key, data := mapper.mapSlotDieCoating(pos, j, labIDs, row)
		add(KindSlotDieCoating, key, data)
	}
	if strings.Contains(groupName, "Inkjet Printing") {
		key, data := mapper.mapInkjetPrinting(pos, j, labIDs, row)
		add(KindInkjetPrinting, key, data)
	}
	if strings.Contains(groupName, "Dip Coating") {
		key, data := mapper.mapDipCoating(pos, j, labIDs, row)
		add(KindDipCoating, key, data)
	}
	if strings.Contains(groupName, "Sputtering") {
		key, data := mapper.mapSputtering(pos, j, labIDs, row)
		add(KindSputtering, key, data)
	}
	if strings.Contains(groupName, "ALD") {
		key, data := mapper.mapALD(pos, j, labIDs, row)
		add(KindALD, key, data)
	}

	return records, nil
}

// batchIDFrom derives the batch ID from a sample lab ID by dropping the
// trailing sample counter segment.
func batchIDFrom(sampleID string) string {
	parts := strings.Split(sampleID, "_")
	if len(parts) < 2 {
		return sampleID
	}
	return strings.Join(parts[:len(parts)-1], "_")
}
