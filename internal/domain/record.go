package domain

import "fmt"

// Catalog column names.
const (
	FieldInstallation  = "installation"
	FieldActivityID    = "activity_id"
	FieldInstitutionID = "institution_id"
	FieldSourceID      = "source_id"
	FieldExperimentID  = "experiment_id"
	FieldTableID       = "table_id"
	FieldVariableID    = "variable_id"
	FieldGridLabel     = "grid_label"
	FieldNetworkID     = "network_id"
	FieldStationID     = "station_id"
	FieldPath          = "path"
)

// SimulationColumns is the CSV column order for the simulation family.
var SimulationColumns = []string{
	FieldInstallation,
	FieldActivityID,
	FieldInstitutionID,
	FieldSourceID,
	FieldExperimentID,
	FieldTableID,
	FieldVariableID,
	FieldGridLabel,
	FieldPath,
}

// StationColumns is the CSV column order for the station family.
var StationColumns = []string{
	FieldNetworkID,
	FieldStationID,
	FieldPath,
}

// Record is one catalog row keyed by column name.
type Record map[string]string

// Values returns the record's values in column order. Missing columns are empty.
func (r Record) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = r[c]
	}
	return out
}

// Failure describes an object key that could not be parsed.
type Failure struct {
	InvalidAsset string `json:"invalid_asset"`
	Traceback    string `json:"traceback"`
}

// Result is the outcome of parsing one key: exactly one of Record or Failure is set.
type Result struct {
	Record  Record
	Failure *Failure
}

// OK reports whether the result holds a record.
func (r Result) OK() bool {
	return r.Failure == nil
}

func succeed(rec Record) Result {
	return Result{Record: rec}
}

// fail keeps the caller's original path and renders err with its stack.
func fail(path string, err error) Result {
	return Result{Failure: &Failure{
		InvalidAsset: path,
		Traceback:    fmt.Sprintf("%+v", err),
	}}
}
