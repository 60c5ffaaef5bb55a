package domain

import "time"

// ESMCatVersion is the intake-ESM catalog spec version written to manifests.
const ESMCatVersion = "0.0.1"

// Attribute lists one catalog column.
type Attribute struct {
	ColumnName string `json:"column_name"`
	Vocabulary string `json:"vocabulary"`
}

// Assets names the column holding data locations and their format.
type Assets struct {
	ColumnName string `json:"column_name"`
	Format     string `json:"format"`
}

// Aggregation tells intake-ESM how to combine datasets within a group.
type Aggregation struct {
	Type          string         `json:"type" toml:"type"`
	AttributeName string         `json:"attribute_name" toml:"attribute_name"`
	Options       map[string]any `json:"options" toml:"options,omitempty"`
}

// AggregationControl groups rows into datasets when the catalog is opened.
type AggregationControl struct {
	VariableColumnName string        `json:"variable_column_name"`
	GroupbyAttrs       []string      `json:"groupby_attrs"`
	Aggregations       []Aggregation `json:"aggregations"`
}

// Manifest is the JSON half of a catalog.
type Manifest struct {
	ESMCatVersion      string             `json:"esmcat_version"`
	ID                 string             `json:"id"`
	Description        string             `json:"description"`
	Title              *string            `json:"title"`
	LastUpdated        string             `json:"last_updated"`
	Attributes         []Attribute        `json:"attributes"`
	Assets             Assets             `json:"assets"`
	AggregationControl AggregationControl `json:"aggregation_control"`
	CatalogFile        string             `json:"catalog_file"`
}

// ManifestSpec carries the catalog settings a manifest is built from.
type ManifestSpec struct {
	Name           string
	Description    string
	Title          string
	Columns        []string
	PathColumn     string
	VariableColumn string
	DataFormat     string
	GroupBy        []string
	Aggregations   []Aggregation
}

// NewManifest builds a manifest whose catalog_file points at catalogFile.
func NewManifest(spec ManifestSpec, catalogFile string) Manifest {
	attrs := make([]Attribute, len(spec.Columns))
	for i, c := range spec.Columns {
		attrs[i] = Attribute{ColumnName: c}
	}

	aggs := make([]Aggregation, len(spec.Aggregations))
	for i, a := range spec.Aggregations {
		if a.Options == nil {
			a.Options = map[string]any{}
		}
		aggs[i] = a
	}

	var title *string
	if spec.Title != "" {
		t := spec.Title
		title = &t
	}

	return Manifest{
		ESMCatVersion: ESMCatVersion,
		ID:            spec.Name,
		Description:   spec.Description,
		Title:         title,
		LastUpdated:   clock.Now().UTC().Format(time.RFC3339),
		Attributes:    attrs,
		Assets: Assets{
			ColumnName: spec.PathColumn,
			Format:     spec.DataFormat,
		},
		AggregationControl: AggregationControl{
			VariableColumnName: spec.VariableColumn,
			GroupbyAttrs:       append([]string(nil), spec.GroupBy...),
			Aggregations:       aggs,
		},
		CatalogFile: catalogFile,
	}
}
