// Package catalog defines the catalogs this service can build and writes
// their CSV and JSON halves to storage.
package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/couchcryptid/zarr-catalog-etl/internal/domain"
)

// UnlimitedDepth walks crawl paths without a depth bound.
const UnlimitedDepth = -1

// Family selects how object keys are parsed into rows.
type Family string

const (
	FamilySimulation Family = "simulation"
	FamilyStation    Family = "station"
)

// Definition describes one catalog: where to crawl, how to parse, and where
// the CSV and JSON are written.
type Definition struct {
	Name        string `toml:"name"`
	Family      Family `toml:"family"`
	Description string `toml:"description"`
	Title       string `toml:"title,omitempty"`

	// Root is the prefix that parsers split keys on.
	Root    string   `toml:"root"`
	Paths   []string `toml:"paths"`
	Depth   int      `toml:"depth"`
	Include []string `toml:"include,omitempty"`
	Exclude []string `toml:"exclude,omitempty"`
	Marker  string   `toml:"marker,omitempty"`

	OutputLocation string `toml:"output_location"`
	// PublicURL replaces the catalog_file key after writing. Empty skips the patch.
	PublicURL string `toml:"public_url,omitempty"`

	VariableColumn string               `toml:"variable_column"`
	GroupBy        []string             `toml:"groupby"`
	Aggregations   []domain.Aggregation `toml:"aggregations"`
	DataFormat     string               `toml:"data_format"`

	// Models overrides the simulation model table.
	Models map[string]string `toml:"models,omitempty"`
}

// Builtins returns the catalogs shipped with the service, keyed by short name.
func Builtins() map[string]Definition {
	return map[string]Definition{
		"renewables": {
			Name:        "era-ren-collection",
			Family:      FamilySimulation,
			Description: "Eagle Rock Analytics Renewables Data Catalog",
			Root:        "s3://wfclimres/",
			Paths: []string{
				"s3://wfclimres/era/pv_distributed/",
				"s3://wfclimres/era/pv_utility/",
				"s3://wfclimres/era/windpower_offshore/",
				"s3://wfclimres/era/windpower_onshore/",
			},
			Depth:   5,
			Include: []string{"**/.zmetadata"},
			Exclude: []string{
				"**/EC-Earth3/**",
				"**/ERA5/**",
				"**/MIROC6/**",
				"**/MPI-ESM1-2-HR/**",
				"**TaiESM1/**",
			},
			Marker:         domain.DefaultMarker,
			OutputLocation: "s3://wfclimres/era",
			PublicURL:      "https://wfclimres.s3.amazonaws.com/era",
			VariableColumn: domain.FieldVariableID,
			GroupBy: []string{
				domain.FieldInstallation,
				domain.FieldActivityID,
				domain.FieldInstitutionID,
				domain.FieldSourceID,
				domain.FieldExperimentID,
				domain.FieldTableID,
				domain.FieldGridLabel,
			},
			Aggregations: []domain.Aggregation{
				{Type: "union", AttributeName: domain.FieldVariableID},
			},
			DataFormat: "zarr",
		},
		"hdp": {
			Name:        "era-hdp-collection",
			Family:      FamilyStation,
			Description: "Eagle Rock Analytics Historical Data Platform Catalog",
			Root:        "s3://wecc-historical-wx/4_merge_wx/",
			Paths:       []string{"s3://wecc-historical-wx/4_merge_wx/"},
			Depth:       2,
			Include:     []string{"**/.zmetadata"},
			Exclude: []string{
				"**/VALLEYWATER/**",
				"**/eraqc_counts_native_timestep/**",
				"**/eraqc_counts_hourly_timestep/**",
				"**/merge_logs/**",
			},
			Marker:         domain.DefaultMarker,
			OutputLocation: "s3://wecc-historical-wx/4_merge_wx",
			VariableColumn: domain.FieldStationID,
			GroupBy:        []string{domain.FieldNetworkID, domain.FieldStationID},
			Aggregations: []domain.Aggregation{
				{Type: "union", AttributeName: domain.FieldStationID},
			},
			DataFormat: "zarr",
		},
	}
}

type definitionsFile struct {
	Catalogs map[string]Definition `toml:"catalogs"`
}

// rawDefinitionsFile records which keys each catalog table sets, so a zero
// value can be told apart from an absent one.
type rawDefinitionsFile struct {
	Catalogs map[string]map[string]any `toml:"catalogs"`
}

// LoadDefinitions reads a TOML document of [catalogs.<key>] tables and layers
// it over base. Non-empty fields replace the base definition's; unknown keys
// add new catalogs whose name defaults to the key.
func LoadDefinitions(data []byte, base map[string]Definition) (map[string]Definition, error) {
	var file definitionsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode definitions: %w", err)
	}
	var raw rawDefinitionsFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode definitions: %w", err)
	}

	out := make(map[string]Definition, len(base)+len(file.Catalogs))
	for k, d := range base {
		out[k] = d
	}
	for key, override := range file.Catalogs {
		def, ok := out[key]
		if !ok {
			def = Definition{Name: key, Marker: domain.DefaultMarker, DataFormat: "zarr"}
		}
		_, depthSet := raw.Catalogs[key]["depth"]
		out[key] = def.merge(override, depthSet)
	}
	return out, nil
}

// EncodeDefinitions renders definitions in the format LoadDefinitions reads.
func EncodeDefinitions(defs map[string]Definition) ([]byte, error) {
	data, err := toml.Marshal(definitionsFile{Catalogs: defs})
	if err != nil {
		return nil, fmt.Errorf("encode definitions: %w", err)
	}
	return data, nil
}

// Keys returns definition keys in sorted order.
func Keys(defs map[string]Definition) []string {
	keys := make([]string, 0, len(defs))
	for k := range defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d Definition) merge(o Definition, depthSet bool) Definition {
	setString(&d.Name, o.Name)
	if o.Family != "" {
		d.Family = o.Family
	}
	setString(&d.Description, o.Description)
	setString(&d.Title, o.Title)
	setString(&d.Root, o.Root)
	setSlice(&d.Paths, o.Paths)
	if depthSet {
		d.Depth = o.Depth
	}
	setSlice(&d.Include, o.Include)
	setSlice(&d.Exclude, o.Exclude)
	setString(&d.Marker, o.Marker)
	setString(&d.OutputLocation, o.OutputLocation)
	setString(&d.PublicURL, o.PublicURL)
	setString(&d.VariableColumn, o.VariableColumn)
	setSlice(&d.GroupBy, o.GroupBy)
	if len(o.Aggregations) > 0 {
		d.Aggregations = o.Aggregations
	}
	setString(&d.DataFormat, o.DataFormat)
	if len(o.Models) > 0 {
		d.Models = o.Models
	}
	return d
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setSlice(dst *[]string, v []string) {
	if len(v) > 0 {
		*dst = v
	}
}

// Columns returns the CSV column order for the definition's family.
func (d Definition) Columns() []string {
	switch d.Family {
	case FamilyStation:
		return domain.StationColumns
	default:
		return domain.SimulationColumns
	}
}

// Parser builds the family's key parser rooted at d.Root.
func (d Definition) Parser() domain.Parser {
	switch d.Family {
	case FamilyStation:
		p := domain.NewStationParser(d.Root)
		if d.Marker != "" {
			p.Marker = d.Marker
		}
		return p
	default:
		p := domain.NewSimulationParser(d.Root, d.Models)
		if d.Marker != "" {
			p.Marker = d.Marker
		}
		return p
	}
}

// ManifestSpec returns the manifest settings for this definition.
func (d Definition) ManifestSpec() domain.ManifestSpec {
	return domain.ManifestSpec{
		Name:           d.Name,
		Description:    d.Description,
		Title:          d.Title,
		Columns:        d.Columns(),
		PathColumn:     domain.FieldPath,
		VariableColumn: d.VariableColumn,
		DataFormat:     d.DataFormat,
		GroupBy:        d.GroupBy,
		Aggregations:   d.Aggregations,
	}
}

// Validate checks that the definition can be crawled, parsed, and written.
func (d Definition) Validate() error {
	var errs []string
	if d.Name == "" {
		errs = append(errs, "name is required")
	}
	if d.Family != FamilySimulation && d.Family != FamilyStation {
		errs = append(errs, fmt.Sprintf("family must be %q or %q, got %q", FamilySimulation, FamilyStation, d.Family))
	}
	if d.Root == "" {
		errs = append(errs, "root is required")
	}
	if len(d.Paths) == 0 {
		errs = append(errs, "at least one crawl path is required")
	}
	for _, p := range d.Paths {
		if d.Root != "" && !strings.Contains(p, d.Root) && !strings.Contains(p+"/", d.Root) {
			errs = append(errs, fmt.Sprintf("path %q is not under root %q", p, d.Root))
		}
	}
	if d.Depth < UnlimitedDepth {
		errs = append(errs, "depth must be -1 (unlimited) or non-negative")
	}
	if d.OutputLocation == "" {
		errs = append(errs, "output_location is required")
	}
	cols := d.Columns()
	if !slices.Contains(cols, d.VariableColumn) {
		errs = append(errs, fmt.Sprintf("variable_column %q is not a catalog column", d.VariableColumn))
	}
	for _, g := range d.GroupBy {
		if !slices.Contains(cols, g) {
			errs = append(errs, fmt.Sprintf("groupby attribute %q is not a catalog column", g))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("catalog %q: %s", d.Name, strings.Join(errs, "; "))
	}
	return nil
}
