package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// DefaultMarker is the consolidated Zarr metadata key that identifies a store.
const DefaultMarker = ".zmetadata"

const (
	// simulationSegments counts the seven named directories plus the marker file.
	simulationSegments = 8

	stationMinSegments = 2
	stationMaxSegments = 3

	defaultStoreSuffix = ".zarr"
)

// Parser turns one object key into a catalog row or a failure.
type Parser interface {
	Parse(path string) Result
}

// StripMarker cuts path at the first occurrence of marker.
func StripMarker(path, marker string) string {
	if marker == "" {
		return path
	}
	before, _, _ := strings.Cut(path, marker)
	return before
}

// tailAfterRoot returns the text between the first and second occurrence of root.
func tailAfterRoot(path, root string) (string, error) {
	if root == "" {
		return "", errors.New("empty catalog root")
	}
	parts := strings.Split(path, root)
	if len(parts) < 2 {
		return "", errors.Errorf("path is not under root %q", root)
	}
	return parts[1], nil
}

// SimulationParser parses keys of the simulation (renewables) family.
type SimulationParser struct {
	Root          string
	Marker        string
	ActivityID    string
	InstitutionID string
	Models        map[string]string
}

// NewSimulationParser returns a parser with the standard model table and
// fixed activity and institution identifiers. A nil models map uses DefaultModels.
func NewSimulationParser(root string, models map[string]string) *SimulationParser {
	if models == nil {
		models = DefaultModels
	}
	return &SimulationParser{
		Root:          root,
		Marker:        DefaultMarker,
		ActivityID:    "WRF",
		InstitutionID: "ERA",
		Models:        models,
	}
}

func (p *SimulationParser) Parse(path string) Result {
	rec, err := p.parse(path)
	if err != nil {
		return fail(path, err)
	}
	return succeed(rec)
}

func (p *SimulationParser) parse(path string) (Record, error) {
	tail, err := tailAfterRoot(path, p.Root)
	if err != nil {
		return nil, err
	}

	segs := strings.Split(tail, "/")
	if len(segs) != simulationSegments {
		return nil, errors.Errorf("expected %d segments after root, got %d", simulationSegments, len(segs))
	}

	source, err := LookupModel(p.Models, segs[2])
	if err != nil {
		return nil, err
	}

	return Record{
		FieldInstallation:  segs[1],
		FieldActivityID:    p.ActivityID,
		FieldInstitutionID: p.InstitutionID,
		FieldSourceID:      source,
		FieldExperimentID:  segs[3],
		FieldTableID:       segs[4],
		FieldVariableID:    segs[5],
		FieldGridLabel:     segs[6],
		FieldPath:          StripMarker(path, p.Marker),
	}, nil
}

// StationParser parses keys of the station (historical data platform) family.
type StationParser struct {
	Root        string
	Marker      string
	StoreSuffix string
}

// NewStationParser returns a parser that strips ".zarr" from station ids.
func NewStationParser(root string) *StationParser {
	return &StationParser{
		Root:        root,
		Marker:      DefaultMarker,
		StoreSuffix: defaultStoreSuffix,
	}
}

func (p *StationParser) Parse(path string) Result {
	rec, err := p.parse(path)
	if err != nil {
		return fail(path, err)
	}
	return succeed(rec)
}

func (p *StationParser) parse(path string) (Record, error) {
	tail, err := tailAfterRoot(path, p.Root)
	if err != nil {
		return nil, err
	}

	segs := strings.Split(tail, "/")
	if len(segs) < stationMinSegments || len(segs) > stationMaxSegments {
		return nil, errors.Errorf("expected %d or %d segments after root, got %d",
			stationMinSegments, stationMaxSegments, len(segs))
	}

	station := segs[1]
	if p.StoreSuffix != "" {
		station, _, _ = strings.Cut(station, p.StoreSuffix)
	}

	return Record{
		FieldNetworkID: segs[0],
		FieldStationID: station,
		FieldPath:      StripMarker(path, p.Marker),
	}, nil
}
