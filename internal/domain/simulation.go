package domain

import "github.com/pkg/errors"

// DefaultModels maps model directory names to their display names.
var DefaultModels = map[string]string{
	"ec-earth3":     "EC-Earth3",
	"mpi-esm1-2-hr": "MPI-ESM1-2-HR",
	"miroc6":        "MIROC6",
	"taiesm1":       "TaiESM1",
	"era5":          "ERA5",
}

// LookupModel resolves a raw model directory name. Matching is exact, so a
// directory whose case differs from every key is unknown.
func LookupModel(models map[string]string, raw string) (string, error) {
	name, ok := models[raw]
	if !ok {
		return "", errors.Errorf("unknown simulation model %q", raw)
	}
	return name, nil
}
