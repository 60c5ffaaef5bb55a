// Command genmock writes a local mock of the object layouts the built-in
// catalogs crawl, plus a definitions file that points those catalogs at it.
// The tree includes keys that should be excluded or rejected so a local build
// exercises every branch of the pipeline.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock
//	CATALOG_DEFINITIONS_FILE=data/mock/definitions.toml go run ./cmd/catalog build -c hdp
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path"
	"path/filepath"

	"github.com/couchcryptid/zarr-catalog-etl/internal/catalog"
	"github.com/couchcryptid/zarr-catalog-etl/internal/domain"
	"github.com/couchcryptid/zarr-catalog-etl/internal/storage"
)

var (
	installations = []string{"pv_distributed", "pv_utility", "windpower_offshore", "windpower_onshore"}
	models        = []string{"ec-earth3", "mpi-esm1-2-hr", "miroc6", "taiesm1", "era5"}
	networks      = []string{"ASOSAWOS", "CIMIS", "CWOP", "HADS"}
)

// tree collects the keys written for one catalog by expected outcome.
type tree struct {
	valid    []string
	excluded []string
	invalid  []string
}

func (t *tree) all() []string {
	out := append(append([]string{}, t.valid...), t.excluded...)
	return append(out, t.invalid...)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "directory to write the mock tree and definitions.toml into")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	dir, err := storage.LocalPath(*out)
	if err != nil {
		return fmt.Errorf("resolve -out: %w", err)
	}

	ctx := context.Background()
	store := storage.NewOSStore()
	builtins := catalog.Builtins()
	defs := make(map[string]catalog.Definition, len(builtins))

	ren, renTree := renewables(builtins["renewables"], dir)
	hdp, hdpTree := stations(builtins["hdp"], dir)
	defs["renewables"], defs["hdp"] = ren, hdp

	for key, t := range map[string]*tree{"renewables": &renTree, "hdp": &hdpTree} {
		for _, k := range t.all() {
			if err := store.Write(ctx, k, nil); err != nil {
				return fmt.Errorf("write %s: %w", k, err)
			}
		}
		log.Printf("%s: %d valid, %d excluded, %d invalid keys", key, len(t.valid), len(t.excluded), len(t.invalid))
	}

	data, err := catalog.EncodeDefinitions(defs)
	if err != nil {
		return err
	}
	defsPath := path.Join(dir, "definitions.toml")
	if err := store.Write(ctx, defsPath, data); err != nil {
		return fmt.Errorf("write definitions: %w", err)
	}
	log.Printf("wrote definitions: %s", filepath.FromSlash(defsPath))
	return nil
}

// renewables mirrors s3://wfclimres/era/<installation>/<model>/... under dir.
func renewables(def catalog.Definition, dir string) (catalog.Definition, tree) {
	root := path.Join(dir, "wfclimres") + "/"
	def.Root = root
	def.Paths = nil
	for _, inst := range installations {
		def.Paths = append(def.Paths, root+"era/"+inst+"/")
	}
	def.OutputLocation = path.Join(dir, "catalogs", "renewables")

	var t tree
	for _, inst := range installations {
		base := root + "era/" + inst + "/"
		for _, model := range models {
			for _, exp := range experiments(model) {
				for _, v := range []string{"cf", "gen"} {
					store := base + path.Join(model, exp, "1hr", v, "d03")
					t.valid = append(t.valid, store+"/"+domain.DefaultMarker)
					t.excluded = append(t.excluded, store+"/.zattrs")
				}
			}
		}
		// Upper-case model directories are legacy copies.
		t.excluded = append(t.excluded,
			base+"EC-Earth3/historical/1hr/cf/d03/"+domain.DefaultMarker,
			base+"TaiESM1/historical/1hr/cf/d03/"+domain.DefaultMarker,
		)
		// Too deep for the crawl.
		t.excluded = append(t.excluded, base+"miroc6/historical/1hr/cf/d03/extra/"+domain.DefaultMarker)
		// Unknown model and a missing grid directory.
		t.invalid = append(t.invalid,
			base+"cesm2/historical/1hr/cf/d03/"+domain.DefaultMarker,
			base+"era5/reanalysis/1hr/cf/"+domain.DefaultMarker,
		)
	}
	return def, t
}

func experiments(model string) []string {
	if model == "era5" {
		return []string{"reanalysis"}
	}
	return []string{"historical", "ssp370"}
}

// stations mirrors s3://wecc-historical-wx/4_merge_wx/<network>/<station>.zarr under dir.
func stations(def catalog.Definition, dir string) (catalog.Definition, tree) {
	root := path.Join(dir, "wecc-historical-wx", "4_merge_wx") + "/"
	def.Root = root
	def.Paths = []string{root}
	def.OutputLocation = path.Join(dir, "catalogs", "hdp")

	var t tree
	for _, network := range networks {
		for i := 1; i <= 3; i++ {
			t.valid = append(t.valid, fmt.Sprintf("%s%s/%s_%d.zarr/%s", root, network, network, i, domain.DefaultMarker))
		}
	}
	t.excluded = append(t.excluded,
		root+"VALLEYWATER/VALLEYWATER_1.zarr/"+domain.DefaultMarker,
		root+"eraqc_counts_hourly_timestep/ASOSAWOS_1.zarr/"+domain.DefaultMarker,
		root+"merge_logs/merge_2024.log",
		root+"CIMIS/CIMIS_1.zarr/air_temp/"+domain.DefaultMarker,
	)
	return def, t
}
