// Command validate checks a written catalog for internal consistency: the CSV
// header matches the manifest's attributes, every row is complete and unique,
// the aggregation settings name real columns, and catalog_file points at the
// table.
//
// Usage:
//
//	go run ./cmd/validate -location data/mock/catalogs/hdp -name era-hdp-collection
//	go run ./cmd/validate -location https://wfclimres.s3.amazonaws.com/era -name era-ren-collection
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/couchcryptid/zarr-catalog-etl/internal/domain"
	"github.com/couchcryptid/zarr-catalog-etl/internal/storage"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// catalogTable is a parsed catalog CSV.
type catalogTable struct {
	header []string
	rows   [][]string
}

func main() {
	location := flag.String("location", "", "directory or https:// URL holding the catalog")
	name := flag.String("name", "", "catalog name (file name without extension)")
	timeout := flag.Duration("timeout", 30*time.Second, "timeout for remote reads")
	flag.Parse()

	if *location == "" || *name == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*location, *name, *timeout))
}

func run(location, name string, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	web := storage.NewHTTPStore(timeout)
	store := storage.NewRouter(storage.NewOSStore()).Handle("http", web).Handle("https", web)

	manifest, err := loadManifest(ctx, store, storage.Join(location, name+".json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load manifest: %v\n", err)
		return 1
	}
	tbl, err := loadTable(ctx, store, storage.Join(location, name+".csv"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load table: %v\n", err)
		return 1
	}

	phases := validate(name, manifest, tbl)
	fmt.Println(report(name, len(tbl.rows), phases))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed(phases) {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadManifest(ctx context.Context, store storage.Store, uri string) (domain.Manifest, error) {
	data, err := store.Read(ctx, uri)
	if err != nil {
		return domain.Manifest{}, err
	}
	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.Manifest{}, fmt.Errorf("decode %s: %w", uri, err)
	}
	return m, nil
}

func loadTable(ctx context.Context, store storage.Store, uri string) (catalogTable, error) {
	data, err := store.Read(ctx, uri)
	if err != nil {
		return catalogTable{}, err
	}
	return parseTable(data)
}

func parseTable(data []byte) (catalogTable, error) {
	all, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return catalogTable{}, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return catalogTable{}, fmt.Errorf("csv has no header")
	}
	return catalogTable{header: all[0], rows: all[1:]}, nil
}

func validate(name string, m domain.Manifest, t catalogTable) []*phase {
	return []*phase{
		validateHeader(m, t),
		validateRows(t),
		validateAggregation(m, t),
		validateCatalogFile(name, m),
	}
}

func validateHeader(m domain.Manifest, t catalogTable) *phase {
	p := &phase{name: "Header matches manifest attributes"}
	want := make([]string, len(m.Attributes))
	for i, a := range m.Attributes {
		want[i] = a.ColumnName
	}
	if !slices.Equal(want, t.header) {
		p.errorf("header %v, manifest attributes %v", t.header, want)
	}
	if !slices.Contains(t.header, m.Assets.ColumnName) {
		p.errorf("assets column %q missing from header", m.Assets.ColumnName)
	}
	if m.ESMCatVersion != domain.ESMCatVersion {
		p.errorf("esmcat_version %q, want %q", m.ESMCatVersion, domain.ESMCatVersion)
	}
	return p
}

func validateRows(t catalogTable) *phase {
	p := &phase{name: "Rows complete, unique, and marker-free"}
	pathCol := slices.Index(t.header, domain.FieldPath)
	seen := make(map[string]int, len(t.rows))

	for i, row := range t.rows {
		line := i + 2
		if len(row) != len(t.header) {
			p.errorf("line %d: %d fields, header has %d", line, len(row), len(t.header))
			continue
		}
		for j, v := range row {
			if v == "" {
				p.errorf("line %d: empty %s", line, t.header[j])
			}
		}
		if pathCol >= 0 && strings.Contains(row[pathCol], domain.DefaultMarker) {
			p.errorf("line %d: path still contains %s", line, domain.DefaultMarker)
		}
		key := strings.Join(row, "\x1f")
		if first, dup := seen[key]; dup {
			p.errorf("line %d duplicates line %d", line, first)
			continue
		}
		seen[key] = line
	}
	return p
}

func validateAggregation(m domain.Manifest, t catalogTable) *phase {
	p := &phase{name: "Aggregation control names real columns"}
	ac := m.AggregationControl
	if !slices.Contains(t.header, ac.VariableColumnName) {
		p.errorf("variable_column_name %q missing from header", ac.VariableColumnName)
	}
	for _, g := range ac.GroupbyAttrs {
		if !slices.Contains(t.header, g) {
			p.errorf("groupby attribute %q missing from header", g)
		}
	}
	for _, a := range ac.Aggregations {
		if !slices.Contains(t.header, a.AttributeName) {
			p.errorf("aggregation %s on missing column %q", a.Type, a.AttributeName)
		}
	}
	return p
}

func validateCatalogFile(name string, m domain.Manifest) *phase {
	p := &phase{name: "catalog_file points at the table"}
	if path.Base(m.CatalogFile) != name+".csv" {
		p.errorf("catalog_file %q does not end in %s.csv", m.CatalogFile, name)
	}
	if m.ID != name {
		p.errorf("manifest id %q, want %q", m.ID, name)
	}
	return p
}

func allPassed(phases []*phase) bool {
	for _, p := range phases {
		if !p.passed() {
			return false
		}
	}
	return true
}

func report(name string, rows int, phases []*phase) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(fmt.Sprintf("%s (%d rows)", name, rows))
	tw.AppendHeader(table.Row{"Check", "Result", "Errors"})
	for _, p := range phases {
		status := text.FgGreen.Sprint("PASS")
		if !p.passed() {
			status = text.FgRed.Sprint("FAIL")
		}
		tw.AppendRow(table.Row{p.name, status, strconv.Itoa(len(p.errors))})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	return tw.Render()
}
