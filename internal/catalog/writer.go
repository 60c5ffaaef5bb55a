package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/zarr-catalog-etl/internal/domain"
	"github.com/couchcryptid/zarr-catalog-etl/internal/storage"
)

// Output locates the files produced by one catalog write.
type Output struct {
	CSVURI  string
	JSONURI string
	Rows    int
}

// Writer serializes records and their manifest to a Store.
type Writer struct {
	store  storage.Store
	logger *slog.Logger
}

// NewWriter creates a Writer backed by store.
func NewWriter(store storage.Store, logger *slog.Logger) *Writer {
	return &Writer{store: store, logger: logger}
}

// CSVURI returns where the definition's table is written.
func CSVURI(def Definition) string {
	return storage.Join(def.OutputLocation, def.Name+".csv")
}

// JSONURI returns where the definition's manifest is written.
func JSONURI(def Definition) string {
	return storage.Join(def.OutputLocation, def.Name+".json")
}

// Write stores {location}/{name}.csv and then {location}/{name}.json. The
// manifest's catalog_file points at the CSV's storage location.
func (w *Writer) Write(ctx context.Context, def Definition, records []domain.Record) (Output, error) {
	out := Output{CSVURI: CSVURI(def), JSONURI: JSONURI(def), Rows: len(records)}

	table, err := EncodeCSV(def.Columns(), records)
	if err != nil {
		return Output{}, err
	}
	if err := w.store.Write(ctx, out.CSVURI, table); err != nil {
		return Output{}, fmt.Errorf("write catalog table: %w", err)
	}

	manifest := domain.NewManifest(def.ManifestSpec(), out.CSVURI)
	doc, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return Output{}, fmt.Errorf("encode manifest: %w", err)
	}
	if err := w.store.Write(ctx, out.JSONURI, doc); err != nil {
		return Output{}, fmt.Errorf("write catalog manifest: %w", err)
	}

	w.logger.Info("catalog written", "catalog", def.Name, "csv", out.CSVURI, "json", out.JSONURI, "rows", out.Rows)
	return out, nil
}

// EncodeCSV renders records as CSV with a header row of columns.
func EncodeCSV(columns []string, records []domain.Record) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(columns); err != nil {
		return nil, fmt.Errorf("encode csv header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rec.Values(columns)); err != nil {
			return nil, fmt.Errorf("encode csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
