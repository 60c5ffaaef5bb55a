package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/zarr-catalog-etl/internal/storage"
)

// CatalogFileKey is the manifest key that tells readers where the CSV lives.
const CatalogFileKey = "catalog_file"

// Patcher rewrites the catalog_file key of a stored manifest.
type Patcher struct {
	store  storage.Store
	logger *slog.Logger
}

// NewPatcher creates a Patcher backed by store.
func NewPatcher(store storage.Store, logger *slog.Logger) *Patcher {
	return &Patcher{store: store, logger: logger}
}

// Patch points {location}/{name}.json at {publicURL}/{name}.csv. Every other
// key is kept, numbers included, and the document is replaced in one write.
// It returns the new catalog_file value.
func (p *Patcher) Patch(ctx context.Context, location, publicURL, name string) (string, error) {
	uri := storage.Join(location, name+".json")

	data, err := p.store.Read(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("read manifest: %w", err)
	}

	doc, err := decodeObject(data)
	if err != nil {
		return "", fmt.Errorf("decode manifest %q: %w", uri, err)
	}

	catalogFile := fmt.Sprintf("%s/%s.csv", publicURL, name)
	doc[CatalogFileKey] = catalogFile

	out, err := encodeObject(doc)
	if err != nil {
		return "", fmt.Errorf("encode manifest %q: %w", uri, err)
	}
	if err := p.store.Write(ctx, uri, out); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}

	p.logger.Info("catalog file key updated", "manifest", uri, CatalogFileKey, catalogFile)
	return catalogFile, nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("manifest is not a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after manifest object")
	}
	return doc, nil
}

func encodeObject(doc map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
