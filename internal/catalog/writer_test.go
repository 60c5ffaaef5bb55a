package catalog_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/zarr-catalog-etl/internal/catalog"
	"github.com/couchcryptid/zarr-catalog-etl/internal/domain"
	"github.com/couchcryptid/zarr-catalog-etl/internal/storage"
)

func TestWriter_Write(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	store := storage.NewLocalStore(memfs.New())
	w := catalog.NewWriter(store, slog.Default())

	def := catalog.Builtins()["hdp"]
	def.OutputLocation = "/catalogs/hdp/"

	records := []domain.Record{
		{domain.FieldNetworkID: "ASOSAWOS", domain.FieldStationID: "ASOSAWOS_72012200114", domain.FieldPath: "s3://wecc-historical-wx/4_merge_wx/ASOSAWOS/ASOSAWOS_72012200114.zarr/"},
		{domain.FieldNetworkID: "CIMIS", domain.FieldStationID: "CIMIS_2", domain.FieldPath: "s3://wecc-historical-wx/4_merge_wx/CIMIS/CIMIS_2.zarr/"},
	}

	out, err := w.Write(context.Background(), def, records)
	require.NoError(t, err)
	assert.Equal(t, catalog.Output{
		CSVURI:  "/catalogs/hdp/era-hdp-collection.csv",
		JSONURI: "/catalogs/hdp/era-hdp-collection.json",
		Rows:    2,
	}, out)

	table, err := store.Read(context.Background(), out.CSVURI)
	require.NoError(t, err)
	want := "network_id,station_id,path\n" +
		"ASOSAWOS,ASOSAWOS_72012200114,s3://wecc-historical-wx/4_merge_wx/ASOSAWOS/ASOSAWOS_72012200114.zarr/\n" +
		"CIMIS,CIMIS_2,s3://wecc-historical-wx/4_merge_wx/CIMIS/CIMIS_2.zarr/\n"
	assert.Equal(t, want, string(table))

	doc, err := store.Read(context.Background(), out.JSONURI)
	require.NoError(t, err)
	var m domain.Manifest
	require.NoError(t, json.Unmarshal(doc, &m))

	wantManifest := domain.Manifest{
		ESMCatVersion: "0.0.1",
		ID:            "era-hdp-collection",
		Description:   "Eagle Rock Analytics Historical Data Platform Catalog",
		LastUpdated:   "2025-03-04T05:06:07Z",
		Attributes: []domain.Attribute{
			{ColumnName: "network_id"},
			{ColumnName: "station_id"},
			{ColumnName: "path"},
		},
		Assets: domain.Assets{ColumnName: "path", Format: "zarr"},
		AggregationControl: domain.AggregationControl{
			VariableColumnName: "station_id",
			GroupbyAttrs:       []string{"network_id", "station_id"},
			Aggregations: []domain.Aggregation{
				{Type: "union", AttributeName: "station_id", Options: map[string]any{}},
			},
		},
		CatalogFile: "/catalogs/hdp/era-hdp-collection.csv",
	}
	if diff := cmp.Diff(wantManifest, m); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestWriter_EmptyCatalog(t *testing.T) {
	store := storage.NewLocalStore(memfs.New())
	w := catalog.NewWriter(store, slog.Default())

	def := catalog.Builtins()["renewables"]
	def.OutputLocation = "/out"

	out, err := w.Write(context.Background(), def, nil)
	require.NoError(t, err)
	assert.Zero(t, out.Rows)

	table, err := store.Read(context.Background(), out.CSVURI)
	require.NoError(t, err)
	assert.Equal(t, "installation,activity_id,institution_id,source_id,experiment_id,table_id,variable_id,grid_label,path\n", string(table))
}

func TestWriter_StoreFailure(t *testing.T) {
	w := catalog.NewWriter(storage.NewHTTPStore(time.Second), slog.Default())

	def := catalog.Builtins()["hdp"]
	def.OutputLocation = "https://example.com/catalogs"

	_, err := w.Write(context.Background(), def, nil)
	assert.ErrorIs(t, err, storage.ErrReadOnly)
}

func TestEncodeCSV_Quoting(t *testing.T) {
	data, err := catalog.EncodeCSV([]string{"a", "b"}, []domain.Record{{"a": "x,y", "b": `say "hi"`}})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n\"x,y\",\"say \"\"hi\"\"\"\n", string(data))
}
