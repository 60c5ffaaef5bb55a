package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManifest(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.March, 4, 5, 6, 7, 0, time.UTC)))
	t.Cleanup(func() {
		SetClock(nil)
	})

	spec := ManifestSpec{
		Name:           "era-hdp-collection",
		Description:    "Historical Data Platform Catalog",
		Columns:        StationColumns,
		PathColumn:     FieldPath,
		VariableColumn: FieldStationID,
		DataFormat:     "zarr",
		GroupBy:        []string{FieldNetworkID, FieldStationID},
		Aggregations:   []Aggregation{{Type: "union", AttributeName: FieldStationID}},
	}

	m := NewManifest(spec, "s3://bucket/prefix/era-hdp-collection.csv")

	assert.Equal(t, ESMCatVersion, m.ESMCatVersion)
	assert.Equal(t, "era-hdp-collection", m.ID)
	assert.Nil(t, m.Title)
	assert.Equal(t, "2025-03-04T05:06:07Z", m.LastUpdated)
	assert.Equal(t, []Attribute{{ColumnName: "network_id"}, {ColumnName: "station_id"}, {ColumnName: "path"}}, m.Attributes)
	assert.Equal(t, Assets{ColumnName: "path", Format: "zarr"}, m.Assets)
	assert.Equal(t, "station_id", m.AggregationControl.VariableColumnName)
	require.Len(t, m.AggregationControl.Aggregations, 1)
	assert.NotNil(t, m.AggregationControl.Aggregations[0].Options)
	assert.Equal(t, "s3://bucket/prefix/era-hdp-collection.csv", m.CatalogFile)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title":null`)
	assert.Contains(t, string(data), `"aggregations":[{"type":"union","attribute_name":"station_id","options":{}}]`)
}

func TestNewManifest_Title(t *testing.T) {
	m := NewManifest(ManifestSpec{Name: "x", Title: "Renewables"}, "x.csv")
	require.NotNil(t, m.Title)
	assert.Equal(t, "Renewables", *m.Title)
}
