// Package domain models catalog rows extracted from Zarr store object keys.
//
// # Data Source
//
// Datasets live in object storage as Zarr stores. A store is found by its
// consolidated metadata marker, a key ending in ".zmetadata". The crawler
// hands every marker key to a family [Parser], which turns the key into a
// flat [Record] or, when the key does not follow the family convention, a
// [Failure] carrying the original key and a stack-bearing error trace.
//
// # Path Conventions
//
// Simulation family (renewables), rooted at e.g. "s3://wfclimres/":
//
//	<institution>/<installation>/<model>/<experiment>/<table>/<variable>/<grid>/<marker file>
//	"era/pv_utility/ec-earth3/historical/1hr/cf/d03/.zmetadata"
//
//	Exactly eight segments follow the root. The institution directory and the
//	marker file are not copied into the record; institution_id and activity_id
//	are fixed ("ERA", "WRF"). The raw model directory is translated through a
//	lookup table ("ec-earth3" -> "EC-Earth3"). Lookup is exact: a directory
//	such as "EC-Earth3" matches no key and the key becomes a [Failure].
//
// Station family (historical data platform), rooted at e.g.
// "s3://wecc-historical-wx/4_merge_wx/":
//
//	<network>/<station>.zarr[/<marker file>]
//	"ASOSAWOS/ASOSAWOS_72493023230.zarr/.zmetadata"
//
//	Two or three segments follow the root. station_id is the station segment
//	cut at the first ".zarr".
//
// Both families set path to the input key cut at the first occurrence of the
// marker, so "…/d03/.zmetadata" becomes "…/d03/".
//
// # Cleaning
//
// [Clean] partitions parse results: failures are dropped and reported, and
// records identical in every field are kept once, first occurrence wins.
//
// # Manifest
//
// [Manifest] is the intake-ESM (esmcat 0.0.1) description written next to the
// CSV table. Its catalog_file key is later rewritten to a public URL.
package domain
