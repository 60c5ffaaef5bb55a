package domain

import "time"

// CatalogPublished announces a completed catalog build to downstream consumers.
type CatalogPublished struct {
	RunID       string    `json:"run_id"`
	Catalog     string    `json:"catalog"`
	ManifestURI string    `json:"manifest_uri"`
	CatalogFile string    `json:"catalog_file"`
	Records     int       `json:"records"`
	Invalid     int       `json:"invalid"`
	Duplicates  int       `json:"duplicates"`
	PublishedAt time.Time `json:"published_at"`
}
