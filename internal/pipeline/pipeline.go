package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/zarr-catalog-etl/internal/catalog"
	"github.com/couchcryptid/zarr-catalog-etl/internal/domain"
	"github.com/couchcryptid/zarr-catalog-etl/internal/observability"
)

// Crawler reports every object key that belongs in the catalog.
type Crawler interface {
	Crawl(ctx context.Context, fn func(uri string) error) error
}

// CatalogWriter stores the CSV table and JSON manifest for a definition.
type CatalogWriter interface {
	Write(ctx context.Context, def catalog.Definition, records []domain.Record) (catalog.Output, error)
}

// KeyPatcher points a stored manifest's catalog_file at a public URL.
type KeyPatcher interface {
	Patch(ctx context.Context, location, publicURL, name string) (string, error)
}

// Notifier announces a published catalog.
type Notifier interface {
	NotifyPublished(ctx context.Context, event domain.CatalogPublished) error
}

// Summary describes one completed build.
type Summary struct {
	RunID       string           `json:"run_id"`
	Catalog     string           `json:"catalog"`
	Crawled     int              `json:"crawled"`
	Records     int              `json:"records"`
	Invalid     int              `json:"invalid"`
	Duplicates  int              `json:"duplicates"`
	Failures    []domain.Failure `json:"invalid_assets"`
	CSVURI      string           `json:"csv_uri"`
	JSONURI     string           `json:"json_uri"`
	CatalogFile string           `json:"catalog_file"`
	Patched     bool             `json:"patched"`
	Duration    time.Duration    `json:"duration_ns"`
	FinishedAt  time.Time        `json:"finished_at"`
}

// Pipeline runs one catalog build: crawl, parse, clean, write, patch, notify.
type Pipeline struct {
	def      catalog.Definition
	parser   domain.Parser
	crawler  Crawler
	writer   CatalogWriter
	patcher  KeyPatcher
	notifier Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics
	last     atomic.Pointer[Summary]
}

// New creates a Pipeline for def. notifier may be nil.
func New(def catalog.Definition, c Crawler, w CatalogWriter, pt KeyPatcher, n Notifier, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		def:      def,
		parser:   def.Parser(),
		crawler:  c,
		writer:   w,
		patcher:  pt,
		notifier: n,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a build has completed, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.last.Load() == nil {
		return errors.New("no catalog build has completed yet")
	}
	return nil
}

// LastSummary returns the most recent completed build, if any.
func (p *Pipeline) LastSummary() (Summary, bool) {
	s := p.last.Load()
	if s == nil {
		return Summary{}, false
	}
	return *s, true
}

// Run executes one build. Unparseable keys are counted and skipped; storage
// and patch failures stop the build and are returned.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString(), Catalog: p.def.Name}
	logger := p.logger.With("run_id", sum.RunID, "catalog", p.def.Name)

	logger.Info("catalog build started", "paths", len(p.def.Paths), "depth", p.def.Depth)
	p.metrics.BuildRunning.Set(1)
	defer p.metrics.BuildRunning.Set(0)

	results, err := p.extract(ctx, logger)
	if err != nil {
		return sum, err
	}
	sum.Crawled = len(results)

	cleaned := domain.Clean(results)
	sum.Records = len(cleaned.Records)
	sum.Invalid = len(cleaned.Failures)
	sum.Duplicates = cleaned.Duplicates
	sum.Failures = cleaned.Failures
	p.metrics.DuplicatesDropped.Add(float64(cleaned.Duplicates))

	out, err := p.writer.Write(ctx, p.def, cleaned.Records)
	if err != nil {
		return sum, fmt.Errorf("write catalog: %w", err)
	}
	p.metrics.RecordsWritten.Add(float64(out.Rows))
	sum.CSVURI, sum.JSONURI, sum.CatalogFile = out.CSVURI, out.JSONURI, out.CSVURI

	if p.def.PublicURL != "" {
		file, err := p.patcher.Patch(ctx, p.def.OutputLocation, p.def.PublicURL, p.def.Name)
		if err != nil {
			p.metrics.ManifestPatches.WithLabelValues("error").Inc()
			return sum, fmt.Errorf("patch catalog file key: %w", err)
		}
		p.metrics.ManifestPatches.WithLabelValues("success").Inc()
		sum.CatalogFile = file
		sum.Patched = true
	}

	sum.Duration = time.Since(start)
	sum.FinishedAt = time.Now().UTC()
	p.metrics.BuildDuration.Observe(sum.Duration.Seconds())

	p.notify(ctx, logger, sum)

	p.last.Store(&sum)
	logger.Info("catalog build complete",
		"crawled", sum.Crawled,
		"records", sum.Records,
		"invalid", sum.Invalid,
		"duplicates", sum.Duplicates,
		"catalog_file", sum.CatalogFile,
		"duration", sum.Duration,
	)
	return sum, nil
}

// extract crawls and parses every key. Parse failures become Failure results.
func (p *Pipeline) extract(ctx context.Context, logger *slog.Logger) ([]domain.Result, error) {
	var results []domain.Result
	err := p.crawler.Crawl(ctx, func(uri string) error {
		p.metrics.AssetsCrawled.Inc()
		res := p.parser.Parse(uri)
		if !res.OK() {
			p.metrics.ParseFailures.Inc()
			logger.Warn("invalid asset, skipping", "path", res.Failure.InvalidAsset)
			logger.Debug("invalid asset traceback", "path", res.Failure.InvalidAsset, "traceback", res.Failure.Traceback)
		}
		results = append(results, res)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}
	return results, nil
}

// notify publishes the build event. Failures are logged; the catalog is already written.
func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, sum Summary) {
	if p.notifier == nil {
		return
	}
	event := domain.CatalogPublished{
		RunID:       sum.RunID,
		Catalog:     sum.Catalog,
		ManifestURI: sum.JSONURI,
		CatalogFile: sum.CatalogFile,
		Records:     sum.Records,
		Invalid:     sum.Invalid,
		Duplicates:  sum.Duplicates,
		PublishedAt: sum.FinishedAt,
	}
	if err := p.notifier.NotifyPublished(ctx, event); err != nil {
		logger.Warn("publish catalog event failed", "error", err)
	}
}
