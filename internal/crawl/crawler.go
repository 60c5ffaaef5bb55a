// Package crawl discovers Zarr metadata keys under one or more storage prefixes.
package crawl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/couchcryptid/zarr-catalog-etl/internal/storage"
)

// Options select which objects a Crawler reports.
type Options struct {
	Paths []string
	// Depth bounds how many directories below each path are descended.
	Depth   int
	Include []string
	Exclude []string
}

// Crawler walks storage prefixes and filters keys with glob patterns matched
// against the key's path relative to the prefix being walked.
type Crawler struct {
	store  storage.Store
	opts   Options
	logger *slog.Logger
}

// New validates the glob patterns and returns a Crawler.
func New(store storage.Store, opts Options, logger *slog.Logger) (*Crawler, error) {
	if len(opts.Paths) == 0 {
		return nil, fmt.Errorf("crawl: no paths configured")
	}
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("crawl: invalid glob pattern %q", p)
		}
	}
	return &Crawler{store: store, opts: opts, logger: logger}, nil
}

// Crawl calls fn for every matching key, path by path, in walk order.
func (c *Crawler) Crawl(ctx context.Context, fn func(uri string) error) error {
	for _, root := range c.opts.Paths {
		seen, matched := 0, 0
		err := c.store.Walk(ctx, root, c.opts.Depth, func(uri string) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			seen++
			if !c.Match(storage.Relative(root, uri)) {
				return nil
			}
			matched++
			return fn(uri)
		})
		if err != nil {
			return fmt.Errorf("crawl %q: %w", root, err)
		}
		c.logger.Info("path crawled", "root", root, "objects", seen, "matched", matched)
	}
	return nil
}

// Match reports whether rel passes the include and exclude patterns. With no
// include patterns every key is included.
func (c *Crawler) Match(rel string) bool {
	for _, p := range c.opts.Exclude {
		if doublestar.MatchUnvalidated(p, rel) {
			return false
		}
	}
	if len(c.opts.Include) == 0 {
		return true
	}
	for _, p := range c.opts.Include {
		if doublestar.MatchUnvalidated(p, rel) {
			return true
		}
	}
	return false
}
