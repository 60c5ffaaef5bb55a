// Package storage reads and writes whole objects addressed by URI, regardless
// of whether they live on local disk, in S3, or behind a public HTTPS URL.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the addressed object does not exist.
	ErrNotFound = errors.New("storage: object not found")
	// ErrReadOnly is returned when writing to a location that only supports reads.
	ErrReadOnly = errors.New("storage: location is read-only")
	// ErrUnsupported is returned for operations a backend cannot perform.
	ErrUnsupported = errors.New("storage: operation not supported")
)

// WalkFunc is called with the URI of every object found by Walk.
type WalkFunc func(uri string) error

// Store is a storage-agnostic object accessor. Writes replace the whole object.
type Store interface {
	Read(ctx context.Context, uri string) ([]byte, error)
	Write(ctx context.Context, uri string, data []byte) error
	// Walk visits objects under root that sit at most depth directories below
	// it. A negative depth walks without bound.
	Walk(ctx context.Context, root string, depth int, fn WalkFunc) error
}

// Router dispatches to a Store by URI scheme. URIs without a scheme, and
// file:// URIs, go to the local store.
type Router struct {
	local    Store
	backends map[string]Store
}

// NewRouter creates a Router with local as the store for plain paths.
func NewRouter(local Store) *Router {
	return &Router{
		local:    local,
		backends: make(map[string]Store),
	}
}

// Handle registers s for URIs with the given scheme.
func (r *Router) Handle(scheme string, s Store) *Router {
	r.backends[scheme] = s
	return r
}

func (r *Router) resolve(uri string) (Store, error) {
	scheme := Scheme(uri)
	if scheme == "" || scheme == "file" {
		if r.local == nil {
			return nil, fmt.Errorf("no local store for %q: %w", uri, ErrUnsupported)
		}
		return r.local, nil
	}
	s, ok := r.backends[scheme]
	if !ok {
		return nil, fmt.Errorf("no store for scheme %q: %w", scheme, ErrUnsupported)
	}
	return s, nil
}

func (r *Router) Read(ctx context.Context, uri string) ([]byte, error) {
	s, err := r.resolve(uri)
	if err != nil {
		return nil, err
	}
	return s.Read(ctx, uri)
}

func (r *Router) Write(ctx context.Context, uri string, data []byte) error {
	s, err := r.resolve(uri)
	if err != nil {
		return err
	}
	return s.Write(ctx, uri, data)
}

func (r *Router) Walk(ctx context.Context, root string, depth int, fn WalkFunc) error {
	s, err := r.resolve(root)
	if err != nil {
		return err
	}
	return s.Walk(ctx, root, depth, fn)
}
