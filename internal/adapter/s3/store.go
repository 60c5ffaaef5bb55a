// Package s3 implements storage.Store on Amazon S3 and S3-compatible endpoints.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/couchcryptid/zarr-catalog-etl/internal/storage"
)

const uriPrefix = "s3://"

// API is the subset of the S3 client used by Store.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Options configure the S3 client.
type Options struct {
	Region         string
	Endpoint       string
	ForcePathStyle bool
}

// NewClient builds an S3 client from the default AWS credential chain.
func NewClient(ctx context.Context, opts Options) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.ForcePathStyle
	}), nil
}

// Store implements storage.Store for s3:// URIs.
type Store struct {
	client API
	logger *slog.Logger
}

// New wraps an S3 client.
func New(client API, logger *slog.Logger) *Store {
	return &Store{client: client, logger: logger}
}

func (s *Store) Read(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := parseURI(uri)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translateError("get", uri, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", uri, err)
	}
	return data, nil
}

// Write uploads data in a single PutObject, which S3 applies atomically.
func (s *Store) Write(ctx context.Context, uri string, data []byte) error {
	bucket, key, err := parseURI(uri)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mimetype.Detect(data).String()),
	})
	if err != nil {
		return translateError("put", uri, err)
	}
	s.logger.Debug("object written", "uri", uri, "bytes", len(data))
	return nil
}

// Walk lists root one directory level at a time with a "/" delimiter, so a
// non-negative depth bounds how far the listing descends. Keys and
// subdirectories of each level are visited in lexical order.
func (s *Store) Walk(ctx context.Context, root string, depth int, fn storage.WalkFunc) error {
	bucket, prefix, err := parseURI(root)
	if err != nil {
		return err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	lists := 0
	err = s.walkLevel(ctx, bucket, prefix, 0, depth, &lists, fn)
	if err != nil {
		return fmt.Errorf("walk %q: %w", root, err)
	}
	s.logger.Debug("listing complete", "root", root, "lists", lists)
	return nil
}

// entry is a key or a common prefix returned by one delimited listing.
type entry struct {
	name string
	dir  bool
}

func (s *Store) walkLevel(ctx context.Context, bucket, prefix string, level, depth int, lists *int, fn storage.WalkFunc) error {
	entries, err := s.listLevel(ctx, bucket, prefix)
	if err != nil {
		return err
	}
	*lists++

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.dir {
			if depth >= 0 && level >= depth {
				continue
			}
			if err := s.walkLevel(ctx, bucket, e.name, level+1, depth, lists, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(uriPrefix + bucket + "/" + e.name); err != nil {
			return err
		}
	}
	return nil
}

// listLevel returns the keys and common prefixes directly under prefix.
func (s *Store) listLevel(ctx context.Context, bucket, prefix string) ([]entry, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var entries []entry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateError("list", uriPrefix+bucket+"/"+prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix || strings.HasSuffix(key, "/") {
				continue
			}
			entries = append(entries, entry{name: key})
		}
		for _, cp := range page.CommonPrefixes {
			entries = append(entries, entry{name: aws.ToString(cp.Prefix), dir: true})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries, nil
}

// parseURI splits "s3://bucket/key" into bucket and key.
func parseURI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, uriPrefix) {
		return "", "", fmt.Errorf("s3 URI must begin with %s: %q", uriPrefix, uri)
	}
	rest := strings.TrimPrefix(uri, uriPrefix)
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("s3 URI has no bucket: %q", uri)
	}
	return bucket, key, nil
}

func translateError(op, uri string, err error) error {
	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noKey) || errors.As(err, &noBucket) {
		return fmt.Errorf("%s %q: %w", op, uri, storage.ErrNotFound)
	}
	return fmt.Errorf("%s %q: %w", op, uri, err)
}
