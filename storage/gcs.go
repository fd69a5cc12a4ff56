package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSBackend stores objects in a Cloud Storage bucket. The object generation
// is the version token and conditional writes use generation preconditions,
// so the version check is atomic across processes.
type GCSBackend struct {
	client *gcs.Client
	bucket string
	prefix string
}

// NewGCSBackend stores keys under prefix in bucket, e.g. prefix "data/".
func NewGCSBackend(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCSBackend, error) {
	if bucket == "" {
		return nil, errors.New("gcs: bucket name is required")
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: create client: %w", err)
	}
	return &GCSBackend{client: client, bucket: bucket, prefix: prefix}, nil
}

func (b *GCSBackend) Name() string { return "gcs" }

// Close releases the underlying client.
func (b *GCSBackend) Close() error {
	return b.client.Close()
}

func (b *GCSBackend) GetObject(ctx context.Context, key string) (*Object, error) {
	name := b.prefix + key
	r, err := b.client.Bucket(b.bucket).Object(name).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("gcs: open gs://%s/%s: %w", b.bucket, name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs: read gs://%s/%s: %w", b.bucket, name, err)
	}
	return &Object{Key: key, Data: data, Version: strconv.FormatInt(r.Attrs.Generation, 10)}, nil
}

func (b *GCSBackend) PutObject(ctx context.Context, key string, data []byte, expectedVersion string) (string, error) {
	name := b.prefix + key
	obj := b.client.Bucket(b.bucket).Object(name)
	switch expectedVersion {
	case "":
	case AbsentVersion:
		obj = obj.If(gcs.Conditions{DoesNotExist: true})
	default:
		gen, err := strconv.ParseInt(expectedVersion, 10, 64)
		if err != nil || gen <= 0 {
			return "", ErrVersionMismatch
		}
		obj = obj.If(gcs.Conditions{GenerationMatch: gen})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	w.CacheControl = "no-cache, no-store, must-revalidate"
	if _, err := w.Write(data); err != nil {
		cancel()
		w.Close()
		return "", fmt.Errorf("gcs: write gs://%s/%s: %w", b.bucket, name, err)
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return "", ErrVersionMismatch
		}
		return "", fmt.Errorf("gcs: commit gs://%s/%s: %w", b.bucket, name, err)
	}
	return strconv.FormatInt(w.Attrs().Generation, 10), nil
}

func (b *GCSBackend) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	it := b.client.Bucket(b.bucket).Objects(ctx, &gcs.Query{Prefix: b.prefix + prefix})
	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs: list gs://%s/%s%s: %w", b.bucket, b.prefix, prefix, err)
		}
		keys = append(keys, strings.TrimPrefix(attrs.Name, b.prefix))
	}
	return keys, nil
}
