package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storagev1 "google.golang.org/api/storage/v1"
)

// GCSStore writes objects to a Google Cloud Storage bucket.
type GCSStore struct {
	srv     *storagev1.Service
	bucket  string
	baseURL string
}

// GCSConfig configures NewGCSStore.
type GCSConfig struct {
	Bucket          string
	CredentialsFile string
	// PublicBaseURL overrides https://storage.googleapis.com/<bucket>, e.g. for a CDN.
	PublicBaseURL string
}

// NewGCSStore connects to the bucket. When opts are given they replace
// credential discovery.
func NewGCSStore(ctx context.Context, cfg GCSConfig, opts ...option.ClientOption) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}

	clientOpts := []option.ClientOption{option.WithScopes(storagev1.DevstorageReadWriteScope)}
	if len(opts) == 0 {
		if cfg.CredentialsFile != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
		} else {
			creds, err := google.FindDefaultCredentials(ctx, storagev1.DevstorageReadWriteScope)
			if err != nil {
				return nil, fmt.Errorf("failed to find default google credentials: %w", err)
			}
			clientOpts = append(clientOpts, option.WithCredentials(creds))
		}
	}
	clientOpts = append(clientOpts, opts...)

	srv, err := storagev1.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com/" + cfg.Bucket
	}
	return &GCSStore{srv: srv, bucket: cfg.Bucket, baseURL: strings.TrimRight(base, "/")}, nil
}

func (g *GCSStore) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	obj := &storagev1.Object{
		Name:         path,
		ContentType:  contentType,
		CacheControl: "no-cache",
	}
	_, err := g.srv.Objects.Insert(g.bucket, obj).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload object %q: %w", path, err)
	}
	return g.URLPrefix() + path, nil
}

func (g *GCSStore) Delete(ctx context.Context, path string) error {
	err := g.srv.Objects.Delete(g.bucket, path).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete object %q: %w", path, err)
	}
	return nil
}

func (g *GCSStore) URLPrefix() string { return g.baseURL + "/" }

var _ Store = (*GCSStore)(nil)
