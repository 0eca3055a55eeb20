package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const ensureBucketTimeout = 5 * time.Second

// Client uploads user-facing image assets (avatars, cover images) to a MinIO
// bucket and hands back plain public URLs; the rest of the system only ever
// sees the URL string.
type Client struct {
	mc        *minio.Client
	bucket    string
	publicURL string
}

// Config carries MinIO connection and bucket information.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	// PublicURL is the externally reachable base for stored objects. When
	// empty, URLs are built from the endpoint itself.
	PublicURL string
}

// New establishes a MinIO client and makes sure the asset bucket exists.
func New(ctx context.Context, cfg Config) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, ensureBucketTimeout)
	defer cancel()

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.Bucket, err)
		}
	}

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &Client{mc: mc, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

// Upload stores an object under a generated name in the given prefix
// ("avatars", "covers") and returns its public URL. The original filename only
// contributes its extension.
func (c *Client) Upload(ctx context.Context, prefix, filename, contentType string, reader io.Reader, size int64) (string, error) {
	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), strings.ToLower(path.Ext(filename)))

	_, err := c.mc.PutObject(ctx, c.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", c.publicURL, c.bucket, objectName), nil
}

// Ping verifies the asset bucket is reachable. Used by the health check.
func (c *Client) Ping(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to reach object store: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %q is missing", c.bucket)
	}
	return nil
}

// Remove deletes a previously uploaded object given its public URL. Used for
// best-effort cleanup when a superseded avatar or cover is replaced; failures
// are the caller's to ignore.
func (c *Client) Remove(ctx context.Context, assetURL string) error {
	u, err := url.Parse(assetURL)
	if err != nil {
		return fmt.Errorf("failed to parse asset url: %w", err)
	}

	objectName := strings.TrimPrefix(u.Path, "/"+c.bucket+"/")
	if objectName == "" || objectName == u.Path {
		return fmt.Errorf("asset url %q does not belong to bucket %q", assetURL, c.bucket)
	}

	if err := c.mc.RemoveObject(ctx, c.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}

	return nil
}
