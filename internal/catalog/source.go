package catalog

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds connection settings for s3:// catalog sources.
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool
}

// ObjectGetter reads a whole object from a bucket.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// S3Source reads catalog objects from S3 or MinIO.
type S3Source struct {
	client *minio.Client
}

// NewS3Source creates an S3 client from cfg. The endpoint may be a host or a URL; an https
// scheme turns on TLS.
func NewS3Source(cfg S3Config) (*S3Source, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}
	var creds *credentials.Credentials
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &S3Source{client: client}, nil
}

// GetObject downloads bucket/key into memory.
func (s *S3Source) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// ParseS3URI splits s3://bucket/key. ok is false for anything that is not an s3 URI.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// IsRemote reports whether source is an object storage location.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "s3://")
}

// Fetch reads the raw bytes of source, a local path or s3://bucket/key. objects may be nil
// for local sources.
func Fetch(ctx context.Context, source string, objects ObjectGetter) ([]byte, error) {
	if IsRemote(source) {
		bucket, key, ok := ParseS3URI(source)
		if !ok {
			return nil, fmt.Errorf("invalid s3 catalog location %q (want s3://bucket/key)", source)
		}
		if objects == nil {
			return nil, fmt.Errorf("catalog %s requires s3 settings", source)
		}
		return objects.GetObject(ctx, bucket, key)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return data, nil
}
