package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/phambaophuc/dali/internal/apperror"
	"github.com/phambaophuc/dali/internal/config"
)

// S3Source reads object keys from one bucket. A custom endpoint switches to
// path-style addressing for MinIO and other local stores.
type S3Source struct {
	client  *minio.Client
	bucket  string
	timeout time.Duration
}

func NewS3Source(cfg config.S3Config, timeout time.Duration) (*S3Source, error) {
	endpoint := cfg.Endpoint
	lookup := minio.BucketLookupPath
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
		lookup = minio.BucketLookupAuto
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        s3Credentials(cfg),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init s3 client: %w", err)
	}

	return &S3Source{client: client, bucket: cfg.Bucket, timeout: timeout}, nil
}

// Static keys win; otherwise fall back to the environment and instance role.
func s3Credentials(cfg config.S3Config) *credentials.Credentials {
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		return credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.EnvMinio{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})
}

func (s *S3Source) Name() string {
	return "s3"
}

func (s *S3Source) Fetch(ctx context.Context, reference string, limits Limits) (*FetchedImage, error) {
	if reference == "" {
		return nil, apperror.InvalidReference(reference)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	obj, err := s.client.GetObject(ctx, s.bucket, reference, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyS3(reference, err)
	}
	defer obj.Close()

	// GetObject is lazy; Stat issues the request and surfaces NoSuchKey.
	info, err := obj.Stat()
	if err != nil {
		return nil, classifyS3(reference, err)
	}
	if limits.MaxBytes > 0 && info.Size > limits.MaxBytes {
		return nil, apperror.SizeExceeded(reference, limits.MaxBytes)
	}

	data, err := readLimited(obj, limits.MaxBytes)
	if err != nil {
		if err == errTooLarge {
			return nil, apperror.SizeExceeded(reference, limits.MaxBytes)
		}
		return nil, classifyS3(reference, err)
	}

	headers := http.Header{}
	for key, value := range info.UserMetadata {
		headers.Set("x-amz-meta-"+strings.ToLower(key), value)
	}

	return &FetchedImage{Data: data, Headers: headers}, nil
}

func (s *S3Source) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

func classifyS3(reference string, err error) error {
	if isTimeout(err) {
		return apperror.FetchTimeout(reference, err)
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey":
		return apperror.Upstream(http.StatusNotFound, reference)
	case "AccessDenied":
		return apperror.Upstream(http.StatusForbidden, reference)
	case "XMinioInvalidObjectName":
		return apperror.InvalidReference(reference)
	default:
		return apperror.FetchFailed(reference, err)
	}
}
