// Package archive stores submitted certificate batches in S3-compatible
// object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

// Config holds object storage settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ObjectStore is the subset of *minio.Client used by the archive.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// CertificateArchive writes certificate manifests as JSON objects under
// certificates/<courseId>/<batch uuid>.json.
type CertificateArchive struct {
	store  ObjectStore
	bucket string
	newID  func() string
}

// NewMinIOClient creates a MinIO client from the config.
func NewMinIOClient(cfg Config) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

// NewCertificateArchive creates an archive writing into bucket.
func NewCertificateArchive(store ObjectStore, bucket string) *CertificateArchive {
	return &CertificateArchive{
		store:  store,
		bucket: bucket,
		newID:  func() string { return uuid.NewString() },
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *CertificateArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.store.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.store.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// ObjectKey returns the key of a batch.
func ObjectKey(courseID int64, batchID string) string {
	return path.Join("certificates", strconv.FormatInt(courseID, 10), batchID+".json")
}

// Store uploads the batch and returns its object key.
func (a *CertificateArchive) Store(ctx context.Context, courseID int64, certs []course.Certificate) (string, error) {
	if certs == nil {
		certs = []course.Certificate{}
	}
	data, err := json.Marshal(certs)
	if err != nil {
		return "", fmt.Errorf("marshal certificates: %w", err)
	}

	key := ObjectKey(courseID, a.newID())
	_, err = a.store.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return key, nil
}
