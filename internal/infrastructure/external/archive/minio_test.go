package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

type fakeStore struct {
	buckets map[string]bool
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{buckets: map[string]bool{}, objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStore) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.buckets[bucket], nil
}

func (f *fakeStore) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.buckets[bucket] = true
	return nil
}

func (f *fakeStore) PutObject(_ context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[bucket+"/"+object] = data
	f.types[bucket+"/"+object] = opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func TestCertificateArchive_Store(t *testing.T) {
	store := newFakeStore()
	a := NewCertificateArchive(store, "certs")
	a.newID = func() string { return "batch-1" }

	certs := []course.Certificate{{StudentID: 5, Course: "Go (golang)", Name: "Ann Lee", Date: 1}}
	key, err := a.Store(context.Background(), 12, certs)

	require.NoError(t, err)
	assert.Equal(t, "certificates/12/batch-1.json", key)
	assert.Equal(t, "application/json", store.types["certs/"+key])

	var stored []course.Certificate
	require.NoError(t, json.Unmarshal(store.objects["certs/"+key], &stored))
	assert.Equal(t, certs, stored)
}

func TestCertificateArchive_StoreError(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("denied")

	_, err := NewCertificateArchive(store, "certs").Store(context.Background(), 1, nil)
	assert.ErrorContains(t, err, "denied")
}

func TestCertificateArchive_EnsureBucket(t *testing.T) {
	store := newFakeStore()
	a := NewCertificateArchive(store, "certs")

	require.NoError(t, a.EnsureBucket(context.Background()))
	assert.True(t, store.buckets["certs"])
	require.NoError(t, a.EnsureBucket(context.Background()))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "certificates/7/abc.json", ObjectKey(7, "abc"))
}
