package minioctrl

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docsearch/src/fsutil"
)

const (
	UploadsBucket = "uploaded-files"
)

type MinioService struct {
	client *minio.Client
}

func NewMinioService(endpoint, accessKeyID, secretAccessKey string, useSSL bool) (*MinioService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioService{
		client: client,
	}, nil
}

func (s *MinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	exists, err := s.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (s *MinioService) GetObject(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", fsutil.ErrNotFound, objectName)
		}
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}

	return data, nil
}

func (s *MinioService) PutObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, bucketName, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}

	return nil
}

// BucketArchive stores uploads as objects of a single bucket.
type BucketArchive struct {
	svc    *MinioService
	bucket string
}

var _ fsutil.Archive = (*BucketArchive)(nil)

// NewBucketArchive makes sure bucket exists and returns an archive over it.
func NewBucketArchive(ctx context.Context, svc *MinioService, bucket string) (*BucketArchive, error) {
	if bucket == "" {
		bucket = UploadsBucket
	}
	if err := svc.EnsureBucketExists(ctx, bucket); err != nil {
		return nil, err
	}
	return &BucketArchive{svc: svc, bucket: bucket}, nil
}

func (a *BucketArchive) Put(ctx context.Context, key string, data []byte) error {
	return a.svc.PutObject(ctx, a.bucket, key, data, contentTypeFor(key))
}

func (a *BucketArchive) Get(ctx context.Context, key string) ([]byte, error) {
	return a.svc.GetObject(ctx, a.bucket, key)
}

// Ping checks that the bucket is reachable.
func (a *BucketArchive) Ping(ctx context.Context) error {
	_, err := a.svc.client.BucketExists(ctx, a.bucket)
	return err
}
