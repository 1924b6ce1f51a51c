// Package minio stores profiles as JSON objects "<namespace>/<key>.json"
// in a single bucket.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/dtroode/profilekeeper/internal/model"
	"github.com/dtroode/profilekeeper/internal/repository"
)

const (
	objectSuffix    = ".json"
	codeNoSuchKey   = "NoSuchKey"
	jsonContentType = "application/json"
)

// Internal adapter interface to enable mocking without a real MinIO server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// Wrapper to adapt *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}
func (w minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}
func (w minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}
func (w minioClientWrapper) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return w.c.ListObjects(ctx, bucketName, opts)
}

var (
	_ model.ProfileStore  = (*Client)(nil)
	_ model.HealthChecker = (*Client)(nil)
)

type Client struct {
	api       minioAPI
	bucket    string
	namespace string
}

// NewClient creates a profile store on top of a real *minio.Client instance.
func NewClient(ctx context.Context, client *minio.Client, bucket, namespace string) (*Client, error) {
	return NewClientWithAPI(ctx, minioClientWrapper{c: client}, bucket, namespace)
}

// NewClientWithAPI allows injecting a mockable API (used in tests).
func NewClientWithAPI(ctx context.Context, api minioAPI, bucket, namespace string) (*Client, error) {
	c := &Client{
		api:       api,
		bucket:    bucket,
		namespace: namespace,
	}

	err := c.ensureBucketExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return c, nil
}

// ensureBucketExists creates the bucket if it doesn't exist
func (c *Client) ensureBucketExists(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (c *Client) prefix() string {
	return c.namespace + "/"
}

func (c *Client) objectName(key string) string {
	return c.prefix() + key + objectSuffix
}

// GetAll lists the namespace prefix and reads every object it finds.
func (c *Client) GetAll(ctx context.Context) ([]model.ProfileEntry, error) {
	const op = "list profiles"
	if err := repository.CheckContext(ctx, op); err != nil {
		return nil, err
	}

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := []model.ProfileEntry{}
	objects := c.api.ListObjects(listCtx, c.bucket, minio.ListObjectsOptions{Prefix: c.prefix(), Recursive: true})
	for obj := range objects {
		if obj.Err != nil {
			return nil, repository.BackendError(ctx, op, obj.Err)
		}
		if !strings.HasSuffix(obj.Key, objectSuffix) {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(obj.Key, c.prefix()), objectSuffix)

		data, err := c.read(ctx, obj.Key)
		if isNoSuchKey(err) {
			// removed after listing
			continue
		}
		if err != nil {
			return nil, repository.BackendError(ctx, op, err)
		}

		p, err := repository.Decode(key, data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.ProfileEntry{Key: key, Profile: p})
	}

	if err := ctx.Err(); err != nil {
		return nil, repository.BackendError(ctx, op, err)
	}

	return entries, nil
}

func (c *Client) GetByKey(ctx context.Context, key string) (model.Profile, error) {
	const op = "get profile"
	if err := model.ValidateKey(key); err != nil {
		return model.Profile{}, err
	}
	if err := repository.CheckContext(ctx, op); err != nil {
		return model.Profile{}, err
	}

	data, err := c.read(ctx, c.objectName(key))
	if isNoSuchKey(err) {
		return model.Profile{}, model.ErrNotFound
	}
	if err != nil {
		return model.Profile{}, repository.BackendError(ctx, op, err)
	}

	return repository.Decode(key, data)
}

func (c *Client) Save(ctx context.Context, key string, profile model.Profile) error {
	const op = "save profile"
	if err := model.ValidateKey(key); err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return err
	}
	if err := repository.CheckContext(ctx, op); err != nil {
		return err
	}

	data, err := repository.Encode(profile)
	if err != nil {
		return err
	}

	_, err = c.api.PutObject(ctx, c.bucket, c.objectName(key), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: jsonContentType})
	if err != nil {
		return repository.BackendError(ctx, op, err)
	}
	return nil
}

// Delete removes the object. S3 treats removal of a missing object as success.
func (c *Client) Delete(ctx context.Context, key string) error {
	const op = "delete profile"
	if model.ValidateKey(key) != nil {
		return nil
	}
	if err := repository.CheckContext(ctx, op); err != nil {
		return err
	}

	err := c.api.RemoveObject(ctx, c.bucket, c.objectName(key), minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return repository.BackendError(ctx, op, err)
	}
	return nil
}

// Ping checks that the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.BucketExists(ctx, c.bucket); err != nil {
		return repository.BackendError(ctx, "ping minio", err)
	}
	return nil
}

func (c *Client) read(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := c.api.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return io.ReadAll(obj)
}

func isNoSuchKey(err error) bool {
	return err != nil && minio.ToErrorResponse(err).Code == codeNoSuchKey
}
