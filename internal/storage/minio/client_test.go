package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/profilekeeper/internal/model"
	"github.com/dtroode/profilekeeper/internal/repository/storetest"
)

// fakeMinio implements minioAPI over an in-memory object map.
type fakeMinio struct {
	mu      sync.Mutex
	objects map[string][]byte

	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      bool

	putErr    error
	getErr    error
	removeErr error
	listErr   error

	lastPutOpts minioLib.PutObjectOptions
}

func newFakeMinio() *fakeMinio {
	return &fakeMinio{objects: map[string][]byte{}, bucketExists: true}
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	f.madeBucket = true
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, name string, reader io.Reader, _ int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	if f.putErr != nil {
		return minioLib.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minioLib.UploadInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[name] = data
	f.lastPutOpts = opts
	return minioLib.UploadInfo{Key: name, Size: int64(len(data))}, nil
}
func (f *fakeMinio) GetObject(_ context.Context, _ string, name string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[name]
	if !ok {
		return nil, minioLib.ErrorResponse{Code: "NoSuchKey"}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
func (f *fakeMinio) RemoveObject(_ context.Context, _ string, name string, _ minioLib.RemoveObjectOptions) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, name)
	return nil
}
func (f *fakeMinio) ListObjects(_ context.Context, _ string, opts minioLib.ListObjectsOptions) <-chan minioLib.ObjectInfo {
	f.mu.Lock()
	defer f.mu.Unlock()

	var names []string
	for name := range f.objects {
		if strings.HasPrefix(name, opts.Prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	ch := make(chan minioLib.ObjectInfo, len(names)+1)
	for _, name := range names {
		ch <- minioLib.ObjectInfo{Key: name}
	}
	if f.listErr != nil {
		ch <- minioLib.ObjectInfo{Err: f.listErr}
	}
	close(ch)
	return ch
}

func newTestClient(t *testing.T, api *fakeMinio) *Client {
	t.Helper()
	c, err := NewClientWithAPI(context.Background(), api, "starterbucket", "profile")
	require.NoError(t, err)
	return c
}

func TestClient_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) model.ProfileStore {
		return newTestClient(t, newFakeMinio())
	})
}

func TestNewClientWithAPI_BucketExists(t *testing.T) {
	api := newFakeMinio()
	c, err := NewClientWithAPI(context.Background(), api, "b", "profile")
	require.NoError(t, err)
	assert.Equal(t, "b", c.bucket)
	assert.False(t, api.madeBucket)
}

func TestNewClientWithAPI_CreateBucket(t *testing.T) {
	api := newFakeMinio()
	api.bucketExists = false
	c, err := NewClientWithAPI(context.Background(), api, "bucket", "profile")
	require.NoError(t, err)
	assert.Equal(t, "bucket", c.bucket)
	assert.True(t, api.madeBucket)
}

func TestNewClientWithAPI_BucketExistsError(t *testing.T) {
	api := newFakeMinio()
	api.bucketExistsErr = errors.New("boom")
	c, err := NewClientWithAPI(context.Background(), api, "bucket", "profile")
	assert.Nil(t, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure bucket exists")
}

func TestNewClientWithAPI_MakeBucketError(t *testing.T) {
	api := newFakeMinio()
	api.bucketExists = false
	api.makeBucketErr = errors.New("fail")
	c, err := NewClientWithAPI(context.Background(), api, "bucket", "profile")
	assert.Nil(t, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure bucket exists")
}

func TestClient_ObjectLayout(t *testing.T) {
	ctx := context.Background()
	api := newFakeMinio()
	c := newTestClient(t, api)

	require.NoError(t, c.Save(ctx, "alice", model.Profile{Name: "Alice"}))
	assert.JSONEq(t, `{"name":"Alice"}`, string(api.objects["profile/alice.json"]))
	assert.Equal(t, "application/json", api.lastPutOpts.ContentType)

	api.objects["profile/readme.txt"] = []byte("not a profile")
	api.objects["other/bob.json"] = []byte(`{"name":"Bob"}`)

	all, err := c.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.ProfileEntry{{Key: "alice", Profile: model.Profile{Name: "Alice"}}}, all)
}

func TestClient_BackendErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("dial tcp: connection refused")

	t.Run("list", func(t *testing.T) {
		api := newFakeMinio()
		c := newTestClient(t, api)
		api.listErr = boom
		_, err := c.GetAll(ctx)
		assert.ErrorIs(t, err, model.ErrStoreUnavailable)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("get", func(t *testing.T) {
		api := newFakeMinio()
		c := newTestClient(t, api)
		api.getErr = boom
		_, err := c.GetByKey(ctx, "alice")
		assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	})

	t.Run("put", func(t *testing.T) {
		api := newFakeMinio()
		c := newTestClient(t, api)
		api.putErr = boom
		err := c.Save(ctx, "alice", model.Profile{Name: "Alice"})
		assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	})

	t.Run("remove", func(t *testing.T) {
		api := newFakeMinio()
		c := newTestClient(t, api)
		api.removeErr = boom
		err := c.Delete(ctx, "alice")
		assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	})

	t.Run("remove missing", func(t *testing.T) {
		api := newFakeMinio()
		c := newTestClient(t, api)
		api.removeErr = minioLib.ErrorResponse{Code: "NoSuchKey"}
		assert.NoError(t, c.Delete(ctx, "alice"))
	})

	t.Run("ping", func(t *testing.T) {
		api := newFakeMinio()
		c := newTestClient(t, api)
		api.bucketExistsErr = boom
		assert.ErrorIs(t, c.Ping(ctx), model.ErrStoreUnavailable)
	})
}

func TestClient_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	api := newFakeMinio()
	c := newTestClient(t, api)
	api.objects["profile/bad.json"] = []byte("{")

	_, err := c.GetByKey(ctx, "bad")
	assert.ErrorIs(t, err, model.ErrCorruptEntry)

	_, err = c.GetAll(ctx)
	assert.ErrorIs(t, err, model.ErrCorruptEntry)
}
