//go:build integration

package minio_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	minioLib "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/profilekeeper/internal/model"
	"github.com/dtroode/profilekeeper/internal/repository/storetest"
	storage "github.com/dtroode/profilekeeper/internal/storage/minio"
)

const (
	accessKey = "minioadmin"
	secretKey = "minioadmin"
)

var endpoint string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     accessKey,
				"MINIO_ROOT_PASSWORD": secretKey,
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "9000")
	if err != nil {
		panic(err)
	}
	endpoint = fmt.Sprintf("%s:%s", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestClient_Conformance(t *testing.T) {
	ctx := context.Background()
	mc, err := minioLib.New(endpoint, &minioLib.Options{
		Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
	})
	require.NoError(t, err)

	storetest.Run(t, func(t *testing.T) model.ProfileStore {
		c, err := storage.NewClient(ctx, mc, "starterbucket", "t-"+uuid.NewString())
		require.NoError(t, err)
		return c
	})
}
