// Package backend builds the configured profile store and owns its connection.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dtroode/profilekeeper/internal/config"
	"github.com/dtroode/profilekeeper/internal/model"
	"github.com/dtroode/profilekeeper/internal/repository/memory"
	"github.com/dtroode/profilekeeper/internal/repository/postgres"
	"github.com/dtroode/profilekeeper/internal/repository/redis"
	"github.com/dtroode/profilekeeper/internal/repository/sqlite"
	storage "github.com/dtroode/profilekeeper/internal/storage/minio"
)

// Store is a profile store that can report its health.
type Store interface {
	model.ProfileStore
	model.HealthChecker
}

// Backend is an opened store together with the connection it was built on.
type Backend struct {
	Name  string
	Store Store
	close func() error
}

// Close releases the backend connection.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the backend selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	ns := cfg.Store.Namespace

	switch cfg.Store.Backend {
	case config.BackendRedis:
		client, err := redis.NewConnection(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Name:  config.BackendRedis,
			Store: redis.NewProfileRepository(client, ns),
			close: client.Close,
		}, nil

	case config.BackendPostgres:
		conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Name:  config.BackendPostgres,
			Store: postgres.NewProfileRepository(conn, ns),
			close: conn.Close,
		}, nil

	case config.BackendMinio:
		mc, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		client, err := storage.NewClient(ctx, mc, cfg.Storage.Bucket, ns)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage client: %w", err)
		}
		return &Backend{
			Name:  config.BackendMinio,
			Store: client,
		}, nil

	case config.BackendSQLite:
		db, err := sqlite.NewConnection(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Name:  config.BackendSQLite,
			Store: sqlite.NewProfileRepository(db, ns),
			close: db.Close,
		}, nil

	case config.BackendMemory:
		return &Backend{
			Name:  config.BackendMemory,
			Store: memory.NewProfileRepository(),
		}, nil

	default:
		return nil, errors.New("unknown store backend: " + cfg.Store.Backend)
	}
}
