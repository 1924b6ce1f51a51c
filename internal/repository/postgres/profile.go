package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/profilekeeper/internal/model"
	"github.com/dtroode/profilekeeper/internal/repository"
)

var (
	_ model.ProfileStore  = (*ProfileRepository)(nil)
	_ model.HealthChecker = (*ProfileRepository)(nil)
)

type ProfileRepository struct {
	db        *Connection
	namespace string
}

func NewProfileRepository(db *Connection, namespace string) *ProfileRepository {
	return &ProfileRepository{
		db:        db,
		namespace: namespace,
	}
}

func (r *ProfileRepository) GetAll(ctx context.Context) ([]model.ProfileEntry, error) {
	const op = "list profiles"
	if err := repository.CheckContext(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT key, data FROM profiles WHERE namespace = $1`

	rows, err := r.db.Query(ctx, query, r.namespace)
	if err != nil {
		return nil, repository.BackendError(ctx, op, err)
	}
	defer rows.Close()

	entries := []model.ProfileEntry{}
	for rows.Next() {
		var (
			key string
			raw []byte
		)
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, repository.BackendError(ctx, op, err)
		}
		p, err := repository.Decode(key, raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.ProfileEntry{Key: key, Profile: p})
	}

	if err := rows.Err(); err != nil {
		return nil, repository.BackendError(ctx, op, err)
	}

	return entries, nil
}

func (r *ProfileRepository) GetByKey(ctx context.Context, key string) (model.Profile, error) {
	const op = "get profile"
	if err := model.ValidateKey(key); err != nil {
		return model.Profile{}, err
	}
	if err := repository.CheckContext(ctx, op); err != nil {
		return model.Profile{}, err
	}

	query := `SELECT data FROM profiles WHERE namespace = $1 AND key = $2`

	var raw []byte
	err := r.db.QueryRow(ctx, query, r.namespace, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, model.ErrNotFound
		}
		return model.Profile{}, repository.BackendError(ctx, op, err)
	}

	return repository.Decode(key, raw)
}

func (r *ProfileRepository) Save(ctx context.Context, key string, profile model.Profile) error {
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

	query := `
		INSERT INTO profiles (namespace, key, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace, key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`

	if _, err := r.db.Exec(ctx, query, r.namespace, key, data); err != nil {
		return repository.BackendError(ctx, op, err)
	}
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, key string) error {
	const op = "delete profile"
	if model.ValidateKey(key) != nil {
		return nil
	}
	if err := repository.CheckContext(ctx, op); err != nil {
		return err
	}

	const query = `DELETE FROM profiles WHERE namespace = $1 AND key = $2`
	if _, err := r.db.Exec(ctx, query, r.namespace, key); err != nil {
		return repository.BackendError(ctx, op, err)
	}
	return nil
}

func (r *ProfileRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return repository.BackendError(ctx, "ping postgres", err)
	}
	return nil
}
