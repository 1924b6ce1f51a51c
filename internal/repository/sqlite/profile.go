package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dtroode/profilekeeper/internal/model"
	"github.com/dtroode/profilekeeper/internal/repository"
)

var (
	_ model.ProfileStore  = (*ProfileRepository)(nil)
	_ model.HealthChecker = (*ProfileRepository)(nil)
)

type ProfileRepository struct {
	db        *sql.DB
	namespace string
}

func NewProfileRepository(db *sql.DB, namespace string) *ProfileRepository {
	return &ProfileRepository{db: db, namespace: namespace}
}

func (r *ProfileRepository) GetAll(ctx context.Context) ([]model.ProfileEntry, error) {
	const op = "list profiles"
	if err := repository.CheckContext(ctx, op); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, "SELECT key, data FROM profiles WHERE namespace = ?", r.namespace)
	if err != nil {
		return nil, repository.BackendError(ctx, op, err)
	}
	defer rows.Close()

	entries := []model.ProfileEntry{}
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, repository.BackendError(ctx, op, err)
		}
		p, err := repository.Decode(key, []byte(raw))
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

	var raw string
	err := r.db.QueryRowContext(ctx,
		"SELECT data FROM profiles WHERE namespace = ? AND key = ?",
		r.namespace, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, model.ErrNotFound
	}
	if err != nil {
		return model.Profile{}, repository.BackendError(ctx, op, err)
	}
	return repository.Decode(key, []byte(raw))
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
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO profiles (namespace, key, data) VALUES (?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET data = excluded.data`,
		r.namespace, key, string(data),
	)
	if err != nil {
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

	_, err := r.db.ExecContext(ctx,
		"DELETE FROM profiles WHERE namespace = ? AND key = ?",
		r.namespace, key,
	)
	if err != nil {
		return repository.BackendError(ctx, op, err)
	}
	return nil
}

func (r *ProfileRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return repository.BackendError(ctx, "ping sqlite", err)
	}
	return nil
}
