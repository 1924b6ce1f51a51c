// Package memory is an in-process profile store. Data is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/dtroode/profilekeeper/internal/model"
	"github.com/dtroode/profilekeeper/internal/repository"
)

var (
	_ model.ProfileStore  = (*ProfileRepository)(nil)
	_ model.HealthChecker = (*ProfileRepository)(nil)
)

// ProfileRepository keeps encoded profiles in a map. Safe for concurrent use.
type ProfileRepository struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		entries: make(map[string][]byte),
	}
}

func (r *ProfileRepository) GetAll(ctx context.Context) ([]model.ProfileEntry, error) {
	if err := repository.CheckContext(ctx, "list profiles"); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]model.ProfileEntry, 0, len(r.entries))
	for key, data := range r.entries {
		p, err := repository.Decode(key, data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.ProfileEntry{Key: key, Profile: p})
	}
	return entries, nil
}

func (r *ProfileRepository) GetByKey(ctx context.Context, key string) (model.Profile, error) {
	if err := model.ValidateKey(key); err != nil {
		return model.Profile{}, err
	}
	if err := repository.CheckContext(ctx, "get profile"); err != nil {
		return model.Profile{}, err
	}

	r.mu.RLock()
	data, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return model.Profile{}, model.ErrNotFound
	}
	return repository.Decode(key, data)
}

func (r *ProfileRepository) Save(ctx context.Context, key string, profile model.Profile) error {
	if err := model.ValidateKey(key); err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return err
	}
	if err := repository.CheckContext(ctx, "save profile"); err != nil {
		return err
	}
	data, err := repository.Encode(profile)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.entries[key] = data
	r.mu.Unlock()
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, key string) error {
	if model.ValidateKey(key) != nil {
		return nil
	}
	if err := repository.CheckContext(ctx, "delete profile"); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (r *ProfileRepository) Ping(_ context.Context) error {
	return nil
}
