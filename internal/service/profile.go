package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/profilekeeper/internal/logger"
	"github.com/dtroode/profilekeeper/internal/model"
)

// Profile applies per-operation deadlines around a profile store and logs outcomes.
type Profile struct {
	store     model.ProfileStore
	opTimeout time.Duration
	logger    *logger.Logger
	newKey    func() string
}

func NewProfile(store model.ProfileStore, opTimeout time.Duration, logger *logger.Logger) *Profile {
	return &Profile{
		store:     store,
		opTimeout: opTimeout,
		logger:    logger.With("component", "profile_service"),
		newKey:    uuid.NewString,
	}
}

// List returns every stored profile ordered by key.
func (s *Profile) List(ctx context.Context) ([]model.ProfileEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	entries, err := s.store.GetAll(ctx)
	if err != nil {
		s.logFailure("list profiles", "", err)
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	s.logger.Debug("Profile service: listed profiles", "count", len(entries))

	return entries, nil
}

func (s *Profile) Get(ctx context.Context, key string) (model.Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := s.store.GetByKey(ctx, key)
	if err != nil {
		s.logFailure("get profile", key, err)
		return model.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}

	return p, nil
}

func (s *Profile) Save(ctx context.Context, key string, profile model.Profile) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.store.Save(ctx, key, profile); err != nil {
		s.logFailure("save profile", key, err)
		return fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("Profile service: profile saved", "key", key)
	return nil
}

func (s *Profile) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.store.Delete(ctx, key); err != nil {
		s.logFailure("delete profile", key, err)
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	s.logger.Info("Profile service: profile deleted", "key", key)
	return nil
}

// Draft returns a blank profile with a suggested key for the add form.
// Nothing is stored until Save is called with a key of the caller's choosing.
func (s *Profile) Draft() model.ProfileEntry {
	return model.ProfileEntry{Key: s.newKey()}
}

func (s *Profile) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *Profile) logFailure(op, key string, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidKey), errors.Is(err, model.ErrInvalidProfile), errors.Is(err, model.ErrNotFound):
		s.logger.Debug("Profile service: "+op+" rejected", "key", key, "error", err.Error())
	case errors.Is(err, model.ErrCancelled):
		s.logger.Warn("Profile service: "+op+" cancelled", "key", key, "error", err.Error())
	default:
		s.logger.Error("Profile service: "+op+" failed", "key", key, "error", err.Error())
	}
}
