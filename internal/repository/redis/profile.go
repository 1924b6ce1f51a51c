package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dtroode/profilekeeper/internal/model"
	"github.com/dtroode/profilekeeper/internal/repository"
)

const (
	keySeparator = "::"
	scanCount    = 100
)

// Cmdable is the subset of *redis.Client used by ProfileRepository.
type Cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

var (
	_ model.ProfileStore  = (*ProfileRepository)(nil)
	_ model.HealthChecker = (*ProfileRepository)(nil)
	_ Cmdable             = (*redis.Client)(nil)
)

type ProfileRepository struct {
	client    Cmdable
	namespace string
}

func NewProfileRepository(client Cmdable, namespace string) *ProfileRepository {
	return &ProfileRepository{
		client:    client,
		namespace: namespace,
	}
}

func (r *ProfileRepository) documentKey(key string) string {
	return r.namespace + keySeparator + key
}

func (r *ProfileRepository) prefix() string {
	return r.namespace + keySeparator
}

func (r *ProfileRepository) GetAll(ctx context.Context) ([]model.ProfileEntry, error) {
	const op = "list profiles"
	if err := repository.CheckContext(ctx, op); err != nil {
		return nil, err
	}

	var (
		entries []model.ProfileEntry
		cursor  uint64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix()+"*", scanCount).Result()
		if err != nil {
			return nil, repository.BackendError(ctx, op, err)
		}

		page, err := r.load(ctx, keys)
		if err != nil {
			return nil, err
		}
		entries = append(entries, page...)

		if next == 0 {
			break
		}
		cursor = next
	}

	return dedupe(entries), nil
}

// load fetches the documents of one SCAN page. Keys removed between SCAN and
// MGET come back as nil and are skipped.
func (r *ProfileRepository) load(ctx context.Context, docKeys []string) ([]model.ProfileEntry, error) {
	const op = "list profiles"
	if len(docKeys) == 0 {
		return nil, nil
	}

	values, err := r.client.MGet(ctx, docKeys...).Result()
	if err != nil {
		return nil, repository.BackendError(ctx, op, err)
	}

	entries := make([]model.ProfileEntry, 0, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		key := strings.TrimPrefix(docKeys[i], r.prefix())
		raw, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: key %q: unexpected value type %T", model.ErrCorruptEntry, key, v)
		}
		p, err := repository.Decode(key, []byte(raw))
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.ProfileEntry{Key: key, Profile: p})
	}
	return entries, nil
}

// dedupe drops repeated keys; SCAN may return a key more than once.
func dedupe(entries []model.ProfileEntry) []model.ProfileEntry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, ok := seen[e.Key]; ok {
			continue
		}
		seen[e.Key] = struct{}{}
		out = append(out, e)
	}
	if out == nil {
		return []model.ProfileEntry{}
	}
	return out
}

func (r *ProfileRepository) GetByKey(ctx context.Context, key string) (model.Profile, error) {
	const op = "get profile"
	if err := model.ValidateKey(key); err != nil {
		return model.Profile{}, err
	}
	if err := repository.CheckContext(ctx, op); err != nil {
		return model.Profile{}, err
	}

	raw, err := r.client.Get(ctx, r.documentKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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

	if err := r.client.Set(ctx, r.documentKey(key), data, 0).Err(); err != nil {
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

	if err := r.client.Del(ctx, r.documentKey(key)).Err(); err != nil {
		return repository.BackendError(ctx, op, err)
	}
	return nil
}

func (r *ProfileRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return repository.BackendError(ctx, "ping redis", err)
	}
	return nil
}
