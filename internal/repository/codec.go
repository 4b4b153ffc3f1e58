package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/inkbase/inkbase/pkg/errors"
)

// decode parses a stored JSON record. A failed parse is treated the same
// as a missing record so that corrupt or dangling entries never surface
// raw store values to callers.
func decode[T any](raw string) (*T, bool) {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false
	}
	return &v, true
}

// encode serializes a record for storage
func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	return string(data), nil
}

// getJSON loads and decodes a single record by key
func getJSON[T any](ctx context.Context, client *redis.Client, key string) (*T, error) {
	raw, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	v, ok := decode[T](raw)
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	return v, nil
}

// setJSON encodes and stores a single record under key
func setJSON(ctx context.Context, client *redis.Client, key string, v any) error {
	data, err := encode(v)
	if err != nil {
		return err
	}

	if err := client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return nil
}

// mgetDecode bulk-loads records for the given keys, skipping entries
// that are missing or fail to parse (dangling index references)
func mgetDecode[T any](ctx context.Context, client *redis.Client, keys []string) ([]*T, error) {
	if len(keys) == 0 {
		return []*T{}, nil
	}

	raws, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	out := make([]*T, 0, len(raws))
	for _, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if v, ok := decode[T](s); ok {
			out = append(out, v)
		}
	}

	return out, nil
}
