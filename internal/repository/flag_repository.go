package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkbase/inkbase/internal/models"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
)

// FlagRepository stores every feature flag as one field of a single
// map-valued key
type FlagRepository struct {
	client *redis.Client
}

// NewFlagRepository creates a new feature flag repository
func NewFlagRepository(client *redis.Client) *FlagRepository {
	return &FlagRepository{client: client}
}

func defaultFlags(now time.Time) []*models.FeatureFlag {
	return []*models.FeatureFlag{
		{
			ID:          models.FlagCookieAuth,
			Name:        "Session cookie auth",
			Description: "Accept the session cookie as an authentication transport",
			Enabled:     false,
			Category:    "auth",
			Status:      "stable",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          models.FlagGuestbook,
			Name:        "Guestbook",
			Description: "Public guestbook read/write endpoints",
			Enabled:     true,
			Category:    "content",
			Status:      "stable",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          models.FlagMaintenanceMode,
			Name:        "Maintenance mode",
			Description: "Reject all non-admin traffic",
			Enabled:     false,
			Category:    "ops",
			Status:      "stable",
			AdminOnly:   true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          models.FlagBetaBlogEditor,
			Name:        "Beta blog editor",
			Description: "Expose the experimental blog editor to admins",
			Enabled:     false,
			Category:    "content",
			Status:      "experimental",
			AdminOnly:   true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// Initialize seeds the default flags, but only when the flag map is
// entirely absent (first run)
func (r *FlagRepository) Initialize(ctx context.Context) error {
	exists, err := r.client.Exists(ctx, featureFlagsKey).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if exists > 0 {
		return nil
	}

	return r.writeAll(ctx, defaultFlags(time.Now().UTC()))
}

// GetAll returns every flag visible to the given role; flags marked
// adminOnly are filtered out for non-admins
func (r *FlagRepository) GetAll(ctx context.Context, role string) ([]*models.FeatureFlag, error) {
	fields, err := r.client.HGetAll(ctx, featureFlagsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	flags := make([]*models.FeatureFlag, 0, len(fields))
	for _, raw := range fields {
		flag, ok := decode[models.FeatureFlag](raw)
		if !ok {
			continue
		}
		if flag.AdminOnly && role != models.RoleAdmin {
			continue
		}
		flags = append(flags, flag)
	}

	sort.Slice(flags, func(i, j int) bool { return flags[i].ID < flags[j].ID })

	return flags, nil
}

// Get retrieves a single flag by id regardless of role
func (r *FlagRepository) Get(ctx context.Context, id string) (*models.FeatureFlag, error) {
	raw, err := r.client.HGet(ctx, featureFlagsKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	flag, ok := decode[models.FeatureFlag](raw)
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	return flag, nil
}

// IsEnabled reports whether the flag exists and is enabled; unknown
// flags read as disabled
func (r *FlagRepository) IsEnabled(ctx context.Context, id string) bool {
	flag, err := r.Get(ctx, id)
	if err != nil {
		return false
	}
	return flag.Enabled
}

// Update merges the patch over a known flag and refreshes its updatedAt
func (r *FlagRepository) Update(ctx context.Context, id string, patch *models.UpdateFeatureFlagRequest) (*models.FeatureFlag, error) {
	flag, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		flag.Name = *patch.Name
	}
	if patch.Description != nil {
		flag.Description = *patch.Description
	}
	if patch.Enabled != nil {
		flag.Enabled = *patch.Enabled
	}
	if patch.Category != nil {
		flag.Category = *patch.Category
	}
	if patch.Status != nil {
		flag.Status = *patch.Status
	}
	if patch.AdminOnly != nil {
		flag.AdminOnly = *patch.AdminOnly
	}
	flag.UpdatedAt = time.Now().UTC()

	data, err := encode(flag)
	if err != nil {
		return nil, err
	}

	if err := r.client.HSet(ctx, featureFlagsKey, id, data).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return flag, nil
}

// Reset rewrites the entire flag map to defaults with fresh timestamps
func (r *FlagRepository) Reset(ctx context.Context) error {
	if err := r.client.Del(ctx, featureFlagsKey).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return r.writeAll(ctx, defaultFlags(time.Now().UTC()))
}

func (r *FlagRepository) writeAll(ctx context.Context, flags []*models.FeatureFlag) error {
	fields := make(map[string]string, len(flags))
	for _, flag := range flags {
		data, err := encode(flag)
		if err != nil {
			return err
		}
		fields[flag.ID] = data
	}

	if err := r.client.HSet(ctx, featureFlagsKey, fields).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return nil
}
