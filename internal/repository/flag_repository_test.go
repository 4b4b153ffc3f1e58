package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkbase/inkbase/internal/models"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
)

func TestFlagInitializeFirstRunOnly(t *testing.T) {
	fx := newFixture(t)
	repo := NewFlagRepository(fx.client)
	ctx := context.Background()

	require.NoError(t, repo.Initialize(ctx))

	enabled := true
	_, err := repo.Update(ctx, models.FlagCookieAuth, &models.UpdateFeatureFlagRequest{Enabled: &enabled})
	require.NoError(t, err)

	// A second initialize must not clobber the mutation
	require.NoError(t, repo.Initialize(ctx))
	flag, err := repo.Get(ctx, models.FlagCookieAuth)
	require.NoError(t, err)
	assert.True(t, flag.Enabled)
}

func TestFlagAdminOnlyVisibility(t *testing.T) {
	fx := newFixture(t)
	repo := NewFlagRepository(fx.client)
	ctx := context.Background()

	require.NoError(t, repo.Initialize(ctx))

	userView, err := repo.GetAll(ctx, models.RoleUser)
	require.NoError(t, err)
	for _, f := range userView {
		assert.False(t, f.AdminOnly, "non-admin view leaked adminOnly flag %s", f.ID)
	}

	adminView, err := repo.GetAll(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Greater(t, len(adminView), len(userView))
}

func TestFlagUpdateUnknownID(t *testing.T) {
	fx := newFixture(t)
	repo := NewFlagRepository(fx.client)
	ctx := context.Background()

	require.NoError(t, repo.Initialize(ctx))

	enabled := true
	_, err := repo.Update(ctx, "no-such-flag", &models.UpdateFeatureFlagRequest{Enabled: &enabled})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFlagUpdateMergesAndRefreshesTimestamp(t *testing.T) {
	fx := newFixture(t)
	repo := NewFlagRepository(fx.client)
	ctx := context.Background()

	require.NoError(t, repo.Initialize(ctx))

	before, err := repo.Get(ctx, models.FlagGuestbook)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	desc := "patched description"
	updated, err := repo.Update(ctx, models.FlagGuestbook, &models.UpdateFeatureFlagRequest{Description: &desc})
	require.NoError(t, err)

	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, before.Enabled, updated.Enabled, "unpatched field must persist")
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))
}

func TestFlagReset(t *testing.T) {
	fx := newFixture(t)
	repo := NewFlagRepository(fx.client)
	ctx := context.Background()

	require.NoError(t, repo.Initialize(ctx))

	enabled := true
	_, err := repo.Update(ctx, models.FlagMaintenanceMode, &models.UpdateFeatureFlagRequest{Enabled: &enabled})
	require.NoError(t, err)

	require.NoError(t, repo.Reset(ctx))

	flag, err := repo.Get(ctx, models.FlagMaintenanceMode)
	require.NoError(t, err)
	assert.False(t, flag.Enabled, "reset must restore defaults")
}

func TestFlagIsEnabledUnknownReadsDisabled(t *testing.T) {
	fx := newFixture(t)
	repo := NewFlagRepository(fx.client)

	assert.False(t, repo.IsEnabled(context.Background(), "ghost"))
}
