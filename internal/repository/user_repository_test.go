package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkbase/inkbase/internal/models"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
)

func TestUserCreateAndLookup(t *testing.T) {
	fx := newFixture(t)
	repo := NewUserRepository(fx.client)
	ctx := context.Background()

	user := &models.User{Username: "alice", Email: "Alice@Example.com", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	// Email lookup is case-insensitive
	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserEmailUniqueness(t *testing.T) {
	fx := newFixture(t)
	repo := NewUserRepository(fx.client)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "alice", Email: "a@b.co"}))

	err := repo.Create(ctx, &models.User{Username: "alice2", Email: "a@b.co"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserUsernameUniquenessRollsBackEmailClaim(t *testing.T) {
	fx := newFixture(t)
	repo := NewUserRepository(fx.client)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "alice", Email: "a@b.co"}))

	err := repo.Create(ctx, &models.User{Username: "alice", Email: "other@b.co"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// The rejected registration must not leave the email claimed
	require.NoError(t, repo.Create(ctx, &models.User{Username: "bob", Email: "other@b.co"}))
}

func TestUserGetMissing(t *testing.T) {
	fx := newFixture(t)
	repo := NewUserRepository(fx.client)

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.GetByEmail(context.Background(), "ghost@x.co")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
