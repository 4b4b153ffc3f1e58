package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/inkbase/inkbase/internal/models"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
)

type UserRepository struct {
	client *redis.Client
}

// NewUserRepository creates a new user repository
func NewUserRepository(client *redis.Client) *UserRepository {
	return &UserRepository{client: client}
}

// Create stores a new user. The email-to-id mapping is claimed first with
// a set-if-absent write so the unique-email invariant holds even when two
// registrations race.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	ok, err := r.client.SetNX(ctx, userEmailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if !ok {
		return apperrors.Conflict("email already registered")
	}

	ok, err = r.client.SetNX(ctx, userUsernameKey(user.Username), user.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if !ok {
		// Roll back the email claim before reporting the conflict
		r.client.Del(ctx, userEmailKey(user.Email))
		return apperrors.Conflict("username already taken")
	}

	return setJSON(ctx, r.client, userKey(user.ID), user)
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return getJSON[models.User](ctx, r.client, userKey(id))
}

// GetByEmail resolves the email index and loads the user
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	id, err := r.client.Get(ctx, userEmailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return r.GetByID(ctx, id)
}
