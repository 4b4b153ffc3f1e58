package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkbase/inkbase/internal/models"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
)

// maxGuestbookEntries caps the append-only guestbook list
const maxGuestbookEntries = 100

type GuestbookRepository struct {
	client *redis.Client
}

// NewGuestbookRepository creates a new guestbook repository
func NewGuestbookRepository(client *redis.Client) *GuestbookRepository {
	return &GuestbookRepository{client: client}
}

// Add prepends an entry and trims the list to its cap in one batch
func (r *GuestbookRepository) Add(ctx context.Context, req *models.CreateGuestbookEntryRequest) (*models.GuestbookEntry, error) {
	name := strings.TrimSpace(req.Name)
	message := strings.TrimSpace(req.Message)
	if name == "" || message == "" {
		return nil, apperrors.Validation("name and message are required")
	}

	entry := &models.GuestbookEntry{
		Name:      name,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	data, err := encode(entry)
	if err != nil {
		return nil, err
	}

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, guestbookKey, data)
		pipe.LTrim(ctx, guestbookKey, 0, maxGuestbookEntries-1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return entry, nil
}

// List returns entries newest first, skipping any that fail to parse
func (r *GuestbookRepository) List(ctx context.Context) ([]*models.GuestbookEntry, error) {
	raws, err := r.client.LRange(ctx, guestbookKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	entries := make([]*models.GuestbookEntry, 0, len(raws))
	for _, raw := range raws {
		if entry, ok := decode[models.GuestbookEntry](raw); ok {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
