package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/inkbase/inkbase/internal/models"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
	"github.com/inkbase/inkbase/pkg/validator"
)

type NoteTypeRepository struct {
	client    *redis.Client
	notes     *NoteRepository
	validator *validator.Validator
}

// NewNoteTypeRepository creates a new note type repository. The note
// repository is consulted on delete for referential integrity.
func NewNoteTypeRepository(client *redis.Client, notes *NoteRepository) *NoteTypeRepository {
	return &NoteTypeRepository{
		client:    client,
		notes:     notes,
		validator: validator.New(),
	}
}

// Create stores a new note type. Names are unique per owner,
// case-insensitively, guarded by a set-if-absent name key.
func (r *NoteTypeRepository) Create(ctx context.Context, ownerID string, req *models.CreateNoteTypeRequest) (*models.NoteType, error) {
	if err := r.validator.ValidateName(req.Name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	nt := &models.NoteType{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Fields:      req.Fields,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ok, err := r.client.SetNX(ctx, noteTypeNameKey(ownerID, nt.Name), nt.ID, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if !ok {
		return nil, apperrors.Conflict("a note type with this name already exists")
	}

	data, err := encode(nt)
	if err != nil {
		return nil, err
	}

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, noteTypeKey(nt.ID), data, 0)
		pipe.RPush(ctx, userNoteTypesKey(ownerID), nt.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return nt, nil
}

// Get retrieves a note type by id
func (r *NoteTypeRepository) Get(ctx context.Context, id string) (*models.NoteType, error) {
	return getJSON[models.NoteType](ctx, r.client, noteTypeKey(id))
}

// List returns the owner's note types in creation order
func (r *NoteTypeRepository) List(ctx context.Context, ownerID string) ([]*models.NoteType, error) {
	ids, err := r.client.LRange(ctx, userNoteTypesKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return []*models.NoteType{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = noteTypeKey(id)
	}

	return mgetDecode[models.NoteType](ctx, r.client, keys)
}

// Update merges the patch over the stored type. A rename claims the new
// name key before releasing the old one so the per-owner uniqueness
// invariant holds.
func (r *NoteTypeRepository) Update(ctx context.Context, id, requesterID, role string, patch *models.UpdateNoteTypeRequest) (*models.NoteType, error) {
	nt, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorize(nt.UserID, requesterID, role); err != nil {
		return nil, err
	}

	oldName := nt.Name

	if patch.Name != nil {
		if err := r.validator.ValidateName(*patch.Name); err != nil {
			return nil, err
		}
		nt.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		nt.Description = *patch.Description
	}
	if patch.Color != nil {
		nt.Color = *patch.Color
	}
	if patch.Icon != nil {
		nt.Icon = *patch.Icon
	}
	if patch.Fields != nil {
		nt.Fields = *patch.Fields
	}
	nt.UpdatedAt = time.Now().UTC()

	renamed := !strings.EqualFold(oldName, nt.Name)
	if renamed {
		ok, err := r.client.SetNX(ctx, noteTypeNameKey(nt.UserID, nt.Name), nt.ID, 0).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
		}
		if !ok {
			return nil, apperrors.Conflict("a note type with this name already exists")
		}
	}

	if err := setJSON(ctx, r.client, noteTypeKey(id), nt); err != nil {
		return nil, err
	}

	if renamed {
		r.client.Del(ctx, noteTypeNameKey(nt.UserID, oldName))
	}

	return nt, nil
}

// Delete removes a note type unless any of the owner's notes still
// references it, in which case the in-use count is reported as a conflict
func (r *NoteTypeRepository) Delete(ctx context.Context, id, requesterID, role string) error {
	nt, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := authorize(nt.UserID, requesterID, role); err != nil {
		return err
	}

	inUse, err := r.notes.CountByType(ctx, nt.UserID, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return apperrors.Conflict(fmt.Sprintf("note type is in use by %d note(s)", inUse))
	}

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, noteTypeKey(id))
		pipe.LRem(ctx, userNoteTypesKey(nt.UserID), 0, id)
		pipe.Del(ctx, noteTypeNameKey(nt.UserID, nt.Name))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return nil
}
