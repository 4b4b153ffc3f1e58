package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/inkbase/inkbase/internal/models"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
	"github.com/inkbase/inkbase/pkg/validator"
)

type NoteRepository struct {
	client    *redis.Client
	validator *validator.Validator
	log       zerolog.Logger
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(client *redis.Client, log zerolog.Logger) *NoteRepository {
	return &NoteRepository{
		client:    client,
		validator: validator.New(),
		log:       log.With().Str("component", "notes").Logger(),
	}
}

// Create validates and stores a new note, then registers it in the
// owner's list index and the category/tag set indices
func (r *NoteRepository) Create(ctx context.Context, ownerID string, req *models.CreateNoteRequest) (*models.Note, error) {
	if err := r.validator.ValidateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := r.validator.ValidateContent(req.Content); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	now := time.Now().UTC()
	note := &models.Note{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Title:     req.Title,
		Content:   req.Content,
		Category:  category,
		Tags:      normalizeTags(req.Tags),
		TypeID:    req.TypeID,
		IsPublic:  req.IsPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := encode(note)
	if err != nil {
		return nil, err
	}

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, noteKey(note.ID), data, 0)
		pipe.RPush(ctx, userNotesKey(ownerID), note.ID)
		pipe.SAdd(ctx, noteCategoryKey(ownerID, note.Category), note.ID)
		for _, tag := range note.Tags {
			pipe.SAdd(ctx, noteTagKey(ownerID, tag), note.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return note, nil
}

// Get retrieves a note by id
func (r *NoteRepository) Get(ctx context.Context, id string) (*models.Note, error) {
	return getJSON[models.Note](ctx, r.client, noteKey(id))
}

// List loads the owner's full note set and filters, sorts and paginates
// in memory. Per-user note counts are expected to stay small enough that
// a full load is acceptable. An owner with zero notes yields an empty
// result, not an error.
func (r *NoteRepository) List(ctx context.Context, ownerID string, filters models.NoteListFilters) ([]*models.Note, int, error) {
	ids, err := r.client.LRange(ctx, userNotesKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return []*models.Note{}, 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = noteKey(id)
	}

	notes, err := mgetDecode[models.Note](ctx, r.client, keys)
	if err != nil {
		return nil, 0, err
	}

	filtered := notes[:0]
	for _, n := range notes {
		if matchesFilters(n, filters) {
			filtered = append(filtered, n)
		}
	}

	sortNotes(filtered, filters.Sort, filters.Order)

	total := len(filtered)
	page := paginate(filtered, filters.Offset, filters.Limit)

	return page, total, nil
}

// Update merges the patch over the stored note. Category and tag index
// changes are applied as explicit remove-then-add sequences; the store
// has no multi-key transaction, so a crash in between can leave a stale
// index entry that readers tolerate.
func (r *NoteRepository) Update(ctx context.Context, id, requesterID, role string, patch *models.UpdateNoteRequest) (*models.Note, error) {
	note, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorize(note.UserID, requesterID, role); err != nil {
		return nil, err
	}

	oldCategory := note.Category
	oldTags := note.Tags

	if patch.Title != nil {
		if err := r.validator.ValidateTitle(*patch.Title); err != nil {
			return nil, err
		}
		note.Title = *patch.Title
	}
	if patch.Content != nil {
		if err := r.validator.ValidateContent(*patch.Content); err != nil {
			return nil, err
		}
		note.Content = *patch.Content
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		if category == "" {
			category = models.DefaultCategory
		}
		note.Category = category
	}
	if patch.Tags != nil {
		note.Tags = normalizeTags(*patch.Tags)
	}
	if patch.TypeID != nil {
		note.TypeID = *patch.TypeID
	}
	if patch.IsPublic != nil {
		note.IsPublic = *patch.IsPublic
	}
	note.UpdatedAt = time.Now().UTC()

	if err := setJSON(ctx, r.client, noteKey(id), note); err != nil {
		return nil, err
	}

	if note.Category != oldCategory {
		if err := r.client.SRem(ctx, noteCategoryKey(note.UserID, oldCategory), id).Err(); err != nil {
			r.log.Warn().Err(err).Str("noteId", id).Msg("failed to drop stale category index entry")
		}
		if err := r.client.SAdd(ctx, noteCategoryKey(note.UserID, note.Category), id).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
		}
	}

	if patch.Tags != nil {
		for _, tag := range diffTags(oldTags, note.Tags) {
			if err := r.client.SRem(ctx, noteTagKey(note.UserID, tag), id).Err(); err != nil {
				r.log.Warn().Err(err).Str("noteId", id).Str("tag", tag).Msg("failed to drop stale tag index entry")
			}
		}
		for _, tag := range diffTags(note.Tags, oldTags) {
			if err := r.client.SAdd(ctx, noteTagKey(note.UserID, tag), id).Err(); err != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
			}
		}
	}

	return note, nil
}

// Delete removes the note and every index entry referencing it
func (r *NoteRepository) Delete(ctx context.Context, id, requesterID, role string) error {
	note, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := authorize(note.UserID, requesterID, role); err != nil {
		return err
	}

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, noteKey(id))
		pipe.LRem(ctx, userNotesKey(note.UserID), 0, id)
		pipe.SRem(ctx, noteCategoryKey(note.UserID, note.Category), id)
		for _, tag := range note.Tags {
			pipe.SRem(ctx, noteTagKey(note.UserID, tag), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return nil
}

// CountByType counts the owner's notes currently referencing a note type
func (r *NoteRepository) CountByType(ctx context.Context, ownerID, typeID string) (int, error) {
	ids, err := r.client.LRange(ctx, userNotesKey(ownerID), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = noteKey(id)
	}

	notes, err := mgetDecode[models.Note](ctx, r.client, keys)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, n := range notes {
		if n.TypeID == typeID {
			count++
		}
	}

	return count, nil
}

func matchesFilters(n *models.Note, f models.NoteListFilters) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(n.Title), q) &&
			!strings.Contains(strings.ToLower(n.Content), q) {
			return false
		}
	}

	if f.Category != "" && n.Category != f.Category {
		return false
	}

	if len(f.Tags) > 0 {
		match := false
		for _, want := range f.Tags {
			for _, have := range n.Tags {
				if strings.EqualFold(want, have) {
					match = true
					break
				}
			}
		}
		if !match {
			return false
		}
	}

	return true
}

func sortNotes(notes []*models.Note, sortBy, order string) {
	key := func(n *models.Note) time.Time {
		if sortBy == models.SortUpdated {
			return n.UpdatedAt
		}
		return n.CreatedAt
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if order == models.OrderAsc {
			return key(notes[i]).Before(key(notes[j]))
		}
		return key(notes[i]).After(key(notes[j]))
	})
}

func paginate(notes []*models.Note, offset, limit int) []*models.Note {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(notes) {
		return []*models.Note{}
	}

	end := len(notes)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return notes[offset:end]
}

// normalizeTags trims, deduplicates and drops empty tags while keeping
// the caller's order
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// diffTags returns tags present in a but not in b
func diffTags(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, tag := range b {
		inB[tag] = struct{}{}
	}

	var out []string
	for _, tag := range a {
		if _, ok := inB[tag]; !ok {
			out = append(out, tag)
		}
	}
	return out
}
