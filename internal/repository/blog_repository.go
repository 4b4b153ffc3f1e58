package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/inkbase/inkbase/internal/models"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
	"github.com/inkbase/inkbase/pkg/slug"
	"github.com/inkbase/inkbase/pkg/validator"
)

type BlogRepository struct {
	client    *redis.Client
	validator *validator.Validator
	log       zerolog.Logger
}

// NewBlogRepository creates a new blog post repository
func NewBlogRepository(client *redis.Client, log zerolog.Logger) *BlogRepository {
	return &BlogRepository{
		client:    client,
		validator: validator.New(),
		log:       log.With().Str("component", "blog").Logger(),
	}
}

// Create derives the slug from the title and stores the post. The slug
// key is claimed with a set-if-absent write, so a second post with the
// same derived slug is rejected as a conflict.
func (r *BlogRepository) Create(ctx context.Context, authorID string, req *models.CreateBlogPostRequest) (*models.BlogPost, error) {
	if err := r.validator.ValidateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := r.validator.ValidateContent(req.Content); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &models.BlogPost{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		Summary:   req.Summary,
		AuthorID:  authorID,
		Tags:      req.Tags,
		ImageURL:  req.ImageURL,
		Draft:     req.Draft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	post.Slug = slug.Make(post.Title)
	if post.Slug == "" {
		post.Slug = post.ID
	}

	data, err := encode(post)
	if err != nil {
		return nil, err
	}

	ok, err := r.client.SetNX(ctx, blogPostKey(post.Slug), data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if !ok {
		return nil, apperrors.Conflict("a post with this slug already exists")
	}

	if err := r.client.LPush(ctx, blogSlugsKey, post.Slug).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return post, nil
}

// Get retrieves a post by slug
func (r *BlogRepository) Get(ctx context.Context, postSlug string) (*models.BlogPost, error) {
	return getJSON[models.BlogPost](ctx, r.client, blogPostKey(postSlug))
}

// List walks the ordered slug list and bulk-loads posts. Slugs whose
// primary record is missing (a partial slug move that never completed)
// are skipped. Drafts are filtered out unless includeDrafts is set.
func (r *BlogRepository) List(ctx context.Context, includeDrafts bool) ([]*models.BlogPost, error) {
	slugs, err := r.client.LRange(ctx, blogSlugsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if len(slugs) == 0 {
		return []*models.BlogPost{}, nil
	}

	keys := make([]string, len(slugs))
	for i, s := range slugs {
		keys[i] = blogPostKey(s)
	}

	posts, err := mgetDecode[models.BlogPost](ctx, r.client, keys)
	if err != nil {
		return nil, err
	}

	if includeDrafts {
		return posts, nil
	}

	visible := posts[:0]
	for _, p := range posts {
		if !p.Draft {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// Update merges the patch over the stored post. When the title changes
// such that the derived slug differs, the record is moved to the new
// slug key and the slug list is updated as a best-effort sequential
// move: write new key, delete old key, swap list entries. A crash in
// between leaves a dangling list entry that List tolerates.
func (r *BlogRepository) Update(ctx context.Context, postSlug, requesterID, role string, patch *models.UpdateBlogPostRequest) (*models.BlogPost, error) {
	post, err := r.Get(ctx, postSlug)
	if err != nil {
		return nil, err
	}

	if err := authorize(post.AuthorID, requesterID, role); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if err := r.validator.ValidateTitle(*patch.Title); err != nil {
			return nil, err
		}
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		if err := r.validator.ValidateContent(*patch.Content); err != nil {
			return nil, err
		}
		post.Content = *patch.Content
	}
	if patch.Summary != nil {
		post.Summary = *patch.Summary
	}
	if patch.Tags != nil {
		post.Tags = *patch.Tags
	}
	if patch.ImageURL != nil {
		post.ImageURL = *patch.ImageURL
	}
	if patch.Draft != nil {
		post.Draft = *patch.Draft
	}
	post.UpdatedAt = time.Now().UTC()

	newSlug := slug.Make(post.Title)
	if newSlug == "" {
		newSlug = post.ID
	}

	if newSlug == post.Slug {
		if err := setJSON(ctx, r.client, blogPostKey(post.Slug), post); err != nil {
			return nil, err
		}
		return post, nil
	}

	oldSlug := post.Slug
	post.Slug = newSlug

	data, err := encode(post)
	if err != nil {
		return nil, err
	}

	ok, err := r.client.SetNX(ctx, blogPostKey(newSlug), data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if !ok {
		return nil, apperrors.Conflict("a post with this slug already exists")
	}

	if err := r.client.Del(ctx, blogPostKey(oldSlug)).Err(); err != nil {
		r.log.Warn().Err(err).Str("slug", oldSlug).Msg("failed to delete old slug key after move")
	}
	if err := r.client.LRem(ctx, blogSlugsKey, 0, oldSlug).Err(); err != nil {
		r.log.Warn().Err(err).Str("slug", oldSlug).Msg("failed to drop old slug from list after move")
	}
	if err := r.client.LPush(ctx, blogSlugsKey, newSlug).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return post, nil
}

// Delete removes the post and its slug list entry
func (r *BlogRepository) Delete(ctx context.Context, postSlug, requesterID, role string) error {
	post, err := r.Get(ctx, postSlug)
	if err != nil {
		return err
	}

	if err := authorize(post.AuthorID, requesterID, role); err != nil {
		return err
	}

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, blogPostKey(post.Slug))
		pipe.LRem(ctx, blogSlugsKey, 0, post.Slug)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return nil
}

// Publish clears the draft flag on a scheduled post; used by the
// background task processor
func (r *BlogRepository) Publish(ctx context.Context, postSlug string) (*models.BlogPost, error) {
	post, err := r.Get(ctx, postSlug)
	if err != nil {
		return nil, err
	}

	post.Draft = false
	post.UpdatedAt = time.Now().UTC()

	if err := setJSON(ctx, r.client, blogPostKey(post.Slug), post); err != nil {
		return nil, err
	}

	return post, nil
}
