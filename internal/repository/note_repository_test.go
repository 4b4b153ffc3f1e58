package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkbase/inkbase/internal/models"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
)

func newNoteRepo(t *testing.T) (*NoteRepository, *redisFixture) {
	t.Helper()
	client, mr := newTestClient(t)
	return NewNoteRepository(client, zerolog.Nop()), &redisFixture{client: client, mr: mr}
}

func TestNoteCreateAndGet(t *testing.T) {
	repo, _ := newNoteRepo(t)
	ctx := context.Background()

	note, err := repo.Create(ctx, "u1", &models.CreateNoteRequest{
		Title:   "A",
		Content: "B",
		Tags:    []string{"go", "redis"},
	})
	require.NoError(t, err)

	assert.Equal(t, "u1", note.UserID)
	assert.Equal(t, models.DefaultCategory, note.Category)
	assert.Equal(t, []string{"go", "redis"}, note.Tags)
	assert.False(t, note.CreatedAt.IsZero())

	got, err := repo.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)
	assert.Equal(t, []string{"go", "redis"}, got.Tags)

	notes, total, err := repo.List(ctx, "u1", models.NoteListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, notes, 1)
	assert.Equal(t, note.ID, notes[0].ID)
}

func TestNoteCreateValidation(t *testing.T) {
	repo, _ := newNoteRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "u1", &models.CreateNoteRequest{Content: "B"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = repo.Create(ctx, "u1", &models.CreateNoteRequest{Title: "A"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestNoteListEmptyOwner(t *testing.T) {
	repo, _ := newNoteRepo(t)

	notes, total, err := repo.List(context.Background(), "nobody", models.NoteListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, notes)
}

func TestNoteListFilters(t *testing.T) {
	repo, _ := newNoteRepo(t)
	ctx := context.Background()

	mustCreate := func(title, content, category string, tags ...string) *models.Note {
		n, err := repo.Create(ctx, "u1", &models.CreateNoteRequest{
			Title: title, Content: content, Category: category, Tags: tags,
		})
		require.NoError(t, err)
		return n
	}

	work := mustCreate("standup notes", "discussed roadmap", "work", "meeting")
	mustCreate("groceries", "milk and eggs", "personal", "shopping")
	recipe := mustCreate("pasta recipe", "boil water", "personal", "cooking", "food")

	byCategory, total, err := repo.List(ctx, "u1", models.NoteListFilters{Category: "work"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byCategory, 1)
	assert.Equal(t, work.ID, byCategory[0].ID)

	byQuery, _, err := repo.List(ctx, "u1", models.NoteListFilters{Query: "ROADMAP"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, work.ID, byQuery[0].ID)

	byTags, _, err := repo.List(ctx, "u1", models.NoteListFilters{Tags: []string{"food", "missing"}})
	require.NoError(t, err)
	require.Len(t, byTags, 1)
	assert.Equal(t, recipe.ID, byTags[0].ID)

	paged, total, err := repo.List(ctx, "u1", models.NoteListFilters{
		Sort: models.SortCreated, Order: models.OrderAsc, Offset: 1, Limit: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, paged, 1)
}

func TestNoteUpdateMergeSemantics(t *testing.T) {
	repo, _ := newNoteRepo(t)
	ctx := context.Background()

	note, err := repo.Create(ctx, "u1", &models.CreateNoteRequest{
		Title: "original", Content: "body", Category: "work", Tags: []string{"a"},
	})
	require.NoError(t, err)

	before := note.UpdatedAt
	time.Sleep(5 * time.Millisecond)

	newTitle := "patched"
	newTags := []string{"b", "c"}
	updated, err := repo.Update(ctx, note.ID, "u1", models.RoleUser, &models.UpdateNoteRequest{
		Title: &newTitle,
		Tags:  &newTags,
	})
	require.NoError(t, err)

	assert.Equal(t, "patched", updated.Title)
	assert.Equal(t, "body", updated.Content, "unpatched field must persist")
	assert.Equal(t, "work", updated.Category)
	assert.Equal(t, []string{"b", "c"}, updated.Tags)
	assert.True(t, updated.UpdatedAt.After(before), "updatedAt must strictly increase")

	got, err := repo.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Title, got.Title)

	// Stale tag index entries were dropped, new ones added
	byOldTag, _, err := repo.List(ctx, "u1", models.NoteListFilters{Tags: []string{"a"}})
	require.NoError(t, err)
	assert.Empty(t, byOldTag)
}

func TestNoteUpdateAuthorization(t *testing.T) {
	repo, _ := newNoteRepo(t)
	ctx := context.Background()

	note, err := repo.Create(ctx, "owner", &models.CreateNoteRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	title := "hacked"
	_, err = repo.Update(ctx, note.ID, "intruder", models.RoleUser, &models.UpdateNoteRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// Admins may mutate other users' records
	_, err = repo.Update(ctx, note.ID, "moderator", models.RoleAdmin, &models.UpdateNoteRequest{Title: &title})
	assert.NoError(t, err)

	_, err = repo.Update(ctx, "no-such-id", "owner", models.RoleUser, &models.UpdateNoteRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNoteDeleteRemovesIndices(t *testing.T) {
	repo, fx := newNoteRepo(t)
	ctx := context.Background()

	note, err := repo.Create(ctx, "u1", &models.CreateNoteRequest{
		Title: "t", Content: "c", Category: "work", Tags: []string{"x"},
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, note.ID, "u1", models.RoleUser))

	_, err = repo.Get(ctx, note.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	ids, err := fx.client.LRange(ctx, userNotesKey("u1"), 0, -1).Result()
	require.NoError(t, err)
	assert.Empty(t, ids)

	members, err := fx.client.SMembers(ctx, noteTagKey("u1", "x")).Result()
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestNoteListSkipsDanglingIndexEntries(t *testing.T) {
	repo, fx := newNoteRepo(t)
	ctx := context.Background()

	note, err := repo.Create(ctx, "u1", &models.CreateNoteRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	// Simulate a crash between primary-record delete and index cleanup
	require.NoError(t, fx.client.Del(ctx, noteKey(note.ID)).Err())

	notes, total, err := repo.List(ctx, "u1", models.NoteListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, notes)
}
