package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkbase/inkbase/internal/models"
)

func TestBlogSlugMoveViaAPI(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerAndLogin(t, "alice", "alice@example.com")

	w := env.do(t, http.MethodPost, "/blog", token, models.CreateBlogPostRequest{
		Title:   "Original Title",
		Content: "body",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decodeData[*models.BlogPost](t, w)
	require.Equal(t, "original-title", post.Slug)

	newTitle := "Brand New Title"
	w = env.do(t, http.MethodPut, "/blog/"+post.Slug, token, models.UpdateBlogPostRequest{Title: &newTitle})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	moved := decodeData[*models.BlogPost](t, w)
	assert.Equal(t, "brand-new-title", moved.Slug)

	// The old slug must be gone
	w = env.do(t, http.MethodGet, "/blog/original-title", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/blog/brand-new-title", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBlogDuplicateTitleConflict(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerAndLogin(t, "alice", "alice@example.com")

	w := env.do(t, http.MethodPost, "/blog", token, models.CreateBlogPostRequest{Title: "Same", Content: "a"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/blog", token, models.CreateBlogPostRequest{Title: "Same", Content: "b"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBlogPublicRead(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerAndLogin(t, "alice", "alice@example.com")

	w := env.do(t, http.MethodPost, "/blog", token, models.CreateBlogPostRequest{Title: "Public Post", Content: "x"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Listing and reading require no credential
	w = env.do(t, http.MethodGet, "/blog", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := decodeData[[]*models.BlogPost](t, w)
	require.Len(t, posts, 1)

	w = env.do(t, http.MethodGet, "/blog/public-post", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Writing does
	w = env.do(t, http.MethodPost, "/blog", "", models.CreateBlogPostRequest{Title: "Anon", Content: "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBlogDraftHiddenFromPublic(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerAndLogin(t, "alice", "alice@example.com")

	w := env.do(t, http.MethodPost, "/blog", token, models.CreateBlogPostRequest{
		Title: "Hidden Draft", Content: "x", Draft: true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/blog/hidden-draft", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The author still sees their draft
	w = env.do(t, http.MethodGet, "/blog/hidden-draft", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
