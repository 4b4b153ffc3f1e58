package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/pkg/errors"
)

func (s *Server) handleCreatePost(c *gin.Context) {
	var req models.CreateBlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, s.log, errors.Validation("invalid request body"))
		return
	}

	user := currentUser(c)
	post, err := s.blog.Create(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusCreated, post)
}

func (s *Server) handleListPosts(c *gin.Context) {
	// Authors and admins see drafts; public readers do not
	includeDrafts := false
	if user := currentUser(c); user != nil {
		includeDrafts = user.IsAdmin()
	}

	posts, err := s.blog.List(c.Request.Context(), includeDrafts)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, posts)
}

func (s *Server) handleGetPost(c *gin.Context) {
	post, err := s.blog.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	if post.Draft {
		user := currentUser(c)
		if user == nil || (post.AuthorID != user.ID && !user.IsAdmin()) {
			respondError(c, s.log, errors.ErrNotFound)
			return
		}
	}

	respond(c, http.StatusOK, post)
}

func (s *Server) handleUpdatePost(c *gin.Context) {
	var patch models.UpdateBlogPostRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, s.log, errors.Validation("invalid request body"))
		return
	}

	user := currentUser(c)
	post, err := s.blog.Update(c.Request.Context(), c.Param("slug"), user.ID, user.Role, &patch)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, post)
}

func (s *Server) handleDeletePost(c *gin.Context) {
	user := currentUser(c)
	if err := s.blog.Delete(c.Request.Context(), c.Param("slug"), user.ID, user.Role); err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"deleted": true})
}
