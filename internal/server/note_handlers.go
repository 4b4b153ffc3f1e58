package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/pkg/errors"
)

func (s *Server) handleCreateNote(c *gin.Context) {
	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, s.log, errors.Validation("invalid request body"))
		return
	}

	user := currentUser(c)
	note, err := s.notes.Create(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusCreated, note)
}

func (s *Server) handleListNotes(c *gin.Context) {
	user := currentUser(c)

	filters := models.NoteListFilters{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Sort:     c.DefaultQuery("sort", models.SortCreated),
		Order:    c.DefaultQuery("order", models.OrderDesc),
	}

	if tags := c.Query("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filters.Tags = append(filters.Tags, tag)
			}
		}
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filters.Offset = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		filters.Limit = v
	}

	notes, total, err := s.notes.List(c.Request.Context(), user.ID, filters)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respondList(c, notes, total)
}

func (s *Server) handleGetNote(c *gin.Context) {
	note, err := s.notes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	user := currentUser(c)
	if !note.IsPublic && note.UserID != user.ID && !user.IsAdmin() {
		respondError(c, s.log, errors.ErrForbidden)
		return
	}

	respond(c, http.StatusOK, note)
}

func (s *Server) handleUpdateNote(c *gin.Context) {
	var patch models.UpdateNoteRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, s.log, errors.Validation("invalid request body"))
		return
	}

	user := currentUser(c)
	note, err := s.notes.Update(c.Request.Context(), c.Param("id"), user.ID, user.Role, &patch)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(c *gin.Context) {
	user := currentUser(c)
	if err := s.notes.Delete(c.Request.Context(), c.Param("id"), user.ID, user.Role); err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"deleted": true})
}
