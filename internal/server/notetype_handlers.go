package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/pkg/errors"
)

func (s *Server) handleCreateNoteType(c *gin.Context) {
	var req models.CreateNoteTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, s.log, errors.Validation("invalid request body"))
		return
	}

	user := currentUser(c)
	nt, err := s.noteTypes.Create(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusCreated, nt)
}

func (s *Server) handleListNoteTypes(c *gin.Context) {
	user := currentUser(c)
	types, err := s.noteTypes.List(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, types)
}

func (s *Server) handleGetNoteType(c *gin.Context) {
	nt, err := s.noteTypes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	user := currentUser(c)
	if nt.UserID != user.ID && !user.IsAdmin() {
		respondError(c, s.log, errors.ErrForbidden)
		return
	}

	respond(c, http.StatusOK, nt)
}

func (s *Server) handleUpdateNoteType(c *gin.Context) {
	var patch models.UpdateNoteTypeRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, s.log, errors.Validation("invalid request body"))
		return
	}

	user := currentUser(c)
	nt, err := s.noteTypes.Update(c.Request.Context(), c.Param("id"), user.ID, user.Role, &patch)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, nt)
}

func (s *Server) handleDeleteNoteType(c *gin.Context) {
	user := currentUser(c)
	if err := s.noteTypes.Delete(c.Request.Context(), c.Param("id"), user.ID, user.Role); err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"deleted": true})
}
