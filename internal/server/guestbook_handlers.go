package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/pkg/errors"
)

func (s *Server) handleListGuestbook(c *gin.Context) {
	if !s.flags.IsEnabled(c.Request.Context(), models.FlagGuestbook) {
		respondError(c, s.log, errors.ErrForbidden)
		return
	}

	entries, err := s.guestbook.List(c.Request.Context())
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, entries)
}

func (s *Server) handleAddGuestbookEntry(c *gin.Context) {
	if !s.flags.IsEnabled(c.Request.Context(), models.FlagGuestbook) {
		respondError(c, s.log, errors.ErrForbidden)
		return
	}

	var req models.CreateGuestbookEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, s.log, errors.Validation("invalid request body"))
		return
	}

	entry, err := s.guestbook.Add(c.Request.Context(), &req)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusCreated, entry)
}
