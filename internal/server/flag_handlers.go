package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkbase/inkbase/internal/audit"
	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/pkg/errors"
)

func (s *Server) handleGetFlags(c *gin.Context) {
	flags, err := s.flags.GetAll(c.Request.Context(), requesterRole(c))
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, flags)
}

func (s *Server) handleUpdateFlag(c *gin.Context) {
	var patch models.UpdateFeatureFlagRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, s.log, errors.Validation("invalid request body"))
		return
	}

	flag, err := s.flags.Update(c.Request.Context(), c.Param("id"), &patch)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	s.auditLogger.Log(&audit.Event{
		Level:    audit.LevelInfo,
		UserID:   currentUser(c).ID,
		Action:   "FLAG_UPDATED",
		Resource: "feature-flags",
		Success:  true,
		Metadata: flag.ID,
	})

	respond(c, http.StatusOK, flag)
}

func (s *Server) handleResetFlags(c *gin.Context) {
	if err := s.flags.Reset(c.Request.Context()); err != nil {
		respondError(c, s.log, err)
		return
	}

	s.auditLogger.Log(&audit.Event{
		Level:    audit.LevelWarning,
		UserID:   currentUser(c).ID,
		Action:   "FLAGS_RESET",
		Resource: "feature-flags",
		Success:  true,
	})

	flags, err := s.flags.GetAll(c.Request.Context(), models.RoleAdmin)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, flags)
}
