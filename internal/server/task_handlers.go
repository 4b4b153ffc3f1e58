package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkbase/inkbase/internal/dispatch"
	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/pkg/errors"
)

func (s *Server) handleScheduleTask(c *gin.Context) {
	var req models.ScheduleTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, s.log, errors.Validation("invalid request body"))
		return
	}

	user := currentUser(c)
	task, err := s.dispatcher.Schedule(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusCreated, task)
}

func (s *Server) handleScheduleWelcomeEmail(c *gin.Context) {
	user := currentUser(c)

	payload, err := json.Marshal(map[string]string{
		"email":    user.Email,
		"username": user.Username,
	})
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	task, err := s.dispatcher.Schedule(c.Request.Context(), user.ID, &models.ScheduleTaskRequest{
		Type:    models.TaskWelcomeEmail,
		Payload: payload,
	})
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusCreated, task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	user := currentUser(c)
	tasks, err := s.tasks.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	user := currentUser(c)
	if task.UserID != user.ID && !user.IsAdmin() {
		respondError(c, s.log, errors.ErrForbidden)
		return
	}

	respond(c, http.StatusOK, task)
}

// handleWebhook receives scheduler deliveries. The signature check is
// the sole gate; the route carries no user credential.
func (s *Server) handleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		respondError(c, s.log, errors.Validation("unreadable body"))
		return
	}

	signature := c.GetHeader("Upstash-Signature")
	if err := dispatch.VerifySignature(signature, body, s.cfg.QStashCurrentSignKey, s.cfg.QStashNextSignKey); err != nil {
		respondError(c, s.log, err)
		return
	}

	task, err := s.dispatcher.HandleWebhook(c.Request.Context(), body)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusOK, task)
}
