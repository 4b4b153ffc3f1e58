package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/pkg/errors"
)

func (s *Server) handleRegister(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, s.log, errors.Validation("invalid request body"))
		return
	}

	user, err := s.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	respond(c, http.StatusCreated, user)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, s.log, errors.Validation("invalid request body"))
		return
	}

	resp, err := s.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, s.log, err)
		return
	}

	// The cookie mirrors the bearer token for clients using cookie-auth
	if s.flags.IsEnabled(c.Request.Context(), models.FlagCookieAuth) {
		c.SetCookie(s.cfg.AuthCookieName, resp.Token, int(s.cfg.TokenTTL.Seconds()), "/", "", true, true)
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) handleMe(c *gin.Context) {
	respond(c, http.StatusOK, currentUser(c))
}
