package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/pkg/errors"
)

const ctxUserKey = "currentUser"

// currentUser returns the authenticated user set by the auth middleware,
// or nil for anonymous requests
func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// requesterRole returns the current role, defaulting to user for
// anonymous requests
func requesterRole(c *gin.Context) string {
	if user := currentUser(c); user != nil {
		return user.Role
	}
	return models.RoleUser
}

// cors answers preflight uniformly and stamps the allow headers on every
// response
func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Upstash-Signature")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger emits one structured line per request
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

// auth resolves the bearer credential. The Authorization header is
// authoritative when present; the session cookie is honored only while
// the cookie-auth feature flag is enabled. With required set, a missing
// or invalid credential aborts the request.
func (s *Server) auth(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""

		if header := c.GetHeader("Authorization"); header != "" {
			if !strings.HasPrefix(header, "Bearer ") {
				if required {
					respondError(c, s.log, errors.ErrUnauthenticated)
					return
				}
				c.Next()
				return
			}
			tokenString = strings.TrimPrefix(header, "Bearer ")
		}

		if tokenString == "" && s.flags.IsEnabled(c.Request.Context(), models.FlagCookieAuth) {
			if cookie, err := c.Cookie(s.cfg.AuthCookieName); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			if required {
				respondError(c, s.log, errors.ErrUnauthenticated)
				return
			}
			c.Next()
			return
		}

		user, err := s.authService.VerifyToken(c.Request.Context(), tokenString)
		if err != nil {
			if required {
				respondError(c, s.log, err)
				return
			}
			c.Next()
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// requireAdmin aborts unless the authenticated user holds the admin role
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			respondError(c, s.log, errors.ErrUnauthenticated)
			return
		}
		if !user.IsAdmin() {
			respondError(c, s.log, errors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// maintenanceGate rejects non-admin traffic while the maintenance-mode
// flag is enabled
func (s *Server) maintenanceGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.flags.IsEnabled(c.Request.Context(), models.FlagMaintenanceMode) {
			c.Next()
			return
		}

		if user := currentUser(c); user != nil && user.IsAdmin() {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "service is under maintenance",
		})
	}
}

// rateLimit applies the per-key limiter, keyed by scope and client IP
func (s *Server) rateLimit(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.limiter.CheckLimit(scope + ":" + c.ClientIP()); err != nil {
			respondError(c, s.log, err)
			return
		}
		c.Next()
	}
}
