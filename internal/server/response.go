package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/inkbase/inkbase/pkg/errors"
)

// respond writes the success envelope
func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondList writes the success envelope for paginated collections
func respondList(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "total": total})
}

// respondError maps a repository or dispatcher error onto its status
// code. Unclassified errors are logged and reported as a bare 500; no
// internal detail crosses the boundary.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status := errors.StatusCode(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}
