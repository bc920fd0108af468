package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleHealthz returns a lightweight health response for liveness checks.
func handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func handleAvailability(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "available"})
}

// handleReadiness reports the cached triplestore check, running one first if
// none has happened yet.
func (s *Server) handleReadiness(c *gin.Context) {
	status := s.probe.Status()
	if status.CheckedAt.IsZero() {
		status = s.probe.Check(c.Request.Context())
	}
	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
