package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduonline/internal/maintenance"
)

func (s *Server) getMaintenance(c *gin.Context) {
	st, err := s.Maintenance.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

// putMaintenance flips the flag and tells connected clients immediately;
// when turning on, clients get a logout countdown.
func (s *Server) putMaintenance(c *gin.Context) {
	var req struct {
		Enabled bool   `json:"enabled"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := s.Maintenance.Set(c.Request.Context(), req.Enabled, req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	payload := gin.H{"enabled": st.Enabled, "message": st.Message}
	if st.Enabled {
		payload["countdownSeconds"] = maintenance.CountdownSeconds
	}
	s.Hub.Broadcast("maintenance", payload)

	c.JSON(http.StatusOK, st)
}
