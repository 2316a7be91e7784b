package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduonline/internal/auth"
	"eduonline/internal/marks"
)

func (s *Server) saveMarksReport(c *gin.Context) {
	var req struct {
		Title       string         `json:"title" binding:"required"`
		WorkspaceID string         `json:"workspaceId"`
		Link        string         `json:"link"`
		Subjects    []string       `json:"subjects" binding:"required"`
		Rows        []marks.RawRow `json:"rows" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, _ := auth.ClaimsFrom(c)
	ident, err := s.Roster.Get(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identity lookup failed"})
		return
	}

	rep, err := s.Marks.SaveReport(c.Request.Context(), req.Title, ident.Email, req.WorkspaceID, req.Link, req.Subjects, req.Rows)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rep)
}

func (s *Server) getMarksReport(c *gin.Context) {
	rep, err := s.Marks.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) listMarksReports(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)
	ident, err := s.Roster.Get(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identity lookup failed"})
		return
	}
	reps, err := s.Marks.ListReports(c.Request.Context(), ident.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reps})
}
