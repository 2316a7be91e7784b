package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eduonline/internal/announce"
	"eduonline/internal/auth"
	"eduonline/internal/notify"
)

// createAnnouncement persists the notice and hands delivery to the
// worker; a failed enqueue does not roll the announcement back.
func (s *Server) createAnnouncement(c *gin.Context) {
	var req struct {
		Title    string            `json:"title" binding:"required"`
		Body     string            `json:"body"`
		Link     string            `json:"link"`
		Audience announce.Audience `json:"audience"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, _ := auth.ClaimsFrom(c)
	a, err := s.Announce.Insert(c.Request.Context(), announce.Announcement{
		Title:     req.Title,
		Body:      req.Body,
		Link:      req.Link,
		Audience:  req.Audience,
		CreatedBy: claims.Subject,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.enqueueNotify(c, announce.FanoutJob{
		Audience: a.Audience,
		Notification: notify.Notification{
			Title: a.Title,
			Body:  a.Body,
			Link:  a.Link,
			Kind:  "announcement",
		},
	})

	c.JSON(http.StatusCreated, a)
}

func (s *Server) listAnnouncements(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	items, err := s.Announce.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": items})
}
