package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eduonline/internal/attendance"
	"eduonline/internal/auth"
	"eduonline/internal/geofence"
	"eduonline/internal/roster"
)

func (s *Server) getGeofence(c *gin.Context) {
	cfg, err := s.Fences.GeofenceConfig(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) putGeofence(c *gin.Context) {
	var cfg geofence.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if cfg.Enabled && !(geofence.Position{Lat: cfg.Lat, Lng: cfg.Lng, Accuracy: 1}).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anchor coordinates"})
		return
	}
	if err := s.Fences.Save(c.Request.Context(), cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) checkIn(c *gin.Context) {
	var req struct {
		Lat      float64 `json:"lat"`
		Lng      float64 `json:"lng"`
		Accuracy float64 `json:"accuracy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, _ := auth.ClaimsFrom(c)
	pos := geofence.Position{Lat: req.Lat, Lng: req.Lng, Accuracy: req.Accuracy}
	if pos.LowConfidence(s.Cfg.LowAccuracyMeters) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location reading too imprecise, retry outdoors"})
		return
	}

	ident, err := s.Roster.Get(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identity lookup failed"})
		return
	}

	rec, err := s.Attendance.CheckIn(c.Request.Context(), claims.Subject, pos, attendance.RecordMeta{
		TeacherName: ident.Name,
		Department:  ident.Department,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrOutsideFence) {
			c.JSON(http.StatusForbidden, gin.H{"error": "outside the allowed attendance zone"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// batchAttendance is the admin register: one day, many identities, merge
// semantics per row.
func (s *Server) batchAttendance(c *gin.Context) {
	var req struct {
		Date    string `json:"date" binding:"required"`
		Records []struct {
			TeacherID   string `json:"teacherId" binding:"required"`
			Status      string `json:"status" binding:"required"`
			Remarks     string `json:"remarks"`
			TeacherName string `json:"teacherName"`
			Department  string `json:"department"`
		} `json:"records" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved := 0
	var failures []gin.H
	for _, row := range req.Records {
		_, err := s.Attendance.UpsertStatus(c.Request.Context(), req.Date, row.TeacherID, row.Status, row.Remarks,
			attendance.RecordMeta{TeacherName: row.TeacherName, Department: row.Department})
		if err != nil {
			failures = append(failures, gin.H{"teacherId": row.TeacherID, "error": err.Error()})
			continue
		}
		saved++
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved, "failed": failures})
}

func (s *Server) listAttendance(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end query params required"})
		return
	}
	recs, err := s.Attendance.QueryByDateRange(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

func (s *Server) attendanceSummary(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)
	identityID := c.Query("identity_id")
	if identityID == "" || claims.Role != string(roster.RoleAdmin) {
		identityID = claims.Subject
	}
	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end query params required"})
		return
	}
	sum, err := s.Attendance.SummaryForIdentity(c.Request.Context(), identityID, start, end)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) listPresence(c *gin.Context) {
	identityID := c.Query("identity_id")
	if identityID != "" {
		recs, err := s.Presence.Snapshot(c.Request.Context(), identityID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"connections": recs})
		return
	}

	idents, err := s.Roster.List(c.Request.Context(), "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	online := map[string]bool{}
	for _, id := range idents {
		ok, err := s.Presence.Online(c.Request.Context(), id.ID)
		if err != nil {
			continue
		}
		if ok {
			online[id.ID] = true
		}
	}
	c.JSON(http.StatusOK, gin.H{"online": online})
}
