// Package handlers wires the portal's HTTP API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduonline/internal/announce"
	"eduonline/internal/attendance"
	"eduonline/internal/auth"
	"eduonline/internal/bulkgen"
	"eduonline/internal/config"
	"eduonline/internal/coursework"
	"eduonline/internal/geofence"
	"eduonline/internal/maintenance"
	"eduonline/internal/marks"
	"eduonline/internal/presence"
	"eduonline/internal/queue"
	"eduonline/internal/roster"
	"eduonline/internal/session"
	"eduonline/internal/ws"
)

// Server holds every dependency the route handlers need.
type Server struct {
	Cfg         config.App
	Roster      *roster.Service
	Sessions    *session.Registry
	Presence    *presence.Tracker
	Attendance  *attendance.Service
	Fences      *geofence.Repository
	Marks       *marks.Service
	Announce    *announce.Repository
	Coursework  *coursework.Repository
	Maintenance *maintenance.Flag
	Generator   *bulkgen.Generator
	Hub         *ws.Hub
	Queue       queue.Queue
}

// Register mounts all routes on the engine.
func (s *Server) Register(r *gin.Engine) {
	r.POST("/v1/auth/login", s.login)
	r.POST("/v1/auth/refresh", s.refresh)
	r.GET("/v1/maintenance", s.getMaintenance)

	authed := r.Group("/v1", auth.UserAuth(s.Cfg.JWTSigningKey, s.Cfg.JWTIssuer), s.requireActiveSession(), s.maintenanceGate())
	authed.POST("/auth/logout", s.logout)
	authed.GET("/ws", s.websocket)
	authed.POST("/users/password", s.changePassword)

	authed.GET("/geofence", s.getGeofence)
	authed.POST("/attendance/checkin", s.checkIn)
	authed.GET("/attendance", s.listAttendance)
	authed.GET("/attendance/summary", s.attendanceSummary)

	authed.GET("/announcements", s.listAnnouncements)
	authed.GET("/exams", s.listExams)
	authed.POST("/submissions", s.createSubmission)
	authed.GET("/submissions", s.listSubmissions)

	staff := authed.Group("", auth.RequireRole(string(roster.RoleAdmin), string(roster.RoleTeacher)))
	staff.POST("/marks/reports", s.saveMarksReport)
	staff.GET("/marks/reports", s.listMarksReports)
	staff.GET("/marks/reports/:id", s.getMarksReport)
	staff.POST("/exams", s.createExam)
	staff.POST("/submissions/:id/grade", s.gradeSubmission)

	admin := authed.Group("/admin", auth.RequireRole(string(roster.RoleAdmin)))
	admin.PUT("/geofence", s.putGeofence)
	admin.POST("/attendance", s.batchAttendance)
	admin.GET("/presence", s.listPresence)
	admin.POST("/users", s.createUser)
	admin.GET("/users", s.listUsers)
	admin.DELETE("/users/:id", s.archiveUser)
	admin.POST("/users/import", s.importUsers)
	admin.POST("/users/generate", s.generateUsers)
	admin.POST("/announcements", s.createAnnouncement)
	admin.PUT("/maintenance", s.putMaintenance)
}

// requireActiveSession rejects tokens whose session id was displaced by
// a newer login on another device.
func (s *Server) requireActiveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if err := s.Sessions.Validate(c.Request.Context(), claims.Subject, claims.SessionToken); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session-conflict"})
			return
		}
		c.Next()
	}
}

// maintenanceGate refuses non-admin writes while maintenance is on.
// Reads stay available so clients can render the banner.
func (s *Server) maintenanceGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		st, err := s.Maintenance.Get(c.Request.Context())
		if err != nil || !st.Enabled {
			c.Next()
			return
		}
		if claims, ok := auth.ClaimsFrom(c); ok && claims.Role == string(roster.RoleAdmin) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":   "maintenance",
			"message": st.Message,
		})
	}
}
