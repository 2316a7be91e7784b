package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"eduonline/internal/announce"
	"eduonline/internal/auth"
	"eduonline/internal/coursework"
	"eduonline/internal/notify"
	"eduonline/internal/queue"
	"eduonline/internal/roster"
)

func (s *Server) createExam(c *gin.Context) {
	var req struct {
		Title    string `json:"title" binding:"required"`
		Link     string `json:"link" binding:"required"`
		Duration string `json:"duration"`
		IsActive bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, _ := auth.ClaimsFrom(c)
	exam, err := s.Coursework.InsertExam(c.Request.Context(), coursework.Exam{
		Title:     req.Title,
		Link:      req.Link,
		Duration:  req.Duration,
		CreatedBy: claims.Subject,
		IsActive:  req.IsActive,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if exam.IsActive {
		s.enqueueNotify(c, announce.FanoutJob{
			Audience: announce.Audience{Role: string(roster.RoleStudent)},
			Notification: notify.Notification{
				Title: "New exam: " + exam.Title,
				Body:  "An exam has been scheduled. Open the portal to take it.",
				Link:  exam.Link,
				Kind:  "exam",
			},
		})
	}
	c.JSON(http.StatusCreated, exam)
}

func (s *Server) listExams(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)
	activeOnly := claims.Role == string(roster.RoleStudent)
	exams, err := s.Coursework.ListExams(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exams": exams})
}

func (s *Server) createSubmission(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
		Link  string `json:"link" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, _ := auth.ClaimsFrom(c)
	sub, err := s.Coursework.InsertSubmission(c.Request.Context(), coursework.Submission{
		StudentID: claims.Subject,
		Title:     req.Title,
		Link:      req.Link,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (s *Server) listSubmissions(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)
	studentID := c.Query("student_id")
	// Students only ever see their own hand-ins.
	if claims.Role == string(roster.RoleStudent) {
		studentID = claims.Subject
	}
	subs, err := s.Coursework.ListSubmissions(c.Request.Context(), studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

func (s *Server) gradeSubmission(c *gin.Context) {
	var req struct {
		Grade    string `json:"grade" binding:"required"`
		Feedback string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := s.Coursework.Grade(c.Request.Context(), c.Param("id"), req.Grade, req.Feedback)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}

	s.enqueueNotify(c, announce.FanoutJob{
		Audience: announce.Audience{IdentityIDs: []string{sub.StudentID}},
		Notification: notify.Notification{
			Title: "Assignment reviewed",
			Body:  "Your submission " + sub.Title + " was graded " + sub.Grade + ".",
			Kind:  "grade",
		},
	})
	c.JSON(http.StatusOK, sub)
}

func (s *Server) enqueueNotify(c *gin.Context, fanout announce.FanoutJob) {
	job, err := queue.NewJob(queue.JobNotify, fanout)
	if err == nil {
		err = s.Queue.Publish(c.Request.Context(), job)
	}
	if err != nil {
		log.Printf("notify: enqueue failed: %v", err)
	}
}
