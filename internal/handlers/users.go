package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eduonline/internal/bulkgen"
	"eduonline/internal/roster"
)

func (s *Server) createUser(c *gin.Context) {
	var req struct {
		Username   string `json:"username"`
		Name       string `json:"name" binding:"required"`
		Email      string `json:"email" binding:"required"`
		Password   string `json:"password" binding:"required"`
		Role       string `json:"role" binding:"required"`
		Department string `json:"department"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Username == "" {
		req.Username = roster.UsernameFromName(req.Name)
	}

	ident, err := s.Roster.Create(c.Request.Context(), req.Username, req.Name, req.Email, req.Password,
		roster.Role(req.Role), req.Department)
	if err != nil {
		if errors.Is(err, roster.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "username or email already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ident)
}

func (s *Server) listUsers(c *gin.Context) {
	idents, err := s.Roster.List(c.Request.Context(), roster.Role(c.Query("role")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": idents})
}

// archiveUser retires the account; its attendance and marks history stays.
func (s *Server) archiveUser(c *gin.Context) {
	if err := s.Roster.Archive(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "archived"})
}

func (s *Server) importUsers(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()

	res, err := s.Roster.ImportCSV(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) generateUsers(c *gin.Context) {
	var req struct {
		Start            int    `json:"start"`
		End              int    `json:"end"`
		EmailDomain      string `json:"emailDomain"`
		Role             string `json:"role"`
		Department       string `json:"department"`
		Instructions     string `json:"instructions"`
		ComplexPasswords bool   `json:"complexPasswords"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sheet, err := s.Generator.Generate(c.Request.Context(), bulkgen.Params{
		Start:            req.Start,
		End:              req.End,
		EmailDomain:      req.EmailDomain,
		Role:             req.Role,
		Department:       req.Department,
		Instructions:     req.Instructions,
		ComplexPasswords: req.ComplexPasswords,
	})
	if err != nil {
		if errors.Is(err, bulkgen.ErrRangeInvalid) || errors.Is(err, bulkgen.ErrTooManyRows) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="credentials.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(sheet))
}
