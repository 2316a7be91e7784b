package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"eduonline/internal/auth"
	"eduonline/internal/metrics"
)

func (s *Server) login(c *gin.Context) {
	var req struct {
		Login    string `json:"login" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ident, err := s.Roster.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	sess, err := s.Sessions.Issue(c.Request.Context(), ident.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session issue failed"})
		return
	}

	tokens, err := auth.Issue(ident.ID, string(ident.Role), sess.Token,
		s.Cfg.JWTIssuer, s.Cfg.JWTSigningKey, s.Cfg.AccessTTL, s.Cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	metrics.LoginsTotal.WithLabelValues(string(ident.Role)).Inc()
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
		"user":          ident,
	})
}

// refresh exchanges a valid refresh token for a new pair. The session
// token inside the refresh token must still be the identity's current
// one, so a displaced device cannot refresh its way back in.
func (s *Server) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := auth.Parse(req.RefreshToken, s.Cfg.JWTSigningKey, s.Cfg.JWTIssuer)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if err := s.Sessions.Validate(c.Request.Context(), claims.Subject, claims.SessionToken); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session-conflict"})
		return
	}

	tokens, err := auth.Issue(claims.Subject, claims.Role, claims.SessionToken,
		s.Cfg.JWTIssuer, s.Cfg.JWTSigningKey, s.Cfg.AccessTTL, s.Cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

func (s *Server) logout(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)
	if err := s.Sessions.Clear(c.Request.Context(), claims.Subject, claims.SessionToken); err != nil {
		log.Printf("logout: clear session for %s failed: %v", claims.Subject, err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (s *Server) changePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims, _ := auth.ClaimsFrom(c)
	if err := s.Roster.ChangePassword(c.Request.Context(), claims.Subject, req.OldPassword, req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password change failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password changed"})
}
