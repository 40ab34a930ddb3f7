package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	identitydomain "github.com/crewbase/crewbase/internal/identity/domain"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
	IsBlocked   bool   `json:"is_blocked"`
}

func viewUser(u *identitydomain.User) userView {
	return userView{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsAdmin:     u.IsAdmin,
		IsBlocked:   u.IsBlocked,
	}
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.identitySvc.Login(c.Request.Context(), identitydomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	maxAge := int(time.Until(resp.ExpiresAt).Seconds())
	c.SetCookie(sessionCookieName, resp.SessionToken, maxAge, "/", "", s.cfg.AuthCookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"user": viewUser(resp.User)})
}

func (s *Server) Logout(c *gin.Context) {
	token, err := c.Cookie(sessionCookieName)
	if err == nil && token != "" {
		if err := s.identitySvc.Logout(c.Request.Context(), token); err != nil {
			s.log.Warn("logout failed", zapError(err))
		}
	}
	c.SetCookie(sessionCookieName, "", -1, "/", "", s.cfg.AuthCookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": viewUser(user)})
}

func (s *Server) AcceptInvite(c *gin.Context) {
	user := currentUser(c)
	member, err := s.projectSvc.AcceptInvite(c.Request.Context(), user.ID, c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project_id": member.ProjectID.String(),
		"status":     member.Status,
	})
}
