package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identitydomain "github.com/crewbase/crewbase/internal/identity/domain"
)

type createUserRequest struct {
	Email       string `json:"email" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Password    string `json:"password" binding:"required"`
	IsAdmin     bool   `json:"is_admin"`
}

func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.identitySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	out := make([]userView, 0, len(users))
	for i := range users {
		out = append(out, viewUser(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.identitySvc.CreateUser(c.Request.Context(), identitydomain.CreateUserRequest{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": viewUser(user)})
}

func (s *Server) BlockUser(c *gin.Context) {
	targetID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	actor := currentUser(c)
	if err := s.identitySvc.Block(c.Request.Context(), actor.ID, targetID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "blocked"})
}

func (s *Server) UnblockUser(c *gin.Context) {
	targetID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	actor := currentUser(c)
	if err := s.identitySvc.Unblock(c.Request.Context(), actor.ID, targetID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func (s *Server) ResetPassword(c *gin.Context) {
	targetID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := s.identitySvc.ResetPassword(c.Request.Context(), targetID, req.Password); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
