package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	roledomain "github.com/crewbase/crewbase/internal/role/domain"
)

type roleView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Level       int      `json:"level"`
	Description string   `json:"description,omitempty"`
	IsSystem    bool     `json:"is_system"`
	Permissions []string `json:"permissions"`
}

func viewRole(r *roledomain.Role) roleView {
	return roleView{
		ID:          r.ID.String(),
		Name:        r.Name,
		Slug:        r.Slug,
		Level:       r.Level,
		Description: r.Description,
		IsSystem:    r.IsSystem(),
		Permissions: r.PermissionSlugs(),
	}
}

func (s *Server) ListRoles(c *gin.Context) {
	roles, err := s.roleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	out := make([]roleView, 0, len(roles))
	for i := range roles {
		out = append(out, viewRole(&roles[i]))
	}
	c.JSON(http.StatusOK, gin.H{"roles": out})
}

func (s *Server) GetRole(c *gin.Context) {
	roleID, ok := pathID(c, "roleID")
	if !ok {
		return
	}
	role, err := s.roleSvc.Get(c.Request.Context(), roleID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": viewRole(role)})
}

type createRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Level       int      `json:"level"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func (s *Server) CreateRole(c *gin.Context) {
	var req createRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	role, err := s.roleSvc.Create(c.Request.Context(), roledomain.CreateRequest{
		Name:        req.Name,
		Level:       req.Level,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"role": viewRole(role)})
}

type updateRoleRequest struct {
	Name        *string `json:"name"`
	Level       *int    `json:"level"`
	Description *string `json:"description"`
}

func (s *Server) UpdateRole(c *gin.Context) {
	roleID, ok := pathID(c, "roleID")
	if !ok {
		return
	}
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	role, err := s.roleSvc.Update(c.Request.Context(), roledomain.UpdateRequest{
		ID:          roleID,
		Name:        req.Name,
		Level:       req.Level,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": viewRole(role)})
}

type setPermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// SetRolePermissions replaces the role's permission set with exactly the
// slugs in the request body.
func (s *Server) SetRolePermissions(c *gin.Context) {
	roleID, ok := pathID(c, "roleID")
	if !ok {
		return
	}
	var req setPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	role, err := s.roleSvc.SetPermissions(c.Request.Context(), roleID, req.Permissions)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": viewRole(role)})
}

func (s *Server) DeleteRole(c *gin.Context) {
	roleID, ok := pathID(c, "roleID")
	if !ok {
		return
	}
	if err := s.roleSvc.Delete(c.Request.Context(), roleID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type permissionView struct {
	Slug      string `json:"slug"`
	ModuleKey string `json:"module_key,omitempty"`
}

func (s *Server) ListPermissions(c *gin.Context) {
	slugs := s.catalog.Slugs()
	out := make([]permissionView, 0, len(slugs))
	for _, slug := range slugs {
		out = append(out, permissionView{Slug: slug, ModuleKey: s.catalog.ModuleOf(slug)})
	}
	c.JSON(http.StatusOK, gin.H{"permissions": out})
}
