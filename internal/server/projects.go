package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	projectdomain "github.com/crewbase/crewbase/internal/project/domain"
)

type projectView struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Slug    string         `json:"slug"`
	OwnerID string         `json:"owner_id"`
	Status  string         `json:"status"`
	Config  map[string]any `json:"config,omitempty"`
}

func viewProject(p *projectdomain.Project) projectView {
	return projectView{
		ID:      p.ID.String(),
		Name:    p.Name,
		Slug:    p.Slug,
		OwnerID: p.OwnerID.String(),
		Status:  string(p.Status),
		Config:  p.Config,
	}
}

type createProjectRequest struct {
	Name   string         `json:"name" binding:"required"`
	Config map[string]any `json:"config"`
}

func (s *Server) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	user := currentUser(c)
	project, err := s.projectSvc.Create(c.Request.Context(), user.ID, projectdomain.CreateProjectRequest{
		Name:   req.Name,
		Config: req.Config,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": viewProject(project)})
}

func (s *Server) ListProjects(c *gin.Context) {
	user := currentUser(c)
	items, err := s.projectSvc.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	type item struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Slug     string `json:"slug"`
		Status   string `json:"status"`
		RoleSlug string `json:"role_slug,omitempty"`
		IsOwner  bool   `json:"is_owner"`
	}
	out := make([]item, 0, len(items))
	for _, it := range items {
		out = append(out, item{
			ID:       it.ID.String(),
			Name:     it.Name,
			Slug:     it.Slug,
			Status:   string(it.Status),
			RoleSlug: it.RoleSlug,
			IsOwner:  it.IsOwner,
		})
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

func (s *Server) GetProject(c *gin.Context) {
	user := currentUser(c)
	project := currentProject(c)
	c.JSON(http.StatusOK, gin.H{
		"project":    viewProject(project),
		"can_manage": s.authz.CanManageProject(c.Request.Context(), user, project),
	})
}

type updateProjectRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) UpdateProjectStatus(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	project := currentProject(c)
	err := s.projectSvc.UpdateStatus(c.Request.Context(), project.ID, projectdomain.ProjectStatus(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

type transferOwnershipRequest struct {
	NewOwnerID string `json:"new_owner_id" binding:"required"`
}

// TransferOwnership is restricted to the current owner and platform
// admins; holding projects.update is not enough.
func (s *Server) TransferOwnership(c *gin.Context) {
	user := currentUser(c)
	project := currentProject(c)
	if !user.IsAdmin && project.OwnerID != user.ID {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req transferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	newOwnerID, err := parseSnowflake(req.NewOwnerID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.projectSvc.TransferOwnership(c.Request.Context(), project.ID, newOwnerID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner_id": req.NewOwnerID})
}

type addMemberRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	RoleID  string `json:"role_id" binding:"required"`
	Invited bool   `json:"invited"`
}

func (s *Server) AddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	userID, err := parseSnowflake(req.UserID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	roleID, err := parseSnowflake(req.RoleID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	project := currentProject(c)
	member, err := s.projectSvc.AddMember(c.Request.Context(), projectdomain.AddMemberRequest{
		ProjectID: project.ID,
		UserID:    userID,
		RoleID:    roleID,
		Invited:   req.Invited,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user_id": member.UserID.String(),
		"role_id": member.RoleID.String(),
		"status":  member.Status,
	})
}

func (s *Server) ListMembers(c *gin.Context) {
	project := currentProject(c)
	members, err := s.projectSvc.ListMembers(c.Request.Context(), project.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	type member struct {
		UserID      string `json:"user_id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		RoleID      string `json:"role_id"`
		RoleSlug    string `json:"role_slug"`
		Status      string `json:"status"`
	}
	out := make([]member, 0, len(members))
	for _, m := range members {
		out = append(out, member{
			UserID:      m.UserID.String(),
			Email:       m.Email,
			DisplayName: m.DisplayName,
			RoleID:      m.RoleID.String(),
			RoleSlug:    m.RoleSlug,
			Status:      string(m.Status),
		})
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

type changeRoleRequest struct {
	RoleID string `json:"role_id" binding:"required"`
}

func (s *Server) ChangeMemberRole(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	roleID, err := parseSnowflake(req.RoleID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	project := currentProject(c)
	if err := s.projectSvc.ChangeMemberRole(c.Request.Context(), project.ID, userID, roleID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role_id": req.RoleID})
}

func (s *Server) SuspendMember(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	project := currentProject(c)
	if err := s.projectSvc.SuspendMember(c.Request.Context(), project.ID, userID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "suspended"})
}

func (s *Server) ActivateMember(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	project := currentProject(c)
	if err := s.projectSvc.ActivateMember(c.Request.Context(), project.ID, userID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

func (s *Server) RemoveMember(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	project := currentProject(c)
	if err := s.projectSvc.RemoveMember(c.Request.Context(), project.ID, userID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

type inviteMemberRequest struct {
	Email  string `json:"email" binding:"required"`
	RoleID string `json:"role_id" binding:"required"`
}

func (s *Server) InviteMember(c *gin.Context) {
	var req inviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	roleID, err := parseSnowflake(req.RoleID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user := currentUser(c)
	project := currentProject(c)
	invite, err := s.projectSvc.InviteMember(c.Request.Context(), projectdomain.InviteMemberRequest{
		ProjectID: project.ID,
		Email:     req.Email,
		RoleID:    roleID,
		InvitedBy: user.ID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":   invite.Code,
		"email":  invite.Email,
		"status": invite.Status,
	})
}
