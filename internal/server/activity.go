package server

import (
	"github.com/gin-gonic/gin"

	auditdomain "github.com/crewbase/crewbase/internal/audit/domain"
)

// recordActivity writes one activity log entry for a mutating request.
// Fire-and-forget; the response never waits on it.
func (s *Server) recordActivity(c *gin.Context, action, entityType, entityID, moduleKey string) {
	entry := auditdomain.Entry{
		Action:     action,
		EntityType: entityType,
		ModuleKey:  moduleKey,
	}
	if entityID != "" {
		entry.EntityID = &entityID
	}
	if user := currentUser(c); user != nil {
		id := user.ID
		entry.ActorID = &id
	}
	if project := currentProject(c); project != nil {
		id := project.ID
		entry.ProjectID = &id
	}
	s.auditSvc.Record(c.Request.Context(), entry)
}
