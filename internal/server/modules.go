package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListModules(c *gin.Context) {
	project := currentProject(c)
	infos, err := s.modulesSvc.ListForProject(c.Request.Context(), project.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"modules": infos})
}

type setModuleRequest struct {
	Enabled *bool          `json:"enabled"`
	Config  map[string]any `json:"config"`
}

// SetModule flips the gate and/or replaces the per-project module config
// in one call.
func (s *Server) SetModule(c *gin.Context) {
	var req setModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	project := currentProject(c)
	key := c.Param("moduleKey")

	if req.Enabled != nil {
		var err error
		if *req.Enabled {
			err = s.modulesSvc.Enable(c.Request.Context(), project.ID, key)
		} else {
			err = s.modulesSvc.Disable(c.Request.Context(), project.ID, key)
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}
	}
	if req.Config != nil {
		if err := s.modulesSvc.Configure(c.Request.Context(), project.ID, key, req.Config); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	enabled, err := s.modulesSvc.IsEnabled(c.Request.Context(), project.ID, key)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "is_enabled": enabled})
}
