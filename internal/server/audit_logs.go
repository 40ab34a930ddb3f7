package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/crewbase/crewbase/internal/audit/domain"
	"github.com/crewbase/crewbase/pkg/pagination"
)

func (s *Server) ListActivity(c *gin.Context) {
	project := currentProject(c)

	pageSize := 50
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		pageSize = n
	}

	req := auditdomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: c.Query("page_token"),
			PageSize:  pageSize,
		},
		ProjectID:  project.ID,
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}
	if raw := c.Query("start_at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.StartAt = &t
	}
	if raw := c.Query("end_at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.EndAt = &t
	}

	resp, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
