package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/pkg/pagination"
)

// Entry is a single record handed to the recorder.
type Entry struct {
	ProjectID  *snowflake.ID
	ActorID    *snowflake.ID
	Action     string
	EntityType string
	EntityID   *string
	ModuleKey  string
	OldValues  map[string]any
	NewValues  map[string]any
	Message    string
}

type ListRequest struct {
	pagination.Pagination
	ProjectID  snowflake.ID
	Action     string
	EntityType string
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	Logs []ActivityLog `json:"logs"`
}

// Recorder is the fire-and-forget activity sink. Record never returns an
// error; failures are swallowed after logging.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type Service interface {
	Recorder
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidProject   = errors.New("invalid_project")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
