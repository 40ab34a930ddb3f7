package projectctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ProjectContextKey is the request context key for the active project ID.
type ProjectContextKey struct{}

// WithProjectID stores the project ID in the context.
func WithProjectID(ctx context.Context, projectID snowflake.ID) context.Context {
	return context.WithValue(ctx, ProjectContextKey{}, projectID)
}

// ProjectIDFromContext returns the project ID from context, if set.
func ProjectIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(ProjectContextKey{}).(type) {
	case snowflake.ID:
		return typed, true
	case int64:
		return snowflake.ID(typed), true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
