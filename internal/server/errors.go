package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/crewbase/crewbase/internal/audit/domain"
	identitydomain "github.com/crewbase/crewbase/internal/identity/domain"
	modulesdomain "github.com/crewbase/crewbase/internal/modules/domain"
	projectdomain "github.com/crewbase/crewbase/internal/project/domain"
	"github.com/crewbase/crewbase/internal/resource"
	roledomain "github.com/crewbase/crewbase/internal/role/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware turns the last error pushed onto the gin context
// into a JSON error response, once, after the handler chain ran.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func validationPayload(field, code, message string) errorPayload {
	return errorPayload{
		Type:    "validation_error",
		Message: "validation error",
		Errors: []ValidationError{
			{Field: field, Code: code, Message: message},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}

	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, identitydomain.ErrInvalidCredentials),
		errors.Is(err, identitydomain.ErrSessionExpired):
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "unauthorized"}

	case errors.Is(err, identitydomain.ErrUserBlocked):
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: "account is blocked"}

	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: "forbidden"}

	case errors.Is(err, identitydomain.ErrSelfBlock):
		return http.StatusUnprocessableEntity, errorPayload{Type: "invalid_operation", Message: "You cannot block yourself."}

	case errors.Is(err, identitydomain.ErrBlockAdmin):
		return http.StatusUnprocessableEntity, errorPayload{Type: "invalid_operation", Message: "You cannot block an admin user."}

	case errors.Is(err, roledomain.ErrSystemRole):
		return http.StatusUnprocessableEntity, errorPayload{Type: "invalid_operation", Message: "System roles cannot be deleted."}

	case errors.Is(err, roledomain.ErrRoleInUse):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: "role is assigned to project members"}

	case errors.Is(err, projectdomain.ErrOwnerMembership):
		return http.StatusUnprocessableEntity, errorPayload{Type: "invalid_operation", Message: "the owner's membership cannot be changed"}

	case errors.Is(err, projectdomain.ErrMemberExists):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: "user is already a member of this project"}

	case errors.Is(err, projectdomain.ErrInviteConsumed):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: "invite was already accepted"}

	case errors.Is(err, identitydomain.ErrEmailTaken),
		errors.Is(err, roledomain.ErrSlugTaken),
		errors.Is(err, ErrConflict):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: "conflict"}

	case errors.Is(err, identitydomain.ErrInvalidEmail):
		return http.StatusBadRequest, validationPayload("email", "invalid_email", "a valid email address is required")

	case errors.Is(err, identitydomain.ErrInvalidPassword):
		return http.StatusBadRequest, validationPayload("password", "invalid_password", "password does not meet requirements")

	case errors.Is(err, roledomain.ErrUnknownPermission):
		return http.StatusBadRequest, validationPayload("permissions", "unknown_permission", "one or more permission slugs are not in the catalog")

	case errors.Is(err, modulesdomain.ErrUnknownModule):
		return http.StatusBadRequest, validationPayload("module_key", "unknown_module", "module key is not in the catalog")

	case errors.Is(err, roledomain.ErrInvalidName),
		errors.Is(err, roledomain.ErrInvalidLevel),
		errors.Is(err, projectdomain.ErrInvalidName),
		errors.Is(err, projectdomain.ErrInvalidEmail),
		errors.Is(err, projectdomain.ErrInvalidRole),
		errors.Is(err, projectdomain.ErrInvalidStatus),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error()}

	case errors.Is(err, identitydomain.ErrNotFound),
		errors.Is(err, roledomain.ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, projectdomain.ErrInviteNotFound),
		errors.Is(err, resource.ErrNotFound),
		errors.Is(err, ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: "not found"}

	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}
