package authz

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/crewbase/crewbase/internal/audit/domain"
	identitydomain "github.com/crewbase/crewbase/internal/identity/domain"
	projectdomain "github.com/crewbase/crewbase/internal/project/domain"
	"github.com/crewbase/crewbase/internal/resource"
	"go.uber.org/zap"
)

// ManagePermission is the slug that gates project settings, member and
// module management for non-owner members.
const ManagePermission = "projects.update"

// Store supplies the reads the engine needs: the project row, the single
// effective membership grant for a (project, user) pair, and the module
// gate state. Implementations must return consistent snapshots; the engine
// treats any read error as a denial.
type Store interface {
	Project(ctx context.Context, projectID snowflake.ID) (*projectdomain.Project, error)
	EffectiveGrant(ctx context.Context, projectID, userID snowflake.ID) (*projectdomain.MembershipGrant, error)
	ModuleEnabled(ctx context.Context, projectID snowflake.ID, key string) (bool, error)
}

// Engine is the decision function consumed by every other part of the
// system. It never mutates state and never raises for a denial.
type Engine struct {
	log      *zap.Logger
	store    Store
	recorder auditdomain.Recorder
}

// New builds the engine. recorder may be nil; denials then go unrecorded.
func New(log *zap.Logger, store Store, recorder auditdomain.Recorder) *Engine {
	return &Engine{
		log:      log.Named("authz.engine"),
		store:    store,
		recorder: recorder,
	}
}

// CanOnProject decides a project-scoped action that does not target an
// existing resource (viewAny, create): platform admin OR owner OR an
// active membership whose role holds the slug.
func (e *Engine) CanOnProject(ctx context.Context, user *identitydomain.User, project *projectdomain.Project, slug string) bool {
	d := e.decideProject(ctx, user, project, slug)
	e.finish(ctx, d, user, projectKey(project), slug)
	return d.Allowed
}

// CanOnResource decides an action on an existing tenant-scoped resource.
// The resource's project must be resolvable; a module-scoped resource is
// additionally unreachable while its module gate is disabled, regardless
// of role or ownership.
func (e *Engine) CanOnResource(ctx context.Context, user *identitydomain.User, res resource.HasProject, slug string) bool {
	d := e.decideResource(ctx, user, res, slug)
	var projectID snowflake.ID
	if res != nil {
		projectID = res.ProjectID()
	}
	e.finish(ctx, d, user, projectID, slug)
	return d.Allowed
}

// CanManageProject decides the administrative subset: project settings,
// member and module management.
func (e *Engine) CanManageProject(ctx context.Context, user *identitydomain.User, project *projectdomain.Project) bool {
	d := e.decideProject(ctx, user, project, ManagePermission)
	e.finish(ctx, d, user, projectKey(project), ManagePermission)
	return d.Allowed
}

// CanAccessModule decides whether a module's feature area is reachable at
// all: the gate must be enabled AND the user must have project access. A
// disabled gate denies everyone, the owner included.
func (e *Engine) CanAccessModule(ctx context.Context, user *identitydomain.User, project *projectdomain.Project, key string) bool {
	d := e.decideModuleAccess(ctx, user, project, key)
	e.finish(ctx, d, user, projectKey(project), "module:"+key)
	return d.Allowed
}

// HasProjectAccess reports whether the user can see the project at all:
// platform admin, owner, or any active membership. No specific permission
// is required.
func (e *Engine) HasProjectAccess(ctx context.Context, user *identitydomain.User, project *projectdomain.Project) bool {
	d := e.decideAccess(ctx, user, project)
	return d.Allowed
}

func (e *Engine) decideProject(ctx context.Context, user *identitydomain.User, project *projectdomain.Project, slug string) Decision {
	if user == nil || project == nil || project.ID == 0 || slug == "" {
		return deny(ReasonMissingRelation)
	}
	if user.IsBlocked {
		return deny(ReasonBlockedUser)
	}
	if user.IsAdmin {
		return allow(ReasonPlatformAdmin)
	}
	if project.OwnerID == user.ID {
		return allow(ReasonProjectOwner)
	}

	grant, err := e.store.EffectiveGrant(ctx, project.ID, user.ID)
	if err != nil {
		e.log.Warn("membership lookup failed",
			zap.String("project_id", project.ID.String()),
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return deny(ReasonLookupFailed)
	}
	if grant == nil {
		return deny(ReasonNoMembership)
	}
	if !grant.IsActive() {
		return deny(ReasonMembershipInactive)
	}
	if !grant.HasPermission(slug) {
		return deny(ReasonPermissionMissing)
	}
	return allow(ReasonRoleGrant)
}

func (e *Engine) decideResource(ctx context.Context, user *identitydomain.User, res resource.HasProject, slug string) Decision {
	if user == nil || res == nil {
		return deny(ReasonMissingRelation)
	}
	projectID := res.ProjectID()
	if projectID == 0 {
		return deny(ReasonMissingRelation)
	}
	if user.IsBlocked {
		return deny(ReasonBlockedUser)
	}

	// The module gate short-circuits before any permission or bypass is
	// considered: a disabled module makes the resource unreachable.
	if scoped, ok := res.(resource.ModuleScoped); ok {
		enabled, err := e.store.ModuleEnabled(ctx, projectID, scoped.ModuleKey())
		if err != nil {
			return deny(ReasonLookupFailed)
		}
		if !enabled {
			return deny(ReasonModuleDisabled)
		}
	}

	project, err := e.store.Project(ctx, projectID)
	if err != nil {
		return deny(ReasonLookupFailed)
	}
	if project == nil {
		return deny(ReasonMissingRelation)
	}

	return e.decideProject(ctx, user, project, slug)
}

func (e *Engine) decideModuleAccess(ctx context.Context, user *identitydomain.User, project *projectdomain.Project, key string) Decision {
	if user == nil || project == nil || project.ID == 0 || key == "" {
		return deny(ReasonMissingRelation)
	}
	if user.IsBlocked {
		return deny(ReasonBlockedUser)
	}

	enabled, err := e.store.ModuleEnabled(ctx, project.ID, key)
	if err != nil {
		return deny(ReasonLookupFailed)
	}
	if !enabled {
		return deny(ReasonModuleDisabled)
	}

	return e.decideAccess(ctx, user, project)
}

func (e *Engine) decideAccess(ctx context.Context, user *identitydomain.User, project *projectdomain.Project) Decision {
	if user == nil || project == nil || project.ID == 0 {
		return deny(ReasonMissingRelation)
	}
	if user.IsBlocked {
		return deny(ReasonBlockedUser)
	}
	if user.IsAdmin {
		return allow(ReasonPlatformAdmin)
	}
	if project.OwnerID == user.ID {
		return allow(ReasonProjectOwner)
	}

	grant, err := e.store.EffectiveGrant(ctx, project.ID, user.ID)
	if err != nil {
		return deny(ReasonLookupFailed)
	}
	if grant == nil {
		return deny(ReasonNoMembership)
	}
	if !grant.IsActive() {
		return deny(ReasonMembershipInactive)
	}
	return allow(ReasonRoleGrant)
}

func projectKey(p *projectdomain.Project) snowflake.ID {
	if p == nil {
		return 0
	}
	return p.ID
}

// finish emits observability for a decision: metrics always, a debug log
// line keeping the internal reason, and an activity record for denials.
func (e *Engine) finish(ctx context.Context, d Decision, user *identitydomain.User, projectID snowflake.ID, action string) {
	observeDecision(d)

	fields := []zap.Field{
		zap.Bool("allowed", d.Allowed),
		zap.String("reason", string(d.Reason)),
		zap.String("action", action),
	}
	if user != nil {
		fields = append(fields, zap.String("user_id", user.ID.String()))
	}
	if projectID != 0 {
		fields = append(fields, zap.String("project_id", projectID.String()))
	}
	e.log.Debug("authorization decision", fields...)

	if d.Allowed || e.recorder == nil {
		return
	}
	entry := auditdomain.Entry{
		Action:     "authorization.denied",
		EntityType: "authorization",
		NewValues: map[string]any{
			"action": action,
			"reason": string(d.Reason),
		},
	}
	if user != nil {
		id := user.ID
		entry.ActorID = &id
	}
	if projectID != 0 {
		id := projectID
		entry.ProjectID = &id
	}
	e.recorder.Record(ctx, entry)
}
