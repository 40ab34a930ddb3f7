// Package authz implements the authorization engine: pure predicates that
// decide, for a (user, project) pair, whether an action is allowed. Every
// negative outcome is a boolean false, never an error; unresolvable data
// fails closed.
package authz

// Reason explains a decision internally. Callers only ever see the boolean;
// reasons feed structured logs, metrics and the activity log so that "no
// membership" and "membership lacks the permission" stay distinguishable
// for auditing.
type Reason string

const (
	ReasonPlatformAdmin      Reason = "platform_admin"
	ReasonProjectOwner       Reason = "project_owner"
	ReasonRoleGrant          Reason = "role_grant"
	ReasonWorkerSelf         Reason = "worker_self"
	ReasonBlockedUser        Reason = "blocked_user"
	ReasonMissingRelation    Reason = "missing_relation"
	ReasonLookupFailed       Reason = "lookup_failed"
	ReasonNoMembership       Reason = "no_membership"
	ReasonMembershipInactive Reason = "membership_inactive"
	ReasonPermissionMissing  Reason = "permission_missing"
	ReasonModuleDisabled     Reason = "module_disabled"
	ReasonTerminalState      Reason = "terminal_state"
	ReasonStateMismatch      Reason = "state_mismatch"
)

// Decision is the internal outcome of one authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow(reason Reason) Decision {
	return Decision{Allowed: true, Reason: reason}
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}
