// Package resource defines the contract every tenant-scoped entity
// implements, plus the thin models the authorization engine's state gates
// operate on. Their business arithmetic lives elsewhere; authorization only
// needs project linkage and status.
package resource

import "github.com/bwmarrin/snowflake"

// HasProject is implemented by every tenant-scoped entity. A zero project
// ID is treated as an unresolvable relation and fails closed.
type HasProject interface {
	ProjectID() snowflake.ID
}

// ModuleScoped marks resources that live behind an optional module gate.
// When the gate is disabled for the resource's project, every check on the
// resource denies, regardless of role or ownership.
type ModuleScoped interface {
	HasProject
	ModuleKey() string
}
