// Package authz centralizes account-management and tenancy decisions.
// Every decision is a pure function over a Context snapshot, so the rules
// are testable without a database and applied identically by every service.
package authz

import "github.com/townhall/civic-service/internal/domain"

// Flag identifies one of the granular official permissions.
type Flag int

const (
	// FlagViewUsers gates listing and reading accounts.
	FlagViewUsers Flag = iota
	// FlagApproveUsers gates approve, reject, deactivate and town-change
	// decisions.
	FlagApproveUsers
)

// Context is a snapshot of the acting principal's authority. For
// non-government principals the Can* flags are always false.
type Context struct {
	PrincipalID     string
	Role            domain.Role
	IsSuperuser     bool
	IsApproved      bool
	TownID          *string
	CanViewUsers    bool
	CanApproveUsers bool
}

// Scope is the tenancy reach of a principal for listing operations.
type Scope int

const (
	// ScopeNone grants access to nothing. The fail-closed default.
	ScopeNone Scope = iota
	// ScopeTown grants access to records in the principal's own town.
	ScopeTown
	// ScopeAll grants unrestricted access.
	ScopeAll
)

// HasFlag reports whether the context carries the given permission flag.
// Superusers implicitly hold every flag.
func (c Context) HasFlag(flag Flag) bool {
	if c.IsSuperuser {
		return true
	}
	switch flag {
	case FlagViewUsers:
		return c.CanViewUsers
	case FlagApproveUsers:
		return c.CanApproveUsers
	}
	return false
}

// ScopeFor resolves how far the actor can see when exercising flag.
// Superusers see everything; a flagged government official sees their own
// town; everyone else sees nothing.
func ScopeFor(actor Context, flag Flag) Scope {
	if actor.IsSuperuser {
		return ScopeAll
	}
	if actor.Role != domain.RoleGovernment || !actor.IsApproved {
		return ScopeNone
	}
	if !actor.HasFlag(flag) {
		return ScopeNone
	}
	if actor.TownID == nil {
		return ScopeNone
	}
	return ScopeTown
}

// CanManageAccounts decides whether the actor may perform an account
// management action (view or approve class, per flag) on a target described
// by its town and role. Officials never manage government targets; that
// stays with superusers.
func CanManageAccounts(actor Context, targetTownID *string, targetRole domain.Role, flag Flag) bool {
	if actor.IsSuperuser {
		return true
	}
	scope := ScopeFor(actor, flag)
	if scope != ScopeTown {
		return false
	}
	if targetRole == domain.RoleGovernment {
		return false
	}
	if targetTownID == nil || *targetTownID != *actor.TownID {
		return false
	}
	return true
}

// SameTown reports whether the actor belongs to the given town. Superusers
// are treated as members of every town.
func SameTown(actor Context, townID string) bool {
	if actor.IsSuperuser {
		return true
	}
	return actor.TownID != nil && *actor.TownID == townID
}

// ContextFor builds a Context from a loaded principal and, for government
// principals, their official record.
func ContextFor(p *domain.Principal, official *domain.GovernmentOfficial) Context {
	ctx := Context{
		PrincipalID: p.ID,
		Role:        p.Role,
		IsSuperuser: p.IsSuperuser,
		IsApproved:  p.IsApproved,
		TownID:      p.TownID,
	}
	if official != nil {
		ctx.CanViewUsers = official.CanViewUsers
		ctx.CanApproveUsers = official.CanApproveUsers
	}
	return ctx
}
