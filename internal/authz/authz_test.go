package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/townhall/civic-service/internal/domain"
)

func strPtr(s string) *string { return &s }

func official(townID string, canView, canApprove bool) Context {
	return Context{
		PrincipalID:     "official-1",
		Role:            domain.RoleGovernment,
		IsApproved:      true,
		TownID:          strPtr(townID),
		CanViewUsers:    canView,
		CanApproveUsers: canApprove,
	}
}

func TestScopeFor(t *testing.T) {
	tests := []struct {
		name  string
		actor Context
		flag  Flag
		want  Scope
	}{
		{"superuser sees all", Context{IsSuperuser: true}, FlagApproveUsers, ScopeAll},
		{"flagged official sees own town", official("town-a", true, false), FlagViewUsers, ScopeTown},
		{"official without flag sees nothing", official("town-a", true, false), FlagApproveUsers, ScopeNone},
		{"approve flag grants no view scope", official("town-a", false, true), FlagViewUsers, ScopeNone},
		{"approve flag grants approve scope", official("town-a", false, true), FlagApproveUsers, ScopeTown},
		{"unapproved official sees nothing", func() Context {
			c := official("town-a", true, true)
			c.IsApproved = false
			return c
		}(), FlagViewUsers, ScopeNone},
		{"official without town sees nothing", func() Context {
			c := official("town-a", true, true)
			c.TownID = nil
			return c
		}(), FlagViewUsers, ScopeNone},
		{"citizen sees nothing", Context{Role: domain.RoleCitizen, IsApproved: true, TownID: strPtr("town-a")}, FlagViewUsers, ScopeNone},
		{"business sees nothing", Context{Role: domain.RoleBusiness, IsApproved: true, TownID: strPtr("town-a")}, FlagApproveUsers, ScopeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScopeFor(tt.actor, tt.flag))
		})
	}
}

func TestCanManageAccounts(t *testing.T) {
	tests := []struct {
		name       string
		actor      Context
		targetTown *string
		targetRole domain.Role
		flag       Flag
		want       bool
	}{
		{"superuser manages anyone", Context{IsSuperuser: true}, strPtr("town-b"), domain.RoleGovernment, FlagApproveUsers, true},
		{"flagged official manages same-town citizen", official("town-a", true, true), strPtr("town-a"), domain.RoleCitizen, FlagApproveUsers, true},
		{"flagged official manages same-town business", official("town-a", true, true), strPtr("town-a"), domain.RoleBusiness, FlagViewUsers, true},
		{"official never manages another official", official("town-a", true, true), strPtr("town-a"), domain.RoleGovernment, FlagApproveUsers, false},
		{"official blocked across towns", official("town-a", true, true), strPtr("town-b"), domain.RoleCitizen, FlagApproveUsers, false},
		{"official blocked without flag", official("town-a", false, false), strPtr("town-a"), domain.RoleCitizen, FlagViewUsers, false},
		{"approver without view flag still approves", official("town-a", false, true), strPtr("town-a"), domain.RoleCitizen, FlagApproveUsers, true},
		{"approver without view flag cannot view", official("town-a", false, true), strPtr("town-a"), domain.RoleCitizen, FlagViewUsers, false},
		{"target without town is unmanageable", official("town-a", true, true), nil, domain.RoleCitizen, FlagApproveUsers, false},
		{"citizen manages nobody", Context{Role: domain.RoleCitizen, IsApproved: true, TownID: strPtr("town-a")}, strPtr("town-a"), domain.RoleCitizen, FlagViewUsers, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanManageAccounts(tt.actor, tt.targetTown, tt.targetRole, tt.flag))
		})
	}
}

func TestSameTown(t *testing.T) {
	assert.True(t, SameTown(official("town-a", false, false), "town-a"))
	assert.False(t, SameTown(official("town-a", false, false), "town-b"))
	assert.True(t, SameTown(Context{IsSuperuser: true}, "town-b"))
	assert.False(t, SameTown(Context{}, "town-a"))
}

func TestContextFor(t *testing.T) {
	town := "town-a"
	p := &domain.Principal{ID: "p1", Role: domain.RoleGovernment, IsApproved: true, TownID: &town}

	ctx := ContextFor(p, &domain.GovernmentOfficial{CanViewUsers: true})
	assert.True(t, ctx.CanViewUsers)
	assert.False(t, ctx.CanApproveUsers)

	// Missing official record leaves every flag off.
	ctx = ContextFor(p, nil)
	assert.False(t, ctx.HasFlag(FlagViewUsers))
	assert.False(t, ctx.HasFlag(FlagApproveUsers))
}
