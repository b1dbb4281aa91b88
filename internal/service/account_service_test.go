package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townhall/civic-service/internal/authz"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/events"
	"github.com/townhall/civic-service/internal/repository"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

func seedTown(t *testing.T, store *fakeStore, name string) *domain.Town {
	t.Helper()
	town := &domain.Town{Name: name, State: "NJ", IsActive: true}
	require.NoError(t, store.Towns().Create(context.Background(), town))
	return town
}

func seedPrincipal(t *testing.T, store *fakeStore, role domain.Role, townID string, approved bool) *domain.Principal {
	t.Helper()
	p := &domain.Principal{
		Email:        string(role) + "-" + townID + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsApproved:   approved,
		TownID:       &townID,
	}
	require.NoError(t, store.Principals().Create(context.Background(), p))
	return p
}

func approverContext(p *domain.Principal) authz.Context {
	return authz.Context{
		PrincipalID:     p.ID,
		Role:            p.Role,
		IsApproved:      p.IsApproved,
		TownID:          p.TownID,
		CanViewUsers:    true,
		CanApproveUsers: true,
	}
}

func TestAccountApproveIssuesCredential(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	official := seedPrincipal(t, store, domain.RoleGovernment, town.ID, true)
	citizen := seedPrincipal(t, store, domain.RoleCitizen, town.ID, false)

	svc := NewAccountService(store, events.NewInMemoryDispatcher(), nil)

	cred, err := svc.Approve(context.Background(), approverContext(official), citizen.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, cred.Key)

	updated, err := store.Principals().GetByID(context.Background(), citizen.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsApproved)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, official.ID, *updated.ApprovedBy)
	assert.NotNil(t, updated.ApprovedAt)
}

func TestAccountApproveTwiceConflicts(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	official := seedPrincipal(t, store, domain.RoleGovernment, town.ID, true)
	citizen := seedPrincipal(t, store, domain.RoleCitizen, town.ID, false)

	svc := NewAccountService(store, nil, nil)

	first, err := svc.Approve(context.Background(), approverContext(official), citizen.ID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), approverContext(official), citizen.ID)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	// The losing approval must not have minted or revoked anything.
	cred, err := store.Credentials().GetByKey(context.Background(), first.Key)
	require.NoError(t, err)
	assert.Equal(t, citizen.ID, cred.PrincipalID)

	updated, err := store.Principals().GetByID(context.Background(), citizen.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsApproved)
}

func TestAccountApproveDeniedOutsideTown(t *testing.T) {
	store := newFakeStore()
	townA := seedTown(t, store, "Riverton")
	townB := seedTown(t, store, "Lakewood")
	official := seedPrincipal(t, store, domain.RoleGovernment, townA.ID, true)
	citizen := seedPrincipal(t, store, domain.RoleCitizen, townB.ID, false)

	svc := NewAccountService(store, nil, nil)

	_, err := svc.Approve(context.Background(), approverContext(official), citizen.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAccountApproveOfficialTargetNeedsSuperuser(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	official := seedPrincipal(t, store, domain.RoleGovernment, town.ID, true)
	otherOfficial := seedPrincipal(t, store, domain.RoleGovernment, town.ID, false)

	svc := NewAccountService(store, nil, nil)

	_, err := svc.Approve(context.Background(), approverContext(official), otherOfficial.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = svc.Approve(context.Background(), authz.Context{PrincipalID: "root", IsSuperuser: true}, otherOfficial.ID)
	assert.NoError(t, err)
}

func TestAccountRejectDeletesPending(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	official := seedPrincipal(t, store, domain.RoleGovernment, town.ID, true)
	citizen := seedPrincipal(t, store, domain.RoleCitizen, town.ID, false)

	svc := NewAccountService(store, events.NewInMemoryDispatcher(), nil)

	require.NoError(t, svc.Reject(context.Background(), approverContext(official), citizen.ID, "incomplete evidence"))

	_, err := store.Principals().GetByID(context.Background(), citizen.ID)
	assert.Error(t, err)
}

func TestAccountRejectApprovedConflicts(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	official := seedPrincipal(t, store, domain.RoleGovernment, town.ID, true)
	citizen := seedPrincipal(t, store, domain.RoleCitizen, town.ID, true)

	svc := NewAccountService(store, nil, nil)

	err := svc.Reject(context.Background(), approverContext(official), citizen.ID, "")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	// Still present.
	_, getErr := store.Principals().GetByID(context.Background(), citizen.ID)
	assert.NoError(t, getErr)
}

func TestAccountDeactivateRevokesCredential(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	official := seedPrincipal(t, store, domain.RoleGovernment, town.ID, true)
	citizen := seedPrincipal(t, store, domain.RoleCitizen, town.ID, false)

	svc := NewAccountService(store, nil, nil)

	cred, err := svc.Approve(context.Background(), approverContext(official), citizen.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), approverContext(official), citizen.ID))

	updated, err := store.Principals().GetByID(context.Background(), citizen.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsApproved)
	assert.Nil(t, updated.ApprovedBy)
	assert.Nil(t, updated.ApprovedAt)

	_, err = store.Credentials().GetByKey(context.Background(), cred.Key)
	assert.Error(t, err)
}

func TestAccountDeactivatePendingConflicts(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	official := seedPrincipal(t, store, domain.RoleGovernment, town.ID, true)
	citizen := seedPrincipal(t, store, domain.RoleCitizen, town.ID, false)

	svc := NewAccountService(store, nil, nil)

	err := svc.Deactivate(context.Background(), approverContext(official), citizen.ID)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestAccountListScoping(t *testing.T) {
	store := newFakeStore()
	townA := seedTown(t, store, "Riverton")
	townB := seedTown(t, store, "Lakewood")
	official := seedPrincipal(t, store, domain.RoleGovernment, townA.ID, true)
	seedPrincipal(t, store, domain.RoleCitizen, townA.ID, true)
	seedPrincipal(t, store, domain.RoleBusiness, townA.ID, false)
	seedPrincipal(t, store, domain.RoleCitizen, townB.ID, true)
	seedPrincipal(t, store, domain.RoleGovernment, townB.ID, true)

	svc := NewAccountService(store, nil, nil)

	// Flagged official: own town, never government accounts.
	accounts, err := svc.List(context.Background(), approverContext(official), repository.PrincipalFilter{})
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	for _, account := range accounts {
		assert.Equal(t, townA.ID, *account.TownID)
		assert.NotEqual(t, domain.RoleGovernment, account.Role)
	}

	// Superuser sees everything.
	accounts, err = svc.List(context.Background(), authz.Context{IsSuperuser: true}, repository.PrincipalFilter{})
	require.NoError(t, err)
	assert.Len(t, accounts, 5)

	// Unflagged official is denied.
	unflagged := authz.Context{
		PrincipalID: official.ID,
		Role:        domain.RoleGovernment,
		IsApproved:  true,
		TownID:      official.TownID,
	}
	_, err = svc.List(context.Background(), unflagged, repository.PrincipalFilter{})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	// A citizen is denied outright.
	citizenCtx := authz.Context{PrincipalID: "c", Role: domain.RoleCitizen, IsApproved: true, TownID: &townA.ID}
	_, err = svc.List(context.Background(), citizenCtx, repository.PrincipalFilter{})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAccountApproveOnlyFlagDeniesListing(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	official := seedPrincipal(t, store, domain.RoleGovernment, town.ID, true)
	citizen := seedPrincipal(t, store, domain.RoleCitizen, town.ID, false)

	svc := NewAccountService(store, nil, nil)

	actor := authz.Context{
		PrincipalID:     official.ID,
		Role:            domain.RoleGovernment,
		IsApproved:      true,
		TownID:          official.TownID,
		CanApproveUsers: true,
	}

	_, err := svc.List(context.Background(), actor, repository.PrincipalFilter{})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = svc.Approve(context.Background(), actor, citizen.ID)
	require.NoError(t, err)
}

func TestAccountGetSelfAlwaysAllowed(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	citizen := seedPrincipal(t, store, domain.RoleCitizen, town.ID, false)
	require.NoError(t, store.CitizenProfiles().Create(context.Background(), &domain.CitizenProfile{
		PrincipalID: citizen.ID,
		CitizenID:   "CIT-1",
	}))

	svc := NewAccountService(store, nil, nil)

	self := authz.Context{PrincipalID: citizen.ID, Role: domain.RoleCitizen, TownID: citizen.TownID}
	detail, err := svc.Get(context.Background(), self, citizen.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Citizen)
	assert.Equal(t, "CIT-1", detail.Citizen.CitizenID)

	// Another citizen of the same town cannot read them.
	other := seedPrincipal(t, store, domain.RoleCitizen, town.ID, true)
	otherCtx := authz.Context{PrincipalID: other.ID, Role: domain.RoleCitizen, IsApproved: true, TownID: other.TownID}
	_, err = svc.Get(context.Background(), otherCtx, citizen.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAccountMissingRoleProfileIsNotFound(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	// An official principal row with no government_officials record.
	orphan := seedPrincipal(t, store, domain.RoleGovernment, town.ID, true)

	svc := NewAccountService(store, nil, nil)

	self := authz.Context{PrincipalID: orphan.ID, Role: domain.RoleGovernment, IsApproved: true, TownID: orphan.TownID}
	_, err := svc.Profile(context.Background(), self)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestUpdateProfilePatchesRoleProfile(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	citizen := seedPrincipal(t, store, domain.RoleCitizen, town.ID, true)
	require.NoError(t, store.CitizenProfiles().Create(context.Background(), &domain.CitizenProfile{
		PrincipalID: citizen.ID,
		CitizenID:   "CIT-1",
		Address:     "1 Old Rd",
	}))

	svc := NewAccountService(store, nil, nil)

	first := "Ada"
	address := "2 New Rd"
	self := authz.Context{PrincipalID: citizen.ID, Role: domain.RoleCitizen, IsApproved: true, TownID: citizen.TownID}
	detail, err := svc.UpdateProfile(context.Background(), self, ProfileUpdateInput{
		FirstName: &first,
		Address:   &address,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", detail.Principal.FirstName)
	require.NotNil(t, detail.Citizen)
	assert.Equal(t, "2 New Rd", detail.Citizen.Address)
}
