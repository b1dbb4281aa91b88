package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townhall/civic-service/internal/authz"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/events"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

func testBilling() domain.BillingAddress {
	return domain.BillingAddress{Street: "12 Main St", City: "Riverton", State: "NJ", Zip: "08077"}
}

func memberContext(p *domain.Principal) authz.Context {
	return authz.Context{
		PrincipalID: p.ID,
		Role:        p.Role,
		IsApproved:  p.IsApproved,
		TownID:      p.TownID,
	}
}

func TestTownChangeHappyPath(t *testing.T) {
	store := newFakeStore()
	townA := seedTown(t, store, "Riverton")
	townB := seedTown(t, store, "Lakewood")
	citizen := seedPrincipal(t, store, domain.RoleCitizen, townA.ID, true)
	currentOfficial := seedPrincipal(t, store, domain.RoleGovernment, townA.ID, true)
	newOfficial := seedPrincipal(t, store, domain.RoleGovernment, townB.ID, true)

	svc := NewTownChangeService(store, events.NewInMemoryDispatcher())

	request, err := svc.Request(context.Background(), memberContext(citizen), townB.ID, testBilling())
	require.NoError(t, err)
	assert.Equal(t, domain.TownChangeStatusPending, request.Status)

	// Step one: the current town releases.
	request, err = svc.Approve(context.Background(), approverContext(currentOfficial), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TownChangeStatusApprovedCurrent, request.Status)
	require.NotNil(t, request.ApprovedByCurrent)
	assert.Equal(t, currentOfficial.ID, *request.ApprovedByCurrent)

	// Step two: the requested town accepts and the tenancy moves.
	request, err = svc.Approve(context.Background(), approverContext(newOfficial), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TownChangeStatusCompleted, request.Status)
	assert.NotNil(t, request.CompletedAt)

	moved, err := store.Principals().GetByID(context.Background(), citizen.ID)
	require.NoError(t, err)
	assert.Equal(t, townB.ID, *moved.TownID)
}

func TestTownChangePhaseAuthority(t *testing.T) {
	store := newFakeStore()
	townA := seedTown(t, store, "Riverton")
	townB := seedTown(t, store, "Lakewood")
	citizen := seedPrincipal(t, store, domain.RoleCitizen, townA.ID, true)
	currentOfficial := seedPrincipal(t, store, domain.RoleGovernment, townA.ID, true)
	newOfficial := seedPrincipal(t, store, domain.RoleGovernment, townB.ID, true)

	svc := NewTownChangeService(store, nil)

	request, err := svc.Request(context.Background(), memberContext(citizen), townB.ID, testBilling())
	require.NoError(t, err)

	// The requested town cannot decide the pending phase.
	_, err = svc.Approve(context.Background(), approverContext(newOfficial), request.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = svc.Approve(context.Background(), approverContext(currentOfficial), request.ID)
	require.NoError(t, err)

	// And the current town cannot decide the acceptance phase.
	_, err = svc.Approve(context.Background(), approverContext(currentOfficial), request.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestTownChangeDecisionRaceLoserConflicts(t *testing.T) {
	store := newFakeStore()
	townA := seedTown(t, store, "Riverton")
	townB := seedTown(t, store, "Lakewood")
	citizen := seedPrincipal(t, store, domain.RoleCitizen, townA.ID, true)
	official := seedPrincipal(t, store, domain.RoleGovernment, townA.ID, true)

	svc := NewTownChangeService(store, nil)

	request, err := svc.Request(context.Background(), memberContext(citizen), townB.ID, testBilling())
	require.NoError(t, err)

	// Simulate a racing rejection landing first.
	won, err := store.TownChanges().Reject(context.Background(), request.ID, "moved away", domain.TownChangeStatusPending)
	require.NoError(t, err)
	require.True(t, won)

	_, err = svc.Approve(context.Background(), approverContext(official), request.ID)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestTownChangeOfficialsCannotRequest(t *testing.T) {
	store := newFakeStore()
	townA := seedTown(t, store, "Riverton")
	townB := seedTown(t, store, "Lakewood")
	official := seedPrincipal(t, store, domain.RoleGovernment, townA.ID, true)

	svc := NewTownChangeService(store, nil)

	_, err := svc.Request(context.Background(), memberContext(official), townB.ID, testBilling())
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestTownChangeRequestValidation(t *testing.T) {
	store := newFakeStore()
	townA := seedTown(t, store, "Riverton")
	townB := seedTown(t, store, "Lakewood")
	inactive := seedTown(t, store, "Ghostville")
	inactive.IsActive = false
	require.NoError(t, store.Towns().Update(context.Background(), inactive))

	citizen := seedPrincipal(t, store, domain.RoleCitizen, townA.ID, true)
	svc := NewTownChangeService(store, nil)

	// Same town.
	_, err := svc.Request(context.Background(), memberContext(citizen), townA.ID, testBilling())
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	// Missing billing evidence.
	_, err = svc.Request(context.Background(), memberContext(citizen), townB.ID, domain.BillingAddress{})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	// Inactive destination.
	_, err = svc.Request(context.Background(), memberContext(citizen), inactive.ID, testBilling())
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	// Unapproved requester.
	pending := seedPrincipal(t, store, domain.RoleBusiness, townA.ID, false)
	_, err = svc.Request(context.Background(), memberContext(pending), townB.ID, testBilling())
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestTownChangeSingleActiveRequest(t *testing.T) {
	store := newFakeStore()
	townA := seedTown(t, store, "Riverton")
	townB := seedTown(t, store, "Lakewood")
	citizen := seedPrincipal(t, store, domain.RoleCitizen, townA.ID, true)

	svc := NewTownChangeService(store, nil)

	_, err := svc.Request(context.Background(), memberContext(citizen), townB.ID, testBilling())
	require.NoError(t, err)

	_, err = svc.Request(context.Background(), memberContext(citizen), townB.ID, testBilling())
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestTownChangeGetMasksForeignRequests(t *testing.T) {
	store := newFakeStore()
	townA := seedTown(t, store, "Riverton")
	townB := seedTown(t, store, "Lakewood")
	townC := seedTown(t, store, "Marlton")
	citizen := seedPrincipal(t, store, domain.RoleCitizen, townA.ID, true)
	outsider := seedPrincipal(t, store, domain.RoleGovernment, townC.ID, true)

	svc := NewTownChangeService(store, nil)

	request, err := svc.Request(context.Background(), memberContext(citizen), townB.ID, testBilling())
	require.NoError(t, err)

	// An official of an uninvolved town gets NOT_FOUND, not FORBIDDEN.
	_, err = svc.Get(context.Background(), approverContext(outsider), request.ID)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	// The owner reads it fine.
	got, err := svc.Get(context.Background(), memberContext(citizen), request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, got.ID)
}

func TestTownChangeRejectByPhase(t *testing.T) {
	store := newFakeStore()
	townA := seedTown(t, store, "Riverton")
	townB := seedTown(t, store, "Lakewood")
	citizen := seedPrincipal(t, store, domain.RoleCitizen, townA.ID, true)
	currentOfficial := seedPrincipal(t, store, domain.RoleGovernment, townA.ID, true)
	newOfficial := seedPrincipal(t, store, domain.RoleGovernment, townB.ID, true)

	svc := NewTownChangeService(store, nil)

	request, err := svc.Request(context.Background(), memberContext(citizen), townB.ID, testBilling())
	require.NoError(t, err)

	// While pending the requested town holds no decision.
	_, err = svc.Reject(context.Background(), approverContext(newOfficial), request.ID, "")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	request, err = svc.Approve(context.Background(), approverContext(currentOfficial), request.ID)
	require.NoError(t, err)

	// After release the decision moves to the requested town.
	rejected, err := svc.Reject(context.Background(), approverContext(newOfficial), request.ID, "no capacity")
	require.NoError(t, err)
	assert.Equal(t, domain.TownChangeStatusRejected, rejected.Status)
	assert.Equal(t, "no capacity", rejected.RejectionReason)

	// The principal stays in the original town.
	unchanged, err := store.Principals().GetByID(context.Background(), citizen.ID)
	require.NoError(t, err)
	assert.Equal(t, townA.ID, *unchanged.TownID)
}

func TestTownChangeRejectGuardsPhase(t *testing.T) {
	store := newFakeStore()
	townA := seedTown(t, store, "Riverton")
	townB := seedTown(t, store, "Lakewood")
	citizen := seedPrincipal(t, store, domain.RoleCitizen, townA.ID, true)
	currentOfficial := seedPrincipal(t, store, domain.RoleGovernment, townA.ID, true)

	svc := NewTownChangeService(store, nil)

	request, err := svc.Request(context.Background(), memberContext(citizen), townB.ID, testBilling())
	require.NoError(t, err)

	// The current town releases the request out from under a rejection
	// that was decided against the pending phase.
	_, err = svc.Approve(context.Background(), approverContext(currentOfficial), request.ID)
	require.NoError(t, err)

	won, err := store.TownChanges().Reject(context.Background(), request.ID, "stale decision", domain.TownChangeStatusPending)
	require.NoError(t, err)
	assert.False(t, won)

	current, err := store.TownChanges().GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TownChangeStatusApprovedCurrent, current.Status)
}
