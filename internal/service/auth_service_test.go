package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townhall/civic-service/internal/auth"
	"github.com/townhall/civic-service/internal/config"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/events"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

func authServiceForTest(store *fakeStore, govAutoApprove bool) *AuthService {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 30,
			BcryptCost:            4,
			GovAutoApprove:        govAutoApprove,
		},
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	return NewAuthService(cfg, store, tokens, events.NewInMemoryDispatcher())
}

func citizenInput(townID, email string) CitizenRegisterInput {
	return CitizenRegisterInput{
		RegisterInput: RegisterInput{
			Email:          email,
			Password:       "hunter2!",
			FirstName:      "Ada",
			LastName:       "Serrano",
			Phone:          "555-0101",
			TownID:         townID,
			BillingAddress: testBilling(),
		},
		CitizenID: "CIT-4471",
		Address:   "12 Main St",
	}
}

func TestRegisterCitizenCreatesPendingAccount(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	svc := authServiceForTest(store, false)

	principal, err := svc.RegisterCitizen(context.Background(), citizenInput(town.ID, "  Ada.Serrano@Example.com "))
	require.NoError(t, err)

	assert.Equal(t, "ada.serrano@example.com", principal.Email)
	assert.Equal(t, domain.RoleCitizen, principal.Role)
	assert.False(t, principal.IsApproved)
	require.NotNil(t, principal.TownID)
	assert.Equal(t, town.ID, *principal.TownID)

	profile, err := store.CitizenProfiles().GetByPrincipal(context.Background(), principal.ID)
	require.NoError(t, err)
	assert.Equal(t, "CIT-4471", profile.CitizenID)

	// The account exists but cannot log in until an official approves it.
	_, err = svc.Login(context.Background(), principal.Email, "hunter2!", domain.RoleCitizen)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	svc := authServiceForTest(store, false)

	_, err := svc.RegisterCitizen(context.Background(), citizenInput(town.ID, "dup@example.com"))
	require.NoError(t, err)

	_, err = svc.RegisterBusiness(context.Background(), BusinessRegisterInput{
		RegisterInput: RegisterInput{
			Email:          "DUP@example.com",
			Password:       "hunter2!",
			FirstName:      "Bo",
			LastName:       "Lin",
			TownID:         town.ID,
			BillingAddress: testBilling(),
		},
		BusinessName:       "Lin Hardware",
		RegistrationNumber: "REG-100",
		BusinessType:       "retail",
		BusinessAddress:    "4 Elm St",
	})
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestRegisterValidation(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	dormant := seedTown(t, store, "Dormant")
	dormant.IsActive = false
	require.NoError(t, store.Towns().Update(context.Background(), dormant))

	svc := authServiceForTest(store, false)

	unknown := citizenInput("00000000-0000-0000-0000-000000000000", "a@example.com")
	_, err := svc.RegisterCitizen(context.Background(), unknown)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	inactive := citizenInput(dormant.ID, "b@example.com")
	_, err = svc.RegisterCitizen(context.Background(), inactive)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	noBilling := citizenInput(town.ID, "c@example.com")
	noBilling.BillingAddress = domain.BillingAddress{}
	_, err = svc.RegisterCitizen(context.Background(), noBilling)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func officialInput(townID, email string) OfficialRegisterInput {
	return OfficialRegisterInput{
		RegisterInput: RegisterInput{
			Email:          email,
			Password:       "hunter2!",
			FirstName:      "Gail",
			LastName:       "Ortiz",
			TownID:         townID,
			BillingAddress: testBilling(),
		},
		EmployeeID: "EMP-9",
		Department: "public works",
		Position:   "inspector",
	}
}

func TestRegisterOfficialAutoApprove(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")

	pending, err := authServiceForTest(store, false).
		RegisterOfficial(context.Background(), officialInput(town.ID, "pending@town.gov"))
	require.NoError(t, err)
	assert.False(t, pending.IsApproved)

	approved, err := authServiceForTest(store, true).
		RegisterOfficial(context.Background(), officialInput(town.ID, "auto@town.gov"))
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	require.NotNil(t, approved.ApprovedAt)

	stored, err := store.Principals().GetByID(context.Background(), approved.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsApproved)

	official, err := store.Officials().GetByPrincipal(context.Background(), approved.ID)
	require.NoError(t, err)
	assert.False(t, official.CanViewUsers)
	assert.False(t, official.CanApproveUsers)
}

func seedLoginAccount(t *testing.T, store *fakeStore, townID string, role domain.Role, email string, approved bool) *domain.Principal {
	t.Helper()
	hash, err := auth.HashPassword("hunter2!", 4)
	require.NoError(t, err)
	p := &domain.Principal{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsApproved:   approved,
		TownID:       &townID,
	}
	require.NoError(t, store.Principals().Create(context.Background(), p))
	return p
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	svc := authServiceForTest(store, false)
	citizen := seedLoginAccount(t, store, town.ID, domain.RoleCitizen, "cit@example.com", true)

	result, err := svc.Login(context.Background(), "cit@example.com", "hunter2!", domain.RoleCitizen)
	require.NoError(t, err)
	assert.Equal(t, citizen.ID, result.Principal.ID)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.After(result.Principal.CreatedAt))

	_, err = svc.Login(context.Background(), "cit@example.com", "wrong", domain.RoleCitizen)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	_, err = svc.Login(context.Background(), "nobody@example.com", "hunter2!", domain.RoleCitizen)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	// A citizen logging in through the business endpoint is rejected the
	// same way as a bad password, without leaking which part was wrong.
	_, err = svc.Login(context.Background(), "cit@example.com", "hunter2!", domain.RoleBusiness)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	seedLoginAccount(t, store, town.ID, domain.RoleBusiness, "pend@example.com", false)
	_, err = svc.Login(context.Background(), "pend@example.com", "hunter2!", domain.RoleBusiness)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestLoginSuperuserBypassesRoleAndApproval(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	svc := authServiceForTest(store, false)

	root := seedLoginAccount(t, store, town.ID, domain.RoleGovernment, "root@town.gov", false)
	root.IsSuperuser = true
	require.NoError(t, store.Principals().Update(context.Background(), root))

	// Superusers log in through any role-typed endpoint, approved or not.
	result, err := svc.Login(context.Background(), "root@town.gov", "hunter2!", domain.RoleCitizen)
	require.NoError(t, err)
	assert.Equal(t, root.ID, result.Principal.ID)
}

func TestAdminLoginRequiresSuperuser(t *testing.T) {
	store := newFakeStore()
	town := seedTown(t, store, "Riverton")
	svc := authServiceForTest(store, false)

	regular := seedLoginAccount(t, store, town.ID, domain.RoleGovernment, "gov@town.gov", true)
	_, err := svc.AdminLogin(context.Background(), regular.Email, "hunter2!")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	admin := seedLoginAccount(t, store, town.ID, domain.RoleGovernment, "root@town.gov", true)
	admin.IsSuperuser = true
	require.NoError(t, store.Principals().Update(context.Background(), admin))

	result, err := svc.AdminLogin(context.Background(), "root@town.gov", "hunter2!")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, result.Principal.ID)
}
