package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/auth"
	"github.com/townhall/civic-service/internal/config"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/events"
	"github.com/townhall/civic-service/internal/repository"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

// RegisterInput carries the fields shared by every signup flow.
type RegisterInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	Phone          string
	TownID         string
	BillingAddress domain.BillingAddress
}

// CitizenRegisterInput extends RegisterInput with citizen attributes.
type CitizenRegisterInput struct {
	RegisterInput
	CitizenID   string
	Address     string
	DateOfBirth *time.Time
}

// BusinessRegisterInput extends RegisterInput with business attributes.
type BusinessRegisterInput struct {
	RegisterInput
	BusinessName       string
	RegistrationNumber string
	BusinessType       string
	BusinessAddress    string
	Website            string
}

// OfficialRegisterInput extends RegisterInput with official attributes.
// New officials always start without permission flags.
type OfficialRegisterInput struct {
	RegisterInput
	EmployeeID    string
	Department    string
	Position      string
	OfficeAddress string
}

// LoginResult is the outcome of a successful authentication.
type LoginResult struct {
	Principal *domain.Principal
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	store          repository.Store
	tokens         *auth.TokenManager
	dispatcher     events.Dispatcher
	bcryptCost     int
	govAutoApprove bool
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, store repository.Store, tokens *auth.TokenManager, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{
		store:          store,
		tokens:         tokens,
		dispatcher:     dispatcher,
		bcryptCost:     cfg.Auth.BcryptCost,
		govAutoApprove: cfg.Auth.GovAutoApprove,
	}
}

// RegisterCitizen creates a pending citizen account with its profile.
func (s *AuthService) RegisterCitizen(ctx context.Context, input CitizenRegisterInput) (*domain.Principal, error) {
	principal, err := s.register(ctx, input.RegisterInput, domain.RoleCitizen, func(tx repository.Store, p *domain.Principal) error {
		profile := &domain.CitizenProfile{
			PrincipalID:    p.ID,
			CitizenID:      input.CitizenID,
			Address:        input.Address,
			BillingAddress: input.BillingAddress,
			DateOfBirth:    input.DateOfBirth,
		}
		return tx.CitizenProfiles().Create(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	return principal, nil
}

// RegisterBusiness creates a pending business-owner account with its profile.
func (s *AuthService) RegisterBusiness(ctx context.Context, input BusinessRegisterInput) (*domain.Principal, error) {
	return s.register(ctx, input.RegisterInput, domain.RoleBusiness, func(tx repository.Store, p *domain.Principal) error {
		profile := &domain.BusinessOwnerProfile{
			PrincipalID:        p.ID,
			BusinessName:       input.BusinessName,
			RegistrationNumber: input.RegistrationNumber,
			BusinessType:       input.BusinessType,
			BusinessAddress:    input.BusinessAddress,
			BillingAddress:     input.BillingAddress,
			Website:            input.Website,
		}
		return tx.BusinessProfiles().Create(ctx, profile)
	})
}

// RegisterOfficial creates a government account. It stays pending unless
// auto-approval for officials is configured.
func (s *AuthService) RegisterOfficial(ctx context.Context, input OfficialRegisterInput) (*domain.Principal, error) {
	principal, err := s.register(ctx, input.RegisterInput, domain.RoleGovernment, func(tx repository.Store, p *domain.Principal) error {
		official := &domain.GovernmentOfficial{
			PrincipalID:   p.ID,
			EmployeeID:    input.EmployeeID,
			Department:    input.Department,
			Position:      input.Position,
			OfficeAddress: input.OfficeAddress,
		}
		if err := tx.Officials().Create(ctx, official); err != nil {
			return err
		}
		if s.govAutoApprove {
			p.IsApproved = true
			now := time.Now()
			p.ApprovedAt = &now
			return tx.Principals().Update(ctx, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return principal, nil
}

func (s *AuthService) register(ctx context.Context, input RegisterInput, role domain.Role, attachProfile func(repository.Store, *domain.Principal) error) (*domain.Principal, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.store.Principals().GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	town, err := s.store.Towns().GetByID(ctx, input.TownID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewValidationError("unknown town", map[string]any{"town_id": input.TownID})
		}
		return nil, apperrors.MapError(err)
	}
	if !town.IsActive {
		return nil, apperrors.NewValidationError("town is not accepting registrations", map[string]any{"town_id": town.ID})
	}
	if input.BillingAddress.IsZero() {
		return nil, apperrors.NewValidationError("billing address is required", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	principal := &domain.Principal{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        strings.TrimSpace(input.Phone),
		Role:         role,
		TownID:       &town.ID,
	}

	err = s.store.ExecTx(ctx, func(tx repository.Store) error {
		if err := tx.Principals().Create(ctx, principal); err != nil {
			return err
		}
		return attachProfile(tx, principal)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventAccountRegistered,
		SubjectID: principal.ID,
		Payload: events.AccountDecisionPayload{
			Email:  principal.Email,
			Role:   principal.Role,
			TownID: principal.TownID,
		},
	})
	return principal, nil
}

// Login authenticates an account and enforces role-typed endpoints: a
// caller logging in through the citizen endpoint must hold the citizen
// role. Unapproved accounts are rejected after the password check so the
// error does not disclose whether the password was right. Superusers are
// exempt from both the role match and the approval gate.
func (s *AuthService) Login(ctx context.Context, email, password string, role domain.Role) (*LoginResult, error) {
	principal, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if principal.IsSuperuser {
		return s.issue(principal)
	}
	if principal.Role != role {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !principal.IsApproved {
		return nil, apperrors.NewForbidden("account pending approval")
	}
	return s.issue(principal)
}

// AdminLogin authenticates a superuser regardless of role.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	principal, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !principal.IsSuperuser {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(principal)
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*domain.Principal, error) {
	principal, err := s.store.Principals().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(principal.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return principal, nil
}

func (s *AuthService) issue(principal *domain.Principal) (*LoginResult, error) {
	token, exp, err := s.tokens.GenerateToken(principal)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Principal: principal, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
