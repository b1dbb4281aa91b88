package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/auth"
	"github.com/townhall/civic-service/internal/authz"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/events"
	"github.com/townhall/civic-service/internal/observability"
	"github.com/townhall/civic-service/internal/repository"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

// AccountDetail bundles a principal with its role profile; exactly one of
// the profile fields is set, matching the role.
type AccountDetail struct {
	Principal *domain.Principal
	Citizen   *domain.CitizenProfile
	Business  *domain.BusinessOwnerProfile
	Official  *domain.GovernmentOfficial
}

// ProfileUpdateInput is the self-service profile patch. Nil fields are
// left untouched.
type ProfileUpdateInput struct {
	FirstName       *string
	LastName        *string
	Phone           *string
	Address         *string
	BillingAddress  *domain.BillingAddress
	BusinessName    *string
	BusinessType    *string
	BusinessAddress *string
	Website         *string
	Department      *string
	Position        *string
	OfficeAddress   *string
}

// AccountService implements the approval lifecycle and account visibility
// rules. Every decision funnels through the authz package so listing, read
// and mutation agree on who may touch whom.
type AccountService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// NewAccountService builds the service.
func NewAccountService(store repository.Store, dispatcher events.Dispatcher, metrics *observability.Metrics) *AccountService {
	return &AccountService{store: store, dispatcher: dispatcher, metrics: metrics}
}

// List returns accounts visible to the actor. Superusers see every account;
// flagged officials see non-government accounts of their own town; everyone
// else is denied.
func (s *AccountService) List(ctx context.Context, actor authz.Context, filter repository.PrincipalFilter) ([]domain.Principal, error) {
	switch authz.ScopeFor(actor, authz.FlagViewUsers) {
	case authz.ScopeAll:
	case authz.ScopeTown:
		filter.TownID = actor.TownID
		filter.Roles = nonGovernmentRoles(filter.Roles)
	default:
		s.metrics.RecordAuthzDenial("account_list")
		return nil, apperrors.NewForbidden("not allowed to view accounts")
	}

	accounts, err := s.store.Principals().List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return accounts, nil
}

// Get returns one account. Principals can always read themselves; otherwise
// the view rules apply.
func (s *AccountService) Get(ctx context.Context, actor authz.Context, id string) (*AccountDetail, error) {
	principal, err := s.store.Principals().GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("account")
		}
		return nil, apperrors.MapError(err)
	}

	if actor.PrincipalID != principal.ID &&
		!authz.CanManageAccounts(actor, principal.TownID, principal.Role, authz.FlagViewUsers) {
		s.metrics.RecordAuthzDenial("account_get")
		return nil, apperrors.NewForbidden("not allowed to view this account")
	}
	return s.detail(ctx, principal)
}

// Approve marks a pending account approved and issues its API credential.
// Approving an already approved account is CONFLICT; credential issuance is
// get-or-create so a retried approval never mints a second key.
func (s *AccountService) Approve(ctx context.Context, actor authz.Context, id string) (*domain.APICredential, error) {
	if err := s.requireManage(ctx, actor, id, "account_approve"); err != nil {
		return nil, err
	}

	key, err := auth.NewAPIKey()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	var credential *domain.APICredential
	var approved *domain.Principal
	err = s.store.ExecTx(ctx, func(tx repository.Store) error {
		principal, err := tx.Principals().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if principal.IsApproved {
			return apperrors.NewConflict("account is already approved", nil)
		}
		now := time.Now()
		principal.IsApproved = true
		principal.ApprovedBy = &actor.PrincipalID
		principal.ApprovedAt = &now
		if err := tx.Principals().Update(ctx, principal); err != nil {
			return err
		}
		credential, err = tx.Credentials().GetOrCreate(ctx, principal.ID, key)
		if err != nil {
			return err
		}
		approved = principal
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.metrics.RecordAccountAction("approve", "ok")
	s.publish(ctx, events.Event{
		Type:      events.EventAccountApproved,
		SubjectID: approved.ID,
		ActorID:   actor.PrincipalID,
		Payload: events.AccountDecisionPayload{
			Email:  approved.Email,
			Role:   approved.Role,
			TownID: approved.TownID,
		},
	})
	return credential, nil
}

// Reject removes a pending account and everything attached to it. Approved
// accounts cannot be rejected; deactivate them instead.
func (s *AccountService) Reject(ctx context.Context, actor authz.Context, id, reason string) error {
	if err := s.requireManage(ctx, actor, id, "account_reject"); err != nil {
		return err
	}

	var rejected *domain.Principal
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		principal, err := tx.Principals().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if principal.IsApproved {
			return apperrors.NewConflict("approved accounts cannot be rejected", nil)
		}
		if err := tx.Principals().Delete(ctx, principal.ID); err != nil {
			return err
		}
		rejected = principal
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.metrics.RecordAccountAction("reject", "ok")
	s.publish(ctx, events.Event{
		Type:      events.EventAccountRejected,
		SubjectID: rejected.ID,
		ActorID:   actor.PrincipalID,
		Payload: events.AccountDecisionPayload{
			Email:  rejected.Email,
			Role:   rejected.Role,
			TownID: rejected.TownID,
			Reason: reason,
		},
	})
	return nil
}

// Deactivate returns an approved account to the pending state and revokes
// its API credential. The account and its history survive.
func (s *AccountService) Deactivate(ctx context.Context, actor authz.Context, id string) error {
	if err := s.requireManage(ctx, actor, id, "account_deactivate"); err != nil {
		return err
	}

	var deactivated *domain.Principal
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		principal, err := tx.Principals().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !principal.IsApproved {
			return apperrors.NewConflict("account is not approved", nil)
		}
		principal.IsApproved = false
		principal.ApprovedBy = nil
		principal.ApprovedAt = nil
		if err := tx.Principals().Update(ctx, principal); err != nil {
			return err
		}
		if err := tx.Credentials().DeleteByPrincipal(ctx, principal.ID); err != nil {
			return err
		}
		deactivated = principal
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.metrics.RecordAccountAction("deactivate", "ok")
	s.publish(ctx, events.Event{
		Type:      events.EventAccountDeactivated,
		SubjectID: deactivated.ID,
		ActorID:   actor.PrincipalID,
		Payload: events.AccountDecisionPayload{
			Email:  deactivated.Email,
			Role:   deactivated.Role,
			TownID: deactivated.TownID,
		},
	})
	return nil
}

// Profile returns the actor's own account with its role profile.
func (s *AccountService) Profile(ctx context.Context, actor authz.Context) (*AccountDetail, error) {
	principal, err := s.store.Principals().GetByID(ctx, actor.PrincipalID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("account")
		}
		return nil, apperrors.MapError(err)
	}
	return s.detail(ctx, principal)
}

// UpdateProfile applies a self-service patch to the actor's account and
// role profile. Email, role and town are not patchable; town moves go
// through the relocation workflow.
func (s *AccountService) UpdateProfile(ctx context.Context, actor authz.Context, input ProfileUpdateInput) (*AccountDetail, error) {
	var detail *AccountDetail
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		principal, err := tx.Principals().GetByID(ctx, actor.PrincipalID)
		if err != nil {
			return err
		}
		if input.FirstName != nil {
			principal.FirstName = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			principal.LastName = strings.TrimSpace(*input.LastName)
		}
		if input.Phone != nil {
			principal.Phone = strings.TrimSpace(*input.Phone)
		}
		if err := tx.Principals().Update(ctx, principal); err != nil {
			return err
		}

		switch principal.Role {
		case domain.RoleCitizen:
			profile, err := tx.CitizenProfiles().GetByPrincipal(ctx, principal.ID)
			if err != nil {
				return err
			}
			if input.Address != nil {
				profile.Address = *input.Address
			}
			if input.BillingAddress != nil {
				profile.BillingAddress = *input.BillingAddress
			}
			if err := tx.CitizenProfiles().Update(ctx, profile); err != nil {
				return err
			}
		case domain.RoleBusiness:
			profile, err := tx.BusinessProfiles().GetByPrincipal(ctx, principal.ID)
			if err != nil {
				return err
			}
			if input.BusinessName != nil {
				profile.BusinessName = *input.BusinessName
			}
			if input.BusinessType != nil {
				profile.BusinessType = *input.BusinessType
			}
			if input.BusinessAddress != nil {
				profile.BusinessAddress = *input.BusinessAddress
			}
			if input.BillingAddress != nil {
				profile.BillingAddress = *input.BillingAddress
			}
			if input.Website != nil {
				profile.Website = *input.Website
			}
			if err := tx.BusinessProfiles().Update(ctx, profile); err != nil {
				return err
			}
		case domain.RoleGovernment:
			// department and position changes are administrative, not
			// self-service
		}

		detail, err = s.detailTx(ctx, tx, principal)
		return err
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return detail, nil
}

// requireManage loads the target and applies the approve-class management
// rule. Missing targets surface as NOT_FOUND before authorization so the
// caller cannot probe for hidden account ids: for accounts the actor could
// never manage the answer is FORBIDDEN either way.
func (s *AccountService) requireManage(ctx context.Context, actor authz.Context, id, action string) error {
	principal, err := s.store.Principals().GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("account")
		}
		return apperrors.MapError(err)
	}
	if !authz.CanManageAccounts(actor, principal.TownID, principal.Role, authz.FlagApproveUsers) {
		s.metrics.RecordAuthzDenial(action)
		return apperrors.NewForbidden("not allowed to manage this account")
	}
	return nil
}

func (s *AccountService) detail(ctx context.Context, principal *domain.Principal) (*AccountDetail, error) {
	return s.detailTx(ctx, s.store, principal)
}

func (s *AccountService) detailTx(ctx context.Context, store repository.Store, principal *domain.Principal) (*AccountDetail, error) {
	detail := &AccountDetail{Principal: principal}
	var err error
	switch principal.Role {
	case domain.RoleCitizen:
		detail.Citizen, err = store.CitizenProfiles().GetByPrincipal(ctx, principal.ID)
	case domain.RoleBusiness:
		detail.Business, err = store.BusinessProfiles().GetByPrincipal(ctx, principal.ID)
	case domain.RoleGovernment:
		detail.Official, err = store.Officials().GetByPrincipal(ctx, principal.ID)
	}
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("profile")
		}
		return nil, apperrors.MapError(err)
	}
	return detail, nil
}

func (s *AccountService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

func nonGovernmentRoles(requested []domain.Role) []domain.Role {
	if len(requested) == 0 {
		return []domain.Role{domain.RoleCitizen, domain.RoleBusiness}
	}
	filtered := make([]domain.Role, 0, len(requested))
	for _, role := range requested {
		if role != domain.RoleGovernment {
			filtered = append(filtered, role)
		}
	}
	if len(filtered) == 0 {
		return []domain.Role{domain.RoleCitizen, domain.RoleBusiness}
	}
	return filtered
}
