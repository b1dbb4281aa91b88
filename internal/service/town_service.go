package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/authz"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/repository"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

// TownInput carries town creation and update fields.
type TownInput struct {
	Name               string
	State              string
	IsActive           bool
	EmergencyPolice    string
	EmergencyFire      string
	EmergencyMedical   string
	EmergencyNonUrgent string
	EmergencyDispatch  string
}

// TownService manages the town registry. Reads are public so registration
// forms can list towns before authentication; writes are superuser only.
type TownService struct {
	store repository.Store
}

func NewTownService(store repository.Store) *TownService {
	return &TownService{store: store}
}

// List returns towns. activeOnly hides towns closed to registration.
func (s *TownService) List(ctx context.Context, activeOnly bool) ([]domain.Town, error) {
	towns, err := s.store.Towns().List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return towns, nil
}

// Get returns one town with its emergency contact sheet.
func (s *TownService) Get(ctx context.Context, id string) (*domain.Town, error) {
	town, err := s.store.Towns().GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("town")
		}
		return nil, apperrors.MapError(err)
	}
	return town, nil
}

// Create registers a new town.
func (s *TownService) Create(ctx context.Context, actor authz.Context, input TownInput) (*domain.Town, error) {
	if !actor.IsSuperuser {
		return nil, apperrors.NewForbidden("superuser required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("town name is required", nil)
	}

	town := &domain.Town{
		Name:               name,
		State:              strings.TrimSpace(input.State),
		IsActive:           input.IsActive,
		EmergencyPolice:    input.EmergencyPolice,
		EmergencyFire:      input.EmergencyFire,
		EmergencyMedical:   input.EmergencyMedical,
		EmergencyNonUrgent: input.EmergencyNonUrgent,
		EmergencyDispatch:  input.EmergencyDispatch,
	}
	if err := s.store.Towns().Create(ctx, town); err != nil {
		return nil, apperrors.MapError(err)
	}
	return town, nil
}

// Update replaces a town's mutable fields. Deactivating a town stops new
// registrations; existing members keep their tenancy.
func (s *TownService) Update(ctx context.Context, actor authz.Context, id string, input TownInput) (*domain.Town, error) {
	if !actor.IsSuperuser {
		return nil, apperrors.NewForbidden("superuser required")
	}

	town, err := s.store.Towns().GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("town")
		}
		return nil, apperrors.MapError(err)
	}

	town.Name = strings.TrimSpace(input.Name)
	town.State = strings.TrimSpace(input.State)
	town.IsActive = input.IsActive
	town.EmergencyPolice = input.EmergencyPolice
	town.EmergencyFire = input.EmergencyFire
	town.EmergencyMedical = input.EmergencyMedical
	town.EmergencyNonUrgent = input.EmergencyNonUrgent
	town.EmergencyDispatch = input.EmergencyDispatch

	if err := s.store.Towns().Update(ctx, town); err != nil {
		return nil, apperrors.MapError(err)
	}
	return town, nil
}
