package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/authz"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/repository"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

// OfficialService manages the permission flags on government officials.
// Granting and revoking flags is a superuser operation; officials cannot
// escalate each other.
type OfficialService struct {
	store repository.Store
}

func NewOfficialService(store repository.Store) *OfficialService {
	return &OfficialService{store: store}
}

// List returns official records, superuser only.
func (s *OfficialService) List(ctx context.Context, actor authz.Context, limit, offset int) ([]domain.GovernmentOfficial, error) {
	if !actor.IsSuperuser {
		return nil, apperrors.NewForbidden("superuser required")
	}
	officials, err := s.store.Officials().List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return officials, nil
}

// SetFlags grants or revokes the view/approve permissions of an official.
func (s *OfficialService) SetFlags(ctx context.Context, actor authz.Context, officialID string, canView, canApprove bool) (*domain.GovernmentOfficial, error) {
	if !actor.IsSuperuser {
		return nil, apperrors.NewForbidden("superuser required")
	}

	if err := s.store.Officials().UpdateFlags(ctx, officialID, canView, canApprove); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("official")
		}
		return nil, apperrors.MapError(err)
	}

	official, err := s.store.Officials().GetByID(ctx, officialID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return official, nil
}
