package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
)

// CitizenProfileRepository persists citizen role-profiles.
type CitizenProfileRepository interface {
	Create(ctx context.Context, p *domain.CitizenProfile) error
	Update(ctx context.Context, p *domain.CitizenProfile) error
	GetByPrincipal(ctx context.Context, principalID string) (*domain.CitizenProfile, error)
}

// BusinessProfileRepository persists business-owner role-profiles.
type BusinessProfileRepository interface {
	Create(ctx context.Context, p *domain.BusinessOwnerProfile) error
	Update(ctx context.Context, p *domain.BusinessOwnerProfile) error
	GetByPrincipal(ctx context.Context, principalID string) (*domain.BusinessOwnerProfile, error)
}

type citizenProfileRepository struct {
	db Querier
}

// NewCitizenProfileRepository returns a Postgres-backed implementation.
func NewCitizenProfileRepository(db Querier) CitizenProfileRepository {
	return &citizenProfileRepository{db: db}
}

func (r *citizenProfileRepository) Create(ctx context.Context, p *domain.CitizenProfile) error {
	const query = `
        INSERT INTO citizen_profiles (principal_id, citizen_id, address, billing_address, date_of_birth)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		p.PrincipalID,
		p.CitizenID,
		p.Address,
		p.BillingAddress,
		p.DateOfBirth,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *citizenProfileRepository) Update(ctx context.Context, p *domain.CitizenProfile) error {
	const query = `
        UPDATE citizen_profiles SET address=$1, billing_address=$2, date_of_birth=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.db.Exec(ctx, query, p.Address, p.BillingAddress, p.DateOfBirth, p.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *citizenProfileRepository) GetByPrincipal(ctx context.Context, principalID string) (*domain.CitizenProfile, error) {
	const query = `
        SELECT id, principal_id, citizen_id, address, billing_address, date_of_birth, created_at, updated_at
        FROM citizen_profiles WHERE principal_id=$1`

	var p domain.CitizenProfile
	if err := r.db.QueryRow(ctx, query, principalID).Scan(
		&p.ID,
		&p.PrincipalID,
		&p.CitizenID,
		&p.Address,
		&p.BillingAddress,
		&p.DateOfBirth,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

type businessProfileRepository struct {
	db Querier
}

// NewBusinessProfileRepository returns a Postgres-backed implementation.
func NewBusinessProfileRepository(db Querier) BusinessProfileRepository {
	return &businessProfileRepository{db: db}
}

func (r *businessProfileRepository) Create(ctx context.Context, p *domain.BusinessOwnerProfile) error {
	const query = `
        INSERT INTO business_profiles (principal_id, business_name, registration_number,
            business_type, business_address, billing_address, website)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		p.PrincipalID,
		p.BusinessName,
		p.RegistrationNumber,
		p.BusinessType,
		p.BusinessAddress,
		p.BillingAddress,
		p.Website,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *businessProfileRepository) Update(ctx context.Context, p *domain.BusinessOwnerProfile) error {
	const query = `
        UPDATE business_profiles SET business_name=$1, business_type=$2, business_address=$3,
            billing_address=$4, website=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.db.Exec(ctx, query,
		p.BusinessName,
		p.BusinessType,
		p.BusinessAddress,
		p.BillingAddress,
		p.Website,
		p.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *businessProfileRepository) GetByPrincipal(ctx context.Context, principalID string) (*domain.BusinessOwnerProfile, error) {
	const query = `
        SELECT id, principal_id, business_name, registration_number, business_type,
               business_address, billing_address, website, created_at, updated_at
        FROM business_profiles WHERE principal_id=$1`

	var p domain.BusinessOwnerProfile
	if err := r.db.QueryRow(ctx, query, principalID).Scan(
		&p.ID,
		&p.PrincipalID,
		&p.BusinessName,
		&p.RegistrationNumber,
		&p.BusinessType,
		&p.BusinessAddress,
		&p.BillingAddress,
		&p.Website,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
