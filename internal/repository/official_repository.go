package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
)

// OfficialRepository persists government-official role-profiles and their
// permission flags.
type OfficialRepository interface {
	Create(ctx context.Context, o *domain.GovernmentOfficial) error
	GetByID(ctx context.Context, id string) (*domain.GovernmentOfficial, error)
	GetByPrincipal(ctx context.Context, principalID string) (*domain.GovernmentOfficial, error)
	List(ctx context.Context, limit, offset int) ([]domain.GovernmentOfficial, error)
	UpdateFlags(ctx context.Context, id string, canView, canApprove bool) error
}

type officialRepository struct {
	db Querier
}

// NewOfficialRepository returns a Postgres-backed implementation.
func NewOfficialRepository(db Querier) OfficialRepository {
	return &officialRepository{db: db}
}

const officialColumns = `id, principal_id, employee_id, department, position, office_address,
	can_view_users, can_approve_users, created_at, updated_at`

func (r *officialRepository) Create(ctx context.Context, o *domain.GovernmentOfficial) error {
	const query = `
        INSERT INTO government_officials (principal_id, employee_id, department, position,
            office_address, can_view_users, can_approve_users)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		o.PrincipalID,
		o.EmployeeID,
		o.Department,
		o.Position,
		o.OfficeAddress,
		o.CanViewUsers,
		o.CanApproveUsers,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *officialRepository) GetByID(ctx context.Context, id string) (*domain.GovernmentOfficial, error) {
	query := `SELECT ` + officialColumns + ` FROM government_officials WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *officialRepository) GetByPrincipal(ctx context.Context, principalID string) (*domain.GovernmentOfficial, error) {
	query := `SELECT ` + officialColumns + ` FROM government_officials WHERE principal_id=$1`
	return r.fetchSingle(ctx, query, principalID)
}

func (r *officialRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.GovernmentOfficial, error) {
	var o domain.GovernmentOfficial
	if err := scanOfficial(r.db.QueryRow(ctx, query, arg), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *officialRepository) List(ctx context.Context, limit, offset int) ([]domain.GovernmentOfficial, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + officialColumns + ` FROM government_officials ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.GovernmentOfficial
	for rows.Next() {
		var o domain.GovernmentOfficial
		if err := scanOfficial(rows, &o); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (r *officialRepository) UpdateFlags(ctx context.Context, id string, canView, canApprove bool) error {
	const query = `
        UPDATE government_officials SET can_view_users=$1, can_approve_users=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.db.Exec(ctx, query, canView, canApprove, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanOfficial(row pgx.Row, o *domain.GovernmentOfficial) error {
	return row.Scan(
		&o.ID,
		&o.PrincipalID,
		&o.EmployeeID,
		&o.Department,
		&o.Position,
		&o.OfficeAddress,
		&o.CanViewUsers,
		&o.CanApproveUsers,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}
