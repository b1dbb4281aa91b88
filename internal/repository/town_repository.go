package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
)

// TownRepository persists towns.
type TownRepository interface {
	Create(ctx context.Context, t *domain.Town) error
	Update(ctx context.Context, t *domain.Town) error
	GetByID(ctx context.Context, id string) (*domain.Town, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Town, error)
}

type townRepository struct {
	db Querier
}

// NewTownRepository returns a Postgres-backed implementation.
func NewTownRepository(db Querier) TownRepository {
	return &townRepository{db: db}
}

const townColumns = `id, name, state, is_active, emergency_police, emergency_fire,
	emergency_medical, emergency_non_urgent, emergency_dispatch, created_at, updated_at`

func (r *townRepository) Create(ctx context.Context, t *domain.Town) error {
	const query = `
        INSERT INTO towns (name, state, is_active, emergency_police, emergency_fire,
            emergency_medical, emergency_non_urgent, emergency_dispatch)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		t.Name,
		t.State,
		t.IsActive,
		t.EmergencyPolice,
		t.EmergencyFire,
		t.EmergencyMedical,
		t.EmergencyNonUrgent,
		t.EmergencyDispatch,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *townRepository) Update(ctx context.Context, t *domain.Town) error {
	const query = `
        UPDATE towns SET name=$1, state=$2, is_active=$3, emergency_police=$4,
            emergency_fire=$5, emergency_medical=$6, emergency_non_urgent=$7,
            emergency_dispatch=$8, updated_at=NOW()
        WHERE id=$9`

	cmd, err := r.db.Exec(ctx, query,
		t.Name,
		t.State,
		t.IsActive,
		t.EmergencyPolice,
		t.EmergencyFire,
		t.EmergencyMedical,
		t.EmergencyNonUrgent,
		t.EmergencyDispatch,
		t.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *townRepository) GetByID(ctx context.Context, id string) (*domain.Town, error) {
	query := `SELECT ` + townColumns + ` FROM towns WHERE id=$1`

	var t domain.Town
	if err := scanTown(r.db.QueryRow(ctx, query, id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *townRepository) List(ctx context.Context, activeOnly bool) ([]domain.Town, error) {
	query := `SELECT ` + townColumns + ` FROM towns`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Town
	for rows.Next() {
		var t domain.Town
		if err := scanTown(rows, &t); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func scanTown(row pgx.Row, t *domain.Town) error {
	return row.Scan(
		&t.ID,
		&t.Name,
		&t.State,
		&t.IsActive,
		&t.EmergencyPolice,
		&t.EmergencyFire,
		&t.EmergencyMedical,
		&t.EmergencyNonUrgent,
		&t.EmergencyDispatch,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}
