package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
)

// PrincipalFilter captures account listing parameters. TownID narrows to a
// tenant; Roles and IsApproved narrow further.
type PrincipalFilter struct {
	TownID     *string
	IsApproved *bool
	Roles      []domain.Role
	Limit      int
	Offset     int
}

// PrincipalRepository defines persistence access for accounts.
type PrincipalRepository interface {
	Create(ctx context.Context, p *domain.Principal) error
	Update(ctx context.Context, p *domain.Principal) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Principal, error)
	GetByEmail(ctx context.Context, email string) (*domain.Principal, error)
	List(ctx context.Context, filter PrincipalFilter) ([]domain.Principal, error)
}

type principalRepository struct {
	db Querier
}

// NewPrincipalRepository returns a Postgres-backed implementation.
func NewPrincipalRepository(db Querier) PrincipalRepository {
	return &principalRepository{db: db}
}

const principalColumns = `id, email, password_hash, first_name, last_name, phone, role,
	is_superuser, is_approved, approved_by, approved_at, town_id, created_at, updated_at`

func (r *principalRepository) Create(ctx context.Context, p *domain.Principal) error {
	const query = `
        INSERT INTO principals (email, password_hash, first_name, last_name, phone, role,
            is_superuser, is_approved, approved_by, approved_at, town_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		p.Email,
		p.PasswordHash,
		p.FirstName,
		p.LastName,
		p.Phone,
		p.Role,
		p.IsSuperuser,
		p.IsApproved,
		p.ApprovedBy,
		p.ApprovedAt,
		p.TownID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *principalRepository) Update(ctx context.Context, p *domain.Principal) error {
	const query = `
        UPDATE principals SET email=$1, password_hash=$2, first_name=$3, last_name=$4,
            phone=$5, is_approved=$6, approved_by=$7, approved_at=$8, town_id=$9,
            updated_at=NOW()
        WHERE id=$10`

	cmd, err := r.db.Exec(ctx, query,
		p.Email,
		p.PasswordHash,
		p.FirstName,
		p.LastName,
		p.Phone,
		p.IsApproved,
		p.ApprovedBy,
		p.ApprovedAt,
		p.TownID,
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

func (r *principalRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM principals WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *principalRepository) GetByID(ctx context.Context, id string) (*domain.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *principalRepository) GetByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE LOWER(email)=LOWER($1)`
	return r.fetchSingle(ctx, query, email)
}

func (r *principalRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Principal, error) {
	var p domain.Principal
	if err := scanPrincipal(r.db.QueryRow(ctx, query, arg), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *principalRepository) List(ctx context.Context, filter PrincipalFilter) ([]domain.Principal, error) {
	base := `SELECT ` + principalColumns + ` FROM principals`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TownID != nil {
		args = append(args, *filter.TownID)
		clauses = append(clauses, fmt.Sprintf("town_id=$%d", len(args)))
	}
	if filter.IsApproved != nil {
		args = append(args, *filter.IsApproved)
		clauses = append(clauses, fmt.Sprintf("is_approved=$%d", len(args)))
	}
	if len(filter.Roles) > 0 {
		placeholders := make([]string, len(filter.Roles))
		for i, role := range filter.Roles {
			args = append(args, role)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("role IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Principal
	for rows.Next() {
		var p domain.Principal
		if err := scanPrincipal(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func scanPrincipal(row pgx.Row, p *domain.Principal) error {
	return row.Scan(
		&p.ID,
		&p.Email,
		&p.PasswordHash,
		&p.FirstName,
		&p.LastName,
		&p.Phone,
		&p.Role,
		&p.IsSuperuser,
		&p.IsApproved,
		&p.ApprovedBy,
		&p.ApprovedAt,
		&p.TownID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}
