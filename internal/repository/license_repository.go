package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
)

// LicenseFilter narrows license listings.
type LicenseFilter struct {
	TownID  *string
	OwnerID *string
	Status  *domain.LicenseStatus
	Limit   int
	Offset  int
}

type LicenseRepository interface {
	Create(ctx context.Context, l *domain.License) error
	Update(ctx context.Context, l *domain.License) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.License, error)
	List(ctx context.Context, filter LicenseFilter) ([]domain.License, error)
}

type licenseRepository struct {
	db Querier
}

func NewLicenseRepository(db Querier) LicenseRepository {
	return &licenseRepository{db: db}
}

const licenseColumns = `id, owner_id, town_id, license_type, license_number, status,
	description, issue_date, expiry_date, reviewed_by, review_note, created_at, updated_at`

func (r *licenseRepository) Create(ctx context.Context, l *domain.License) error {
	const query = `
        INSERT INTO licenses (owner_id, town_id, license_type, license_number, status, description)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		l.OwnerID,
		l.TownID,
		l.LicenseType,
		l.LicenseNumber,
		l.Status,
		l.Description,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *licenseRepository) Update(ctx context.Context, l *domain.License) error {
	const query = `
        UPDATE licenses
        SET license_type=$1, license_number=$2, status=$3, description=$4,
            issue_date=$5, expiry_date=$6, reviewed_by=$7, review_note=$8, updated_at=NOW()
        WHERE id=$9`

	cmd, err := r.db.Exec(ctx, query,
		l.LicenseType, l.LicenseNumber, l.Status, l.Description,
		l.IssueDate, l.ExpiryDate, l.ReviewedBy, l.ReviewNote, l.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *licenseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM licenses WHERE id=$1`

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *licenseRepository) GetByID(ctx context.Context, id string) (*domain.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE id=$1`

	var l domain.License
	if err := scanLicense(r.db.QueryRow(ctx, query, id), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *licenseRepository) List(ctx context.Context, filter LicenseFilter) ([]domain.License, error) {
	base := `SELECT ` + licenseColumns + ` FROM licenses`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TownID != nil {
		args = append(args, *filter.TownID)
		clauses = append(clauses, fmt.Sprintf("town_id=$%d", len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
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

	var result []domain.License
	for rows.Next() {
		var l domain.License
		if err := scanLicense(rows, &l); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func scanLicense(row pgx.Row, l *domain.License) error {
	return row.Scan(
		&l.ID,
		&l.OwnerID,
		&l.TownID,
		&l.LicenseType,
		&l.LicenseNumber,
		&l.Status,
		&l.Description,
		&l.IssueDate,
		&l.ExpiryDate,
		&l.ReviewedBy,
		&l.ReviewNote,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
}
