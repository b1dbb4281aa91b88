package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
)

// TownChangeFilter narrows request listings. InvolvedTownID matches requests
// where the town is either the origin or the destination.
type TownChangeFilter struct {
	PrincipalID    *string
	InvolvedTownID *string
	Status         *domain.TownChangeStatus
	Limit          int
	Offset         int
}

// TownChangeRepository persists relocation requests. The three transition
// methods are conditional updates: they report false when the request was
// not in the expected state, which is how concurrent approvers lose.
type TownChangeRepository interface {
	Create(ctx context.Context, req *domain.TownChangeRequest) error
	GetByID(ctx context.Context, id string) (*domain.TownChangeRequest, error)
	List(ctx context.Context, filter TownChangeFilter) ([]domain.TownChangeRequest, error)
	HasActiveForPrincipal(ctx context.Context, principalID string) (bool, error)
	ApproveByCurrent(ctx context.Context, id, approverID string) (bool, error)
	Complete(ctx context.Context, id, approverID string) (bool, error)
	Reject(ctx context.Context, id, reason string, from domain.TownChangeStatus) (bool, error)
}

type townChangeRepository struct {
	db Querier
}

// NewTownChangeRepository returns a Postgres-backed implementation.
func NewTownChangeRepository(db Querier) TownChangeRepository {
	return &townChangeRepository{db: db}
}

const townChangeColumns = `id, principal_id, current_town_id, requested_town_id, billing_address,
	status, rejection_reason, approved_by_current, approved_by_new, requested_at, completed_at`

func (r *townChangeRepository) Create(ctx context.Context, req *domain.TownChangeRequest) error {
	const query = `
        INSERT INTO town_change_requests (principal_id, current_town_id, requested_town_id,
            billing_address, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, requested_at`

	return r.db.QueryRow(ctx, query,
		req.PrincipalID,
		req.CurrentTownID,
		req.RequestedTownID,
		req.BillingAddress,
		req.Status,
	).Scan(&req.ID, &req.RequestedAt)
}

func (r *townChangeRepository) GetByID(ctx context.Context, id string) (*domain.TownChangeRequest, error) {
	query := `SELECT ` + townChangeColumns + ` FROM town_change_requests WHERE id=$1`

	var req domain.TownChangeRequest
	if err := scanTownChange(r.db.QueryRow(ctx, query, id), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *townChangeRepository) List(ctx context.Context, filter TownChangeFilter) ([]domain.TownChangeRequest, error) {
	base := `SELECT ` + townChangeColumns + ` FROM town_change_requests`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.PrincipalID != nil {
		args = append(args, *filter.PrincipalID)
		clauses = append(clauses, fmt.Sprintf("principal_id=$%d", len(args)))
	}
	if filter.InvolvedTownID != nil {
		args = append(args, *filter.InvolvedTownID)
		clauses = append(clauses, fmt.Sprintf("(current_town_id=$%d OR requested_town_id=$%d)", len(args), len(args)))
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

	query := fmt.Sprintf(`%s WHERE %s ORDER BY requested_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TownChangeRequest
	for rows.Next() {
		var req domain.TownChangeRequest
		if err := scanTownChange(rows, &req); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

func (r *townChangeRepository) HasActiveForPrincipal(ctx context.Context, principalID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM town_change_requests
            WHERE principal_id=$1 AND status IN ($2,$3)
        )`

	var exists bool
	err := r.db.QueryRow(ctx, query, principalID,
		domain.TownChangeStatusPending, domain.TownChangeStatusApprovedCurrent).Scan(&exists)
	return exists, err
}

func (r *townChangeRepository) ApproveByCurrent(ctx context.Context, id, approverID string) (bool, error) {
	const query = `
        UPDATE town_change_requests
        SET status=$1, approved_by_current=$2
        WHERE id=$3 AND status=$4`

	cmd, err := r.db.Exec(ctx, query,
		domain.TownChangeStatusApprovedCurrent, approverID, id, domain.TownChangeStatusPending)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *townChangeRepository) Complete(ctx context.Context, id, approverID string) (bool, error) {
	const query = `
        UPDATE town_change_requests
        SET status=$1, approved_by_new=$2, completed_at=NOW()
        WHERE id=$3 AND status=$4`

	cmd, err := r.db.Exec(ctx, query,
		domain.TownChangeStatusCompleted, approverID, id, domain.TownChangeStatusApprovedCurrent)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// Reject guards on the phase the caller decided against: if the request
// advanced concurrently, the decision now belongs to the other town and the
// update matches nothing.
func (r *townChangeRepository) Reject(ctx context.Context, id, reason string, from domain.TownChangeStatus) (bool, error) {
	const query = `
        UPDATE town_change_requests
        SET status=$1, rejection_reason=$2
        WHERE id=$3 AND status=$4`

	cmd, err := r.db.Exec(ctx, query, domain.TownChangeStatusRejected, reason, id, from)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func scanTownChange(row pgx.Row, req *domain.TownChangeRequest) error {
	return row.Scan(
		&req.ID,
		&req.PrincipalID,
		&req.CurrentTownID,
		&req.RequestedTownID,
		&req.BillingAddress,
		&req.Status,
		&req.RejectionReason,
		&req.ApprovedByCurrent,
		&req.ApprovedByNew,
		&req.RequestedAt,
		&req.CompletedAt,
	)
}
