package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
)

// BillFilter narrows bill listings.
type BillFilter struct {
	TownID *string
	Status *domain.BillStatus
	Limit  int
	Offset int
}

type BillRepository interface {
	Create(ctx context.Context, b *domain.BillProposal) error
	Update(ctx context.Context, b *domain.BillProposal) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.BillProposal, error)
	List(ctx context.Context, filter BillFilter) ([]domain.BillProposal, error)

	// SetVote inserts or replaces the principal's vote on a bill.
	SetVote(ctx context.Context, v *domain.BillVote) error
	DeleteVote(ctx context.Context, billID, principalID string) error
	GetVote(ctx context.Context, billID, principalID string) (*domain.BillVote, error)
	CountVotes(ctx context.Context, billID string) (domain.BillVoteCount, error)

	AddComment(ctx context.Context, cm *domain.BillComment) error
	ListComments(ctx context.Context, billID string) ([]domain.BillComment, error)
}

type billRepository struct {
	db Querier
}

func NewBillRepository(db Querier) BillRepository {
	return &billRepository{db: db}
}

const billColumns = `id, town_id, created_by, title, summary, priority, status, created_at, updated_at`

func (r *billRepository) Create(ctx context.Context, b *domain.BillProposal) error {
	const query = `
        INSERT INTO bill_proposals (town_id, created_by, title, summary, priority, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		b.TownID,
		b.CreatedBy,
		b.Title,
		b.Summary,
		b.Priority,
		b.Status,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *billRepository) Update(ctx context.Context, b *domain.BillProposal) error {
	const query = `
        UPDATE bill_proposals
        SET title=$1, summary=$2, priority=$3, status=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.db.Exec(ctx, query, b.Title, b.Summary, b.Priority, b.Status, b.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *billRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM bill_proposals WHERE id=$1`

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *billRepository) GetByID(ctx context.Context, id string) (*domain.BillProposal, error) {
	query := `SELECT ` + billColumns + ` FROM bill_proposals WHERE id=$1`

	var b domain.BillProposal
	if err := scanBill(r.db.QueryRow(ctx, query, id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *billRepository) List(ctx context.Context, filter BillFilter) ([]domain.BillProposal, error) {
	base := `SELECT ` + billColumns + ` FROM bill_proposals`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TownID != nil {
		args = append(args, *filter.TownID)
		clauses = append(clauses, fmt.Sprintf("town_id=$%d", len(args)))
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

	var result []domain.BillProposal
	for rows.Next() {
		var b domain.BillProposal
		if err := scanBill(rows, &b); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *billRepository) SetVote(ctx context.Context, v *domain.BillVote) error {
	const query = `
        INSERT INTO bill_votes (bill_id, principal_id, support)
        VALUES ($1,$2,$3)
        ON CONFLICT (bill_id, principal_id) DO UPDATE SET support=EXCLUDED.support
        RETURNING id, created_at`

	return r.db.QueryRow(ctx, query, v.BillID, v.PrincipalID, v.Support).
		Scan(&v.ID, &v.CreatedAt)
}

func (r *billRepository) DeleteVote(ctx context.Context, billID, principalID string) error {
	const query = `DELETE FROM bill_votes WHERE bill_id=$1 AND principal_id=$2`

	cmd, err := r.db.Exec(ctx, query, billID, principalID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *billRepository) GetVote(ctx context.Context, billID, principalID string) (*domain.BillVote, error) {
	const query = `
        SELECT id, bill_id, principal_id, support, created_at
        FROM bill_votes WHERE bill_id=$1 AND principal_id=$2`

	var v domain.BillVote
	err := r.db.QueryRow(ctx, query, billID, principalID).
		Scan(&v.ID, &v.BillID, &v.PrincipalID, &v.Support, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *billRepository) CountVotes(ctx context.Context, billID string) (domain.BillVoteCount, error) {
	const query = `
        SELECT
            COUNT(*) FILTER (WHERE support),
            COUNT(*) FILTER (WHERE NOT support)
        FROM bill_votes WHERE bill_id=$1`

	var count domain.BillVoteCount
	err := r.db.QueryRow(ctx, query, billID).Scan(&count.Support, &count.Oppose)
	return count, err
}

func (r *billRepository) AddComment(ctx context.Context, cm *domain.BillComment) error {
	const query = `
        INSERT INTO bill_comments (bill_id, principal_id, body)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`

	return r.db.QueryRow(ctx, query, cm.BillID, cm.PrincipalID, cm.Body).
		Scan(&cm.ID, &cm.CreatedAt)
}

func (r *billRepository) ListComments(ctx context.Context, billID string) ([]domain.BillComment, error) {
	const query = `
        SELECT id, bill_id, principal_id, body, created_at
        FROM bill_comments
        WHERE bill_id=$1
        ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BillComment
	for rows.Next() {
		var cm domain.BillComment
		if err := rows.Scan(&cm.ID, &cm.BillID, &cm.PrincipalID, &cm.Body, &cm.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, cm)
	}
	return result, rows.Err()
}

func scanBill(row pgx.Row, b *domain.BillProposal) error {
	return row.Scan(
		&b.ID,
		&b.TownID,
		&b.CreatedBy,
		&b.Title,
		&b.Summary,
		&b.Priority,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}
