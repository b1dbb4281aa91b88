package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
)

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	TownID   *string
	OwnerID  *string
	Statuses []domain.ComplaintStatus
	Limit    int
	Offset   int
}

type ComplaintRepository interface {
	Create(ctx context.Context, c *domain.Complaint) error
	Update(ctx context.Context, c *domain.Complaint) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)

	AddComment(ctx context.Context, cm *domain.ComplaintComment) error
	ListComments(ctx context.Context, complaintID string) ([]domain.ComplaintComment, error)

	AddAttachment(ctx context.Context, a *domain.ComplaintAttachment) error
	ListAttachments(ctx context.Context, complaintID string) ([]domain.ComplaintAttachment, error)
	GetAttachment(ctx context.Context, id string) (*domain.ComplaintAttachment, error)
}

type complaintRepository struct {
	db Querier
}

func NewComplaintRepository(db Querier) ComplaintRepository {
	return &complaintRepository{db: db}
}

const complaintColumns = `id, owner_id, town_id, title, description, category, location,
	priority, status, assigned_to, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (owner_id, town_id, title, description, category, location, priority, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		c.OwnerID,
		c.TownID,
		c.Title,
		c.Description,
		c.Category,
		c.Location,
		c.Priority,
		c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, c *domain.Complaint) error {
	const query = `
        UPDATE complaints
        SET title=$1, description=$2, category=$3, location=$4, priority=$5,
            status=$6, assigned_to=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.db.Exec(ctx, query,
		c.Title, c.Description, c.Category, c.Location, c.Priority, c.Status, c.AssignedTo, c.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM complaints WHERE id=$1`

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`

	var c domain.Complaint
	if err := scanComplaint(r.db.QueryRow(ctx, query, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := `SELECT ` + complaintColumns + ` FROM complaints`
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
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			args = append(args, s)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
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

	var result []domain.Complaint
	for rows.Next() {
		var c domain.Complaint
		if err := scanComplaint(rows, &c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *complaintRepository) AddComment(ctx context.Context, cm *domain.ComplaintComment) error {
	const query = `
        INSERT INTO complaint_comments (complaint_id, official_id, body, notify)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`

	return r.db.QueryRow(ctx, query,
		cm.ComplaintID, cm.OfficialID, cm.Body, cm.Notify,
	).Scan(&cm.ID, &cm.CreatedAt)
}

func (r *complaintRepository) ListComments(ctx context.Context, complaintID string) ([]domain.ComplaintComment, error) {
	const query = `
        SELECT id, complaint_id, official_id, body, notify, created_at
        FROM complaint_comments
        WHERE complaint_id=$1
        ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ComplaintComment
	for rows.Next() {
		var cm domain.ComplaintComment
		if err := rows.Scan(&cm.ID, &cm.ComplaintID, &cm.OfficialID,
			&cm.Body, &cm.Notify, &cm.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, cm)
	}
	return result, rows.Err()
}

func (r *complaintRepository) AddAttachment(ctx context.Context, a *domain.ComplaintAttachment) error {
	const query = `
        INSERT INTO complaint_attachments (complaint_id, storage_key, file_name, content_type, size_bytes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, uploaded_at`

	return r.db.QueryRow(ctx, query,
		a.ComplaintID, a.StorageKey, a.FileName, a.ContentType, a.SizeBytes,
	).Scan(&a.ID, &a.UploadedAt)
}

func (r *complaintRepository) ListAttachments(ctx context.Context, complaintID string) ([]domain.ComplaintAttachment, error) {
	const query = `
        SELECT id, complaint_id, storage_key, file_name, content_type, size_bytes, uploaded_at
        FROM complaint_attachments
        WHERE complaint_id=$1
        ORDER BY uploaded_at ASC`

	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ComplaintAttachment
	for rows.Next() {
		var a domain.ComplaintAttachment
		if err := scanAttachment(rows, &a); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *complaintRepository) GetAttachment(ctx context.Context, id string) (*domain.ComplaintAttachment, error) {
	const query = `
        SELECT id, complaint_id, storage_key, file_name, content_type, size_bytes, uploaded_at
        FROM complaint_attachments WHERE id=$1`

	var a domain.ComplaintAttachment
	if err := scanAttachment(r.db.QueryRow(ctx, query, id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanComplaint(row pgx.Row, c *domain.Complaint) error {
	return row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.TownID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.Location,
		&c.Priority,
		&c.Status,
		&c.AssignedTo,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func scanAttachment(row pgx.Row, a *domain.ComplaintAttachment) error {
	return row.Scan(
		&a.ID,
		&a.ComplaintID,
		&a.StorageKey,
		&a.FileName,
		&a.ContentType,
		&a.SizeBytes,
		&a.UploadedAt,
	)
}
