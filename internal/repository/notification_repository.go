package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByPrincipal(ctx context.Context, principalID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, principalID string) error
	MarkAllRead(ctx context.Context, principalID string) error
}

type notificationRepository struct {
	db Querier
}

func NewNotificationRepository(db Querier) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (principal_id, kind, title, message, resource_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`

	return r.db.QueryRow(ctx, query,
		n.PrincipalID, n.Kind, n.Title, n.Message, n.ResourceID,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepository) ListByPrincipal(ctx context.Context, principalID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	query := `
        SELECT id, principal_id, kind, title, message, resource_id, is_read, created_at
        FROM notifications
        WHERE principal_id=$1`
	if unreadOnly {
		query += ` AND is_read=FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, query, principalID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.PrincipalID, &n.Kind, &n.Title,
			&n.Message, &n.ResourceID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, principalID string) error {
	const query = `UPDATE notifications SET is_read=TRUE WHERE id=$1 AND principal_id=$2`

	cmd, err := r.db.Exec(ctx, query, id, principalID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, principalID string) error {
	const query = `UPDATE notifications SET is_read=TRUE WHERE principal_id=$1 AND is_read=FALSE`

	_, err := r.db.Exec(ctx, query, principalID)
	return err
}
