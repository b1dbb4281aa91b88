package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
)

// AnnouncementFilter narrows announcement listings. PublishedOnly hides
// drafts from non-officials.
type AnnouncementFilter struct {
	TownID        *string
	PublishedOnly bool
	Limit         int
	Offset        int
}

type AnnouncementRepository interface {
	Create(ctx context.Context, a *domain.Announcement) error
	Update(ctx context.Context, a *domain.Announcement) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Announcement, error)
	List(ctx context.Context, filter AnnouncementFilter) ([]domain.Announcement, error)
}

type announcementRepository struct {
	db Querier
}

func NewAnnouncementRepository(db Querier) AnnouncementRepository {
	return &announcementRepository{db: db}
}

const announcementColumns = `id, town_id, created_by, title, content, priority,
	is_published, published_at, created_at, updated_at`

func (r *announcementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	const query = `
        INSERT INTO announcements (town_id, created_by, title, content, priority, is_published, published_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		a.TownID,
		a.CreatedBy,
		a.Title,
		a.Content,
		a.Priority,
		a.IsPublished,
		a.PublishedAt,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *announcementRepository) Update(ctx context.Context, a *domain.Announcement) error {
	const query = `
        UPDATE announcements
        SET title=$1, content=$2, priority=$3, is_published=$4, published_at=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.db.Exec(ctx, query,
		a.Title, a.Content, a.Priority, a.IsPublished, a.PublishedAt, a.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *announcementRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM announcements WHERE id=$1`

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *announcementRepository) GetByID(ctx context.Context, id string) (*domain.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id=$1`

	var a domain.Announcement
	if err := scanAnnouncement(r.db.QueryRow(ctx, query, id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepository) List(ctx context.Context, filter AnnouncementFilter) ([]domain.Announcement, error) {
	base := `SELECT ` + announcementColumns + ` FROM announcements`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TownID != nil {
		args = append(args, *filter.TownID)
		clauses = append(clauses, fmt.Sprintf("town_id=$%d", len(args)))
	}
	if filter.PublishedOnly {
		clauses = append(clauses, "is_published=TRUE")
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

	var result []domain.Announcement
	for rows.Next() {
		var a domain.Announcement
		if err := scanAnnouncement(rows, &a); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func scanAnnouncement(row pgx.Row, a *domain.Announcement) error {
	return row.Scan(
		&a.ID,
		&a.TownID,
		&a.CreatedBy,
		&a.Title,
		&a.Content,
		&a.Priority,
		&a.IsPublished,
		&a.PublishedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}
