package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
)

// EventFilter narrows business-event listings.
type EventFilter struct {
	TownID  *string
	OwnerID *string
	Status  *domain.EventStatus
	Limit   int
	Offset  int
}

type EventRepository interface {
	Create(ctx context.Context, e *domain.BusinessEvent) error
	Update(ctx context.Context, e *domain.BusinessEvent) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.BusinessEvent, error)
	List(ctx context.Context, filter EventFilter) ([]domain.BusinessEvent, error)

	Register(ctx context.Context, reg *domain.EventRegistration) error
	Unregister(ctx context.Context, eventID, principalID string) error
	ListRegistrations(ctx context.Context, eventID string) ([]domain.EventRegistration, error)
}

type eventRepository struct {
	db Querier
}

func NewEventRepository(db Querier) EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, owner_id, town_id, title, description, venue, starts_at, ends_at,
	status, reviewed_by, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, e *domain.BusinessEvent) error {
	const query = `
        INSERT INTO business_events (owner_id, town_id, title, description, venue, starts_at, ends_at, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		e.OwnerID,
		e.TownID,
		e.Title,
		e.Description,
		e.Venue,
		e.StartsAt,
		e.EndsAt,
		e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *eventRepository) Update(ctx context.Context, e *domain.BusinessEvent) error {
	const query = `
        UPDATE business_events
        SET title=$1, description=$2, venue=$3, starts_at=$4, ends_at=$5,
            status=$6, reviewed_by=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.db.Exec(ctx, query,
		e.Title, e.Description, e.Venue, e.StartsAt, e.EndsAt, e.Status, e.ReviewedBy, e.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM business_events WHERE id=$1`

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.BusinessEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM business_events WHERE id=$1`

	var e domain.BusinessEvent
	if err := scanEvent(r.db.QueryRow(ctx, query, id), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]domain.BusinessEvent, error) {
	base := `SELECT ` + eventColumns + ` FROM business_events`
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

	query := fmt.Sprintf(`%s WHERE %s ORDER BY starts_at ASC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BusinessEvent
	for rows.Next() {
		var e domain.BusinessEvent
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *eventRepository) Register(ctx context.Context, reg *domain.EventRegistration) error {
	const query = `
        INSERT INTO event_registrations (event_id, principal_id)
        VALUES ($1,$2)
        RETURNING id, created_at`

	return r.db.QueryRow(ctx, query, reg.EventID, reg.PrincipalID).
		Scan(&reg.ID, &reg.CreatedAt)
}

func (r *eventRepository) Unregister(ctx context.Context, eventID, principalID string) error {
	const query = `DELETE FROM event_registrations WHERE event_id=$1 AND principal_id=$2`

	cmd, err := r.db.Exec(ctx, query, eventID, principalID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) ListRegistrations(ctx context.Context, eventID string) ([]domain.EventRegistration, error) {
	const query = `
        SELECT id, event_id, principal_id, created_at
        FROM event_registrations
        WHERE event_id=$1
        ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EventRegistration
	for rows.Next() {
		var reg domain.EventRegistration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.PrincipalID, &reg.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, reg)
	}
	return result, rows.Err()
}

func scanEvent(row pgx.Row, e *domain.BusinessEvent) error {
	return row.Scan(
		&e.ID,
		&e.OwnerID,
		&e.TownID,
		&e.Title,
		&e.Description,
		&e.Venue,
		&e.StartsAt,
		&e.EndsAt,
		&e.Status,
		&e.ReviewedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
}
