package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so the same repository code runs inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store aggregates all repositories. ExecTx runs fn against a tx-scoped
// Store; multi-step mutations (registration, approval, town-change
// completion) must go through it so partial application is never observable.
type Store interface {
	Principals() PrincipalRepository
	CitizenProfiles() CitizenProfileRepository
	BusinessProfiles() BusinessProfileRepository
	Officials() OfficialRepository
	Towns() TownRepository
	TownChanges() TownChangeRepository
	Credentials() CredentialRepository
	Complaints() ComplaintRepository
	Licenses() LicenseRepository
	Announcements() AnnouncementRepository
	Bills() BillRepository
	Events() EventRepository
	Notifications() NotificationRepository

	ExecTx(ctx context.Context, fn func(Store) error) error
}

type sqlStore struct {
	db   Querier
	pool *pgxpool.Pool
}

// NewStore returns a Postgres-backed Store.
func NewStore(pool *pgxpool.Pool) Store {
	return &sqlStore{db: pool, pool: pool}
}

func (s *sqlStore) Principals() PrincipalRepository          { return &principalRepository{db: s.db} }
func (s *sqlStore) CitizenProfiles() CitizenProfileRepository {
	return &citizenProfileRepository{db: s.db}
}
func (s *sqlStore) BusinessProfiles() BusinessProfileRepository {
	return &businessProfileRepository{db: s.db}
}
func (s *sqlStore) Officials() OfficialRepository       { return &officialRepository{db: s.db} }
func (s *sqlStore) Towns() TownRepository               { return &townRepository{db: s.db} }
func (s *sqlStore) TownChanges() TownChangeRepository   { return &townChangeRepository{db: s.db} }
func (s *sqlStore) Credentials() CredentialRepository   { return &credentialRepository{db: s.db} }
func (s *sqlStore) Complaints() ComplaintRepository     { return &complaintRepository{db: s.db} }
func (s *sqlStore) Licenses() LicenseRepository         { return &licenseRepository{db: s.db} }
func (s *sqlStore) Announcements() AnnouncementRepository {
	return &announcementRepository{db: s.db}
}
func (s *sqlStore) Bills() BillRepository                 { return &billRepository{db: s.db} }
func (s *sqlStore) Events() EventRepository               { return &eventRepository{db: s.db} }
func (s *sqlStore) Notifications() NotificationRepository { return &notificationRepository{db: s.db} }

func (s *sqlStore) ExecTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		// already transactional; nested calls join the outer tx
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&sqlStore{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
