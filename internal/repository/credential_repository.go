package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
)

// CredentialRepository stores the opaque API keys issued on account approval.
type CredentialRepository interface {
	// GetOrCreate returns the principal's existing credential, or inserts one
	// with the supplied key. Safe under concurrent approvals: exactly one key
	// ever exists per principal.
	GetOrCreate(ctx context.Context, principalID, key string) (*domain.APICredential, error)
	GetByKey(ctx context.Context, key string) (*domain.APICredential, error)
	DeleteByPrincipal(ctx context.Context, principalID string) error
}

type credentialRepository struct {
	db Querier
}

func NewCredentialRepository(db Querier) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetOrCreate(ctx context.Context, principalID, key string) (*domain.APICredential, error) {
	const insert = `
        INSERT INTO api_credentials (principal_id, key)
        VALUES ($1,$2)
        ON CONFLICT (principal_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, insert, principalID, key); err != nil {
		return nil, err
	}

	const query = `
        SELECT id, principal_id, key, created_at
        FROM api_credentials WHERE principal_id=$1`

	var cred domain.APICredential
	if err := scanCredential(r.db.QueryRow(ctx, query, principalID), &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) GetByKey(ctx context.Context, key string) (*domain.APICredential, error) {
	const query = `
        SELECT id, principal_id, key, created_at
        FROM api_credentials WHERE key=$1`

	var cred domain.APICredential
	if err := scanCredential(r.db.QueryRow(ctx, query, key), &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) DeleteByPrincipal(ctx context.Context, principalID string) error {
	const query = `DELETE FROM api_credentials WHERE principal_id=$1`

	_, err := r.db.Exec(ctx, query, principalID)
	return err
}

func scanCredential(row pgx.Row, cred *domain.APICredential) error {
	return row.Scan(&cred.ID, &cred.PrincipalID, &cred.Key, &cred.CreatedAt)
}
