package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"devport-api/internal/domain"
)

// PendingVerificationRepository guarda a lo sumo un OTP pendiente por email.
type PendingVerificationRepository interface {
	// Upsert crea o reemplaza el registro del email (last-writer-wins).
	Upsert(ctx context.Context, v domain.PendingVerification) error
	// GetByEmail puede devolver registros ya vencidos; el llamador decide.
	GetByEmail(ctx context.Context, email string) (domain.PendingVerification, error)
	Delete(ctx context.Context, email string) error
}

// PgPendingVerificationRepository implementa PendingVerificationRepository usando pgxpool.
type PgPendingVerificationRepository struct {
	pool pgDB
}

func NewPgPendingVerificationRepository(pool *pgxpool.Pool) *PgPendingVerificationRepository {
	return &PgPendingVerificationRepository{pool: pool}
}

func (r *PgPendingVerificationRepository) Upsert(ctx context.Context, v domain.PendingVerification) error {
	const query = `
		INSERT INTO pending_verifications (email, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at
	`
	if _, err := r.pool.Exec(ctx, query, v.Email, v.Code, v.ExpiresAt, v.CreatedAt); err != nil {
		return fmt.Errorf("upsert pending verification: %w", translatePgError(err))
	}
	return nil
}

func (r *PgPendingVerificationRepository) GetByEmail(ctx context.Context, email string) (domain.PendingVerification, error) {
	const query = `
		SELECT email, code, expires_at, created_at
		FROM pending_verifications
		WHERE email = $1
	`
	var v domain.PendingVerification
	err := r.pool.QueryRow(ctx, query, email).Scan(&v.Email, &v.Code, &v.ExpiresAt, &v.CreatedAt)
	if err != nil {
		return domain.PendingVerification{}, fmt.Errorf("get pending verification: %w", translatePgError(err))
	}
	return v, nil
}

func (r *PgPendingVerificationRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM pending_verifications WHERE email = $1`, email); err != nil {
		return fmt.Errorf("delete pending verification: %w", translatePgError(err))
	}
	return nil
}

// PurgeExpired elimina los registros vencidos antes de cutoff.
func (r *PgPendingVerificationRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pending_verifications WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge pending verifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
