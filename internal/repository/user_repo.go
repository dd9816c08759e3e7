package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"devport-api/internal/domain"
)

// UserRepository define el contrato de persistencia para registros de identidad.
// Email y username se guardan normalizados en minusculas.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	// GetByLogin busca por email o por username.
	GetByLogin(ctx context.Context, identifier string) (domain.User, error)
	// ExistsByEmailOrUsername es un chequeo previo; la unicidad real la impone el store.
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetResetCode(ctx context.Context, id, codeHash string, expiresAt time.Time) error
	ClearResetCode(ctx context.Context, id string) error
	// GetByResetCode resuelve email, hash y vigencia en una sola consulta.
	GetByResetCode(ctx context.Context, email, codeHash string, now time.Time) (domain.User, error)
	// ResetPassword cambia el hash y limpia los campos de reset en una sola escritura.
	ResetPassword(ctx context.Context, id, passwordHash string) error
	// Delete elimina el usuario y sus documentos asociados.
	Delete(ctx context.Context, id string) error
}

type pgDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool pgDB
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, username, email, display_name, password_hash,
	COALESCE(reset_code_hash, ''), reset_code_expires_at, created_at, updated_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, username, email, display_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err := translatePgError(err); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
}

func (r *PgUserRepository) GetByLogin(ctx context.Context, identifier string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 OR username = $1 LIMIT 1`, identifier)
}

func (r *PgUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR lower(username) = lower($2))`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, email, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

func (r *PgUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *PgUserRepository) SetResetCode(ctx context.Context, id, codeHash string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET reset_code_hash = $2, reset_code_expires_at = $3, updated_at = now()
		WHERE id = $1
	`
	return r.execOne(ctx, "set reset code", query, id, codeHash, expiresAt)
}

func (r *PgUserRepository) ClearResetCode(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET reset_code_hash = NULL, reset_code_expires_at = NULL, updated_at = now()
		WHERE id = $1
	`
	return r.execOne(ctx, "clear reset code", query, id)
}

func (r *PgUserRepository) GetByResetCode(ctx context.Context, email, codeHash string, now time.Time) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE email = $1 AND reset_code_hash = $2 AND reset_code_expires_at > $3`
	return r.getOne(ctx, query, email, codeHash, now)
}

func (r *PgUserRepository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $2, reset_code_hash = NULL, reset_code_expires_at = NULL, updated_at = now()
		WHERE id = $1
	`
	return r.execOne(ctx, "reset password", query, id, passwordHash)
}

// Delete borra el usuario; portfolios se eliminan por ON DELETE CASCADE.
func (r *PgUserRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

func (r *PgUserRepository) getOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.DisplayName,
		&u.PasswordHash,
		&u.ResetCodeHash,
		&u.ResetCodeExpiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", translatePgError(err))
	}
	return u, nil
}

func (r *PgUserRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translatePgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
