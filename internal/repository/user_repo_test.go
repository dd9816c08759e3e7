package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"devport-api/internal/domain"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

type fakePgDB struct {
	tag      pgconn.CommandTag
	execErr  error
	row      fakeRow
	lastSQL  string
	lastArgs []any
}

func (f *fakePgDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL = sql
	f.lastArgs = args
	return f.tag, f.execErr
}

func (f *fakePgDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	f.lastArgs = args
	return f.row
}

func errRow(err error) fakeRow {
	return fakeRow{scan: func(...any) error { return err }}
}

func TestPgUserRepository_CreateDuplicate(t *testing.T) {
	db := &fakePgDB{execErr: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}}
	repo := &PgUserRepository{pool: db}

	err := repo.Create(context.Background(), domain.User{ID: "u1", Email: "ana@example.com", Username: "ana"})
	require.ErrorIs(t, err, ErrDuplicate)
	require.Equal(t, "ana", db.lastArgs[1])
}

func TestPgUserRepository_GetNotFound(t *testing.T) {
	repo := &PgUserRepository{pool: &fakePgDB{row: errRow(pgx.ErrNoRows)}}

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPgUserRepository_GetByResetCode(t *testing.T) {
	expires := time.Date(2026, 3, 1, 10, 10, 0, 0, time.UTC)
	db := &fakePgDB{row: fakeRow{scan: func(dest ...any) error {
		require.Len(t, dest, 9)
		*dest[0].(*string) = "u1"
		*dest[2].(*string) = "ana@example.com"
		*dest[5].(*string) = "digest"
		*dest[6].(**time.Time) = &expires
		return nil
	}}}
	repo := &PgUserRepository{pool: db}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	user, err := repo.GetByResetCode(context.Background(), "ana@example.com", "digest", now)
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.True(t, user.HasPendingReset(now))
	require.Equal(t, []any{"ana@example.com", "digest", now}, db.lastArgs)
	require.Contains(t, db.lastSQL, "reset_code_expires_at > $3")
}

func TestPgUserRepository_ExecNoRowsIsNotFound(t *testing.T) {
	db := &fakePgDB{tag: pgconn.NewCommandTag("UPDATE 0")}
	repo := &PgUserRepository{pool: db}
	ctx := context.Background()

	require.ErrorIs(t, repo.UpdatePassword(ctx, "missing", "hash"), ErrNotFound)
	require.ErrorIs(t, repo.ResetPassword(ctx, "missing", "hash"), ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)

	db.tag = pgconn.NewCommandTag("UPDATE 1")
	require.NoError(t, repo.ClearResetCode(ctx, "u1"))
	require.Contains(t, db.lastSQL, "reset_code_hash = NULL")
}

func TestPgPendingVerificationRepository(t *testing.T) {
	db := &fakePgDB{tag: pgconn.NewCommandTag("DELETE 3")}
	repo := &PgPendingVerificationRepository{pool: db}
	ctx := context.Background()

	expires := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, domain.PendingVerification{Email: "ana@example.com", Code: "123456", ExpiresAt: expires}))
	require.Contains(t, db.lastSQL, "ON CONFLICT (email) DO UPDATE")

	n, err := repo.PurgeExpired(ctx, expires)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	db.row = errRow(pgx.ErrNoRows)
	_, err = repo.GetByEmail(ctx, "ana@example.com")
	require.ErrorIs(t, err, ErrNotFound)

	db.execErr = errors.New("conn closed")
	require.Error(t, repo.Delete(ctx, "ana@example.com"))
}
