package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTranslatePgError(t *testing.T) {
	require.NoError(t, translatePgError(nil))
	require.ErrorIs(t, translatePgError(pgx.ErrNoRows), ErrNotFound)
	require.ErrorIs(t, translatePgError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)
	require.ErrorIs(t, translatePgError(&pgconn.PgError{Code: "23505"}), ErrDuplicate)

	other := &pgconn.PgError{Code: "23503"}
	require.Equal(t, error(other), translatePgError(other))
}

func TestTranslateMongoError(t *testing.T) {
	require.NoError(t, translateMongoError(nil))
	require.ErrorIs(t, translateMongoError(mongo.ErrNoDocuments), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	require.ErrorIs(t, translateMongoError(dup), ErrDuplicate)

	boom := errors.New("boom")
	require.Equal(t, boom, translateMongoError(boom))
}
