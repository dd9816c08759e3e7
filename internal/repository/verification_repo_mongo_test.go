package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"devport-api/internal/domain"
)

func TestMongoPendingVerificationRepository_Upsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("replaces by email with upsert", func(mt *mtest.T) {
		repo := NewMongoPendingVerificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "a@x.com"}}}},
		))

		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		err := repo.Upsert(context.Background(), domain.PendingVerification{
			Email:     "a@x.com",
			Code:      "123456",
			ExpiresAt: now.Add(10 * time.Minute),
			CreatedAt: now,
		})
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.Equal(mt, "update", evt.CommandName)
		require.Equal(mt, pendingVerificationsCollection, evt.Command.Lookup("update").StringValue())

		update := evt.Command.Lookup("updates", "0").Document()
		require.Equal(mt, "a@x.com", update.Lookup("q", "_id").StringValue())
		require.True(mt, update.Lookup("upsert").Boolean())
		require.Equal(mt, "123456", update.Lookup("u", "code").StringValue())
		require.Equal(mt, "a@x.com", update.Lookup("u", "_id").StringValue())
	})
}

func TestMongoPendingVerificationRepository_GetByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewMongoPendingVerificationRepository(mt.DB)
		expires := time.Date(2026, 1, 2, 3, 14, 5, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.pending_verifications", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "a@x.com"},
			{Key: "code", Value: "123456"},
			{Key: "expires_at", Value: expires},
		}))

		v, err := repo.GetByEmail(context.Background(), "a@x.com")
		require.NoError(mt, err)
		require.Equal(mt, "a@x.com", v.Email)
		require.Equal(mt, "123456", v.Code)
		require.True(mt, v.ExpiresAt.Equal(expires))

		evt := mt.GetStartedEvent()
		require.Equal(mt, "a@x.com", evt.Command.Lookup("filter", "_id").StringValue())
	})

	mt.Run("missing maps to ErrNotFound", func(mt *mtest.T) {
		repo := NewMongoPendingVerificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.pending_verifications", mtest.FirstBatch))

		_, err := repo.GetByEmail(context.Background(), "a@x.com")
		require.True(mt, errors.Is(err, ErrNotFound), "got %v", err)
	})
}

func TestMongoPendingVerificationRepository_Delete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deletes by email", func(mt *mtest.T) {
		repo := NewMongoPendingVerificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		require.NoError(mt, repo.Delete(context.Background(), "a@x.com"))

		evt := mt.GetStartedEvent()
		require.Equal(mt, "delete", evt.CommandName)
		require.Equal(mt, "a@x.com", evt.Command.Lookup("deletes", "0", "q", "_id").StringValue())
	})
}
