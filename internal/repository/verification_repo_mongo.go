package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devport-api/internal/domain"
)

const pendingVerificationsCollection = "pending_verifications"

// MongoPendingVerificationRepository usa el email como _id, asi el upsert reemplaza el registro previo.
type MongoPendingVerificationRepository struct {
	coll *mongo.Collection
}

func NewMongoPendingVerificationRepository(db *mongo.Database) *MongoPendingVerificationRepository {
	return &MongoPendingVerificationRepository{coll: db.Collection(pendingVerificationsCollection)}
}

// EnsureIndexes crea el indice TTL; Mongo borra cada documento grace despues de vencido.
func (r *MongoPendingVerificationRepository) EnsureIndexes(ctx context.Context, grace time.Duration) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().
			SetName("pending_verifications_ttl").
			SetExpireAfterSeconds(int32(grace.Seconds())),
	})
	if err != nil {
		return fmt.Errorf("create pending verification indexes: %w", err)
	}
	return nil
}

func (r *MongoPendingVerificationRepository) Upsert(ctx context.Context, v domain.PendingVerification) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": v.Email}, v, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert pending verification: %w", translateMongoError(err))
	}
	return nil
}

func (r *MongoPendingVerificationRepository) GetByEmail(ctx context.Context, email string) (domain.PendingVerification, error) {
	var v domain.PendingVerification
	if err := r.coll.FindOne(ctx, bson.M{"_id": email}).Decode(&v); err != nil {
		return domain.PendingVerification{}, fmt.Errorf("get pending verification: %w", translateMongoError(err))
	}
	return v, nil
}

func (r *MongoPendingVerificationRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": email}); err != nil {
		return fmt.Errorf("delete pending verification: %w", err)
	}
	return nil
}
