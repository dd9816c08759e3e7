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

const (
	usersCollection      = "users"
	portfoliosCollection = "portfolios"
)

// MongoUserRepository implementa UserRepository sobre una base MongoDB.
type MongoUserRepository struct {
	users      *mongo.Collection
	portfolios *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		users:      db.Collection(usersCollection),
		portfolios: db.Collection(portfoliosCollection),
	}
}

// EnsureIndexes crea los indices unicos que hacen cumplir la unicidad de email y username.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("users_email_unique")},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("users_username_unique")},
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "reset_code_hash", Value: 1}}, Options: options.Index().SetName("users_reset_lookup")},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	_, err = r.portfolios.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetName("portfolios_user_id"),
	})
	if err != nil {
		return fmt.Errorf("create portfolio indexes: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user domain.User) error {
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", translateMongoError(err))
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetByLogin(ctx context.Context, identifier string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"username": identifier},
	}})
}

func (r *MongoUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	n, err := r.users.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return n > 0, nil
}

func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateOne(ctx, "update password", id, bson.M{
		"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now().UTC()},
	})
}

func (r *MongoUserRepository) SetResetCode(ctx context.Context, id, codeHash string, expiresAt time.Time) error {
	return r.updateOne(ctx, "set reset code", id, bson.M{
		"$set": bson.M{
			"reset_code_hash":       codeHash,
			"reset_code_expires_at": expiresAt,
			"updated_at":            time.Now().UTC(),
		},
	})
}

func (r *MongoUserRepository) ClearResetCode(ctx context.Context, id string) error {
	return r.updateOne(ctx, "clear reset code", id, bson.M{
		"$unset": bson.M{"reset_code_hash": "", "reset_code_expires_at": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *MongoUserRepository) GetByResetCode(ctx context.Context, email, codeHash string, now time.Time) (domain.User, error) {
	return r.findOne(ctx, bson.M{
		"email":                 email,
		"reset_code_hash":       codeHash,
		"reset_code_expires_at": bson.M{"$gt": now},
	})
}

func (r *MongoUserRepository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	return r.updateOne(ctx, "reset password", id, bson.M{
		"$set":   bson.M{"password_hash": passwordHash, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"reset_code_hash": "", "reset_code_expires_at": ""},
	})
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.portfolios.DeleteMany(ctx, bson.M{"user_id": id}); err != nil {
		return fmt.Errorf("delete portfolios: %w", err)
	}
	res, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete user: %w", ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var u domain.User
	if err := r.users.FindOne(ctx, filter).Decode(&u); err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", translateMongoError(err))
	}
	return u, nil
}

func (r *MongoUserRepository) updateOne(ctx context.Context, op, id string, update bson.M) error {
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateMongoError(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
