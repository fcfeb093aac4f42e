package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/parkqueue/parkqueue-api/internal/model"
)

// TempUserRepository defines the interface for staged-registration operations.
// Records are keyed by email: upserting replaces any previous staging for the
// same address.
type TempUserRepository interface {
	UpsertTempUser(ctx context.Context, tempUser *model.TempUser) error
	GetTempUserByEmail(ctx context.Context, email string) (*model.TempUser, error)
	DeleteTempUser(ctx context.Context, email string) error
}

const tempUserCollection = "temp_users"

type tempUserMongoRepository struct {
	db *mongo.Database
}

func NewTempUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) TempUserRepository {
	collection := db.Collection(tempUserCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create temp user indexes")
	}

	return &tempUserMongoRepository{db: db}
}

func (r *tempUserMongoRepository) UpsertTempUser(ctx context.Context, tempUser *model.TempUser) error {
	tempUser.CreatedAt = time.Now()

	_, err := r.db.Collection(tempUserCollection).ReplaceOne(
		ctx,
		bson.M{"email": tempUser.Email},
		tempUser,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *tempUserMongoRepository) GetTempUserByEmail(ctx context.Context, email string) (*model.TempUser, error) {
	result := r.db.Collection(tempUserCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var tempUser model.TempUser
	if err := result.Decode(&tempUser); err != nil {
		return nil, err
	}

	return &tempUser, nil
}

func (r *tempUserMongoRepository) DeleteTempUser(ctx context.Context, email string) error {
	_, err := r.db.Collection(tempUserCollection).DeleteOne(ctx, bson.M{"email": email})
	return err
}
