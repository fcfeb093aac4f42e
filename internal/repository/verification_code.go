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

// VerificationCodeRepository defines the interface for verification code operations.
// One record per email: upserting supersedes any previously issued code. There is
// no TTL index on this collection; expiry is enforced at verification time so an
// expired code is still distinguishable from a missing one.
type VerificationCodeRepository interface {
	UpsertCode(ctx context.Context, code *model.VerificationCode) error
	GetCodeByEmail(ctx context.Context, email string) (*model.VerificationCode, error)
	MarkCodeUsed(ctx context.Context, email string) error
	DeleteCode(ctx context.Context, email string) error
}

const verificationCodeCollection = "verification_codes"

type verificationCodeMongoRepository struct {
	db *mongo.Database
}

func NewVerificationCodeMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) VerificationCodeRepository {
	collection := db.Collection(verificationCodeCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create verification code indexes")
	}

	return &verificationCodeMongoRepository{db: db}
}

func (r *verificationCodeMongoRepository) UpsertCode(ctx context.Context, code *model.VerificationCode) error {
	code.CreatedAt = time.Now()
	code.Used = false
	code.UsedAt = nil

	_, err := r.db.Collection(verificationCodeCollection).ReplaceOne(
		ctx,
		bson.M{"email": code.Email},
		code,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *verificationCodeMongoRepository) GetCodeByEmail(
	ctx context.Context,
	email string,
) (*model.VerificationCode, error) {
	result := r.db.Collection(verificationCodeCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var code model.VerificationCode
	if err := result.Decode(&code); err != nil {
		return nil, err
	}

	return &code, nil
}

func (r *verificationCodeMongoRepository) MarkCodeUsed(ctx context.Context, email string) error {
	_, err := r.db.Collection(verificationCodeCollection).UpdateOne(
		ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"used": true, "used_at": time.Now()}},
	)
	return err
}

func (r *verificationCodeMongoRepository) DeleteCode(ctx context.Context, email string) error {
	_, err := r.db.Collection(verificationCodeCollection).DeleteOne(ctx, bson.M{"email": email})
	return err
}
