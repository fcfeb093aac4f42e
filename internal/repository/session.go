package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/parkqueue/parkqueue-api/internal/model"
)

// SessionRepository defines the interface for session-related database operations.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	UpdateTokens(ctx context.Context, id string, params UpdateTokensParams) (*model.Session, error)
	RevokeSession(ctx context.Context, id string) error
}

// UpdateTokensParams defines the parameters for updating session tokens.
type UpdateTokensParams struct {
	AccessToken           string    `bson:"access_token"`
	RefreshToken          string    `bson:"refresh_token"`
	AccessTokenExpiresAt  time.Time `bson:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `bson:"refresh_token_expires_at"`
}

const sessionCollection = "sessions"

type sessionMongoRepository struct {
	db *mongo.Database
}

func NewSessionMongoRepository(db *mongo.Database) SessionRepository {
	return &sessionMongoRepository{db: db}
}

func (r *sessionMongoRepository) CreateSession(ctx context.Context, session *model.Session) (*model.Session, error) {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.db.Collection(sessionCollection).InsertOne(ctx, session)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		session.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return session, nil
}

func (r *sessionMongoRepository) GetSession(ctx context.Context, id string) (*model.Session, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(sessionCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var session model.Session
	if err := result.Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *sessionMongoRepository) UpdateTokens(
	ctx context.Context,
	id string,
	params UpdateTokensParams,
) (*model.Session, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(sessionCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": params},
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var session model.Session
	if err := result.Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *sessionMongoRepository) RevokeSession(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(sessionCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"revoked": true, "updated_at": time.Now()}},
	)
	return err
}
