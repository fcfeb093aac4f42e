package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/parkqueue/parkqueue-api/internal/model"
)

// PersonalInfoRepository defines the interface for personal info submissions.
type PersonalInfoRepository interface {
	CreatePersonalInfo(ctx context.Context, info *model.PersonalInfo) (*model.PersonalInfo, error)
	GetPersonalInfoByUserID(ctx context.Context, userID string) (*model.PersonalInfo, error)
	HasPersonalInfo(ctx context.Context, userID string) (bool, error)
}

// MotorInfoRepository defines the interface for vehicle info submissions.
type MotorInfoRepository interface {
	CreateMotorInfo(ctx context.Context, info *model.MotorInfo) (*model.MotorInfo, error)
	GetMotorInfoByUserID(ctx context.Context, userID string) (*model.MotorInfo, error)
	HasMotorInfo(ctx context.Context, userID string) (bool, error)
}

// DocumentRepository defines the interface for submitted document links.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, document *model.Document) (*model.Document, error)
	GetDocumentsByUserID(ctx context.Context, userID string) ([]model.Document, error)
	MarkDocumentsVerified(ctx context.Context, userID string) error
}

const (
	personalInfoCollection = "personal_info"
	motorInfoCollection    = "motor_info"
	documentCollection     = "documents"
)

type personalInfoMongoRepository struct {
	db *mongo.Database
}

func NewPersonalInfoMongoRepository(db *mongo.Database) PersonalInfoRepository {
	return &personalInfoMongoRepository{db: db}
}

func (r *personalInfoMongoRepository) CreatePersonalInfo(
	ctx context.Context,
	info *model.PersonalInfo,
) (*model.PersonalInfo, error) {
	now := time.Now()
	info.CreatedAt = now
	info.UpdatedAt = now

	result, err := r.db.Collection(personalInfoCollection).InsertOne(ctx, info)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		info.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return info, nil
}

func (r *personalInfoMongoRepository) GetPersonalInfoByUserID(
	ctx context.Context,
	userID string,
) (*model.PersonalInfo, error) {
	result := r.db.Collection(personalInfoCollection).FindOne(ctx, bson.M{"user_id": userID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var info model.PersonalInfo
	if err := result.Decode(&info); err != nil {
		return nil, err
	}

	return &info, nil
}

func (r *personalInfoMongoRepository) HasPersonalInfo(ctx context.Context, userID string) (bool, error) {
	count, err := r.db.Collection(personalInfoCollection).CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

type motorInfoMongoRepository struct {
	db *mongo.Database
}

func NewMotorInfoMongoRepository(db *mongo.Database) MotorInfoRepository {
	return &motorInfoMongoRepository{db: db}
}

func (r *motorInfoMongoRepository) CreateMotorInfo(
	ctx context.Context,
	info *model.MotorInfo,
) (*model.MotorInfo, error) {
	now := time.Now()
	info.CreatedAt = now
	info.UpdatedAt = now

	result, err := r.db.Collection(motorInfoCollection).InsertOne(ctx, info)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		info.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return info, nil
}

func (r *motorInfoMongoRepository) GetMotorInfoByUserID(
	ctx context.Context,
	userID string,
) (*model.MotorInfo, error) {
	result := r.db.Collection(motorInfoCollection).FindOne(ctx, bson.M{"user_id": userID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var info model.MotorInfo
	if err := result.Decode(&info); err != nil {
		return nil, err
	}

	return &info, nil
}

func (r *motorInfoMongoRepository) HasMotorInfo(ctx context.Context, userID string) (bool, error) {
	count, err := r.db.Collection(motorInfoCollection).CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

type documentMongoRepository struct {
	db *mongo.Database
}

func NewDocumentMongoRepository(db *mongo.Database) DocumentRepository {
	return &documentMongoRepository{db: db}
}

func (r *documentMongoRepository) CreateDocument(
	ctx context.Context,
	document *model.Document,
) (*model.Document, error) {
	document.UploadedAt = time.Now()

	result, err := r.db.Collection(documentCollection).InsertOne(ctx, document)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		document.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return document, nil
}

func (r *documentMongoRepository) GetDocumentsByUserID(ctx context.Context, userID string) ([]model.Document, error) {
	cursor, err := r.db.Collection(documentCollection).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}

	var documents []model.Document
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, err
	}

	return documents, nil
}

func (r *documentMongoRepository) MarkDocumentsVerified(ctx context.Context, userID string) error {
	_, err := r.db.Collection(documentCollection).UpdateMany(
		ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"verified": true}},
	)
	return err
}
