package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/parkqueue/parkqueue-api/internal/model"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)
	ListUsers(ctx context.Context, params FilterUsersParams) ([]*model.User, error)
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated.
type UpdateUserParams struct {
	Username                *string
	FirstName               *string
	LastName                *string
	PasswordHash            *string
	PhotoURL                *string
	EmailVerified           *bool
	VerificationSubmitted   *bool
	VerificationSubmittedAt *time.Time
	AdminApproved           *bool
	AdminReviewed           *bool
	LastLogin               *time.Time
}

// FilterUsersParams defines the parameters for filtering and paginating users.
type FilterUsersParams struct {
	VerificationSubmitted *bool
	AdminReviewed         *bool
	AdminApproved         *bool
	Limit                 uint64
	Offset                uint64
	SortBy                *string
	SortDesc              bool
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "verification_submitted", Value: 1}, {Key: "admin_reviewed", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// Build update query
	updateMap := bson.M{}
	if params.Username != nil {
		updateMap["username"] = *params.Username
	}
	if params.FirstName != nil {
		updateMap["first_name"] = *params.FirstName
	}
	if params.LastName != nil {
		updateMap["last_name"] = *params.LastName
	}
	if params.PasswordHash != nil {
		updateMap["password_hash"] = *params.PasswordHash
	}
	if params.PhotoURL != nil {
		updateMap["photo_url"] = *params.PhotoURL
	}
	if params.EmailVerified != nil {
		updateMap["email_verified"] = *params.EmailVerified
	}
	if params.VerificationSubmitted != nil {
		updateMap["verification_submitted"] = *params.VerificationSubmitted
	}
	if params.VerificationSubmittedAt != nil {
		updateMap["verification_submitted_at"] = *params.VerificationSubmittedAt
	}
	if params.AdminApproved != nil {
		updateMap["admin_approved"] = *params.AdminApproved
	}
	if params.AdminReviewed != nil {
		updateMap["admin_reviewed"] = *params.AdminReviewed
	}
	if params.LastLogin != nil {
		updateMap["last_login"] = *params.LastLogin
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no user fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) ListUsers(ctx context.Context, params FilterUsersParams) ([]*model.User, error) {
	findOptions := options.Find()

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}
	findOptions.SetLimit(int64(limit))

	if params.Offset > 0 {
		findOptions.SetSkip(int64(params.Offset))
	}

	sortBy := "created_at"
	if params.SortBy != nil {
		sortBy = *params.SortBy
	}

	sortOrder := -1
	if !params.SortDesc {
		sortOrder = 1
	}
	findOptions.SetSort(bson.D{{Key: sortBy, Value: sortOrder}})

	// Build filter query
	filter := bson.M{}
	if params.VerificationSubmitted != nil {
		filter["verification_submitted"] = *params.VerificationSubmitted
	}
	if params.AdminReviewed != nil {
		filter["admin_reviewed"] = *params.AdminReviewed
	}
	if params.AdminApproved != nil {
		filter["admin_approved"] = *params.AdminApproved
	}

	cursor, err := r.db.Collection(userCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*model.User
	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
