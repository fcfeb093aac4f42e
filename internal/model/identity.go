package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Authentication providers.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// Identity maps a user to one way of signing in, either the local
// email-password credential or an external provider such as Google.
type Identity struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	UserID      string        `bson:"user_id"`
	Provider    string        `bson:"provider"`
	ProviderID  string        `bson:"provider_id"`
	Email       string        `bson:"email"`
	LastLoginAt time.Time     `bson:"last_login_at"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}
