package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TempUser stages a registration between code issuance and code verification.
// The record is keyed by email and deleted once the account is materialized.
// Only the argon2 hash of the chosen password is staged, never the password itself.
type TempUser struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	Username     string        `bson:"username"`
	FirstName    string        `bson:"first_name"`
	LastName     string        `bson:"last_name"`
	PasswordHash string        `bson:"password_hash"`
	CreatedAt    time.Time     `bson:"created_at"`
}
