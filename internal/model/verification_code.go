package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// VerificationCode is a single-use 6-digit code gating registration completion.
// There is at most one active code per email: issuing a new one overwrites the
// previous record. Expiry is checked lazily at verification time.
type VerificationCode struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Email     string        `bson:"email"`
	Code      string        `bson:"code"`
	Used      bool          `bson:"used"`
	UsedAt    *time.Time    `bson:"used_at,omitempty"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
}
