package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Registration methods recorded on the user document.
const (
	RegistrationMethodEmail  = "email"
	RegistrationMethodGoogle = "google"
)

// User represents an account in the system together with its admin-approval
// state. A user reaches the dashboard only once AdminApproved is true.
type User struct {
	ID                      bson.ObjectID `bson:"_id,omitempty"`
	Email                   string        `bson:"email"`
	PasswordHash            string        `bson:"password_hash,omitempty"`
	Username                string        `bson:"username"`
	FirstName               string        `bson:"first_name"`
	LastName                string        `bson:"last_name"`
	Role                    string        `bson:"role"`
	PhotoURL                *string       `bson:"photo_url,omitempty"`
	RegistrationMethod      string        `bson:"registration_method"`
	IsVerified              bool          `bson:"is_verified"`
	EmailVerified           bool          `bson:"email_verified"`
	VerificationSubmitted   bool          `bson:"verification_submitted"`
	VerificationSubmittedAt *time.Time    `bson:"verification_submitted_at,omitempty"`
	AdminApproved           bool          `bson:"admin_approved"`
	AdminReviewed           bool          `bson:"admin_reviewed"`
	LastLogin               *time.Time    `bson:"last_login,omitempty"`
	CreatedAt               time.Time     `bson:"created_at"`
	UpdatedAt               time.Time     `bson:"updated_at"`
}
