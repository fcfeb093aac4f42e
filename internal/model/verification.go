package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PersonalInfo holds the identity details submitted for admin review.
type PersonalInfo struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	UserID        string        `bson:"user_id"`
	FirstName     string        `bson:"first_name"`
	MiddleName    string        `bson:"middle_name"`
	LastName      string        `bson:"last_name"`
	DateOfBirth   time.Time     `bson:"date_of_birth"`
	ContactNumber string        `bson:"contact_number"`
	Address       string        `bson:"address"`
	CreatedAt     time.Time     `bson:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at"`
}

// MotorInfo holds the vehicle details submitted for admin review.
type MotorInfo struct {
	ID               bson.ObjectID `bson:"_id,omitempty"`
	UserID           string        `bson:"user_id"`
	Brand            string        `bson:"brand"`
	Model            string        `bson:"model"`
	PlateNumber      string        `bson:"plate_number"`
	RegistrationDate time.Time     `bson:"registration_date"`
	CreatedAt        time.Time     `bson:"created_at"`
	UpdatedAt        time.Time     `bson:"updated_at"`
}

// Document is a link to an externally hosted supporting document.
type Document struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	UserID       string        `bson:"user_id"`
	DocumentType string        `bson:"document_type"`
	DocumentURL  string        `bson:"document_url"`
	Verified     bool          `bson:"verified"`
	UploadedAt   time.Time     `bson:"uploaded_at"`
}
