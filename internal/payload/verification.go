package payload

import "time"

type SubmitVerificationRequest struct {
	FirstName     string `json:"first_name"     validate:"required,max=100"`
	MiddleName    string `json:"middle_name"    validate:"omitempty,max=100"`
	LastName      string `json:"last_name"      validate:"required,max=100"`
	DateOfBirth   string `json:"date_of_birth"  validate:"required,datetime=2006-01-02"`
	ContactNumber string `json:"contact_number" validate:"required,max=30"`
	Address       string `json:"address"        validate:"required,max=300"`

	Brand            string `json:"brand"             validate:"required,max=100"`
	Model            string `json:"model"             validate:"required,max=100"`
	PlateNumber      string `json:"plate_number"      validate:"required,max=30"`
	RegistrationDate string `json:"registration_date" validate:"omitempty,datetime=2006-01-02"`

	LicenseDocumentType      string `json:"license_document_type"      validate:"required,max=100"`
	LicenseDocument          string `json:"license_document"           validate:"required,url"`
	RegistrationDocumentType string `json:"registration_document_type" validate:"required,max=100"`
	RegistrationDocument     string `json:"registration_document"      validate:"required,url"`
	AdditionalDocumentType   string `json:"additional_document_type"   validate:"omitempty,max=100"`
	AdditionalDocument       string `json:"additional_document"        validate:"omitempty,url"`
	OtherDocumentType        string `json:"other_document_type"        validate:"omitempty,max=100"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReviewRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

type DocumentResponse struct {
	DocumentType string    `json:"document_type"`
	DocumentURL  string    `json:"document_url"`
	Verified     bool      `json:"verified"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type PersonalInfoResponse struct {
	FirstName     string    `json:"first_name"`
	MiddleName    string    `json:"middle_name"`
	LastName      string    `json:"last_name"`
	DateOfBirth   time.Time `json:"date_of_birth"`
	ContactNumber string    `json:"contact_number"`
	Address       string    `json:"address"`
}

type MotorInfoResponse struct {
	Brand            string    `json:"brand"`
	Model            string    `json:"model"`
	PlateNumber      string    `json:"plate_number"`
	RegistrationDate time.Time `json:"registration_date"`
}

type PendingVerificationResponse struct {
	User         UserResponse          `json:"user"`
	PersonalInfo *PersonalInfoResponse `json:"personal_info,omitempty"`
	MotorInfo    *MotorInfoResponse    `json:"motor_info,omitempty"`
	Documents    []DocumentResponse    `json:"documents"`
}
