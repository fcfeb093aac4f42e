package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/parkqueue/parkqueue-api/internal/mailer"
	"github.com/parkqueue/parkqueue-api/internal/model"
	"github.com/parkqueue/parkqueue-api/internal/repository"
)

// DocumentURLPrefix is the only file-hosting location accepted for submitted
// document links.
const DocumentURLPrefix = "https://drive.google.com/"

// ApprovalStatus is the outcome of evaluating the approval gate for a user.
type ApprovalStatus string

const (
	// StatusApproved grants dashboard access.
	StatusApproved ApprovalStatus = "approved"

	// StatusPending means documents were submitted and await admin review.
	// It takes precedence over the approval flag so a reviewed-but-stale
	// submission can never be re-entered.
	StatusPending ApprovalStatus = "pending"

	// StatusVerificationRequired means the user still has to submit documents.
	StatusVerificationRequired ApprovalStatus = "verification_required"
)

// VerificationUsecase covers the document submission workflow and the
// admin-approval gate evaluated on every dashboard load.
type VerificationUsecase interface {
	// Status evaluates the approval gate for a user.
	Status(ctx context.Context, userID string) (ApprovalStatus, error)

	// Submit validates and stores a verification submission in a single
	// transaction.
	Submit(ctx context.Context, userID string, params SubmitParams) error

	// ListPending returns submissions awaiting admin review.
	ListPending(ctx context.Context) ([]PendingVerification, error)

	// Review records an admin decision and notifies the user.
	Review(ctx context.Context, userID string, approve bool) error
}

// SubmitParams defines the full verification submission payload.
type SubmitParams struct {
	FirstName     string
	MiddleName    string
	LastName      string
	DateOfBirth   time.Time
	ContactNumber string
	Address       string

	Brand            string
	Model            string
	PlateNumber      string
	RegistrationDate *time.Time

	LicenseDocumentType      string
	LicenseDocumentURL       string
	RegistrationDocumentType string
	RegistrationDocumentURL  string
	AdditionalDocumentType   string
	AdditionalDocumentURL    string
	OtherDocumentType        string
}

// PendingVerification bundles a submission with everything an admin reviews.
type PendingVerification struct {
	User         *model.User
	PersonalInfo *model.PersonalInfo
	MotorInfo    *model.MotorInfo
	Documents    []model.Document
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadySubmitted   = errors.New("verification already submitted")
	ErrInvalidDocumentURL = errors.New("document link must be a Google Drive URL")
	ErrNotSubmitted       = errors.New("user has no verification submission to review")
)

type verificationUsecase struct {
	userRepo         repository.UserRepository
	personalInfoRepo repository.PersonalInfoRepository
	motorInfoRepo    repository.MotorInfoRepository
	documentRepo     repository.DocumentRepository
	txRunner         repository.TxRunner
	mailer           mailer.Sender
	logger           *zerolog.Logger
}

// NewVerificationUsecase creates a new instance of VerificationUsecase.
func NewVerificationUsecase(
	userRepo repository.UserRepository,
	personalInfoRepo repository.PersonalInfoRepository,
	motorInfoRepo repository.MotorInfoRepository,
	documentRepo repository.DocumentRepository,
	txRunner repository.TxRunner,
	mailer mailer.Sender,
	logger *zerolog.Logger,
) VerificationUsecase {
	return &verificationUsecase{
		userRepo:         userRepo,
		personalInfoRepo: personalInfoRepo,
		motorInfoRepo:    motorInfoRepo,
		documentRepo:     documentRepo,
		txRunner:         txRunner,
		mailer:           mailer,
		logger:           logger,
	}
}

func (u *verificationUsecase) Status(ctx context.Context, userID string) (ApprovalStatus, error) {
	hasPersonalInfo, err := u.personalInfoRepo.HasPersonalInfo(ctx, userID)
	if err != nil {
		return "", err
	}

	hasMotorInfo, err := u.motorInfoRepo.HasMotorInfo(ctx, userID)
	if err != nil {
		return "", err
	}

	// An existing submission always reads as pending, even when the approval
	// flag is already set: the form must never be shown again.
	if hasPersonalInfo && hasMotorInfo {
		return StatusPending, nil
	}

	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return StatusVerificationRequired, nil
		}
		return "", err
	}

	if user.AdminApproved {
		return StatusApproved, nil
	}

	return StatusVerificationRequired, nil
}

func (u *verificationUsecase) Submit(ctx context.Context, userID string, params SubmitParams) error {
	status, err := u.Status(ctx, userID)
	if err != nil {
		return err
	}
	if status == StatusPending {
		return ErrAlreadySubmitted
	}

	if _, err := u.userRepo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	documents, err := buildDocuments(userID, params)
	if err != nil {
		return err
	}

	now := time.Now()
	registrationDate := now
	if params.RegistrationDate != nil {
		registrationDate = *params.RegistrationDate
	}

	// All writes happen in one transaction so a partial submission can never
	// be observed.
	submitted := true
	notApproved := false
	return u.txRunner.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.personalInfoRepo.CreatePersonalInfo(ctx, &model.PersonalInfo{
			UserID:        userID,
			FirstName:     params.FirstName,
			MiddleName:    params.MiddleName,
			LastName:      params.LastName,
			DateOfBirth:   params.DateOfBirth,
			ContactNumber: params.ContactNumber,
			Address:       params.Address,
		}); err != nil {
			return err
		}

		if _, err := u.motorInfoRepo.CreateMotorInfo(ctx, &model.MotorInfo{
			UserID:           userID,
			Brand:            params.Brand,
			Model:            params.Model,
			PlateNumber:      params.PlateNumber,
			RegistrationDate: registrationDate,
		}); err != nil {
			return err
		}

		for i := range documents {
			if _, err := u.documentRepo.CreateDocument(ctx, &documents[i]); err != nil {
				return err
			}
		}

		_, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{
			VerificationSubmitted:   &submitted,
			VerificationSubmittedAt: &now,
			AdminApproved:           &notApproved,
			AdminReviewed:           &notApproved,
		})
		return err
	})
}

func (u *verificationUsecase) ListPending(ctx context.Context) ([]PendingVerification, error) {
	submitted := true
	reviewed := false
	users, err := u.userRepo.ListUsers(ctx, repository.FilterUsersParams{
		VerificationSubmitted: &submitted,
		AdminReviewed:         &reviewed,
		Limit:                 100,
	})
	if err != nil {
		return nil, err
	}

	pending := make([]PendingVerification, 0, len(users))
	for _, user := range users {
		userID := user.ID.Hex()

		personalInfo, err := u.personalInfoRepo.GetPersonalInfoByUserID(ctx, userID)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}

		motorInfo, err := u.motorInfoRepo.GetMotorInfoByUserID(ctx, userID)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}

		documents, err := u.documentRepo.GetDocumentsByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}

		pending = append(pending, PendingVerification{
			User:         user,
			PersonalInfo: personalInfo,
			MotorInfo:    motorInfo,
			Documents:    documents,
		})
	}

	return pending, nil
}

func (u *verificationUsecase) Review(ctx context.Context, userID string, approve bool) error {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	if !user.VerificationSubmitted {
		return ErrNotSubmitted
	}

	reviewed := true
	if _, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{
		AdminReviewed: &reviewed,
		AdminApproved: &approve,
	}); err != nil {
		return err
	}

	if approve {
		if err := u.documentRepo.MarkDocumentsVerified(ctx, userID); err != nil {
			return err
		}
	}

	// The outcome email is informational only.
	if err := u.mailer.SendReviewOutcome(user.Email, approve); err != nil {
		u.logger.Warn().Err(err).Str("email", user.Email).Msg("failed to send review outcome email")
	}

	return nil
}

func buildDocuments(userID string, params SubmitParams) ([]model.Document, error) {
	required := []struct {
		documentType string
		documentURL  string
	}{
		{params.LicenseDocumentType, params.LicenseDocumentURL},
		{params.RegistrationDocumentType, params.RegistrationDocumentURL},
	}

	documents := make([]model.Document, 0, 3)
	for _, doc := range required {
		if !isValidDocumentURL(doc.documentURL) {
			return nil, ErrInvalidDocumentURL
		}
		documents = append(documents, model.Document{
			UserID:       userID,
			DocumentType: doc.documentType,
			DocumentURL:  doc.documentURL,
		})
	}

	if params.AdditionalDocumentURL != "" {
		if !isValidDocumentURL(params.AdditionalDocumentURL) {
			return nil, ErrInvalidDocumentURL
		}

		documentType := params.AdditionalDocumentType
		if documentType == "Other" {
			documentType = params.OtherDocumentType
		}

		documents = append(documents, model.Document{
			UserID:       userID,
			DocumentType: documentType,
			DocumentURL:  params.AdditionalDocumentURL,
		})
	}

	return documents, nil
}

func isValidDocumentURL(url string) bool {
	return strings.HasPrefix(url, DocumentURLPrefix)
}
