package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/parkqueue/parkqueue-api/internal/auth"
	"github.com/parkqueue/parkqueue-api/internal/config"
	"github.com/parkqueue/parkqueue-api/internal/mailer"
	"github.com/parkqueue/parkqueue-api/internal/model"
	"github.com/parkqueue/parkqueue-api/internal/repository"
	"github.com/parkqueue/parkqueue-api/internal/security"
)

// RegistrationUsecase orchestrates the staged registration flow: profile and
// password hash are staged against the email, a one-time code gates the final
// account creation, and staging is cleaned up once the account exists.
type RegistrationUsecase interface {
	// Register stages a registration and issues a verification code.
	Register(ctx context.Context, params RegisterParams) (*RegisterResult, error)

	// VerifyCode checks a code without consuming the staged registration.
	VerifyCode(ctx context.Context, email, code string) error

	// CompleteRegistration verifies the code, materializes the account and
	// opens a session for it.
	CompleteRegistration(ctx context.Context, params CompleteRegistrationParams) (*AuthResult, error)
}

// RegisterParams defines the parameters for starting a registration.
type RegisterParams struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
}

// Code delivery outcomes reported by Register.
const (
	CodeDeliveryEmail    = "email"
	CodeDeliveryFallback = "fallback"
)

// RegisterResult reports where the verification code went. When email
// delivery fails the code is handed back to the caller instead of failing
// the registration.
type RegisterResult struct {
	Email        string
	CodeDelivery string
	FallbackCode string
}

// CompleteRegistrationParams defines the parameters for finishing a registration.
type CompleteRegistrationParams struct {
	Email     string
	Code      string
	IPAddress *string
	UserAgent *string
}

var (
	ErrDuplicateAccount  = errors.New("an account with this email already exists")
	ErrCodeNotFound      = errors.New("verification code not found")
	ErrCodeExpired       = errors.New("verification code has expired")
	ErrCodeMismatch      = errors.New("invalid verification code")
	ErrCodeAlreadyUsed   = errors.New("verification code has already been used")
	ErrStagingMissing    = errors.New("registration data not found")
	ErrStagingIncomplete = errors.New("registration data incomplete")
)

type registrationUsecase struct {
	userRepo      repository.UserRepository
	identityRepo  repository.IdentityRepository
	tempUserRepo  repository.TempUserRepository
	codeRepo      repository.VerificationCodeRepository
	sessionIssuer *sessionIssuer
	mailer        mailer.Sender
	cfg           *config.Config
	logger        *zerolog.Logger
}

// NewRegistrationUsecase creates a new instance of RegistrationUsecase.
func NewRegistrationUsecase(
	userRepo repository.UserRepository,
	identityRepo repository.IdentityRepository,
	tempUserRepo repository.TempUserRepository,
	codeRepo repository.VerificationCodeRepository,
	sessionRepo repository.SessionRepository,
	jwtAuth auth.JWTAuthenticator,
	mailer mailer.Sender,
	cfg *config.Config,
	logger *zerolog.Logger,
) RegistrationUsecase {
	return &registrationUsecase{
		userRepo:      userRepo,
		identityRepo:  identityRepo,
		tempUserRepo:  tempUserRepo,
		codeRepo:      codeRepo,
		sessionIssuer: newSessionIssuer(sessionRepo, jwtAuth, cfg),
		mailer:        mailer,
		cfg:           cfg,
		logger:        logger,
	}
}

func (u *registrationUsecase) Register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	email := NormalizeEmail(params.Email)

	// A registered account wins over any staged state for the same email.
	if _, err := u.userRepo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateAccount
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, err
	}

	// Keyed overwrite: a new code supersedes any previously issued one.
	if err := u.codeRepo.UpsertCode(ctx, &model.VerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(u.cfg.VerificationCodeExpiresIn),
	}); err != nil {
		return nil, err
	}

	result := &RegisterResult{
		Email:        email,
		CodeDelivery: CodeDeliveryEmail,
	}

	if err := u.mailer.SendVerificationCode(email, code, u.cfg.VerificationCodeExpiresIn); err != nil {
		// Delivery failure is not fatal: hand the code back to the caller so
		// the registration can still be completed.
		u.logger.Warn().Err(err).Str("email", email).Msg("verification email delivery failed, using fallback")
		result.CodeDelivery = CodeDeliveryFallback
		result.FallbackCode = code
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	if err := u.tempUserRepo.UpsertTempUser(ctx, &model.TempUser{
		Email:        email,
		Username:     params.Username,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		PasswordHash: passwordHash,
	}); err != nil {
		return nil, err
	}

	return result, nil
}

func (u *registrationUsecase) VerifyCode(ctx context.Context, email, code string) error {
	email = NormalizeEmail(email)

	record, err := u.codeRepo.GetCodeByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrCodeNotFound
		}
		return err
	}

	// A code is unusable from the expiry instant onward.
	if !time.Now().Before(record.ExpiresAt) {
		if err := u.codeRepo.DeleteCode(ctx, email); err != nil {
			u.logger.Warn().Err(err).Str("email", email).Msg("failed to delete expired verification code")
		}
		return ErrCodeExpired
	}

	if record.Code != code {
		return ErrCodeMismatch
	}

	if record.Used {
		return ErrCodeAlreadyUsed
	}

	return u.codeRepo.MarkCodeUsed(ctx, email)
}

func (u *registrationUsecase) CompleteRegistration(
	ctx context.Context,
	params CompleteRegistrationParams,
) (*AuthResult, error) {
	email := NormalizeEmail(params.Email)

	if err := u.VerifyCode(ctx, email, params.Code); err != nil {
		return nil, err
	}

	tempUser, err := u.tempUserRepo.GetTempUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStagingMissing
		}
		return nil, err
	}

	if tempUser.PasswordHash == "" {
		return nil, ErrStagingIncomplete
	}

	username := tempUser.Username
	if username == "" {
		username = emailLocalPart(email)
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:              email,
		PasswordHash:       tempUser.PasswordHash,
		Username:           username,
		FirstName:          tempUser.FirstName,
		LastName:           tempUser.LastName,
		Role:               model.RoleUser,
		RegistrationMethod: model.RegistrationMethodEmail,
		IsVerified:         true,
		EmailVerified:      true,
		// AdminApproved stays false until an admin reviews the submitted
		// documents; registration alone never grants dashboard access.
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}

	if _, err := u.identityRepo.CreateIdentity(ctx, &model.Identity{
		UserID:     user.ID.Hex(),
		Provider:   model.ProviderEmail,
		ProviderID: "",
		Email:      user.Email,
	}); err != nil {
		return nil, err
	}

	// Cleanup of the staging records is best-effort: the account exists at
	// this point and a leftover record cannot be replayed (the code is used).
	if err := u.tempUserRepo.DeleteTempUser(ctx, email); err != nil {
		u.logger.Warn().Err(err).Str("email", email).Msg("failed to delete temp user after registration")
	}
	if err := u.codeRepo.DeleteCode(ctx, email); err != nil {
		u.logger.Warn().Err(err).Str("email", email).Msg("failed to delete verification code after registration")
	}

	tokens, err := u.sessionIssuer.issueSession(ctx, user, params.IPAddress, params.UserAgent)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

// NormalizeEmail trims surrounding whitespace and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// generateVerificationCode returns a random 6-digit numeric code.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
