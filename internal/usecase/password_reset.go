package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/parkqueue/parkqueue-api/internal/auth"
	"github.com/parkqueue/parkqueue-api/internal/config"
	"github.com/parkqueue/parkqueue-api/internal/mailer"
	"github.com/parkqueue/parkqueue-api/internal/model"
	"github.com/parkqueue/parkqueue-api/internal/repository"
	"github.com/parkqueue/parkqueue-api/internal/security"
)

// PasswordResetUsecase defines the business logic for password reset token operations.
type PasswordResetUsecase interface {
	// RequestPasswordReset initiates the password reset process for a given email.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword resets the user's password using the provided jti and new password.
	ResetPassword(ctx context.Context, jti, newPassword string) error

	// ValidatePasswordResetToken checks if the provided jti is still usable.
	ValidatePasswordResetToken(ctx context.Context, jti string) error
}

var (
	ErrTokenNotFound    = errors.New("password reset token not found")
	ErrTokenAlreadyUsed = errors.New("password reset token has already been used")
	ErrTokenExpired     = errors.New("password reset token has expired")
	ErrInvalidToken     = errors.New("invalid password reset token")
)

type passwordResetUsecase struct {
	userRepo  repository.UserRepository
	tokenRepo repository.PasswordResetTokenRepository
	jwtAuth   auth.JWTAuthenticator
	mailer    mailer.Sender
	cfg       *config.Config
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	jwtAuth auth.JWTAuthenticator,
	mailer mailer.Sender,
	cfg *config.Config,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtAuth:   jwtAuth,
		mailer:    mailer,
		cfg:       cfg,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// To prevent email enumeration, do not reveal that the email does not exist.
			return nil
		}
		return err
	}

	// Invalidate any existing unused tokens for this user
	if err := u.tokenRepo.InvalidateUserTokens(ctx, user.ID.Hex()); err != nil {
		return err
	}

	tokenStr, jti, err := u.generatePasswordResetToken(user.ID.Hex(), user.Email)
	if err != nil {
		return err
	}

	resetToken := &model.PasswordResetToken{
		JTI:       jti,
		UserID:    user.ID,
		Email:     user.Email,
		Used:      false,
		ExpiresAt: time.Now().Add(u.cfg.Token.PasswordResetTokenExpiresIn),
	}

	if _, err := u.tokenRepo.CreateToken(ctx, resetToken); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s?token=%s", u.cfg.AppPasswordResetURL, tokenStr)

	return u.mailer.SendPasswordReset(user.Email, resetLink, u.cfg.Token.PasswordResetTokenExpiresIn)
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, jti, newPassword string) error {
	if err := u.ValidatePasswordResetToken(ctx, jti); err != nil {
		return err
	}

	resetToken, err := u.tokenRepo.GetTokenByJTI(ctx, jti)
	if err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, resetToken.UserID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		return err
	}

	return u.tokenRepo.MarkTokenAsUsed(ctx, jti)
}

func (u *passwordResetUsecase) ValidatePasswordResetToken(ctx context.Context, jti string) error {
	resetToken, err := u.tokenRepo.GetTokenByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTokenNotFound
		}
		return err
	}

	if resetToken.Used {
		return ErrTokenAlreadyUsed
	}

	if time.Now().After(resetToken.ExpiresAt) {
		return ErrTokenExpired
	}

	return nil
}

// generatePasswordResetToken creates a password reset JWT token with a unique JTI.
func (u *passwordResetUsecase) generatePasswordResetToken(userID, email string) (string, string, error) {
	jti := uuid.NewString()

	now := time.Now()
	claims := auth.PasswordResetClaims{
		UserID: userID,
		Email:  email,
		JTI:    jti,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    u.cfg.Token.Issuer,
			Audience:  jwt.ClaimStrings{u.cfg.Token.Issuer},
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(u.cfg.Token.PasswordResetTokenExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	tokenStr, err := u.jwtAuth.GenerateToken(claims, u.cfg.Token.PasswordResetTokenSecret)
	if err != nil {
		return "", "", err
	}

	return tokenStr, jti, nil
}
