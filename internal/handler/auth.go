package handler

import (
	"errors"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/parkqueue/parkqueue-api/internal/auth"
	"github.com/parkqueue/parkqueue-api/internal/config"
	"github.com/parkqueue/parkqueue-api/internal/model"
	"github.com/parkqueue/parkqueue-api/internal/payload"
	"github.com/parkqueue/parkqueue-api/internal/usecase"
	"github.com/parkqueue/parkqueue-api/internal/validation"
)

// AuthHandler serves the registration and authentication endpoints.
type AuthHandler struct {
	registrationUsecase  usecase.RegistrationUsecase
	authUsecase          usecase.AuthUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	jwtAuth              auth.JWTAuthenticator
	validator            *validation.Validator
	cfg                  *config.Config
	logger               *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	registrationUsecase usecase.RegistrationUsecase,
	authUsecase usecase.AuthUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	jwtAuth auth.JWTAuthenticator,
	validator *validation.Validator,
	cfg *config.Config,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		registrationUsecase:  registrationUsecase,
		authUsecase:          authUsecase,
		passwordResetUsecase: passwordResetUsecase,
		jwtAuth:              jwtAuth,
		validator:            validator,
		cfg:                  cfg,
		logger:               logger,
	}
}

// Register starts a registration: it stages the profile and issues a
// verification code. No credential exists until the code is confirmed.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.registrationUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrDuplicateAccount) {
			respondError(w, http.StatusConflict, "An account with this email already exists. Please login instead.")
			return
		}

		h.logger.Error().Err(err).Msg("failed to start registration")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusAccepted, payload.RegisterResponse{
		Email:            result.Email,
		CodeDelivery:     result.CodeDelivery,
		VerificationCode: result.FallbackCode,
	})
}

// VerifyCode checks a verification code without completing the registration.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req payload.VerifyCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.registrationUsecase.VerifyCode(r.Context(), req.Email, req.Code); err != nil {
		h.respondCodeError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "verification code accepted")
}

// CompleteRegistration verifies the code and materializes the account.
func (h *AuthHandler) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	var req payload.CompleteRegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ipAddress, userAgent := clientMeta(r)
	result, err := h.registrationUsecase.CompleteRegistration(r.Context(), usecase.CompleteRegistrationParams{
		Email:     req.Email,
		Code:      req.Code,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrStagingMissing):
			respondError(w, http.StatusNotFound, "Registration data not found. Please start over.")
		case errors.Is(err, usecase.ErrStagingIncomplete):
			respondError(w, http.StatusUnprocessableEntity, "Registration data incomplete. Please start over.")
		case errors.Is(err, usecase.ErrDuplicateAccount):
			respondError(w, http.StatusConflict, "This email is already registered. Please login instead.")
		default:
			h.respondCodeError(w, err)
		}
		return
	}

	respondJSON(w, http.StatusCreated, authResponse(result))
}

// Login authenticates an email-password user.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ipAddress, userAgent := clientMeta(r)
	result, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}

		h.logger.Error().Err(err).Msg("failed to login")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, authResponse(result))
}

// GoogleLogin authenticates a user from a Google sign-in ID token.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req payload.GoogleLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ipAddress, userAgent := clientMeta(r)
	result, err := h.authUsecase.LoginWithGoogle(r.Context(), usecase.GoogleLoginParams{
		IDToken:     req.IDToken,
		AccessToken: req.AccessToken,
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to login with google")
		respondError(w, http.StatusUnauthorized, "Google sign-in failed.")
		return
	}

	respondJSON(w, http.StatusOK, authResponse(result))
}

// Logout revokes the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	if err := h.authUsecase.Logout(r.Context(), claims.SessionID); err != nil {
		h.logger.Error().Err(err).Msg("failed to logout")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondMessage(w, http.StatusOK, "logged out")
}

// RequestPasswordReset emails a reset link. Always succeeds from the caller's
// perspective so account existence cannot be probed.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req payload.RequestPasswordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error().Err(err).Msg("failed to request password reset")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondMessage(w, http.StatusOK, "If an account exists for this email, a reset link has been sent.")
}

// ResetPassword consumes a reset token and updates the password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	jti, err := h.resetTokenJTI(req.Token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid password reset token")
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), jti, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, usecase.ErrTokenNotFound):
			respondError(w, http.StatusNotFound, "password reset token not found")
		case errors.Is(err, usecase.ErrTokenAlreadyUsed):
			respondError(w, http.StatusConflict, "password reset token has already been used")
		case errors.Is(err, usecase.ErrTokenExpired):
			respondError(w, http.StatusUnauthorized, "password reset token has expired")
		case errors.Is(err, usecase.ErrInvalidToken):
			respondError(w, http.StatusUnauthorized, "invalid password reset token")
		default:
			h.logger.Error().Err(err).Msg("failed to reset password")
			respondError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	respondMessage(w, http.StatusOK, "password updated")
}

// resetTokenJTI validates the reset JWT and extracts its JTI claim.
func (h *AuthHandler) resetTokenJTI(token string) (string, error) {
	claims := &auth.PasswordResetClaims{}
	if _, err := h.jwtAuth.ValidateTokenWithClaims(token, h.cfg.Token.PasswordResetTokenSecret, claims); err != nil {
		return "", err
	}

	if claims.JTI == "" {
		return "", usecase.ErrInvalidToken
	}

	return claims.JTI, nil
}

func (h *AuthHandler) respondCodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrCodeNotFound):
		respondError(w, http.StatusNotFound, "Verification code not found or expired")
	case errors.Is(err, usecase.ErrCodeExpired):
		respondError(w, http.StatusGone, "Verification code has expired")
	case errors.Is(err, usecase.ErrCodeMismatch):
		respondError(w, http.StatusBadRequest, "Invalid verification code")
	case errors.Is(err, usecase.ErrCodeAlreadyUsed):
		respondError(w, http.StatusConflict, "Verification code has already been used")
	default:
		h.logger.Error().Err(err).Msg("verification code check failed")
		respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}

func authResponse(result *usecase.AuthResult) payload.AuthResponse {
	return payload.AuthResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		User:         userResponse(result.User),
	}
}

func userResponse(user *model.User) payload.UserResponse {
	return payload.UserResponse{
		ID:                    user.ID.Hex(),
		Email:                 user.Email,
		Username:              user.Username,
		FirstName:             user.FirstName,
		LastName:              user.LastName,
		Role:                  user.Role,
		EmailVerified:         user.EmailVerified,
		VerificationSubmitted: user.VerificationSubmitted,
		AdminApproved:         user.AdminApproved,
		AdminReviewed:         user.AdminReviewed,
	}
}

func clientMeta(r *http.Request) (ipAddress, userAgent *string) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "" {
		ipAddress = &host
	}

	if ua := r.UserAgent(); ua != "" {
		userAgent = &ua
	}

	return ipAddress, userAgent
}
