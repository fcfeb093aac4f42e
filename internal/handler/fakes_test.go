package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/parkqueue/parkqueue-api/internal/auth"
	"github.com/parkqueue/parkqueue-api/internal/config"
	"github.com/parkqueue/parkqueue-api/internal/usecase"
	"github.com/parkqueue/parkqueue-api/internal/validation"
)

const testIssuer = "parkqueue-test"

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func testConfig() *config.Config {
	return &config.Config{
		Token: config.TokenConfig{
			Issuer:                      testIssuer,
			AccessTokenSecret:           "access-secret",
			AccessTokenExpiresIn:        15 * time.Minute,
			RefreshTokenSecret:          "refresh-secret",
			RefreshTokenExpiresIn:       7 * 24 * time.Hour,
			PasswordResetTokenSecret:    "reset-secret",
			PasswordResetTokenExpiresIn: time.Hour,
		},
	}
}

func testValidator(t *testing.T) *validation.Validator {
	t.Helper()

	v, err := validation.New()
	if err != nil {
		t.Fatalf("validation.New() error = %v", err)
	}
	return v
}

// withClaims injects session claims the way JWTAuth middleware would.
func withClaims(r *http.Request, claims *auth.SessionClaims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionClaimsKey, claims))
}

func signedToken(t *testing.T, claims jwt.Claims, secret string) string {
	t.Helper()

	jwtAuth := auth.NewJWTAuthenticator(testIssuer, testIssuer)
	token, err := jwtAuth.GenerateToken(claims, secret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return token
}

func registeredClaims(expiresIn time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testIssuer},
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

type fakeRegistrationUsecase struct {
	registerResult *usecase.RegisterResult
	registerErr    error
	registerCalls  int

	verifyErr   error
	verifyCalls int

	completeResult *usecase.AuthResult
	completeErr    error
}

func (f *fakeRegistrationUsecase) Register(
	ctx context.Context,
	params usecase.RegisterParams,
) (*usecase.RegisterResult, error) {
	f.registerCalls++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerResult, nil
}

func (f *fakeRegistrationUsecase) VerifyCode(ctx context.Context, email, code string) error {
	f.verifyCalls++
	return f.verifyErr
}

func (f *fakeRegistrationUsecase) CompleteRegistration(
	ctx context.Context,
	params usecase.CompleteRegistrationParams,
) (*usecase.AuthResult, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.completeResult, nil
}

type fakeAuthUsecase struct {
	loginResult *usecase.AuthResult
	loginErr    error

	googleResult *usecase.AuthResult
	googleErr    error

	loggedOut []string
	logoutErr error
}

func (f *fakeAuthUsecase) Login(ctx context.Context, params usecase.LoginParams) (*usecase.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeAuthUsecase) LoginWithGoogle(
	ctx context.Context,
	params usecase.GoogleLoginParams,
) (*usecase.AuthResult, error) {
	if f.googleErr != nil {
		return nil, f.googleErr
	}
	return f.googleResult, nil
}

func (f *fakeAuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.loggedOut = append(f.loggedOut, sessionID)
	return nil
}

type fakePasswordResetUsecase struct {
	requestedEmails []string
	requestErr      error

	resetJTIs []string
	resetErr  error
}

func (f *fakePasswordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	if f.requestErr != nil {
		return f.requestErr
	}
	f.requestedEmails = append(f.requestedEmails, email)
	return nil
}

func (f *fakePasswordResetUsecase) ResetPassword(ctx context.Context, jti, newPassword string) error {
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resetJTIs = append(f.resetJTIs, jti)
	return nil
}

func (f *fakePasswordResetUsecase) ValidatePasswordResetToken(ctx context.Context, jti string) error {
	return f.resetErr
}

type fakeVerificationUsecase struct {
	status    usecase.ApprovalStatus
	statusErr error

	submitCalls int
	submitErr   error

	pending    []usecase.PendingVerification
	pendingErr error

	reviewed    map[string]bool
	reviewErr   error
	reviewCalls int
}

func (f *fakeVerificationUsecase) Status(ctx context.Context, userID string) (usecase.ApprovalStatus, error) {
	if f.statusErr != nil {
		return "", f.statusErr
	}
	return f.status, nil
}

func (f *fakeVerificationUsecase) Submit(ctx context.Context, userID string, params usecase.SubmitParams) error {
	f.submitCalls++
	return f.submitErr
}

func (f *fakeVerificationUsecase) ListPending(ctx context.Context) ([]usecase.PendingVerification, error) {
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	return f.pending, nil
}

func (f *fakeVerificationUsecase) Review(ctx context.Context, userID string, approve bool) error {
	f.reviewCalls++
	if f.reviewErr != nil {
		return f.reviewErr
	}
	if f.reviewed == nil {
		f.reviewed = make(map[string]bool)
	}
	f.reviewed[userID] = approve
	return nil
}
