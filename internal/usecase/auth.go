package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/parkqueue/parkqueue-api/internal/auth"
	"github.com/parkqueue/parkqueue-api/internal/config"
	"github.com/parkqueue/parkqueue-api/internal/model"
	"github.com/parkqueue/parkqueue-api/internal/provider"
	"github.com/parkqueue/parkqueue-api/internal/repository"
	"github.com/parkqueue/parkqueue-api/internal/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, params GoogleLoginParams) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// GoogleProvider validates Google sign-in tokens.
type GoogleProvider interface {
	Profile(ctx context.Context, idToken, accessToken string) (*provider.GoogleProfile, error)
}

// LoginParams defines the parameters for email-password login.
type LoginParams struct {
	Email     string
	Password  string
	IPAddress *string
	UserAgent *string
}

// GoogleLoginParams defines the parameters for Google sign-in.
type GoogleLoginParams struct {
	IDToken     string
	AccessToken string
	IPAddress   *string
	UserAgent   *string
}

// Tokens is the access/refresh pair handed to an authenticated client.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult bundles the authenticated user with its session tokens.
type AuthResult struct {
	User   *model.User
	Tokens *Tokens
}

var ErrInvalidCredentials = errors.New("invalid credentials")

type authUsecase struct {
	userRepo      repository.UserRepository
	identityRepo  repository.IdentityRepository
	sessionRepo   repository.SessionRepository
	sessionIssuer *sessionIssuer
	google        GoogleProvider
	cfg           *config.Config
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	identityRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	jwtAuth auth.JWTAuthenticator,
	google GoogleProvider,
	cfg *config.Config,
) AuthUsecase {
	return &authUsecase{
		userRepo:      userRepo,
		identityRepo:  identityRepo,
		sessionRepo:   sessionRepo,
		sessionIssuer: newSessionIssuer(sessionRepo, jwtAuth, cfg),
		google:        google,
		cfg:           cfg,
	}
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	email := NormalizeEmail(params.Email)

	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	// Google-only accounts carry no local password hash.
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	user, err = u.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	tokens, err := u.sessionIssuer.issueSession(ctx, user, params.IPAddress, params.UserAgent)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (u *authUsecase) LoginWithGoogle(ctx context.Context, params GoogleLoginParams) (*AuthResult, error) {
	profile, err := u.google.Profile(ctx, params.IDToken, params.AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := u.findOrCreateGoogleUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	user, err = u.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	tokens, err := u.sessionIssuer.issueSession(ctx, user, params.IPAddress, params.UserAgent)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (u *authUsecase) Logout(ctx context.Context, sessionID string) error {
	return u.sessionRepo.RevokeSession(ctx, sessionID)
}

func (u *authUsecase) findOrCreateGoogleUser(
	ctx context.Context,
	profile *provider.GoogleProfile,
) (*model.User, error) {
	identity, err := u.identityRepo.GetIdentityByProvider(ctx, profile.ProviderID, model.ProviderGoogle)
	if err == nil {
		return u.userRepo.GetUser(ctx, identity.UserID)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// No identity yet. Link to an existing account with the same email, or
	// create a fresh one.
	user, err := u.userRepo.GetUserByEmail(ctx, profile.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		user, err = u.userRepo.CreateUser(ctx, &model.User{
			Email:              profile.Email,
			Username:           emailLocalPart(profile.Email),
			FirstName:          profile.FirstName,
			LastName:           profile.LastName,
			Role:               model.RoleUser,
			RegistrationMethod: model.RegistrationMethodGoogle,
			IsVerified:         true,
			EmailVerified:      true,
			// Google sign-in does not bypass the admin review: AdminApproved
			// stays false until the submitted documents are approved.
		})
	}
	if err != nil {
		return nil, err
	}

	if _, err := u.identityRepo.CreateIdentity(ctx, &model.Identity{
		UserID:     user.ID.Hex(),
		Provider:   model.ProviderGoogle,
		ProviderID: profile.ProviderID,
		Email:      profile.Email,
	}); err != nil {
		return nil, err
	}

	return user, nil
}

func (u *authUsecase) recordLogin(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()

	updated, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		LastLogin: &now,
	})
	if err != nil {
		return nil, err
	}

	if err := u.identityRepo.UpdateLastLogin(ctx, user.ID.Hex()); err != nil {
		return nil, err
	}

	return updated, nil
}

// sessionIssuer creates a session document and the JWT pair bound to it.
type sessionIssuer struct {
	sessionRepo repository.SessionRepository
	jwtAuth     auth.JWTAuthenticator
	cfg         *config.Config
}

func newSessionIssuer(
	sessionRepo repository.SessionRepository,
	jwtAuth auth.JWTAuthenticator,
	cfg *config.Config,
) *sessionIssuer {
	return &sessionIssuer{
		sessionRepo: sessionRepo,
		jwtAuth:     jwtAuth,
		cfg:         cfg,
	}
}

func (s *sessionIssuer) issueSession(
	ctx context.Context,
	user *model.User,
	ipAddress, userAgent *string,
) (*Tokens, error) {
	session, err := s.sessionRepo.CreateSession(ctx, &model.Session{
		UserID:    user.ID.Hex(),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := s.generateToken(
		user,
		session.ID.Hex(),
		s.cfg.Token.AccessTokenSecret,
		s.cfg.Token.AccessTokenExpiresIn,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateToken(
		user,
		session.ID.Hex(),
		s.cfg.Token.RefreshTokenSecret,
		s.cfg.Token.RefreshTokenExpiresIn,
	)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if _, err := s.sessionRepo.UpdateTokens(ctx, session.ID.Hex(), repository.UpdateTokensParams{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(s.cfg.Token.AccessTokenExpiresIn),
		RefreshTokenExpiresAt: now.Add(s.cfg.Token.RefreshTokenExpiresIn),
	}); err != nil {
		return nil, err
	}

	return &Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *sessionIssuer) generateToken(
	user *model.User,
	sessionID, secret string,
	expiresIn time.Duration,
) (string, error) {
	now := time.Now()
	claims := auth.SessionClaims{
		UserID:    user.ID.Hex(),
		SessionID: sessionID,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.cfg.Token.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Token.Issuer},
			Subject:   user.ID.Hex(),
		},
	}

	return s.jwtAuth.GenerateToken(claims, secret)
}
