package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/parkqueue/parkqueue-api/internal/config"
	"github.com/parkqueue/parkqueue-api/internal/model"
	"github.com/parkqueue/parkqueue-api/internal/provider"
	"github.com/parkqueue/parkqueue-api/internal/repository"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func testConfig() *config.Config {
	return &config.Config{
		AppPasswordResetURL:       "http://localhost:3000/reset-password",
		VerificationCodeExpiresIn: 10 * time.Minute,
		Token: config.TokenConfig{
			Issuer:                      "parkqueue-test",
			AccessTokenSecret:           "access-secret",
			AccessTokenExpiresIn:        15 * time.Minute,
			RefreshTokenSecret:          "refresh-secret",
			RefreshTokenExpiresIn:       7 * 24 * time.Hour,
			PasswordResetTokenSecret:    "reset-secret",
			PasswordResetTokenExpiresIn: time.Hour,
		},
	}
}

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

type fakeUserRepo struct {
	users     map[string]*model.User
	createErr error
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, duplicateKeyError()
		}
	}

	user.ID = bson.NewObjectID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.users[user.ID.Hex()] = user
	return user, nil
}

func (f *fakeUserRepo) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) UpdateUser(
	ctx context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.EmailVerified != nil {
		user.EmailVerified = *params.EmailVerified
	}
	if params.VerificationSubmitted != nil {
		user.VerificationSubmitted = *params.VerificationSubmitted
	}
	if params.VerificationSubmittedAt != nil {
		user.VerificationSubmittedAt = params.VerificationSubmittedAt
	}
	if params.AdminApproved != nil {
		user.AdminApproved = *params.AdminApproved
	}
	if params.AdminReviewed != nil {
		user.AdminReviewed = *params.AdminReviewed
	}
	if params.LastLogin != nil {
		user.LastLogin = params.LastLogin
	}

	user.UpdatedAt = time.Now()
	return user, nil
}

func (f *fakeUserRepo) ListUsers(
	ctx context.Context,
	params repository.FilterUsersParams,
) ([]*model.User, error) {
	var users []*model.User
	for _, user := range f.users {
		if params.VerificationSubmitted != nil && user.VerificationSubmitted != *params.VerificationSubmitted {
			continue
		}
		if params.AdminReviewed != nil && user.AdminReviewed != *params.AdminReviewed {
			continue
		}
		if params.AdminApproved != nil && user.AdminApproved != *params.AdminApproved {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

type fakeIdentityRepo struct {
	identities []*model.Identity
	createErr  error
}

func (f *fakeIdentityRepo) CreateIdentity(ctx context.Context, identity *model.Identity) (*model.Identity, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	identity.ID = bson.NewObjectID()
	f.identities = append(f.identities, identity)
	return identity, nil
}

func (f *fakeIdentityRepo) GetIdentitiesByUserID(ctx context.Context, userID string) ([]model.Identity, error) {
	var out []model.Identity
	for _, identity := range f.identities {
		if identity.UserID == userID {
			out = append(out, *identity)
		}
	}
	return out, nil
}

func (f *fakeIdentityRepo) GetIdentityByProvider(
	ctx context.Context,
	providerID string,
	providerName string,
) (*model.Identity, error) {
	for _, identity := range f.identities {
		if identity.ProviderID == providerID && identity.Provider == providerName {
			return identity, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeIdentityRepo) UpdateLastLogin(ctx context.Context, userID string) error {
	for _, identity := range f.identities {
		if identity.UserID == userID {
			identity.LastLoginAt = time.Now()
		}
	}
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionRepo) CreateSession(ctx context.Context, session *model.Session) (*model.Session, error) {
	session.ID = bson.NewObjectID()
	f.sessions[session.ID.Hex()] = session
	return session, nil
}

func (f *fakeSessionRepo) GetSession(ctx context.Context, id string) (*model.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return session, nil
}

func (f *fakeSessionRepo) UpdateTokens(
	ctx context.Context,
	id string,
	params repository.UpdateTokensParams,
) (*model.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	session.AccessToken = params.AccessToken
	session.RefreshToken = params.RefreshToken
	session.AccessTokenExpiresAt = params.AccessTokenExpiresAt
	session.RefreshTokenExpiresAt = params.RefreshTokenExpiresAt
	return session, nil
}

func (f *fakeSessionRepo) RevokeSession(ctx context.Context, id string) error {
	session, ok := f.sessions[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	session.Revoked = true
	return nil
}

type fakeTempUserRepo struct {
	tempUsers map[string]*model.TempUser
	deleteErr error
}

func newFakeTempUserRepo() *fakeTempUserRepo {
	return &fakeTempUserRepo{tempUsers: make(map[string]*model.TempUser)}
}

func (f *fakeTempUserRepo) UpsertTempUser(ctx context.Context, tempUser *model.TempUser) error {
	f.tempUsers[tempUser.Email] = tempUser
	return nil
}

func (f *fakeTempUserRepo) GetTempUserByEmail(ctx context.Context, email string) (*model.TempUser, error) {
	tempUser, ok := f.tempUsers[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return tempUser, nil
}

func (f *fakeTempUserRepo) DeleteTempUser(ctx context.Context, email string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.tempUsers, email)
	return nil
}

type fakeCodeRepo struct {
	codes     map[string]*model.VerificationCode
	deleteErr error
	markErr   error
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: make(map[string]*model.VerificationCode)}
}

func (f *fakeCodeRepo) UpsertCode(ctx context.Context, code *model.VerificationCode) error {
	code.Used = false
	code.UsedAt = nil
	code.CreatedAt = time.Now()
	f.codes[code.Email] = code
	return nil
}

func (f *fakeCodeRepo) GetCodeByEmail(ctx context.Context, email string) (*model.VerificationCode, error) {
	code, ok := f.codes[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return code, nil
}

func (f *fakeCodeRepo) MarkCodeUsed(ctx context.Context, email string) error {
	if f.markErr != nil {
		return f.markErr
	}
	code, ok := f.codes[email]
	if !ok {
		return mongo.ErrNoDocuments
	}
	now := time.Now()
	code.Used = true
	code.UsedAt = &now
	return nil
}

func (f *fakeCodeRepo) DeleteCode(ctx context.Context, email string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.codes, email)
	return nil
}

type fakeResetTokenRepo struct {
	tokens map[string]*model.PasswordResetToken
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{tokens: make(map[string]*model.PasswordResetToken)}
}

func (f *fakeResetTokenRepo) CreateToken(
	ctx context.Context,
	token *model.PasswordResetToken,
) (*model.PasswordResetToken, error) {
	token.ID = bson.NewObjectID()
	token.Used = false
	f.tokens[token.JTI] = token
	return token, nil
}

func (f *fakeResetTokenRepo) GetTokenByJTI(ctx context.Context, jti string) (*model.PasswordResetToken, error) {
	token, ok := f.tokens[jti]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return token, nil
}

func (f *fakeResetTokenRepo) MarkTokenAsUsed(ctx context.Context, jti string) error {
	token, ok := f.tokens[jti]
	if !ok {
		return mongo.ErrNoDocuments
	}
	token.Used = true
	return nil
}

func (f *fakeResetTokenRepo) InvalidateUserTokens(ctx context.Context, userID string) error {
	for _, token := range f.tokens {
		if token.UserID.Hex() == userID {
			token.Used = true
		}
	}
	return nil
}

type sentEmail struct {
	to        string
	code      string
	resetLink string
	approved  bool
	kind      string
}

type fakeMailer struct {
	sent    []sentEmail
	sendErr error
}

func (f *fakeMailer) SendVerificationCode(to, code string, expiresIn time.Duration) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentEmail{to: to, code: code, kind: "verification"})
	return nil
}

func (f *fakeMailer) SendPasswordReset(to, resetLink string, expiresIn time.Duration) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentEmail{to: to, resetLink: resetLink, kind: "reset"})
	return nil
}

func (f *fakeMailer) SendReviewOutcome(to string, approved bool) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentEmail{to: to, approved: approved, kind: "review"})
	return nil
}

func (f *fakeMailer) Ping() error {
	return f.sendErr
}

type fakePersonalInfoRepo struct {
	records   []*model.PersonalInfo
	createErr error
}

func (f *fakePersonalInfoRepo) CreatePersonalInfo(
	ctx context.Context,
	info *model.PersonalInfo,
) (*model.PersonalInfo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	info.ID = bson.NewObjectID()
	f.records = append(f.records, info)
	return info, nil
}

func (f *fakePersonalInfoRepo) GetPersonalInfoByUserID(
	ctx context.Context,
	userID string,
) (*model.PersonalInfo, error) {
	for _, info := range f.records {
		if info.UserID == userID {
			return info, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakePersonalInfoRepo) HasPersonalInfo(ctx context.Context, userID string) (bool, error) {
	for _, info := range f.records {
		if info.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeMotorInfoRepo struct {
	records   []*model.MotorInfo
	createErr error
}

func (f *fakeMotorInfoRepo) CreateMotorInfo(ctx context.Context, info *model.MotorInfo) (*model.MotorInfo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	info.ID = bson.NewObjectID()
	f.records = append(f.records, info)
	return info, nil
}

func (f *fakeMotorInfoRepo) GetMotorInfoByUserID(ctx context.Context, userID string) (*model.MotorInfo, error) {
	for _, info := range f.records {
		if info.UserID == userID {
			return info, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeMotorInfoRepo) HasMotorInfo(ctx context.Context, userID string) (bool, error) {
	for _, info := range f.records {
		if info.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeDocumentRepo struct {
	records   []*model.Document
	createErr error
}

func (f *fakeDocumentRepo) CreateDocument(ctx context.Context, document *model.Document) (*model.Document, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	document.ID = bson.NewObjectID()
	f.records = append(f.records, document)
	return document, nil
}

func (f *fakeDocumentRepo) GetDocumentsByUserID(ctx context.Context, userID string) ([]model.Document, error) {
	var out []model.Document
	for _, document := range f.records {
		if document.UserID == userID {
			out = append(out, *document)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepo) MarkDocumentsVerified(ctx context.Context, userID string) error {
	for _, document := range f.records {
		if document.UserID == userID {
			document.Verified = true
		}
	}
	return nil
}

// fakeTxRunner runs the callback directly, without transactional semantics.
type fakeTxRunner struct {
	calls int
	err   error
}

func (f *fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

type fakeGoogleProvider struct {
	profile *provider.GoogleProfile
	err     error
}

func (f *fakeGoogleProvider) Profile(
	ctx context.Context,
	idToken, accessToken string,
) (*provider.GoogleProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}
