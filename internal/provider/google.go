package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrInvalidGoogleAudience = errors.New("invalid google audience")
	ErrEmailNotVerified      = errors.New("google account email is not verified")
)

// GoogleProfile is the subset of the Google token info the registration
// flow needs to materialize an account.
type GoogleProfile struct {
	ProviderID string
	Email      string
	FirstName  string
	LastName   string
}

// GoogleOAuthProvider validates Google ID tokens obtained by the browser
// sign-in popup and extracts the account profile from them.
type GoogleOAuthProvider struct {
	clientID string
}

// NewGoogleOAuthProvider creates a GoogleOAuthProvider bound to an OAuth client ID.
func NewGoogleOAuthProvider(clientID string) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{clientID: clientID}
}

// Profile validates the ID token and, when an access token is supplied,
// enriches the result with the account's given and family names.
func (p *GoogleOAuthProvider) Profile(ctx context.Context, idToken, accessToken string) (*GoogleProfile, error) {
	profile, err := p.ValidateIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	if accessToken != "" {
		userInfo, err := p.FetchUserInfo(ctx, accessToken)
		if err == nil {
			profile.FirstName = userInfo.GivenName
			profile.LastName = userInfo.FamilyName
		}
	}

	return profile, nil
}

// ValidateIDToken checks the ID token against Google's tokeninfo endpoint and
// verifies it was issued for this application.
func (p *GoogleOAuthProvider) ValidateIDToken(ctx context.Context, idToken string) (*GoogleProfile, error) {
	oauth2Service, err := oauth2.NewService(ctx, option.WithHTTPClient(&http.Client{}))
	if err != nil {
		return nil, err
	}

	tokenInfoCall := oauth2Service.Tokeninfo()
	tokenInfoCall.IdToken(idToken)
	tokenInfo, err := tokenInfoCall.Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if tokenInfo.Audience != p.clientID {
		return nil, ErrInvalidGoogleAudience
	}

	if !tokenInfo.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}

	profile := &GoogleProfile{
		ProviderID: tokenInfo.UserId,
		Email:      strings.ToLower(tokenInfo.Email),
	}

	return profile, nil
}

// FetchUserInfo retrieves the signed-in user's profile names using the OAuth
// access token. Callers may skip this when only the email is needed.
func (p *GoogleOAuthProvider) FetchUserInfo(ctx context.Context, accessToken string) (*oauth2.Userinfo, error) {
	client := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v1/userinfo", nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("status code is not OK")
	}

	var userInfo oauth2.Userinfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, err
	}

	return &userInfo, nil
}
