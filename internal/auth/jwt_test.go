package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func sessionClaims(issuer, audience string, expiresIn time.Duration) SessionClaims {
	now := time.Now()
	return SessionClaims{
		UserID:    "user-1",
		SessionID: "session-1",
		Role:      "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	jwtAuth := NewJWTAuthenticator("parkqueue", "parkqueue")

	token, err := jwtAuth.GenerateToken(sessionClaims("parkqueue", "parkqueue", time.Minute), testSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	parsed := &SessionClaims{}
	if _, err := jwtAuth.ValidateTokenWithClaims(token, testSecret, parsed); err != nil {
		t.Fatalf("ValidateTokenWithClaims() error = %v", err)
	}

	if parsed.UserID != "user-1" || parsed.SessionID != "session-1" {
		t.Errorf("claims = %+v, want the original user and session", parsed)
	}
}

func TestValidateTokenRejections(t *testing.T) {
	jwtAuth := NewJWTAuthenticator("parkqueue", "parkqueue")

	goodClaims := sessionClaims("parkqueue", "parkqueue", time.Minute)

	tests := []struct {
		name   string
		claims SessionClaims
		secret string
	}{
		{name: "wrong secret", claims: goodClaims, secret: "other-secret"},
		{name: "expired", claims: sessionClaims("parkqueue", "parkqueue", -time.Minute), secret: testSecret},
		{name: "wrong issuer", claims: sessionClaims("someone-else", "parkqueue", time.Minute), secret: testSecret},
		{name: "wrong audience", claims: sessionClaims("parkqueue", "someone-else", time.Minute), secret: testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwtAuth.GenerateToken(tt.claims, tt.secret)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}

			parsed := &SessionClaims{}
			if _, err := jwtAuth.ValidateTokenWithClaims(token, testSecret, parsed); err == nil {
				t.Error("ValidateTokenWithClaims() accepted an invalid token")
			}
		})
	}
}

func TestValidateTokenRequiresExpiration(t *testing.T) {
	jwtAuth := NewJWTAuthenticator("parkqueue", "parkqueue")

	claims := sessionClaims("parkqueue", "parkqueue", time.Minute)
	claims.ExpiresAt = nil

	token, err := jwtAuth.GenerateToken(claims, testSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	parsed := &SessionClaims{}
	if _, err := jwtAuth.ValidateTokenWithClaims(token, testSecret, parsed); err == nil {
		t.Error("ValidateTokenWithClaims() accepted a token without an expiry")
	}
}
