package payload

type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=6"`
	Username  string `json:"username"   validate:"omitempty,min=3,max=30"`
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name"  validate:"omitempty,max=100"`
}

// RegisterResponse reports where the verification code was delivered. The
// code itself is only present when email delivery failed and the fallback
// path was taken.
type RegisterResponse struct {
	Email            string `json:"email"`
	CodeDelivery     string `json:"code_delivery"`
	VerificationCode string `json:"verification_code,omitempty"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required,len=6,numeric"`
}

type CompleteRegistrationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required,len=6,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken     string `json:"id_token"     validate:"required"`
	AccessToken string `json:"access_token" validate:"omitempty"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID                    string `json:"id"`
	Email                 string `json:"email"`
	Username              string `json:"username"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	Role                  string `json:"role"`
	EmailVerified         bool   `json:"email_verified"`
	VerificationSubmitted bool   `json:"verification_submitted"`
	AdminApproved         bool   `json:"admin_approved"`
	AdminReviewed         bool   `json:"admin_reviewed"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}
