package authapi

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/tendant/clinic-idm/pkg/account"
	"github.com/tendant/clinic-idm/pkg/signup"
)

// knownRole accepts whatever account.ParseRole accepts.
var knownRole = validation.By(func(value interface{}) error {
	role, _ := value.(string)
	if _, err := account.ParseRole(role); err != nil {
		return errors.New("must be organization or doctor")
	}
	return nil
})

// RegisterRequestBody is the POST /register payload.
type RegisterRequestBody struct {
	Role             string `json:"role"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Phone            string `json:"phone"`
	CountryCode      string `json:"countryCode"`
	AdminFullName    string `json:"adminFullName"`
	OrganizationType string `json:"organizationType"`
	OrgID            string `json:"organizationId"`
}

func (r RegisterRequestBody) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required, knownRole),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(signup.MinPasswordLength, signup.MaxPasswordBytes)),
		validation.Field(&r.FirstName, validation.Length(0, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
		validation.Field(&r.Phone, validation.Length(0, 20)),
		validation.Field(&r.CountryCode, validation.Length(0, 8)),
		validation.Field(&r.AdminFullName, validation.Length(0, 200)),
		validation.Field(&r.OrgID, is.UUID),
	)
}

type RegisterResponse struct {
	Message  string `json:"message"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
	OtpSent  bool   `json:"otp_sent"`
}

type LoginRequestBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequestBody) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type LoginResponse struct {
	AccessToken      string       `json:"access_token"`
	RefreshToken     string       `json:"refresh_token"`
	TokenType        string       `json:"token_type"`
	ExpiresAt        time.Time    `json:"expires_at"`
	RefreshExpiresAt time.Time    `json:"refresh_expires_at"`
	User             UserResponse `json:"user"`
}

type VerifyOtpRequestBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r VerifyOtpRequestBody) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required),
	)
}

type ResendOtpRequestBody struct {
	Email string `json:"email"`
}

func (r ResendOtpRequestBody) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type RefreshRequestBody struct {
	RefreshToken string `json:"refresh_token"`
}

func (r RefreshRequestBody) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

type RefreshResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	TenantID      string `json:"tenant_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	CountryCode   string `json:"country_code"`
	EmailVerified bool   `json:"email_verified"`
	IsActive      bool   `json:"is_active"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
