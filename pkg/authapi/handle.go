package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/tendant/clinic-idm/pkg/account"
	"github.com/tendant/clinic-idm/pkg/client"
	"github.com/tendant/clinic-idm/pkg/emailverification"
	idmerrors "github.com/tendant/clinic-idm/pkg/errors"
	"github.com/tendant/clinic-idm/pkg/login"
	"github.com/tendant/clinic-idm/pkg/metrics"
	"github.com/tendant/clinic-idm/pkg/ratelimit"
	"github.com/tendant/clinic-idm/pkg/signup"
)

const tokenTypeBearer = "Bearer"

type Handle struct {
	signupService       *signup.SignupService
	loginService        *login.LoginService
	verificationService *emailverification.EmailVerificationService
	authenticate        func(http.Handler) http.Handler
	limiter             *ratelimit.Middleware
	metrics             *metrics.Metrics
	now                 func() time.Time
}

type HandleOption func(*Handle)

// WithRateLimiter puts the credential and OTP routes behind the auth tier.
func WithRateLimiter(limiter *ratelimit.Middleware) HandleOption {
	return func(h *Handle) {
		h.limiter = limiter
	}
}

func WithMetrics(m *metrics.Metrics) HandleOption {
	return func(h *Handle) {
		h.metrics = m
	}
}

func WithClock(now func() time.Time) HandleOption {
	return func(h *Handle) {
		h.now = now
	}
}

// NewHandle wires the services behind the routes. authenticate guards /me,
// normally client.AuthMiddleware.
func NewHandle(
	signupService *signup.SignupService,
	loginService *login.LoginService,
	verificationService *emailverification.EmailVerificationService,
	authenticate func(http.Handler) http.Handler,
	opts ...HandleOption,
) Handle {
	h := Handle{
		signupService:       signupService,
		loginService:        loginService,
		verificationService: verificationService,
		authenticate:        authenticate,
		now:                 func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Routes returns the router to mount under the API prefix.
func (h Handle) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.AuthHandler)
		}
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/verify-otp", h.VerifyOtp)
		r.Post("/resend-otp", h.ResendOtp)
		r.Post("/refresh", h.Refresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)
		r.Get("/me", h.Me)
	})
	return r
}

// decode reads and validates a JSON body, writing the failure response itself.
func decode(w http.ResponseWriter, r *http.Request, body validation.Validatable) bool {
	if err := render.DecodeJSON(r.Body, body); err != nil {
		slog.Info("Failed to decode request body", "path", r.URL.Path, "error", err)
		idmerrors.Render(w, r, idmerrors.New(idmerrors.ErrCodeInvalidInput, "invalid request body"))
		return false
	}
	if err := body.Validate(); err != nil {
		idmerrors.Render(w, r, validationError(err))
		return false
	}
	return true
}

func validationError(err error) error {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return idmerrors.Wrap(err, idmerrors.ErrCodeValidationFailed, "validation failed")
	}
	details := make(map[string]interface{}, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		details[field] = fieldErr.Error()
	}
	return idmerrors.ValidationFailed(details)
}

// Register creates an organization owner or a doctor.
// (POST /register)
func (h Handle) Register(w http.ResponseWriter, r *http.Request) {
	var body RegisterRequestBody
	if !decode(w, r, &body) {
		return
	}

	req := signup.RegisterRequest{}
	if err := copier.Copy(&req, &body); err != nil {
		idmerrors.Render(w, r, err)
		return
	}
	if body.OrgID != "" {
		orgID, err := uuid.Parse(body.OrgID)
		if err != nil {
			idmerrors.Render(w, r, idmerrors.InvalidInput("organizationId", "must be a UUID"))
			return
		}
		req.OrganizationID = &orgID
	}

	result, err := h.signupService.Register(r.Context(), req)
	h.metrics.RecordRegistration(registrationRole(body.Role), err)
	if err != nil {
		idmerrors.Render(w, r, mapError(err))
		return
	}

	message := "Registration successful. Please verify your email with the OTP sent to you."
	if !result.OtpSent {
		message = "Registration successful, but the verification code could not be sent. Please request a new one."
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, RegisterResponse{
		Message:  message,
		UserID:   result.UserID.String(),
		Role:     string(result.Role),
		TenantID: result.TenantID.String(),
		OtpSent:  result.OtpSent,
	})
}

// Login exchanges credentials for tokens.
// (POST /login)
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequestBody
	if !decode(w, r, &body) {
		return
	}

	result, err := h.loginService.Login(r.Context(), body.Email, body.Password)
	h.metrics.RecordLogin(err)
	if err != nil {
		idmerrors.Render(w, r, mapError(err))
		return
	}

	render.JSON(w, r, LoginResponse{
		AccessToken:      result.AccessToken,
		RefreshToken:     result.RefreshToken,
		TokenType:        tokenTypeBearer,
		ExpiresAt:        result.AccessExpiresAt,
		RefreshExpiresAt: result.RefreshExpiresAt,
		User:             toUserResponse(result.User),
	})
}

// VerifyOtp confirms the emailed code.
// (POST /verify-otp)
func (h Handle) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var body VerifyOtpRequestBody
	if !decode(w, r, &body) {
		return
	}

	err := h.verificationService.VerifyEmail(r.Context(), body.Email, body.Code)
	h.metrics.RecordOtpVerification(err)
	if errors.Is(err, emailverification.ErrTooManyAttempts) {
		retryAfter := h.verificationService.VerifyRetryAfter(body.Email).Round(time.Second)
		idmerrors.Render(w, r, idmerrors.RateLimitExceeded(retryAfter.String()))
		return
	}
	if err != nil {
		idmerrors.Render(w, r, mapError(err))
		return
	}
	render.JSON(w, r, MessageResponse{Message: "Email verified successfully. You can now log in."})
}

// ResendOtp mails a fresh code. Unknown addresses get the same answer as
// known ones.
// (POST /resend-otp)
func (h Handle) ResendOtp(w http.ResponseWriter, r *http.Request) {
	var body ResendOtpRequestBody
	if !decode(w, r, &body) {
		return
	}

	err := h.verificationService.ResendCode(r.Context(), body.Email)
	h.metrics.RecordOtpResend(err)
	if errors.Is(err, emailverification.ErrRateLimitExceeded) {
		retryAfter := h.verificationService.ResendRetryAfter(body.Email).Round(time.Second)
		idmerrors.Render(w, r, idmerrors.RateLimitExceeded(retryAfter.String()))
		return
	}
	if err != nil {
		idmerrors.Render(w, r, mapError(err))
		return
	}
	render.JSON(w, r, MessageResponse{Message: "If the account exists and is not yet verified, a new code has been sent."})
}

// Refresh exchanges a refresh token for a new access token.
// (POST /refresh)
func (h Handle) Refresh(w http.ResponseWriter, r *http.Request) {
	var body RefreshRequestBody
	if !decode(w, r, &body) {
		return
	}

	result, err := h.loginService.Refresh(r.Context(), body.RefreshToken)
	h.metrics.RecordRefresh(err)
	if err != nil {
		idmerrors.Render(w, r, mapError(err))
		return
	}
	render.JSON(w, r, RefreshResponse{
		AccessToken: result.AccessToken,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   result.AccessExpiresAt,
	})
}

// Me returns the authenticated user.
// (GET /me)
func (h Handle) Me(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.GetAuthUser(r.Context())
	if !ok {
		idmerrors.Render(w, r, idmerrors.Unauthorized("authentication required"))
		return
	}
	render.JSON(w, r, toUserResponse(authUser.User))
}

// (GET /health)
func (h Handle) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{Status: "OK", Timestamp: h.now()})
}

func toUserResponse(user account.User) UserResponse {
	resp := UserResponse{
		ID:            user.ID.String(),
		Email:         user.Email,
		Role:          string(user.Role),
		TenantID:      user.TenantID.String(),
		EmailVerified: user.EmailVerified,
		IsActive:      user.Active,
	}
	if err := copier.Copy(&resp, &user.Profile); err != nil {
		slog.Warn("Failed to copy profile", "user", user, "error", err)
	}
	return resp
}

func registrationRole(role string) string {
	if parsed, err := account.ParseRole(role); err == nil {
		return string(parsed)
	}
	return "unknown"
}
