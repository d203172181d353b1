package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tendant/clinic-idm/pkg/account"
	"github.com/tendant/clinic-idm/pkg/login"
)

const MinPasswordLength = 8

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// OtpIssuer sends a fresh verification code to an address.
type OtpIssuer interface {
	Issue(ctx context.Context, email string) error
}

// SignupService handles user registration business logic
type SignupService struct {
	repo                account.Repository
	otp                 OtpIssuer
	hasher              login.PasswordHasher
	registrationEnabled bool
}

// SignupServiceOption is a functional option for configuring SignupService
type SignupServiceOption func(*SignupService)

// WithPasswordHasher replaces the default bcrypt hasher
func WithPasswordHasher(hasher login.PasswordHasher) SignupServiceOption {
	return func(s *SignupService) {
		s.hasher = hasher
	}
}

// WithRegistrationEnabled sets whether registration is enabled
func WithRegistrationEnabled(enabled bool) SignupServiceOption {
	return func(s *SignupService) {
		s.registrationEnabled = enabled
	}
}

// NewSignupService creates a new SignupService with the given options
func NewSignupService(repo account.Repository, otp OtpIssuer, opts ...SignupServiceOption) *SignupService {
	s := &SignupService{
		repo:                repo,
		otp:                 otp,
		hasher:              login.NewBcryptHasher(login.MinBcryptCost),
		registrationEnabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest represents a registration request. AdminFullName and
// OrganizationType apply to owners, OrganizationID to doctors.
type RegisterRequest struct {
	Role             string
	Email            string
	Password         string
	FirstName        string
	LastName         string
	Phone            string
	CountryCode      string
	AdminFullName    string
	OrganizationType string
	OrganizationID   *uuid.UUID
}

// RegisterResult represents the result of user registration
type RegisterResult struct {
	UserID   uuid.UUID
	Role     account.Role
	TenantID uuid.UUID
	OtpSent  bool
}

// IsRegistrationEnabled returns whether registration is enabled
func (s *SignupService) IsRegistrationEnabled() bool {
	return s.registrationEnabled
}

// Register creates the user and its tenant record atomically, then issues the
// email verification code.
func (s *SignupService) Register(ctx context.Context, req RegisterRequest) (RegisterResult, error) {
	if !s.registrationEnabled {
		return RegisterResult{}, ErrRegistrationDisabled
	}

	email := account.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return RegisterResult{}, ErrEmailAndPasswordRequired
	}
	if len(req.Password) < MinPasswordLength {
		return RegisterResult{}, ErrPasswordTooShort
	}
	if len(req.Password) > MaxPasswordBytes {
		return RegisterResult{}, ErrPasswordTooLong
	}

	role, err := account.ParseRole(req.Role)
	if err != nil {
		return RegisterResult{}, ErrInvalidRole
	}

	var orgType account.OrganizationType
	adminFullName := strings.TrimSpace(req.AdminFullName)
	if role == account.RoleOwner {
		if adminFullName == "" {
			return RegisterResult{}, ErrAdminFullNameRequired
		}
		if orgType, err = account.ParseOrganizationType(req.OrganizationType); err != nil {
			return RegisterResult{}, ErrInvalidOrganizationType
		}
	}

	// Hash outside the transaction; bcrypt is deliberately slow.
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var user account.User
	err = s.repo.WithTx(ctx, func(tx account.TxRepository) error {
		if _, err := tx.GetUserByEmail(ctx, email); err == nil {
			return ErrEmailAlreadyRegistered
		} else if !errors.Is(err, account.ErrUserNotFound) {
			return fmt.Errorf("failed to look up email: %w", err)
		}

		var tenant account.Organization
		switch role {
		case account.RoleOwner:
			tenant, err = tx.CreateOrganization(ctx, account.CreateOrganizationParams{
				AdminFullName: adminFullName,
				Type:          orgType,
			})
			if err != nil {
				return fmt.Errorf("failed to create organization: %w", err)
			}
		case account.RoleDoctor:
			tenant, err = resolveOrganization(ctx, tx, req.OrganizationID)
			if err != nil {
				return err
			}
		}

		user, err = tx.CreateUser(ctx, account.CreateUserParams{
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			TenantID:     tenant.ID,
			Profile: account.Profile{
				FirstName:   strings.TrimSpace(req.FirstName),
				LastName:    strings.TrimSpace(req.LastName),
				Phone:       strings.TrimSpace(req.Phone),
				CountryCode: strings.TrimSpace(req.CountryCode),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		if role == account.RoleDoctor {
			if _, err := tx.CreateDoctorProfile(ctx, user.ID, tenant.ID); err != nil {
				return fmt.Errorf("failed to create doctor profile: %w", err)
			}
		}
		return nil
	})
	if errors.Is(err, account.ErrEmailExists) {
		err = ErrEmailAlreadyRegistered
	}
	if err != nil {
		slog.Info("Registration failed", "email", email, "role", role, "error", err)
		return RegisterResult{}, err
	}

	slog.Info("User registered", "user", user)

	result := RegisterResult{
		UserID:   user.ID,
		Role:     user.Role,
		TenantID: user.TenantID,
		OtpSent:  true,
	}
	if err := s.otp.Issue(ctx, email); err != nil {
		slog.Error("Failed to issue verification code", "user", user, "error", err)
		result.OtpSent = false
	}
	return result, nil
}

// resolveOrganization picks the organization a doctor joins: the requested
// one when given, otherwise the earliest created active organization.
func resolveOrganization(ctx context.Context, tx account.TxRepository, requested *uuid.UUID) (account.Organization, error) {
	if requested != nil {
		org, err := tx.GetOrganization(ctx, *requested)
		if errors.Is(err, account.ErrOrganizationNotFound) {
			return account.Organization{}, ErrOrganizationNotFound
		}
		if err != nil {
			return account.Organization{}, fmt.Errorf("failed to load organization: %w", err)
		}
		if org.Status != account.OrganizationActive {
			return account.Organization{}, ErrOrganizationSuspended
		}
		return org, nil
	}

	org, err := tx.FindDefaultOrganization(ctx)
	if errors.Is(err, account.ErrOrganizationNotFound) {
		return account.Organization{}, ErrNoOrganizationAvailable
	}
	if err != nil {
		return account.Organization{}, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}
