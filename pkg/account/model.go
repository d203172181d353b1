package account

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleDoctor Role = "DOCTOR"
)

// ParseRole accepts the registration spellings ("organization", "owner",
// "doctor") as well as the stored role names, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "organization", "owner":
		return RoleOwner, nil
	case "doctor":
		return RoleDoctor, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

type OrganizationStatus string

const (
	OrganizationActive    OrganizationStatus = "ACTIVE"
	OrganizationSuspended OrganizationStatus = "SUSPENDED"
)

type OrganizationType string

const (
	OrganizationHospital     OrganizationType = "HOSPITAL"
	OrganizationClinic       OrganizationType = "CLINIC"
	OrganizationSoloPractice OrganizationType = "SOLO_PRACTICE"
)

// ParseOrganizationType defaults to CLINIC for an empty value.
func ParseOrganizationType(s string) (OrganizationType, error) {
	switch t := OrganizationType(strings.ToUpper(strings.TrimSpace(s))); t {
	case "":
		return OrganizationClinic, nil
	case OrganizationHospital, OrganizationClinic, OrganizationSoloPractice:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrganizationType, s)
}

type Profile struct {
	FirstName   string
	LastName    string
	Phone       string
	CountryCode string
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type User struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	Role          Role
	TenantID      uuid.UUID
	EmailVerified bool
	Active        bool
	Profile       Profile
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LogValue keeps the password hash out of logs.
func (u User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", u.ID.String()),
		slog.String("email", u.Email),
		slog.String("role", string(u.Role)),
		slog.String("tenant_id", u.TenantID.String()),
	)
}

type Organization struct {
	ID            uuid.UUID
	Name          string
	AdminFullName string
	Status        OrganizationStatus
	Type          OrganizationType
	CreatedAt     time.Time
}

// OrganizationName derives the display name of an owner's organization.
func OrganizationName(adminFullName string) string {
	return fmt.Sprintf("%s's Organization", strings.TrimSpace(adminFullName))
}

type DoctorProfile struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	CreatedAt      time.Time
}

type CreateOrganizationParams struct {
	AdminFullName string
	Type          OrganizationType
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
	Role         Role
	TenantID     uuid.UUID
	Profile      Profile
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrOrganizationNotFound    = errors.New("organization not found")
	ErrDoctorProfileNotFound   = errors.New("doctor profile not found")
	ErrEmailExists             = errors.New("email already registered")
	ErrInvalidRole             = errors.New("invalid role")
	ErrInvalidOrganizationType = errors.New("invalid organization type")
)

var (
	ErrEmailNotVerified = errors.New("email not verified")
	ErrUserDisabled     = errors.New("account is disabled")
	ErrTenantSuspended  = errors.New("organization is suspended")
)
