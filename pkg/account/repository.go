package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the credential store seen outside of a registration
// transaction.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	// MarkEmailVerified flags the user owning email as verified and returns it.
	MarkEmailVerified(ctx context.Context, email string) (User, error)
	SetUserActive(ctx context.Context, id uuid.UUID, active bool) error

	GetOrganization(ctx context.Context, id uuid.UUID) (Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	SetOrganizationStatus(ctx context.Context, id uuid.UUID, status OrganizationStatus) error

	GetDoctorProfileByUserID(ctx context.Context, userID uuid.UUID) (DoctorProfile, error)

	// WithTx runs fn in a transaction. The transaction commits only if fn
	// returns nil; otherwise nothing fn wrote becomes visible.
	WithTx(ctx context.Context, fn func(tx TxRepository) error) error
}

// TxRepository holds the operations available inside WithTx.
type TxRepository interface {
	CreateOrganization(ctx context.Context, params CreateOrganizationParams) (Organization, error)
	GetOrganization(ctx context.Context, id uuid.UUID) (Organization, error)
	// FindDefaultOrganization returns the earliest-created active organization.
	FindDefaultOrganization(ctx context.Context) (Organization, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	CreateDoctorProfile(ctx context.Context, userID, organizationID uuid.UUID) (DoctorProfile, error)
}
