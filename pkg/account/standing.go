package account

import (
	"context"
	"errors"
	"fmt"
)

// CheckStanding reports whether user may act right now: the email must be
// verified, the account active and the tenant not suspended.
func CheckStanding(ctx context.Context, repo Repository, user User) error {
	if !user.EmailVerified {
		return ErrEmailNotVerified
	}
	if !user.Active {
		return ErrUserDisabled
	}

	org, err := repo.GetOrganization(ctx, user.TenantID)
	if errors.Is(err, ErrOrganizationNotFound) {
		return ErrOrganizationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load organization: %w", err)
	}
	if org.Status == OrganizationSuspended {
		return ErrTenantSuspended
	}
	return nil
}
