// Package signup registers organization owners and doctors.
//
// Register creates the user together with its tenant record in one
// transaction: an owner gets a new organization, a doctor joins an existing
// one through a doctor profile. Nothing is left behind when any step fails.
// The email verification code is issued only after the transaction commits,
// so a delivery problem never undoes a registration.
//
// # Basic Usage
//
//	import "github.com/tendant/clinic-idm/pkg/signup"
//
//	svc := signup.NewSignupService(
//		accountRepo,
//		otpService,
//		signup.WithPasswordHasher(login.NewBcryptHasher(12)),
//		signup.WithRegistrationEnabled(true),
//	)
//
//	// Register an organization owner
//	result, err := svc.Register(ctx, signup.RegisterRequest{
//		Role:          "organization",
//		Email:         "a@x.com",
//		Password:      "longpass1",
//		AdminFullName: "Dr A",
//	})
//	if err != nil {
//		return err
//	}
//	// result.Role == account.RoleOwner
//	// result.TenantID is the new organization
//
// # Registering a Doctor
//
// A doctor joins the organization named by OrganizationID, or the earliest
// active organization when none is given.
//
//	orgID := result.TenantID
//	doctor, err := svc.Register(ctx, signup.RegisterRequest{
//		Role:           "doctor",
//		Email:          "doc@x.com",
//		Password:       "longpass1",
//		FirstName:      "Dana",
//		LastName:       "Doe",
//		OrganizationID: &orgID,
//	})
//
// # Verification Code
//
// OtpSent reports whether the code went out. A false value means the account
// exists but the user has to ask for a new code:
//
//	if !result.OtpSent {
//		// prompt for /resend-otp
//	}
//
// # Errors
//
//	switch {
//	case errors.Is(err, signup.ErrEmailAlreadyRegistered):
//		// 409
//	case errors.Is(err, signup.ErrPasswordTooShort), errors.Is(err, signup.ErrPasswordTooLong):
//		// passwords are 8 to 72 bytes
//	case errors.Is(err, signup.ErrOrganizationNotFound):
//		// 404
//	case errors.Is(err, signup.ErrOrganizationSuspended):
//		// 403
//	}
package signup
