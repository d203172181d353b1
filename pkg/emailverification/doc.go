// Package emailverification confirms ownership of a registered email address
// with the one-time passcode mailed at registration.
//
// VerifyEmail checks a submitted code against the OTP ledger and marks the
// account verified. ResendCode issues a fresh code to an existing, unverified
// account; it is limited per email address and reports success for unknown
// addresses so that callers cannot learn which emails are registered.
//
// # Basic Usage
//
//	svc := emailverification.NewEmailVerificationService(
//		accountRepo,
//		otpService,
//		emailverification.WithResendLimit(3),
//		emailverification.WithResendWindow(15*time.Minute),
//		emailverification.WithVerifyAttemptLimit(5),
//		emailverification.WithVerifyAttemptWindow(otp.DefaultTTL),
//	)
//	defer svc.Close()
//
//	err := svc.VerifyEmail(ctx, "a@x.com", "123456")
//	switch {
//	case errors.Is(err, emailverification.ErrInvalidCode):
//		// wrong, expired or already used
//	case errors.Is(err, emailverification.ErrTooManyAttempts):
//		wait := svc.VerifyRetryAfter("a@x.com")
//	}
//
// # Resending Codes
//
//	err := svc.ResendCode(ctx, "a@x.com")
//	if errors.Is(err, emailverification.ErrRateLimitExceeded) {
//		wait := svc.ResendRetryAfter("a@x.com")
//	}
//
// Wrong guesses count per email over the attempt window; a correct code
// clears the count.
package emailverification
