// Package otp issues and verifies the six-digit email one-time passcodes used
// to prove ownership of an address after registration.
//
// Only a SHA-256 digest of a code is stored. Each email has at most one live
// code: issuing replaces every earlier record, a successful verification
// deletes them all, and a failed verification leaves them untouched.
//
// # Basic Usage
//
//	import "github.com/tendant/clinic-idm/pkg/otp"
//
//	// Pick a ledger: "postgres", "redis" or "memory"
//	repo, err := otp.NewRepository("redis", otp.RepositoryConfig{
//		Redis:       redisClient,
//		RedisPrefix: "idm:otp:",
//	})
//	if err != nil {
//		return err
//	}
//
//	// sender is anything with SendOtp, usually *notification.NotificationManager
//	svc := otp.NewOtpService(repo, sender, otp.WithTTL(otp.DefaultTTL))
//
//	// Generate, store and send a fresh code
//	err = svc.Issue(ctx, "a@x.com")
//
//	// Check what the user typed
//	ok, err := svc.Verify(ctx, "a@x.com", "123456")
//	if err != nil {
//		return err
//	}
//	if !ok {
//		// wrong, expired or already used
//	}
//
// # Testing
//
// The clock and code source are replaceable, which keeps tests deterministic:
//
//	svc := otp.NewOtpService(otp.NewInMemoryRepository(), sender,
//		otp.WithClock(func() time.Time { return now }),
//		otp.WithCodeGenerator(func() (string, error) { return "123456", nil }),
//	)
//
// GenerateCode and HashCode are exported for tools that seed a ledger
// directly.
package otp
