// Package authapi is the JSON HTTP surface of the identity service.
//
// Routes (relative to the mount prefix, /api/auth by default):
//
//	POST /register     create an owner or doctor account
//	POST /login        exchange credentials for access and refresh tokens
//	POST /verify-otp   confirm the emailed verification code
//	POST /resend-otp   mail a fresh verification code
//	POST /refresh      exchange a refresh token for a new access token
//	GET  /me           the authenticated user
//	GET  /health       liveness
//
// Failures are written as {"code", "message", "details"} with the status
// derived from the code.
package authapi
