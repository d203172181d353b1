// Package login is the authentication gate: it exchanges an email and
// password for an access/refresh token pair and a refresh token for a new
// access token.
//
// Unknown emails and wrong passwords fail with the same ErrInvalidCredentials.
// An unverified email is reported before the password is checked; inactive
// accounts and suspended tenants are refused after it.
package login
