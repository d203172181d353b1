// Package tokengenerator signs and verifies the HS256 bearer tokens of
// clinic-idm.
//
// A token carries the user id as "sub", the user's role and tenant id, and
// the registered iat/exp/iss/aud/jti claims. Access and refresh tokens are
// produced by two generators with independent secrets and lifetimes, so a
// refresh token never verifies as an access token and vice versa.
package tokengenerator
