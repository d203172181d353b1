// Package account is the credential store of clinic-idm: users, the
// organizations (tenants) they belong to and doctor profiles.
//
// Multi-record writes go through Repository.WithTx so that an organization,
// its owner and a doctor's profile are either all committed or all rolled
// back. The unique index on the normalized email is the only guard against
// two concurrent registrations for the same address; the losing transaction
// gets ErrEmailExists.
package account
