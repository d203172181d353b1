package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "organization", want: RoleOwner},
		{in: "Owner", want: RoleOwner},
		{in: "OWNER", want: RoleOwner},
		{in: " doctor ", want: RoleDoctor},
		{in: "DOCTOR", want: RoleDoctor},
		{in: "patient", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrganizationType(t *testing.T) {
	got, err := ParseOrganizationType("")
	require.NoError(t, err)
	assert.Equal(t, OrganizationClinic, got)

	got, err = ParseOrganizationType("solo_practice")
	require.NoError(t, err)
	assert.Equal(t, OrganizationSoloPractice, got)

	_, err = ParseOrganizationType("pharmacy")
	assert.ErrorIs(t, err, ErrInvalidOrganizationType)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com\t"))
}

func TestOrganizationName(t *testing.T) {
	assert.Equal(t, "Dr A's Organization", OrganizationName(" Dr A "))
}
