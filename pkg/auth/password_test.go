package auth_test

import (
	"testing"

	"github.com/askeland/riskgate/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "Str0ng!Pass", false},
		{"too short", "S1!a", true},
		{"missing uppercase", "str0ng!pass", true},
		{"missing lowercase", "STR0NG!PASS", true},
		{"missing digit", "Strong!Pass", true},
		{"missing special", "Str0ngPass", true},
		{"common password", "password123!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSecurityAnswerRoundTrip(t *testing.T) {
	salt, err := auth.NewSalt()
	require.NoError(t, err)
	require.Len(t, salt, auth.SaltLength*2) // hex encoded

	hash, err := auth.HashSecurityAnswer(salt, "oslo")
	require.NoError(t, err)

	assert.NoError(t, auth.CompareSecurityAnswer(hash, salt, "oslo"))
	assert.Error(t, auth.CompareSecurityAnswer(hash, salt, "bergen"))

	otherSalt, err := auth.NewSalt()
	require.NoError(t, err)
	assert.Error(t, auth.CompareSecurityAnswer(hash, otherSalt, "oslo"))
}

func TestHashSecurityAnswer_RejectsEmptyAnswer(t *testing.T) {
	salt, err := auth.NewSalt()
	require.NoError(t, err)

	_, err = auth.HashSecurityAnswer(salt, "")
	assert.Error(t, err)
}
