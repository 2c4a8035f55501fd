package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "Passw0rd", wantErr: false},
		{name: "valid long", password: "CorrectHorse7Battery", wantErr: false},
		{name: "too short", password: "Ab1", wantErr: true},
		{name: "seven chars", password: "Abcdef1", wantErr: true},
		{name: "no digit", password: "Password", wantErr: true},
		{name: "no uppercase", password: "password1", wantErr: true},
		{name: "empty", password: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWeakPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Passw0rd", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "Passw0rd", hash)

	assert.True(t, VerifyPassword(hash, "Passw0rd"))
	assert.False(t, VerifyPassword(hash, "passw0rd"))
	assert.False(t, VerifyPassword(hash, ""))
}
