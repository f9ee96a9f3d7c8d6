package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT("65f0a1b2c3d4e5f6a7b8c9d0", "doctor")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "65f0a1b2c3d4e5f6a7b8c9d0", claims.UserID)
	assert.Equal(t, "doctor", claims.Role)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	SetJWTSecret("secret-one")
	token, err := GenerateJWT("id", "user")
	require.NoError(t, err)

	SetJWTSecret("secret-two")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTGarbage(t *testing.T) {
	SetJWTSecret("test-secret")
	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestGenerateJWTNoSecret(t *testing.T) {
	SetJWTSecret("")
	defer SetJWTSecret("test-secret")

	_, err := GenerateJWT("id", "user")
	assert.Error(t, err)
}
