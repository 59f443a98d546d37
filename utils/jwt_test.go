package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdrip/config"
)

func TestJWTRoundTrip(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret-key-minimum-32-characters-long"

	token, err := GenerateJWTToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.CompanyID)
}

func TestParseJWTToken_Invalid(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret-key-minimum-32-characters-long"

	_, err := ParseJWTToken("not.a.token")
	assert.Error(t, err)

	// Token signed with a different secret
	token, err := GenerateJWTToken(42)
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "a-completely-different-secret-key-here"
	_, err = ParseJWTToken(token)
	assert.Error(t, err)
}
