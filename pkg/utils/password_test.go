package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_BadHashFormat(t *testing.T) {
	_, err := VerifyPassword("anything", "not-a-valid-hash")
	assert.Error(t, err)
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("maria_92"))
	assert.Error(t, ValidateUsername("ab"))              // too short
	assert.Error(t, ValidateUsername("_underscore"))     // must start alphanumeric
	assert.Error(t, ValidateUsername("has spaces here")) // invalid chars
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "maria", NormalizeUsername("  MaRia "))
}
