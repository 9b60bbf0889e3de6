package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("secret", "ingest-bot", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "ingest-bot", claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	token, err := GenerateToken("secret", "bot", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("other", token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	expired, err := GenerateToken("secret", "bot", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "bot"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken("secret", unsigned)
	assert.Error(t, err)

	_, err = GenerateToken("", "bot", time.Hour)
	assert.Error(t, err)
}
