package jwt_test

import (
	"testing"
	"time"

	"foodgram/pkg/config"
	"foodgram/pkg/lib/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = config.JWTConfig{
	Secret: "0123456789abcdef0123456789abcdef",
	Issuer: "foodgram",
	TTL:    time.Hour,
}

func TestMintAndParse(t *testing.T) {
	token, minted, err := jwt.Mint(testCfg, time.Now(), 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwt.Parse(testCfg, token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, minted.ID, claims.ID)
	assert.NotEmpty(t, claims.ID)
}

func TestParse_Expired(t *testing.T) {
	token, _, err := jwt.Mint(testCfg, time.Now().Add(-2*time.Hour), 1)
	require.NoError(t, err)

	_, err = jwt.Parse(testCfg, token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestParse_WrongSecret(t *testing.T) {
	token, _, err := jwt.Mint(testCfg, time.Now(), 1)
	require.NoError(t, err)

	other := testCfg
	other.Secret = "another-secret-another-secret!!"
	_, err = jwt.Parse(other, token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestParse_WrongIssuer(t *testing.T) {
	token, _, err := jwt.Mint(testCfg, time.Now(), 1)
	require.NoError(t, err)

	other := testCfg
	other.Issuer = "someone-else"
	_, err = jwt.Parse(other, token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestMint_Misconfigured(t *testing.T) {
	_, _, err := jwt.Mint(config.JWTConfig{}, time.Now(), 1)
	assert.Error(t, err)

	_, _, err = jwt.Mint(config.JWTConfig{Secret: "x", TTL: 0}, time.Now(), 1)
	assert.Error(t, err)
}

func TestParse_Garbage(t *testing.T) {
	_, err := jwt.Parse(testCfg, "not-a-token")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
