package session

import (
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.SessionConfig {
	return config.SessionConfig{Secret: "s3cret", Issuer: "storefront", TTL: time.Hour}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testConfig()
	id := uuid.New()

	token, err := Mint(cfg, time.Now(), id)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := Parse(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	token, err := Mint(cfg, time.Now().Add(-2*time.Hour), uuid.New())
	require.NoError(t, err)

	_, err = Parse(cfg, token)
	assert.Error(t, err)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	cfg := testConfig()
	token, err := Mint(cfg, time.Now(), uuid.New())
	require.NoError(t, err)

	other := cfg
	other.Secret = "different"
	_, err = Parse(other, token)
	assert.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testConfig()
	token, err := Mint(cfg, time.Now(), uuid.New())
	require.NoError(t, err)

	other := cfg
	other.Issuer = "elsewhere"
	_, err = Parse(other, token)
	assert.Error(t, err)
}

func TestMintValidatesInput(t *testing.T) {
	_, err := Mint(config.SessionConfig{TTL: time.Hour}, time.Now(), uuid.New())
	assert.Error(t, err, "missing secret")

	_, err = Mint(config.SessionConfig{Secret: "x"}, time.Now(), uuid.New())
	assert.Error(t, err, "missing ttl")

	_, err = Mint(testConfig(), time.Now(), uuid.Nil)
	assert.Error(t, err, "nil session")
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse(testConfig(), "not-a-token")
	assert.Error(t, err)
}
