package edge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-auth/internal/auth/authtest"
	"github.com/spec-kit/campus-auth/internal/clock"
)

func TestTransportIssuerMintsShortLivedTokens(t *testing.T) {
	clk := clock.Fake(time.Unix(1_700_000_000, 0))
	tokens := authtest.TokenService(t, clk, 10*time.Second)
	issuer, err := NewTransportIssuer(authtest.SignatureService(t, 0), tokens)
	require.NoError(t, err)

	token, exp, err := issuer.Mint("u1")
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(10*time.Second).Unix(), exp.Unix())

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Identity)
	assert.Empty(t, claims.Privileges)

	clk.Advance(11 * time.Second)
	_, err = tokens.Verify(token)
	assert.Error(t, err)
}

func TestTransportIssuerRejectsLongLifetimes(t *testing.T) {
	tokens := authtest.TokenService(t, nil, time.Hour)
	_, err := NewTransportIssuer(authtest.SignatureService(t, 0), tokens)
	assert.Error(t, err)
}
