package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/token"
	"github.com/stretchr/testify/require"
)

const secretStr = "test-secret-1234"

func TestNewHMACSignerRequiresSecret(t *testing.T) {
	_, err := token.NewHMACSigner("")
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	signer, err := token.NewHMACSigner(secretStr)
	require.NoError(t, err)

	raw, err := signer.Sign("broker-0")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	id, err := signer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "broker-0", id)
}

func TestTokenExpiry(t *testing.T) {
	signer, err := token.NewHMACSigner(secretStr)
	require.NoError(t, err)

	issued := time.Now()
	token.NowTimeFunc = func() time.Time { return issued }
	defer func() { token.NowTimeFunc = time.Now }()

	raw, err := signer.Sign("alice")
	require.NoError(t, err)

	// still inside the lifetime window
	token.NowTimeFunc = func() time.Time { return issued.Add(token.SessionLifetime - time.Minute) }
	id, err := signer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "alice", id)

	// past expiry
	token.NowTimeFunc = func() time.Time { return issued.Add(token.SessionLifetime + time.Minute) }
	_, err = signer.Verify(raw)
	require.ErrorIs(t, err, token.ErrExpired)
}

func TestTokenTampering(t *testing.T) {
	signer, err := token.NewHMACSigner(secretStr)
	require.NoError(t, err)

	raw, err := signer.Sign("alice")
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	_, err = signer.Verify(tampered)
	require.ErrorIs(t, err, token.ErrExpired)

	// token signed with a different secret
	other, err := token.NewHMACSigner("another-secret")
	require.NoError(t, err)
	foreign, err := other.Sign("alice")
	require.NoError(t, err)
	_, err = signer.Verify(foreign)
	require.ErrorIs(t, err, token.ErrExpired)
}
