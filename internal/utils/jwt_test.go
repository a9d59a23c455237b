package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("top-secret", "alice", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Minute), tok.Exp, 2*time.Second)

	sub, err := ParseSubject("top-secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestParseSubjectExpired(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("top-secret", "alice", -time.Minute)
	require.NoError(t, err)

	_, err = ParseSubject("top-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSubjectWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("top-secret", "alice", time.Minute)
	require.NoError(t, err)

	_, err = ParseSubject("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSubjectMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := ParseSubject("top-secret", raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}
