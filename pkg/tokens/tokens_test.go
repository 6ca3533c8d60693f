package tokens

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, payload string) string {
	t.Helper()
	enc := base64.RawURLEncoding.EncodeToString
	return fmt.Sprintf("%s.%s.%s",
		enc([]byte(`{"alg":"HS256","typ":"JWT"}`)),
		enc([]byte(payload)),
		enc([]byte("signature-is-not-checked")),
	)
}

func TestDecodePayload(t *testing.T) {
	t.Parallel()

	token := makeToken(t, `{"id":"user-1","exp":1700000000}`)

	p, err := DecodePayload(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, int64(1700000000), p.Exp)
}

func TestDecodePayload_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "no dots", token: "garbage"},
		{name: "two segments", token: "a.b"},
		{name: "bad base64", token: "a.!!!.c"},
		{name: "not json", token: makeToken(t, "not-json")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodePayload(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestIsExpired(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)

	future := makeToken(t, `{"id":"u","exp":1700003600}`)
	past := makeToken(t, `{"id":"u","exp":1699996400}`)
	noExp := makeToken(t, `{"id":"u"}`)

	assert.False(t, IsExpired(future, now))
	assert.True(t, IsExpired(past, now))
	assert.True(t, IsExpired(noExp, now))
	assert.True(t, IsExpired("", now))
	assert.True(t, IsExpired("not.a.token.at.all", now))
}

func TestRemainingTime(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)

	assert.Equal(t, int64(3600), RemainingTime(makeToken(t, `{"id":"u","exp":1700003600}`), now))
	assert.Equal(t, int64(0), RemainingTime(makeToken(t, `{"id":"u","exp":1699996400}`), now))
	assert.Equal(t, int64(0), RemainingTime("garbage", now))
}
