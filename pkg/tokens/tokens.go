// Package tokens reads JWT payloads for storefront UI decisions.
//
// DecodePayload deliberately performs NO signature verification: the
// storefront only needs the caller's id for ownership gating and favourite
// lookups, and the backend re-checks authorization on every mutating
// request. Nothing decoded here is a trust boundary.
package tokens

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrMalformedToken = errors.New("malformed token")

// Payload is the decoded, unverified claim set.
type Payload struct {
	ID  string `json:"id"`
	Exp int64  `json:"exp"`
}

// DecodePayload decodes the second segment of a compact JWT as plain JSON.
func DecodePayload(token string) (*Payload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrMalformedToken
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ErrMalformedToken
	}

	return &p, nil
}

// IsExpired treats a missing, malformed or exp-less token as expired —
// callers clear stored credentials and redirect to login on true.
func IsExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}
	p, err := DecodePayload(token)
	if err != nil {
		return true
	}
	if p.Exp == 0 {
		return true
	}
	return p.Exp < now.Unix()
}

// RemainingTime returns seconds until expiration, or 0 when expired or
// unreadable.
func RemainingTime(token string, now time.Time) int64 {
	p, err := DecodePayload(token)
	if err != nil {
		return 0
	}
	if rem := p.Exp - now.Unix(); rem > 0 {
		return rem
	}
	return 0
}
