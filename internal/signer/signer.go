// Package signer produces the parameter signatures the Kylin market-data API verifies.
//
// The upstream recomputes HMAC-SHA256 over the sorted key=value join of every
// body parameter except "signature". Values are joined as-is: a value holding
// '=' or '&' yields an ambiguous canonical string, and escaping them would
// break the upstream's own verification, so callers are expected to send
// plain tokens only.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"maps"
	"slices"
	"strings"
)

const (
	// ParamSignature is the body field carrying the hex digest. It is never part of its own input.
	ParamSignature = "signature"
	// ParamTimestamp is the body field carrying epoch milliseconds. It is covered by the signature.
	ParamTimestamp = "timestamp"
)

// Canonicalize renders params as key=value pairs sorted byte-wise by key and joined with '&'.
func Canonicalize(params map[string]string) string {
	var b strings.Builder
	for i, k := range slices.Sorted(maps.Keys(params)) {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// Sign returns the lowercase hex HMAC-SHA256 of canonical keyed by secret.
func Sign(secret, canonical string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the one computed over params.
func Verify(secret string, params map[string]string, signature string) bool {
	_, expected := NewSignerUnchecked(secret).SignParams(params)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Signer holds the shared API secret.
type Signer struct {
	secret string
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("signer: api secret is empty")
	}
	return &Signer{secret: secret}, nil
}

// NewSignerUnchecked accepts any secret, including the empty one. HMAC keys of any length are valid.
func NewSignerUnchecked(secret string) *Signer {
	return &Signer{secret: secret}
}

// SignParams returns the canonical string of params without the signature field, and its signature.
func (s *Signer) SignParams(params map[string]string) (canonical, signature string) {
	if _, ok := params[ParamSignature]; ok {
		params = maps.Clone(params)
		delete(params, ParamSignature)
	}
	canonical = Canonicalize(params)
	return canonical, Sign(s.secret, canonical)
}

// Redacted returns a form of the secret safe for diagnostics.
func (s *Signer) Redacted() string {
	return Redact(s.secret)
}

// Redact masks all but the last four characters of a secret.
func Redact(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
