package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

const signedPrefix = "s:"

// CookieSigner signs cookie values with a secret distinct from the token
// secret. The wire format is "s:<value>.<mac>" where mac is the unpadded
// base64 HMAC-SHA256 of value, as produced by cookie-parser.
type CookieSigner struct {
	secret []byte
}

// NewCookieSigner creates a new cookie signer
func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret)}
}

// Sign returns the signed form of value
func (s *CookieSigner) Sign(value string) string {
	return signedPrefix + value + "." + s.mac(value)
}

// Unsign verifies a signed value and returns the original.
// ok is false for unsigned, tampered or malformed input.
func (s *CookieSigner) Unsign(signed string) (value string, ok bool) {
	if !strings.HasPrefix(signed, signedPrefix) {
		return "", false
	}
	body := strings.TrimPrefix(signed, signedPrefix)

	i := strings.LastIndexByte(body, '.')
	if i <= 0 {
		return "", false
	}
	value, mac := body[:i], body[i+1:]

	if !hmac.Equal([]byte(mac), []byte(s.mac(value))) {
		return "", false
	}
	return value, true
}

func (s *CookieSigner) mac(value string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(value))
	return base64.RawStdEncoding.EncodeToString(h.Sum(nil))
}
