// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// # Opaque Bearer Tokens

// GenerateSecureToken returns a URL-safe random token with byteLength bytes of
// entropy (32 bytes = 256 bits for session tokens).
func GenerateSecureToken(byteLength int) (string, error) {
	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// HashToken computes the server-side fingerprint of a raw bearer token.
//
// # Why keyed?
//
// The hash is HMAC-SHA256 keyed by a server-held secret, so a leaked store
// document alone never yields usable credentials: an attacker would need both
// the document and the process secret to forge a matching hash.
func HashToken(secret, rawToken string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(rawToken))
	return hex.EncodeToString(mac.Sum(nil))
}

// GenerateSalt returns a random hex salt for one-time code hashing.
func GenerateSalt(byteLength int) (string, error) {
	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to generate salt: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
