// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// # One-Time Codes

// OTPCodeDigits is the length of a generated one-time code.
const OTPCodeDigits = 6

// GenerateOTPCode returns a uniformly random numeric code, zero-padded to
// [OTPCodeDigits] digits.
//
// # Uniformity
//
// crypto/rand.Int over [0, 10^6) avoids the modulo bias a naive
// byte-to-digit mapping would introduce.
func GenerateOTPCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < OTPCodeDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate one-time code: %w", err)
	}

	return fmt.Sprintf("%0*d", OTPCodeDigits, n), nil
}

// HashOTPCode hashes a one-time code together with its challenge salt.
//
// bcrypt is deliberate here: a 6-digit code carries little entropy, so a fast
// hash would be trivially brute-forced offline from a leaked store document.
func HashOTPCode(salt, code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(salt+code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash one-time code: %w", err)
	}
	return string(hashed), nil
}

// CheckOTPCode compares a submitted code against the stored hash using
// bcrypt's constant-time comparison.
func CheckOTPCode(salt, code, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(salt+code))
	return err == nil
}
