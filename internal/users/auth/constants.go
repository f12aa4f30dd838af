// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Token And Hash Sizing

const (
	// SessionTokenBytes is the entropy of a raw session token before encoding.
	SessionTokenBytes = 32

	// OTPSaltBytes is the entropy of the per-challenge salt mixed into the
	// code hash.
	OTPSaltBytes = 16
)

// # Validation Bounds

const (
	MaxEmailLength    = 254
	MaxFullNameLength = 120
)
