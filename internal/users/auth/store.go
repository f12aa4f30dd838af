// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Repository Contracts

// The service depends on these narrow interfaces; the file-backed document
// store under internal/platform/store provides the production implementations.

// UserRepository manages User records.
type UserRepository interface {
	/*
		FindByEmail loads a user by normalized email.

		Parameters:
		  - ctx: request context.
		  - email: normalized (lower-cased, trimmed) address.

		Returns:
		  - *User: the user, or an apperr.NotFound-coded error when absent.
		  - error: lookup failure.
	*/
	FindByEmail(ctx context.Context, email string) (*User, error)

	/*
		FindByID loads a user by identifier.

		Parameters:
		  - ctx: request context.
		  - id: user identifier.

		Returns:
		  - *User: the user, or an apperr.NotFound-coded error when absent.
		  - error: lookup failure.
	*/
	FindByID(ctx context.Context, id string) (*User, error)

	/*
		Create persists a new user.

		Parameters:
		  - ctx: request context.
		  - user: fully populated record; ID and Email must be set.

		Returns:
		  - error: an apperr.Conflict-coded error when the email is taken.
	*/
	Create(ctx context.Context, user *User) error

	/*
		Update replaces an existing user record in full.

		Parameters:
		  - ctx: request context.
		  - user: record to store; matched by ID.

		Returns:
		  - error: an apperr.NotFound-coded error when the user is absent.
	*/
	Update(ctx context.Context, user *User) error
}

// ChargeOutcome classifies one atomic verification attempt.
type ChargeOutcome int

const (
	// ChargeMatched: the code was correct and the challenge is consumed.
	ChargeMatched ChargeOutcome = iota
	// ChargeMismatch: the code was wrong; one attempt has been charged.
	ChargeMismatch
	// ChargeLocked: the wrong code reached the attempt ceiling; the
	// challenge is consumed by exhaustion.
	ChargeLocked
	// ChargeExpired: the challenge was past its expiry and is consumed.
	ChargeExpired
)

// ChallengeRepository manages pending one-time-code challenges.
//
// Implementations must keep at most one challenge per email, and must run
// Replace and Charge as single transactions: no other writer may observe the
// challenge between their read and their matching write.
type ChallengeRepository interface {
	/*
		Upsert stores a challenge, replacing any existing one for the same email.

		Parameters:
		  - ctx: request context.
		  - challenge: the new challenge; Email must be normalized.

		Returns:
		  - error: persistence failure.
	*/
	Upsert(ctx context.Context, challenge *OTPChallenge) error

	/*
		Replace stores a fresh challenge, superseding any prior one for the
		same email, unless that prior challenge is still inside the cooldown
		window. The age check and the superseding write commit together, so
		two near-simultaneous requests can never both issue a code.

		Parameters:
		  - ctx: request context.
		  - challenge: the new challenge; Email must be normalized and
		    CreatedAt set to the issue instant.
		  - cooldown: minimum age the prior challenge must reach before it
		    may be superseded.

		Returns:
		  - error: an apperr.RateLimited-coded error when the prior challenge
		    is too young, or persistence failure.
	*/
	Replace(ctx context.Context, challenge *OTPChallenge, cooldown time.Duration) error

	/*
		Charge runs one verification attempt against the active challenge for
		an email. The expiry check, the attempt increment, the verify
		callback, and the resulting delete all commit as one transaction, so
		concurrent submissions each pay for their own attempt.

		Parameters:
		  - ctx: request context.
		  - email: normalized address.
		  - now: the instant expiry is judged against.
		  - maxAttempts: the lock-out ceiling.
		  - verify: invoked once with the live challenge; reports whether the
		    presented code matches. Must not retain the challenge.

		Returns:
		  - *OTPChallenge: a copy of the consumed challenge on ChargeMatched,
		    nil otherwise.
		  - ChargeOutcome: the attempt classification.
		  - error: an apperr.NotFound-coded error when no challenge is
		    pending, or persistence failure.
	*/
	Charge(ctx context.Context, email string, now time.Time, maxAttempts int, verify func(challenge *OTPChallenge) bool) (*OTPChallenge, ChargeOutcome, error)

	/*
		FindByEmail loads the active challenge for an email.

		Parameters:
		  - ctx: request context.
		  - email: normalized address.

		Returns:
		  - *OTPChallenge: the challenge, or an apperr.NotFound-coded error
		    when none is pending.
		  - error: lookup failure.
	*/
	FindByEmail(ctx context.Context, email string) (*OTPChallenge, error)

	/*
		Delete removes the active challenge for an email, if any.

		Parameters:
		  - ctx: request context.
		  - email: normalized address.

		Returns:
		  - error: persistence failure. Absence is not an error.
	*/
	Delete(ctx context.Context, email string) error
}

// SessionRepository manages authenticated sessions keyed by token hash.
type SessionRepository interface {
	/*
		Create persists a new session.

		Parameters:
		  - ctx: request context.
		  - session: fully populated record; TokenHash must be set.

		Returns:
		  - error: persistence failure.
	*/
	Create(ctx context.Context, session *Session) error

	/*
		FindByTokenHash loads a session by its token hash.

		Parameters:
		  - ctx: request context.
		  - tokenHash: keyed hash of the presented bearer token.

		Returns:
		  - *Session: the session, or an apperr.NotFound-coded error when absent.
		  - error: lookup failure.
	*/
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	/*
		Delete removes a session by its token hash, if present.

		Parameters:
		  - ctx: request context.
		  - tokenHash: keyed hash of the presented bearer token.

		Returns:
		  - error: persistence failure. Absence is not an error.
	*/
	Delete(ctx context.Context, tokenHash string) error
}
